package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAchievementGoal dipakai ketika payload logro tidak membawa "meta".
const DefaultAchievementGoal = 100

// ActivityType adalah jenis aktivitas outdoor pada rute yang diselesaikan.
// Nilai yang disimpan mengikuti format yang dikirim frontend.
type ActivityType string

const (
	ActivityHiking           ActivityType = "senderismo"
	ActivitySwimming         ActivityType = "natacion"
	ActivityCamping          ActivityType = "camping"
	ActivityClimbing         ActivityType = "escalada"
	ActivityWildlifeWatching ActivityType = "observacion"
	ActivityPhotography      ActivityType = "fotografia"
	ActivityOther            ActivityType = "otros"
)

// ActivityTypes berisi semua aktivitas yang valid, sesuai urutan deklarasi.
var ActivityTypes = []ActivityType{
	ActivityHiking,
	ActivitySwimming,
	ActivityCamping,
	ActivityClimbing,
	ActivityWildlifeWatching,
	ActivityPhotography,
	ActivityOther,
}

// User merepresentasikan 1 dokumen di collection "users".
// _id adalah UID dari identity provider eksternal, bukan ObjectID.
type User struct {
	UID   string `bson:"_id" json:"uid"`
	Email string `bson:"email" json:"email"`

	// displayName adalah nilai kanonik, nombre alias lama.
	DisplayName string `bson:"displayName" json:"displayName"`
	Nombre      string `bson:"nombre" json:"nombre,omitempty"`

	// photoURL adalah nilai kanonik, profilePhoto dan avatar alias lama.
	PhotoURL     string `bson:"photoURL" json:"photoURL"`
	ProfilePhoto string `bson:"profilePhoto" json:"profilePhoto,omitempty"`
	Avatar       string `bson:"avatar" json:"avatar,omitempty"`

	RegisteredAt time.Time `bson:"fechaRegistro" json:"fechaRegistro"`  // set sekali saat insert
	LastSeenAt   time.Time `bson:"ultimaConexion" json:"ultimaConexion"` // diperbarui setiap upsert

	Achievements    []Achievement    `bson:"logros" json:"logros"`
	VisitedPlaces   []VisitedPlace   `bson:"visitedPlaces" json:"visitedPlaces"`
	StepsByDay      []DailySteps     `bson:"stepsByDay" json:"stepsByDay"`
	CompletedRoutes []CompletedRoute `bson:"rutasCompletadas" json:"rutasCompletadas"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Achievement adalah badge gamifikasi yang di-embed di dokumen user.
// ID unik per user, bukan global.
type Achievement struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"nombre" json:"nombre"`
	Description string    `bson:"descripcion,omitempty" json:"descripcion,omitempty"`
	Icon        string    `bson:"icono,omitempty" json:"icono,omitempty"`
	Category    string    `bson:"categoria,omitempty" json:"categoria,omitempty"`
	Progress    float64   `bson:"progreso" json:"progreso"` // 0..100
	Goal        float64   `bson:"meta" json:"meta"`
	Completed   bool      `bson:"completado" json:"completado"`
	ObtainedAt  time.Time `bson:"fechaObtencion" json:"fechaObtencion"`
	UnlockedAt  time.Time `bson:"fecha_desbloqueo" json:"fecha_desbloqueo"`
}

// UnmarshalBSON mengisi meta = DefaultAchievementGoal untuk dokumen lama yang tidak menyimpan field meta.
// meta: 0 yang tersimpan eksplisit tetap 0.
func (a *Achievement) UnmarshalBSON(data []byte) error {
	type stored Achievement
	doc := stored{Goal: DefaultAchievementGoal}
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	*a = Achievement(doc)
	return nil
}

// RecomputeCompleted menyelaraskan flag completado dengan progreso >= meta.
func (a *Achievement) RecomputeCompleted() {
	a.Completed = a.Progress >= a.Goal
}

// CompletedRoute adalah satu sesi aktivitas yang selesai (sumber data heat map).
type CompletedRoute struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	PlaceID      string             `bson:"lugarId" json:"lugarId"`
	PlaceName    string             `bson:"lugarNombre" json:"lugarNombre"`
	Distance     float64            `bson:"distancia" json:"distancia"` // km
	Duration     float64            `bson:"duracion" json:"duracion"`   // menit
	Waypoints    []Waypoint         `bson:"coordenadas" json:"coordenadas"`
	CompletedAt  time.Time          `bson:"fecha" json:"fecha"`
	Completed    bool               `bson:"completada" json:"completada"`
	ActivityType ActivityType       `bson:"tipoActividad" json:"tipoActividad"`
}

// Activity mengembalikan tipe aktivitas; kosong dianggap senderismo.
func (r CompletedRoute) Activity() ActivityType {
	if r.ActivityType == "" {
		return ActivityHiking
	}
	return r.ActivityType
}

// Waypoint adalah satu titik GPS di dalam rute.
type Waypoint struct {
	Lat       float64   `bson:"lat" json:"lat"`
	Lng       float64   `bson:"lng" json:"lng"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// VisitedPlace mencatat tempat yang pernah dikunjungi user.
type VisitedPlace struct {
	PlaceID   primitive.ObjectID `bson:"placeId,omitempty" json:"placeId,omitempty"`
	VisitedAt time.Time          `bson:"visitedAt" json:"visitedAt"`
}

// DailySteps menyimpan jumlah langkah per hari.
type DailySteps struct {
	Date  time.Time `bson:"date" json:"date"`
	Steps int       `bson:"steps" json:"steps"`
}

// AchievementsProgress adalah ringkasan penyelesaian logros milik user.
type AchievementsProgress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Progress  float64 `json:"progress"` // persen
}

// EnsureCollections mengganti koleksi nil dengan slice kosong, supaya dokumen lama
// (sebelum field ada) tetap di-encode sebagai [] di JSON.
func (u *User) EnsureCollections() {
	if u.Achievements == nil {
		u.Achievements = []Achievement{}
	}
	if u.VisitedPlaces == nil {
		u.VisitedPlaces = []VisitedPlace{}
	}
	if u.StepsByDay == nil {
		u.StepsByDay = []DailySteps{}
	}
	if u.CompletedRoutes == nil {
		u.CompletedRoutes = []CompletedRoute{}
	}
}

// ResolvedDisplayName mengembalikan displayName, fallback ke alias lama nombre.
func (u *User) ResolvedDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Nombre
}

// CompletedAchievements memfilter logros yang completado = true.
func (u *User) CompletedAchievements() []Achievement {
	done := make([]Achievement, 0, len(u.Achievements))
	for _, a := range u.Achievements {
		if a.Completed {
			done = append(done, a)
		}
	}
	return done
}

// AchievementsProgress menghitung total, jumlah selesai, dan persentase.
// Persentase 0 jika user belum punya logro (hindari pembagian nol).
func (u *User) AchievementsProgress() AchievementsProgress {
	total := len(u.Achievements)
	completed := len(u.CompletedAchievements())

	p := AchievementsProgress{Total: total, Completed: completed}
	if total > 0 {
		p.Progress = float64(completed) / float64(total) * 100
	}
	return p
}

// FindAchievement mengembalikan index logro dengan id tertentu, atau -1.
// Koleksi per user kecil, jadi linear scan cukup.
func (u *User) FindAchievement(id string) int {
	for i := range u.Achievements {
		if u.Achievements[i].ID == id {
			return i
		}
	}
	return -1
}
