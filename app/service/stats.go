package service

import (
	"ecolibres-backend/app/model"
)

// RouteStatistics adalah agregat dari rutasCompletadas milik satu user.
type RouteStatistics struct {
	TotalRoutes        int                   `json:"totalRutas"`
	UniquePlaces       int                   `json:"lugaresUnicos"`
	TotalDistance      float64               `json:"distanciaTotal"`
	TotalDuration      float64               `json:"tiempoTotal"`
	MostCommonActivity model.ActivityType    `json:"actividadMasComun"`
	LastRoute          *model.CompletedRoute `json:"ultimaRuta"`
}

// Level adalah tier berdasarkan total jarak (km).
type Level struct {
	Km   float64 `json:"km"`
	Name string  `json:"nombre"`
}

// NextLevel adalah tier berikutnya. KmRequired nil berarti level maksimum.
type NextLevel struct {
	KmRequired  *float64 `json:"kmRequeridos"`
	KmRemaining float64  `json:"kmFaltantes"`
	Name        string   `json:"nombre"`
}

// MaxLevelName dipakai NextLevel saat total jarak sudah melewati threshold terakhir.
const MaxLevelName = "Maximum level reached!"

// levels harus urut naik berdasarkan Km.
var levels = []Level{
	{Km: 0, Name: "Beginner"},
	{Km: 10, Name: "Novice Explorer"},
	{Km: 25, Name: "Adventurer"},
	{Km: 50, Name: "Hiking Expert"},
	{Km: 100, Name: "Mountain Master"},
	{Km: 200, Name: "Living Legend"},
}

// nextLevels = levels + satu tier puncak yang hanya muncul sebagai target.
var nextLevels = append(append([]Level{}, levels...), Level{Km: 500, Name: "Ecotourism God"})

// RouteStats menghitung statistik rute. ultimaRuta adalah elemen terakhir
// sesuai urutan penyimpanan, tidak diurutkan ulang.
func RouteStats(routes []model.CompletedRoute) RouteStatistics {
	stats := RouteStatistics{
		TotalRoutes:        len(routes),
		MostCommonActivity: MostCommonActivity(routes),
	}

	places := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		places[r.PlaceID] = struct{}{}
		stats.TotalDistance += r.Distance
		stats.TotalDuration += r.Duration
	}
	stats.UniquePlaces = len(places)

	if len(routes) > 0 {
		last := routes[len(routes)-1]
		stats.LastRoute = &last
	}
	return stats
}

// MostCommonActivity mengembalikan aktivitas dengan jumlah terbanyak.
// Jika seri, aktivitas yang pertama kali muncul lebih awal yang menang.
// Tanpa rute hasilnya senderismo.
func MostCommonActivity(routes []model.CompletedRoute) model.ActivityType {
	counts := make(map[model.ActivityType]int)
	var order []model.ActivityType

	for _, r := range routes {
		a := r.Activity()
		if _, seen := counts[a]; !seen {
			order = append(order, a)
		}
		counts[a]++
	}

	best, bestCount := model.ActivityHiking, 0
	for _, a := range order {
		if counts[a] > bestCount {
			best, bestCount = a, counts[a]
		}
	}
	return best
}

// CalculateLevel mencari threshold tertinggi yang <= totalKm.
func CalculateLevel(totalKm float64) Level {
	current := levels[0]
	for _, l := range levels {
		if totalKm >= l.Km {
			current = l
		}
	}
	return current
}

// CalculateNextLevel mencari threshold pertama yang > totalKm.
func CalculateNextLevel(totalKm float64) NextLevel {
	for _, l := range nextLevels {
		if l.Km > totalKm {
			km := l.Km
			return NextLevel{
				KmRequired:  &km,
				KmRemaining: l.Km - totalKm,
				Name:        l.Name,
			}
		}
	}
	return NextLevel{Name: MaxLevelName}
}

// AchievementStats adalah ringkasan logros untuk GET /achievements.
type AchievementStats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completados"`
	Progress  float64 `json:"progreso"`
}

// Summary adalah blok "resumen" pada endpoint estadisticas-rutas.
type Summary struct {
	User      string    `json:"usuario"`
	Level     Level     `json:"nivel"`
	NextLevel NextLevel `json:"siguienteNivel"`
}

// DefaultUserName dipakai ketika user tidak punya displayName maupun nombre.
const DefaultUserName = "Adventurer"

// BuildSummary menyusun resumen dari user dan statistik rutenya.
func BuildSummary(user *model.User, stats RouteStatistics) Summary {
	name := user.ResolvedDisplayName()
	if name == "" {
		name = DefaultUserName
	}
	return Summary{
		User:      name,
		Level:     CalculateLevel(stats.TotalDistance),
		NextLevel: CalculateNextLevel(stats.TotalDistance),
	}
}
