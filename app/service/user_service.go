package service

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"time"

	"ecolibres-backend/app/model"
	"ecolibres-backend/app/repository"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IdentityInput adalah data identitas dari identity provider eksternal.
// Name/Picture adalah nama claim provider; keduanya menang atas DisplayName/PhotoURL.
type IdentityInput struct {
	UID         string `json:"uid" validate:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
	PhotoURL    string `json:"photoURL"`
	Picture     string `json:"picture"`
}

func (in IdentityInput) displayName() string {
	return firstNonEmpty(in.Name, in.DisplayName)
}

func (in IdentityInput) photoURL() string {
	return firstNonEmpty(in.Picture, in.PhotoURL)
}

// AchievementInput adalah payload logro. Field pointer nil berarti "tidak dikirim"
// dan tidak menimpa nilai yang sudah tersimpan.
type AchievementInput struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"nombre" validate:"required"`
	Description *string  `json:"descripcion"`
	Icon        *string  `json:"icono"`
	Category    *string  `json:"categoria"`
	Progress    *float64 `json:"progreso" validate:"omitempty,gte=0,lte=100"`
	Goal        *float64 `json:"meta" validate:"omitempty,gte=0"`
}

// mergeInto menimpa field yang dikirim lalu menghitung ulang completado.
func (in AchievementInput) mergeInto(a *model.Achievement) {
	a.Name = in.Name
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Icon != nil {
		a.Icon = *in.Icon
	}
	if in.Category != nil {
		a.Category = *in.Category
	}
	if in.Progress != nil {
		a.Progress = *in.Progress
	}
	if in.Goal != nil {
		a.Goal = *in.Goal
	}
	a.RecomputeCompleted()
}

func (in AchievementInput) build(now time.Time) model.Achievement {
	a := model.Achievement{
		ID:         in.ID,
		Goal:       model.DefaultAchievementGoal,
		ObtainedAt: now,
		UnlockedAt: now,
	}
	in.mergeInto(&a)
	return a
}

// AchievementList membungkus array logros untuk PUT.
type AchievementList struct {
	Achievements []AchievementInput `json:"logros" validate:"dive"`
}

// RouteInput adalah payload rute yang diselesaikan.
type RouteInput struct {
	PlaceID      string             `json:"lugarId" validate:"required"`
	PlaceName    string             `json:"lugarNombre" validate:"required"`
	Distance     float64            `json:"distancia" validate:"gte=0"`
	Duration     float64            `json:"duracion" validate:"gte=0"`
	Waypoints    []WaypointInput    `json:"coordenadas" validate:"dive"`
	CompletedAt  string             `json:"fecha"`
	ActivityType model.ActivityType `json:"tipoActividad" validate:"omitempty,oneof=senderismo natacion camping escalada observacion fotografia otros"`
}

// WaypointInput adalah satu titik GPS; lat/lng wajib, timestamp default sekarang.
type WaypointInput struct {
	Lat       *float64   `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng       *float64   `json:"lng" validate:"required,gte=-180,lte=180"`
	Timestamp *time.Time `json:"timestamp"`
}

// format fecha yang diterima, dicoba berurutan
var routeDateLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateOnly}

func parseRouteDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}
	for _, layout := range routeDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewValidationError("fecha", "must be an RFC3339 timestamp or YYYY-MM-DD date")
}

func (in RouteInput) build(now time.Time) (model.CompletedRoute, error) {
	completedAt, err := parseRouteDate(in.CompletedAt, now)
	if err != nil {
		return model.CompletedRoute{}, err
	}

	waypoints := make([]model.Waypoint, 0, len(in.Waypoints))
	for _, w := range in.Waypoints {
		ts := now
		if w.Timestamp != nil {
			ts = w.Timestamp.UTC()
		}
		waypoints = append(waypoints, model.Waypoint{Lat: *w.Lat, Lng: *w.Lng, Timestamp: ts})
	}

	activity := in.ActivityType
	if activity == "" {
		activity = model.ActivityHiking
	}

	return model.CompletedRoute{
		ID:           primitive.NewObjectID(),
		PlaceID:      in.PlaceID,
		PlaceName:    in.PlaceName,
		Distance:     in.Distance,
		Duration:     in.Duration,
		Waypoints:    waypoints,
		CompletedAt:  completedAt,
		Completed:    true,
		ActivityType: activity,
	}, nil
}

// Page adalah parameter paginasi. Limit nil berarti tanpa batas.
type Page struct {
	Limit  *int
	Offset int
}

// Pagination adalah blok "paginacion" pada respons list rute.
type Pagination struct {
	Total   int `json:"total"`
	Showing int `json:"mostrando"`
	Offset  int `json:"offset"`
}

// RoutePage adalah hasil ListCompletedRoutes.
type RoutePage struct {
	Routes     []model.CompletedRoute
	Statistics RouteStatistics
	Pagination Pagination
}

// RouteReport adalah hasil RouteSummary untuk endpoint estadisticas-rutas.
type RouteReport struct {
	Statistics           RouteStatistics            `json:"estadisticas"`
	AchievementsProgress model.AchievementsProgress `json:"progresoLogros"`
	Summary              Summary                    `json:"resumen"`
}

// UserService adalah User Record Store: semua mutasi dokumen user lewat sini.
type UserService interface {
	FindOrCreate(ctx context.Context, in IdentityInput) (*model.User, error)
	GetUser(ctx context.Context, uid string) (*model.User, error)

	AddAchievement(ctx context.Context, uid string, in AchievementInput) ([]model.Achievement, error)
	ReplaceAchievements(ctx context.Context, uid string, in AchievementList) ([]model.Achievement, error)
	ListAchievements(ctx context.Context, uid string) ([]model.Achievement, AchievementStats, error)

	AddCompletedRoute(ctx context.Context, uid string, in RouteInput) ([]model.CompletedRoute, error)
	DeleteCompletedRoute(ctx context.Context, uid, routeID string) ([]model.CompletedRoute, error)
	ListCompletedRoutes(ctx context.Context, uid string, page Page) (*RoutePage, error)
	RouteSummary(ctx context.Context, uid string) (*RouteReport, error)
}

type userService struct {
	repo     repository.UserRepository
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewUserService membuat UserService. validate boleh nil (dibuat default).
func NewUserService(repo repository.UserRepository, validate *validator.Validate, log *zap.Logger) UserService {
	if validate == nil {
		validate = NewValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		repo:     repo,
		validate: validate,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewValidator membuat validator yang melaporkan nama field sesuai tag json.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *userService) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	return nil
}

func (s *userService) FindOrCreate(ctx context.Context, in IdentityInput) (*model.User, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()

	existing, err := s.repo.FindByUID(ctx, in.UID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return s.create(ctx, in, now)
	case err != nil:
		return nil, s.storeError("find user", in.UID, err)
	}

	// hanya nilai non-kosong yang menimpa
	update := repository.ProfileUpdate{
		Email:       firstNonEmpty(in.Email, existing.Email),
		DisplayName: firstNonEmpty(in.displayName(), existing.ResolvedDisplayName()),
		PhotoURL:    firstNonEmpty(in.photoURL(), existing.PhotoURL, existing.ProfilePhoto, existing.Avatar),
		LastSeenAt:  now,
	}
	if err := s.repo.UpdateProfile(ctx, in.UID, update); err != nil {
		return nil, s.storeError("update profile", in.UID, err)
	}

	existing.Email = update.Email
	existing.DisplayName, existing.Nombre = update.DisplayName, update.DisplayName
	existing.PhotoURL, existing.ProfilePhoto, existing.Avatar = update.PhotoURL, update.PhotoURL, update.PhotoURL
	existing.LastSeenAt = now
	existing.UpdatedAt = now

	s.log.Info("profile refreshed", zap.String("uid", in.UID))
	return existing, nil
}

func (s *userService) create(ctx context.Context, in IdentityInput, now time.Time) (*model.User, error) {
	if in.Email == "" {
		return nil, NewValidationError("email", "is required")
	}

	name, photo := in.displayName(), in.photoURL()
	user := &model.User{
		UID:          in.UID,
		Email:        in.Email,
		DisplayName:  name,
		Nombre:       name,
		PhotoURL:     photo,
		ProfilePhoto: photo,
		Avatar:       photo,
		RegisteredAt: now,
		LastSeenAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.EnsureCollections()

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.storeError("create user", in.UID, err)
	}

	s.log.Info("user created", zap.String("uid", in.UID))
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, s.storeError("find user", uid, err)
	}
	return user, nil
}

// AddAchievement melakukan upsert logro berdasarkan id. Read-modify-write tanpa
// versioning: dua request bersamaan untuk user yang sama bisa saling menimpa.
func (s *userService) AddAchievement(ctx context.Context, uid string, in AchievementInput) ([]model.Achievement, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, s.storeError("find user", uid, err)
	}

	now := s.now()
	achievements := slices.Clone(user.Achievements)
	if i := user.FindAchievement(in.ID); i >= 0 {
		in.mergeInto(&achievements[i])
		s.log.Info("achievement merged", zap.String("uid", uid), zap.String("achievement", in.ID))
	} else {
		achievements = append(achievements, in.build(now))
		s.log.Info("achievement inserted", zap.String("uid", uid), zap.String("achievement", in.ID))
	}

	if err := s.repo.SetAchievements(ctx, uid, achievements, now); err != nil {
		return nil, s.storeError("save achievements", uid, err)
	}
	return achievements, nil
}

func (s *userService) ReplaceAchievements(ctx context.Context, uid string, in AchievementList) ([]model.Achievement, error) {
	if in.Achievements == nil {
		return nil, NewValidationError("logros", "must be an array")
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.now()
	achievements := make([]model.Achievement, 0, len(in.Achievements))
	index := make(map[string]int, len(in.Achievements))
	for _, a := range in.Achievements {
		if i, dup := index[a.ID]; dup {
			a.mergeInto(&achievements[i])
			continue
		}
		index[a.ID] = len(achievements)
		achievements = append(achievements, a.build(now))
	}

	user, err := s.repo.ReplaceAchievements(ctx, uid, achievements, now)
	if err != nil {
		return nil, s.storeError("replace achievements", uid, err)
	}

	s.log.Info("achievements replaced", zap.String("uid", uid), zap.Int("count", len(achievements)))
	return user.Achievements, nil
}

func (s *userService) ListAchievements(ctx context.Context, uid string) ([]model.Achievement, AchievementStats, error) {
	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, AchievementStats{}, err
	}
	p := user.AchievementsProgress()
	return user.Achievements, AchievementStats{Total: p.Total, Completed: p.Completed, Progress: p.Progress}, nil
}

func (s *userService) AddCompletedRoute(ctx context.Context, uid string, in RouteInput) ([]model.CompletedRoute, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	route, err := in.build(now)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.PushRoute(ctx, uid, route, now)
	if err != nil {
		return nil, s.storeError("push route", uid, err)
	}

	s.log.Info("route appended",
		zap.String("uid", uid),
		zap.String("route", route.ID.Hex()),
		zap.String("place", route.PlaceID),
		zap.Int("total", len(user.CompletedRoutes)),
	)
	return user.CompletedRoutes, nil
}

func (s *userService) DeleteCompletedRoute(ctx context.Context, uid, routeID string) ([]model.CompletedRoute, error) {
	oid, err := primitive.ObjectIDFromHex(routeID)
	if err != nil {
		// id yang bukan ObjectID tidak mungkin ada di koleksi
		if _, findErr := s.GetUser(ctx, uid); findErr != nil {
			return nil, findErr
		}
		return nil, routeNotFound(routeID)
	}

	user, err := s.repo.PullRoute(ctx, uid, oid)
	if errors.Is(err, repository.ErrRouteNotFound) {
		return nil, routeNotFound(routeID)
	}
	if err != nil {
		return nil, s.storeError("pull route", uid, err)
	}

	s.log.Info("route deleted", zap.String("uid", uid), zap.String("route", routeID))
	return user.CompletedRoutes, nil
}

func (s *userService) ListCompletedRoutes(ctx context.Context, uid string, page Page) (*RoutePage, error) {
	if page.Offset < 0 {
		return nil, NewValidationError("offset", "must be a non-negative integer")
	}
	if page.Limit != nil && *page.Limit < 0 {
		return nil, NewValidationError("limit", "must be a non-negative integer")
	}

	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	routes := SortRoutesByDateDesc(user.CompletedRoutes)
	routes = paginate(routes, page)

	return &RoutePage{
		Routes:     routes,
		Statistics: RouteStats(user.CompletedRoutes),
		Pagination: Pagination{
			Total:   len(user.CompletedRoutes),
			Showing: len(routes),
			Offset:  page.Offset,
		},
	}, nil
}

func (s *userService) RouteSummary(ctx context.Context, uid string) (*RouteReport, error) {
	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	stats := RouteStats(user.CompletedRoutes)
	return &RouteReport{
		Statistics:           stats,
		AchievementsProgress: user.AchievementsProgress(),
		Summary:              BuildSummary(user, stats),
	}, nil
}

// SortRoutesByDateDesc mengembalikan salinan rute, terbaru di depan.
// Rute dengan fecha sama mempertahankan urutan simpan.
func SortRoutesByDateDesc(routes []model.CompletedRoute) []model.CompletedRoute {
	sorted := slices.Clone(routes)
	slices.SortStableFunc(sorted, func(a, b model.CompletedRoute) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	return sorted
}

func paginate(routes []model.CompletedRoute, page Page) []model.CompletedRoute {
	if page.Offset >= len(routes) {
		return []model.CompletedRoute{}
	}
	end := len(routes)
	if page.Limit != nil && page.Offset+*page.Limit < end {
		end = page.Offset + *page.Limit
	}
	return routes[page.Offset:end]
}

// storeError memetakan error repository ke error service dan mencatatnya.
func (s *userService) storeError(op, uid string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return userNotFound(uid)
	}
	s.log.Error("persistence failure", zap.String("op", op), zap.String("uid", uid), zap.Error(err))
	return persistenceError(op, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
