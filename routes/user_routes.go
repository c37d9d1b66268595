package routes

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ecolibres-backend/app/model"
	"ecolibres-backend/app/service"
	"ecolibres-backend/middleware"
	"ecolibres-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler menangani endpoint user, logros dan rutas completadas.
type UserHandler struct {
	userService service.UserService
	log         *zap.Logger
	timeout     time.Duration
}

// NewUserHandler membuat handler baru. timeout membatasi setiap panggilan ke store.
func NewUserHandler(userService service.UserService, log *zap.Logger, timeout time.Duration) *UserHandler {
	return &UserHandler{userService: userService, log: log, timeout: timeout}
}

// SetupUserRoutes mendaftarkan endpoint di bawah /api/users.
func (h *UserHandler) SetupUserRoutes(r gin.IRouter) {
	users := r.Group("/api/users")
	{
		users.POST("", h.CreateUser)
		users.GET("/:uid", h.GetUser)

		users.POST("/:uid/achievements", h.AddAchievement)
		users.PUT("/:uid/achievements", h.ReplaceAchievements)
		users.GET("/:uid/achievements", h.ListAchievements)

		// sumber data heat map
		users.POST("/:uid/rutas-completadas", h.AddCompletedRoute)
		users.GET("/:uid/rutas-completadas", h.ListCompletedRoutes)
		users.DELETE("/:uid/rutas-completadas/:rutaId", h.DeleteCompletedRoute)
		users.GET("/:uid/estadisticas-rutas", h.RouteStatistics)
	}
}

func (h *UserHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// userView adalah bentuk user yang dikirim ke frontend.
type userView struct {
	UID          string              `json:"uid"`
	Email        string              `json:"email"`
	DisplayName  string              `json:"displayName"`
	PhotoURL     string              `json:"photoURL"`
	Achievements []model.Achievement `json:"logros"`
}

// userDetailView dipakai GET /:uid, ditambah tanggal registrasi dan riwayat rute.
type userDetailView struct {
	userView
	RegisteredAt    time.Time              `json:"fechaRegistro"`
	CompletedRoutes []model.CompletedRoute `json:"rutasCompletadas"`
}

func newUserView(u *model.User) userView {
	photo := u.PhotoURL
	if photo == "" {
		photo = u.ProfilePhoto
	}
	if photo == "" {
		photo = u.Avatar
	}
	return userView{
		UID:          u.UID,
		Email:        u.Email,
		DisplayName:  u.ResolvedDisplayName(),
		PhotoURL:     photo,
		Achievements: u.Achievements,
	}
}

// CreateUser dipanggil frontend setelah login / registrasi di identity provider.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input struct {
		UID         string `json:"uid" binding:"required"`
		Email       string `json:"email" binding:"required"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.BuildResponseFailed("UID y email son requeridos", err.Error()))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.userService.FindOrCreate(ctx, service.IdentityInput{
		UID:         input.UID,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		PhotoURL:    input.PhotoURL,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, utils.BuildResponseSuccess(
		"Usuario creado/actualizado correctamente",
		gin.H{"user": newUserView(user)},
	))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.userService.GetUser(ctx, c.Param("uid"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view := userDetailView{
		userView:        newUserView(user),
		RegisteredAt:    user.RegisteredAt,
		CompletedRoutes: user.CompletedRoutes,
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("", gin.H{"user": view}))
}

func (h *UserHandler) AddAchievement(c *gin.Context) {
	var input service.AchievementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	logros, err := h.userService.AddAchievement(ctx, c.Param("uid"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middleware.IncrementAchievementsSaved()

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Logro agregado correctamente", gin.H{"logros": logros}))
}

func (h *UserHandler) ReplaceAchievements(c *gin.Context) {
	var input service.AchievementList
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	logros, err := h.userService.ReplaceAchievements(ctx, c.Param("uid"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Logros actualizados correctamente", gin.H{"logros": logros}))
}

func (h *UserHandler) ListAchievements(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	logros, stats, err := h.userService.ListAchievements(ctx, c.Param("uid"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("", gin.H{
		"logros":       logros,
		"estadisticas": stats,
	}))
}

func (h *UserHandler) AddCompletedRoute(c *gin.Context) {
	var input service.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	routes, err := h.userService.AddCompletedRoute(ctx, c.Param("uid"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(routes) > 0 {
		middleware.IncrementRoutesCompleted(string(routes[len(routes)-1].Activity()))
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Ruta guardada en tu historial de aventuras", gin.H{
		"totalRutas":   len(routes),
		"estadisticas": service.RouteStats(routes),
	}))
}

func (h *UserHandler) ListCompletedRoutes(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.userService.ListCompletedRoutes(ctx, c.Param("uid"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("", gin.H{
		"rutas":        result.Routes,
		"estadisticas": result.Statistics,
		"paginacion":   result.Pagination,
	}))
}

func (h *UserHandler) RouteStatistics(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.userService.RouteSummary(ctx, c.Param("uid"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("", gin.H{
		"estadisticas":   report.Statistics,
		"progresoLogros": report.AchievementsProgress,
		"resumen":        report.Summary,
	}))
}

func (h *UserHandler) DeleteCompletedRoute(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	routes, err := h.userService.DeleteCompletedRoute(ctx, c.Param("uid"), c.Param("rutaId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Ruta eliminada correctamente", gin.H{"totalRutas": len(routes)}))
}

// parsePage membaca ?limit&offset. limit kosong berarti tanpa batas.
func parsePage(c *gin.Context) (service.Page, error) {
	var page service.Page

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return page, service.NewValidationError("limit", "must be a non-negative integer")
		}
		page.Limit = &limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return page, service.NewValidationError("offset", "must be a non-negative integer")
		}
		page.Offset = offset
	}
	return page, nil
}
