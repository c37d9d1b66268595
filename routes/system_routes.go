package routes

import (
	"context"
	"net/http"
	"sort"
	"time"

	"ecolibres-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version adalah versi API yang ditampilkan di /api/info.
const Version = "1.0.0"

// Pinger dipakai health check untuk mengecek koneksi database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemInfo berisi nilai statis yang ditampilkan di /api/health dan /api/info.
type SystemInfo struct {
	Environment  string
	BodyLimitMB  int64
	EmailEnabled bool
}

// SystemHandler menangani endpoint operasional.
type SystemHandler struct {
	mongo  Pinger
	inbox  Pinger // nil jika inbox kontak dimatikan
	info   SystemInfo
	routes func() gin.RoutesInfo
	log    *zap.Logger
	now    func() time.Time
}

func NewSystemHandler(mongo, inbox Pinger, info SystemInfo, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		mongo: mongo,
		inbox: inbox,
		info:  info,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (h *SystemHandler) SetupSystemRoutes(r *gin.Engine) {
	h.routes = r.Routes

	r.GET("/", h.Root)
	r.GET("/api/health", h.Health)
	r.GET("/api/info", h.Info)
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "EcoLibres API RUNNING",
		"version": Version,
	})
}

// Health mengembalikan 503 jika MongoDB tidak bisa di-ping.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	mongoStatus := "connected"
	if err := h.mongo.Ping(ctx); err != nil {
		h.log.Warn("health check: mongo ping failed", zap.Error(err))
		mongoStatus = "disconnected"
		status = http.StatusServiceUnavailable
	}

	inboxStatus := "disabled"
	if h.inbox != nil {
		inboxStatus = "connected"
		if err := h.inbox.Ping(ctx); err != nil {
			h.log.Warn("health check: postgres ping failed", zap.Error(err))
			inboxStatus = "disconnected"
		}
	}

	emailStatus := "not configured"
	if h.info.EmailEnabled {
		emailStatus = "configured"
	}

	c.JSON(status, gin.H{
		"success":   status == http.StatusOK,
		"message":   "EcoLibres Backend funcionando",
		"timestamp": h.now(),
		"services": gin.H{
			"mongodb":      mongoStatus,
			"contactInbox": inboxStatus,
			"email":        emailStatus,
		},
		"environment": h.info.Environment,
	})
}

func (h *SystemHandler) Info(c *gin.Context) {
	var endpoints []string
	if h.routes != nil {
		for _, r := range h.routes() {
			endpoints = append(endpoints, r.Method+" "+r.Path)
		}
		sort.Strings(endpoints)
	}

	emailService := "inactive"
	if h.info.EmailEnabled {
		emailService = "EmailJS"
	}

	c.JSON(http.StatusOK, utils.BuildResponseSuccess("", gin.H{
		"name":          "EcoLibres Backend",
		"version":       Version,
		"description":   "Plataforma de ecoturismo para Libres, Puebla",
		"status":        "running",
		"timestamp":     h.now(),
		"environment":   h.info.Environment,
		"body_limit_mb": h.info.BodyLimitMB,
		"email_service": emailService,
		"endpoints":     endpoints,
	}))
}
