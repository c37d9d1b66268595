package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolibres_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecolibres_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Domain metrics
	routesCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolibres_routes_completed_total",
			Help: "Total number of completed routes recorded, by activity type",
		},
		[]string{"activity"},
	)

	achievementsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecolibres_achievements_saved_total",
			Help: "Total number of achievement upserts",
		},
	)

	contactMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolibres_contact_messages_total",
			Help: "Total number of contact form submissions by email outcome",
		},
		[]string{"email_sent"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecolibres_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"},
	)
)

// Metrics mencatat jumlah dan durasi request. Label path memakai pola route gin
// (misal /api/users/:uid) supaya kardinalitas tetap kecil.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())

		if status >= 400 {
			errorType := "client_error"
			if status >= 500 {
				errorType = "server_error"
			}
			errorsTotal.WithLabelValues(errorType).Inc()
		}
	}
}

// IncrementRoutesCompleted dipanggil handler setelah rute tersimpan.
func IncrementRoutesCompleted(activity string) {
	routesCompletedTotal.WithLabelValues(activity).Inc()
}

// IncrementAchievementsSaved dipanggil handler setelah upsert logro.
func IncrementAchievementsSaved() {
	achievementsSavedTotal.Inc()
}

// IncrementContactMessages dipanggil handler setelah form kontak diproses.
func IncrementContactMessages(emailSent bool) {
	contactMessagesTotal.WithLabelValues(strconv.FormatBool(emailSent)).Inc()
}
