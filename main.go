package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecolibres-backend/app/repository"
	"ecolibres-backend/app/service"
	"ecolibres-backend/config"
	"ecolibres-backend/database"
	"ecolibres-backend/routes"
	"ecolibres-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// Run menyusun semua dependency lalu menjalankan HTTP server sampai ctx selesai.
func Run(ctx context.Context) error {
	// =================================================================
	// CONFIG + LOGGER
	// =================================================================
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// =================================================================
	// INIT DB (MONGODB + POSTGRES OPSIONAL)
	// =================================================================
	dbConn, err := database.InitDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dbConn.Close(closeCtx); err != nil {
			logger.Warn("closing database connections", zap.Error(err))
		}
	}()

	if err := database.EnsureIndexes(ctx, dbConn.Mongo, logger); err != nil {
		logger.Warn("index bootstrap failed, continuing", zap.Error(err))
	}

	// =================================================================
	// REPOSITORIES
	// =================================================================
	userRepo := repository.NewUserRepository(dbConn.Mongo)

	var (
		contactRepo repository.ContactRepository
		inboxPinger routes.Pinger
	)
	if dbConn.Postgres != nil {
		contactRepo = repository.NewContactRepository(dbConn.Postgres)
		inboxPinger = contactRepo
	}

	// =================================================================
	// SERVICES
	// =================================================================
	validate := service.NewValidator()
	userService := service.NewUserService(userRepo, validate, logger.Named("users"))

	var mailer service.Mailer
	if cfg.Email.Enabled() {
		mailer = service.NewEmailJSMailer(service.EmailJSConfig{
			ServiceID:  cfg.Email.ServiceID,
			PublicKey:  cfg.Email.PublicKey,
			PrivateKey: cfg.Email.PrivateKey,
			Timeout:    cfg.RequestTimeout,
		})
		logger.Info("EmailJS configured")
	} else {
		logger.Warn("EmailJS not configured, contact emails will be simulated")
	}
	contactService := service.NewContactService(contactRepo, mailer, service.ContactConfig{
		AdminEmail:          cfg.Email.AdminEmail,
		TemplateID:          cfg.Email.TemplateID,
		AutoReplyTemplateID: cfg.Email.AutoReplyTemplateID,
	}, validate, logger.Named("contact"))

	// =================================================================
	// ROUTER
	// =================================================================
	router := routes.NewRouter(
		routes.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			BodyLimitBytes: cfg.BodyLimitMB << 20,
			UploadsDir:     cfg.UploadsDir,
		},
		logger,
		routes.NewUserHandler(userService, logger, cfg.RequestTimeout),
		routes.NewContactHandler(contactService, logger, cfg.RequestTimeout),
		routes.NewSystemHandler(userRepo, inboxPinger, routes.SystemInfo{
			Environment:  cfg.Env,
			BodyLimitMB:  cfg.BodyLimitMB,
			EmailEnabled: cfg.Email.Enabled(),
		}, logger),
	)

	// =================================================================
	// START SERVER
	// =================================================================
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", "http://localhost:"+cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
