package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/registrar-api/api/swagger"
	"github.com/noah-isme/registrar-api/internal/handler"
	"github.com/noah-isme/registrar-api/internal/repository"
	"github.com/noah-isme/registrar-api/internal/router"
	"github.com/noah-isme/registrar-api/internal/service"
	"github.com/noah-isme/registrar-api/pkg/cache"
	"github.com/noah-isme/registrar-api/pkg/config"
	"github.com/noah-isme/registrar-api/pkg/database"
	"github.com/noah-isme/registrar-api/pkg/export"
	"github.com/noah-isme/registrar-api/pkg/jobs"
	"github.com/noah-isme/registrar-api/pkg/logger"
	"github.com/noah-isme/registrar-api/pkg/mailer"
)

// @title Registrar Document Request API
// @version 1.0.0
// @description Document requests, status lifecycle, claim slips and notifications for the registrar's office.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var catalogCache service.CacheStore
	if cfg.Catalog.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("catalog cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			catalogCache = repository.NewCacheRepository(client, "registrar")
		}
	}

	metrics := service.NewMetricsService()

	requestRepo := repository.NewRequestRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	statusLogRepo := repository.NewStatusLogRepository(db)
	claimSlipRepo := repository.NewClaimSlipRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	catalog := service.NewDocumentCatalog(documentRepo, catalogCache, cfg.Catalog.CacheTTL, metrics, logr)

	var sender mailer.Sender = mailer.NopSender{}
	if cfg.Mail.Enabled {
		smtp, err := mailer.NewSMTPMailer(cfg.Mail)
		if err != nil {
			logr.Fatal("invalid mail configuration", zap.Error(err))
		}
		sender = smtp
	}

	queue := jobs.NewQueue("notifications", jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.Retries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, queue, sender, metrics, logr)
	queue.Register(service.JobTypeNotificationEmail, notificationSvc.HandleEmailJob)
	queue.Start(ctx)
	defer queue.Stop()

	pdf := export.NewPDFExporter(cfg.Lifecycle.Institution)
	csv := export.NewCSVExporter()

	requestSvc := service.NewRequestService(service.RequestServiceParams{
		Requests:   requestRepo,
		Catalog:    catalog,
		Users:      userRepo,
		Payments:   paymentRepo,
		StatusLogs: statusLogRepo,
		ClaimSlips: claimSlipRepo,
		Notifier:   notificationSvc,
		Tx:         database.NewTxManager(db),
		Exporters: map[string]service.DatasetRenderer{
			csv.Extension(): csv,
			pdf.Extension(): pdf,
		},
		Validator: validator.New(),
		Metrics:   metrics,
		Logger:    logr,
		Location:  cfg.Lifecycle.Location(),
	})
	claimSlipSvc := service.NewClaimSlipService(claimSlipRepo, requestRepo, userRepo, catalog, pdf, logr)
	statusLogSvc := service.NewStatusLogService(statusLogRepo, userRepo, logr)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	r := router.Setup(cfg, router.Handlers{
		Requests:      handler.NewRequestHandler(requestSvc),
		ClaimSlips:    handler.NewClaimSlipHandler(claimSlipSvc),
		StatusLogs:    handler.NewStatusLogHandler(statusLogSvc),
		Documents:     handler.NewDocumentHandler(catalog),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Metrics:       handler.NewMetricsHandler(metrics, db),
	}, tokens, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
