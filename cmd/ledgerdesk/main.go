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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ledgerdesk-api/api/swagger"
	"github.com/noah-isme/ledgerdesk-api/internal/handler"
	internalmiddleware "github.com/noah-isme/ledgerdesk-api/internal/middleware"
	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/repository"
	"github.com/noah-isme/ledgerdesk-api/internal/service"
	"github.com/noah-isme/ledgerdesk-api/pkg/config"
	"github.com/noah-isme/ledgerdesk-api/pkg/jobs"
	"github.com/noah-isme/ledgerdesk-api/pkg/kvstore"
	"github.com/noah-isme/ledgerdesk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ledgerdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ledgerdesk-api/pkg/middleware/requestid"
	"github.com/noah-isme/ledgerdesk-api/pkg/storage"
)

// @title LedgerDesk API
// @version 1.0.0
// @description Study library seat and fee tracking with a payroll ledger.
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()

	backend, err := openBackend(ctx, cfg, logr)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close() //nolint:errcheck

	storeOpts := []kvstore.Option{kvstore.WithLogger(logr), kvstore.WithObserver(metrics)}
	libraryStore := kvstore.New(backend, repository.LibraryNamespace(), storeOpts...)
	payrollStore := kvstore.New(backend, repository.PayrollNamespace(), storeOpts...)

	students := repository.NewStudentRepository(libraryStore, cfg.Library.TotalSeats, logr)
	employees := repository.NewEmployeeRepository(payrollStore, logr)
	departments := repository.NewDepartmentRepository(payrollStore)
	settings := repository.NewSettingsRepository(libraryStore, payrollStore, models.PayrollSettings{
		service.SettingPayDay:   "last",
		service.SettingCurrency: cfg.Payroll.Currency,
	})

	if cfg.Store.Seed {
		if _, err := students.Initialize(ctx, repository.SampleStudents()); err != nil {
			logr.Warn("seeding library failed", zap.Error(err))
		}
		if _, err := employees.Initialize(ctx, repository.SampleEmployees(), repository.SampleDepartments()); err != nil {
			logr.Warn("seeding payroll failed", zap.Error(err))
		}
	}

	validate := service.NewValidator()
	ids := service.NewPaymentIDGenerator()
	fees := service.FeeSchedule{FullTime: cfg.Library.FullTimeFee, HalfTime: cfg.Library.HalfTimeFee}

	studentSvc := service.NewStudentService(students, settings, ids, fees, metrics, validate, logr)
	ledgerSvc := service.NewLedgerService(students, employees, ids, metrics, validate, logr)
	employeeSvc := service.NewEmployeeService(employees, departments, settings, validate, logr)
	statsSvc := service.NewStatsService(students, employees, departments)
	reportSvc := service.NewReportService(students, employees, settings, logr)

	checks := map[string]handler.ReadinessCheck{"store": backendCheck(backend)}
	deps := service.BackupDeps{
		Library:     students,
		Payroll:     employees,
		Departments: departments,
		Settings:    settings,
		Snapshots:   metrics,
		IDs:         ids,
		Validator:   validate,
		Logger:      logr,
	}
	archive, err := storage.NewArchive(ctx, cfg.Backups)
	if err != nil {
		logr.Warn("snapshot archive disabled", zap.Error(err))
	} else {
		deps.Archive = archive
		deps.Signer = storage.NewSignedURLSigner(cfg.Backups.SignedURLSecret, cfg.Backups.SignedURLTTL)
		checks["archive"] = func(ctx context.Context) error {
			_, err := archive.List(ctx, string(models.DomainLibrary)+"/")
			return err
		}
	}
	backupSvc := service.NewBackupService(deps, service.BackupServiceConfig{
		DownloadBase: cfg.APIPrefix + "/snapshots/download",
	})

	if cfg.Backups.Async && deps.Archive != nil {
		queue := jobs.NewQueue("snapshots", backupSvc.HandleSnapshotJob, jobs.QueueConfig{
			Workers:    2,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		queue.Start(context.Background())
		defer queue.Stop()
		backupSvc.SetQueue(queue)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	system := handler.NewSystemHandler(metrics, checks)
	r.GET("/health", system.Health)
	r.GET("/ready", system.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", system.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix),
		handler.NewLibraryHandler(studentSvc, ledgerSvc, statsSvc, reportSvc),
		handler.NewPayrollHandler(employeeSvc, ledgerSvc, statsSvc, reportSvc),
		handler.NewBackupHandler(backupSvc),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
