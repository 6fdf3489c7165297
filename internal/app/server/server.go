package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/attendance"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/employee"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/imports"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/ingest"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/config"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/db"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/jobs"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/metrics"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/api"
	attendancehandler "github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/handlers/attendance"
	employeeshandler "github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/handlers/employees"
	importshandler "github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/handlers/imports"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	employeeStore := employee.NewStore(pool)
	importsStore := imports.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)

	resolver := employee.NewResolver(employeeStore, cfg.PlaceholderDepartment, cfg.PlaceholderEmailHost)
	engine := attendance.NewEngine(attendanceStore, cfg.UploadBatchSize, cfg.UploadBatchTimeout, attendance.RetryPolicy{
		MaxAttempts: cfg.UploadBatchAttempts,
		Backoff:     cfg.UploadBatchBackoff,
	})
	tracker := imports.NewTracker(importsStore)
	attendanceService := attendance.NewService(ingest.NewNormalizer(), resolver, engine, tracker, attendanceStore, collector, cfg.UploadErrorLimit)

	jobsService := jobs.New(pool, cfg, importsStore)
	jobsService.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxUploadBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		attendancehandler.NewHandler(attendanceService).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeStore).RegisterRoutes(r)
		importshandler.NewHandler(importsStore, attendanceStore, jobsService).RegisterRoutes(r)
	})

	log.Printf("attendance server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
