package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/domain/imports"
	"github.com/Jagdish1803/employee-tracker-sub000/internal/platform/config"
)

const JobStaleUploads = "stale_uploads"

const staleUploadMessage = "upload marked failed: processing exceeded the stale threshold"

// Service runs background maintenance off the request path. The only
// scheduled job today is the stale-upload reconciler: uploads stuck in
// PROCESSING past the configured threshold (interrupted mid-flight, e.g.
// by a crash) are force-failed so the history never shows phantom
// in-progress work.
type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Imports imports.StoreAPI
	queue   chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, importsStore imports.StoreAPI) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Imports: importsStore,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ReconcileInterval > 0 {
		go s.scheduleStaleUploads(ctx, s.Cfg.ReconcileInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job inline, bypassing the queue.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// ReconcileNow runs the stale-upload reconciler inline. Handlers use this to
// trigger a sweep on demand instead of waiting for the next tick.
func (s *Service) ReconcileNow(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobStaleUploads, s.reconcileStaleUploads)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleStaleUploads(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobStaleUploads, s.reconcileStaleUploads)
		}
	}
}

func (s *Service) reconcileStaleUploads(ctx context.Context) (any, error) {
	failed, err := s.Imports.FailStale(ctx, s.Cfg.UploadStaleAfter, staleUploadMessage)
	if err != nil {
		return nil, err
	}
	if failed > 0 {
		slog.Info("stale uploads reconciled", "count", failed, "olderThan", s.Cfg.UploadStaleAfter)
	}
	return map[string]any{
		"failed":    failed,
		"olderThan": s.Cfg.UploadStaleAfter.String(),
	}, nil
}
