package imports

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateHistory(ctx context.Context, history UploadHistory) (string, error)
	UpdateHistoryProgress(ctx context.Context, batchID string, total, processed, errorCount int, rowErrors []UploadError) error
	FinalizeHistory(ctx context.Context, batchID string, status UploadStatus, total, processed, errorCount int, rowErrors []UploadError) error
	GetHistory(ctx context.Context, batchID string) (*UploadHistory, error)
	ListHistory(ctx context.Context, status string, limit, offset int) ([]UploadHistory, int, error)
	DeleteHistory(ctx context.Context, batchID string) error
	CreateLog(ctx context.Context, entry ImportLog) (string, error)
	FinalizeLog(ctx context.Context, batchID string, status UploadStatus, total, processed, errorCount int, message string) error
	ListLogs(ctx context.Context, fileType string, limit, offset int) ([]ImportLog, int, error)
	FailStale(ctx context.Context, olderThan time.Duration, message string) (int, error)
}
