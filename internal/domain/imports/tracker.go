package imports

import (
	"context"
	"fmt"
	"log/slog"
)

// Tracker drives the upload audit trail through its lifecycle:
// create-initial, update-progress, finalize — exactly once each, in that
// order, per upload. Neither call is retried or rolled back; a failed
// progress write only logs, since losing an intermediate counter is
// preferable to failing the upload.
type Tracker struct {
	Store StoreAPI
}

func NewTracker(store StoreAPI) *Tracker {
	return &Tracker{Store: store}
}

// Begin creates the PROCESSING history record and its import-log mirror.
func (t *Tracker) Begin(ctx context.Context, batchID, filename, fileType string, total int) (string, error) {
	historyID, err := t.Store.CreateHistory(ctx, UploadHistory{
		BatchID:      batchID,
		Filename:     filename,
		FileType:     fileType,
		Status:       StatusProcessing,
		TotalRecords: total,
	})
	if err != nil {
		return "", fmt.Errorf("create upload history: %w", err)
	}

	if _, err := t.Store.CreateLog(ctx, ImportLog{
		BatchID:      batchID,
		FileType:     fileType,
		Status:       StatusProcessing,
		TotalRecords: total,
	}); err != nil {
		return "", fmt.Errorf("create import log: %w", err)
	}
	return historyID, nil
}

// Progress writes intermediate counters. Failures are logged, not returned.
func (t *Tracker) Progress(ctx context.Context, batchID string, total, processed, errorCount int, rowErrors []UploadError) {
	if err := t.Store.UpdateHistoryProgress(ctx, batchID, total, processed, errorCount, rowErrors); err != nil {
		slog.Warn("upload progress update failed", "batchId", batchID, "err", err)
	}
}

// Finalize writes the terminal status and final counters once, after all
// batches complete.
func (t *Tracker) Finalize(ctx context.Context, batchID string, total, processed, errorCount int, rowErrors []UploadError) (UploadStatus, error) {
	status := TerminalStatus(total, processed, errorCount)
	if err := t.Store.FinalizeHistory(ctx, batchID, status, total, processed, errorCount, rowErrors); err != nil {
		return status, fmt.Errorf("finalize upload history: %w", err)
	}

	message := fmt.Sprintf("%d/%d records imported, %d errors", processed, total, errorCount)
	if err := t.Store.FinalizeLog(ctx, batchID, status, total, processed, errorCount, message); err != nil {
		return status, fmt.Errorf("finalize import log: %w", err)
	}
	return status, nil
}
