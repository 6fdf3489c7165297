package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jagdish1803/employee-tracker-sub000/internal/ingest"
)

// RetryPolicy bounds batch-transaction retries. Row-level failures are
// never retried at batch level; only transaction-level failures (timeouts,
// broken connections) are.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Engine persists normalized rows in fixed-size batches, one transaction
// per batch, batches strictly sequential.
type Engine struct {
	Store     TxStore
	BatchSize int
	Timeout   time.Duration
	Retry     RetryPolicy
	sleep     func(time.Duration)
}

func NewEngine(store TxStore, batchSize int, timeout time.Duration, retry RetryPolicy) *Engine {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Engine{Store: store, BatchSize: batchSize, Timeout: timeout, Retry: retry, sleep: time.Sleep}
}

// PersistBatches writes all records in order, accumulating processed and
// per-row error counts across batches. A failing batch never stops the
// ones after it.
func (e *Engine) PersistBatches(ctx context.Context, records []Record) (int, []ingest.RowError) {
	processed := 0
	var rowErrors []ingest.RowError

	for start := 0; start < len(records); start += e.BatchSize {
		end := start + e.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batchProcessed, batchErrors := e.persistBatch(ctx, records[start:end])
		processed += batchProcessed
		rowErrors = append(rowErrors, batchErrors...)
	}
	return processed, rowErrors
}

func (e *Engine) persistBatch(ctx context.Context, batch []Record) (int, []ingest.RowError) {
	var lastErr error
	for attempt := 1; attempt <= e.Retry.attempts(); attempt++ {
		err := e.upsertBatch(ctx, batch)
		if err == nil {
			return len(batch), nil
		}
		if errors.Is(err, ErrRowFailure) {
			// One bad row poisoned the transaction; isolate it by
			// writing the rows individually.
			return e.persistRows(ctx, batch)
		}
		lastErr = err
		slog.Warn("batch transaction failed", "attempt", attempt, "rows", len(batch), "err", err)
		if attempt < e.Retry.attempts() {
			e.sleep(e.Retry.Backoff * time.Duration(attempt))
		}
	}

	rowErrors := make([]ingest.RowError, 0, len(batch))
	for _, rec := range batch {
		rowErrors = append(rowErrors, ingest.RowError{
			Row:     rec.Line,
			Message: fmt.Sprintf("batch processing failed: %v", lastErr),
		})
	}
	return 0, rowErrors
}

func (e *Engine) upsertBatch(ctx context.Context, batch []Record) error {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	return e.Store.UpsertBatchTx(ctx, batch)
}

// persistRows writes each row on its own so one failure cannot take the
// rest of the batch with it.
func (e *Engine) persistRows(ctx context.Context, batch []Record) (int, []ingest.RowError) {
	processed := 0
	var rowErrors []ingest.RowError
	for _, rec := range batch {
		if err := e.Store.Upsert(ctx, rec); err != nil {
			rowErrors = append(rowErrors, ingest.RowError{
				Row:     rec.Line,
				Message: fmt.Sprintf("upsert failed for %s: %v", rec.EmployeeCode, err),
			})
			continue
		}
		processed++
	}
	return processed, rowErrors
}

// PersistRow writes one record immediately, outside the batching scheme.
// The CSV path uses this.
func (e *Engine) PersistRow(ctx context.Context, rec Record) error {
	return e.Store.Upsert(ctx, rec)
}
