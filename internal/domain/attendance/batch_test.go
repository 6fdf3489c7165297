package attendance

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeTxStore struct {
	batchCalls [][]Record
	batchErrs  []error
	upserts    []Record
	failLines  map[int]error
}

func (f *fakeTxStore) UpsertBatchTx(ctx context.Context, records []Record) error {
	call := len(f.batchCalls)
	f.batchCalls = append(f.batchCalls, records)
	if call < len(f.batchErrs) {
		return f.batchErrs[call]
	}
	return nil
}

func (f *fakeTxStore) Upsert(ctx context.Context, record Record) error {
	if err, ok := f.failLines[record.Line]; ok {
		return err
	}
	f.upserts = append(f.upserts, record)
	return nil
}

func makeRecords(n int) []Record {
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			EmployeeID:   fmt.Sprintf("id-%d", i+1),
			EmployeeCode: fmt.Sprintf("EMP%03d", i+1),
			Line:         i + 1,
		})
	}
	return records
}

func TestPersistBatchesSplitsByBatchSize(t *testing.T) {
	store := &fakeTxStore{}
	engine := NewEngine(store, 500, 0, RetryPolicy{MaxAttempts: 1})

	processed, rowErrors := engine.PersistBatches(context.Background(), makeRecords(1200))
	if processed != 1200 {
		t.Fatalf("processed = %d, want 1200", processed)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrors)
	}
	if len(store.batchCalls) != 3 {
		t.Fatalf("batch calls = %d, want 3", len(store.batchCalls))
	}
	for i, want := range []int{500, 500, 200} {
		if got := len(store.batchCalls[i]); got != want {
			t.Errorf("batch %d size = %d, want %d", i, got, want)
		}
	}
}

func TestPersistBatchesRowFailureIsolation(t *testing.T) {
	store := &fakeTxStore{
		batchErrs: []error{fmt.Errorf("%w: null value in column", ErrRowFailure)},
		failLines: map[int]error{2: fmt.Errorf("null value in column")},
	}
	engine := NewEngine(store, 500, 0, RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})
	engine.sleep = func(time.Duration) { t.Fatal("row failure must not trigger batch retry") }

	processed, rowErrors := engine.PersistBatches(context.Background(), makeRecords(3))
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
	if len(rowErrors) != 1 {
		t.Fatalf("row errors = %d, want 1", len(rowErrors))
	}
	if rowErrors[0].Row != 2 {
		t.Errorf("failed row = %d, want 2", rowErrors[0].Row)
	}
	if !strings.Contains(rowErrors[0].Message, "EMP002") {
		t.Errorf("error should name the employee code, got %q", rowErrors[0].Message)
	}
	if len(store.batchCalls) != 1 {
		t.Errorf("batch calls = %d, want 1", len(store.batchCalls))
	}
}

func TestPersistBatchesRetriesTransactionFailure(t *testing.T) {
	store := &fakeTxStore{batchErrs: []error{fmt.Errorf("connection reset")}}
	engine := NewEngine(store, 500, 0, RetryPolicy{MaxAttempts: 2, Backoff: time.Second})

	var slept []time.Duration
	engine.sleep = func(d time.Duration) { slept = append(slept, d) }

	processed, rowErrors := engine.PersistBatches(context.Background(), makeRecords(4))
	if processed != 4 {
		t.Fatalf("processed = %d, want 4", processed)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrors)
	}
	if len(store.batchCalls) != 2 {
		t.Fatalf("batch calls = %d, want 2", len(store.batchCalls))
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("backoff sleeps = %v, want [1s]", slept)
	}
}

func TestPersistBatchesExhaustedRetriesFailWholeBatch(t *testing.T) {
	txErr := fmt.Errorf("deadline exceeded")
	store := &fakeTxStore{batchErrs: []error{txErr, txErr}}
	engine := NewEngine(store, 500, 0, RetryPolicy{MaxAttempts: 2})
	engine.sleep = func(time.Duration) {}

	processed, rowErrors := engine.PersistBatches(context.Background(), makeRecords(3))
	if processed != 0 {
		t.Fatalf("processed = %d, want 0", processed)
	}
	if len(rowErrors) != 3 {
		t.Fatalf("row errors = %d, want one per record", len(rowErrors))
	}
	for _, rowErr := range rowErrors {
		if !strings.Contains(rowErr.Message, "batch processing failed") {
			t.Errorf("error message = %q, want batch attribution", rowErr.Message)
		}
	}
}

func TestPersistBatchesFailingBatchDoesNotStopLaterOnes(t *testing.T) {
	store := &fakeTxStore{batchErrs: []error{fmt.Errorf("boom")}}
	engine := NewEngine(store, 2, 0, RetryPolicy{MaxAttempts: 1})

	processed, rowErrors := engine.PersistBatches(context.Background(), makeRecords(4))
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
	if len(rowErrors) != 2 {
		t.Fatalf("row errors = %d, want 2", len(rowErrors))
	}
	if len(store.batchCalls) != 2 {
		t.Fatalf("batch calls = %d, want 2", len(store.batchCalls))
	}
}

func TestNewEngineDefaultsBatchSize(t *testing.T) {
	engine := NewEngine(&fakeTxStore{}, 0, 0, RetryPolicy{})
	if engine.BatchSize != 500 {
		t.Fatalf("batch size = %d, want 500", engine.BatchSize)
	}
}
