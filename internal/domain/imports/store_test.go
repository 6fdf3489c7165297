package imports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestCreateHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectQuery("INSERT INTO upload_history").
		WithArgs("batch-1", "daily.srp", "srp", StatusProcessing, 120, 0, 0, []byte("[]")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("hist-1"))

	id, err := store.CreateHistory(context.Background(), UploadHistory{
		BatchID:      "batch-1",
		Filename:     "daily.srp",
		FileType:     "srp",
		Status:       StatusProcessing,
		TotalRecords: 120,
	})
	if err != nil {
		t.Fatalf("CreateHistory: %v", err)
	}
	if id != "hist-1" {
		t.Errorf("id = %s, want hist-1", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetHistoryDecodesErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	started := time.Date(2026, time.January, 15, 8, 0, 0, 0, time.UTC)
	finished := started.Add(10 * time.Second)
	mock.ExpectQuery("SELECT (.+) FROM upload_history").
		WithArgs("batch-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "batch_id", "filename", "file_type", "status",
			"total_records", "processed_records", "error_records", "errors",
			"started_at", "finished_at",
		}).AddRow("hist-1", "batch-1", "daily.srp", "srp", StatusPartiallyCompleted,
			10, 9, 1, []byte(`[{"row":3,"message":"invalid time"}]`), started, &finished))

	history, err := store.GetHistory(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if history.Status != StatusPartiallyCompleted {
		t.Errorf("status = %s, want PARTIALLY_COMPLETED", history.Status)
	}
	if len(history.Errors) != 1 || history.Errors[0].Row != 3 {
		t.Errorf("errors = %+v, want decoded row 3", history.Errors)
	}
	if history.FinishedAt == nil || !history.FinishedAt.Equal(finished) {
		t.Errorf("finishedAt = %v, want %v", history.FinishedAt, finished)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetHistoryNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectQuery("SELECT (.+) FROM upload_history").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetHistory(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteHistoryNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectExec("DELETE FROM upload_history").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.DeleteHistory(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFailStaleSweepsBothTables(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectExec("UPDATE upload_history").
		WithArgs(StatusFailed, pgxmock.AnyArg(), StatusProcessing, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec("UPDATE import_logs").
		WithArgs(StatusFailed, "stale", StatusProcessing, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	failed, err := store.FailStale(context.Background(), time.Hour, "stale")
	if err != nil {
		t.Fatalf("FailStale: %v", err)
	}
	if failed != 3 {
		t.Errorf("failed = %d, want 3", failed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFinalizeHistoryWritesTerminalState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectExec("UPDATE upload_history").
		WithArgs(StatusCompleted, 10, 10, 0, []byte("[]"), "batch-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.FinalizeHistory(context.Background(), "batch-1", StatusCompleted, 10, 10, 0, nil); err != nil {
		t.Fatalf("FinalizeHistory: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
