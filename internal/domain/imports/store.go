package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("upload history not found")

// DB is the slice of pgxpool.Pool the store actually uses, kept narrow so
// tests can substitute a mock connection.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	DB DB
}

func NewStore(db DB) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateHistory(ctx context.Context, history UploadHistory) (string, error) {
	errorsJSON, err := marshalErrors(history.Errors)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO upload_history (batch_id, filename, file_type, status, total_records, processed_records, error_records, errors)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, history.BatchID, history.Filename, history.FileType, history.Status,
		history.TotalRecords, history.ProcessedRecords, history.ErrorRecords, errorsJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateHistoryProgress(ctx context.Context, batchID string, total, processed, errorCount int, rowErrors []UploadError) error {
	errorsJSON, err := marshalErrors(rowErrors)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    UPDATE upload_history
    SET total_records = $1, processed_records = $2, error_records = $3, errors = $4
    WHERE batch_id = $5
  `, total, processed, errorCount, errorsJSON, batchID)
	return err
}

func (s *Store) FinalizeHistory(ctx context.Context, batchID string, status UploadStatus, total, processed, errorCount int, rowErrors []UploadError) error {
	errorsJSON, err := marshalErrors(rowErrors)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    UPDATE upload_history
    SET status = $1, total_records = $2, processed_records = $3, error_records = $4, errors = $5, finished_at = now()
    WHERE batch_id = $6
  `, status, total, processed, errorCount, errorsJSON, batchID)
	return err
}

func (s *Store) GetHistory(ctx context.Context, batchID string) (*UploadHistory, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, batch_id, filename, file_type, status, total_records, processed_records, error_records, errors, started_at, finished_at
    FROM upload_history
    WHERE batch_id = $1
  `, batchID)

	history, err := scanHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) ListHistory(ctx context.Context, status string, limit, offset int) ([]UploadHistory, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM upload_history "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT id, batch_id, filename, file_type, status, total_records, processed_records, error_records, errors, started_at, finished_at
    FROM upload_history %s
    ORDER BY started_at DESC
    LIMIT $%d OFFSET $%d
  `, where, limitPos, offsetPos), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var histories []UploadHistory
	for rows.Next() {
		history, err := scanHistory(rows)
		if err != nil {
			return nil, 0, err
		}
		histories = append(histories, *history)
	}
	return histories, total, rows.Err()
}

func (s *Store) DeleteHistory(ctx context.Context, batchID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM upload_history WHERE batch_id = $1", batchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateLog(ctx context.Context, entry ImportLog) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO import_logs (batch_id, file_type, status, total_records, processed_records, error_records, message)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, entry.BatchID, entry.FileType, entry.Status, entry.TotalRecords, entry.ProcessedRecords, entry.ErrorRecords, entry.Message).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) FinalizeLog(ctx context.Context, batchID string, status UploadStatus, total, processed, errorCount int, message string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE import_logs
    SET status = $1, total_records = $2, processed_records = $3, error_records = $4, message = $5, finished_at = now()
    WHERE batch_id = $6
  `, status, total, processed, errorCount, message, batchID)
	return err
}

func (s *Store) ListLogs(ctx context.Context, fileType string, limit, offset int) ([]ImportLog, int, error) {
	where := ""
	args := []any{}
	if fileType != "" {
		where = "WHERE file_type = $1"
		args = append(args, fileType)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM import_logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT id, batch_id, file_type, status, total_records, processed_records, error_records, message, created_at, finished_at
    FROM import_logs %s
    ORDER BY created_at DESC
    LIMIT $%d OFFSET $%d
  `, where, limitPos, offsetPos), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []ImportLog
	for rows.Next() {
		var entry ImportLog
		if err := rows.Scan(&entry.ID, &entry.BatchID, &entry.FileType, &entry.Status, &entry.TotalRecords,
			&entry.ProcessedRecords, &entry.ErrorRecords, &entry.Message, &entry.CreatedAt, &entry.FinishedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, entry)
	}
	return logs, total, rows.Err()
}

// FailStale finalizes PROCESSING uploads older than the cutoff as FAILED.
// Covers uploads orphaned by a crash mid-batch.
func (s *Store) FailStale(ctx context.Context, olderThan time.Duration, message string) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	errorsJSON, err := marshalErrors([]UploadError{{Row: 0, Message: message}})
	if err != nil {
		return 0, err
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE upload_history
    SET status = $1, errors = errors || $2::jsonb, finished_at = now()
    WHERE status = $3 AND started_at < $4
  `, StatusFailed, errorsJSON, StatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}

	if _, err := s.DB.Exec(ctx, `
    UPDATE import_logs
    SET status = $1, message = $2, finished_at = now()
    WHERE status = $3 AND created_at < $4
  `, StatusFailed, message, StatusProcessing, cutoff); err != nil {
		return int(tag.RowsAffected()), err
	}
	return int(tag.RowsAffected()), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*UploadHistory, error) {
	var history UploadHistory
	var errorsJSON []byte
	if err := row.Scan(&history.ID, &history.BatchID, &history.Filename, &history.FileType, &history.Status,
		&history.TotalRecords, &history.ProcessedRecords, &history.ErrorRecords, &errorsJSON,
		&history.StartedAt, &history.FinishedAt); err != nil {
		return nil, err
	}
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &history.Errors); err != nil {
			return nil, fmt.Errorf("decode history errors: %w", err)
		}
	}
	return &history, nil
}

func marshalErrors(rowErrors []UploadError) ([]byte, error) {
	if rowErrors == nil {
		rowErrors = []UploadError{}
	}
	return json.Marshal(rowErrors)
}
