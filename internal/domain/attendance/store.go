package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRowFailure marks a batch transaction rolled back by an individual row,
// signalling the engine to retry the rows one by one.
var ErrRowFailure = errors.New("row failure inside batch")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const upsertSQL = `
    INSERT INTO attendance_records (
      employee_id, attendance_date, status,
      check_in, check_out, lunch_out, lunch_in, break_out, break_in,
      hours_worked, shift, shift_start, import_source, import_batch
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
      status = EXCLUDED.status,
      check_in = EXCLUDED.check_in,
      check_out = EXCLUDED.check_out,
      lunch_out = EXCLUDED.lunch_out,
      lunch_in = EXCLUDED.lunch_in,
      break_out = EXCLUDED.break_out,
      break_in = EXCLUDED.break_in,
      hours_worked = EXCLUDED.hours_worked,
      shift = EXCLUDED.shift,
      shift_start = EXCLUDED.shift_start,
      import_source = EXCLUDED.import_source,
      import_batch = EXCLUDED.import_batch,
      updated_at = now()
  `

func upsertArgs(rec Record) []any {
	return []any{
		rec.EmployeeID, rec.Date, rec.Status,
		rec.CheckIn, rec.CheckOut, rec.LunchOut, rec.LunchIn, rec.BreakOut, rec.BreakIn,
		rec.HoursWorked, rec.Shift, rec.ShiftStart, rec.ImportSource, rec.ImportBatch,
	}
}

// UpsertBatchTx pipelines every row upsert through one transaction and
// awaits all results before committing. pgx transactions are not safe for
// concurrent use, so pipelining via SendBatch is how the rows travel
// together in a single round trip.
func (s *Store) UpsertBatchTx(ctx context.Context, records []Record) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertSQL, upsertArgs(rec)...)
	}

	results := tx.SendBatch(ctx, batch)
	var rowErr error
	for range records {
		if _, err := results.Exec(); err != nil && rowErr == nil {
			rowErr = err
		}
	}
	if err := results.Close(); err != nil && rowErr == nil {
		rowErr = err
	}

	if rowErr != nil {
		_ = tx.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(rowErr, &pgErr) {
			return fmt.Errorf("%w: %s", ErrRowFailure, pgErr.Message)
		}
		return fmt.Errorf("batch exec: %w", rowErr)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, record Record) error {
	_, err := s.DB.Exec(ctx, upsertSQL, upsertArgs(record)...)
	return err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if filter.EmployeeCode != "" {
		args = append(args, filter.EmployeeCode)
		where += fmt.Sprintf(" AND e.employee_code = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND a.attendance_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND a.attendance_date <= $%d", len(args))
	}

	var total int
	countSQL := "SELECT COUNT(1) FROM attendance_records a JOIN employees e ON e.id = a.employee_id " + where
	if err := s.DB.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT a.id, a.employee_id, e.employee_code, a.attendance_date, a.status,
           a.check_in, a.check_out, a.lunch_out, a.lunch_in, a.break_out, a.break_in,
           a.hours_worked, COALESCE(a.shift, ''), COALESCE(a.shift_start, ''),
           a.import_source, a.import_batch, a.created_at, a.updated_at
    FROM attendance_records a
    JOIN employees e ON e.id = a.employee_id
    %s
    ORDER BY a.attendance_date DESC, e.employee_code
    LIMIT $%d OFFSET $%d
  `, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.EmployeeCode, &rec.Date, &rec.Status,
			&rec.CheckIn, &rec.CheckOut, &rec.LunchOut, &rec.LunchIn, &rec.BreakOut, &rec.BreakIn,
			&rec.HoursWorked, &rec.Shift, &rec.ShiftStart,
			&rec.ImportSource, &rec.ImportBatch, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *Store) CountByBatch(ctx context.Context, batchID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM attendance_records WHERE import_batch = $1", batchID).Scan(&count)
	return count, err
}
