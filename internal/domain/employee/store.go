package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("employee not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = "id, employee_code, name, email, department, designation, is_active, created_at, updated_at"

func (s *Store) FindByCode(ctx context.Context, code string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE employee_code = $1
  `, strings.ToUpper(strings.TrimSpace(code)))

	var emp Employee
	err := row.Scan(&emp.ID, &emp.EmployeeCode, &emp.Name, &emp.Email, &emp.Department,
		&emp.Designation, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) List(ctx context.Context, query string, limit, offset int) ([]Employee, int, error) {
	where := ""
	args := []any{}
	if query != "" {
		where = "WHERE employee_code ILIKE $1 OR name ILIKE $1"
		args = append(args, "%"+query+"%")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT `+employeeColumns+`
    FROM employees %s
    ORDER BY employee_code
    LIMIT $%d OFFSET $%d
  `, where, limitPos, offsetPos), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var emps []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.EmployeeCode, &emp.Name, &emp.Email, &emp.Department,
			&emp.Designation, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, 0, err
		}
		emps = append(emps, emp)
	}
	return emps, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, emp Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_code, name, email, department, designation, is_active)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, strings.ToUpper(strings.TrimSpace(emp.EmployeeCode)), emp.Name, emp.Email, emp.Department, emp.Designation, emp.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateManyIgnoringDuplicates bulk-inserts employees, skipping any code
// that already exists. Returns the number actually inserted.
func (s *Store) CreateManyIgnoringDuplicates(ctx context.Context, emps []Employee) (int, error) {
	if len(emps) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, emp := range emps {
		batch.Queue(`
      INSERT INTO employees (employee_code, name, email, department, designation, is_active)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (employee_code) DO NOTHING
    `, strings.ToUpper(strings.TrimSpace(emp.EmployeeCode)), emp.Name, emp.Email, emp.Department, emp.Designation, emp.IsActive)
	}

	results := s.DB.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	inserted := 0
	for range emps {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *Store) CodeIDMap(ctx context.Context, codes []string) (map[string]string, error) {
	lookup := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return lookup, nil
	}

	rows, err := s.DB.Query(ctx, `
    SELECT employee_code, id
    FROM employees
    WHERE employee_code = ANY($1)
  `, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var code, id string
		if err := rows.Scan(&code, &id); err != nil {
			return nil, err
		}
		lookup[code] = id
	}
	return lookup, rows.Err()
}
