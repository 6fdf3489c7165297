package employee

import "time"

type Employee struct {
	ID           string    `json:"id"`
	EmployeeCode string    `json:"employeeCode"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Candidate is an employee code seen in an upload, with whatever identity
// the file offered alongside it.
type Candidate struct {
	Code string
	Name string
}

// Lookup is an employee_code -> id snapshot. It is built once per upload and
// passed by value into the persistence stage; later stages never mutate a
// shared map.
type Lookup map[string]string

func (l Lookup) IDFor(code string) (string, bool) {
	id, ok := l[code]
	return id, ok
}
