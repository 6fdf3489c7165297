package employee

import (
	"context"
	"fmt"
	"strings"
)

// Resolver maps upload employee codes onto stored employee ids. On the SRP
// path it stages unknown codes as placeholder employees and bulk-creates
// them before attendance persistence begins.
type Resolver struct {
	Store       StoreAPI
	Department  string
	Designation string
	EmailHost   string
}

func NewResolver(store StoreAPI, department, emailHost string) *Resolver {
	return &Resolver{
		Store:       store,
		Department:  department,
		Designation: "Employee",
		EmailHost:   emailHost,
	}
}

// Snapshot returns a code->id lookup covering every candidate. When
// autoCreate is set, unknown codes are staged as placeholder employees and
// bulk-created with duplicate skipping, then the lookup is refreshed so it
// carries real ids. The returned created list preserves candidate order.
func (r *Resolver) Snapshot(ctx context.Context, candidates []Candidate, autoCreate bool) (Lookup, []string, error) {
	codes := make([]string, 0, len(candidates))
	seen := map[string]bool{}
	for _, candidate := range candidates {
		code := strings.ToUpper(strings.TrimSpace(candidate.Code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	known, err := r.Store.CodeIDMap(ctx, codes)
	if err != nil {
		return nil, nil, fmt.Errorf("employee lookup: %w", err)
	}

	if !autoCreate {
		return Lookup(known), nil, nil
	}

	var staged []Employee
	var created []string
	namesByCode := map[string]string{}
	for _, candidate := range candidates {
		code := strings.ToUpper(strings.TrimSpace(candidate.Code))
		if _, ok := namesByCode[code]; !ok && candidate.Name != "" {
			namesByCode[code] = candidate.Name
		}
	}
	for _, code := range codes {
		if _, ok := known[code]; ok {
			continue
		}
		staged = append(staged, r.placeholder(code, namesByCode[code]))
		created = append(created, code)
	}
	if len(staged) == 0 {
		return Lookup(known), nil, nil
	}

	if _, err := r.Store.CreateManyIgnoringDuplicates(ctx, staged); err != nil {
		return nil, nil, fmt.Errorf("employee bulk create: %w", err)
	}

	// Refresh so the snapshot carries ids for the rows just inserted (and
	// for any codes a concurrent upload created first).
	refreshed, err := r.Store.CodeIDMap(ctx, created)
	if err != nil {
		return nil, nil, fmt.Errorf("employee lookup refresh: %w", err)
	}
	for code, id := range refreshed {
		known[code] = id
	}

	return Lookup(known), created, nil
}

func (r *Resolver) placeholder(code, name string) Employee {
	if name == "" {
		name = code
	}
	return Employee{
		EmployeeCode: code,
		Name:         name,
		Email:        strings.ToLower(code) + "@" + r.EmailHost,
		Department:   r.Department,
		Designation:  r.Designation,
		IsActive:     true,
	}
}
