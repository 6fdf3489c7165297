package employee

import (
	"context"
	"testing"
)

type fakeStore struct {
	StoreAPI
	existing map[string]string
	created  []Employee
	nextID   int
}

func (f *fakeStore) CodeIDMap(_ context.Context, codes []string) (map[string]string, error) {
	out := map[string]string{}
	for _, code := range codes {
		if id, ok := f.existing[code]; ok {
			out[code] = id
		}
	}
	return out, nil
}

func (f *fakeStore) CreateManyIgnoringDuplicates(_ context.Context, emps []Employee) (int, error) {
	inserted := 0
	for _, emp := range emps {
		if _, ok := f.existing[emp.EmployeeCode]; ok {
			continue
		}
		f.nextID++
		f.existing[emp.EmployeeCode] = string(rune('a' + f.nextID))
		f.created = append(f.created, emp)
		inserted++
	}
	return inserted, nil
}

func TestResolverSnapshotCreatesUnknownCodes(t *testing.T) {
	store := &fakeStore{existing: map[string]string{"TIPL1002": "id-1"}}
	resolver := NewResolver(store, "Unassigned", "placeholder.local")

	candidates := []Candidate{
		{Code: "TIPL1002", Name: "John Doe"},
		{Code: "tipl1003", Name: "Jane Roe"},
		{Code: "TIPL1003"}, // duplicate, different spelling
	}
	lookup, created, err := resolver.Snapshot(context.Background(), candidates, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(created) != 1 || created[0] != "TIPL1003" {
		t.Fatalf("expected exactly TIPL1003 created, got %v", created)
	}
	if _, ok := lookup.IDFor("TIPL1003"); !ok {
		t.Fatal("expected refreshed lookup to carry the new id")
	}
	if _, ok := lookup.IDFor("TIPL1002"); !ok {
		t.Fatal("expected existing employee in lookup")
	}

	emp := store.created[0]
	if emp.Email != "tipl1003@placeholder.local" {
		t.Fatalf("expected placeholder email, got %q", emp.Email)
	}
	if emp.Department != "Unassigned" || !emp.IsActive {
		t.Fatalf("expected placeholder department and active flag, got %+v", emp)
	}
	if emp.Name != "Jane Roe" {
		t.Fatalf("expected name from candidate, got %q", emp.Name)
	}
}

func TestResolverSnapshotNoAutoCreate(t *testing.T) {
	store := &fakeStore{existing: map[string]string{"TIPL1002": "id-1"}}
	resolver := NewResolver(store, "Unassigned", "placeholder.local")

	lookup, created, err := resolver.Snapshot(context.Background(), []Candidate{{Code: "TIPL1002"}, {Code: "TIPL1009"}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected nothing created, got %v", created)
	}
	if _, ok := lookup.IDFor("TIPL1009"); ok {
		t.Fatal("unknown code must stay unresolved without auto-create")
	}
	if len(store.created) != 0 {
		t.Fatal("store must not see creations")
	}
}
