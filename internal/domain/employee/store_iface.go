package employee

import "context"

type StoreAPI interface {
	FindByCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context, query string, limit, offset int) ([]Employee, int, error)
	Create(ctx context.Context, emp Employee) (string, error)
	CreateManyIgnoringDuplicates(ctx context.Context, emps []Employee) (int, error)
	CodeIDMap(ctx context.Context, codes []string) (map[string]string, error)
}
