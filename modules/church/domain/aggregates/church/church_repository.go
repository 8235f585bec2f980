package church

import "context"

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]Church, error)
	GetByID(ctx context.Context, id string) (Church, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, c Church) (Church, error)
	Update(ctx context.Context, c Church) (Church, error)
	// UpdateID rewrites the church's primary identifier in place. Dependent
	// tables are rewritten by their own repositories inside the same
	// transaction; the deferred constraints settle at commit.
	UpdateID(ctx context.Context, oldID, newID string) error
	Delete(ctx context.Context, id string) error
}
