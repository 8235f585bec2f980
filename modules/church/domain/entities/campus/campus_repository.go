package campus

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Campus, error)
	GetByChurchID(ctx context.Context, churchID string) ([]*Campus, error)
	CountByChurchID(ctx context.Context, churchID string) (int64, error)
	Create(ctx context.Context, c *Campus) (*Campus, error)
	Update(ctx context.Context, c *Campus) (*Campus, error)
	// ReassignChurch rewrites the church reference on every campus of oldID
	// and returns the number of rows touched.
	ReassignChurch(ctx context.Context, oldID, newID string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByChurchID removes every campus of the church and returns the
	// number of rows removed.
	DeleteByChurchID(ctx context.Context, churchID string) (int64, error)
}
