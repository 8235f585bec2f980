package member

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByChurchID(ctx context.Context, churchID string) ([]*Member, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Member, error)
	CountByChurchID(ctx context.Context, churchID string) (int64, error)
	Create(ctx context.Context, m *Member) (*Member, error)
	// ReassignChurch rewrites the church reference on every membership of
	// oldID and returns the number of rows touched.
	ReassignChurch(ctx context.Context, oldID, newID string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUserID removes every membership of the user and returns the
	// number of rows removed.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByChurchID(ctx context.Context, churchID string) (int64, error)
}
