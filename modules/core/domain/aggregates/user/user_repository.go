package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByChurchID(ctx context.Context, churchID string) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	// ReassignChurch rewrites the church reference on every user attached to
	// oldID and returns the number of rows touched. The column carries no
	// foreign key, so this is a plain bulk update.
	ReassignChurch(ctx context.Context, oldID, newID string) (int64, error)
	// DetachChurch clears the church reference on every user attached to the
	// given church and returns the number of rows touched.
	DetachChurch(ctx context.Context, churchID string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
