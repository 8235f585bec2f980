package session

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByToken(ctx context.Context, token string) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
