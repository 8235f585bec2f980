package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// GetByUserID returns the user's notifications, newest first.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, n *Notification) (*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error)
	// MarkAllRead marks every unread notification of the user and returns
	// the number of rows touched.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
