package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}

type CreateDTO struct {
	UserID uuid.UUID
	Title  string
	Body   string
}

func (d *CreateDTO) ToEntity() *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    d.UserID,
		Title:     d.Title,
		Body:      d.Body,
		CreatedAt: time.Now(),
	}
}

// CreatedEvent is published after a notification has been persisted.
type CreatedEvent struct {
	Result Notification
}

// ReadEvent is published after a notification has been marked read.
type ReadEvent struct {
	Result Notification
}
