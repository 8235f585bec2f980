package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated browser session keyed by an opaque token
// carried in the sid cookie.
type Session struct {
	Token     string
	UserID    uuid.UUID
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

type CreateDTO struct {
	Token     string
	UserID    uuid.UUID
	IP        string
	UserAgent string
	ExpiresAt time.Time
}

func (d *CreateDTO) ToEntity() *Session {
	return &Session{
		Token:     d.Token,
		UserID:    d.UserID,
		IP:        d.IP,
		UserAgent: d.UserAgent,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: time.Now(),
	}
}

// CreatedEvent is published after a session has been opened.
type CreatedEvent struct {
	Result Session
}

// DeletedEvent is published after a session has been closed.
type DeletedEvent struct {
	Token string
}
