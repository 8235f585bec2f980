package campus

import (
	"time"

	"github.com/google/uuid"
)

// Campus is a physical site belonging to a church.
type Campus struct {
	ID        uuid.UUID
	ChurchID  string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateDTO struct {
	ChurchID string
	Name     string
	Address  string
}

func (d *CreateDTO) ToEntity() *Campus {
	return &Campus{
		ID:        uuid.New(),
		ChurchID:  d.ChurchID,
		Name:      d.Name,
		Address:   d.Address,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreatedEvent is published after a campus has been persisted.
type CreatedEvent struct {
	Result Campus
}

// UpdatedEvent is published after an existing campus has been saved.
type UpdatedEvent struct {
	Result Campus
}

// DeletedEvent is published after a campus row has been removed.
type DeletedEvent struct {
	Result Campus
}
