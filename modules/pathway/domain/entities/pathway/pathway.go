package pathway

import (
	"time"

	"github.com/google/uuid"
)

// Pathway is an ordered discipleship track a church offers its members.
type Pathway struct {
	ID          uuid.UUID
	ChurchID    string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Step is a single stage within a pathway. Order is 1-based and unique per
// pathway.
type Step struct {
	ID        uuid.UUID
	PathwayID uuid.UUID
	Name      string
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateDTO struct {
	ChurchID    string
	Name        string
	Description string
}

func (d *CreateDTO) ToEntity() *Pathway {
	return &Pathway{
		ID:          uuid.New(),
		ChurchID:    d.ChurchID,
		Name:        d.Name,
		Description: d.Description,
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

type CreateStepDTO struct {
	PathwayID uuid.UUID
	Name      string
	Order     int
}

func (d *CreateStepDTO) ToEntity() *Step {
	return &Step{
		ID:        uuid.New(),
		PathwayID: d.PathwayID,
		Name:      d.Name,
		Order:     d.Order,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreatedEvent is published after a pathway has been persisted.
type CreatedEvent struct {
	Result Pathway
}

// UpdatedEvent is published after an existing pathway has been saved.
type UpdatedEvent struct {
	Result Pathway
}

// DeletedEvent is published after a pathway row has been removed.
type DeletedEvent struct {
	Result Pathway
}
