package pathway

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Pathway, error)
	GetByChurchID(ctx context.Context, churchID string) ([]*Pathway, error)
	Create(ctx context.Context, p *Pathway) (*Pathway, error)
	Update(ctx context.Context, p *Pathway) (*Pathway, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetSteps(ctx context.Context, pathwayID uuid.UUID) ([]*Step, error)
	GetStepByID(ctx context.Context, id uuid.UUID) (*Step, error)
	CreateStep(ctx context.Context, s *Step) (*Step, error)
	DeleteStep(ctx context.Context, id uuid.UUID) error
}
