package progress

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByMemberID(ctx context.Context, memberID uuid.UUID) ([]*Progress, error)
	Exists(ctx context.Context, memberID, stepID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *Progress) (*Progress, error)
	// CountByStep returns, per step of the pathway, how many distinct members
	// have completed it.
	CountByStep(ctx context.Context, pathwayID uuid.UUID) (map[uuid.UUID]int64, error)
	// CountParticipants returns how many distinct members have recorded
	// progress anywhere in the pathway.
	CountParticipants(ctx context.Context, pathwayID uuid.UUID) (int64, error)
	DeleteByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error)
}
