package services

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/pathway/domain/entities/pathway"
	"github.com/gracewave/gracewave/modules/pathway/domain/entities/progress"
	"github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/pathway/permissions"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

type PathwayService struct {
	pathways  pathway.Repository
	progress  progress.Repository
	publisher eventbus.EventBus
}

func NewPathwayService(pathways pathway.Repository, progressRepo progress.Repository, publisher eventbus.EventBus) *PathwayService {
	return &PathwayService{
		pathways:  pathways,
		progress:  progressRepo,
		publisher: publisher,
	}
}

func (s *PathwayService) GetByID(ctx context.Context, id uuid.UUID) (*pathway.Pathway, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*pathway.Pathway, error) {
		return s.pathways.GetByID(txCtx, id)
	})
}

func (s *PathwayService) GetByChurchID(ctx context.Context, churchID string) ([]*pathway.Pathway, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*pathway.Pathway, error) {
		return s.pathways.GetByChurchID(txCtx, churchID)
	})
}

func (s *PathwayService) Create(ctx context.Context, dto *pathway.CreateDTO) (*pathway.Pathway, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionCreate); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*pathway.Pathway, error) {
		return s.pathways.Create(txCtx, dto.ToEntity())
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(pathway.CreatedEvent{Result: *created})
	return created, nil
}

func (s *PathwayService) Update(ctx context.Context, entity *pathway.Pathway) (*pathway.Pathway, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*pathway.Pathway, error) {
		return s.pathways.Update(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(pathway.UpdatedEvent{Result: *updated})
	return updated, nil
}

func (s *PathwayService) Delete(ctx context.Context, id uuid.UUID) (*pathway.Pathway, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (*pathway.Pathway, error) {
		entity, err := s.pathways.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.pathways.Delete(txCtx, id); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(pathway.DeletedEvent{Result: *deleted})
	return deleted, nil
}

func (s *PathwayService) GetSteps(ctx context.Context, pathwayID uuid.UUID) ([]*pathway.Step, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*pathway.Step, error) {
		return s.pathways.GetSteps(txCtx, pathwayID)
	})
}

func (s *PathwayService) AddStep(ctx context.Context, dto *pathway.CreateStepDTO) (*pathway.Step, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*pathway.Step, error) {
		return s.pathways.CreateStep(txCtx, dto.ToEntity())
	})
}

func (s *PathwayService) RemoveStep(ctx context.Context, id uuid.UUID) error {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionUpdate); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.pathways.DeleteStep(txCtx, id)
	})
}

// MarkComplete records a member finishing a step. Recording the same step
// twice is a no-op and returns the existing completion state.
func (s *PathwayService) MarkComplete(ctx context.Context, memberID, stepID uuid.UUID) (*progress.Progress, error) {
	if err := composables.CanUser(ctx, permissions.ObjectProgress, permissions.ActionComplete); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*progress.Progress, error) {
		if _, err := s.pathways.GetStepByID(txCtx, stepID); err != nil {
			if errors.Is(err, persistence.ErrStepNotFound) {
				return nil, newServiceError(http.StatusNotFound, "PATHWAY_STEP_NOT_FOUND", "step not found", err)
			}
			return nil, err
		}
		exists, err := s.progress.Exists(txCtx, memberID, stepID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, nil
		}
		return s.progress.Create(txCtx, &progress.Progress{
			ID:          uuid.New(),
			MemberID:    memberID,
			StepID:      stepID,
			CompletedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	if created != nil {
		s.publisher.Publish(progress.CompletedEvent{Result: *created})
	}
	return created, nil
}

func (s *PathwayService) GetMemberProgress(ctx context.Context, memberID uuid.UUID) ([]*progress.Progress, error) {
	if err := composables.CanUser(ctx, permissions.ObjectProgress, permissions.ActionComplete); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*progress.Progress, error) {
		return s.progress.GetByMemberID(txCtx, memberID)
	})
}
