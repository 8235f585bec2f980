package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/church/domain/entities/campus"
	"github.com/gracewave/gracewave/modules/church/permissions"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

type CampusService struct {
	repo      campus.Repository
	publisher eventbus.EventBus
}

func NewCampusService(repo campus.Repository, publisher eventbus.EventBus) *CampusService {
	return &CampusService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *CampusService) GetByID(ctx context.Context, id uuid.UUID) (*campus.Campus, error) {
	if err := composables.CanUser(ctx, permissions.ObjectCampuses, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*campus.Campus, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *CampusService) GetByChurchID(ctx context.Context, churchID string) ([]*campus.Campus, error) {
	if err := composables.CanUser(ctx, permissions.ObjectCampuses, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*campus.Campus, error) {
		return s.repo.GetByChurchID(txCtx, churchID)
	})
}

func (s *CampusService) Create(ctx context.Context, dto *campus.CreateDTO) (*campus.Campus, error) {
	if err := composables.CanUser(ctx, permissions.ObjectCampuses, permissions.ActionCreate); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*campus.Campus, error) {
		return s.repo.Create(txCtx, dto.ToEntity())
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(campus.CreatedEvent{Result: *created})
	return created, nil
}

func (s *CampusService) Update(ctx context.Context, entity *campus.Campus) (*campus.Campus, error) {
	if err := composables.CanUser(ctx, permissions.ObjectCampuses, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*campus.Campus, error) {
		return s.repo.Update(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(campus.UpdatedEvent{Result: *updated})
	return updated, nil
}

func (s *CampusService) Delete(ctx context.Context, id uuid.UUID) (*campus.Campus, error) {
	if err := composables.CanUser(ctx, permissions.ObjectCampuses, permissions.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (*campus.Campus, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(campus.DeletedEvent{Result: *deleted})
	return deleted, nil
}
