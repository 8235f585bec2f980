package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/permissions"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionList); err != nil {
		return 0, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *UserService) GetAll(ctx context.Context) ([]user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]user.User, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *UserService) GetByChurchID(ctx context.Context, churchID string) ([]user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]user.User, error) {
		return s.repo.GetByChurchID(txCtx, churchID)
	})
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.repo.GetByEmail(txCtx, email)
	})
}

func (s *UserService) Create(ctx context.Context, entity user.User) (user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionCreate); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(user.CreatedEvent{Result: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, entity user.User) (user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.repo.Update(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(user.UpdatedEvent{Result: updated})
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (user.User, error) {
	if err := composables.CanUser(ctx, permissions.ObjectUsers, permissions.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
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
	s.publisher.Publish(user.DeletedEvent{Result: deleted})
	return deleted, nil
}
