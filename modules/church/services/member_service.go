package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	"github.com/gracewave/gracewave/modules/church/permissions"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

type MemberService struct {
	repo      member.Repository
	publisher eventbus.EventBus
}

func NewMemberService(repo member.Repository, publisher eventbus.EventBus) *MemberService {
	return &MemberService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	if err := composables.CanUser(ctx, permissions.ObjectMembers, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*member.Member, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *MemberService) GetByChurchID(ctx context.Context, churchID string) ([]*member.Member, error) {
	if err := composables.CanUser(ctx, permissions.ObjectMembers, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*member.Member, error) {
		return s.repo.GetByChurchID(txCtx, churchID)
	})
}

func (s *MemberService) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*member.Member, error) {
	if err := composables.CanUser(ctx, permissions.ObjectMembers, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*member.Member, error) {
		return s.repo.GetByUserID(txCtx, userID)
	})
}

func (s *MemberService) Add(ctx context.Context, dto *member.CreateDTO) (*member.Member, error) {
	if err := composables.CanUser(ctx, permissions.ObjectMembers, permissions.ActionCreate); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*member.Member, error) {
		return s.repo.Create(txCtx, dto.ToEntity())
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(member.CreatedEvent{Result: *created})
	return created, nil
}

func (s *MemberService) Remove(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	if err := composables.CanUser(ctx, permissions.ObjectMembers, permissions.ActionDelete); err != nil {
		return nil, err
	}
	removed, err := composables.InTxResult(ctx, func(txCtx context.Context) (*member.Member, error) {
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
	s.publisher.Publish(member.DeletedEvent{Result: *removed})
	return removed, nil
}
