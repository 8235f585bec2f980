package services

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/gracewave/gracewave/modules/church/domain/aggregates/church"
	"github.com/gracewave/gracewave/modules/church/domain/entities/campus"
	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	"github.com/gracewave/gracewave/modules/church/domain/identifier"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/church/permissions"
	coreuser "github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	corepersistence "github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

// ReassignResult reports a completed identifier reassignment cascade.
// Changed is false when the user has no church attached, in which case no
// rows were touched.
type ReassignResult struct {
	Changed  bool
	OldID    string
	NewID    string
	Users    int64
	Members  int64
	Campuses int64
}

// DeleteResult reports the rows removed by an account deletion.
type DeleteResult struct {
	Memberships int64
	Campuses    int64
}

type ChurchService struct {
	churches  church.Repository
	campuses  campus.Repository
	members   member.Repository
	users     coreuser.Repository
	generator *identifier.Generator
	publisher eventbus.EventBus
}

func NewChurchService(
	churches church.Repository,
	campuses campus.Repository,
	members member.Repository,
	users coreuser.Repository,
	generator *identifier.Generator,
	publisher eventbus.EventBus,
) *ChurchService {
	return &ChurchService{
		churches:  churches,
		campuses:  campuses,
		members:   members,
		users:     users,
		generator: generator,
		publisher: publisher,
	}
}

func (s *ChurchService) Count(ctx context.Context) (int64, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionList); err != nil {
		return 0, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.churches.Count(txCtx)
	})
}

func (s *ChurchService) GetAll(ctx context.Context) ([]church.Church, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionList); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]church.Church, error) {
		return s.churches.GetAll(txCtx)
	})
}

func (s *ChurchService) GetByID(ctx context.Context, id string) (church.Church, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (church.Church, error) {
		return s.churches.GetByID(txCtx, id)
	})
}

// Create mints an identifier with the shared scheme and persists the
// church under it.
func (s *ChurchService) Create(ctx context.Context, name, description string) (church.Church, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionCreate); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (church.Church, error) {
		id, err := s.generator.Generate(txCtx)
		if err != nil {
			return nil, err
		}
		return s.churches.Create(txCtx, church.New(id, name, church.WithDescription(description)))
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(church.CreatedEvent{Result: created})
	return created, nil
}

func (s *ChurchService) Update(ctx context.Context, entity church.Church) (church.Church, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (church.Church, error) {
		return s.churches.Update(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(church.UpdatedEvent{Result: updated})
	return updated, nil
}

// ReassignIdentifier looks up the user by email, mints a fresh church
// identifier and rewrites the church row plus every table referencing the
// old identifier in one transaction. All four tables move or none do.
func (s *ChurchService) ReassignIdentifier(ctx context.Context, email string) (*ReassignResult, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionAdmin); err != nil {
		return nil, err
	}

	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*ReassignResult, error) {
		u, err := s.users.GetByEmail(txCtx, email)
		if err != nil {
			if errors.Is(err, corepersistence.ErrUserNotFound) {
				return nil, newServiceError(http.StatusNotFound, "CHURCH_USER_NOT_FOUND", "user not found", err)
			}
			return nil, err
		}

		oldID := u.ChurchID()
		if oldID == "" {
			return &ReassignResult{Changed: false}, nil
		}

		if _, err := s.churches.GetByID(txCtx, oldID); err != nil {
			if errors.Is(err, persistence.ErrChurchNotFound) {
				return nil, newServiceError(http.StatusNotFound, "CHURCH_NOT_FOUND", "church not found", err)
			}
			return nil, err
		}

		newID, err := s.generator.Generate(txCtx)
		if err != nil {
			return nil, newServiceError(http.StatusInternalServerError, "CHURCH_ID_EXHAUSTED", "failed to generate a free identifier", err)
		}

		if err := s.churches.UpdateID(txCtx, oldID, newID); err != nil {
			return nil, err
		}
		users, err := s.users.ReassignChurch(txCtx, oldID, newID)
		if err != nil {
			return nil, err
		}
		members, err := s.members.ReassignChurch(txCtx, oldID, newID)
		if err != nil {
			return nil, err
		}
		campuses, err := s.campuses.ReassignChurch(txCtx, oldID, newID)
		if err != nil {
			return nil, err
		}

		return &ReassignResult{
			Changed:  true,
			OldID:    oldID,
			NewID:    newID,
			Users:    users,
			Members:  members,
			Campuses: campuses,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if result.Changed {
		s.publisher.Publish(church.IdentifierReassignedEvent{OldID: result.OldID, NewID: result.NewID})
	}
	return result, nil
}

// DeleteAccount removes the user, their memberships and, when the user is
// attached to a church, that church with all of its campuses, in one
// transaction. The church is removed regardless of other members; that
// matches the administrative semantics of a single-congregation tool and is
// deliberately not guarded.
func (s *ChurchService) DeleteAccount(ctx context.Context, email string) (*DeleteResult, error) {
	if err := composables.CanUser(ctx, permissions.ObjectChurches, permissions.ActionAdmin); err != nil {
		return nil, err
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (*DeleteResult, error) {
		u, err := s.users.GetByEmail(txCtx, email)
		if err != nil {
			if errors.Is(err, corepersistence.ErrUserNotFound) {
				return nil, newServiceError(http.StatusNotFound, "CHURCH_USER_NOT_FOUND", "user not found", err)
			}
			return nil, err
		}

		memberships, err := s.members.DeleteByUserID(txCtx, u.ID())
		if err != nil {
			return nil, err
		}
		if err := s.users.Delete(txCtx, u.ID()); err != nil {
			return nil, err
		}

		var campusesRemoved int64
		if churchID := u.ChurchID(); churchID != "" {
			campusesRemoved, err = s.campuses.DeleteByChurchID(txCtx, churchID)
			if err != nil {
				return nil, err
			}
			if _, err := s.members.DeleteByChurchID(txCtx, churchID); err != nil {
				return nil, err
			}
			if err := s.churches.Delete(txCtx, churchID); err != nil {
				return nil, err
			}
		}

		return &DeleteResult{
			Memberships: memberships,
			Campuses:    campusesRemoved,
		}, nil
	})
}
