package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	coreuser "github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/notification/domain/entities/notification"
	"github.com/gracewave/gracewave/modules/notification/permissions"
	"github.com/gracewave/gracewave/modules/pathway/domain/entities/pathway"
	"github.com/gracewave/gracewave/modules/pathway/domain/entities/progress"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

// NotificationService manages in-app notifications. Besides the
// request-facing API it subscribes to domain events and fans them out into
// per-user notification rows.
type NotificationService struct {
	repo      notification.Repository
	members   member.Repository
	pathways  pathway.Repository
	pool      *pgxpool.Pool
	log       *logrus.Logger
	publisher eventbus.EventBus
}

func NewNotificationService(
	repo notification.Repository,
	members member.Repository,
	pathways pathway.Repository,
	pool *pgxpool.Pool,
	log *logrus.Logger,
	publisher eventbus.EventBus,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		members:   members,
		pathways:  pathways,
		pool:      pool,
		log:       log,
		publisher: publisher,
	}
}

// Notify persists a notification for a user. It is also the sink for the
// event handlers below.
func (s *NotificationService) Notify(ctx context.Context, dto *notification.CreateDTO) (*notification.Notification, error) {
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*notification.Notification, error) {
		return s.repo.Create(txCtx, dto.ToEntity())
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(notification.CreatedEvent{Result: *created})
	return created, nil
}

// ListForUser returns the session user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context) ([]*notification.Notification, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := composables.CanUser(ctx, permissions.ObjectNotifications, permissions.ActionView); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*notification.Notification, error) {
		return s.repo.GetByUserID(txCtx, u.ID())
	})
}

// UnreadCount returns the number of unread notifications of the session user.
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return 0, err
	}
	if err := composables.CanUser(ctx, permissions.ObjectNotifications, permissions.ActionView); err != nil {
		return 0, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.CountUnread(txCtx, u.ID())
	})
}

// MarkRead marks a single notification read. Users can only touch their own
// notifications.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := composables.CanUser(ctx, permissions.ObjectNotifications, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*notification.Notification, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if existing.UserID != u.ID() {
			return nil, newServiceError(http.StatusForbidden, "NOTIFICATION_FORBIDDEN", "notification belongs to another user", nil)
		}
		return s.repo.MarkRead(txCtx, id)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(notification.ReadEvent{Result: *updated})
	return updated, nil
}

// MarkAllRead marks every unread notification of the session user and
// returns the number touched.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return 0, err
	}
	if err := composables.CanUser(ctx, permissions.ObjectNotifications, permissions.ActionUpdate); err != nil {
		return 0, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.MarkAllRead(txCtx, u.ID())
	})
}

// handlerContext builds a background context carrying the pool, since event
// handlers run outside any request scope.
func (s *NotificationService) handlerContext() context.Context {
	return composables.WithPool(context.Background(), s.pool)
}

// OnUserCreated greets every new account.
func (s *NotificationService) OnUserCreated(event coreuser.CreatedEvent) {
	ctx := s.handlerContext()
	_, err := s.Notify(ctx, &notification.CreateDTO{
		UserID: event.Result.ID(),
		Title:  "Welcome",
		Body:   fmt.Sprintf("Welcome aboard, %s!", event.Result.FirstName()),
	})
	if err != nil {
		s.log.WithError(err).Error("failed to create welcome notification")
	}
}

// OnMemberCreated tells the user they were added to a church.
func (s *NotificationService) OnMemberCreated(event member.CreatedEvent) {
	ctx := s.handlerContext()
	_, err := s.Notify(ctx, &notification.CreateDTO{
		UserID: event.Result.UserID,
		Title:  "Membership added",
		Body:   fmt.Sprintf("You were added to church %s as %s.", event.Result.ChurchID, event.Result.Role),
	})
	if err != nil {
		s.log.WithError(err).Error("failed to create membership notification")
	}
}

// OnProgressCompleted congratulates the member on a completed step. The
// membership row resolves which user to address.
func (s *NotificationService) OnProgressCompleted(event progress.CompletedEvent) {
	ctx := s.handlerContext()
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		m, err := s.members.GetByID(txCtx, event.Result.MemberID)
		if err != nil {
			return err
		}
		step, err := s.pathways.GetStepByID(txCtx, event.Result.StepID)
		if err != nil {
			return err
		}
		entity := (&notification.CreateDTO{
			UserID: m.UserID,
			Title:  "Step completed",
			Body:   fmt.Sprintf("You completed %q. Keep going!", step.Name),
		}).ToEntity()
		_, err = s.repo.Create(txCtx, entity)
		return err
	})
	if err != nil {
		s.log.WithError(err).Error("failed to create step completion notification")
	}
}
