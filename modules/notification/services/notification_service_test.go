package services_test

import (
	"context"
	"io"
	"net/http"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreuser "github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/notification/domain/entities/notification"
	"github.com/gracewave/gracewave/modules/notification/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/notification/services"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/eventbus"
	"github.com/gracewave/gracewave/pkg/itf"
)

// ---- fakes ----

type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*notification.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[uuid.UUID]*notification.Notification{}}
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return nil, persistence.ErrNotificationNotFound
	}
	return n, nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return nil, persistence.ErrNotificationNotFound
	}
	n.Read = true
	return n, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var touched int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			touched++
		}
	}
	return touched, nil
}

// ---- fixture ----

type fixture struct {
	repo     *fakeNotificationRepo
	svc      *services.NotificationService
	authzSvc *authz.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeNotificationRepo()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &fixture{
		repo:     repo,
		svc:      services.NewNotificationService(repo, nil, nil, nil, logger, eventbus.NewEventPublisher(logger)),
		authzSvc: itf.BuildAuthz(t),
	}
}

func (f *fixture) userCtx(t *testing.T, u coreuser.User) context.Context {
	t.Helper()
	return itf.NewTestContext().WithUser(u).WithAuthz(f.authzSvc).Build()
}

func (f *fixture) seed(t *testing.T, userID uuid.UUID, title string) *notification.Notification {
	t.Helper()
	n, err := f.repo.Create(context.Background(), (&notification.CreateDTO{
		UserID: userID,
		Title:  title,
		Body:   "body",
	}).ToEntity())
	require.NoError(t, err)
	return n
}

// ---- tests ----

func TestNotificationService_ListForUser(t *testing.T) {
	f := newFixture(t)
	alice := coreuser.New("Alice", "Archer", "alice@example.com", coreuser.WithRole(coreuser.RoleMember))
	f.seed(t, alice.ID(), "first")
	f.seed(t, alice.ID(), "second")
	f.seed(t, uuid.New(), "someone else's")

	found, err := f.svc.ListForUser(f.userCtx(t, alice))
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, n := range found {
		assert.Equal(t, alice.ID(), n.UserID)
	}
}

func TestNotificationService_UnreadCount(t *testing.T) {
	f := newFixture(t)
	alice := coreuser.New("Alice", "Archer", "alice@example.com", coreuser.WithRole(coreuser.RoleMember))
	f.seed(t, alice.ID(), "first")
	read := f.seed(t, alice.ID(), "second")
	read.Read = true

	count, err := f.svc.UnreadCount(f.userCtx(t, alice))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Run("marks the user's own notification", func(t *testing.T) {
		f := newFixture(t)
		alice := coreuser.New("Alice", "Archer", "alice@example.com", coreuser.WithRole(coreuser.RoleMember))
		n := f.seed(t, alice.ID(), "unread")

		updated, err := f.svc.MarkRead(f.userCtx(t, alice), n.ID)
		require.NoError(t, err)
		assert.True(t, updated.Read)
	})

	t.Run("refuses another user's notification", func(t *testing.T) {
		f := newFixture(t)
		alice := coreuser.New("Alice", "Archer", "alice@example.com", coreuser.WithRole(coreuser.RoleMember))
		bob := coreuser.New("Bob", "Brown", "bob@example.com", coreuser.WithRole(coreuser.RoleMember))
		n := f.seed(t, bob.ID(), "bob's")

		_, err := f.svc.MarkRead(f.userCtx(t, alice), n.ID)
		require.Error(t, err)

		var svcErr *services.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusForbidden, svcErr.Status)
		assert.False(t, n.Read)
	})

	t.Run("reports a missing notification", func(t *testing.T) {
		f := newFixture(t)
		alice := coreuser.New("Alice", "Archer", "alice@example.com", coreuser.WithRole(coreuser.RoleMember))

		_, err := f.svc.MarkRead(f.userCtx(t, alice), uuid.New())
		assert.ErrorIs(t, err, persistence.ErrNotificationNotFound)
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	f := newFixture(t)
	alice := coreuser.New("Alice", "Archer", "alice@example.com", coreuser.WithRole(coreuser.RoleMember))
	f.seed(t, alice.ID(), "one")
	f.seed(t, alice.ID(), "two")
	f.seed(t, uuid.New(), "other user")

	touched, err := f.svc.MarkAllRead(f.userCtx(t, alice))
	require.NoError(t, err)
	assert.Equal(t, int64(2), touched)

	count, err := f.svc.UnreadCount(f.userCtx(t, alice))
	require.NoError(t, err)
	assert.Zero(t, count)
}
