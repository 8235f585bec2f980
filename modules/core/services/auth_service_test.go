package services_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/domain/entities/session"
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/core/services"
	"github.com/gracewave/gracewave/pkg/eventbus"
	"github.com/gracewave/gracewave/pkg/itf"
)

// ---- fakes ----

type fakeUserRepo struct {
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]user.User{}}
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByChurchID(ctx context.Context, churchID string) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.ChurchID() == churchID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, persistence.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, persistence.ErrUserNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, persistence.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	f.users[u.ID()] = u
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	f.users[u.ID()] = u
	return u, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return persistence.ErrUserNotFound
	}
	f.users[id] = user.New(
		u.FirstName(), u.LastName(), u.Email(),
		user.WithID(u.ID()),
		user.WithRole(u.Role()),
		user.WithChurchID(u.ChurchID()),
		user.WithPasswordHash(u.PasswordHash()),
		user.WithLastLogin(time.Now()),
	)
	return nil
}

func (f *fakeUserRepo) ReassignChurch(ctx context.Context, oldID, newID string) (int64, error) {
	var touched int64
	for id, u := range f.users {
		if u.ChurchID() == oldID {
			f.users[id] = u.WithChurchID(newID)
			touched++
		}
	}
	return touched, nil
}

func (f *fakeUserRepo) DetachChurch(ctx context.Context, churchID string) (int64, error) {
	var touched int64
	for id, u := range f.users {
		if u.ChurchID() == churchID {
			f.users[id] = u.WithChurchID("")
			touched++
		}
	}
	return touched, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*session.Session{}}
}

func (f *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, persistence.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *session.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var removed int64
	for token, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	for token, s := range f.sessions {
		if s.IsExpired() {
			delete(f.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// ---- fixture ----

type authFixture struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	svc      *services.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &authFixture{
		users:    users,
		sessions: sessions,
		svc:      services.NewAuthService(users, sessions, eventbus.NewEventPublisher(logger)),
	}
}

func anonCtx() context.Context {
	return itf.NewTestContext().Build()
}

// ---- tests ----

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a member with a usable password", func(t *testing.T) {
		f := newAuthFixture(t)

		created, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
		require.NoError(t, err)

		assert.Equal(t, user.RoleMember, created.Role())
		assert.True(t, created.CheckPassword("s3cret"))
		assert.False(t, created.CheckPassword("wrong"))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
		require.NoError(t, err)

		_, err = f.svc.Register(anonCtx(), "Imposter", "Archer", "alice@example.com", "other")
		assert.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("opens a session for valid credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
		require.NoError(t, err)

		u, sess, err := f.svc.Login(anonCtx(), "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email())
		require.NotNil(t, sess)
		assert.Len(t, sess.Token, 64)
		assert.True(t, sess.ExpiresAt.After(time.Now()))

		stored, err := f.sessions.GetByToken(anonCtx(), sess.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID(), stored.UserID)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
		require.NoError(t, err)

		_, _, err = f.svc.Login(anonCtx(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		f := newAuthFixture(t)

		_, _, err := f.svc.Login(anonCtx(), "ghost@example.com", "s3cret")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("resolves a live session", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
		require.NoError(t, err)
		_, sess, err := f.svc.Login(anonCtx(), "alice@example.com", "s3cret")
		require.NoError(t, err)

		u, resolved, err := f.svc.Authenticate(anonCtx(), sess.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email())
		assert.Equal(t, sess.Token, resolved.Token)
	})

	t.Run("rejects and removes an expired session", func(t *testing.T) {
		f := newAuthFixture(t)
		created, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
		require.NoError(t, err)

		expired := &session.Session{
			Token:     "expiredtoken",
			UserID:    created.ID(),
			ExpiresAt: time.Now().Add(-time.Hour),
			CreatedAt: time.Now().Add(-2 * time.Hour),
		}
		require.NoError(t, f.sessions.Create(anonCtx(), expired))

		_, _, err = f.svc.Authenticate(anonCtx(), "expiredtoken")
		assert.ErrorIs(t, err, services.ErrSessionExpired)

		_, err = f.sessions.GetByToken(anonCtx(), "expiredtoken")
		assert.ErrorIs(t, err, persistence.ErrSessionNotFound)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		f := newAuthFixture(t)

		_, _, err := f.svc.Authenticate(anonCtx(), "nope")
		assert.ErrorIs(t, err, persistence.ErrSessionNotFound)
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
	require.NoError(t, err)
	_, sess, err := f.svc.Login(anonCtx(), "alice@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(anonCtx(), sess.Token))

	_, err = f.sessions.GetByToken(anonCtx(), sess.Token)
	assert.ErrorIs(t, err, persistence.ErrSessionNotFound)
}

func TestAuthService_CleanupExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	created, err := f.svc.Register(anonCtx(), "Alice", "Archer", "alice@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Create(anonCtx(), &session.Session{
		Token:     "dead",
		UserID:    created.ID(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, f.sessions.Create(anonCtx(), &session.Session{
		Token:     "alive",
		UserID:    created.ID(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	removed, err := f.svc.CleanupExpiredSessions(anonCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, f.sessions.sessions, 1)
}
