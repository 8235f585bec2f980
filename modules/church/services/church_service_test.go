package services_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracewave/gracewave/modules/church/domain/aggregates/church"
	"github.com/gracewave/gracewave/modules/church/domain/entities/campus"
	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	"github.com/gracewave/gracewave/modules/church/domain/identifier"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/church/services"
	coreuser "github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	corepersistence "github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/eventbus"
	"github.com/gracewave/gracewave/pkg/itf"
)

// ---- fakes ----

type fakeChurchRepo struct {
	churches map[string]church.Church
}

func newFakeChurchRepo() *fakeChurchRepo {
	return &fakeChurchRepo{churches: map[string]church.Church{}}
}

func (f *fakeChurchRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.churches)), nil
}

func (f *fakeChurchRepo) GetAll(ctx context.Context) ([]church.Church, error) {
	out := make([]church.Church, 0, len(f.churches))
	for _, c := range f.churches {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeChurchRepo) GetByID(ctx context.Context, id string) (church.Church, error) {
	c, ok := f.churches[id]
	if !ok {
		return nil, persistence.ErrChurchNotFound
	}
	return c, nil
}

func (f *fakeChurchRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.churches[id]
	return ok, nil
}

func (f *fakeChurchRepo) Create(ctx context.Context, c church.Church) (church.Church, error) {
	f.churches[c.ID()] = c
	return c, nil
}

func (f *fakeChurchRepo) Update(ctx context.Context, c church.Church) (church.Church, error) {
	if _, ok := f.churches[c.ID()]; !ok {
		return nil, persistence.ErrChurchNotFound
	}
	f.churches[c.ID()] = c
	return c, nil
}

func (f *fakeChurchRepo) UpdateID(ctx context.Context, oldID, newID string) error {
	c, ok := f.churches[oldID]
	if !ok {
		return persistence.ErrChurchNotFound
	}
	delete(f.churches, oldID)
	f.churches[newID] = c.WithID(newID)
	return nil
}

func (f *fakeChurchRepo) Delete(ctx context.Context, id string) error {
	delete(f.churches, id)
	return nil
}

type fakeCampusRepo struct {
	campuses map[uuid.UUID]*campus.Campus

	// reassignErr, when set, fails ReassignChurch before touching anything.
	reassignErr error
}

func newFakeCampusRepo() *fakeCampusRepo {
	return &fakeCampusRepo{campuses: map[uuid.UUID]*campus.Campus{}}
}

func (f *fakeCampusRepo) GetByID(ctx context.Context, id uuid.UUID) (*campus.Campus, error) {
	c, ok := f.campuses[id]
	if !ok {
		return nil, persistence.ErrCampusNotFound
	}
	return c, nil
}

func (f *fakeCampusRepo) GetByChurchID(ctx context.Context, churchID string) ([]*campus.Campus, error) {
	var out []*campus.Campus
	for _, c := range f.campuses {
		if c.ChurchID == churchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCampusRepo) CountByChurchID(ctx context.Context, churchID string) (int64, error) {
	found, _ := f.GetByChurchID(ctx, churchID)
	return int64(len(found)), nil
}

func (f *fakeCampusRepo) Create(ctx context.Context, c *campus.Campus) (*campus.Campus, error) {
	f.campuses[c.ID] = c
	return c, nil
}

func (f *fakeCampusRepo) Update(ctx context.Context, c *campus.Campus) (*campus.Campus, error) {
	f.campuses[c.ID] = c
	return c, nil
}

func (f *fakeCampusRepo) ReassignChurch(ctx context.Context, oldID, newID string) (int64, error) {
	if f.reassignErr != nil {
		return 0, f.reassignErr
	}
	var touched int64
	for _, c := range f.campuses {
		if c.ChurchID == oldID {
			c.ChurchID = newID
			touched++
		}
	}
	return touched, nil
}

func (f *fakeCampusRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.campuses, id)
	return nil
}

func (f *fakeCampusRepo) DeleteByChurchID(ctx context.Context, churchID string) (int64, error) {
	var removed int64
	for id, c := range f.campuses {
		if c.ChurchID == churchID {
			delete(f.campuses, id)
			removed++
		}
	}
	return removed, nil
}

type fakeMemberRepo struct {
	members map[uuid.UUID]*member.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[uuid.UUID]*member.Member{}}
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, persistence.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) GetByChurchID(ctx context.Context, churchID string) ([]*member.Member, error) {
	var out []*member.Member
	for _, m := range f.members {
		if m.ChurchID == churchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*member.Member, error) {
	var out []*member.Member
	for _, m := range f.members {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) CountByChurchID(ctx context.Context, churchID string) (int64, error) {
	found, _ := f.GetByChurchID(ctx, churchID)
	return int64(len(found)), nil
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *member.Member) (*member.Member, error) {
	f.members[m.ID] = m
	return m, nil
}

func (f *fakeMemberRepo) ReassignChurch(ctx context.Context, oldID, newID string) (int64, error) {
	var touched int64
	for _, m := range f.members {
		if m.ChurchID == oldID {
			m.ChurchID = newID
			touched++
		}
	}
	return touched, nil
}

func (f *fakeMemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.members, id)
	return nil
}

func (f *fakeMemberRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var removed int64
	for id, m := range f.members {
		if m.UserID == userID {
			delete(f.members, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeMemberRepo) DeleteByChurchID(ctx context.Context, churchID string) (int64, error) {
	var removed int64
	for id, m := range f.members {
		if m.ChurchID == churchID {
			delete(f.members, id)
			removed++
		}
	}
	return removed, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]coreuser.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]coreuser.User{}}
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]coreuser.User, error) {
	out := make([]coreuser.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByChurchID(ctx context.Context, churchID string) ([]coreuser.User, error) {
	var out []coreuser.User
	for _, u := range f.users {
		if u.ChurchID() == churchID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (coreuser.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, corepersistence.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (coreuser.User, error) {
	for _, u := range f.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, corepersistence.ErrUserNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, corepersistence.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) Create(ctx context.Context, u coreuser.User) (coreuser.User, error) {
	f.users[u.ID()] = u
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u coreuser.User) (coreuser.User, error) {
	f.users[u.ID()] = u
	return u, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
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

// ---- fixture ----

type fixture struct {
	churches *fakeChurchRepo
	campuses *fakeCampusRepo
	members  *fakeMemberRepo
	users    *fakeUserRepo
	svc      *services.ChurchService
	authzSvc *authz.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	churches := newFakeChurchRepo()
	campuses := newFakeCampusRepo()
	members := newFakeMemberRepo()
	users := newFakeUserRepo()

	generator := identifier.NewGenerator("GW", 100, churches.Exists)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &fixture{
		churches: churches,
		campuses: campuses,
		members:  members,
		users:    users,
		svc: services.NewChurchService(
			churches, campuses, members, users, generator, eventbus.NewEventPublisher(logger),
		),
		authzSvc: itf.BuildAuthz(t),
	}
}

func (f *fixture) adminCtx(t *testing.T) context.Context {
	t.Helper()
	admin := coreuser.New("Ada", "Adams", "admin@example.com", coreuser.WithRole(coreuser.RoleAdmin))
	return itf.NewTestContext().WithUser(admin).WithAuthz(f.authzSvc).Build()
}

func (f *fixture) seedChurch(t *testing.T, id string, userEmail string) coreuser.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.churches.Create(ctx, church.New(id, "Grace Fellowship"))
	require.NoError(t, err)

	u := coreuser.New("Eve", "Evans", userEmail, coreuser.WithChurchID(id))
	_, err = f.users.Create(ctx, u)
	require.NoError(t, err)

	_, err = f.members.Create(ctx, (&member.CreateDTO{
		UserID:   u.ID(),
		ChurchID: id,
		Role:     member.RolePastor,
	}).ToEntity())
	require.NoError(t, err)

	_, err = f.campuses.Create(ctx, (&campus.CreateDTO{
		ChurchID: id,
		Name:     "Main Campus",
	}).ToEntity())
	require.NoError(t, err)
	_, err = f.campuses.Create(ctx, (&campus.CreateDTO{
		ChurchID: id,
		Name:     "North Campus",
	}).ToEntity())
	require.NoError(t, err)

	return u
}

// ---- tests ----

func TestChurchService_ReassignIdentifier(t *testing.T) {
	t.Run("rewrites the identifier across all referencing tables", func(t *testing.T) {
		f := newFixture(t)
		oldID := "GW-2024-AAAAAAAAA"
		f.seedChurch(t, oldID, "pastor@example.com")

		result, err := f.svc.ReassignIdentifier(f.adminCtx(t), "pastor@example.com")
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Equal(t, oldID, result.OldID)
		assert.NotEqual(t, oldID, result.NewID)
		assert.True(t, identifier.Valid(result.NewID))
		assert.Equal(t, int64(1), result.Users)
		assert.Equal(t, int64(1), result.Members)
		assert.Equal(t, int64(2), result.Campuses)

		_, err = f.churches.GetByID(context.Background(), oldID)
		assert.ErrorIs(t, err, persistence.ErrChurchNotFound)
		moved, err := f.churches.GetByID(context.Background(), result.NewID)
		require.NoError(t, err)
		assert.Equal(t, result.NewID, moved.ID())

		for _, m := range f.members.members {
			assert.Equal(t, result.NewID, m.ChurchID)
		}
		for _, ca := range f.campuses.campuses {
			assert.Equal(t, result.NewID, ca.ChurchID)
		}
		for _, u := range f.users.users {
			if u.Email() == "pastor@example.com" {
				assert.Equal(t, result.NewID, u.ChurchID())
			}
		}
	})

	t.Run("reports nothing to do for a user without a church", func(t *testing.T) {
		f := newFixture(t)
		u := coreuser.New("Sam", "Smith", "solo@example.com")
		_, err := f.users.Create(context.Background(), u)
		require.NoError(t, err)

		result, err := f.svc.ReassignIdentifier(f.adminCtx(t), "solo@example.com")
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Empty(t, result.NewID)
	})

	t.Run("unknown email maps to a 404 service error", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ReassignIdentifier(f.adminCtx(t), "ghost@example.com")
		var svcErr *services.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusNotFound, svcErr.Status)
		assert.Equal(t, "CHURCH_USER_NOT_FOUND", svcErr.Code)
	})

	t.Run("dangling church reference maps to a 404 service error", func(t *testing.T) {
		f := newFixture(t)
		u := coreuser.New("Eve", "Evans", "orphan@example.com", coreuser.WithChurchID("GW-2020-GONEGONE1"))
		_, err := f.users.Create(context.Background(), u)
		require.NoError(t, err)

		_, err = f.svc.ReassignIdentifier(f.adminCtx(t), "orphan@example.com")
		var svcErr *services.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusNotFound, svcErr.Status)
		assert.Equal(t, "CHURCH_NOT_FOUND", svcErr.Code)
	})

	t.Run("generator exhaustion maps to a 500 service error", func(t *testing.T) {
		f := newFixture(t)
		oldID := "GW-2024-AAAAAAAAA"
		f.seedChurch(t, oldID, "pastor@example.com")

		exhausted := identifier.NewGenerator("GW", 3, func(ctx context.Context, id string) (bool, error) {
			return true, nil
		})
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		svc := services.NewChurchService(
			f.churches, f.campuses, f.members, f.users, exhausted, eventbus.NewEventPublisher(logger),
		)

		_, err := svc.ReassignIdentifier(f.adminCtx(t), "pastor@example.com")
		var svcErr *services.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
		assert.Equal(t, "CHURCH_ID_EXHAUSTED", svcErr.Code)
		require.ErrorIs(t, err, identifier.ErrGenerationExhausted)

		// nothing moved
		_, getErr := f.churches.GetByID(context.Background(), oldID)
		assert.NoError(t, getErr)
	})

	t.Run("a failing write rolls the whole cascade back", func(t *testing.T) {
		f := newFixture(t)
		f.seedChurch(t, "GW-2024-AAAAAAAAA", "pastor@example.com")

		boom := errors.New("campuses unavailable")
		f.campuses.reassignErr = boom

		rec := &itf.TxRecorder{}
		admin := coreuser.New("Ada", "Adams", "admin@example.com", coreuser.WithRole(coreuser.RoleAdmin))
		ctx := itf.NewTestContext().
			WithUser(admin).
			WithAuthz(f.authzSvc).
			WithPool(&itf.PoolStub{Tx: rec}).
			Build()

		_, err := f.svc.ReassignIdentifier(ctx, "pastor@example.com")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, rec.Rollbacks)
		assert.Zero(t, rec.Commits)
	})

	t.Run("member role is refused", func(t *testing.T) {
		f := newFixture(t)
		f.seedChurch(t, "GW-2024-AAAAAAAAA", "pastor@example.com")

		plain := coreuser.New("Max", "Miller", "member@example.com", coreuser.WithRole(coreuser.RoleMember))
		ctx := itf.NewTestContext().WithUser(plain).WithAuthz(f.authzSvc).Build()

		_, err := f.svc.ReassignIdentifier(ctx, "pastor@example.com")
		assert.True(t, authz.IsForbidden(err), "expected forbidden, got %v", err)
	})
}

func TestChurchService_DeleteAccount(t *testing.T) {
	t.Run("removes user, memberships, campuses and church", func(t *testing.T) {
		f := newFixture(t)
		churchID := "GW-2024-AAAAAAAAA"
		u := f.seedChurch(t, churchID, "pastor@example.com")

		result, err := f.svc.DeleteAccount(f.adminCtx(t), "pastor@example.com")
		require.NoError(t, err)

		assert.Equal(t, int64(1), result.Memberships)
		assert.Equal(t, int64(2), result.Campuses)

		_, err = f.users.GetByID(context.Background(), u.ID())
		assert.ErrorIs(t, err, corepersistence.ErrUserNotFound)
		_, err = f.churches.GetByID(context.Background(), churchID)
		assert.ErrorIs(t, err, persistence.ErrChurchNotFound)
		assert.Empty(t, f.members.members)
		assert.Empty(t, f.campuses.campuses)
	})

	t.Run("user without church only loses account and memberships", func(t *testing.T) {
		f := newFixture(t)
		u := coreuser.New("Sam", "Smith", "solo@example.com")
		_, err := f.users.Create(context.Background(), u)
		require.NoError(t, err)

		result, err := f.svc.DeleteAccount(f.adminCtx(t), "solo@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Memberships)
		assert.Equal(t, int64(0), result.Campuses)
		_, err = f.users.GetByID(context.Background(), u.ID())
		assert.ErrorIs(t, err, corepersistence.ErrUserNotFound)
	})

	t.Run("unknown email maps to a 404 on every attempt and touches nothing", func(t *testing.T) {
		f := newFixture(t)
		f.seedChurch(t, "GW-2024-AAAAAAAAA", "pastor@example.com")

		for i := 0; i < 2; i++ {
			_, err := f.svc.DeleteAccount(f.adminCtx(t), "ghost@example.com")
			var svcErr *services.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, http.StatusNotFound, svcErr.Status)
		}

		assert.Len(t, f.users.users, 1)
		assert.Len(t, f.members.members, 1)
		assert.Len(t, f.campuses.campuses, 2)
		_, err := f.churches.GetByID(context.Background(), "GW-2024-AAAAAAAAA")
		assert.NoError(t, err)
	})
}

func TestChurchService_Create(t *testing.T) {
	t.Run("mints an identifier with the shared scheme", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.svc.Create(f.adminCtx(t), "New Hope", "a new plant")
		require.NoError(t, err)
		assert.True(t, identifier.Valid(created.ID()))
		assert.Equal(t, "New Hope", created.Name())

		stored, err := f.churches.GetByID(context.Background(), created.ID())
		require.NoError(t, err)
		assert.Equal(t, created.ID(), stored.ID())
	})

	t.Run("staff cannot create churches", func(t *testing.T) {
		f := newFixture(t)
		staff := coreuser.New("Stu", "Stewart", "staff@example.com", coreuser.WithRole(coreuser.RoleStaff))
		ctx := itf.NewTestContext().WithUser(staff).WithAuthz(f.authzSvc).Build()

		_, err := f.svc.Create(ctx, "New Hope", "")
		assert.True(t, authz.IsForbidden(err), "expected forbidden, got %v", err)
	})
}
