package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/domain/entities/session"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

type AuthService struct {
	users     user.Repository
	sessions  session.Repository
	publisher eventbus.EventBus
}

func NewAuthService(users user.Repository, sessions session.Repository, publisher eventbus.EventBus) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
	}
}

// Register creates a new user with the member role. Registration is open,
// so no permission check applies.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (user.User, error) {
	hash, err := user.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	entity := user.New(firstName, lastName, email, user.WithPasswordHash(hash))

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		exists, err := s.users.EmailExists(txCtx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.New("email already registered")
		}
		return s.users.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(user.CreatedEvent{Result: created})
	return created, nil
}

// Login verifies credentials and opens a session. The opaque token is
// returned for the caller to set as the sid cookie.
func (s *AuthService) Login(ctx context.Context, email, password string) (user.User, *session.Session, error) {
	conf := configuration.Use()

	u, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.users.GetByEmail(txCtx, email)
	})
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.CheckPassword(password) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, nil, err
	}

	params, _ := composables.UseParams(ctx)
	dto := &session.CreateDTO{
		Token:     token,
		UserID:    u.ID(),
		ExpiresAt: time.Now().Add(conf.SessionDuration),
	}
	if params != nil {
		dto.IP = params.IP
		dto.UserAgent = params.UserAgent
	}
	sess := dto.ToEntity()

	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.sessions.Create(txCtx, sess); err != nil {
			return err
		}
		return s.users.UpdateLastLogin(txCtx, u.ID())
	}); err != nil {
		return nil, nil, err
	}
	s.publisher.Publish(session.CreatedEvent{Result: *sess})
	return u, sess, nil
}

// Authenticate resolves a session token to its session and user. Expired
// sessions are rejected and removed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (user.User, *session.Session, error) {
	type authResult struct {
		user    user.User
		session *session.Session
	}
	res, err := composables.InTxResult(ctx, func(txCtx context.Context) (authResult, error) {
		sess, err := s.sessions.GetByToken(txCtx, token)
		if err != nil {
			return authResult{}, err
		}
		if sess.IsExpired() {
			_ = s.sessions.Delete(txCtx, sess.Token)
			return authResult{}, ErrSessionExpired
		}
		u, err := s.users.GetByID(txCtx, sess.UserID)
		if err != nil {
			return authResult{}, err
		}
		return authResult{user: u, session: sess}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return res.user, res.session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.sessions.Delete(txCtx, token)
	}); err != nil {
		return err
	}
	s.publisher.Publish(session.DeletedEvent{Token: token})
	return nil
}

// CleanupExpiredSessions removes sessions past their expiry and returns the
// number removed.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.sessions.DeleteExpired(txCtx)
	})
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate session token")
	}
	return hex.EncodeToString(b), nil
}
