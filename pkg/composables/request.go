package composables

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/domain/entities/session"
	"github.com/gracewave/gracewave/pkg/constants"
)

var (
	ErrNoLogger         = errors.New("logger not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNoChurch         = errors.New("no church in context")
)

type Params struct {
	IP            string
	UserAgent     string
	RequestID     string
	Authenticated bool
	Request       *http.Request
	Writer        http.ResponseWriter
}

// UseParams returns the request parameters from the context.
// If the parameters are not found, the second return value will be false.
func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(constants.ParamsKey).(*Params)
	return params, ok
}

// WithParams returns a new context with the request parameters.
func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, constants.ParamsKey, params)
}

// UseLogger returns the request-scoped logger from the context.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic("logger not found")
	}
	return logger.(*logrus.Entry)
}

func UseAuthenticated(ctx context.Context) bool {
	params, ok := UseParams(ctx)
	if !ok {
		return false
	}
	return params.Authenticated
}

func UseIP(ctx context.Context) (string, bool) {
	params, ok := UseParams(ctx)
	if !ok {
		return "", false
	}
	return params.IP, true
}

func UseRequestID(ctx context.Context) (string, bool) {
	params, ok := UseParams(ctx)
	if !ok {
		return "", false
	}
	return params.RequestID, true
}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok || u == nil {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, constants.SessionKey, sess)
}

func UseSession(ctx context.Context) (*session.Session, error) {
	sess, ok := ctx.Value(constants.SessionKey).(*session.Session)
	if !ok || sess == nil {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}

// WithChurchID scopes the context to a church (tenant) identifier.
func WithChurchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ChurchIDKey, id)
}

// UseChurchID returns the church identifier the request is scoped to. The
// value comes from the authenticated user's church reference; callers that can
// operate without one should treat ErrNoChurch as "nothing to do".
func UseChurchID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(constants.ChurchIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoChurch
	}
	return id, nil
}
