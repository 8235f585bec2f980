package composables

import (
	"context"
	"errors"

	"github.com/gracewave/gracewave/pkg/authz"
)

type authzKey struct{}

var ErrNoAuthz = errors.New("no authz service found in context")

func WithAuthz(ctx context.Context, svc *authz.Service) context.Context {
	return context.WithValue(ctx, authzKey{}, svc)
}

func UseAuthz(ctx context.Context) (*authz.Service, error) {
	svc, ok := ctx.Value(authzKey{}).(*authz.Service)
	if !ok || svc == nil {
		return nil, ErrNoAuthz
	}
	return svc, nil
}

// CanUser checks the current user's role against the policy for the given
// object and action. The enforcement domain is the user's church, or the
// wildcard domain for users not attached to one.
func CanUser(ctx context.Context, object, action string) error {
	svc, err := UseAuthz(ctx)
	if err != nil {
		return err
	}
	u, err := UseUser(ctx)
	if err != nil {
		return ErrNotAuthenticated
	}
	domain := u.ChurchID()
	if domain == "" {
		domain = "*"
	}
	return svc.Authorize(ctx, authz.Request{
		Subject: string(u.Role()),
		Domain:  domain,
		Object:  object,
		Action:  action,
	})
}
