package composables

import (
	"context"
	"errors"

	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/constants"
)

var ErrNoApp = errors.New("no application found in context")

func WithApp(ctx context.Context, app application.Application) context.Context {
	return context.WithValue(ctx, constants.AppKey, app)
}

func UseApp(ctx context.Context) (application.Application, error) {
	app, ok := ctx.Value(constants.AppKey).(application.Application)
	if !ok {
		return nil, ErrNoApp
	}
	return app, nil
}
