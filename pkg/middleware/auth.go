package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gracewave/gracewave/modules/core/services"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
)

// Authorize resolves the sid cookie into a session and user and attaches
// both to the request context. Requests without a valid session proceed
// unauthenticated; handlers decide whether that is fatal.
func Authorize() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(conf.SidCookieKey)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			app, err := composables.UseApp(ctx)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			authService := app.Service(services.AuthService{}).(*services.AuthService)

			u, sess, err := authService.Authenticate(ctx, cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			ctx = composables.WithSession(ctx, sess)
			ctx = composables.WithUser(ctx, u)
			if u.ChurchID() != "" {
				ctx = composables.WithChurchID(ctx, u.ChurchID())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
