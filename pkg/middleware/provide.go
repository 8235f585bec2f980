package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/constants"
)

// Provide attaches a static value under the given context key for every
// request. Used to thread the application registry and the database pool.
func Provide(key constants.ContextKey, value interface{}) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProvideAuthz attaches the authorization service so capability checks can
// run anywhere down the call chain.
func ProvideAuthz(svc *authz.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithAuthz(r.Context(), svc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestParams collects per-request metadata into composables.Params.
func RequestParams() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params := &composables.Params{
				IP:        getRealIP(r, conf),
				UserAgent: r.UserAgent(),
				RequestID: r.Header.Get(conf.RequestIDHeader),
				Request:   r,
				Writer:    w,
			}
			ctx := composables.WithParams(r.Context(), params)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
