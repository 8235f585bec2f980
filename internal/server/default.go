package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/constants"
	"github.com/gracewave/gracewave/pkg/metrics"
	"github.com/gracewave/gracewave/pkg/middleware"
	"github.com/gracewave/gracewave/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
	Authz         *authz.Service
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.ProvideAuthz(options.Authz),
		middleware.Cors(options.Configuration.AllowedOrigins...),
	}

	if options.Configuration.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch options.Configuration.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(options.Configuration.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("failed to create redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: options.Configuration.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	middlewares = append(middlewares,
		middleware.RequestParams(),
	)

	app.RegisterMiddleware(middlewares...)

	if options.Configuration.Prometheus.Enabled {
		app.RegisterControllers(
			metrics.NewPrometheusController(options.Configuration.Prometheus.Path),
		)
	}

	return server.NewHTTPServer(
		app,
		jsonErrorHandler(http.StatusNotFound, "NOT_FOUND", "resource not found"),
		jsonErrorHandler(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"),
	), nil
}

func jsonErrorHandler(status int, code, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    code,
			"message": message,
			"meta": map[string]string{
				"path": r.URL.Path,
			},
		})
	})
}
