package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/gracewave/gracewave/pkg/configuration"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "gracewave:ratelimit",
	})
}

// RateLimit applies a global per-client-IP request budget.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	conf := configuration.Use()
	period := cfg.Period
	if period == 0 {
		period = time.Second
	}
	rate := limiter.Rate{
		Period: period,
		Limit:  int64(cfg.RequestsPerPeriod),
	}
	instance := limiter.New(cfg.Store, rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiterCtx, err := instance.Get(r.Context(), getRealIP(r, conf))
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if limiterCtx.Reached {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
