package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	h "cfpportal/internal/delivery/http/helpers"
)

const rateLimitPrefix = "cfp:ratelimit"

// NewRateLimiter returns a per-client-IP limiter for the JSON API. rate
// uses the limiter format, e.g. "300-M". Counters live in redis when a
// client is given so that replicas share them, otherwise in memory.
// X-Forwarded-For and X-Real-IP are only honoured when trustProxy is set.
func NewRateLimiter(rate string, trustProxy bool, client redis.UniversalClient, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err != nil {
			return nil, fmt.Errorf("create rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	}

	instance := limiter.New(store, r, limiter.WithTrustForwardHeader(trustProxy))
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "rate limit exceeded")
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			h.WriteServiceError(w, r, logger, fmt.Errorf("rate limit store: %w", err))
		}),
	)
	return mw.Handler, nil
}
