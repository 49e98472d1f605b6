package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/emberlane/storefront-backend/api/responses"
	pkgerrors "github.com/emberlane/storefront-backend/pkg/errors"
	"github.com/emberlane/storefront-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// MutationRateLimitPolicy throttles cart mutations per session. Reads are
// never limited; only writes hit the platform.
type MutationRateLimitPolicy struct {
	Window time.Duration
	Limit  int
}

func (p MutationRateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

// MutationRateLimit enforces a fixed-window counter keyed by session id.
func MutationRateLimit(policy MutationRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sessionID := SessionID(ctx)
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("storefront:rate_limit:mutations:%s", sessionID)
			count, err := store.IncrWithTTL(ctx, key, policy.Window)
			if err != nil {
				// Redis trouble must not take the cart down with it.
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"error": err.Error()}), "rate_limit.counter_unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(policy.Limit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					})
					logg.Warn(logCtx, "cart.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many cart updates, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
