// Package requesttime pins a single "now" for the lifetime of a request so that
// a verification timestamp and the notification it emits always agree.
package requesttime

import (
	"net/http"
	"time"

	"idregistry/pkg/requestcontext"
)

// Clock is the time source for the middleware.
type Clock func() time.Time

// Middleware stores the current UTC time, truncated to the second, in the
// request context. Stored timestamps have second precision, so truncating here
// keeps responses identical to what a later read returns.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock builds the middleware around an injectable clock.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := clock().UTC().Truncate(time.Second)
			ctx := requestcontext.WithTime(r.Context(), now)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
