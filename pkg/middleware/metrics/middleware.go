package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/joeydtaylor/vblocks/pkg/middleware/auth"
)

// Collect records request counts, latency, in-flight requests and bytes sent
// per normalized URI. The role label comes from the authenticated user.
func Collect(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSkipPath(r) {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			inflightRequests.Inc()

			defer func() {
				inflightRequests.Dec()
				role := "anonymous"
				if ca != nil {
					if n := ca.GetUser(r.Context()).Role.Name; n != "" {
						role = n
					}
				}
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK // nothing written explicitly
				}
				code := strconv.Itoa(status)
				uri := normalizePath(r)

				totalHttpRequestsFromRole.WithLabelValues(role).Inc()
				totalHttpRequestsToUri.WithLabelValues(code, uri, r.Method).Inc()
				totalHttpRequests.WithLabelValues(code, r.Method).Inc()
				responseBytes.WithLabelValues(uri).Add(float64(ww.BytesWritten()))
				responseTime.Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
