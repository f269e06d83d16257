package core

import (
	"context"
	"net/http"
	"time"
)

// withInferenceTimeout bounds the request context handed to user functions.
// Functions that ignore ctx still run to completion.
func withInferenceTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	if d <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
