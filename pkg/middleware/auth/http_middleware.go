package auth

import (
	"context"
	"net/http"
	"strings"
)

func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev bypass for local testing (NEVER enable in prod)
			if m.devBypass {
				if u := devUser(r); u.Username != "" {
					r = r.WithContext(context.WithValue(r.Context(), userCtxKey, u))
				}
				next.ServeHTTP(w, r)
				return
			}
			if len(m.secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			raw, fromQuery := m.tokenFrom(r)
			if raw == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			u, err := m.validate(raw)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			// The iframe cannot send headers, so a token handed over in the URL
			// becomes a cookie for the app's follow-up requests.
			if fromQuery {
				c := &http.Cookie{Name: m.cookieName, Value: raw, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
				if r.TLS != nil {
					c.Secure, c.SameSite = true, http.SameSiteNoneMode
				}
				http.SetCookie(w, c)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, u)))
		})
	}
}

func (m *Middleware) tokenFrom(r *http.Request) (raw string, fromQuery bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
	}
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		return c.Value, false
	}
	if q := r.URL.Query().Get("token"); q != "" {
		return q, true
	}
	return "", false
}

func (m *Middleware) GetUser(ctx context.Context) User {
	if user, ok := ctx.Value(userCtxKey).(User); ok {
		return user
	}
	return User{}
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	u, ok := ctx.Value(userCtxKey).(User)
	return ok && u.Username != ""
}
