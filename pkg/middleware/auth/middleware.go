package auth

import (
	"net/http"
	"time"
)

// Middleware guards the bridge with HS256 bearer tokens. With no secret it is
// a pass-through and every request is anonymous.
type Middleware struct {
	secret     []byte
	issuer     string
	audience   string
	leeway     time.Duration
	cookieName string
	devBypass  bool
}

// Enabled reports whether requests must carry a valid token.
func (m *Middleware) Enabled() bool { return len(m.secret) > 0 && !m.devBypass }

type Role struct {
	Name string `json:"name"`
}

type AuthenticationSource struct {
	Provider string `json:"provider"` // "jwt" or "dev"
}

// User is the caller attached to the request context.
type User struct {
	Username             string               `json:"username"`
	AuthenticationSource AuthenticationSource `json:"authenticationSource"`
	Role                 Role                 `json:"role"`
}

type contextKey struct{ name string }

var userCtxKey = &contextKey{"user"}

// devUser trusts X-Dev-User / X-Dev-Role when AUTH_DEV_BYPASS=true.
// Requests without X-Dev-User stay anonymous.
func devUser(r *http.Request) User {
	name := r.Header.Get("X-Dev-User")
	if name == "" {
		return User{}
	}
	role := r.Header.Get("X-Dev-Role")
	if role == "" {
		role = "developer"
	}
	return User{Username: name, AuthenticationSource: AuthenticationSource{Provider: "dev"}, Role: Role{Name: role}}
}
