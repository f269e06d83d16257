package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef-test"

func whoami(m *Middleware) http.Handler {
	return m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(m.GetUser(r.Context()).Username))
	}))
}

func TestDisabledIsPassThrough(t *testing.T) {
	m := New(manifest.Auth{}, false)
	assert.False(t, m.Enabled())

	rec := httptest.NewRecorder()
	whoami(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	m := New(manifest.Auth{JWTSecret: secret, Issuer: "vblocks", Audience: "bridge", CookieName: "vblocks_token"}, false)
	require.True(t, m.Enabled())
	tok, err := m.Issue("ada", "admin", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	whoami(m).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", rec.Body.String())
}

func TestRejects(t *testing.T) {
	m := New(manifest.Auth{JWTSecret: secret, CookieName: "vblocks_token"}, false)
	other := New(manifest.Auth{JWTSecret: "another-secret-0123456"}, false)
	foreign, err := other.Issue("eve", "", time.Minute)
	require.NoError(t, err)
	expired, err := m.Issue("bob", "", -time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"missing": "",
		"garbage": "Bearer not.a.jwt",
		"foreign": "Bearer " + foreign,
		"expired": "Bearer " + expired,
	}
	for name, hdr := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if hdr != "" {
				req.Header.Set("Authorization", hdr)
			}
			rec := httptest.NewRecorder()
			whoami(m).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestQueryTokenSetsCookie(t *testing.T) {
	m := New(manifest.Auth{JWTSecret: secret, CookieName: "vblocks_token"}, false)
	tok, err := m.Issue("ada", "", time.Minute)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	whoami(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html?token="+tok, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vblocks_token", cookies[0].Name)

	req := httptest.NewRequest(http.MethodPost, "/apipost/inference", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	whoami(m).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", rec.Body.String())
}

func TestDevBypass(t *testing.T) {
	m := New(manifest.Auth{JWTSecret: secret}, true)
	assert.False(t, m.Enabled())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Dev-User", "dev")
	rec := httptest.NewRecorder()
	whoami(m).ServeHTTP(rec, req)
	assert.Equal(t, "dev", rec.Body.String())
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := New(manifest.Auth{}, false).Issue("x", "", time.Minute)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestDevUserDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Equal(t, User{}, devUser(req))

	req.Header.Set("X-Dev-User", "grace")
	u := devUser(req)
	assert.Equal(t, "developer", u.Role.Name)
	assert.Equal(t, "dev", u.AuthenticationSource.Provider)

	req.Header.Set("X-Dev-Role", "admin")
	assert.Equal(t, "admin", devUser(req).Role.Name)
}
