package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("auth: no jwt secret configured")
	ErrInvalidToken = errors.New("auth: invalid token")
)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Issue signs a token for subject valid for ttl.
func (m *Middleware) Issue(subject, role string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	if m.audience != "" {
		c.Audience = jwt.ClaimStrings{m.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *Middleware) validate(raw string) (User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	var c claims
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if m.audience != "" && !slices.Contains(c.Audience, m.audience) {
		return User{}, fmt.Errorf("%w: bad audience", ErrInvalidToken)
	}
	if c.Subject == "" {
		return User{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return User{
		Username:             c.Subject,
		AuthenticationSource: AuthenticationSource{Provider: "jwt"},
		Role:                 Role{Name: c.Role},
	}, nil
}
