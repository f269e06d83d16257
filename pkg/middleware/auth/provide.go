package auth

import (
	"os"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"go.uber.org/fx"
)

// ProvideAuthentication wires the manifest [auth] section.
// AUTH_DEV_BYPASS=true turns enforcement off and trusts X-Dev-* headers.
func ProvideAuthentication(cfg manifest.Config) *Middleware {
	return New(cfg.Auth, os.Getenv("AUTH_DEV_BYPASS") == "true")
}

func New(a manifest.Auth, devBypass bool) *Middleware {
	return &Middleware{
		secret:     []byte(a.JWTSecret),
		issuer:     a.Issuer,
		audience:   a.Audience,
		leeway:     time.Duration(a.LeewaySeconds) * time.Second,
		cookieName: a.CookieName,
		devBypass:  devBypass,
	}
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
