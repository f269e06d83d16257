package logger

import (
	"context"

	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Middleware writes one access-log line per request.
type Middleware struct {
	access *zap.Logger
	bodies *allowlist
}

func ProvideLoggerMiddleware(cfg manifest.Config) *Middleware {
	return New(NewLog(cfg.Log.Dir, "http-access.log"), cfg.Log.BodyLogPaths...)
}

func ProvideLogger(cfg manifest.Config) *zap.Logger { return NewLog(cfg.Log.Dir, "system.log") }

// New builds the access middleware around an existing logger; bodyPaths
// extends the request-body allowlist.
func New(access *zap.Logger, bodyPaths ...string) *Middleware {
	if access == nil {
		access = zap.NewNop()
	}
	m := &Middleware{access: access, bodies: newAllowlist()}
	m.bodies.add(bodyPaths...)
	return m
}

// Module provides the system logger and access middleware and flushes both
// when the app stops.
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
	fx.Invoke(func(lc fx.Lifecycle, sys *zap.Logger, mw *Middleware) {
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			_ = mw.access.Sync()
			_ = sys.Sync()
			return nil
		}})
	}),
)
