package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/vblocks/pkg/bundle"
	"github.com/joeydtaylor/vblocks/pkg/bundlefx"
	"github.com/joeydtaylor/vblocks/pkg/core"
	"github.com/joeydtaylor/vblocks/pkg/dispatch"
	"github.com/joeydtaylor/vblocks/pkg/frame"
	"github.com/joeydtaylor/vblocks/pkg/manifest"
	"github.com/joeydtaylor/vblocks/pkg/middleware/auth"
	"github.com/joeydtaylor/vblocks/pkg/middleware/logger"
	"github.com/joeydtaylor/vblocks/pkg/middleware/metrics"
	"github.com/joeydtaylor/vblocks/pkg/registry"
	"github.com/joeydtaylor/vblocks/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // VBLOCKS_MANIFEST
	DefaultManifest string // vblocks.toml, optional on disk
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "vblocks",
		ManifestEnv:     "VBLOCKS_MANIFEST",
		DefaultManifest: "vblocks.toml",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// SiteRoot is the directory the static web app is served from.
type SiteRoot string

// Endpoint is filled in once the listener is bound.
type Endpoint struct {
	Addr   string // host:port actually bound
	URL    string // base URL of the app, with trailing slash
	AppURL string // editor entry point
	IFrame string // embed snippet
}

// Module returns a complete Fx option set. The caller supplies the
// *registry.Registry, e.g. fx.Supply(reg).
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		// Core middleware
		bundlefx.Module,
		// Router impl
		fx.Provide(httpx.NewChi),
		fx.Provide(provideDispatcher),
		fx.Provide(provideSiteRoot),
		fx.Provide(fx.Annotate(provideRouter, fx.ResultTags(`name:"app"`))),
		fx.Provide(func() *Endpoint { return &Endpoint{} }),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// New builds the server app around reg; extra options are appended, e.g.
// fx.Populate or fx.NopLogger.
func New(reg *registry.Registry, extra []fx.Option, opts ...Option) *fx.App {
	return fx.New(append([]fx.Option{Module(opts...), fx.Supply(reg)}, extra...)...)
}

func provideManifest(cfg Config) (manifest.Config, error) {
	return core.LoadConfigOrDefault(envOr(cfg.ManifestEnv, cfg.DefaultManifest))
}

func provideDispatcher(reg *registry.Registry, man manifest.Config, log *zap.Logger) *dispatch.Dispatcher {
	return dispatch.New(reg,
		dispatch.WithLogger(log.Named("dispatch")),
		dispatch.WithObserver(metrics.InferenceObserver{}),
		dispatch.WithSerialized(man.Server.SerializeInference()),
	)
}

func provideSiteRoot(lc fx.Lifecycle, man manifest.Config, log *zap.Logger) (SiteRoot, error) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{OnStop: func(context.Context) error { cancel(); return nil }})
	root, err := bundle.NewFetcher(log.Named("bundle")).Prepare(ctx, man.Bundle)
	if err != nil {
		cancel()
		return "", err
	}
	return SiteRoot(root), nil
}

// ---------- Router ----------

type routerDeps struct {
	fx.In

	Man manifest.Config

	AuthMW *auth.Middleware
	LogMW  *logger.Middleware

	Metrics http.Handler `name:"metrics"`

	Dispatcher *dispatch.Dispatcher
	Site       SiteRoot
	R          httpx.Router
	Log        *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	if !d.AuthMW.Enabled() {
		d.Log.Warn("auth disabled", zap.Bool("jwt_secret_set", d.Man.Auth.JWTSecret != ""))
	}
	return core.BuildRouter(d.Man, core.BuildDeps{
		Auth:       d.AuthMW,
		LogMW:      d.LogMW,
		Metrics:    d.Metrics,
		Router:     d.R,
		Dispatcher: d.Dispatcher,
		SiteRoot:   string(d.Site),
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Opts       Config
	Man        manifest.Config
	Logger     *zap.Logger
	Dispatcher *dispatch.Dispatcher
	Endpoint   *Endpoint
	App        http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	cert := os.Getenv(d.Opts.TLSCertEnv)
	key := os.Getenv(d.Opts.TLSKeyEnv)
	useTLS := fileExists(cert) && fileExists(key)

	srv := &http.Server{
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // inference can be slow
		IdleTimeout:  60 * time.Second,
	}
	if useTLS {
		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", d.Man.Server.Listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", d.Man.Server.Listen, err)
			}
			fillEndpoint(d.Endpoint, ln.Addr().String(), useTLS, d.Man.Frame, d.Logger)

			d.Logger.Info("server starting",
				zap.String("service", d.Opts.Service),
				zap.String("addr", d.Endpoint.Addr),
				zap.Bool("tls", useTLS),
				zap.Any("functions", d.Dispatcher.List()),
			)
			d.Logger.Info("visual blocks ready", zap.String("url", d.Endpoint.AppURL), zap.String("iframe", d.Endpoint.IFrame))

			go func() {
				var err error
				if useTLS {
					err = srv.ServeTLS(ln, cert, key)
				} else {
					err = srv.Serve(ln)
				}
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping")
			return srv.Shutdown(ctx)
		},
	})
}

func fillEndpoint(ep *Endpoint, addr string, useTLS bool, f manifest.Frame, log *zap.Logger) {
	ep.Addr = addr
	ep.URL = f.PublicURL
	if ep.URL == "" {
		scheme := "http"
		if useTLS {
			scheme = "https"
		}
		ep.URL = scheme + "://" + dialable(addr) + "/"
	}
	var project string
	if f.ProjectFile != "" {
		p, err := frame.ReadProject(f.ProjectFile)
		if err != nil {
			log.Warn("saved project ignored", zap.String("path", f.ProjectFile), zap.Error(err))
		} else {
			project = p
		}
	}
	ep.AppURL = frame.AppURL(ep.URL, project)
	html, err := frame.IFrameHTML(ep.AppURL, f.Height)
	if err != nil {
		log.Warn("iframe render failed", zap.Error(err))
	}
	ep.IFrame = html
}

// dialable swaps a wildcard host for localhost so the URL can be opened.
func dialable(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
