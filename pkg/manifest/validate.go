package manifest

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

// Validate fills defaults and rejects values the server cannot run with.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Bundle.validate(); err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	if err := c.Frame.validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if err := c.Auth.validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if strings.TrimSpace(c.Log.Dir) == "" {
		c.Log.Dir = "log"
	}
	if err := c.Index.validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}

func (s *Server) validate() error {
	if strings.TrimSpace(s.Listen) == "" {
		s.Listen = "[::]:0"
	}
	if _, _, err := net.SplitHostPort(s.Listen); err != nil {
		return fmt.Errorf("listen %q: %w", s.Listen, err)
	}
	if s.InferenceTimeoutMS < 0 {
		return fmt.Errorf("inference_timeout_ms must be >= 0")
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = 64 << 20
	}
	return nil
}

func (b *Bundle) validate() error {
	if b.Version == "" {
		b.Version = DefaultBundleVersion
	}
	if b.TmpDir == "" {
		b.TmpDir = os.TempDir()
	}
	if b.MaxBytes <= 0 {
		b.MaxBytes = 512 << 20
	}
	if b.MaxExtractedBytes <= 0 {
		b.MaxExtractedBytes = 4 * b.MaxBytes
	}
	if b.LockTimeout <= 0 {
		b.LockTimeout = 30_000
	}
	if b.URL != "" {
		u, err := url.Parse(b.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("url %q must be http(s)", b.URL)
		}
	}
	return nil
}

func (f *Frame) validate() error {
	if f.Height == 0 {
		f.Height = 900
	}
	if f.Height < 0 {
		return fmt.Errorf("height must be > 0")
	}
	if f.PublicURL != "" && !strings.HasSuffix(f.PublicURL, "/") {
		f.PublicURL += "/"
	}
	return nil
}

func (a *Auth) validate() error {
	if a.LeewaySeconds < 0 {
		return fmt.Errorf("leeway_seconds must be >= 0")
	}
	if a.LeewaySeconds == 0 {
		a.LeewaySeconds = 60
	}
	if a.CookieName == "" {
		a.CookieName = "vblocks_token"
	}
	if a.JWTSecret != "" && len(a.JWTSecret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 bytes")
	}
	return nil
}

func (i *Index) validate() error {
	if i.Root == "" {
		i.Root = "pipelines"
	}
	if i.Output == "" {
		i.Output = i.Root + "/" + DefaultIndexOutput
	}
	if i.BaseURL == "" {
		i.BaseURL = DefaultIndexBaseURL
	}
	if !strings.HasSuffix(i.BaseURL, "/") {
		i.BaseURL += "/"
	}
	if i.DebounceMS <= 0 {
		i.DebounceMS = 300
	}
	return nil
}
