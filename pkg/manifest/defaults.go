package manifest

import (
	"fmt"
	"os"
	"strings"
)

const (
	DefaultBundleVersion = "1683568957"
	BundleURLTemplate    = "https://storage.googleapis.com/tfweb/rapsai-colab-bundles/visual_blocks_%s.zip"
	DefaultIndexBaseURL  = "https://raw.githubusercontent.com/google/visualblocks/main/"
	DefaultIndexOutput   = "pipelines_index.json"
)

// Default is the manifest used when no file is present.
func Default() Config {
	c := Config{}
	_ = c.Validate()
	return c
}

// BundleURL returns the configured URL or the versioned default.
func (b Bundle) BundleURL() string {
	if b.URL != "" {
		return b.URL
	}
	return fmt.Sprintf(BundleURLTemplate, b.Version)
}

// ApplyEnv lets deployment env override file values.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("SERVER_LISTEN_ADDRESS")); v != "" {
		c.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("VBLOCKS_JWT_SECRET")); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("VBLOCKS_LOG_DIR")); v != "" {
		c.Log.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("VBLOCKS_BUNDLE_PATH")); v != "" {
		c.Bundle.Path = v
	}
}
