package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "[::]:0", c.Server.Listen)
	assert.True(t, c.Server.SerializeInference())
	assert.Equal(t, DefaultBundleVersion, c.Bundle.Version)
	assert.Equal(t, "https://storage.googleapis.com/tfweb/rapsai-colab-bundles/visual_blocks_1683568957.zip", c.Bundle.BundleURL())
	assert.Equal(t, 4*c.Bundle.MaxBytes, c.Bundle.MaxExtractedBytes)
	assert.Equal(t, 900, c.Frame.Height)
	assert.Equal(t, "vblocks_token", c.Auth.CookieName)
	assert.Equal(t, "pipelines/pipelines_index.json", c.Index.Output)
	assert.Equal(t, DefaultIndexBaseURL, c.Index.BaseURL)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"bad listen":   func(c *Config) { c.Server.Listen = "nope" },
		"bad timeout":  func(c *Config) { c.Server.InferenceTimeoutMS = -1 },
		"ftp bundle":   func(c *Config) { c.Bundle.URL = "ftp://example.com/x.zip" },
		"neg height":   func(c *Config) { c.Frame.Height = -5 },
		"neg leeway":   func(c *Config) { c.Auth.LeewaySeconds = -1 },
		"short secret": func(c *Config) { c.Auth.JWTSecret = "short" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			var c Config
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateNormalizesURLs(t *testing.T) {
	c := Config{
		Frame: Frame{PublicURL: "https://proxy.example/app"},
		Index: Index{BaseURL: "https://example.com/repo"},
	}
	require.NoError(t, c.Validate())
	assert.Equal(t, "https://proxy.example/app/", c.Frame.PublicURL)
	assert.Equal(t, "https://example.com/repo/", c.Index.BaseURL)
}

func TestSerializeInferenceFlag(t *testing.T) {
	off := false
	assert.False(t, Server{Serialize: &off}.SerializeInference())
	assert.True(t, Server{}.SerializeInference())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SERVER_LISTEN_ADDRESS", "127.0.0.1:9000")
	t.Setenv("VBLOCKS_JWT_SECRET", "0123456789abcdef")
	t.Setenv("VBLOCKS_LOG_DIR", "/tmp/vb-logs")
	t.Setenv("VBLOCKS_BUNDLE_PATH", "/srv/site")

	var c Config
	c.ApplyEnv()
	require.NoError(t, c.Validate())
	assert.Equal(t, "127.0.0.1:9000", c.Server.Listen)
	assert.Equal(t, "0123456789abcdef", c.Auth.JWTSecret)
	assert.Equal(t, "/tmp/vb-logs", c.Log.Dir)
	assert.Equal(t, "/srv/site", c.Bundle.Path)
}
