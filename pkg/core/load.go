// pkg/core/load.go
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	manifest "github.com/joeydtaylor/vblocks/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a TOML manifest, or YAML when the extension says so,
// applies env overrides and validates.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	var cfg manifest.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = toml.Unmarshal(b, &cfg)
	}
	if err != nil {
		return manifest.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault falls back to defaults (plus env) when the file does not
// exist. Other read or parse errors are returned.
func LoadConfigOrDefault(path string) (manifest.Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = manifest.Config{}
		cfg.ApplyEnv()
		return cfg, cfg.Validate()
	}
	return cfg, err
}
