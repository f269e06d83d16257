// pkg/manifest/config.go
package manifest

// Config is the top-level manifest (vblocks.toml / vblocks.yaml).
type Config struct {
	Server Server `toml:"server" yaml:"server"`
	Bundle Bundle `toml:"bundle" yaml:"bundle"`
	Frame  Frame  `toml:"frame" yaml:"frame"`
	Auth   Auth   `toml:"auth" yaml:"auth"`
	Log    Log    `toml:"log" yaml:"log"`
	Index  Index  `toml:"index" yaml:"index"`
}

type Server struct {
	Listen             string `toml:"listen" yaml:"listen"` // port 0 picks a free port
	InferenceTimeoutMS int    `toml:"inference_timeout_ms" yaml:"inference_timeout_ms"`
	MaxBodyBytes       int64  `toml:"max_body_bytes" yaml:"max_body_bytes"`
	// Serialize runs one inference at a time; nil means true.
	Serialize *bool `toml:"serialize_inference" yaml:"serialize_inference"`
	// MetricsSkipPaths are request paths left out of HTTP metrics.
	MetricsSkipPaths []string `toml:"metrics_skip_paths" yaml:"metrics_skip_paths"`
}

type Bundle struct {
	Version           string `toml:"version" yaml:"version"`
	URL               string `toml:"url" yaml:"url"`   // overrides the versioned default
	Path              string `toml:"path" yaml:"path"` // already unpacked site root; skips download
	TmpDir            string `toml:"tmp_dir" yaml:"tmp_dir"`
	MaxBytes          int64  `toml:"max_bytes" yaml:"max_bytes"`
	MaxExtractedBytes int64  `toml:"max_extracted_bytes" yaml:"max_extracted_bytes"` // total unpacked size
	LockTimeout       int    `toml:"lock_timeout_ms" yaml:"lock_timeout_ms"`
}

type Frame struct {
	Height      int    `toml:"height" yaml:"height"`
	ProjectFile string `toml:"project_file" yaml:"project_file"` // saved pipeline to preload
	PublicURL   string `toml:"public_url" yaml:"public_url"`     // proxied base URL, if any
}

type Auth struct {
	JWTSecret     string `toml:"jwt_secret" yaml:"jwt_secret"`
	Issuer        string `toml:"issuer" yaml:"issuer"`
	Audience      string `toml:"audience" yaml:"audience"`
	LeewaySeconds int    `toml:"leeway_seconds" yaml:"leeway_seconds"`
	CookieName    string `toml:"cookie_name" yaml:"cookie_name"`
}

type Log struct {
	Dir          string   `toml:"dir" yaml:"dir"`
	BodyLogPaths []string `toml:"body_log_paths" yaml:"body_log_paths"`
}

type Index struct {
	Root       string `toml:"root" yaml:"root"`
	Output     string `toml:"output" yaml:"output"`
	BaseURL    string `toml:"base_url" yaml:"base_url"`
	DebounceMS int    `toml:"debounce_ms" yaml:"debounce_ms"`
}

// SerializeInference resolves the optional flag.
func (s Server) SerializeInference() bool { return s.Serialize == nil || *s.Serialize }
