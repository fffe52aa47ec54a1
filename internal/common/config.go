package common

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is consulted when no --config flag is given.
	DefaultConfigPath = "ankigen.yaml"

	// DefaultMaxCacheAgeDays is how long a cached subject payload stays
	// eligible for reuse. WaniKani subject data changes rarely.
	DefaultMaxCacheAgeDays = 180
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Decks   DecksConfig   `yaml:"decks"`
	Log     LogConfig     `yaml:"log"`
	Run     RunConfig     `yaml:"run"`
	Retry   RetryConfig   `yaml:"retry"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StorageConfig struct {
	// Driver selects the gorm dialector: sqlite or mysql.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	Dir string `yaml:"dir"`
}

type DecksConfig struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
}

type LogConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Console    bool   `yaml:"console"`
}

// RunConfig holds the default run parameters. Pointer fields distinguish
// "absent" from an explicit false/zero so CLI flags can override cleanly.
type RunConfig struct {
	UseCache        *bool `yaml:"use_cache"`
	MaxCacheAgeDays *int  `yaml:"max_cache_age_days"`
	ForceRefresh    bool  `yaml:"force_refresh"`
}

type RetryConfig struct {
	Fetch     RetrySpec `yaml:"fetch"`
	Normalize RetrySpec `yaml:"normalize"`
	Persist   RetrySpec `yaml:"persist"`
	Render    RetrySpec `yaml:"render"`
}

// RetrySpec is the per-stage retry budget as written in the config file.
type RetrySpec struct {
	MaxAttempts           int    `yaml:"max_attempts"`
	Backoff               string `yaml:"backoff"` // fixed or exponential
	DelaySeconds          int    `yaml:"delay_seconds"`
	CapSeconds            int    `yaml:"cap_seconds"`
	AttemptTimeoutSeconds int    `yaml:"attempt_timeout_seconds"`
}

// Default returns the built-in configuration. Retry budgets mirror the
// schedule the pipeline has always used: three attempts per stage, fixed
// 30s pauses, with exponential backoff against the API.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "https://api.wanikani.com/v2",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "data/wanikani.db",
		},
		Cache: CacheConfig{Dir: "data"},
		Decks: DecksConfig{Dir: "ankidecks", Name: "WaniKani Japanese"},
		Log: LogConfig{
			Path:       "log/ankigen.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Retry: RetryConfig{
			Fetch:     RetrySpec{MaxAttempts: 3, Backoff: "exponential", DelaySeconds: 5, CapSeconds: 60},
			Normalize: RetrySpec{MaxAttempts: 3, Backoff: "fixed", DelaySeconds: 30},
			Persist:   RetrySpec{MaxAttempts: 3, Backoff: "fixed", DelaySeconds: 30},
			Render:    RetrySpec{MaxAttempts: 3, Backoff: "fixed", DelaySeconds: 30},
		},
	}
}

// Load reads the config file at path, layered over Default. An empty path
// falls back to DefaultConfigPath and tolerates its absence; an explicit
// path must exist. Unknown keys are rejected so typos surface as
// configuration errors instead of silently ignored options.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, NewError(KindConfig, "parse %s: %v", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; defaults plus environment apply.
	default:
		return nil, NewError(KindConfig, "read %s: %v", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets the environment override file values. The token normally
// arrives this way so it never has to live on disk.
func applyEnv(cfg *Config) {
	cfg.API.Token = getEnv("WANIKANI_TOKEN", cfg.API.Token)
	cfg.Storage.DSN = getEnv("DATABASE_URL", cfg.Storage.DSN)
	cfg.Log.Path = getEnv("LOG_PATH", cfg.Log.Path)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "mysql":
	default:
		return NewError(KindConfig, "storage.driver %q: want sqlite or mysql", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return NewError(KindConfig, "storage.dsn must not be empty")
	}
	if c.API.BaseURL == "" {
		return NewError(KindConfig, "api.base_url must not be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return NewError(KindConfig, "api.timeout_seconds must be positive")
	}
	if c.Run.MaxCacheAgeDays != nil && *c.Run.MaxCacheAgeDays < 0 {
		return NewError(KindConfig, "run.max_cache_age_days must not be negative")
	}
	for _, s := range []struct {
		name string
		spec RetrySpec
	}{
		{"fetch", c.Retry.Fetch},
		{"normalize", c.Retry.Normalize},
		{"persist", c.Retry.Persist},
		{"render", c.Retry.Render},
	} {
		if err := s.spec.validate(s.name); err != nil {
			return err
		}
	}
	return nil
}

func (r RetrySpec) validate(stage string) error {
	if r.MaxAttempts < 1 {
		return NewError(KindConfig, "retry.%s.max_attempts must be at least 1", stage)
	}
	switch r.Backoff {
	case "fixed", "exponential":
	default:
		return NewError(KindConfig, "retry.%s.backoff %q: want fixed or exponential", stage, r.Backoff)
	}
	if r.DelaySeconds < 0 || r.CapSeconds < 0 || r.AttemptTimeoutSeconds < 0 {
		return NewError(KindConfig, "retry.%s: durations must not be negative", stage)
	}
	return nil
}
