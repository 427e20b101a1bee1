package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. SNAPCANVAS_STROKE_WIDTH
// or SNAPCANVAS_NOTIFY_EXPORT.
const EnvPrefix = "SNAPCANVAS_"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time or by --config
	// DotEnv lists .env files read before the environment is consulted.
	DotEnv []string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
		DotEnv:       []string{".env"},
		LookupEnv:    os.LookupEnv,
	}
}

// Load reads the config file, if any, then applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadDotEnv() error {
	for _, p := range l.DotEnv {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

var envKeys = []string{
	"theme", "aspect_ratio", "default_background", "background_color",
	"export_multiplier", "output", "data_dir", "assets_dir", "shape_color",
	"stroke_width", "font_size", "notify.export", "notify.copy",
	"credits.dsn", "credits.initial", "auth.user", "auth.email", "auth.token",
	"auth.jwt_secret",
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ApplyEnv overrides fields from SNAPCANVAS_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, k := range envKeys {
		v, ok := lookup(EnvName(k))
		if !ok {
			continue
		}
		if err := c.Set(k, v); err != nil {
			return fmt.Errorf("%s: %w", EnvName(k), err)
		}
	}
	return nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".snapcanvasrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	if p := DefaultPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where `config save` writes: $XDG_CONFIG_HOME/snapcanvas/config.rc.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "snapcanvas", "config.rc")
}

// Save writes c to path in RC format, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(c.String()), 0o600)
}
