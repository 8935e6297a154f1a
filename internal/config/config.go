package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"updatenotifier/internal/logger"
	"updatenotifier/internal/notice"
	"updatenotifier/internal/registry"
	"updatenotifier/internal/store/factory"
	"updatenotifier/internal/transport"
	"updatenotifier/internal/update"
)

// FileName is the config file looked up in the working directory first.
const FileName = "update-notifier.yaml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	RegistryURL string         `yaml:"registry_url"`
	UserAgent   string         `yaml:"user_agent"`
	InstallHint string         `yaml:"install_hint"`
	Interval    time.Duration  `yaml:"interval"`
	Timeout     time.Duration  `yaml:"timeout"`
	Color       string         `yaml:"color"`
	State       factory.Config `yaml:"state"`
	Log         logger.Config  `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RegistryURL: registry.DefaultBaseURL,
		UserAgent:   registry.DefaultUserAgent,
		InstallHint: notice.DefaultInstallHint,
		Interval:    update.DefaultInterval,
		Timeout:     transport.DefaultTimeout,
		Color:       ColorAuto,
		State:       factory.Config{Backend: factory.BackendFile},
	}
}

// DefaultPath prefers ./update-notifier.yaml and falls back to
// <user config dir>/update-notifier/config.yaml.
func DefaultPath() string {
	pwd, _ := os.Getwd()
	local := filepath.Join(pwd, FileName)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "update-notifier", "config.yaml")
}

// Load reads path over the defaults. When explicit is false a missing file
// is not an error.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values that would make every check misbehave.
func (c Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", c.Interval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	switch strings.ToLower(c.Color) {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q: must be 'auto', 'always', or 'never'", c.Color)
	}
	switch c.State.Backend {
	case "", factory.BackendFile, factory.BackendSQLite:
	default:
		return fmt.Errorf("invalid state backend %q: must be %q or %q", c.State.Backend, factory.BackendFile, factory.BackendSQLite)
	}
	return nil
}

// Styled resolves the color mode; isTTY is only consulted for "auto".
func (c Config) Styled(isTTY bool) bool {
	switch strings.ToLower(c.Color) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTTY
	}
}
