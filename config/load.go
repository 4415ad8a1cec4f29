package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/drake/winsize/ratelimit"
	"github.com/drake/winsize/size"
)

// UI modes.
const (
	UITUI     = "tui"
	UIConsole = "console"
)

// Config holds runtime settings. Values come from defaults, the optional
// config file, WINSIZE_* environment variables and CLI flags, in increasing
// priority.
type Config struct {
	Policy        string        `mapstructure:"policy"`         // "throttle" or "debounce"
	Interval      time.Duration `mapstructure:"interval"`       // Rate limit interval
	UI            string        `mapstructure:"ui"`             // "tui" or "console"
	Headless      bool          `mapstructure:"headless"`       // Ignore the terminal even if present
	Debug         bool          `mapstructure:"debug"`          // Debug logging and stats monitor
	DebugInterval time.Duration `mapstructure:"debug_interval"` // Stats monitor period
	LogFile       string        `mapstructure:"log_file"`       // Used while the TUI owns the screen
	Scripts       []string      `mapstructure:"scripts"`        // Extra Lua scripts after init.lua
	Watch         bool          `mapstructure:"watch"`          // Reload scripts when init.lua changes
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("policy", ratelimit.PolicyThrottle.String())
	v.SetDefault("interval", size.DefaultInterval)
	v.SetDefault("ui", UITUI)
	v.SetDefault("headless", false)
	v.SetDefault("debug", false)
	v.SetDefault("debug_interval", 5*time.Second)
	v.SetDefault("log_file", filepath.Join(StateDir(), AppName+".log"))
	v.SetDefault("scripts", []string{})
	v.SetDefault("watch", true)
}

// Load reads configuration into a Config. An explicit path must exist;
// without one, config.yaml in Dir() is read if present.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("WINSIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that defaults cannot guarantee.
func (c *Config) Validate() error {
	if _, err := ratelimit.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config policy: %w", err)
	}
	if c.Interval < 0 {
		return fmt.Errorf("config interval must not be negative, got %s", c.Interval)
	}
	if c.DebugInterval <= 0 {
		return fmt.Errorf("config debug_interval must be positive, got %s", c.DebugInterval)
	}
	switch c.UI {
	case UITUI, UIConsole:
	default:
		return fmt.Errorf("config ui: unknown mode %q", c.UI)
	}
	return nil
}

// RatePolicy returns the parsed policy. Validate has already checked it.
func (c *Config) RatePolicy() ratelimit.Policy {
	p, _ := ratelimit.ParsePolicy(c.Policy)
	return p
}
