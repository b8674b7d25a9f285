package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the enzoctl configuration.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Loader reads configuration from ~/.enzo.yaml, ./.enzo.yaml, ENZO_*
// environment variables and command-line flags, in increasing precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// BindFlags lets flags override file and environment values.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for _, name := range []string{"base_url", "token", "timeout"} {
		flag := flags.Lookup(flagName(name))
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

// Load loads configuration from files and environment variables.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupConfigPaths()
	l.setupEnvVars()

	// The config file is optional
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("base_url", "http://localhost:8080")
	l.v.SetDefault("token", "")
	l.v.SetDefault("timeout", 10*time.Second)
}

func (l *Loader) setupConfigPaths() {
	l.v.SetConfigName(".enzo")
	l.v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath(".")
}

func (l *Loader) setupEnvVars() {
	l.v.SetEnvPrefix("ENZO")
	l.v.AutomaticEnv()
}

func validate(cfg *Config) error {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", cfg.BaseURL)
	}
	if cfg.Token == "" {
		return fmt.Errorf("token is required (set ENZO_TOKEN or --token)")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// flagName maps a config key to its flag: base_url becomes base-url.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
