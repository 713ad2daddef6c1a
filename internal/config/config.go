// Package config merges command-line flags, GH_ISSUE_CSV_* environment
// variables, and an optional .env file into a single read-only Config.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "GH_ISSUE_CSV"

// DefaultPauseMS is the pause between imported rows in milliseconds
const DefaultPauseMS = 30000

// ErrInvalidPause is returned for a negative pause
var ErrInvalidPause = errors.New("invalid pause time")

// Config holds the settings for a single command invocation
type Config struct {
	Owner     string `mapstructure:"owner"`
	Repo      string `mapstructure:"repo"`
	Hostname  string `mapstructure:"hostname"`
	Token     string `mapstructure:"token"`
	SourceURL string `mapstructure:"source"`
	PauseMS   int    `mapstructure:"pause"`
	Verbose   bool   `mapstructure:"verbose"`
	LogJSON   bool   `mapstructure:"log-json"`
	File      string `mapstructure:"file"`
	Comments  bool   `mapstructure:"comments"`
	All       bool   `mapstructure:"all"`
	Yes       bool   `mapstructure:"yes"`

	// Attributes lists the export columns, trimmed, in the order given
	Attributes []string `mapstructure:"attributes"`
}

// Pause returns the inter-row pause as a duration
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseMS) * time.Millisecond
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pause", DefaultPauseMS)
	v.SetDefault("verbose", false)
	v.SetDefault("log-json", false)
	v.SetDefault("comments", false)
	v.SetDefault("all", false)
	v.SetDefault("yes", false)
}

// Load reads envFile if it exists, then resolves every setting with flag
// values taking precedence over the environment and defaults.
func Load(flags *pflag.FlagSet, envFile string) (*Config, error) {
	if envFile != "" {
		// A missing .env file is normal
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "failed to bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that flags and env vars cannot constrain themselves
func (c *Config) Validate() error {
	if c.PauseMS < 0 {
		return errors.Wrapf(ErrInvalidPause, "%d", c.PauseMS)
	}
	c.SourceURL = strings.TrimRight(strings.TrimSpace(c.SourceURL), "/")

	attributes := c.Attributes[:0]
	for _, attr := range c.Attributes {
		if attr = strings.TrimSpace(attr); attr != "" {
			attributes = append(attributes, attr)
		}
	}
	c.Attributes = attributes
	return nil
}
