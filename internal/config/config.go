package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrNoGeminiKey is returned when a Gemini-backed feature runs without an API key.
var ErrNoGeminiKey = errors.New("GEMINI_API_KEY is not set")

const (
	DefaultStart       = "majestic"
	DefaultSaveDir     = ".rides"
	DefaultLogLevel    = "warn"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// keys lists every setting; a flag named like a key, with dashes for underscores, overrides it.
var keys = []string{
	"start", "hour", "seed", "save_dir", "plain",
	"log_level", "log_file", "gemini_api_key", "gemini_model",
}

// Config holds the application configuration.
type Config struct {
	Start        string `mapstructure:"start"`
	Hour         int    `mapstructure:"hour"`
	Seed         uint64 `mapstructure:"seed"`
	SaveDir      string `mapstructure:"save_dir"`
	Plain        bool   `mapstructure:"plain"`
	LogLevel     string `mapstructure:"log_level"`
	LogFile      string `mapstructure:"log_file"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
}

// Load reads configuration from flags, RICKSHAW_* environment variables, an optional
// rickshaw.yaml and defaults, in that order of precedence. Flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("start", DefaultStart)
	v.SetDefault("hour", -1)
	v.SetDefault("seed", 0)
	v.SetDefault("save_dir", DefaultSaveDir)
	v.SetDefault("plain", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", DefaultGeminiModel)

	v.SetEnvPrefix("rickshaw")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini_api_key", "RICKSHAW_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	v.SetConfigName("rickshaw")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "rickshaw"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		var result *multierror.Error
		for _, key := range keys {
			f := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				result = multierror.Append(result, err)
			}
		}
		if err := result.ErrorOrNil(); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Start = strings.ToLower(strings.TrimSpace(cfg.Start))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Start == "" {
		result = multierror.Append(result, errors.New("start must not be empty"))
	}
	if c.Hour < -1 || c.Hour > 23 {
		result = multierror.Append(result, fmt.Errorf("hour %d out of range: use 0-23, or -1 for the clock", c.Hour))
	}
	if _, err := c.SlogLevel(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.GeminiModel == "" {
		result = multierror.Append(result, errors.New("gemini_model must not be empty"))
	}
	return result.ErrorOrNil()
}

// RequireGemini errors when no Gemini API key is configured.
func (c *Config) RequireGemini() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return ErrNoGeminiKey
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}
