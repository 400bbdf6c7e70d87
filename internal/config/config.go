// Package config resolves engine settings from viper: defaults, then an
// optional config file, then environment variables, then flags bound by
// the CLI.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/normalize"
)

// Config is the resolved engine configuration.
type Config struct {
	// Library is the path of the records file the CLI operates on.
	Library string `yaml:"library"`

	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ContactEmail        string  `yaml:"contact_email"`
	TargetDateFormat    string  `yaml:"target_date_format"`
	DryRun              bool    `yaml:"dry_run"`
	Concurrency         int     `yaml:"concurrency"`
	CheckURLs           bool    `yaml:"check_urls"`
	CheckDOIs           bool    `yaml:"check_dois"`

	// RequiredFields optionally overrides the audit's required fields
	// per item type.
	RequiredFields map[string][]string `yaml:"required_fields"`

	API APIConfig `yaml:"api"`
}

// APIConfig tunes the shared HTTP transport.
type APIConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// SetDefaults installs the default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("similarity_threshold", 0.85)
	v.SetDefault("target_date_format", string(normalize.DateFormatFull))
	v.SetDefault("dry_run", true)
	v.SetDefault("concurrency", 1)
	v.SetDefault("check_urls", false)
	v.SetDefault("check_dois", false)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 3)
}

// Load resolves the configuration from a viper instance.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Library:             v.GetString("library"),
		SimilarityThreshold: v.GetFloat64("similarity_threshold"),
		ContactEmail:        v.GetString("contact_email"),
		TargetDateFormat:    v.GetString("target_date_format"),
		DryRun:              v.GetBool("dry_run"),
		Concurrency:         v.GetInt("concurrency"),
		CheckURLs:           v.GetBool("check_urls"),
		CheckDOIs:           v.GetBool("check_dois"),
		API: APIConfig{
			Timeout:    v.GetDuration("api.timeout"),
			MaxRetries: v.GetInt("api.max_retries"),
		},
	}
	if v.IsSet("required_fields") {
		if err := v.UnmarshalKey("required_fields", &cfg.RequiredFields); err != nil {
			return nil, errors.NewConfigError("config", "invalid required_fields", err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints before any network activity.
func (c *Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return errors.NewConfigError("config", "similarity_threshold must be in (0,1]", nil)
	}
	if !normalize.ValidDateFormat(normalize.DateFormat(c.TargetDateFormat)) {
		return errors.NewConfigError("config", "target_date_format must be YYYY, YYYY-MM, or YYYY-MM-DD", nil)
	}
	if c.Concurrency < 1 {
		return errors.NewConfigError("config", "concurrency must be at least 1", nil)
	}
	if c.Library != "" {
		if _, err := os.Stat(c.Library); err != nil {
			return errors.NewConfigError("config", "library file not found: "+c.Library, err)
		}
	}
	return nil
}
