package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, 0.85, cfg.SimilarityThreshold)
	assert.Equal(t, "YYYY-MM-DD", cfg.TargetDateFormat)
	assert.True(t, cfg.DryRun, "dry-run is the default")
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.MaxRetries)
}

func TestLoadOverrides(t *testing.T) {
	v := newViper()
	v.Set("similarity_threshold", 0.9)
	v.Set("contact_email", "lab@example.edu")
	v.Set("target_date_format", "YYYY")
	v.Set("dry_run", false)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.SimilarityThreshold)
	assert.Equal(t, "lab@example.edu", cfg.ContactEmail)
	assert.Equal(t, "YYYY", cfg.TargetDateFormat)
	assert.False(t, cfg.DryRun)
}

func TestValidate(t *testing.T) {
	v := newViper()
	v.Set("similarity_threshold", 1.5)
	_, err := Load(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("target_date_format", "DD/MM/YYYY")
	_, err = Load(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("concurrency", 0)
	_, err = Load(v)
	assert.Error(t, err)

	v = newViper()
	v.Set("library", "/nonexistent/records.yaml")
	_, err = Load(v)
	assert.Error(t, err)
}

func TestRequiredFieldsOverride(t *testing.T) {
	v := newViper()
	v.Set("required_fields", map[string][]string{
		"book": {"title", "ISSN"},
	})

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "ISSN"}, cfg.RequiredFields["book"])
}
