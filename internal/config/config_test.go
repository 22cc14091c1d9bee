package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Configuration {
	cfg := NewDefault()
	cfg.Generator.Release = "2025_03"
	cfg.NCBI.Email = "tester@flybase.org"
	return cfg
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, "ftp.ncbi.nlm.nih.gov", cfg.NCBI.FTPHost)
	assert.Equal(t, 30*time.Second, cfg.NCBI.ConnectTimeout)
	assert.Equal(t, "invertebrate", cfg.NCBI.OrganismGroup)
	assert.Equal(t, 1, cfg.Batch.Concurrency, "default is strictly sequential")
	assert.Equal(t, 1, cfg.Batch.RetryAttempts, "no retry by default")
	assert.True(t, cfg.Generator.Public)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
generator:
  release: "2025_04"
  data_provider: "FB"
ncbi:
  email: "ops@flybase.org"
  organism_group: "vertebrate_other"
  connect_timeout: 10s
batch:
  concurrency: 4
logging:
  level: DEBUG
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "2025_04", cfg.Generator.Release)
	assert.Equal(t, "vertebrate_other", cfg.NCBI.OrganismGroup)
	assert.Equal(t, 10*time.Second, cfg.NCBI.ConnectTimeout)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	// Untouched fields keep their defaults.
	assert.Equal(t, "ftp.ncbi.nlm.nih.gov", cfg.NCBI.FTPHost)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := NewDefault()
	assert.Error(t, cfg.LoadFromFile("/nonexistent/config.yaml"))

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator: [not a map"), 0600))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BLASTDBCONF_RELEASE", "2025_05")
	t.Setenv("BLASTDBCONF_NCBI_EMAIL", "env@flybase.org")
	t.Setenv("BLASTDBCONF_NCBI_CONNECT_TIMEOUT", "45s")
	t.Setenv("BLASTDBCONF_CONCURRENCY", "8")
	t.Setenv("BLASTDBCONF_METRICS_ENABLED", "true")

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "2025_05", cfg.Generator.Release)
	assert.Equal(t, "env@flybase.org", cfg.NCBI.Email)
	assert.Equal(t, 45*time.Second, cfg.NCBI.ConnectTimeout)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr bool
	}{
		{"valid", func(c *Configuration) {}, false},
		{"missing release", func(c *Configuration) { c.Generator.Release = "" }, true},
		{"missing email", func(c *Configuration) { c.NCBI.Email = "" }, true},
		{"missing host", func(c *Configuration) { c.NCBI.FTPHost = "" }, true},
		{"zero timeout", func(c *Configuration) { c.NCBI.ConnectTimeout = 0 }, true},
		{"zero concurrency", func(c *Configuration) { c.Batch.Concurrency = 0 }, true},
		{"zero retry attempts", func(c *Configuration) { c.Batch.RetryAttempts = 0 }, true},
		{"bad log level", func(c *Configuration) { c.Logging.Level = "LOUD" }, true},
		{"lowercase log level accepted", func(c *Configuration) { c.Logging.Level = "debug" }, false},
		{"bad log format", func(c *Configuration) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
