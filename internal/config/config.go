package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Configuration represents the complete application configuration.
type Configuration struct {
	Generator GeneratorConfig `yaml:"generator"`
	NCBI      NCBIConfig      `yaml:"ncbi"`
	Batch     BatchConfig     `yaml:"batch"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// GeneratorConfig describes the metadata header of the generated
// configuration document.
type GeneratorConfig struct {
	Release       string `yaml:"release"`
	Contact       string `yaml:"contact"`
	DataProvider  string `yaml:"data_provider"`
	HomepageURL   string `yaml:"homepage_url"`
	LogoURL       string `yaml:"logo_url"`
	Public        bool   `yaml:"public"`
	OrganismsFile string `yaml:"organisms_file"`

	// DmelAnnotation is the FlyBase annotation release used for the static
	// D. melanogaster databases, e.g. "6.54". Empty skips them.
	DmelAnnotation string `yaml:"dmel_annotation"`
}

// NCBIConfig represents the NCBI endpoints and identification settings.
type NCBIConfig struct {
	// FTPHost is the archive host, host:port form optional (port 21 assumed).
	FTPHost string `yaml:"ftp_host"`

	// Email is sent as the anonymous FTP password and as the eutils email
	// parameter. NCBI uses it to contact heavy users instead of blocking them.
	Email string `yaml:"email"`

	// OrganismGroup is the RefSeq top-level partition organisms are filed
	// under.
	OrganismGroup string `yaml:"organism_group"`

	// ConnectTimeout bounds the FTP dial; a stalled archive surfaces as a
	// transport failure after this long.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// EutilsBaseURL is the Entrez eutils endpoint used for taxonomy lookups.
	EutilsBaseURL string `yaml:"eutils_base_url"`
}

// BatchConfig represents batch iteration settings.
type BatchConfig struct {
	// Concurrency is the number of organisms resolved in parallel.
	// 1 keeps the strictly sequential reference behavior.
	Concurrency int `yaml:"concurrency"`

	// RetryAttempts is the number of attempts per organism for session-level
	// transport failures. 1 disables retrying.
	RetryAttempts int `yaml:"retry_attempts"`

	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay"`
}

// OutputConfig represents output publishing settings.
type OutputConfig struct {
	// Path is a local file path or an s3://bucket/key URI. Empty selects
	// conf/databases.<provider>.<release>.json.
	Path string `yaml:"path"`

	// S3Region overrides the default AWS region for s3:// outputs.
	S3Region string `yaml:"s3_region"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig represents metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// NewDefault returns a configuration with sensible defaults.
func NewDefault() *Configuration {
	return &Configuration{
		Generator: GeneratorConfig{
			Contact:       "iudev@morgan.harvard.edu",
			DataProvider:  "FB",
			HomepageURL:   "https://flybase.org",
			LogoURL:       "https://flybase.org/images/fly_logo.png",
			Public:        true,
			OrganismsFile: "organisms.json",
		},
		NCBI: NCBIConfig{
			FTPHost:        "ftp.ncbi.nlm.nih.gov",
			OrganismGroup:  "invertebrate",
			ConnectTimeout: 30 * time.Second,
			EutilsBaseURL:  "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
		},
		Batch: BatchConfig{
			Concurrency:       1,
			RetryAttempts:     1,
			RetryInitialDelay: time.Second,
			RetryMaxDelay:     time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":8080",
			Path:    "/metrics",
		},
	}
}

// LoadFromFile loads configuration from a YAML file.
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables.
func (c *Configuration) LoadFromEnv() error {
	if val := os.Getenv("BLASTDBCONF_RELEASE"); val != "" {
		c.Generator.Release = val
	}
	if val := os.Getenv("BLASTDBCONF_CONTACT"); val != "" {
		c.Generator.Contact = val
	}
	if val := os.Getenv("BLASTDBCONF_ORGANISMS_FILE"); val != "" {
		c.Generator.OrganismsFile = val
	}

	if val := os.Getenv("BLASTDBCONF_NCBI_FTP_HOST"); val != "" {
		c.NCBI.FTPHost = val
	}
	if val := os.Getenv("BLASTDBCONF_NCBI_EMAIL"); val != "" {
		c.NCBI.Email = val
	}
	if val := os.Getenv("BLASTDBCONF_NCBI_ORGANISM_GROUP"); val != "" {
		c.NCBI.OrganismGroup = val
	}
	if val := os.Getenv("BLASTDBCONF_NCBI_CONNECT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.NCBI.ConnectTimeout = d
		}
	}

	if val := os.Getenv("BLASTDBCONF_CONCURRENCY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Batch.Concurrency = n
		}
	}
	if val := os.Getenv("BLASTDBCONF_RETRY_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Batch.RetryAttempts = n
		}
	}

	if val := os.Getenv("BLASTDBCONF_OUTPUT"); val != "" {
		c.Output.Path = val
	}

	if val := os.Getenv("BLASTDBCONF_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("BLASTDBCONF_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}

	if val := os.Getenv("BLASTDBCONF_METRICS_ENABLED"); val != "" {
		c.Metrics.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("BLASTDBCONF_METRICS_LISTEN"); val != "" {
		c.Metrics.Listen = val
	}

	return nil
}

// Validate validates the configuration.
func (c *Configuration) Validate() error {
	if c.Generator.Release == "" {
		return fmt.Errorf("release must be set")
	}
	if c.NCBI.FTPHost == "" {
		return fmt.Errorf("ncbi.ftp_host must be set")
	}
	if c.NCBI.Email == "" {
		return fmt.Errorf("ncbi.email must be set (NCBI requires a contact address)")
	}
	if c.NCBI.ConnectTimeout <= 0 {
		return fmt.Errorf("ncbi.connect_timeout must be greater than 0")
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be greater than 0")
	}
	if c.Batch.RetryAttempts <= 0 {
		return fmt.Errorf("batch.retry_attempts must be greater than 0")
	}

	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	logLevelValid := false
	for _, level := range validLogLevels {
		if strings.EqualFold(c.Logging.Level, level) {
			logLevelValid = true
			break
		}
	}
	if !logLevelValid {
		return fmt.Errorf("invalid logging.level: %s (must be one of: %s)",
			c.Logging.Level, strings.Join(validLogLevels, ", "))
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}
