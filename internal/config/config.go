// Package config loads service and CLI settings from defaults, an optional
// YAML file and SECPOLICY_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `mapstructure:"port" yaml:"port"`

	// Auth. Empty disables bearer checks.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count" yaml:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size" yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl" yaml:"job_ttl"`

	// Matching
	MaxEdits         int `mapstructure:"max_edits" yaml:"max_edits"`
	MaxHeadingLength int `mapstructure:"max_heading_length" yaml:"max_heading_length"`

	// Documents with this many validation errors or more are not exported.
	ErrorAccept int `mapstructure:"error_accept" yaml:"error_accept"`

	// Empty selects the embedded schema.
	SchemaPath string `mapstructure:"schema_path" yaml:"schema_path"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext" yaml:"pdf_fallback_pdftotext"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:                 "8080",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		MaxEdits:             1,
		MaxHeadingLength:     200,
		ErrorAccept:          5,
		DatabasePath:         "secpolicy.db",
		OutputDir:            "out",
		PDFFallbackPdftotext: true,
		LogLevel:             "info",
	}
}

// Load reads defaults and environment only. A broken SECPOLICY_CONFIG file
// falls back to the defaults.
func Load() Config {
	cfg, err := LoadFrom(os.Getenv("SECPOLICY_CONFIG"))
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFrom reads path, if non-empty, on top of the defaults, then applies
// SECPOLICY_* environment overrides.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("port", def.Port)
	v.SetDefault("api_key", def.APIKey)
	v.SetDefault("worker_count", def.WorkerCount)
	v.SetDefault("max_queue_size", def.MaxQueueSize)
	v.SetDefault("max_upload_bytes", def.MaxUploadBytes)
	v.SetDefault("job_ttl", def.JobTTL)
	v.SetDefault("max_edits", def.MaxEdits)
	v.SetDefault("max_heading_length", def.MaxHeadingLength)
	v.SetDefault("error_accept", def.ErrorAccept)
	v.SetDefault("schema_path", def.SchemaPath)
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("pdf_fallback_pdftotext", def.PDFFallbackPdftotext)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("SECPOLICY")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.MaxHeadingLength <= 0 {
		cfg.MaxHeadingLength = def.MaxHeadingLength
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.MaxEdits < 0 {
		return fmt.Errorf("max_edits must be >= 0, got %d", c.MaxEdits)
	}
	if c.ErrorAccept < 1 {
		return fmt.Errorf("error_accept must be >= 1, got %d", c.ErrorAccept)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}

// WriteDefault writes the default configuration as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# secpolicy configuration\n# Every key can be overridden with SECPOLICY_<KEY>, e.g. SECPOLICY_MAX_EDITS=2\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
