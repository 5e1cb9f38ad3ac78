// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxUploadBytes int64         `yaml:"max_upload_bytes"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Model struct {
		Type string `yaml:"type"`
		Path string `yaml:"path"`
	} `yaml:"model"`
	Batch struct {
		CacheSize   int           `yaml:"cache_size"`
		TTL         time.Duration `yaml:"ttl"`
		PreviewRows int           `yaml:"preview_rows"`
	} `yaml:"batch"`
	Validation struct {
		StrictBatch bool `yaml:"strict_batch"`
	} `yaml:"validation"`
	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path and fills unset values with defaults. Relative model and
// log paths are resolved against the directory holding the config file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	config.applyDefaults()

	dir := filepath.Dir(path)
	if config.Model.Path != "" && !filepath.IsAbs(config.Model.Path) {
		config.Model.Path = filepath.Join(dir, config.Model.Path)
	}
	if config.Log.File != "" && !filepath.IsAbs(config.Log.File) {
		config.Log.File = filepath.Join(dir, config.Log.File)
	}
	return &config, config.Validate()
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if c.Http.MaxUploadBytes == 0 {
		c.Http.MaxUploadBytes = 32 << 20
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Model.Type == "" {
		c.Model.Type = "decision_tree"
	}
	if c.Model.Path == "" {
		c.Model.Path = "models/nhanes_age_group_model.json"
	}
	if c.Batch.CacheSize == 0 {
		c.Batch.CacheSize = 64
	}
	if c.Batch.TTL == 0 {
		c.Batch.TTL = 15 * time.Minute
	}
	if c.Batch.PreviewRows == 0 {
		c.Batch.PreviewRows = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

func (c *Config) Validate() error {
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		return errors.New("http.port out of range")
	}
	if c.Batch.CacheSize < 0 {
		return errors.New("batch.cache_size must not be negative")
	}
	if c.Batch.PreviewRows < 0 {
		return errors.New("batch.preview_rows must not be negative")
	}
	return nil
}
