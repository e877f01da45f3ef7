package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeLogging()
	c.normalizeWorkflow()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AppRoot, err = expandPath(c.Paths.AppRoot); err != nil {
		return fmt.Errorf("paths.app_root: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	if key, ok := os.LookupEnv("TMDB_API_KEY"); ok && strings.TrimSpace(key) != "" {
		c.TMDB.APIKey = strings.TrimSpace(key)
	}
	if key, ok := os.LookupEnv("GAMES_API_KEY"); ok && strings.TrimSpace(key) != "" {
		c.Games.APIKey = strings.TrimSpace(key)
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.Games.BaseURL = strings.TrimRight(strings.TrimSpace(c.Games.BaseURL), "/")
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeWorkflow() {
	c.Workflow.ScanInterval = strings.TrimSpace(c.Workflow.ScanInterval)
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
}

// ScanIntervalOverride parses the configured scan interval override. A zero
// duration means no override is configured.
func (c *Config) ScanIntervalOverride() (time.Duration, error) {
	if c.Workflow.ScanInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Workflow.ScanInterval)
	if err != nil {
		return 0, fmt.Errorf("workflow.scan_interval: %w", err)
	}
	return d, nil
}
