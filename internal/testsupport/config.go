package testsupport

import (
	"path/filepath"
	"testing"

	"shelfarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.AppRoot = base
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.API.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithTMDB points the movie/TV catalog client at a test server.
func WithTMDB(baseURL, apiKey string) ConfigOption {
	return func(c *config.Config) {
		c.TMDB.BaseURL = baseURL
		c.TMDB.APIKey = apiKey
	}
}

// WithGames points the game catalog client at a test server.
func WithGames(baseURL, apiKey string) ConfigOption {
	return func(c *config.Config) {
		c.Games.BaseURL = baseURL
		c.Games.APIKey = apiKey
	}
}
