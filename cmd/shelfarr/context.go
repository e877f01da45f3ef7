package main

import (
	"strings"
	"sync"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/organizer"
	"shelfarr/internal/rules"
	"shelfarr/internal/scanner"
	"shelfarr/internal/services/catalog"
	"shelfarr/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// directDeps bundles the collaborators a command needs when it operates on
// the store without a running daemon.
type directDeps struct {
	Config  *config.Config
	Store   *store.Store
	Scanner *scanner.Scanner
}

func (d *directDeps) Close() {
	if d != nil && d.Store != nil {
		_ = d.Store.Close()
	}
}

func (c *commandContext) openDirect() (*directDeps, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	logger := logging.NewNop()
	engine := rules.NewEngine(s, logger)
	org := organizer.New(cfg, s, engine, logger)
	movies, games := buildCatalogs(cfg)
	sc := scanner.New(cfg, s, engine, org, movies, games, nil, logger)

	return &directDeps{Config: cfg, Store: s, Scanner: sc}, nil
}

// withBackend prefers the running daemon's API and falls back to direct
// store access when no daemon is reachable.
func (c *commandContext) withBackend(fn func(*apiClient, *directDeps) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	if client := dialAPI(cfg); client != nil {
		return fn(client, nil)
	}

	deps, err := c.openDirect()
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(nil, deps)
}

// buildCatalogs constructs catalog clients for the configured providers.
// Missing API keys degrade to no catalog enrichment.
func buildCatalogs(cfg *config.Config) (catalog.MovieTVCatalog, catalog.GameCatalog) {
	var movies catalog.MovieTVCatalog
	var games catalog.GameCatalog
	if cfg.TMDB.APIKey != "" {
		if client, err := catalog.NewTMDB(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language); err == nil {
			movies = client
		}
	}
	if cfg.Games.APIKey != "" {
		if client, err := catalog.NewGames(cfg.Games.APIKey, cfg.Games.BaseURL); err == nil {
			games = client
		}
	}
	return movies, games
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
