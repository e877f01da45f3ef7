// Package scanner reconciles the on-disk library against tracking records:
// it walks each content-type directory, infers metadata from folder names,
// links or creates tracking records for confident matches, and queues
// everything else for human review.
package scanner

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/media"
	"shelfarr/internal/organizer"
	"shelfarr/internal/rules"
	"shelfarr/internal/services"
	"shelfarr/internal/services/catalog"
	"shelfarr/internal/store"
)

// ErrScanActive is returned when a scan trigger finds another scan mid-flight.
var ErrScanActive = errors.New("library scan already running")

// Scanner walks the library and reconciles folders against tracking records.
// One logical scan runs at a time per process; overlapping triggers are cheap
// no-ops.
type Scanner struct {
	cfg       *config.Config
	store     *store.Store
	rules     *rules.Engine
	organizer *organizer.Organizer
	movies    catalog.MovieTVCatalog
	games     catalog.GameCatalog
	seasons   SeasonScanner
	logger    *slog.Logger

	running atomic.Bool
}

// New constructs a scanner. Nil catalog or season collaborators degrade to
// no-op implementations.
func New(
	cfg *config.Config,
	s *store.Store,
	engine *rules.Engine,
	org *organizer.Organizer,
	movies catalog.MovieTVCatalog,
	games catalog.GameCatalog,
	seasons SeasonScanner,
	logger *slog.Logger,
) *Scanner {
	if movies == nil {
		movies = catalog.NoopMovieTV{}
	}
	if games == nil {
		games = catalog.NoopGames{}
	}
	if seasons == nil {
		seasons = NoopSeasonScanner{}
	}
	return &Scanner{
		cfg:       cfg,
		store:     s,
		rules:     engine,
		organizer: org,
		movies:    movies,
		games:     games,
		seasons:   seasons,
		logger:    logging.NewComponentLogger(logger, "scanner"),
	}
}

// Summary reports what a completed scan did.
type Summary struct {
	ScanID          string    `json:"scan_id"`
	FoldersScanned  int       `json:"folders_scanned"`
	NewQueueItems   int       `json:"new_queue_items"`
	EpisodesUpdated int       `json:"episodes_updated"`
	Errors          int       `json:"errors"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Running reports whether a scan is currently in progress.
func (s *Scanner) Running() bool {
	return s.running.Load()
}

// tryBeginScan and endScan are the only mutation points of the scan guard.
func (s *Scanner) tryBeginScan() bool {
	return s.running.CompareAndSwap(false, true)
}

func (s *Scanner) endScan() {
	s.running.Store(false)
}

// Scan runs one full reconciliation pass. When another scan is already in
// flight it returns ErrScanActive without touching the filesystem.
func (s *Scanner) Scan(ctx context.Context) (*Summary, error) {
	if !s.tryBeginScan() {
		return nil, ErrScanActive
	}
	defer s.endScan()

	scanID := uuid.NewString()
	ctx = services.WithScanID(ctx, scanID)
	logger := logging.WithContext(ctx, s.logger)

	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "load settings", "failed to load organization settings", err)
	}

	summary := &Summary{ScanID: scanID, StartedAt: time.Now()}
	logger.Info("library scan started")

	for _, contentType := range media.AllContentTypes() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		dir := settings.DirFor(contentType)
		if dir == "" {
			continue
		}
		typeCtx := services.WithContentType(ctx, string(contentType))
		s.scanContentDir(typeCtx, contentType, dir, settings, summary)
	}

	if settings.ReverseIndexing {
		if updated, err := s.seasons.ScanAllShows(ctx); err != nil {
			logger.Warn("season refresh failed", logging.Error(err))
			summary.Errors++
		} else {
			summary.EpisodesUpdated += updated
		}
	}

	summary.FinishedAt = time.Now()
	logger.Info("library scan finished",
		logging.Int("folders_scanned", summary.FoldersScanned),
		logging.Int("new_queue_items", summary.NewQueueItems),
		logging.Int("episodes_updated", summary.EpisodesUpdated),
		logging.Int("errors", summary.Errors),
		logging.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

// scanContentDir enumerates a content-type directory and reconciles each
// candidate folder. Per-folder failures are counted, never propagated.
func (s *Scanner) scanContentDir(ctx context.Context, contentType media.ContentType, dir string, settings *store.Settings, summary *Summary) {
	logger := logging.WithContext(ctx, s.logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("library directory absent, skipping",
				logging.String(logging.FieldPath, dir),
			)
			return
		}
		logger.Warn("failed to read library directory",
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
		)
		summary.Errors++
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder, err := probeContentFolder(dir, entry.Name())
		if err != nil {
			logger.Warn("failed to probe folder",
				logging.String(logging.FieldPath, entry.Name()),
				logging.Error(err),
			)
			summary.Errors++
			continue
		}
		if folder == nil {
			continue
		}
		summary.FoldersScanned++
		if err := s.reconcileFolder(ctx, contentType, folder, settings, summary); err != nil {
			logger.Warn("failed to reconcile folder",
				logging.String(logging.FieldPath, folder.Path),
				logging.String(logging.FieldTitle, folder.Name),
				logging.Error(err),
			)
			summary.Errors++
		}
	}
}
