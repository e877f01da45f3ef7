// Package daemon coordinates the long-running process: it enforces
// single-instance execution, runs the periodic scan scheduler, and serves the
// HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/scanner"
	"shelfarr/internal/store"
)

// Daemon owns the background scheduler and the API server.
type Daemon struct {
	cfg     *config.Config
	store   *store.Store
	scanner *scanner.Scanner
	logger  *slog.Logger

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool                      `json:"running"`
	PID          int                       `json:"pid"`
	ScanActive   bool                      `json:"scan_active"`
	DatabasePath string                    `json:"database_path"`
	LockFilePath string                    `json:"lock_file_path"`
	Queue        map[store.QueueStatus]int `json:"queue"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, s *store.Store, sc *scanner.Scanner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || s == nil || sc == nil {
		return nil, errors.New("daemon requires config, store, and scanner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockFilePath()
	d := &Daemon{
		cfg:      cfg,
		store:    s,
		scanner:  sc,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the single-instance lock, launches the scheduler, and binds
// the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shelfarr daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			cancel()
			_ = d.lock.Unlock()
			d.cancel = nil
			return err
		}
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runScheduler(runCtx)
	}()

	d.running.Store(true)
	d.logger.Info("shelfarr daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.cfg.DatabasePath()),
	)
	return nil
}

// Stop halts the scheduler and API server and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("shelfarr daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status summarizes the daemon's runtime state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		ScanActive:   d.scanner.Running(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
	}
	if stats, err := d.store.QueueStats(ctx); err == nil {
		status.Queue = stats
	}
	return status
}

// APIAddr returns the bound API address, or empty when the server is not
// running.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
