package daemon

import (
	"context"
	"errors"
	"time"

	"shelfarr/internal/logging"
	"shelfarr/internal/scanner"
)

const (
	defaultScanInterval = time.Hour
	minScanInterval     = time.Minute
)

// runScheduler triggers library scans on the configured cadence until the
// context is cancelled. The interval re-resolves after every tick so settings
// changes apply without a restart.
func (d *Daemon) runScheduler(ctx context.Context) {
	interval := d.scanInterval(ctx)
	d.logger.Info("scan scheduler started", logging.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("scan scheduler stopped")
			return
		case <-ticker.C:
			if _, err := d.scanner.Scan(ctx); err != nil {
				if errors.Is(err, scanner.ErrScanActive) {
					d.logger.Debug("scheduled scan skipped, another scan is running")
				} else if !errors.Is(err, context.Canceled) {
					d.logger.Error("scheduled scan failed", logging.Error(err))
				}
			}
			if next := d.scanInterval(ctx); next != interval {
				interval = next
				ticker.Reset(interval)
				d.logger.Info("scan interval updated", logging.Duration("interval", interval))
			}
		}
	}
}

// scanInterval resolves the effective cadence: config override first, then
// the persisted settings schedule, then the default. Values below the
// minimum clamp up.
func (d *Daemon) scanInterval(ctx context.Context) time.Duration {
	if override, err := d.cfg.ScanIntervalOverride(); err == nil && override > 0 {
		return clampInterval(override)
	}

	settings, err := d.store.Settings(ctx)
	if err != nil {
		d.logger.Warn("failed to load settings for scheduler", logging.Error(err))
		return defaultScanInterval
	}
	parsed, err := time.ParseDuration(settings.ScanInterval)
	if err != nil || parsed <= 0 {
		return defaultScanInterval
	}
	return clampInterval(parsed)
}

func clampInterval(interval time.Duration) time.Duration {
	if interval < minScanInterval {
		return minScanInterval
	}
	return interval
}
