package daemon

import (
	"context"
	"os"
	"testing"
	"time"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/organizer"
	"shelfarr/internal/rules"
	"shelfarr/internal/scanner"
	"shelfarr/internal/store"
	"shelfarr/internal/testsupport"
)

func newTestDaemon(t *testing.T, opts ...testsupport.ConfigOption) (*Daemon, *config.Config, *store.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	s := testsupport.MustOpenStore(t, cfg)
	engine := rules.NewEngine(s, logging.NewNop())
	org := organizer.New(cfg, s, engine, logging.NewNop())
	sc := scanner.New(cfg, s, engine, org, nil, nil, nil, logging.NewNop())

	d, err := New(cfg, s, sc, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, cfg, s
}

func TestDaemonStartStop(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected running status after start")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("status PID = %d, want %d", status.PID, os.Getpid())
	}
	if status.ScanActive {
		t.Fatal("no scan should be active")
	}
	if d.APIAddr() == "" {
		t.Fatal("expected a bound API address")
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("second start on a running daemon should fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped status after stop")
	}
	if d.APIAddr() != "" {
		t.Fatalf("expected empty API address after stop, got %q", d.APIAddr())
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	first, cfg, s := newTestDaemon(t)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("start first: %v", err)
	}

	engine := rules.NewEngine(s, logging.NewNop())
	org := organizer.New(cfg, s, engine, logging.NewNop())
	sc := scanner.New(cfg, s, engine, org, nil, nil, nil, logging.NewNop())
	second, err := New(cfg, s, sc, logging.NewNop())
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	t.Cleanup(second.Stop)

	if err := second.Start(ctx); err == nil {
		t.Fatal("second daemon should not acquire the instance lock")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second daemon should start after first released the lock: %v", err)
	}
}

func TestScanIntervalResolution(t *testing.T) {
	d, cfg, s := newTestDaemon(t)
	ctx := context.Background()

	if got := d.scanInterval(ctx); got != time.Hour {
		t.Fatalf("default interval = %s, want 1h", got)
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	settings.ScanInterval = "2h"
	if err := s.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if got := d.scanInterval(ctx); got != 2*time.Hour {
		t.Fatalf("settings interval = %s, want 2h", got)
	}

	settings.ScanInterval = "whenever"
	if err := s.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if got := d.scanInterval(ctx); got != defaultScanInterval {
		t.Fatalf("unparseable interval = %s, want default %s", got, defaultScanInterval)
	}

	cfg.Workflow.ScanInterval = "5m"
	if got := d.scanInterval(ctx); got != 5*time.Minute {
		t.Fatalf("config override = %s, want 5m", got)
	}

	cfg.Workflow.ScanInterval = "10s"
	if got := d.scanInterval(ctx); got != minScanInterval {
		t.Fatalf("sub-minimum override = %s, want clamp to %s", got, minScanInterval)
	}
}
