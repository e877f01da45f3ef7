package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelfarr/internal/config"
	"shelfarr/internal/media"
	"shelfarr/internal/store"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *store.Store
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	// Port 1 refuses connections immediately, so commands take the direct
	// store path instead of dialing a daemon.
	content := fmt.Sprintf(`[paths]
app_root = %q
library_dir = %q
data_dir = %q
log_dir = %q

[api]
bind = "127.0.0.1:1"
`,
		base,
		filepath.Join(base, "library"),
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return &cliTestEnv{cfg: cfg, store: s, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLIQueueCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  filepath.Join(env.baseDir, "library", "movies", "Mystery Folder"),
		ContentType: media.Movie,
		Detected:    media.Descriptor{Title: "Mystery Folder"},
		Status:      store.QueuePending,
	})
	if err != nil {
		t.Fatalf("insert queue item: %v", err)
	}

	out, err := runCLI(t, env.configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Mystery Folder") || !strings.Contains(out, "pending") {
		t.Fatalf("unexpected queue list output: %q", out)
	}
	if !strings.Contains(out, "Movie") {
		t.Fatalf("type column should render the readable label: %q", out)
	}

	out, err = runCLI(t, env.configPath, "queue", "skip", fmt.Sprintf("%d", item.ID))
	if err != nil {
		t.Fatalf("queue skip: %v", err)
	}
	if !strings.Contains(out, "skipped") {
		t.Fatalf("unexpected skip output: %q", out)
	}

	out, err = runCLI(t, env.configPath, "queue", "list", "--status", "skipped")
	if err != nil {
		t.Fatalf("queue list --status: %v", err)
	}
	if !strings.Contains(out, "Mystery Folder") {
		t.Fatalf("skipped item missing from filtered list: %q", out)
	}

	out, err = runCLI(t, env.configPath, "queue", "delete", fmt.Sprintf("%d", item.ID))
	if err != nil {
		t.Fatalf("queue delete: %v", err)
	}
	if !strings.Contains(out, "deleted") {
		t.Fatalf("unexpected delete output: %q", out)
	}

	out, err = runCLI(t, env.configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list after delete: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("expected empty queue, got %q", out)
	}

	if _, err := runCLI(t, env.configPath, "queue", "skip", "notanumber"); err == nil {
		t.Fatal("expected error for non-numeric item id")
	}
}

func TestCLIStatusAndScan(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Daemon: not running") {
		t.Fatalf("unexpected status output: %q", out)
	}

	out, err = runCLI(t, env.configPath, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "Folders scanned") {
		t.Fatalf("unexpected scan output: %q", out)
	}
}

func TestCLISettingsAndRules(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "settings", "show")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if !strings.Contains(out, "Scan interval") || !strings.Contains(out, "1h") {
		t.Fatalf("unexpected settings output: %q", out)
	}
	if !strings.Contains(out, "Reverse indexing:   yes") {
		t.Fatalf("expected reverse indexing enabled by default: %q", out)
	}

	out, err = runCLI(t, env.configPath, "rules", "list")
	if err != nil {
		t.Fatalf("rules list: %v", err)
	}
	if !strings.Contains(out, "No rules defined") {
		t.Fatalf("unexpected rules output: %q", out)
	}

	if _, err := env.store.CreateRule(context.Background(), &store.Rule{
		ContentType:    media.Movie,
		FolderTemplate: "{title} ({year})",
		FileTemplate:   "{title} ({year}){ext}",
		IsDefault:      true,
		IsActive:       true,
	}); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	out, err = runCLI(t, env.configPath, "rules", "list")
	if err != nil {
		t.Fatalf("rules list after create: %v", err)
	}
	if !strings.Contains(out, "{title} ({year})") {
		t.Fatalf("rule template missing from listing: %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	cmd = newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
