package testsupport

import (
	"testing"

	"shelfarr/internal/config"
	"shelfarr/internal/store"
)

// MustOpenStore opens a store for the supplied config and closes it when the
// test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
