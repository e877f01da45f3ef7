package scanner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/media"
	"shelfarr/internal/organizer"
	"shelfarr/internal/rules"
	"shelfarr/internal/scanner"
	"shelfarr/internal/services"
	"shelfarr/internal/services/catalog"
	"shelfarr/internal/store"
	"shelfarr/internal/testsupport"
)

type stubSeasons struct {
	mu    sync.Mutex
	calls []int64
}

func (s *stubSeasons) ScanShow(_ context.Context, requestID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, requestID)
	return 5, nil
}

func (s *stubSeasons) ScanAllShows(context.Context) (int, error) { return 0, nil }

type blockingCatalog struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingCatalog) SearchMovies(context.Context, string, int) (*catalog.Match, bool, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return nil, false, nil
}

func (b *blockingCatalog) MovieDetails(context.Context, int64) (*catalog.Match, bool, error) {
	return nil, false, nil
}

func (b *blockingCatalog) SearchTVShows(context.Context, string, int) (*catalog.Match, bool, error) {
	return nil, false, nil
}

func (b *blockingCatalog) TVShowDetails(context.Context, int64) (*catalog.Match, bool, error) {
	return nil, false, nil
}

func newScanner(t *testing.T, seasons scanner.SeasonScanner, movies catalog.MovieTVCatalog) (*scanner.Scanner, *store.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	engine := rules.NewEngine(s, logging.NewNop())
	org := organizer.New(cfg, s, engine, logging.NewNop())
	return scanner.New(cfg, s, engine, org, movies, nil, seasons, logging.NewNop()), s, cfg
}

func TestScanAutoImportsCleanMovie(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	folder := filepath.Join(cfg.Paths.LibraryDir, "movies", "Inception (2010)")
	testsupport.WriteFile(t, filepath.Join(folder, "inception.mkv"), 2048)

	summary, err := sc.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if summary.FoldersScanned != 1 {
		t.Fatalf("folders scanned = %d, want 1", summary.FoldersScanned)
	}
	if summary.NewQueueItems != 0 {
		t.Fatalf("new queue items = %d, want 0", summary.NewQueueItems)
	}

	requests, err := s.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	request := requests[0]
	if request.Title != "Inception" || request.Year != 2010 {
		t.Fatalf("request = %+v, want Inception (2010)", request)
	}
	if request.Status != store.RequestCompleted {
		t.Fatalf("request status = %s, want completed", request.Status)
	}

	files, err := s.ListOrganizedFiles(ctx, 0)
	if err != nil {
		t.Fatalf("ListOrganizedFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("organized files = %d, want 1", len(files))
	}
	if !files[0].ReverseIndexed {
		t.Fatal("discovered file must be marked reverse indexed")
	}
	if files[0].RequestID == nil || *files[0].RequestID != request.ID {
		t.Fatalf("reverse-indexed file must link the request, got %+v", files[0].RequestID)
	}
}

func TestScanQueuesTVShowForReview(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LibraryDir, "tv", "Breaking Bad", "Season 1", "e01.mkv"), 512)

	summary, err := sc.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if summary.NewQueueItems != 1 {
		t.Fatalf("new queue items = %d, want 1", summary.NewQueueItems)
	}

	requests, err := s.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("TV must never auto-import, got %d requests", len(requests))
	}

	items, err := s.ListQueueItems(ctx, store.QueuePending)
	if err != nil {
		t.Fatalf("ListQueueItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("pending items = %d, want 1", len(items))
	}
	item := items[0]
	if item.ContentType != media.TVShow {
		t.Fatalf("content type = %s, want tv", item.ContentType)
	}
	if item.Detected.Title != "Breaking Bad" {
		t.Fatalf("detected title = %q", item.Detected.Title)
	}
	if item.Detected.Season != 1 {
		t.Fatalf("detected season = %d, want 1", item.Detected.Season)
	}
}

func TestScanRescanDoesNotDuplicateQueueItems(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LibraryDir, "tv", "Breaking Bad", "Season 1", "e01.mkv"), 512)

	if _, err := sc.Scan(ctx); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	summary, err := sc.Scan(ctx)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if summary.NewQueueItems != 0 {
		t.Fatalf("rescan queued %d new items, want 0", summary.NewQueueItems)
	}

	items, err := s.ListQueueItems(ctx)
	if err != nil {
		t.Fatalf("ListQueueItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want exactly 1 after rescan", len(items))
	}
}

func TestScanLinksExistingRequest(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	request, err := s.CreateRequest(ctx, &store.Request{
		ContentType: media.TVShow,
		Title:       "Breaking Bad",
		Status:      store.RequestPending,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LibraryDir, "tv", "Breaking Bad", "Season 1", "e01.mkv"), 512)

	if _, err := sc.Scan(ctx); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	reloaded, err := s.GetRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if reloaded.Status != store.RequestCompleted {
		t.Fatalf("request status = %s, want completed", reloaded.Status)
	}

	items, err := s.ListQueueItems(ctx)
	if err != nil {
		t.Fatalf("ListQueueItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("matched folder must not be queued, got %d items", len(items))
	}
}

func TestScanResetsCompletedQueueItemWithoutRequest(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	folder := filepath.Join(cfg.Paths.LibraryDir, "tv", "Breaking Bad")
	testsupport.WriteFile(t, filepath.Join(folder, "Season 1", "e01.mkv"), 512)

	item, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  folder,
		ContentType: media.TVShow,
		Detected:    media.Descriptor{Title: "Old Title"},
		Status:      store.QueueCompleted,
	})
	if err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	if _, err := sc.Scan(ctx); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	reloaded, err := s.GetQueueItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetQueueItem: %v", err)
	}
	if reloaded.Status != store.QueuePending {
		t.Fatalf("status = %s, want pending", reloaded.Status)
	}
	if reloaded.Detected.Title != "Breaking Bad" {
		t.Fatalf("metadata must refresh on reset, got %q", reloaded.Detected.Title)
	}
}

func TestScanHonorsSkippedQueueItems(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	folder := filepath.Join(cfg.Paths.LibraryDir, "tv", "Breaking Bad")
	testsupport.WriteFile(t, filepath.Join(folder, "Season 1", "e01.mkv"), 512)

	if _, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  folder,
		ContentType: media.TVShow,
		Detected:    media.Descriptor{Title: "Breaking Bad"},
		Status:      store.QueueSkipped,
	}); err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	summary, err := sc.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if summary.NewQueueItems != 0 {
		t.Fatalf("skipped folder was re-queued: %d new items", summary.NewQueueItems)
	}
}

func TestScanConcurrentTriggerIsNoOp(t *testing.T) {
	blocking := &blockingCatalog{entered: make(chan struct{}), release: make(chan struct{})}
	sc, _, cfg := newScanner(t, nil, blocking)
	ctx := context.Background()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LibraryDir, "movies", "Slow Movie (2020)", "slow.mkv"), 64)

	done := make(chan error, 1)
	go func() {
		_, err := sc.Scan(ctx)
		done <- err
	}()

	select {
	case <-blocking.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("scan never reached catalog enrichment")
	}

	if !sc.Running() {
		t.Fatal("Running must report true mid-scan")
	}
	if _, err := sc.Scan(ctx); !errors.Is(err, scanner.ErrScanActive) {
		t.Fatalf("expected ErrScanActive, got %v", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if sc.Running() {
		t.Fatal("Running must clear after scan")
	}
}

func TestProcessQueueItemOrganizesMovieFolder(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	folder := filepath.Join(cfg.Paths.AppRoot, "downloads", "inception.2010.1080p")
	testsupport.WriteFile(t, filepath.Join(folder, "Inception (2010).mkv"), 2048)
	testsupport.WriteFile(t, filepath.Join(folder, ".nfo-cache"), 8)

	item, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  folder,
		ContentType: media.Movie,
		Detected:    media.Descriptor{Title: "inception 2010 1080p"},
	})
	if err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	processed, err := sc.ProcessQueueItem(ctx, item.ID, media.Descriptor{Title: "Inception", Year: 2010})
	if err != nil {
		t.Fatalf("ProcessQueueItem: %v", err)
	}
	if processed.Status != store.QueueCompleted {
		t.Fatalf("status = %s, want completed", processed.Status)
	}

	want := filepath.Join(cfg.Paths.LibraryDir, "movies", "Inception (2010)", "Inception (2010).mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("organized file missing: %v", err)
	}
	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Fatalf("emptied source folder must be removed, stat err = %v", err)
	}

	requests, err := s.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(requests) != 1 || requests[0].Status != store.RequestCompleted {
		t.Fatalf("expected one completed request, got %+v", requests)
	}

	record, err := s.FindOrganizedByPath(ctx, want)
	if err != nil {
		t.Fatalf("FindOrganizedByPath: %v", err)
	}
	if record == nil || record.ReverseIndexed {
		t.Fatalf("placed file must be recorded as actively organized, got %+v", record)
	}
}

func TestProcessQueueItemLibraryResidentFolder(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	// A folder already at its organized location gets queued when its title
	// fails the auto-import gate; processing it must leave the file alone.
	folder := filepath.Join(cfg.Paths.LibraryDir, "movies", "Up (2009)")
	inPlace := filepath.Join(folder, "Up (2009).mkv")
	testsupport.WriteFile(t, inPlace, 4096)

	settings, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	settings.ReplaceExisting = true
	if err := s.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	item, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  folder,
		ContentType: media.Movie,
		Detected:    media.Descriptor{Title: "up"},
	})
	if err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	processed, err := sc.ProcessQueueItem(ctx, item.ID, media.Descriptor{Title: "Up", Year: 2009})
	if err != nil {
		t.Fatalf("ProcessQueueItem: %v", err)
	}
	if processed.Status != store.QueueCompleted {
		t.Fatalf("status = %s, want completed", processed.Status)
	}

	info, err := os.Stat(inPlace)
	if err != nil {
		t.Fatalf("file must survive in-place processing: %v", err)
	}
	if info.Size() != 4096 {
		t.Fatalf("file size = %d, want untouched 4096", info.Size())
	}

	record, err := s.FindOrganizedByPath(ctx, inPlace)
	if err != nil {
		t.Fatalf("FindOrganizedByPath: %v", err)
	}
	if record == nil {
		t.Fatal("in-place file must be recorded")
	}
	if record.RequestID == nil {
		t.Fatal("in-place record must link to the tracking record")
	}
}

func TestProcessQueueItemTVCreatesOngoingRequest(t *testing.T) {
	seasons := &stubSeasons{}
	sc, s, cfg := newScanner(t, seasons, nil)
	ctx := context.Background()

	folder := filepath.Join(cfg.Paths.AppRoot, "downloads", "breaking bad pack")
	testsupport.WriteFile(t, filepath.Join(folder, "Season 1", "Breaking Bad - S01E01.mkv"), 512)
	testsupport.WriteFile(t, filepath.Join(folder, "Season 2", "Breaking Bad - S02E01.mkv"), 512)

	item, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  folder,
		ContentType: media.TVShow,
		Detected:    media.Descriptor{Title: "breaking bad pack"},
	})
	if err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	if _, err := sc.ProcessQueueItem(ctx, item.ID, media.Descriptor{Title: "Breaking Bad"}); err != nil {
		t.Fatalf("ProcessQueueItem: %v", err)
	}

	requests, err := s.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	if requests[0].Status != store.RequestOngoing {
		t.Fatalf("TV request status = %s, want ongoing", requests[0].Status)
	}
	if len(seasons.calls) != 1 || seasons.calls[0] != requests[0].ID {
		t.Fatalf("season scan calls = %v, want one for request %d", seasons.calls, requests[0].ID)
	}

	for _, episode := range []string{
		filepath.Join("Season 01", "Breaking Bad - S01E01.mkv"),
		filepath.Join("Season 02", "Breaking Bad - S02E01.mkv"),
	} {
		path := filepath.Join(cfg.Paths.LibraryDir, "tv", "Breaking Bad", episode)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing organized episode %s: %v", episode, err)
		}
	}
}

func TestProcessQueueItemFailureMarksItemFailed(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	item, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  filepath.Join(cfg.Paths.AppRoot, "downloads", "vanished"),
		ContentType: media.Movie,
		Detected:    media.Descriptor{Title: "Vanished", Year: 2020},
	})
	if err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	if _, err := sc.ProcessQueueItem(ctx, item.ID, media.Descriptor{}); err == nil {
		t.Fatal("expected processing to fail for a missing folder")
	}

	reloaded, err := s.GetQueueItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetQueueItem: %v", err)
	}
	if reloaded.Status != store.QueueFailed {
		t.Fatalf("status = %s, want failed", reloaded.Status)
	}
	if reloaded.ErrorMessage == "" {
		t.Fatal("failed item must record the error")
	}
}

func TestSkipQueueItemTransitions(t *testing.T) {
	sc, s, cfg := newScanner(t, nil, nil)
	ctx := context.Background()

	item, err := s.InsertQueueItem(ctx, &store.QueueItem{
		FolderPath:  filepath.Join(cfg.Paths.AppRoot, "downloads", "maybe"),
		ContentType: media.Game,
		Detected:    media.Descriptor{Title: "Maybe"},
	})
	if err != nil {
		t.Fatalf("InsertQueueItem: %v", err)
	}

	skipped, err := sc.SkipQueueItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("SkipQueueItem: %v", err)
	}
	if skipped.Status != store.QueueSkipped {
		t.Fatalf("status = %s, want skipped", skipped.Status)
	}

	if _, err := sc.SkipQueueItem(ctx, item.ID); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("skipping a terminal item must fail with ErrUnsupported, got %v", err)
	}
}

func TestDeleteQueueItemMissing(t *testing.T) {
	sc, _, _ := newScanner(t, nil, nil)

	if err := sc.DeleteQueueItem(context.Background(), 12345); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
