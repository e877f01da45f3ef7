package scanner

import (
	"path/filepath"
	"testing"

	"shelfarr/internal/testsupport"
)

func TestProbeContentFolderFlatLayout(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Inception (2010)", "inception.mkv"), 32)

	folder, err := probeContentFolder(root, "Inception (2010)")
	if err != nil {
		t.Fatalf("probeContentFolder: %v", err)
	}
	if folder == nil {
		t.Fatal("expected a content folder")
	}
	if folder.Season != 0 {
		t.Fatalf("flat layout must not report a season, got %d", folder.Season)
	}
}

func TestProbeContentFolderSeasonLayout(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Breaking Bad", "Season 2", "e01.mkv"), 32)

	folder, err := probeContentFolder(root, "Breaking Bad")
	if err != nil {
		t.Fatalf("probeContentFolder: %v", err)
	}
	if folder == nil {
		t.Fatal("expected the parent to be treated as the content folder")
	}
	if folder.Season != 2 {
		t.Fatalf("season = %d, want 2", folder.Season)
	}
	if folder.SeasonCount != 1 {
		t.Fatalf("season count = %d, want 1", folder.SeasonCount)
	}
}

func TestProbeContentFolderAggregatesAllSeasons(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "The Wire", "Season 3", "e01.mkv"), 32)
	testsupport.WriteFile(t, filepath.Join(root, "The Wire", "s01", "e01.mkv"), 32)
	testsupport.MkdirAll(t, filepath.Join(root, "The Wire", "Season 2")) // empty, no media

	folder, err := probeContentFolder(root, "The Wire")
	if err != nil {
		t.Fatalf("probeContentFolder: %v", err)
	}
	if folder == nil {
		t.Fatal("expected a content folder")
	}
	if folder.Season != 1 {
		t.Fatalf("lowest season = %d, want 1", folder.Season)
	}
	if folder.SeasonCount != 2 {
		t.Fatalf("season count = %d, want 2 (empty season dirs do not count)", folder.SeasonCount)
	}
}

func TestProbeContentFolderIgnoresNonContent(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "notes", "readme.txt"), 16)
	testsupport.WriteFile(t, filepath.Join(root, "notes", "Extras", "clip.mkv"), 16)

	folder, err := probeContentFolder(root, "notes")
	if err != nil {
		t.Fatalf("probeContentFolder: %v", err)
	}
	if folder != nil {
		t.Fatalf("folder without direct media or season subfolders must be skipped, got %+v", folder)
	}
}

func TestMediaFilesUnderSkipsHiddenFiles(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "show", "Season 1", "e01.mkv"), 16)
	testsupport.WriteFile(t, filepath.Join(root, "show", ".DS_Store"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "show", "info.nfo"), 8)

	files, err := mediaFilesUnder(filepath.Join(root, "show"))
	if err != nil {
		t.Fatalf("mediaFilesUnder: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want exactly the episode", files)
	}
}
