package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"shelfarr/internal/media"
	"shelfarr/internal/rules"
)

// contentFolder is one candidate folder detected during a scan.
type contentFolder struct {
	Path        string
	Name        string
	Season      int // lowest detected season number, 0 for flat layouts
	SeasonCount int
}

// probeContentFolder decides whether a library subfolder holds content. A
// folder with media files directly inside is a flat content folder. Otherwise
// every season-style subfolder is probed and the parent becomes the content
// folder when at least one of them holds media; the lowest season number is
// recorded. Multi-season packs are aggregated rather than stopping at the
// first hit.
func probeContentFolder(parent, name string) (*contentFolder, error) {
	path := filepath.Join(parent, name)
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var seasonDirs []os.DirEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() {
			if rules.IsSeasonFolderName(entry.Name()) {
				seasonDirs = append(seasonDirs, entry)
			}
			continue
		}
		if media.IsMediaFile(entry.Name()) {
			return &contentFolder{Path: path, Name: name}, nil
		}
	}

	lowest := 0
	count := 0
	for _, entry := range seasonDirs {
		hasMedia, err := containsMediaFiles(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		if !hasMedia {
			continue
		}
		count++
		number := rules.SeasonFromFolderName(entry.Name())
		if lowest == 0 || (number > 0 && number < lowest) {
			lowest = number
		}
	}
	if count == 0 {
		return nil, nil
	}
	return &contentFolder{Path: path, Name: name, Season: lowest, SeasonCount: count}, nil
}

// containsMediaFiles reports whether a directory directly holds media files.
func containsMediaFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if media.IsMediaFile(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}

// mediaFilesUnder walks a folder iteratively and returns every media file in
// deterministic order.
func mediaFilesUnder(root string) ([]string, error) {
	var files []string
	work := []string{root}
	for len(work) > 0 {
		current := work[0]
		work = work[1:]
		entries, err := os.ReadDir(current)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(current, name)
			if entry.IsDir() {
				work = append(work, full)
				continue
			}
			if media.IsMediaFile(name) {
				files = append(files, full)
			}
		}
	}
	return files, nil
}
