package rules

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"shelfarr/internal/media"
)

// File name heuristics per content type. Folder names are less structured;
// the scanner applies its own more permissive refinements on top of these.
var (
	movieFilePattern = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)(?:\s*-\s*(.+))?$`)
	tvFilePattern    = regexp.MustCompile(`(?i)^(.+?)\s*-\s*S(\d{1,2})\s*E(\d{1,3})(?:\s*-\s*(.+))?$`)
	gameFilePattern  = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)(?:\s*-\s*(.+))?$`)
	seasonDirPattern = regexp.MustCompile(`(?i)^(?:season[ ._-]*(\d{1,3})|s(\d{1,3}))$`)
)

// SeasonFromFolderName extracts the season number from a season-style folder
// name ("Season 2", "s02"). Returns 0 when the name is not a season folder.
func SeasonFromFolderName(name string) int {
	m := seasonDirPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0
	}
	for _, group := range m[1:] {
		if group == "" {
			continue
		}
		if number, err := strconv.Atoi(group); err == nil {
			return number
		}
	}
	return 0
}

// IsSeasonFolderName reports whether a folder name follows a season pattern.
func IsSeasonFolderName(name string) bool {
	return seasonDirPattern.MatchString(strings.TrimSpace(name))
}

// ExtractFromFileName parses a file or folder name into a descriptor using
// type-specific heuristics. Unmatched input yields a descriptor with title
// "Unknown" and no other fields; callers must treat that as low confidence.
func ExtractFromFileName(fileName string, contentType media.ContentType) media.Descriptor {
	name := strings.TrimSpace(fileName)
	if ext := filepath.Ext(name); media.IsMediaFile(name) || media.IsArchive(name) {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.TrimSpace(name)

	switch contentType {
	case media.Movie:
		return extractMovie(name)
	case media.TVShow:
		return extractTV(name)
	case media.Game:
		return extractGame(name)
	default:
		return media.Descriptor{Title: media.UnknownTitle}
	}
}

func extractMovie(name string) media.Descriptor {
	m := movieFilePattern.FindStringSubmatch(name)
	if m == nil {
		return media.Descriptor{Title: media.UnknownTitle}
	}
	d := media.Descriptor{Title: strings.TrimSpace(m[1])}
	d.Year, _ = strconv.Atoi(m[2])
	d.Quality, d.Format, d.Edition = splitTrailer(m[3])
	return d
}

func extractTV(name string) media.Descriptor {
	m := tvFilePattern.FindStringSubmatch(name)
	if m == nil {
		return media.Descriptor{Title: media.UnknownTitle}
	}
	d := media.Descriptor{Title: strings.TrimSpace(m[1])}
	d.Season, _ = strconv.Atoi(m[2])
	d.Episode, _ = strconv.Atoi(m[3])
	d.Quality, d.Format, d.Edition = splitTrailer(m[4])
	return d
}

func extractGame(name string) media.Descriptor {
	m := gameFilePattern.FindStringSubmatch(name)
	if m == nil {
		return media.Descriptor{Title: media.UnknownTitle}
	}
	d := media.Descriptor{
		Title:    strings.TrimSpace(m[1]),
		Platform: strings.TrimSpace(m[2]),
		Edition:  strings.TrimSpace(m[3]),
	}
	return d
}

// splitTrailer breaks the optional " - Quality - Format - Edition" suffix
// into its ordered parts.
func splitTrailer(trailer string) (quality, format, edition string) {
	trailer = strings.TrimSpace(trailer)
	if trailer == "" {
		return "", "", ""
	}
	parts := strings.Split(trailer, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 0 {
		quality = parts[0]
	}
	if len(parts) > 1 {
		format = parts[1]
	}
	if len(parts) > 2 {
		edition = strings.Join(parts[2:], " - ")
	}
	return quality, format, edition
}
