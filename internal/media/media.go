package media

import (
	"path/filepath"
	"strings"
)

// ContentType is the closed set of library classifications. Rule selection,
// base-path resolution, and the auto-import gate all switch exhaustively on
// it so adding a type is a compile-time-visible change.
type ContentType string

const (
	Movie  ContentType = "movie"
	TVShow ContentType = "tv"
	Game   ContentType = "game"
)

var allContentTypes = []ContentType{Movie, TVShow, Game}

// AllContentTypes returns the ordered list of known content types.
func AllContentTypes() []ContentType {
	cp := make([]ContentType, len(allContentTypes))
	copy(cp, allContentTypes)
	return cp
}

// ParseContentType converts a string into a known ContentType.
func ParseContentType(value string) (ContentType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies":
		return Movie, true
	case "tv", "tvshow", "tv_show", "show", "series":
		return TVShow, true
	case "game", "games", "rom":
		return Game, true
	default:
		return "", false
	}
}

// Subfolder returns the default library subdirectory for a content type.
func (c ContentType) Subfolder() string {
	switch c {
	case Movie:
		return "movies"
	case TVShow:
		return "tv"
	case Game:
		return "games"
	default:
		return string(c)
	}
}

// Label returns a human-readable name for status output.
func (c ContentType) Label() string {
	switch c {
	case Movie:
		return "Movie"
	case TVShow:
		return "TV Show"
	case Game:
		return "Game"
	default:
		return string(c)
	}
}

var mediaExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".m4v": {}, ".mov": {}, ".wmv": {},
	".ts": {}, ".m2ts": {}, ".webm": {}, ".mpg": {}, ".mpeg": {},
	// ROM formats
	".iso": {}, ".rom": {}, ".bin": {}, ".cue": {}, ".chd": {}, ".rvz": {},
	".nes": {}, ".sfc": {}, ".smc": {}, ".gba": {}, ".gb": {}, ".gbc": {},
	".nds": {}, ".3ds": {}, ".n64": {}, ".z64": {}, ".gcm": {}, ".wbfs": {},
	".xci": {}, ".nsp": {},
}

var archiveExtensions = map[string]struct{}{
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {}, ".bz2": {},
}

// IsMediaFile reports whether the path carries a recognized media or ROM
// extension.
func IsMediaFile(path string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsArchive reports whether the path carries a recognized archive extension.
func IsArchive(path string) bool {
	_, ok := archiveExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
