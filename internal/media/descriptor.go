package media

import "strings"

// Descriptor is the metadata extracted from a file or folder name, possibly
// enriched by catalog lookups. Zero values mean "unknown"; it is threaded
// explicitly between extraction, enrichment, and record creation.
type Descriptor struct {
	Title    string
	Year     int
	Season   int
	Episode  int
	Platform string
	Quality  string
	Format   string
	Edition  string
}

// UnknownTitle is the low-confidence title produced when extraction fails.
// Callers must treat a descriptor carrying it as unusable for matching.
const UnknownTitle = "Unknown"

// HasTitle reports whether the descriptor carries a usable title.
func (d Descriptor) HasTitle() bool {
	title := strings.TrimSpace(d.Title)
	return title != "" && !strings.EqualFold(title, UnknownTitle)
}

// Overlay returns a copy of d with any non-zero fields from other taking
// precedence. Used when user-confirmed selections override detected values.
func (d Descriptor) Overlay(other Descriptor) Descriptor {
	out := d
	if strings.TrimSpace(other.Title) != "" {
		out.Title = other.Title
	}
	if other.Year != 0 {
		out.Year = other.Year
	}
	if other.Season != 0 {
		out.Season = other.Season
	}
	if other.Episode != 0 {
		out.Episode = other.Episode
	}
	if strings.TrimSpace(other.Platform) != "" {
		out.Platform = other.Platform
	}
	if strings.TrimSpace(other.Quality) != "" {
		out.Quality = other.Quality
	}
	if strings.TrimSpace(other.Format) != "" {
		out.Format = other.Format
	}
	if strings.TrimSpace(other.Edition) != "" {
		out.Edition = other.Edition
	}
	return out
}

// Context pairs a descriptor with the source file it describes. It is the
// transient input to path generation and placement; nothing persists it.
type Context struct {
	Type       ContentType
	SourcePath string
	FileName   string
	Descriptor Descriptor
}
