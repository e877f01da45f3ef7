package scanner

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"shelfarr/internal/media"
)

// The auto-import gate decides whether a detected descriptor is trustworthy
// enough to create a tracking record without human confirmation. TV shows and
// games always require confirmation; movies pass only with a clean title and
// a plausible year.
var (
	releaseArtifactPattern = regexp.MustCompile(`(?i)\b(480p|720p|1080p|2160p|x264|x265|h264|h265|hevc|xvid|divx|webrip|web-dl|webdl|hdtv|dvdrip|brrip|bdrip|bluray|blu-ray|remux|proper|repack|sample|trailer)\b`)
	sceneBracketPattern    = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}`)
)

const (
	minTitleLength      = 3
	maxTitleLength      = 120
	minSingleWordLength = 8
	minAlphaRatio       = 0.6
)

// autoImportEligible applies the confidence gate. The returned reason names
// the failed check for logging.
func autoImportEligible(d media.Descriptor, contentType media.ContentType) (bool, string) {
	switch contentType {
	case media.TVShow, media.Game:
		return false, "manual review required for this content type"
	case media.Movie:
	default:
		return false, "unknown content type"
	}

	title := strings.TrimSpace(d.Title)
	if !d.HasTitle() {
		return false, "no usable title"
	}
	if len(title) < minTitleLength {
		return false, "title too short"
	}
	if len(title) > maxTitleLength {
		return false, "title too long"
	}
	first := []rune(title)[0]
	if !unicode.IsLetter(first) {
		return false, "title starts with a non-letter"
	}
	if alphaRatio(title) < minAlphaRatio {
		return false, "title is mostly non-alphabetic"
	}
	if releaseArtifactPattern.MatchString(title) {
		return false, "title contains release artifacts"
	}
	if sceneBracketPattern.MatchString(title) {
		return false, "title contains scene-group markers"
	}

	if d.Year < 1900 || d.Year > time.Now().Year()+1 {
		return false, "no plausible year"
	}
	words := strings.Fields(title)
	if len(words) < 2 && len(title) < minSingleWordLength {
		return false, "single short word"
	}
	return true, ""
}

// alphaRatio is the share of letters and spaces in a title.
func alphaRatio(title string) float64 {
	if title == "" {
		return 0
	}
	total := 0
	alpha := 0
	for _, r := range title {
		total++
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			alpha++
		}
	}
	return float64(alpha) / float64(total)
}
