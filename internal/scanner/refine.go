package scanner

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shelfarr/internal/media"
)

// Folder names are far less structured than file names, so refinement is
// deliberately permissive: dots and underscores act as separators, years may
// appear bare, and release junk is stripped from the title.
var (
	parenYearPattern = regexp.MustCompile(`\((\d{4})\)`)
	bareYearPattern  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	parenPattern     = regexp.MustCompile(`\(([^)]+)\)`)
	junkTokenPattern = regexp.MustCompile(`(?i)^(720p|1080p|2160p|480p|4k|uhd|x264|x265|h264|h265|hevc|xvid|divx|aac|ac3|dts|bluray|blu-ray|brrip|bdrip|webrip|web-dl|webdl|hdtv|dvdrip|remux|proper|repack|extended|unrated|internal|limited|multi|sub|subs)$`)
)

var titleCaser = cases.Title(language.Und)

// refineDescriptor improves a file-pattern extraction using folder-name
// heuristics. Structured fields already present in base win; refinement only
// fills the gaps.
func refineDescriptor(base media.Descriptor, folderName string, contentType media.ContentType) media.Descriptor {
	out := base
	normalized := strings.NewReplacer(".", " ", "_", " ").Replace(folderName)

	if out.Year == 0 {
		out.Year = extractYear(normalized)
	}
	if contentType == media.Game && out.Platform == "" {
		out.Platform = extractPlatform(normalized)
	}
	if !out.HasTitle() {
		out.Title = refineTitle(normalized)
	}
	return out
}

func extractYear(name string) int {
	now := time.Now().Year()
	if m := parenYearPattern.FindStringSubmatch(name); m != nil {
		if year := atoiYear(m[1], now); year > 0 {
			return year
		}
	}
	// Bare years are ambiguous; take the last plausible one so leading
	// numeric titles are not mistaken for years.
	matches := bareYearPattern.FindAllString(name, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if year := atoiYear(matches[i], now); year > 0 {
			return year
		}
	}
	return 0
}

func atoiYear(value string, now int) int {
	year, err := strconv.Atoi(value)
	if err != nil || year < 1900 || year > now+1 {
		return 0
	}
	return year
}

// extractPlatform pulls the first parenthesized group that is not a year.
func extractPlatform(name string) string {
	for _, m := range parenPattern.FindAllStringSubmatch(name, -1) {
		candidate := strings.TrimSpace(m[1])
		if candidate == "" {
			continue
		}
		if atoiYear(candidate, time.Now().Year()+1) > 0 {
			continue
		}
		return candidate
	}
	return ""
}

// refineTitle strips parenthesized groups, release junk, and trailing
// season/episode markers, then title-cases all-lowercase results.
func refineTitle(name string) string {
	name = parenPattern.ReplaceAllString(name, " ")
	name = bareYearPattern.ReplaceAllString(name, " ")

	var kept []string
	for _, token := range strings.Fields(name) {
		trimmed := strings.Trim(token, "-[]{}")
		if trimmed == "" || junkTokenPattern.MatchString(trimmed) {
			// Junk marks the start of the release suffix; everything
			// after it is noise too.
			break
		}
		kept = append(kept, trimmed)
	}
	title := strings.TrimSpace(strings.Join(kept, " "))
	if title == "" {
		return media.UnknownTitle
	}
	if title == strings.ToLower(title) {
		title = titleCaser.String(title)
	}
	return title
}
