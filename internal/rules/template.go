package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"shelfarr/internal/media"
)

// render substitutes the supported placeholders into a naming template.
// Unresolved placeholders render empty and surrounding whitespace collapses.
func render(template string, mc media.Context) string {
	d := mc.Descriptor
	replacements := map[string]string{
		"{title}":         strings.TrimSpace(d.Title),
		"{year}":          numberOrEmpty(d.Year),
		"{season}":        paddedOrEmpty(d.Season),
		"{seasonNumber}":  paddedOrEmpty(d.Season),
		"{episode}":       paddedOrEmpty(d.Episode),
		"{episodeNumber}": paddedOrEmpty(d.Episode),
		"{platform}":      strings.TrimSpace(d.Platform),
		"{quality}":       strings.TrimSpace(d.Quality),
		"{format}":        strings.TrimSpace(d.Format),
		"{edition}":       strings.TrimSpace(d.Edition),
		"{filename}":      strings.TrimSuffix(mc.FileName, filepath.Ext(mc.FileName)),
	}

	out := template
	for placeholder, value := range replacements {
		out = strings.ReplaceAll(out, placeholder, value)
	}
	return tidy(out)
}

func numberOrEmpty(value int) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf("%d", value)
}

func paddedOrEmpty(value int) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf("%02d", value)
}

// tidy collapses whitespace runs left behind by empty placeholders and trims
// dangling separators and empty parentheses.
func tidy(value string) string {
	value = strings.ReplaceAll(value, "()", "")
	value = strings.ReplaceAll(value, "[]", "")
	value = strings.Join(strings.Fields(value), " ")
	value = strings.Trim(value, " -")
	return strings.TrimSpace(value)
}

// illegalPathRunes are the characters stripped from generated path segments.
const illegalPathRunes = `<>:"/\|?*`

// Sanitize strips filesystem-illegal characters from one path segment and
// collapses any whitespace the removal leaves behind.
func Sanitize(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if strings.ContainsRune(illegalPathRunes, r) {
			continue
		}
		b.WriteRune(r)
	}
	return tidy(b.String())
}
