package rules_test

import (
	"testing"

	"shelfarr/internal/media"
	"shelfarr/internal/rules"
)

func TestExtractMovie(t *testing.T) {
	cases := []struct {
		name string
		want media.Descriptor
	}{
		{
			name: "Inception (2010).mkv",
			want: media.Descriptor{Title: "Inception", Year: 2010},
		},
		{
			name: "The Matrix (1999) - 1080p - BluRay.mkv",
			want: media.Descriptor{Title: "The Matrix", Year: 1999, Quality: "1080p", Format: "BluRay"},
		},
		{
			name: "Blade Runner (1982) - 2160p - Remux - Final Cut.mkv",
			want: media.Descriptor{Title: "Blade Runner", Year: 1982, Quality: "2160p", Format: "Remux", Edition: "Final Cut"},
		},
		{
			name: "random-download-x264",
			want: media.Descriptor{Title: "Unknown"},
		},
	}
	for _, tc := range cases {
		got := rules.ExtractFromFileName(tc.name, media.Movie)
		if got != tc.want {
			t.Errorf("ExtractFromFileName(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestExtractTV(t *testing.T) {
	cases := []struct {
		name string
		want media.Descriptor
	}{
		{
			name: "Breaking Bad - S01E02.mkv",
			want: media.Descriptor{Title: "Breaking Bad", Season: 1, Episode: 2},
		},
		{
			name: "The Wire - s03e11 - 720p - WEB-DL.mkv",
			want: media.Descriptor{Title: "The Wire", Season: 3, Episode: 11, Quality: "720p", Format: "WEB-DL"},
		},
		{
			name: "Some Documentary.mkv",
			want: media.Descriptor{Title: "Unknown"},
		},
	}
	for _, tc := range cases {
		got := rules.ExtractFromFileName(tc.name, media.TVShow)
		if got != tc.want {
			t.Errorf("ExtractFromFileName(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
		if got.Season < 0 || got.Episode < 0 {
			t.Errorf("%q: season/episode must be non-negative", tc.name)
		}
	}
}

func TestExtractGame(t *testing.T) {
	cases := []struct {
		name string
		want media.Descriptor
	}{
		{
			name: "Chrono Trigger (SNES).sfc",
			want: media.Descriptor{Title: "Chrono Trigger", Platform: "SNES"},
		},
		{
			name: "Ocarina of Time (N64) - Collectors Edition.n64",
			want: media.Descriptor{Title: "Ocarina of Time", Platform: "N64", Edition: "Collectors Edition"},
		},
		{
			name: "unsorted_rom_dump",
			want: media.Descriptor{Title: "Unknown"},
		},
	}
	for _, tc := range cases {
		got := rules.ExtractFromFileName(tc.name, media.Game)
		if got != tc.want {
			t.Errorf("ExtractFromFileName(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeStripsIllegalCharacters(t *testing.T) {
	got := rules.Sanitize(`What<If>: "Part\One" |?*`)
	for _, r := range `<>:"/\|?*` {
		if containsRune(got, r) {
			t.Fatalf("Sanitize left %q in %q", r, got)
		}
	}
	// Round trip: sanitizing a sanitized value changes nothing.
	if rules.Sanitize(got) != got {
		t.Fatalf("Sanitize not idempotent: %q -> %q", got, rules.Sanitize(got))
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
