package scanner

import (
	"testing"

	"shelfarr/internal/media"
)

func TestAutoImportGateRejections(t *testing.T) {
	cases := []struct {
		name       string
		descriptor media.Descriptor
	}{
		{"quality tag", media.Descriptor{Title: "720p", Year: 2020}},
		{"sample marker", media.Descriptor{Title: "Sample", Year: 2020}},
		{"too short", media.Descriptor{Title: "ab", Year: 2020}},
		{"x264 token", media.Descriptor{Title: "Some Movie x264 Rip", Year: 2020}},
		{"x265 token", media.Descriptor{Title: "Some Movie x265", Year: 2020}},
		{"hevc token", media.Descriptor{Title: "Another HEVC Release", Year: 2020}},
		{"scene brackets", media.Descriptor{Title: "Movie Name [GROUP]", Year: 2020}},
		{"non-letter start", media.Descriptor{Title: "2 Fast Releases", Year: 2020}},
		{"mostly symbols", media.Descriptor{Title: "a!!!###$$$%%%", Year: 2020}},
		{"no year", media.Descriptor{Title: "The Matrix"}},
		{"implausible year", media.Descriptor{Title: "The Matrix", Year: 1500}},
		{"single short word", media.Descriptor{Title: "Heat", Year: 1995}},
		{"unknown title", media.Descriptor{Title: "Unknown", Year: 2020}},
	}
	for _, tc := range cases {
		if ok, reason := autoImportEligible(tc.descriptor, media.Movie); ok {
			t.Errorf("%s: expected rejection for %+v", tc.name, tc.descriptor)
		} else if reason == "" {
			t.Errorf("%s: rejection must carry a reason", tc.name)
		}
	}
}

func TestAutoImportGateAcceptsCleanMovies(t *testing.T) {
	cases := []media.Descriptor{
		{Title: "The Matrix", Year: 1999},
		{Title: "Inception", Year: 2010},
		{Title: "Blade Runner 2049 Director Cut", Year: 2017},
	}
	for _, d := range cases {
		if ok, reason := autoImportEligible(d, media.Movie); !ok {
			t.Errorf("expected acceptance for %+v, got rejection: %s", d, reason)
		}
	}
}

func TestAutoImportGateDisabledForTVAndGames(t *testing.T) {
	clean := media.Descriptor{Title: "Breaking Bad", Year: 2008}
	if ok, _ := autoImportEligible(clean, media.TVShow); ok {
		t.Error("TV must always require manual review")
	}
	if ok, _ := autoImportEligible(clean, media.Game); ok {
		t.Error("games must always require manual review")
	}
}
