package media_test

import (
	"testing"

	"shelfarr/internal/media"
)

func TestParseContentType(t *testing.T) {
	cases := []struct {
		input string
		want  media.ContentType
		ok    bool
	}{
		{"movie", media.Movie, true},
		{"Movies", media.Movie, true},
		{"tv", media.TVShow, true},
		{"TV_Show", media.TVShow, true},
		{"series", media.TVShow, true},
		{"game", media.Game, true},
		{"rom", media.Game, true},
		{"", "", false},
		{"music", "", false},
	}
	for _, tc := range cases {
		got, ok := media.ParseContentType(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseContentType(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsMediaFile(t *testing.T) {
	if !media.IsMediaFile("/library/movies/Inception (2010)/inception.mkv") {
		t.Error("expected .mkv to be recognized")
	}
	if !media.IsMediaFile("game.ISO") {
		t.Error("expected extension match to be case-insensitive")
	}
	if media.IsMediaFile("notes.txt") {
		t.Error("expected .txt to be rejected")
	}
	if media.IsMediaFile("archive.zip") {
		t.Error("archives are not media files")
	}
}

func TestIsArchive(t *testing.T) {
	if !media.IsArchive("bundle.rar") {
		t.Error("expected .rar to be recognized")
	}
	if media.IsArchive("movie.mkv") {
		t.Error("expected .mkv to be rejected")
	}
}

func TestDescriptorOverlay(t *testing.T) {
	detected := media.Descriptor{Title: "Unknwon Show", Year: 2008, Season: 1}
	selected := media.Descriptor{Title: "Breaking Bad", Episode: 2}

	merged := detected.Overlay(selected)
	if merged.Title != "Breaking Bad" {
		t.Errorf("title = %q", merged.Title)
	}
	if merged.Year != 2008 || merged.Season != 1 || merged.Episode != 2 {
		t.Errorf("unexpected merge: %+v", merged)
	}
}

func TestDescriptorHasTitle(t *testing.T) {
	if (media.Descriptor{Title: "Unknown"}).HasTitle() {
		t.Error("Unknown title must be low confidence")
	}
	if (media.Descriptor{Title: "  "}).HasTitle() {
		t.Error("blank title must be low confidence")
	}
	if !(media.Descriptor{Title: "Inception"}).HasTitle() {
		t.Error("real title expected to pass")
	}
}
