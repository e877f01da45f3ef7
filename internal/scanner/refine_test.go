package scanner

import (
	"testing"

	"shelfarr/internal/media"
	"shelfarr/internal/rules"
)

func TestRefineDescriptorSceneStyleMovieFolder(t *testing.T) {
	name := "The.Matrix.1999.1080p.BluRay.x264-GROUP"
	base := rules.ExtractFromFileName(name, media.Movie)
	got := refineDescriptor(base, name, media.Movie)

	if got.Title != "The Matrix" {
		t.Errorf("title = %q, want %q", got.Title, "The Matrix")
	}
	if got.Year != 1999 {
		t.Errorf("year = %d, want 1999", got.Year)
	}
}

func TestRefineDescriptorKeepsStructuredExtraction(t *testing.T) {
	name := "Inception (2010)"
	base := rules.ExtractFromFileName(name, media.Movie)
	got := refineDescriptor(base, name, media.Movie)

	if got.Title != "Inception" || got.Year != 2010 {
		t.Errorf("refinement must not degrade a clean extraction, got %+v", got)
	}
}

func TestRefineDescriptorLowercaseTitleIsCased(t *testing.T) {
	name := "breaking.bad"
	base := rules.ExtractFromFileName(name, media.TVShow)
	got := refineDescriptor(base, name, media.TVShow)

	if got.Title != "Breaking Bad" {
		t.Errorf("title = %q, want %q", got.Title, "Breaking Bad")
	}
}

func TestRefineDescriptorGamePlatformFromParens(t *testing.T) {
	name := "Chrono Trigger (SNES)"
	base := rules.ExtractFromFileName(name, media.Game)
	got := refineDescriptor(base, name, media.Game)

	if got.Platform != "SNES" {
		t.Errorf("platform = %q, want SNES", got.Platform)
	}
	if got.Title != "Chrono Trigger" {
		t.Errorf("title = %q, want Chrono Trigger", got.Title)
	}
}

func TestRefineDescriptorIgnoresYearAsPlatform(t *testing.T) {
	name := "Doom (1993)"
	base := media.Descriptor{Title: "Doom"}
	got := refineDescriptor(base, name, media.Game)

	if got.Platform != "" {
		t.Errorf("platform = %q, a year must not be mistaken for a platform", got.Platform)
	}
	if got.Year != 1993 {
		t.Errorf("year = %d, want 1993", got.Year)
	}
}

func TestRefineDescriptorGarbageOnlyName(t *testing.T) {
	name := "1080p.x264"
	base := rules.ExtractFromFileName(name, media.Movie)
	got := refineDescriptor(base, name, media.Movie)

	if got.HasTitle() {
		t.Errorf("garbage folder name must stay low confidence, got %+v", got)
	}
}
