package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfarr/internal/services/catalog"
)

func TestTMDBSearchMoviesReturnsTopMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q", got)
		}
		if got := r.URL.Query().Get("primary_release_year"); got != "2010" {
			t.Errorf("primary_release_year = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":27205,"title":"Inception","release_date":"2010-07-16"},{"id":1,"title":"Inception 2"}]}`))
	}))
	defer server.Close()

	client, err := catalog.NewTMDB("test-key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("NewTMDB: %v", err)
	}
	match, found, err := client.SearchMovies(context.Background(), "Inception", 2010)
	if err != nil {
		t.Fatalf("SearchMovies: %v", err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	if match.Title != "Inception" || match.Year != 2010 || match.ExternalID != 27205 {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestTMDBSearchTVShowsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client, err := catalog.NewTMDB("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("NewTMDB: %v", err)
	}
	match, found, err := client.SearchTVShows(context.Background(), "No Such Show", 0)
	if err != nil {
		t.Fatalf("SearchTVShows: %v", err)
	}
	if found || match != nil {
		t.Fatalf("expected a miss, got %+v", match)
	}
}

func TestTMDBSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := catalog.NewTMDB("bad-key", server.URL, "")
	if err != nil {
		t.Fatalf("NewTMDB: %v", err)
	}
	if _, _, err := client.SearchMovies(context.Background(), "Anything", 0); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestGamesSearchPrefersPlatformMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "games-key" {
			t.Errorf("key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":1,"name":"Chrono Trigger","released":"2011-04-25","platforms":[{"platform":{"name":"Nintendo DS"}}]},
			{"id":2,"name":"Chrono Trigger","released":"1995-03-11","platforms":[{"platform":{"name":"SNES"}}],"genres":[{"name":"RPG"}]}
		]}`))
	}))
	defer server.Close()

	client, err := catalog.NewGames("games-key", server.URL)
	if err != nil {
		t.Fatalf("NewGames: %v", err)
	}
	match, found, err := client.SearchGames(context.Background(), "Chrono Trigger", "SNES")
	if err != nil {
		t.Fatalf("SearchGames: %v", err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	if match.ExternalID != 2 || match.Year != 1995 || match.Genre != "RPG" {
		t.Fatalf("expected SNES release, got %+v", match)
	}
	if match.Platform != "SNES" {
		t.Fatalf("platform = %q, want hint preserved", match.Platform)
	}
}

func TestGamesSearchWithoutHintTakesTopResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":7,"name":"Doom","released":"1993-12-10","platforms":[{"platform":{"name":"PC"}}]}]}`))
	}))
	defer server.Close()

	client, err := catalog.NewGames("games-key", server.URL)
	if err != nil {
		t.Fatalf("NewGames: %v", err)
	}
	match, found, err := client.SearchGames(context.Background(), "Doom", "")
	if err != nil {
		t.Fatalf("SearchGames: %v", err)
	}
	if !found || match.Platform != "PC" {
		t.Fatalf("expected top result with inferred platform, got %+v (found=%v)", match, found)
	}
}

func TestTMDBMovieDetailsFillsGenreAndYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":27205,"title":"Inception","release_date":"2010-07-16","genres":[{"name":"Science Fiction"},{"name":"Action"}]}`))
	}))
	defer server.Close()

	client, err := catalog.NewTMDB("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("NewTMDB: %v", err)
	}
	match, found, err := client.MovieDetails(context.Background(), 27205)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	if match.Year != 2010 || match.Genre != "Science Fiction" {
		t.Fatalf("unexpected detail %+v", match)
	}
}

func TestTMDBTVShowDetailsUnknownIDMisses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := catalog.NewTMDB("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("NewTMDB: %v", err)
	}
	match, found, err := client.TVShowDetails(context.Background(), 999999)
	if err != nil {
		t.Fatalf("TVShowDetails: %v", err)
	}
	if found || match != nil {
		t.Fatalf("expected a miss for unknown id, got %+v", match)
	}
}

func TestGameDetailsReturnsPlatformAndGenre(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games/2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":2,"name":"Chrono Trigger","released":"1995-03-11","platforms":[{"platform":{"name":"SNES"}}],"genres":[{"name":"RPG"}]}`))
	}))
	defer server.Close()

	client, err := catalog.NewGames("games-key", server.URL)
	if err != nil {
		t.Fatalf("NewGames: %v", err)
	}
	match, found, err := client.GameDetails(context.Background(), 2)
	if err != nil {
		t.Fatalf("GameDetails: %v", err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	if match.Platform != "SNES" || match.Genre != "RPG" || match.Year != 1995 {
		t.Fatalf("unexpected detail %+v", match)
	}
}

func TestNoopCatalogsAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	if _, found, err := (catalog.NoopMovieTV{}).SearchMovies(ctx, "x", 0); found || err != nil {
		t.Fatalf("noop movie search: found=%v err=%v", found, err)
	}
	if _, found, err := (catalog.NoopMovieTV{}).MovieDetails(ctx, 1); found || err != nil {
		t.Fatalf("noop movie details: found=%v err=%v", found, err)
	}
	if _, found, err := (catalog.NoopGames{}).SearchGames(ctx, "x", ""); found || err != nil {
		t.Fatalf("noop games search: found=%v err=%v", found, err)
	}
	if _, found, err := (catalog.NoopGames{}).GameDetails(ctx, 1); found || err != nil {
		t.Fatalf("noop games details: found=%v err=%v", found, err)
	}
}
