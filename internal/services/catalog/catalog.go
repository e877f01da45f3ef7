// Package catalog provides lookups against external metadata catalogs. The
// scanner uses them to refine low-confidence titles; every lookup degrades to
// a miss rather than an error when the catalog has no answer.
package catalog

import "context"

// Match is the best catalog answer for a query.
type Match struct {
	Title      string
	Year       int
	ExternalID int64
	Genre      string
	Platform   string
}

// MovieTVCatalog resolves movie and TV show titles. Detail lookups take the
// external ID a search returned and fill fields the search listing omitted.
type MovieTVCatalog interface {
	SearchMovies(ctx context.Context, title string, year int) (*Match, bool, error)
	MovieDetails(ctx context.Context, id int64) (*Match, bool, error)
	SearchTVShows(ctx context.Context, title string, year int) (*Match, bool, error)
	TVShowDetails(ctx context.Context, id int64) (*Match, bool, error)
}

// GameCatalog resolves game titles, optionally scoped to a platform.
type GameCatalog interface {
	SearchGames(ctx context.Context, title, platform string) (*Match, bool, error)
	GameDetails(ctx context.Context, id int64) (*Match, bool, error)
}

// NoopMovieTV is used when no movie/TV catalog is configured; every lookup
// misses.
type NoopMovieTV struct{}

func (NoopMovieTV) SearchMovies(context.Context, string, int) (*Match, bool, error) {
	return nil, false, nil
}

func (NoopMovieTV) MovieDetails(context.Context, int64) (*Match, bool, error) {
	return nil, false, nil
}

func (NoopMovieTV) SearchTVShows(context.Context, string, int) (*Match, bool, error) {
	return nil, false, nil
}

func (NoopMovieTV) TVShowDetails(context.Context, int64) (*Match, bool, error) {
	return nil, false, nil
}

// NoopGames is used when no game catalog is configured.
type NoopGames struct{}

func (NoopGames) SearchGames(context.Context, string, string) (*Match, bool, error) {
	return nil, false, nil
}

func (NoopGames) GameDetails(context.Context, int64) (*Match, bool, error) {
	return nil, false, nil
}

var (
	_ MovieTVCatalog = NoopMovieTV{}
	_ GameCatalog    = NoopGames{}
)
