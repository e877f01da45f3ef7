package scanner

import "context"

// SeasonScanner populates season and episode structure for TV tracking
// records. The production implementation lives with the request CRUD layer;
// the scanner only needs these two entry points.
type SeasonScanner interface {
	// ScanShow refreshes one show's seasons and returns the number of
	// episode entries updated.
	ScanShow(ctx context.Context, requestID int64) (int, error)
	// ScanAllShows refreshes every ongoing show and returns the total
	// number of episode entries updated.
	ScanAllShows(ctx context.Context) (int, error)
}

// NoopSeasonScanner satisfies SeasonScanner without doing any work.
type NoopSeasonScanner struct{}

func (NoopSeasonScanner) ScanShow(context.Context, int64) (int, error) { return 0, nil }

func (NoopSeasonScanner) ScanAllShows(context.Context) (int, error) { return 0, nil }

var _ SeasonScanner = NoopSeasonScanner{}
