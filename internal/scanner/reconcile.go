package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"shelfarr/internal/logging"
	"shelfarr/internal/media"
	"shelfarr/internal/rules"
	"shelfarr/internal/services"
	"shelfarr/internal/services/catalog"
	"shelfarr/internal/store"
)

// reconcileFolder runs the full pipeline for one detected folder: extract,
// refine, enrich, match-or-gate, and queue or record the outcome.
func (s *Scanner) reconcileFolder(ctx context.Context, contentType media.ContentType, folder *contentFolder, settings *store.Settings, summary *Summary) error {
	logger := logging.WithContext(ctx, s.logger)

	descriptor := rules.ExtractFromFileName(folder.Name, contentType)
	descriptor = refineDescriptor(descriptor, folder.Name, contentType)
	if folder.Season > 0 && descriptor.Season == 0 {
		descriptor.Season = folder.Season
	}
	descriptor = s.enrich(ctx, contentType, descriptor)

	if descriptor.HasTitle() {
		matches, err := s.store.FindMatchingRequests(ctx, store.RequestMatch{
			ContentType: contentType,
			Title:       descriptor.Title,
			Year:        descriptor.Year,
			Season:      descriptor.Season,
			Episode:     descriptor.Episode,
			Platform:    descriptor.Platform,
		})
		if err != nil {
			return services.Wrap(services.ErrPersistence, "scanner", "match requests", "failed to query tracking records", err)
		}
		if match := pickBestMatch(descriptor.Title, matches); match != nil {
			if match.Status != store.RequestCompleted {
				if err := s.store.UpdateRequestStatus(ctx, match.ID, store.RequestCompleted); err != nil {
					return services.Wrap(services.ErrPersistence, "scanner", "complete request", "failed to mark tracking record completed", err)
				}
				logger.Info("linked folder to tracking record",
					logging.String(logging.FieldTitle, descriptor.Title),
					logging.Int64("request_id", match.ID),
				)
			}
			if settings.ReverseIndexing {
				s.reverseIndexFolder(ctx, folder, contentType, descriptor, &match.ID)
			}
			return nil
		}
	}

	if eligible, reason := autoImportEligible(descriptor, contentType); eligible {
		request, err := s.createTrackingRecord(ctx, contentType, descriptor, summary)
		if err != nil {
			return err
		}
		logger.Info("auto-imported folder",
			logging.String(logging.FieldTitle, descriptor.Title),
			logging.Int("year", descriptor.Year),
			logging.Int64("request_id", request.ID),
		)
		if settings.ReverseIndexing {
			s.reverseIndexFolder(ctx, folder, contentType, descriptor, &request.ID)
		}
		return nil
	} else if descriptor.HasTitle() {
		logger.Debug("auto-import rejected",
			logging.String(logging.FieldTitle, descriptor.Title),
			logging.String("reason", reason),
		)
	}

	return s.enqueueFolder(ctx, contentType, folder, descriptor, summary)
}

// enrich consults the catalog collaborators when the descriptor carries a
// usable title. Lookup failures are swallowed; the unenriched descriptor is
// still useful.
func (s *Scanner) enrich(ctx context.Context, contentType media.ContentType, d media.Descriptor) media.Descriptor {
	if !d.HasTitle() {
		return d
	}
	logger := logging.WithContext(ctx, s.logger)

	switch contentType {
	case media.Movie:
		match, found, err := s.movies.SearchMovies(ctx, d.Title, d.Year)
		if err != nil {
			logger.Warn("movie catalog lookup failed", logging.String(logging.FieldTitle, d.Title), logging.Error(err))
			return d
		}
		if found {
			match = s.fillFromDetails(ctx, match, s.movies.MovieDetails)
			d = overlayMatch(d, match.Title, match.Year, "")
		}
	case media.TVShow:
		match, found, err := s.movies.SearchTVShows(ctx, d.Title, d.Year)
		if err != nil {
			logger.Warn("tv catalog lookup failed", logging.String(logging.FieldTitle, d.Title), logging.Error(err))
			return d
		}
		if found {
			match = s.fillFromDetails(ctx, match, s.movies.TVShowDetails)
			d = overlayMatch(d, match.Title, match.Year, "")
		}
	case media.Game:
		match, found, err := s.games.SearchGames(ctx, d.Title, d.Platform)
		if err != nil {
			logger.Warn("game catalog lookup failed", logging.String(logging.FieldTitle, d.Title), logging.Error(err))
			return d
		}
		if found {
			platform := match.Platform
			match = s.fillFromDetails(ctx, match, s.games.GameDetails)
			if match.Platform == "" {
				match.Platform = platform
			}
			d = overlayMatch(d, match.Title, match.Year, match.Platform)
		}
	}
	return d
}

// fillFromDetails recovers fields the search listing omitted, typically the
// release year. Detail failures leave the search match untouched.
func (s *Scanner) fillFromDetails(ctx context.Context, match *catalog.Match, details func(context.Context, int64) (*catalog.Match, bool, error)) *catalog.Match {
	if match == nil || match.ExternalID == 0 || match.Year > 0 {
		return match
	}
	detail, found, err := details(ctx, match.ExternalID)
	if err != nil || !found {
		return match
	}
	if detail.Title == "" {
		detail.Title = match.Title
	}
	if detail.Platform == "" {
		detail.Platform = match.Platform
	}
	return detail
}

func overlayMatch(d media.Descriptor, title string, year int, platform string) media.Descriptor {
	if strings.TrimSpace(title) != "" {
		d.Title = title
	}
	if year > 0 {
		d.Year = year
	}
	if strings.TrimSpace(platform) != "" {
		d.Platform = platform
	}
	return d
}

// pickBestMatch selects among candidate tracking records. The store already
// orders newest first; fuzzy title distance breaks the tie toward the closest
// name so a substring match on a longer title does not shadow an exact one.
func pickBestMatch(title string, matches []*store.Request) *store.Request {
	if len(matches) == 0 {
		return nil
	}
	if len(matches) == 1 {
		return matches[0]
	}
	best := matches[0]
	bestRank := fuzzy.RankMatchNormalizedFold(title, best.Title)
	if bestRank < 0 {
		bestRank = len(best.Title) + len(title)
	}
	for _, candidate := range matches[1:] {
		rank := fuzzy.RankMatchNormalizedFold(title, candidate.Title)
		if rank < 0 {
			continue
		}
		if rank < bestRank {
			best = candidate
			bestRank = rank
		}
	}
	return best
}

// createTrackingRecord grants a tracking record from a descriptor. Movies and
// games arrive on disk finished, so their records are completed immediately;
// TV shows become ongoing and trigger a season population pass.
func (s *Scanner) createTrackingRecord(ctx context.Context, contentType media.ContentType, d media.Descriptor, summary *Summary) (*store.Request, error) {
	status := store.RequestCompleted
	if contentType == media.TVShow {
		status = store.RequestOngoing
	}
	request, err := s.store.CreateRequest(ctx, &store.Request{
		ContentType: contentType,
		Title:       d.Title,
		Year:        d.Year,
		Season:      d.Season,
		Episode:     d.Episode,
		Platform:    d.Platform,
		Status:      status,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "create request", "failed to create tracking record", err)
	}

	if contentType == media.TVShow {
		logger := logging.WithContext(ctx, s.logger)
		updated, err := s.seasons.ScanShow(ctx, request.ID)
		if err != nil {
			logger.Warn("season population failed",
				logging.Int64("request_id", request.ID),
				logging.Error(err),
			)
		} else if summary != nil {
			summary.EpisodesUpdated += updated
		}
	}
	return request, nil
}

// enqueueFolder inserts or refreshes a pending queue item for a folder that
// could not be confidently linked. Live items are never duplicated and
// pending/processing items are never overwritten; completed items found again
// without a tracking record reset to pending with refreshed metadata.
func (s *Scanner) enqueueFolder(ctx context.Context, contentType media.ContentType, folder *contentFolder, d media.Descriptor, summary *Summary) error {
	logger := logging.WithContext(ctx, s.logger)

	existing, err := s.store.FindQueueItemByFolder(ctx, folder.Path)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "scanner", "find queue item", "failed to query organize queue", err)
	}
	if existing == nil {
		item, err := s.store.InsertQueueItem(ctx, &store.QueueItem{
			FolderPath:  folder.Path,
			ContentType: contentType,
			Detected:    d,
			Status:      store.QueuePending,
		})
		if err != nil {
			return services.Wrap(services.ErrPersistence, "scanner", "insert queue item", "failed to queue folder for review", err)
		}
		summary.NewQueueItems++
		logger.Info("queued folder for review",
			logging.Int64(logging.FieldQueueItemID, item.ID),
			logging.String(logging.FieldPath, folder.Path),
			logging.String(logging.FieldTitle, d.Title),
		)
		return nil
	}

	switch existing.Status {
	case store.QueuePending, store.QueueProcessing:
		return nil
	case store.QueueSkipped:
		// The user declined this folder; honor that decision.
		return nil
	case store.QueueCompleted, store.QueueFailed:
		existing.Detected = d
		existing.ContentType = contentType
		existing.Status = store.QueuePending
		existing.ErrorMessage = ""
		if err := s.store.UpdateQueueItem(ctx, existing); err != nil {
			return services.Wrap(services.ErrPersistence, "scanner", "refresh queue item", "failed to reset queue item to pending", err)
		}
		summary.NewQueueItems++
		logger.Info("reset queue item to pending",
			logging.Int64(logging.FieldQueueItemID, existing.ID),
			logging.String(logging.FieldPath, folder.Path),
		)
	}
	return nil
}

// reverseIndexFolder records files already in place that this engine never
// moved. Files with an existing placement record are left alone.
func (s *Scanner) reverseIndexFolder(ctx context.Context, folder *contentFolder, contentType media.ContentType, d media.Descriptor, requestID *int64) {
	logger := logging.WithContext(ctx, s.logger)

	files, err := mediaFilesUnder(folder.Path)
	if err != nil {
		logger.Warn("failed to enumerate folder for reverse indexing",
			logging.String(logging.FieldPath, folder.Path),
			logging.Error(err),
		)
		return
	}
	for _, path := range files {
		existing, err := s.store.FindOrganizedByPath(ctx, path)
		if err != nil {
			logger.Warn("reverse index lookup failed", logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		if existing != nil {
			continue
		}
		fileDescriptor := d
		if contentType == media.TVShow {
			if season := rules.SeasonFromFolderName(filepath.Base(filepath.Dir(path))); season > 0 {
				fileDescriptor.Season = season
			}
			derived := rules.ExtractFromFileName(filepath.Base(path), media.TVShow)
			if derived.Season > 0 {
				fileDescriptor.Season = derived.Season
			}
			if derived.Episode > 0 {
				fileDescriptor.Episode = derived.Episode
			}
		}
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("reverse index stat failed", logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		if _, err := s.store.InsertOrganizedFile(ctx, &store.OrganizedFile{
			OriginalPath:   path,
			OrganizedPath:  path,
			FileName:       filepath.Base(path),
			SizeBytes:      info.Size(),
			Title:          fileDescriptor.Title,
			Year:           fileDescriptor.Year,
			Season:         fileDescriptor.Season,
			Episode:        fileDescriptor.Episode,
			Platform:       fileDescriptor.Platform,
			Quality:        fileDescriptor.Quality,
			Format:         fileDescriptor.Format,
			Edition:        fileDescriptor.Edition,
			RequestID:      requestID,
			ReverseIndexed: true,
		}); err != nil {
			logger.Warn("failed to record reverse-indexed file",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
		}
	}
}
