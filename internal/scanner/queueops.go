package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shelfarr/internal/logging"
	"shelfarr/internal/media"
	"shelfarr/internal/services"
	"shelfarr/internal/store"
)

// ProcessQueueItem resolves a queued folder with user-confirmed selections:
// it finds or creates the tracking record, re-organizes every media file
// under the folder, cleans up emptied directories, and marks the item
// completed. Any failure marks the item failed with the error recorded.
func (s *Scanner) ProcessQueueItem(ctx context.Context, id int64, selections media.Descriptor) (*store.QueueItem, error) {
	logger := logging.WithContext(ctx, s.logger)

	item, err := s.store.GetQueueItem(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "load queue item", "failed to load queue item", err)
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "scanner", "load queue item", fmt.Sprintf("queue item %d does not exist", id), nil)
	}
	if item.Status.IsTerminal() || item.Status == store.QueueProcessing {
		return nil, services.Wrap(services.ErrUnsupported, "scanner", "process queue item", fmt.Sprintf("queue item %d is %s", id, item.Status), nil)
	}

	item.Detected = item.Detected.Overlay(selections)
	item.Status = store.QueueProcessing
	item.ErrorMessage = ""
	if err := s.store.UpdateQueueItem(ctx, item); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "claim queue item", "failed to move queue item to processing", err)
	}

	processed, err := s.processClaimedItem(ctx, item)
	if err != nil {
		item.Status = store.QueueFailed
		item.ErrorMessage = err.Error()
		if updateErr := s.store.UpdateQueueItem(ctx, item); updateErr != nil {
			logger.Error("failed to record queue item failure",
				logging.Int64(logging.FieldQueueItemID, item.ID),
				logging.Error(updateErr),
			)
		}
		return item, err
	}

	item.Status = store.QueueCompleted
	item.ErrorMessage = ""
	if err := s.store.UpdateQueueItem(ctx, item); err != nil {
		return item, services.Wrap(services.ErrPersistence, "scanner", "complete queue item", "folder organized but queue item update failed", err)
	}
	logger.Info("processed queue item",
		logging.Int64(logging.FieldQueueItemID, item.ID),
		logging.String(logging.FieldTitle, item.Detected.Title),
		logging.Int("files_organized", processed),
	)
	return item, nil
}

// processClaimedItem performs the disk and record work for an item already in
// processing state, returning the number of files placed.
func (s *Scanner) processClaimedItem(ctx context.Context, item *store.QueueItem) (int, error) {
	descriptor := item.Detected
	if !descriptor.HasTitle() {
		return 0, services.Wrap(services.ErrUnsupported, "scanner", "process queue item", "cannot organize without a confirmed title", nil)
	}

	request, err := s.resolveTrackingRecord(ctx, item.ContentType, descriptor)
	if err != nil {
		return 0, err
	}

	result, err := s.organizer.OrganizeDirectory(ctx, item.FolderPath, media.Context{
		Type:       item.ContentType,
		Descriptor: descriptor,
	}, &request.ID)
	if err != nil {
		return 0, err
	}
	if len(result.Organized) == 0 {
		if len(result.Failures) > 0 {
			return 0, services.Wrap(services.ErrTransient, "scanner", "organize folder", fmt.Sprintf("all %d files failed to organize", len(result.Failures)), result.Failures[0].Err)
		}
		return 0, services.Wrap(services.ErrNotFound, "scanner", "organize folder", "no media files found under queued folder", nil)
	}

	s.cleanupEmptiedFolder(ctx, item.FolderPath)

	if len(result.Failures) > 0 {
		logger := logging.WithContext(ctx, s.logger)
		logger.Warn("queue item processed with partial failures",
			logging.Int64(logging.FieldQueueItemID, item.ID),
			logging.Int("failed_files", len(result.Failures)),
		)
	}
	return len(result.Organized), nil
}

// resolveTrackingRecord matches an existing record or creates one through the
// same path the auto-import gate uses.
func (s *Scanner) resolveTrackingRecord(ctx context.Context, contentType media.ContentType, d media.Descriptor) (*store.Request, error) {
	matches, err := s.store.FindMatchingRequests(ctx, store.RequestMatch{
		ContentType: contentType,
		Title:       d.Title,
		Year:        d.Year,
		Season:      d.Season,
		Episode:     d.Episode,
		Platform:    d.Platform,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "match requests", "failed to query tracking records", err)
	}
	if match := pickBestMatch(d.Title, matches); match != nil {
		if match.Status == store.RequestPending {
			if err := s.store.UpdateRequestStatus(ctx, match.ID, store.RequestCompleted); err != nil {
				return nil, services.Wrap(services.ErrPersistence, "scanner", "complete request", "failed to mark tracking record completed", err)
			}
		}
		return match, nil
	}
	return s.createTrackingRecord(ctx, contentType, d, nil)
}

// SkipQueueItem marks a pending item skipped without touching the disk.
func (s *Scanner) SkipQueueItem(ctx context.Context, id int64) (*store.QueueItem, error) {
	item, err := s.store.GetQueueItem(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "load queue item", "failed to load queue item", err)
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "scanner", "load queue item", fmt.Sprintf("queue item %d does not exist", id), nil)
	}
	if item.Status != store.QueuePending {
		return nil, services.Wrap(services.ErrUnsupported, "scanner", "skip queue item", fmt.Sprintf("queue item %d is %s, only pending items can be skipped", id, item.Status), nil)
	}
	item.Status = store.QueueSkipped
	if err := s.store.UpdateQueueItem(ctx, item); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "skip queue item", "failed to mark queue item skipped", err)
	}
	return item, nil
}

// DeleteQueueItem removes an item row without touching the disk.
func (s *Scanner) DeleteQueueItem(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteQueueItem(ctx, id)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "scanner", "delete queue item", "failed to delete queue item", err)
	}
	if !deleted {
		return services.Wrap(services.ErrNotFound, "scanner", "delete queue item", fmt.Sprintf("queue item %d does not exist", id), nil)
	}
	return nil
}

// cleanupEmptiedFolder removes leftover hidden files and then deletes empty
// directories bottom-up, including the folder itself when nothing remains.
// Cleanup failures are logged, never fatal.
func (s *Scanner) cleanupEmptiedFolder(ctx context.Context, root string) {
	logger := logging.WithContext(ctx, s.logger)

	var dirs []string
	work := []string{root}
	for len(work) > 0 {
		current := work[0]
		work = work[1:]
		dirs = append(dirs, current)
		entries, err := os.ReadDir(current)
		if err != nil {
			logger.Warn("cleanup enumeration failed", logging.String(logging.FieldPath, current), logging.Error(err))
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				work = append(work, filepath.Join(current, entry.Name()))
			}
		}
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		empty := true
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name(), ".") {
				if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
					logger.Warn("failed to remove hidden file", logging.String(logging.FieldPath, filepath.Join(dir, entry.Name())), logging.Error(err))
					empty = false
				}
				continue
			}
			empty = false
		}
		if !empty {
			continue
		}
		if err := os.Remove(dir); err != nil {
			logger.Warn("failed to remove empty directory", logging.String(logging.FieldPath, dir), logging.Error(err))
		}
	}
}
