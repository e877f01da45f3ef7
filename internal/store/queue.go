package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shelfarr/internal/media"
)

// InsertQueueItem adds a pending review item for a folder. A folder path may
// hold at most one live item; inserting a second is refused.
func (s *Store) InsertQueueItem(ctx context.Context, item *QueueItem) (*QueueItem, error) {
	if item == nil {
		return nil, errors.New("queue item is nil")
	}
	if item.Status == "" {
		item.Status = QueuePending
	}
	if !item.Status.IsTerminal() {
		live, err := s.liveQueueItemExists(ctx, item.FolderPath)
		if err != nil {
			return nil, fmt.Errorf("check live queue items: %w", err)
		}
		if live {
			return nil, fmt.Errorf("folder %q already has a live queue item", item.FolderPath)
		}
	}
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO organize_queue (
            folder_path, content_type, title, year, season, episode, platform,
            quality, format, edition, status, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.FolderPath,
		item.ContentType,
		nullableString(item.Detected.Title),
		nullableInt(item.Detected.Year),
		nullableInt(item.Detected.Season),
		nullableInt(item.Detected.Episode),
		nullableString(item.Detected.Platform),
		nullableString(item.Detected.Quality),
		nullableString(item.Detected.Format),
		nullableString(item.Detected.Edition),
		item.Status,
		nullableString(item.ErrorMessage),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert queue item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetQueueItem(ctx, id)
}

// liveQueueItemExists reports whether a folder already has an item in one of
// the non-terminal states.
func (s *Store) liveQueueItemExists(ctx context.Context, folderPath string) (bool, error) {
	placeholders := make([]string, len(liveQueueStatuses))
	args := make([]any, 0, len(liveQueueStatuses)+1)
	args = append(args, folderPath)
	for i, status := range liveQueueStatuses {
		placeholders[i] = "?"
		args = append(args, string(status))
	}
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM organize_queue WHERE folder_path = ? AND status IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetQueueItem fetches a queue item by identifier.
func (s *Store) GetQueueItem(ctx context.Context, id int64) (*QueueItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM organize_queue WHERE id = ?`, id)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue item: %w", err)
	}
	return item, nil
}

// FindQueueItemByFolder returns the most recent item for a folder path
// regardless of status, or nil when none exists.
func (s *Store) FindQueueItemByFolder(ctx context.Context, folderPath string) (*QueueItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+queueColumns+` FROM organize_queue WHERE folder_path = ? ORDER BY id DESC LIMIT 1`,
		folderPath,
	)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find queue item: %w", err)
	}
	return item, nil
}

// UpdateQueueItem persists changes to an existing queue item.
func (s *Store) UpdateQueueItem(ctx context.Context, item *QueueItem) error {
	if item == nil {
		return errors.New("queue item is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE organize_queue
         SET folder_path = ?, content_type = ?, title = ?, year = ?, season = ?,
             episode = ?, platform = ?, quality = ?, format = ?, edition = ?,
             status = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		item.FolderPath,
		item.ContentType,
		nullableString(item.Detected.Title),
		nullableInt(item.Detected.Year),
		nullableInt(item.Detected.Season),
		nullableInt(item.Detected.Episode),
		nullableString(item.Detected.Platform),
		nullableString(item.Detected.Quality),
		nullableString(item.Detected.Format),
		nullableString(item.Detected.Edition),
		item.Status,
		nullableString(item.ErrorMessage),
		nowStamp(),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update queue item: %w", err)
	}
	return nil
}

// ListQueueItems returns items filtered by status set (or all items when no
// status is provided), ordered by creation time.
func (s *Store) ListQueueItems(ctx context.Context, statuses ...QueueStatus) ([]*QueueItem, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + queueColumns + ` FROM organize_queue`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteQueueItem removes an item by identifier.
func (s *Store) DeleteQueueItem(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM organize_queue WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete queue item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// QueueStats returns a count of items grouped by status.
func (s *Store) QueueStats(ctx context.Context) (map[QueueStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM organize_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[QueueStatus]int)
	for rows.Next() {
		var status QueueStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const queueColumns = "id, folder_path, content_type, title, year, season, episode, platform, quality, format, edition, status, error_message, created_at, updated_at"

func scanQueueItem(scanner interface{ Scan(dest ...any) error }) (*QueueItem, error) {
	var (
		id           int64
		folderPath   string
		contentType  string
		title        sql.NullString
		year         sql.NullInt64
		season       sql.NullInt64
		episode      sql.NullInt64
		platform     sql.NullString
		quality      sql.NullString
		format       sql.NullString
		edition      sql.NullString
		statusStr    string
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&id,
		&folderPath,
		&contentType,
		&title,
		&year,
		&season,
		&episode,
		&platform,
		&quality,
		&format,
		&edition,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &QueueItem{
		ID:          id,
		FolderPath:  folderPath,
		ContentType: media.ContentType(contentType),
		Detected: media.Descriptor{
			Title:    title.String,
			Year:     int(year.Int64),
			Season:   int(season.Int64),
			Episode:  int(episode.Int64),
			Platform: platform.String,
			Quality:  quality.String,
			Format:   format.String,
			Edition:  edition.String,
		},
		Status:       QueueStatus(statusStr),
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
