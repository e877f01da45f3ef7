package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shelfarr/internal/media"
)

// RequestMatch narrows the tracking-record search during reconciliation.
type RequestMatch struct {
	ContentType media.ContentType
	Title       string
	Year        int
	Season      int
	Episode     int
	Platform    string
}

// CreateRequest inserts a tracking record.
func (s *Store) CreateRequest(ctx context.Context, request *Request) (*Request, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}
	if request.Status == "" {
		request.Status = RequestPending
	}
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO requests (
            content_type, title, year, season, episode, platform, status,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ContentType,
		request.Title,
		nullableInt(request.Year),
		nullableInt(request.Season),
		nullableInt(request.Episode),
		nullableString(request.Platform),
		request.Status,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRequest(ctx, id)
}

// GetRequest fetches a tracking record by identifier.
func (s *Store) GetRequest(ctx context.Context, id int64) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	request, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return request, nil
}

// FindMatchingRequests returns candidate tracking records for a detected
// descriptor: content type plus case-insensitive title substring, year when
// known, season/episode for TV, platform substring for games. Most recently
// created first.
func (s *Store) FindMatchingRequests(ctx context.Context, match RequestMatch) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE content_type = ? AND title LIKE ? COLLATE NOCASE`
	args := []any{match.ContentType, "%" + match.Title + "%"}

	if match.Year != 0 {
		query += ` AND (year IS NULL OR year = ?)`
		args = append(args, match.Year)
	}
	switch match.ContentType {
	case media.TVShow:
		if match.Season != 0 {
			query += ` AND (season IS NULL OR season = ?)`
			args = append(args, match.Season)
		}
		if match.Episode != 0 {
			query += ` AND (episode IS NULL OR episode = ?)`
			args = append(args, match.Episode)
		}
	case media.Game:
		if match.Platform != "" {
			query += ` AND platform LIKE ? COLLATE NOCASE`
			args = append(args, "%"+match.Platform+"%")
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find matching requests: %w", err)
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// UpdateRequestStatus transitions a tracking record's status.
func (s *Store) UpdateRequestStatus(ctx context.Context, id int64, status RequestStatus) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		nowStamp(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// ListRequests returns all tracking records ordered by creation time.
func (s *Store) ListRequests(ctx context.Context) ([]*Request, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

const requestColumns = "id, content_type, title, year, season, episode, platform, status, created_at, updated_at"

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*Request, error) {
	var (
		id          int64
		contentType string
		title       string
		year        sql.NullInt64
		season      sql.NullInt64
		episode     sql.NullInt64
		platform    sql.NullString
		statusStr   string
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(
		&id,
		&contentType,
		&title,
		&year,
		&season,
		&episode,
		&platform,
		&statusStr,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	request := &Request{
		ID:          id,
		ContentType: media.ContentType(contentType),
		Title:       title,
		Year:        int(year.Int64),
		Season:      int(season.Int64),
		Episode:     int(episode.Int64),
		Platform:    platform.String,
		Status:      RequestStatus(statusStr),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		request.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		request.UpdatedAt = updated
	}
	return request, nil
}
