package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertOrganizedFile persists a record of one placed or discovered file.
func (s *Store) InsertOrganizedFile(ctx context.Context, file *OrganizedFile) (*OrganizedFile, error) {
	if file == nil {
		return nil, errors.New("organized file is nil")
	}
	timestamp := nowStamp()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO organized_files (
            original_path, organized_path, file_name, size_bytes,
            title, year, season, episode, platform, quality, format, edition,
            request_id, reverse_indexed, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.OriginalPath,
		file.OrganizedPath,
		file.FileName,
		file.SizeBytes,
		nullableString(file.Title),
		nullableInt(file.Year),
		nullableInt(file.Season),
		nullableInt(file.Episode),
		nullableString(file.Platform),
		nullableString(file.Quality),
		nullableString(file.Format),
		nullableString(file.Edition),
		nullableInt64Ptr(file.RequestID),
		boolToInt(file.ReverseIndexed),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert organized file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetOrganizedFile(ctx, id)
}

// UpdateOrganizedFile persists changes to an existing record, typically when
// a reverse-indexed file is later properly reorganized.
func (s *Store) UpdateOrganizedFile(ctx context.Context, file *OrganizedFile) error {
	if file == nil {
		return errors.New("organized file is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE organized_files
         SET original_path = ?, organized_path = ?, file_name = ?, size_bytes = ?,
             title = ?, year = ?, season = ?, episode = ?, platform = ?,
             quality = ?, format = ?, edition = ?, request_id = ?,
             reverse_indexed = ?, updated_at = ?
         WHERE id = ?`,
		file.OriginalPath,
		file.OrganizedPath,
		file.FileName,
		file.SizeBytes,
		nullableString(file.Title),
		nullableInt(file.Year),
		nullableInt(file.Season),
		nullableInt(file.Episode),
		nullableString(file.Platform),
		nullableString(file.Quality),
		nullableString(file.Format),
		nullableString(file.Edition),
		nullableInt64Ptr(file.RequestID),
		boolToInt(file.ReverseIndexed),
		nowStamp(),
		file.ID,
	)
	if err != nil {
		return fmt.Errorf("update organized file: %w", err)
	}
	return nil
}

// GetOrganizedFile fetches a record by identifier.
func (s *Store) GetOrganizedFile(ctx context.Context, id int64) (*OrganizedFile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+organizedColumns+` FROM organized_files WHERE id = ?`, id)
	file, err := scanOrganizedFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organized file: %w", err)
	}
	return file, nil
}

// FindOrganizedByPath returns the record whose organized path matches, if any.
func (s *Store) FindOrganizedByPath(ctx context.Context, organizedPath string) (*OrganizedFile, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+organizedColumns+` FROM organized_files WHERE organized_path = ? ORDER BY id DESC LIMIT 1`,
		organizedPath,
	)
	file, err := scanOrganizedFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find organized file: %w", err)
	}
	return file, nil
}

// ListOrganizedFiles returns records ordered by creation time, newest first.
func (s *Store) ListOrganizedFiles(ctx context.Context, limit int) ([]*OrganizedFile, error) {
	query := `SELECT ` + organizedColumns + ` FROM organized_files ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list organized files: %w", err)
	}
	defer rows.Close()

	var files []*OrganizedFile
	for rows.Next() {
		file, err := scanOrganizedFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

const organizedColumns = "id, original_path, organized_path, file_name, size_bytes, title, year, season, episode, platform, quality, format, edition, request_id, reverse_indexed, created_at, updated_at"

func scanOrganizedFile(scanner interface{ Scan(dest ...any) error }) (*OrganizedFile, error) {
	var (
		id             int64
		originalPath   string
		organizedPath  string
		fileName       string
		sizeBytes      int64
		title          sql.NullString
		year           sql.NullInt64
		season         sql.NullInt64
		episode        sql.NullInt64
		platform       sql.NullString
		quality        sql.NullString
		format         sql.NullString
		edition        sql.NullString
		requestID      sql.NullInt64
		reverseIndexed int
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&id,
		&originalPath,
		&organizedPath,
		&fileName,
		&sizeBytes,
		&title,
		&year,
		&season,
		&episode,
		&platform,
		&quality,
		&format,
		&edition,
		&requestID,
		&reverseIndexed,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	file := &OrganizedFile{
		ID:             id,
		OriginalPath:   originalPath,
		OrganizedPath:  organizedPath,
		FileName:       fileName,
		SizeBytes:      sizeBytes,
		Title:          title.String,
		Year:           int(year.Int64),
		Season:         int(season.Int64),
		Episode:        int(episode.Int64),
		Platform:       platform.String,
		Quality:        quality.String,
		Format:         format.String,
		Edition:        edition.String,
		ReverseIndexed: reverseIndexed != 0,
	}
	if requestID.Valid {
		v := requestID.Int64
		file.RequestID = &v
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		file.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		file.UpdatedAt = updated
	}
	return file, nil
}
