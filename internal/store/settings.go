package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const defaultScanInterval = "1h"

// Settings returns the singleton settings row, creating it with defaults on
// first access.
func (s *Store) Settings(ctx context.Context) (*Settings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`)
	settings, err := scanSettings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s.createDefaultSettings(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (s *Store) createDefaultSettings(ctx context.Context) (*Settings, error) {
	timestamp := nowStamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (
            id, library_dir, auto_organize, replace_existing, extract_archives,
            delete_archives, reverse_indexing, scan_interval, created_at, updated_at
        ) VALUES (1, ?, 1, 0, 0, 0, 1, ?, ?, ?)`,
		s.defaultLibraryDir,
		defaultScanInterval,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert default settings: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`)
	settings, err := scanSettings(row)
	if err != nil {
		return nil, fmt.Errorf("reload settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings persists changes to the singleton settings row.
func (s *Store) UpdateSettings(ctx context.Context, settings *Settings) error {
	if settings == nil {
		return errors.New("settings is nil")
	}
	if _, err := s.Settings(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE settings
         SET library_dir = ?, movies_dir = ?, tv_dir = ?, games_dir = ?,
             auto_organize = ?, replace_existing = ?, extract_archives = ?,
             delete_archives = ?, reverse_indexing = ?, scan_interval = ?,
             updated_at = ?
         WHERE id = 1`,
		settings.LibraryDir,
		nullableString(settings.MoviesDir),
		nullableString(settings.TVDir),
		nullableString(settings.GamesDir),
		boolToInt(settings.AutoOrganize),
		boolToInt(settings.ReplaceExisting),
		boolToInt(settings.ExtractArchives),
		boolToInt(settings.DeleteArchives),
		boolToInt(settings.ReverseIndexing),
		settings.ScanInterval,
		nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

const settingsColumns = "library_dir, movies_dir, tv_dir, games_dir, auto_organize, replace_existing, extract_archives, delete_archives, reverse_indexing, scan_interval, created_at, updated_at"

func scanSettings(scanner interface{ Scan(dest ...any) error }) (*Settings, error) {
	var (
		libraryDir      string
		moviesDir       sql.NullString
		tvDir           sql.NullString
		gamesDir        sql.NullString
		autoOrganize    int
		replaceExisting int
		extractArchives int
		deleteArchives  int
		reverseIndexing int
		scanInterval    string
		createdRaw      string
		updatedRaw      string
	)
	if err := scanner.Scan(
		&libraryDir,
		&moviesDir,
		&tvDir,
		&gamesDir,
		&autoOrganize,
		&replaceExisting,
		&extractArchives,
		&deleteArchives,
		&reverseIndexing,
		&scanInterval,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	settings := &Settings{
		LibraryDir:      libraryDir,
		MoviesDir:       moviesDir.String,
		TVDir:           tvDir.String,
		GamesDir:        gamesDir.String,
		AutoOrganize:    autoOrganize != 0,
		ReplaceExisting: replaceExisting != 0,
		ExtractArchives: extractArchives != 0,
		DeleteArchives:  deleteArchives != 0,
		ReverseIndexing: reverseIndexing != 0,
		ScanInterval:    scanInterval,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		settings.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		settings.UpdatedAt = updated
	}
	return settings, nil
}
