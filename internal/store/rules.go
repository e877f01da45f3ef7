package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shelfarr/internal/media"
)

// CreateRule inserts a rule. When the rule is marked default, prior defaults
// for the same content type are cleared in the same transaction so at most
// one default exists per type.
func (s *Store) CreateRule(ctx context.Context, rule *Rule) (*Rule, error) {
	if rule == nil {
		return nil, errors.New("rule is nil")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rule insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := nowStamp()
	if rule.IsDefault {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE organization_rules SET is_default = 0, updated_at = ? WHERE content_type = ? AND is_default = 1`,
			timestamp,
			rule.ContentType,
		); err != nil {
			return nil, fmt.Errorf("clear prior defaults: %w", err)
		}
	}

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO organization_rules (
            content_type, platform, folder_template, file_template,
            season_folder_template, base_path, is_default, is_active,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ContentType,
		nullableString(rule.Platform),
		rule.FolderTemplate,
		rule.FileTemplate,
		nullableString(rule.SeasonFolderTemplate),
		nullableString(rule.BasePath),
		boolToInt(rule.IsDefault),
		boolToInt(rule.IsActive),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rule insert: %w", err)
	}
	return s.GetRule(ctx, id)
}

// UpdateRule persists changes to an existing rule, enforcing the single
// default invariant.
func (s *Store) UpdateRule(ctx context.Context, rule *Rule) error {
	if rule == nil {
		return errors.New("rule is nil")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rule update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := nowStamp()
	if rule.IsDefault {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE organization_rules SET is_default = 0, updated_at = ? WHERE content_type = ? AND is_default = 1 AND id != ?`,
			timestamp,
			rule.ContentType,
			rule.ID,
		); err != nil {
			return fmt.Errorf("clear prior defaults: %w", err)
		}
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE organization_rules
         SET content_type = ?, platform = ?, folder_template = ?, file_template = ?,
             season_folder_template = ?, base_path = ?, is_default = ?, is_active = ?,
             updated_at = ?
         WHERE id = ?`,
		rule.ContentType,
		nullableString(rule.Platform),
		rule.FolderTemplate,
		rule.FileTemplate,
		nullableString(rule.SeasonFolderTemplate),
		nullableString(rule.BasePath),
		boolToInt(rule.IsDefault),
		boolToInt(rule.IsActive),
		timestamp,
		rule.ID,
	); err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rule update: %w", err)
	}
	return nil
}

// GetRule fetches a rule by identifier.
func (s *Store) GetRule(ctx context.Context, id int64) (*Rule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM organization_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes a rule by identifier.
func (s *Store) DeleteRule(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM organization_rules WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListRules returns all rules ordered by content type and creation time.
func (s *Store) ListRules(ctx context.Context) ([]*Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM organization_rules ORDER BY content_type, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ActiveRuleFor returns the preferred active rule for a content type. Games
// first look for a platform-scoped rule; all types fall back to the active
// rule with no platform scope. Defaults win ties, then most recently created.
func (s *Store) ActiveRuleFor(ctx context.Context, contentType media.ContentType, platform string) (*Rule, error) {
	if contentType == media.Game && platform != "" {
		rule, err := s.queryRule(
			ctx,
			`SELECT `+ruleColumns+` FROM organization_rules
             WHERE content_type = ? AND is_active = 1 AND platform = ? COLLATE NOCASE
             ORDER BY is_default DESC, created_at DESC, id DESC LIMIT 1`,
			contentType, platform,
		)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			return rule, nil
		}
	}
	return s.queryRule(
		ctx,
		`SELECT `+ruleColumns+` FROM organization_rules
         WHERE content_type = ? AND is_active = 1 AND (platform IS NULL OR platform = '')
         ORDER BY is_default DESC, created_at DESC, id DESC LIMIT 1`,
		contentType,
	)
}

func (s *Store) queryRule(ctx context.Context, query string, args ...any) (*Rule, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rule: %w", err)
	}
	return rule, nil
}

const ruleColumns = "id, content_type, platform, folder_template, file_template, season_folder_template, base_path, is_default, is_active, created_at, updated_at"

func scanRule(scanner interface{ Scan(dest ...any) error }) (*Rule, error) {
	var (
		id             int64
		contentType    string
		platform       sql.NullString
		folderTemplate string
		fileTemplate   string
		seasonTemplate sql.NullString
		basePath       sql.NullString
		isDefault      int
		isActive       int
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&id,
		&contentType,
		&platform,
		&folderTemplate,
		&fileTemplate,
		&seasonTemplate,
		&basePath,
		&isDefault,
		&isActive,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rule := &Rule{
		ID:                   id,
		ContentType:          media.ContentType(contentType),
		Platform:             platform.String,
		FolderTemplate:       folderTemplate,
		FileTemplate:         fileTemplate,
		SeasonFolderTemplate: seasonTemplate.String,
		BasePath:             basePath.String,
		IsDefault:            isDefault != 0,
		IsActive:             isActive != 0,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		rule.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		rule.UpdatedAt = updated
	}
	return rule, nil
}
