// Package rules owns naming templates and base-path resolution: it turns a
// content descriptor into canonical on-disk paths and extracts a best-guess
// descriptor from raw file names.
package rules

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"shelfarr/internal/logging"
	"shelfarr/internal/media"
	"shelfarr/internal/services"
	"shelfarr/internal/store"
)

// Engine resolves rules and generates organized paths.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// NewEngine constructs the rule engine.
func NewEngine(s *store.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  s,
		logger: logging.NewComponentLogger(logger, "rules"),
	}
}

// Plan is the result of path generation for one file.
type Plan struct {
	FolderPath string
	FileName   string
	FullPath   string
}

// RuleFor returns the active rule for a content type, preferring a
// platform-scoped rule for games and creating a persisted default when no
// rule exists.
func (e *Engine) RuleFor(ctx context.Context, contentType media.ContentType, platform string) (*store.Rule, error) {
	rule, err := e.store.ActiveRuleFor(ctx, contentType, platform)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "rules", "lookup rule", "failed to query organization rules", err)
	}
	if rule != nil {
		return rule, nil
	}

	created, err := e.store.CreateRule(ctx, defaultRule(contentType))
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "rules", "create default rule", "failed to persist default organization rule", err)
	}
	e.logger.Info("created default organization rule",
		logging.String(logging.FieldContentType, string(contentType)),
		logging.Int64("rule_id", created.ID),
	)
	return created, nil
}

func defaultRule(contentType media.ContentType) *store.Rule {
	rule := &store.Rule{
		ContentType: contentType,
		IsDefault:   true,
		IsActive:    true,
	}
	switch contentType {
	case media.Movie:
		rule.FolderTemplate = "{title} ({year})"
		rule.FileTemplate = "{title} ({year})"
	case media.TVShow:
		rule.FolderTemplate = "{title}"
		rule.SeasonFolderTemplate = "Season {seasonNumber}"
		rule.FileTemplate = "{title} - S{seasonNumber}E{episodeNumber}"
	case media.Game:
		rule.FolderTemplate = "{title}"
		rule.FileTemplate = "{title}"
	default:
		rule.FolderTemplate = "{title}"
		rule.FileTemplate = "{filename}"
	}
	return rule
}

// GeneratePath resolves the base path, renders the folder and file templates,
// sanitizes both, and re-appends the original extension. Generating a path
// twice from the same context and rule yields the same string.
func (e *Engine) GeneratePath(ctx context.Context, mc media.Context) (*Plan, error) {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "rules", "load settings", "failed to load organization settings", err)
	}
	rule, err := e.RuleFor(ctx, mc.Type, mc.Descriptor.Platform)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSpace(rule.BasePath)
	if base == "" {
		base = settings.DirFor(mc.Type)
	}
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, "rules", "resolve base path", fmt.Sprintf("no library path configured for %s", mc.Type), nil)
	}

	folder := Sanitize(render(rule.FolderTemplate, mc))
	if folder == "" {
		folder = Sanitize(mc.Descriptor.Title)
	}

	segments := []string{base, folder}
	if mc.Type == media.TVShow && mc.Descriptor.Season > 0 {
		seasonTemplate := rule.SeasonFolderTemplate
		if strings.TrimSpace(seasonTemplate) == "" {
			seasonTemplate = "Season {seasonNumber}"
		}
		segments = append(segments, Sanitize(render(seasonTemplate, mc)))
	}

	fileName := Sanitize(render(rule.FileTemplate, mc))
	if fileName == "" {
		fileName = Sanitize(strings.TrimSuffix(mc.FileName, filepath.Ext(mc.FileName)))
	}
	fileName += strings.ToLower(filepath.Ext(mc.FileName))

	folderPath := filepath.Join(segments...)
	return &Plan{
		FolderPath: folderPath,
		FileName:   fileName,
		FullPath:   filepath.Join(folderPath, fileName),
	}, nil
}
