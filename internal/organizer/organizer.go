// Package organizer performs the physical placement of media files: it asks
// the rule engine for a destination, moves the file there, and records the
// placement so the scanner can reconcile disk contents later.
package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"context"
	"log/slog"

	"shelfarr/internal/config"
	"shelfarr/internal/logging"
	"shelfarr/internal/media"
	"shelfarr/internal/rules"
	"shelfarr/internal/services"
	"shelfarr/internal/store"
)

// Organizer moves files into the library and records the placements.
type Organizer struct {
	cfg    *config.Config
	store  *store.Store
	rules  *rules.Engine
	logger *slog.Logger
}

// New constructs an organizer.
func New(cfg *config.Config, s *store.Store, engine *rules.Engine, logger *slog.Logger) *Organizer {
	return &Organizer{
		cfg:    cfg,
		store:  s,
		rules:  engine,
		logger: logging.NewComponentLogger(logger, "organizer"),
	}
}

// Result describes one successful placement.
type Result struct {
	File      *store.OrganizedFile
	FinalPath string
	Replaced  bool
}

// Organize places a single file according to the active rule for its content
// type. The source path may be relative; it resolves against the configured
// application root. A nil requestID records the placement as unrequested.
func (o *Organizer) Organize(ctx context.Context, mc media.Context, requestID *int64) (*Result, error) {
	logger := logging.WithContext(ctx, o.logger)

	source, info, err := o.resolveSource(mc.SourcePath)
	if err != nil {
		return nil, err
	}
	if mc.FileName == "" {
		mc.FileName = filepath.Base(source)
	}
	if media.IsArchive(mc.FileName) {
		return nil, services.Wrap(
			services.ErrUnsupported,
			"organizer",
			"inspect source",
			fmt.Sprintf("archive %q requires extraction before it can be organized", mc.FileName),
			nil,
		)
	}

	plan, err := o.rules.GeneratePath(ctx, mc)
	if err != nil {
		return nil, err
	}

	settings, err := o.store.Settings(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "organizer", "load settings", "failed to load organization settings", err)
	}

	if alreadyInPlace(source, plan.FullPath, info) {
		record, err := o.recordPlacement(ctx, source, plan, info.Size(), mc.Descriptor, requestID)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "organizer", "record placement", "file already in place but placement record failed", err)
		}
		logger.Info("file already in place",
			logging.String(logging.FieldContentType, string(mc.Type)),
			logging.String(logging.FieldTitle, mc.Descriptor.Title),
			logging.String(logging.FieldPath, plan.FullPath),
		)
		return &Result{File: record, FinalPath: plan.FullPath}, nil
	}

	replaced := false
	if _, statErr := os.Stat(plan.FullPath); statErr == nil {
		if !settings.ReplaceExisting {
			return nil, services.Wrap(
				services.ErrCollision,
				"organizer",
				"check destination",
				fmt.Sprintf("destination %q already exists", plan.FullPath),
				nil,
			)
		}
		if err := os.Remove(plan.FullPath); err != nil {
			return nil, services.Wrap(services.ErrTransient, "organizer", "replace destination", "failed to remove existing destination file", err)
		}
		replaced = true
	} else if !os.IsNotExist(statErr) {
		return nil, services.Wrap(services.ErrTransient, "organizer", "check destination", "failed to stat destination", statErr)
	}

	if err := os.MkdirAll(plan.FolderPath, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "organizer", "ensure destination folder", "failed to create destination folder", err)
	}
	if err := moveFile(logger, source, plan.FullPath); err != nil {
		return nil, err
	}

	record, err := o.recordPlacement(ctx, source, plan, info.Size(), mc.Descriptor, requestID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "organizer", "record placement", "file moved but placement record failed", err)
	}
	d := mc.Descriptor

	logger.Info("organized file",
		logging.String(logging.FieldContentType, string(mc.Type)),
		logging.String(logging.FieldTitle, d.Title),
		logging.String(logging.FieldPath, plan.FullPath),
		logging.Int64("size_bytes", info.Size()),
		logging.Bool("replaced", replaced),
	)
	return &Result{File: record, FinalPath: plan.FullPath, Replaced: replaced}, nil
}

// recordPlacement persists the placement. A file previously discovered in
// place by reverse indexing already has a row keyed on its current location;
// that row is updated rather than duplicated.
func (o *Organizer) recordPlacement(ctx context.Context, source string, plan *rules.Plan, size int64, d media.Descriptor, requestID *int64) (*store.OrganizedFile, error) {
	existing, err := o.store.FindOrganizedByPath(ctx, source)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.OriginalPath = source
		existing.OrganizedPath = plan.FullPath
		existing.FileName = plan.FileName
		existing.SizeBytes = size
		existing.Title = d.Title
		existing.Year = d.Year
		existing.Season = d.Season
		existing.Episode = d.Episode
		existing.Platform = d.Platform
		existing.Quality = d.Quality
		existing.Format = d.Format
		existing.Edition = d.Edition
		if requestID != nil {
			existing.RequestID = requestID
		}
		existing.ReverseIndexed = false
		if err := o.store.UpdateOrganizedFile(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	return o.store.InsertOrganizedFile(ctx, &store.OrganizedFile{
		OriginalPath:  source,
		OrganizedPath: plan.FullPath,
		FileName:      plan.FileName,
		SizeBytes:     size,
		Title:         d.Title,
		Year:          d.Year,
		Season:        d.Season,
		Episode:       d.Episode,
		Platform:      d.Platform,
		Quality:       d.Quality,
		Format:        d.Format,
		Edition:       d.Edition,
		RequestID:     requestID,
	})
}

// FileFailure records one file that could not be placed during a directory
// organize; the remaining files still proceed.
type FileFailure struct {
	Path string
	Err  error
}

// DirectoryResult aggregates the outcome of organizing a folder.
type DirectoryResult struct {
	Organized []*Result
	Failures  []FileFailure
}

// OrganizeDirectory walks a folder, organizes every media file in it, and
// aggregates per-file failures instead of aborting on the first one. The
// descriptor in mc applies to every file; per-file season/episode fields are
// re-derived from each file name for TV content.
func (o *Organizer) OrganizeDirectory(ctx context.Context, dir string, mc media.Context, requestID *int64) (*DirectoryResult, error) {
	logger := logging.WithContext(ctx, o.logger)

	resolved := o.resolvePath(dir)
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "organizer", "open folder", fmt.Sprintf("folder %q does not exist", dir), err)
		}
		return nil, services.Wrap(services.ErrTransient, "organizer", "open folder", "failed to stat folder", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrUnsupported, "organizer", "open folder", fmt.Sprintf("%q is not a directory", dir), nil)
	}

	files, err := collectMediaFiles(resolved)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "organizer", "walk folder", "failed to enumerate folder contents", err)
	}

	result := &DirectoryResult{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fileCtx := mc
		fileCtx.SourcePath = path
		fileCtx.FileName = filepath.Base(path)
		if mc.Type == media.TVShow {
			if season := rules.SeasonFromFolderName(filepath.Base(filepath.Dir(path))); season > 0 {
				fileCtx.Descriptor.Season = season
			}
			derived := rules.ExtractFromFileName(fileCtx.FileName, media.TVShow)
			if derived.Season > 0 {
				fileCtx.Descriptor.Season = derived.Season
			}
			if derived.Episode > 0 {
				fileCtx.Descriptor.Episode = derived.Episode
			}
		}
		placed, err := o.Organize(ctx, fileCtx, requestID)
		if err != nil {
			logger.Warn("failed to organize file",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: err})
			continue
		}
		result.Organized = append(result.Organized, placed)
	}
	return result, nil
}

// alreadyInPlace reports whether the planned destination is the source file
// itself. Library-resident folders reach the organizer through queue
// processing; treating them as collisions (or worse, removing the
// "destination" before the rename) would act on the user's only copy.
func alreadyInPlace(source, target string, sourceInfo os.FileInfo) bool {
	if filepath.Clean(source) == filepath.Clean(target) {
		return true
	}
	targetInfo, err := os.Stat(target)
	if err != nil {
		return false
	}
	return os.SameFile(sourceInfo, targetInfo)
}

// resolveSource resolves and validates a single source file. Missing sources
// fail fast so queue processing can surface them without moving anything.
func (o *Organizer) resolveSource(sourcePath string) (string, os.FileInfo, error) {
	source := o.resolvePath(sourcePath)
	if source == "" {
		return "", nil, services.Wrap(services.ErrNotFound, "organizer", "resolve source", "source path is empty", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, services.Wrap(services.ErrNotFound, "organizer", "resolve source", fmt.Sprintf("source %q does not exist", source), err)
		}
		return "", nil, services.Wrap(services.ErrTransient, "organizer", "resolve source", "failed to stat source", err)
	}
	if info.IsDir() {
		return "", nil, services.Wrap(services.ErrUnsupported, "organizer", "resolve source", fmt.Sprintf("source %q is a directory", source), nil)
	}
	return source, info, nil
}

func (o *Organizer) resolvePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	root := ""
	if o.cfg != nil {
		root = strings.TrimSpace(o.cfg.Paths.AppRoot)
	}
	if root == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return filepath.Clean(path)
		}
		return abs
	}
	return filepath.Join(root, path)
}

// collectMediaFiles walks dir iteratively and returns every media file found,
// in deterministic order.
func collectMediaFiles(dir string) ([]string, error) {
	var files []string
	work := []string{dir}
	for len(work) > 0 {
		current := work[0]
		work = work[1:]
		entries, err := os.ReadDir(current)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(current, name)
			if entry.IsDir() {
				work = append(work, full)
				continue
			}
			if media.IsMediaFile(name) {
				files = append(files, full)
			}
		}
	}
	return files, nil
}
