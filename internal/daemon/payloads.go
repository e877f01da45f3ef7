package daemon

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"shelfarr/internal/media"
	"shelfarr/internal/store"
)

// processPayload carries the user-confirmed selections for resolving a queue
// item. Every field is optional; non-zero values overlay the detected ones.
type processPayload struct {
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Platform string `json:"platform"`
	Quality  string `json:"quality"`
	Format   string `json:"format"`
	Edition  string `json:"edition"`
}

func (p processPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(0, 200)),
		validation.Field(&p.Year, validation.Min(0), validation.Max(time.Now().Year()+1)),
		validation.Field(&p.Season, validation.Min(0), validation.Max(999)),
		validation.Field(&p.Episode, validation.Min(0), validation.Max(9999)),
		validation.Field(&p.Platform, validation.Length(0, 64)),
		validation.Field(&p.Quality, validation.Length(0, 32)),
		validation.Field(&p.Format, validation.Length(0, 32)),
		validation.Field(&p.Edition, validation.Length(0, 100)),
	)
}

func (p processPayload) descriptor() media.Descriptor {
	return media.Descriptor{
		Title:    p.Title,
		Year:     p.Year,
		Season:   p.Season,
		Episode:  p.Episode,
		Platform: p.Platform,
		Quality:  p.Quality,
		Format:   p.Format,
		Edition:  p.Edition,
	}
}

// settingsPayload replaces the persisted organization settings wholesale.
type settingsPayload struct {
	LibraryDir      string `json:"library_dir"`
	MoviesDir       string `json:"movies_dir"`
	TVDir           string `json:"tv_dir"`
	GamesDir        string `json:"games_dir"`
	AutoOrganize    bool   `json:"auto_organize"`
	ReplaceExisting bool   `json:"replace_existing"`
	ExtractArchives bool   `json:"extract_archives"`
	DeleteArchives  bool   `json:"delete_archives"`
	ReverseIndexing bool   `json:"reverse_indexing"`
	ScanInterval    string `json:"scan_interval"`
}

func (p settingsPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.LibraryDir, validation.Required),
		validation.Field(&p.ScanInterval, validation.Required, validation.By(durationRule)),
	)
}

func durationRule(value any) error {
	raw, _ := value.(string)
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("must be a duration such as 1h or 30m")
	}
	if parsed < minScanInterval {
		return fmt.Errorf("must be at least %s", minScanInterval)
	}
	return nil
}

func (p settingsPayload) apply(settings *store.Settings) {
	settings.LibraryDir = p.LibraryDir
	settings.MoviesDir = p.MoviesDir
	settings.TVDir = p.TVDir
	settings.GamesDir = p.GamesDir
	settings.AutoOrganize = p.AutoOrganize
	settings.ReplaceExisting = p.ReplaceExisting
	settings.ExtractArchives = p.ExtractArchives
	settings.DeleteArchives = p.DeleteArchives
	settings.ReverseIndexing = p.ReverseIndexing
	settings.ScanInterval = p.ScanInterval
}

// settingsView is the JSON shape returned for settings reads and writes.
type settingsView struct {
	LibraryDir      string `json:"library_dir"`
	MoviesDir       string `json:"movies_dir,omitempty"`
	TVDir           string `json:"tv_dir,omitempty"`
	GamesDir        string `json:"games_dir,omitempty"`
	AutoOrganize    bool   `json:"auto_organize"`
	ReplaceExisting bool   `json:"replace_existing"`
	ExtractArchives bool   `json:"extract_archives"`
	DeleteArchives  bool   `json:"delete_archives"`
	ReverseIndexing bool   `json:"reverse_indexing"`
	ScanInterval    string `json:"scan_interval"`
}

func toSettingsView(settings *store.Settings) settingsView {
	return settingsView{
		LibraryDir:      settings.LibraryDir,
		MoviesDir:       settings.MoviesDir,
		TVDir:           settings.TVDir,
		GamesDir:        settings.GamesDir,
		AutoOrganize:    settings.AutoOrganize,
		ReplaceExisting: settings.ReplaceExisting,
		ExtractArchives: settings.ExtractArchives,
		DeleteArchives:  settings.DeleteArchives,
		ReverseIndexing: settings.ReverseIndexing,
		ScanInterval:    settings.ScanInterval,
	}
}

// queueItemView is the JSON shape for queue listings.
type queueItemView struct {
	ID           int64             `json:"id"`
	FolderPath   string            `json:"folder_path"`
	ContentType  media.ContentType `json:"content_type"`
	Title        string            `json:"title,omitempty"`
	Year         int               `json:"year,omitempty"`
	Season       int               `json:"season,omitempty"`
	Episode      int               `json:"episode,omitempty"`
	Platform     string            `json:"platform,omitempty"`
	Status       store.QueueStatus `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toQueueItemView(item *store.QueueItem) queueItemView {
	return queueItemView{
		ID:           item.ID,
		FolderPath:   item.FolderPath,
		ContentType:  item.ContentType,
		Title:        item.Detected.Title,
		Year:         item.Detected.Year,
		Season:       item.Detected.Season,
		Episode:      item.Detected.Episode,
		Platform:     item.Detected.Platform,
		Status:       item.Status,
		ErrorMessage: item.ErrorMessage,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// ruleView is the JSON shape for rule listings.
type ruleView struct {
	ID                   int64             `json:"id"`
	ContentType          media.ContentType `json:"content_type"`
	Platform             string            `json:"platform,omitempty"`
	FolderTemplate       string            `json:"folder_template"`
	FileTemplate         string            `json:"file_template"`
	SeasonFolderTemplate string            `json:"season_folder_template,omitempty"`
	BasePath             string            `json:"base_path,omitempty"`
	IsDefault            bool              `json:"is_default"`
	IsActive             bool              `json:"is_active"`
}

func toRuleView(rule *store.Rule) ruleView {
	return ruleView{
		ID:                   rule.ID,
		ContentType:          rule.ContentType,
		Platform:             rule.Platform,
		FolderTemplate:       rule.FolderTemplate,
		FileTemplate:         rule.FileTemplate,
		SeasonFolderTemplate: rule.SeasonFolderTemplate,
		BasePath:             rule.BasePath,
		IsDefault:            rule.IsDefault,
		IsActive:             rule.IsActive,
	}
}
