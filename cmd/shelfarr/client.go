package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"shelfarr/internal/config"
	"shelfarr/internal/daemon"
	"shelfarr/internal/scanner"
)

// apiClient talks to a running shelfarr daemon over its HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// queueItem mirrors the API's queue listing shape.
type queueItem struct {
	ID           int64     `json:"id"`
	FolderPath   string    `json:"folder_path"`
	ContentType  string    `json:"content_type"`
	Title        string    `json:"title"`
	Year         int       `json:"year"`
	Season       int       `json:"season"`
	Episode      int       `json:"episode"`
	Platform     string    `json:"platform"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// apiSettings mirrors the API's settings shape.
type apiSettings struct {
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

// apiRule mirrors the API's rule listing shape.
type apiRule struct {
	ID                   int64  `json:"id"`
	ContentType          string `json:"content_type"`
	Platform             string `json:"platform"`
	FolderTemplate       string `json:"folder_template"`
	FileTemplate         string `json:"file_template"`
	SeasonFolderTemplate string `json:"season_folder_template"`
	BasePath             string `json:"base_path"`
	IsDefault            bool   `json:"is_default"`
	IsActive             bool   `json:"is_active"`
}

// dialAPI probes the configured bind address and returns a client only when
// a daemon responds there.
func dialAPI(cfg *config.Config) *apiClient {
	client := &apiClient{
		baseURL: baseURLFor(cfg.API.Bind),
		token:   cfg.API.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	probe := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, client.baseURL+"/api/status", nil)
	if err != nil {
		return nil
	}
	client.authorize(req)
	resp, err := probe.Do(req)
	if err != nil {
		return nil
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	return client
}

// baseURLFor maps a listen address to a dialable URL; wildcard hosts dial
// loopback.
func baseURLFor(bind string) string {
	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return "http://" + bind
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, port))
}

func (c *apiClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *apiClient) do(method, path string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request failed: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(payload, &failure) == nil && failure.Error != "" {
			return fmt.Errorf("%s", failure.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if target == nil {
		return nil
	}
	return json.Unmarshal(payload, target)
}

func (c *apiClient) status() (*daemon.Status, error) {
	var status daemon.Status
	if err := c.do(http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *apiClient) scan() (*scanner.Summary, error) {
	var summary scanner.Summary
	if err := c.do(http.MethodPost, "/api/scan", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *apiClient) queueList(status string) ([]queueItem, error) {
	path := "/api/queue"
	if status != "" {
		path += "?status=" + status
	}
	var listing struct {
		Items []queueItem `json:"items"`
	}
	if err := c.do(http.MethodGet, path, nil, &listing); err != nil {
		return nil, err
	}
	return listing.Items, nil
}

func (c *apiClient) queueProcess(id int64, selections map[string]any) (*queueItem, error) {
	var item queueItem
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/queue/%d/process", id), selections, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *apiClient) queueSkip(id int64) (*queueItem, error) {
	var item queueItem
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/queue/%d/skip", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *apiClient) queueDelete(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/queue/%d", id), nil, nil)
}

func (c *apiClient) settings() (*apiSettings, error) {
	var settings apiSettings
	if err := c.do(http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *apiClient) rules() ([]apiRule, error) {
	var listing struct {
		Rules []apiRule `json:"rules"`
	}
	if err := c.do(http.MethodGet, "/api/rules", nil, &listing); err != nil {
		return nil, err
	}
	return listing.Rules, nil
}
