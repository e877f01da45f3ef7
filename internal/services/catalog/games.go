package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GamesClient queries a RAWG-compatible API for game metadata.
type GamesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ GameCatalog = (*GamesClient)(nil)

// GamesOption configures a GamesClient.
type GamesOption func(*GamesClient)

// WithGamesHTTPClient overrides the default HTTP client.
func WithGamesHTTPClient(client *http.Client) GamesOption {
	return func(c *GamesClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewGames creates a game catalog client.
func NewGames(apiKey, baseURL string, opts ...GamesOption) (*GamesClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("games api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("games base url required")
	}
	client := &GamesClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type gameResult struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Released  string `json:"released"`
	Platforms []struct {
		Platform struct {
			Name string `json:"name"`
		} `json:"platform"`
	} `json:"platforms"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type gamesResponse struct {
	Results []gameResult `json:"results"`
}

// SearchGames returns the top game match for a title. When a platform hint is
// supplied, the first result whose platform list contains it wins; otherwise
// the top result does.
func (c *GamesClient) SearchGames(ctx context.Context, title, platform string) (*Match, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, false, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/games")
	if err != nil {
		return nil, false, fmt.Errorf("parse games url: %w", err)
	}
	params := url.Values{}
	params.Set("search", title)
	params.Set("key", c.apiKey)
	params.Set("page_size", "10")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, false, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("games search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload gamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode games response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, false, nil
	}

	pick := payload.Results[0]
	if hint := strings.TrimSpace(platform); hint != "" {
		for _, candidate := range payload.Results {
			if matchesPlatform(candidate, hint) {
				pick = candidate
				break
			}
		}
	}
	return toGameMatch(pick, platform), true, nil
}

// GameDetails fetches a game by its catalog identifier. An unknown ID is a
// miss, not an error.
func (c *GamesClient) GameDetails(ctx context.Context, id int64) (*Match, bool, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/games/%d", c.baseURL, id))
	if err != nil {
		return nil, false, fmt.Errorf("parse games url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, false, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("games details returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var detail gameResult
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, false, fmt.Errorf("decode games response: %w", err)
	}
	return toGameMatch(detail, ""), true, nil
}

func matchesPlatform(result gameResult, hint string) bool {
	for _, entry := range result.Platforms {
		name := entry.Platform.Name
		if strings.EqualFold(name, hint) || strings.Contains(strings.ToLower(name), strings.ToLower(hint)) {
			return true
		}
	}
	return false
}

func toGameMatch(result gameResult, platformHint string) *Match {
	match := &Match{
		Title:      result.Name,
		Year:       yearOf(result.Released),
		ExternalID: result.ID,
		Platform:   strings.TrimSpace(platformHint),
	}
	if match.Platform == "" && len(result.Platforms) > 0 {
		match.Platform = result.Platforms[0].Platform.Name
	}
	if len(result.Genres) > 0 {
		match.Genre = result.Genres[0].Name
	}
	return match
}
