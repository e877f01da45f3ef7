package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TMDBClient queries a TMDB-compatible API for movie and TV metadata.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ MovieTVCatalog = (*TMDBClient)(nil)

// TMDBOption configures a TMDBClient.
type TMDBOption func(*TMDBClient)

// WithTMDBHTTPClient overrides the default HTTP client.
func WithTMDBHTTPClient(client *http.Client) TMDBOption {
	return func(c *TMDBClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewTMDB creates a TMDB catalog client.
func NewTMDB(apiKey, baseURL, language string, opts ...TMDBOption) (*TMDBClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &TMDBClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type tmdbResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

type tmdbResponse struct {
	Results []tmdbResult `json:"results"`
}

// SearchMovies returns the top movie match for a title, constrained to the
// release year when one is known.
func (c *TMDBClient) SearchMovies(ctx context.Context, title string, year int) (*Match, bool, error) {
	params := url.Values{}
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	payload, err := c.search(ctx, "/search/movie", title, params)
	if err != nil {
		return nil, false, err
	}
	if len(payload.Results) == 0 {
		return nil, false, nil
	}
	top := payload.Results[0]
	return &Match{
		Title:      top.Title,
		Year:       yearOf(top.ReleaseDate),
		ExternalID: top.ID,
	}, true, nil
}

// SearchTVShows returns the top TV match for a title.
func (c *TMDBClient) SearchTVShows(ctx context.Context, title string, year int) (*Match, bool, error) {
	params := url.Values{}
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}
	payload, err := c.search(ctx, "/search/tv", title, params)
	if err != nil {
		return nil, false, err
	}
	if len(payload.Results) == 0 {
		return nil, false, nil
	}
	top := payload.Results[0]
	return &Match{
		Title:      top.Name,
		Year:       yearOf(top.FirstAirDate),
		ExternalID: top.ID,
	}, true, nil
}

// MovieDetails fetches a movie by its TMDB identifier.
func (c *TMDBClient) MovieDetails(ctx context.Context, id int64) (*Match, bool, error) {
	detail, found, err := c.details(ctx, "/movie/"+strconv.FormatInt(id, 10))
	if err != nil || !found {
		return nil, false, err
	}
	return &Match{
		Title:      detail.Title,
		Year:       yearOf(detail.ReleaseDate),
		ExternalID: detail.ID,
		Genre:      firstGenre(detail.Genres),
	}, true, nil
}

// TVShowDetails fetches a TV show by its TMDB identifier.
func (c *TMDBClient) TVShowDetails(ctx context.Context, id int64) (*Match, bool, error) {
	detail, found, err := c.details(ctx, "/tv/"+strconv.FormatInt(id, 10))
	if err != nil || !found {
		return nil, false, err
	}
	return &Match{
		Title:      detail.Name,
		Year:       yearOf(detail.FirstAirDate),
		ExternalID: detail.ID,
		Genre:      firstGenre(detail.Genres),
	}, true, nil
}

type tmdbDetail struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	Genres       []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// details fetches a single record; an unknown ID is a miss, not an error.
func (c *TMDBClient) details(ctx context.Context, path string) (*tmdbDetail, bool, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, false, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
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
		return nil, false, fmt.Errorf("tmdb details returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var detail tmdbDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, false, fmt.Errorf("decode tmdb response: %w", err)
	}
	return &detail, true, nil
}

func firstGenre(genres []struct {
	Name string `json:"name"`
}) string {
	if len(genres) == 0 {
		return ""
	}
	return genres[0].Name
}

func (c *TMDBClient) search(ctx context.Context, path, query string, extra url.Values) (*tmdbResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	for key, values := range extra {
		for _, value := range values {
			params.Add(key, value)
		}
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload tmdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}
	return &payload, nil
}

// yearOf extracts the year from a TMDB date string ("2010-07-16").
func yearOf(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
