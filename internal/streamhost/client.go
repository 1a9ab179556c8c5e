// Package streamhost is a client for the external video-hosting API the
// catalog syncs from.
package streamhost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client is a client for the video host's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Config holds the configuration for the streamhost client.
type Config struct {
	BaseURL string        // e.g., "https://streamhost.example.com/api/v1"
	Token   string        // API token sent on every request
	Timeout time.Duration // Request timeout (default: 30 seconds)
}

// NewClient creates a new streamhost client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		token:   config.Token,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Video is one catalog record as returned by the host.
type Video struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Poster       string `json:"poster"`
	Preview      string `json:"preview"`
	AssetBaseURL string `json:"asset_base_url"`
	Created      string `json:"created"` // RFC3339
	Duration     int    `json:"duration"`
	Resolution   string `json:"resolution"`
	Codec        string `json:"codec"`
	Plays        int64  `json:"plays"`
	Downloads    int64  `json:"downloads"`
}

// Subtitle is one caption file attached to a video.
type Subtitle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Language string `json:"language"`
}

// StatusError is returned when the host answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("streamhost returned status %d: %s", e.StatusCode, e.Body)
}

// ListVideos retrieves one page of the full catalog. Pages are 1-based; a
// page shorter than perPage marks the end of the catalog.
func (c *Client) ListVideos(ctx context.Context, page, perPage int) ([]Video, error) {
	var result struct {
		Data []Video `json:"data"`
	}
	path := fmt.Sprintf("/videos?page=%d&per_page=%d", page, perPage)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// LatestVideos retrieves the newest count records.
func (c *Client) LatestVideos(ctx context.Context, count int) ([]Video, error) {
	var result struct {
		Data []Video `json:"data"`
	}
	if err := c.get(ctx, "/videos/latest?count="+strconv.Itoa(count), &result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// ListSubtitles retrieves the subtitle files of one video.
func (c *Client) ListSubtitles(ctx context.Context, videoID string) ([]Subtitle, error) {
	var result struct {
		Data []Subtitle `json:"data"`
	}
	if err := c.get(ctx, "/videos/"+videoID+"/subtitles", &result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// ParseCreated parses the host's RFC3339 creation timestamp.
func (v Video) ParseCreated() (time.Time, error) {
	return time.Parse(time.RFC3339, v.Created)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request to streamhost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse streamhost response: %w", err)
	}

	return nil
}
