// Package swapi fetches the film catalogue from the Star Wars API
// (https://www.swapi.tech).
package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	"github.com/dmitrijs2005/holocron/internal/server/models"
)

// ErrBadResponse is returned when the API answers but not with "ok".
var ErrBadResponse = errors.New("swapi returned an error response")

// newBackoff is a seam for tests.
var newBackoff = func() retry.Backoff {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(2*time.Second, b)
	return retry.WithMaxRetries(3, b)
}

type filmProperties struct {
	Title        string    `json:"title"`
	EpisodeID    int       `json:"episode_id"`
	OpeningCrawl string    `json:"opening_crawl"`
	Director     string    `json:"director"`
	Producer     string    `json:"producer"`
	ReleaseDate  string    `json:"release_date"`
	Characters   []string  `json:"characters"`
	Planets      []string  `json:"planets"`
	Starships    []string  `json:"starships"`
	Vehicles     []string  `json:"vehicles"`
	Species      []string  `json:"species"`
	URL          string    `json:"url"`
	Created      time.Time `json:"created"`
	Edited       time.Time `json:"edited"`
}

type filmsResponse struct {
	Message string `json:"message"`
	Result  []struct {
		UID        string         `json:"uid"`
		Properties filmProperties `json:"properties"`
	} `json:"result"`
}

func (p *filmProperties) toModel() *models.Film {
	return &models.Film{
		Title:        p.Title,
		EpisodeID:    p.EpisodeID,
		OpeningCrawl: p.OpeningCrawl,
		Director:     p.Director,
		Producer:     p.Producer,
		ReleaseDate:  p.ReleaseDate,
		Characters:   p.Characters,
		Planets:      p.Planets,
		Starships:    p.Starships,
		Vehicles:     p.Vehicles,
		Species:      p.Species,
		URL:          p.URL,
		Created:      p.Created,
		Edited:       p.Edited,
	}
}

// Client reads films from the API. Transport failures, 429 and 5xx answers
// are retried with exponential backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

func NewClient(cfg *config.Config, httpClient *http.Client, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.SwapiURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("module", "swapi"),
	}
}

// Films returns every film listed under {base}/films.
func (c *Client) Films(ctx context.Context) ([]*models.Film, error) {
	c.logger.Info(ctx, "fetching films", "url", c.baseURL+"/films")

	body, err := retry.DoValue(ctx, newBackoff(), func(ctx context.Context) (*filmsResponse, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("swapi: %w", err)
	}

	films := make([]*models.Film, 0, len(body.Result))
	for _, r := range body.Result {
		f := r.Properties.toModel()
		c.logger.Debug(ctx, "film fetched", "uid", r.UID, "title", f.Title, "episode", f.EpisodeID)
		films = append(films, f)
	}

	c.logger.Info(ctx, "films fetched", "count", len(films))
	return films, nil
}

func (c *Client) fetch(ctx context.Context) (*filmsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/films", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn(ctx, "request failed, will retry", "error", err)
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Warn(ctx, "upstream unavailable, will retry", "status", resp.StatusCode)
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	body := &filmsResponse{}
	if err := json.NewDecoder(resp.Body).Decode(body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Message != "ok" {
		return nil, ErrBadResponse
	}
	return body, nil
}
