// Package racingapi is the client for the upstream racing data API. It is
// stateless: every method performs one authenticated GET and returns the
// raw JSON document, whose top-level key names the collection ("courses",
// "racecards", "results", "odds").
package racingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Tier selects the subscription level of racecard/horse endpoints.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPro      Tier = "pro"
)

// Client talks to the racing API over Basic Auth.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      *zap.Logger
}

// New creates a Client. The timeout bounds every request; upstream calls
// gate interactive query answering so it should stay in the seconds range.
func New(baseURL, username, password string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.SetBasicAuth(c.username, c.password)

	c.log.Debug("racing api request", zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s returned malformed JSON", path)
	}
	return json.RawMessage(body), nil
}

// Courses returns all racecourses.
func (c *Client) Courses(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "courses", nil)
}

// Racecards returns today's racecards at the given tier.
func (c *Client) Racecards(ctx context.Context, tier Tier) (json.RawMessage, error) {
	return c.get(ctx, "racecards/"+string(tier), nil)
}

// TodayResults returns results for today's completed races.
func (c *Client) TodayResults(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "results/today", nil)
}

// Odds returns odds for a race, or for one horse when horseID is non-empty.
func (c *Client) Odds(ctx context.Context, raceID, horseID string) (json.RawMessage, error) {
	path := "odds/" + raceID
	if horseID != "" {
		path += "/" + horseID
	}
	return c.get(ctx, path, nil)
}

// Horse returns detail for one horse at the given tier.
func (c *Client) Horse(ctx context.Context, horseID string, tier Tier) (json.RawMessage, error) {
	return c.get(ctx, "horses/"+horseID+"/"+string(tier), nil)
}

// HorseResults returns the race results of one horse.
func (c *Client) HorseResults(ctx context.Context, horseID string) (json.RawMessage, error) {
	return c.get(ctx, "horses/"+horseID+"/results", nil)
}

// JockeyResults returns the race results of one jockey.
func (c *Client) JockeyResults(ctx context.Context, jockeyID string) (json.RawMessage, error) {
	return c.get(ctx, "jockeys/"+jockeyID+"/results", nil)
}

// TrainerResults returns the race results of one trainer.
func (c *Client) TrainerResults(ctx context.Context, trainerID string) (json.RawMessage, error) {
	return c.get(ctx, "trainers/"+trainerID+"/results", nil)
}

// Analysis returns an analysis dimension (courses, distances, classes,
// jockeys, trainers, owners) for an entity such as a horse, sire or dam.
func (c *Client) Analysis(ctx context.Context, entity, id, dimension string) (json.RawMessage, error) {
	return c.get(ctx, entity+"/"+id+"/analysis/"+dimension, nil)
}

// Search queries an entity index (horses, jockeys, trainers, owners).
func (c *Client) Search(ctx context.Context, entity, query string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.get(ctx, entity+"/search", params)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
