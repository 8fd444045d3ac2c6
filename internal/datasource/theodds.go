package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	theOddsSourceName = "theodds"

	// DefaultOddsAPIBaseURL is the public Odds API host
	DefaultOddsAPIBaseURL = "https://api.the-odds-api.com"
)

// OddsAPIConfig configures the Odds API client
type OddsAPIConfig struct {
	BaseURL    string
	APIKey     string
	Sport      string
	Regions    string
	Markets    []string
	Bookmakers []string
}

// OddsAPIClient implements OddsSource for The Odds API v4
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        OddsAPIConfig
	logger     *logrus.Entry
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, cfg OddsAPIConfig, logger *logrus.Logger) (*OddsAPIClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("odds API key is required")
	}
	if cfg.Sport == "" {
		cfg.Sport = "basketball_nba"
	}
	if cfg.Regions == "" {
		cfg.Regions = "us"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOddsAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if len(cfg.Markets) == 0 {
		return nil, fmt.Errorf("at least one market is required")
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &OddsAPIClient{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger.WithField("source", theOddsSourceName),
	}, nil
}

// Name returns the data source name
func (c *OddsAPIClient) Name() string {
	return theOddsSourceName
}

// FetchEvents lists the sport's upcoming events
func (c *OddsAPIClient) FetchEvents(ctx context.Context) ([]Event, error) {
	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("dateFormat", "iso")

	endpoint := fmt.Sprintf("%s/v4/sports/%s/events?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.Sport), params.Encode())

	var events []Event
	if err := c.getJSON(ctx, endpoint, "failed to fetch events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchEventOdds retrieves the configured prop markets for one event
func (c *OddsAPIClient) FetchEventOdds(ctx context.Context, eventID string) (*Event, error) {
	if eventID == "" {
		return nil, NewDataSourceError(theOddsSourceName, ErrCodeInvalidData, "event id is required", ErrInvalidData)
	}

	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("regions", c.cfg.Regions)
	params.Set("markets", strings.Join(c.cfg.Markets, ","))
	params.Set("dateFormat", "iso")
	params.Set("oddsFormat", "american")
	if len(c.cfg.Bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(c.cfg.Bookmakers, ","))
	}

	endpoint := fmt.Sprintf("%s/v4/sports/%s/events/%s/odds?%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Sport), url.PathEscape(eventID), params.Encode())

	var event Event
	if err := c.getJSON(ctx, endpoint, "failed to fetch event odds", &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *OddsAPIClient) getJSON(ctx context.Context, endpoint, failMsg string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewDataSourceError(theOddsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(theOddsSourceName, ErrCodeNetworkError, failMsg, err)
	}
	defer resp.Body.Close()

	if remaining := resp.Header.Get("x-requests-remaining"); remaining != "" {
		c.logger.WithField("requests_remaining", remaining).Debug("Odds API quota")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return NewDataSourceError(theOddsSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case http.StatusNotFound:
		return NewDataSourceError(theOddsSourceName, ErrCodeNotFound, "resource not found", ErrNotFound)
	case http.StatusTooManyRequests:
		return NewDataSourceError(theOddsSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(theOddsSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(theOddsSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}
