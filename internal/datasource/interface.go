package datasource

import (
	"context"
	"errors"
	"time"
)

// OddsSource defines the interface for fetching player-prop odds from a feed
type OddsSource interface {
	// FetchEvents lists upcoming events for the configured sport
	FetchEvents(ctx context.Context) ([]Event, error)

	// FetchEventOdds retrieves bookmaker prop markets for one event
	FetchEventOdds(ctx context.Context, eventID string) (*Event, error)

	// Name returns the name of the data source
	Name() string
}

// Event is an odds-feed event. Bookmakers is empty on the event listing and
// populated by the per-event odds endpoint.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers,omitempty"`
}

// Bookmaker is one book's set of markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market is one prop market (e.g. player_points) at a bookmaker
type Market struct {
	Key        string     `json:"key"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
	Outcomes   []Outcome  `json:"outcomes"`
}

// Outcome is a single priced side. For player props Name is Over/Under and
// Description carries the player.
type Outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error to errors.Is
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
