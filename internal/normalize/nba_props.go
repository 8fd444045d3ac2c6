// Package normalize turns odds-feed payloads into canonical market quotes.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/prop-edge/internal/datasource"
	"github.com/yourusername/prop-edge/internal/models"
)

// StatForMarket maps Odds API prop market keys to stat codes
var StatForMarket = map[string]string{
	"player_points":                  "PTS",
	"player_rebounds":                "REB",
	"player_assists":                 "AST",
	"player_threes":                  "3PM",
	"player_points_rebounds_assists": "PRA",
}

// Stats counts what a normalization pass kept and dropped
type Stats struct {
	Events          int
	Outcomes        int
	Quotes          int
	UnknownMarkets  int
	DroppedOutcomes int
}

// SubjectID derives a stable subject id from a player name
func SubjectID(player string) string {
	fields := strings.Fields(strings.ToLower(player))
	for i, f := range fields {
		fields[i] = strings.Trim(f, ".,'")
	}
	return strings.Join(fields, "-")
}

// NBAProps flattens events into one quote per Over/Under outcome. Unknown
// markets are ignored and incomplete outcomes are dropped. The quote time is
// the market update time, then the bookmaker update time, then fetchedAt.
func NBAProps(events []datasource.Event, fetchedAt time.Time) ([]models.MarketQuote, Stats) {
	var stats Stats
	var quotes []models.MarketQuote

	for _, event := range events {
		stats.Events++
		if event.ID == "" {
			continue
		}
		for _, book := range event.Bookmakers {
			source := book.Title
			if source == "" {
				source = book.Key
			}
			for _, market := range book.Markets {
				stat, ok := StatForMarket[market.Key]
				if !ok {
					stats.UnknownMarkets++
					continue
				}
				observed := observedAt(book, market, fetchedAt)
				for _, outcome := range market.Outcomes {
					stats.Outcomes++
					q, err := quoteFromOutcome(event.ID, stat, source, observed, outcome)
					if err != nil {
						stats.DroppedOutcomes++
						continue
					}
					quotes = append(quotes, q)
				}
			}
		}
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i].CanonicalMarket().String(), quotes[j].CanonicalMarket().String()
		if a != b {
			return a < b
		}
		if quotes[i].Source != quotes[j].Source {
			return quotes[i].Source < quotes[j].Source
		}
		return quotes[i].Side < quotes[j].Side
	})
	stats.Quotes = len(quotes)
	return quotes, stats
}

func quoteFromOutcome(gameID, stat, source string, observed time.Time, o datasource.Outcome) (models.MarketQuote, error) {
	player := strings.TrimSpace(o.Description)
	side, err := models.ParseSide(o.Name)
	if err != nil {
		return models.MarketQuote{}, err
	}
	if o.Point == nil || o.Price == nil || player == "" {
		return models.MarketQuote{}, fmt.Errorf("%w: incomplete outcome", models.ErrInvalidQuote)
	}
	price := *o.Price
	if price != math.Trunc(price) {
		return models.MarketQuote{}, fmt.Errorf("%w: %v is not an american price", models.ErrInvalidPrice, price)
	}
	latency := 0

	q := models.MarketQuote{
		Market: models.MarketKey{
			GameID:    gameID,
			SubjectID: SubjectID(player),
			StatType:  stat,
		},
		Side:          side,
		Line:          *o.Point,
		PriceAmerican: int(price),
		Source:        source,
		ObservedAt:    observed.UTC(),
		LatencyMS:     &latency,
	}
	if err := q.Validate(); err != nil {
		return models.MarketQuote{}, err
	}
	return q, nil
}

func observedAt(book datasource.Bookmaker, market datasource.Market, fetchedAt time.Time) time.Time {
	if market.LastUpdate != nil && !market.LastUpdate.IsZero() {
		return *market.LastUpdate
	}
	if !book.LastUpdate.IsZero() {
		return book.LastUpdate
	}
	return fetchedAt
}
