// Package publisher fans board entries out to Redis streams.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/prop-edge/internal/models"
)

// DefaultStreamPrefix prefixes the per-stat board streams
const DefaultStreamPrefix = "board.published"

// StreamAdder is the slice of the Redis client used for publishing
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher publishes board entries to stat-specific Redis streams
type StreamPublisher struct {
	client StreamAdder
	prefix string
	maxLen int64
}

// NewStreamPublisher creates a new stream publisher. maxLen <= 0 disables trimming.
func NewStreamPublisher(client StreamAdder, prefix string, maxLen int64) *StreamPublisher {
	if prefix == "" {
		prefix = DefaultStreamPrefix
	}
	return &StreamPublisher{client: client, prefix: prefix, maxLen: maxLen}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// StreamKey returns the stream for a stat type
func (p *StreamPublisher) StreamKey(statType string) string {
	return fmt.Sprintf("%s.%s", p.prefix, strings.ToLower(statType))
}

// PublishEntry appends one board entry to its stat stream
func (p *StreamPublisher) PublishEntry(ctx context.Context, runID uuid.UUID, entry *models.BoardEntry) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshaling board entry: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.StreamKey(entry.StatType),
		Values: map[string]interface{}{
			"data":       string(data),
			"run_id":     runID.String(),
			"market_key": entry.MarketKey,
			"side":       string(entry.Side),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("redis: stream append %s: %w", args.Stream, err)
	}
	return id, nil
}

// PublishBoard appends every entry in order. It stops at the first failure
// and returns how many entries were published.
func (p *StreamPublisher) PublishBoard(ctx context.Context, runID uuid.UUID, entries []models.BoardEntry) (int, error) {
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := p.PublishEntry(ctx, runID, &entries[i]); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
