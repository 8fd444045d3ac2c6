package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-edge/internal/models"
)

type fakeStreams struct {
	added  []*redis.XAddArgs
	failAt int
}

func (f *fakeStreams) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a)
	if f.failAt > 0 && len(f.added) == f.failAt {
		return redis.NewStringResult("", errors.New("connection reset"))
	}
	return redis.NewStringResult("1700000000000-0", nil)
}

func entries() []models.BoardEntry {
	return []models.BoardEntry{
		{MarketKey: "g1|tatum|PTS|27.5", StatType: "PTS", Side: models.SideOver, EdgePct: 0.03},
		{MarketKey: "g1|white|3PM|2.5", StatType: "3PM", Side: models.SideUnder, EdgePct: 0.01},
	}
}

func TestStreamKey(t *testing.T) {
	p := NewStreamPublisher(&fakeStreams{}, "", 0)
	assert.Equal(t, "board.published.pts", p.StreamKey("PTS"))

	p = NewStreamPublisher(&fakeStreams{}, "props.board", 0)
	assert.Equal(t, "props.board.3pm", p.StreamKey("3PM"))
}

func TestPublishBoard(t *testing.T) {
	fake := &fakeStreams{}
	p := NewStreamPublisher(fake, "", 1000)
	runID := uuid.New()

	n, err := p.PublishBoard(context.Background(), runID, entries())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, fake.added, 2)

	first := fake.added[0]
	assert.Equal(t, "board.published.pts", first.Stream)
	assert.Equal(t, int64(1000), first.MaxLen)
	assert.True(t, first.Approx)
	assert.Equal(t, runID.String(), first.Values.(map[string]interface{})["run_id"])

	var decoded models.BoardEntry
	require.NoError(t, json.Unmarshal([]byte(first.Values.(map[string]interface{})["data"].(string)), &decoded))
	assert.Equal(t, "g1|tatum|PTS|27.5", decoded.MarketKey)

	assert.Equal(t, "board.published.3pm", fake.added[1].Stream)
}

func TestPublishBoardStopsOnError(t *testing.T) {
	fake := &fakeStreams{failAt: 2}
	p := NewStreamPublisher(fake, "", 0)

	n, err := p.PublishBoard(context.Background(), uuid.New(), entries())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "board.published.3pm")
	assert.Equal(t, int64(0), fake.added[0].MaxLen)
}

func TestPublishBoardCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := NewStreamPublisher(&fakeStreams{}, "", 0).PublishBoard(ctx, uuid.New(), entries())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}
