package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mev-engine/atomic-arb-engine/pkg/collector/parsers"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStreamTask_ProcessesEventAndUpdatesCache(t *testing.T) {
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"mutation"}`))
		time.Sleep(200 * time.Millisecond)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	pool := types.PoolKey{Venue: types.VenueCLMMA, Pool: "p1"}
	reader := &fakeReader{}
	cache := NewCache()

	keyOf := func(raw []byte) (types.PoolKey, bool) {
		if strings.Contains(string(raw), "mutation") {
			return pool, true
		}
		return types.PoolKey{}, false
	}

	task := NewEventStreamTask(types.VenueCLMMA, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", keyOf, reader, parsers.CLMMParser{}, cache, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- task.Run(ctx) }()

	select {
	case <-ctx.Done():
	case <-done:
	}

	_, ok := cache.Get(pool)
	assert.True(t, ok)
	require.GreaterOrEqual(t, reader.reads.Load(), int64(1))
}

func TestEventStreamTask_IgnoresEventsWithNoMatchingKey(t *testing.T) {
	keyOf := func(raw []byte) (types.PoolKey, bool) { return types.PoolKey{}, false }
	reader := &fakeReader{}
	cache := NewCache()

	task := NewEventStreamTask(types.VenueCLMMA, "ws://example.invalid/ws", keyOf, reader, parsers.CLMMParser{}, cache, nil)
	task.handleEvent(context.Background(), []byte(`{"type":"noop"}`))

	assert.EqualValues(t, 0, reader.reads.Load())
}

func TestEventStreamTask_MalformedJSONIgnored(t *testing.T) {
	reader := &fakeReader{}
	cache := NewCache()
	task := NewEventStreamTask(types.VenueCLMMA, "ws://example.invalid/ws", func([]byte) (types.PoolKey, bool) { return types.PoolKey{}, true }, reader, parsers.CLMMParser{}, cache, nil)

	assert.NotPanics(t, func() { task.handleEvent(context.Background(), []byte(`not json`)) })
	assert.EqualValues(t, 0, reader.reads.Load())
}

func TestEventStreamTask_DialFailureReturnsError(t *testing.T) {
	task := NewEventStreamTask(types.VenueCLMMA, "ws://127.0.0.1:1/ws", func([]byte) (types.PoolKey, bool) { return types.PoolKey{}, false }, &fakeReader{}, parsers.CLMMParser{}, NewCache(), nil)

	err := task.Run(context.Background())
	assert.Error(t, err)
}
