package room_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lotbid/adapters/room"
)

func next(t *testing.T, client *room.Client) room.Event {
	t.Helper()
	select {
	case event, ok := <-client.Events():
		require.True(t, ok, "client queue closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return room.Event{}
	}
}

func drain(client *room.Client) []room.Event {
	var events []room.Event
	for {
		select {
		case event, ok := <-client.Events():
			if !ok {
				return events
			}
			events = append(events, event)
		default:
			return events
		}
	}
}

func decode[T any](t *testing.T, event room.Event) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(event.Data, &v))
	return v
}

// hub 模擬共用的 stream，每個 relay 都會收到所有發布的事件
type hub struct {
	mu     sync.Mutex
	relays []*memoryRelay
}

func (h *hub) relay() *memoryRelay {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := &memoryRelay{hub: h, ch: make(chan room.PublishRequest, 16)}
	h.relays = append(h.relays, r)
	return r
}

type memoryRelay struct {
	hub    *hub
	ch     chan room.PublishRequest
	once   sync.Once
	closed bool
}

func (r *memoryRelay) Start() {}

func (r *memoryRelay) Publish(req room.PublishRequest) error {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	for _, relay := range r.hub.relays {
		if !relay.closed {
			relay.ch <- req
		}
	}
	return nil
}

func (r *memoryRelay) Subscribe() <-chan room.PublishRequest {
	return r.ch
}

func (r *memoryRelay) Close() {
	r.once.Do(func() {
		r.hub.mu.Lock()
		defer r.hub.mu.Unlock()
		r.closed = true
		close(r.ch)
	})
}
