package room_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lotbid/adapters/room"
	"lotbid/auction"
)

func TestStreamRelay_FanOutAcrossManagers(t *testing.T) {
	defer goleak.VerifyNone(t)

	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	defer client.Close()

	newManager := func() *room.Manager {
		relay, err := room.NewStreamRelay(client, "lotbid:rooms",
			room.WithRelayStartID("0"),
			room.WithRelayBlockTimeout(50*time.Millisecond),
		)
		require.NoError(t, err)
		return room.NewManager(room.WithManagerRelay(relay), room.WithManagerCountdownInterval(0))
	}
	first, second := newManager(), newManager()
	first.Start()
	second.Start()
	defer first.Close()
	defer second.Close()

	watcher, err := second.Connect(uuid.Nil, "")
	require.NoError(t, err)
	require.NoError(t, second.Join(watcher, "a1", nil))
	drain(watcher)

	require.NoError(t, first.Broadcast("a1", auction.EventNewBid, map[string]string{"amount": "1200"}))

	event := next(t, watcher)
	assert.Equal(t, auction.EventNewBid, event.Type)
	assert.JSONEq(t, `{"amount":"1200"}`, string(event.Data))
}

func TestNewStreamRelay_InvalidStream(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	_, err := room.NewStreamRelay(client, "")
	assert.Error(t, err)
}
