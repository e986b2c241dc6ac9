package room_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lotbid/adapters/room"
	"lotbid/auction"
)

func connect(t *testing.T, m *room.Manager) *room.Client {
	t.Helper()
	client, err := m.Connect(uuid.New(), "bidder")
	require.NoError(t, err)
	return client
}

func TestManager_JoinLeaveSwitch(t *testing.T) {
	m := room.NewManager(room.WithManagerCountdownInterval(0))
	defer m.Close()

	alice := connect(t, m)
	bob := connect(t, m)

	require.NoError(t, m.Join(alice, "a1", nil))
	joined := next(t, alice)
	assert.Equal(t, auction.EventParticipantJoined, joined.Type)
	assert.Equal(t, 1, decode[room.ParticipantsPayload](t, joined).Participants)

	require.NoError(t, m.Join(bob, "a1", nil))
	for _, client := range []*room.Client{alice, bob} {
		event := next(t, client)
		assert.Equal(t, auction.EventParticipantJoined, event.Type)
		assert.Equal(t, 2, decode[room.ParticipantsPayload](t, event).Participants)
	}

	// 切換房間會先離開舊的房間
	require.NoError(t, m.Join(bob, "a2", nil))
	left := next(t, alice)
	assert.Equal(t, auction.EventParticipantLeft, left.Type)
	assert.Equal(t, 1, decode[room.ParticipantsPayload](t, left).Participants)
	assert.Equal(t, auction.EventParticipantJoined, next(t, bob).Type)

	current, ok := m.RoomOf(bob)
	assert.True(t, ok)
	assert.Equal(t, "a2", current)
	assert.Equal(t, 1, m.Participants("a1"))
	assert.Equal(t, 2, m.Rooms())

	// 已在房間內再次加入不會重複通知
	require.NoError(t, m.Join(bob, "a2", nil))
	assert.Empty(t, drain(bob))

	require.NoError(t, m.Broadcast("a1", auction.EventNewBid, map[string]int{"amount": 1200}))
	assert.Equal(t, auction.EventNewBid, next(t, alice).Type)
	assert.Empty(t, drain(bob), "bob is no longer in a1")

	m.Leave(bob, "a1") // 不在 a1，不影響
	assert.Equal(t, 1, m.Participants("a2"))
	m.Leave(bob, "a2")
	assert.Equal(t, 0, m.Participants("a2"))
	assert.Equal(t, 1, m.Rooms())
	_, ok = m.RoomOf(bob)
	assert.False(t, ok)
}

func TestManager_Disconnect(t *testing.T) {
	m := room.NewManager(room.WithManagerCountdownInterval(0))
	defer m.Close()

	alice := connect(t, m)
	bob := connect(t, m)
	require.NoError(t, m.Join(alice, "a1", nil))
	require.NoError(t, m.Join(bob, "a1", nil))
	drain(alice)

	m.Disconnect(bob)
	m.Disconnect(bob) // 重複呼叫沒有影響

	left := next(t, alice)
	assert.Equal(t, auction.EventParticipantLeft, left.Type)
	assert.Equal(t, 1, decode[room.ParticipantsPayload](t, left).Participants)
	assert.Equal(t, 1, m.Clients())

	drain(bob)
	_, open := <-bob.Events()
	assert.False(t, open, "queue is closed after disconnect")

	assert.ErrorIs(t, m.Join(bob, "a1", nil), room.ErrUnknownClient)
	assert.ErrorIs(t, m.Send(bob, auction.EventTimeSync, nil), room.ErrUnknownClient)
	require.NoError(t, m.Broadcast("a1", auction.EventNewBid, nil))
	assert.Equal(t, auction.EventNewBid, next(t, alice).Type)
}

func TestManager_SlowClientDoesNotBlock(t *testing.T) {
	m := room.NewManager(room.WithManagerQueueSize(2), room.WithManagerCountdownInterval(0))
	defer m.Close()

	slow := connect(t, m)
	fast := connect(t, m)
	require.NoError(t, m.Join(slow, "a1", nil))
	require.NoError(t, m.Join(fast, "a1", nil))
	drain(fast)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = m.Broadcast("a1", auction.EventNewBid, map[string]int{"seq": i})
			<-fast.Events()
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full queue")
	}
	assert.Len(t, drain(slow), 2)
}

func TestManager_Send(t *testing.T) {
	m := room.NewManager(room.WithManagerCountdownInterval(0))
	defer m.Close()

	alice := connect(t, m)
	bob := connect(t, m)
	require.NoError(t, m.Send(alice, auction.EventBidRejected, auction.BidRejectedPayload{
		AuctionID: "a1",
		Reason:    auction.ReasonBidTooLow,
	}))

	event := next(t, alice)
	assert.Equal(t, auction.EventBidRejected, event.Type)
	assert.JSONEq(t, `{"auctionId":"a1","reason":"BID_TOO_LOW","message":""}`, string(event.Data))
	assert.Empty(t, drain(bob))

	assert.Error(t, m.Send(alice, auction.EventError, func() {}))
}

func TestManager_Countdown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	m := room.NewManager(room.WithManagerClock(clock), room.WithManagerCountdownInterval(0))
	defer m.Close()

	client := connect(t, m)
	end := now.Add(5 * time.Second)
	require.NoError(t, m.Join(client, "a1", &end))
	drain(client)

	m.Tick()
	tick := decode[room.CountdownPayload](t, next(t, client))
	assert.Equal(t, int64(5000), tick.RemainingMs)
	assert.True(t, end.Equal(tick.EndTime))

	advance(6 * time.Second)
	m.Tick()
	assert.Equal(t, int64(0), decode[room.CountdownPayload](t, next(t, client)).RemainingMs)
	m.Tick()
	assert.Empty(t, drain(client), "only one final tick")

	// 延長後重新開始倒數
	extended := now.Add(30 * time.Second)
	require.NoError(t, m.Broadcast("a1", auction.EventAuctionExtended, auction.ExtendedPayload{EndTime: extended}))
	assert.Equal(t, auction.EventAuctionExtended, next(t, client).Type)
	m.Tick()
	assert.Equal(t, int64(30000), decode[room.CountdownPayload](t, next(t, client)).RemainingMs)

	// 結束後不再倒數
	require.NoError(t, m.Broadcast("a1", auction.EventAuctionEnded, auction.EndedPayload{}))
	assert.Equal(t, auction.EventAuctionEnded, next(t, client).Type)
	m.Tick()
	assert.Empty(t, drain(client))
}

func TestManager_CountdownTicker(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := room.NewManager(room.WithManagerCountdownInterval(10 * time.Millisecond))
	m.Start()
	defer m.Close()

	client := connect(t, m)
	end := time.Now().Add(time.Minute)
	require.NoError(t, m.Join(client, "a1", &end))
	assert.Equal(t, auction.EventParticipantJoined, next(t, client).Type)
	assert.Equal(t, auction.EventCountdown, next(t, client).Type)
}

func TestManager_Relay(t *testing.T) {
	defer goleak.VerifyNone(t)

	shared := &hub{}
	first := room.NewManager(room.WithManagerRelay(shared.relay()), room.WithManagerCountdownInterval(0))
	second := room.NewManager(room.WithManagerRelay(shared.relay()), room.WithManagerCountdownInterval(0))
	first.Start()
	second.Start()
	defer first.Close()
	defer second.Close()

	local := connect(t, first)
	remote := connect(t, second)
	require.NoError(t, first.Join(local, "a1", nil))
	require.NoError(t, second.Join(remote, "a1", nil))
	drain(local)
	drain(remote)

	require.NoError(t, first.Broadcast("a1", auction.EventNewBid, map[string]string{"amount": "1500"}))
	for _, client := range []*room.Client{local, remote} {
		event := next(t, client)
		assert.Equal(t, auction.EventNewBid, event.Type)
		assert.JSONEq(t, `{"amount":"1500"}`, string(event.Data))
	}
}

func TestManager_Close(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := room.NewManager(room.WithManagerCountdownInterval(time.Millisecond))
	m.Start()
	client := connect(t, m)
	require.NoError(t, m.Join(client, "a1", nil))

	m.Close()
	m.Close()

	drain(client)
	_, open := <-client.Events()
	assert.False(t, open)
	assert.Equal(t, 0, m.Clients())

	_, err := m.Connect(uuid.Nil, "")
	assert.ErrorIs(t, err, room.ErrManagerClosed)
	assert.ErrorIs(t, m.Broadcast("a1", auction.EventNewBid, nil), room.ErrManagerClosed)
}

func TestManager_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := room.NewManager(
		room.WithManagerMetrics(room.NewMetrics(registry)),
		room.WithManagerQueueSize(1),
		room.WithManagerCountdownInterval(0),
	)
	defer m.Close()

	client := connect(t, m)
	require.NoError(t, m.Join(client, "a1", nil)) // 佔滿佇列
	require.NoError(t, m.Broadcast("a1", auction.EventNewBid, nil))

	families, err := registry.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, family := range families {
		metric := family.GetMetric()[0]
		switch {
		case metric.GetGauge() != nil:
			values[family.GetName()] = metric.GetGauge().GetValue()
		case metric.GetCounter() != nil:
			values[family.GetName()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, values["lotbid_realtime_connected_clients"])
	assert.Equal(t, 1.0, values["lotbid_realtime_active_rooms"])
	assert.Equal(t, 1.0, values["lotbid_realtime_dropped_events_total"])
}

func TestClient_Authenticated(t *testing.T) {
	m := room.NewManager(room.WithManagerCountdownInterval(0))
	defer m.Close()

	anonymous, err := m.Connect(uuid.Nil, "")
	require.NoError(t, err)
	assert.False(t, anonymous.Authenticated())
	assert.True(t, connect(t, m).Authenticated())
}
