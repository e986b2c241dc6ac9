package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lotbid/auction"
	"lotbid/models"
)

var (
	ErrManagerClosed = errors.New("room manager is closed")
	ErrUnknownClient = errors.New("client is not connected")
)

// Relay 負責跨實例傳遞事件，Subscribe 會收到所有實例 (包含自己) 發布的事件
type Relay interface {
	Start()
	Publish(req PublishRequest) error
	Subscribe() <-chan PublishRequest
	Close()
}

type managerOptions struct {
	logger            *slog.Logger
	queueSize         int
	countdownInterval time.Duration
	clock             func() time.Time
	relay             Relay
	metrics           *Metrics
}

type ManagerOption func(*managerOptions)

// WithManagerLogger 設置日誌記錄器
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithManagerQueueSize 設置每條連線的待送佇列長度
func WithManagerQueueSize(size int) ManagerOption {
	return func(o *managerOptions) {
		o.queueSize = size
	}
}

// WithManagerCountdownInterval 設置倒數事件的間隔，0 表示不發送倒數
func WithManagerCountdownInterval(d time.Duration) ManagerOption {
	return func(o *managerOptions) {
		o.countdownInterval = d
	}
}

// WithManagerClock 設置時間來源 (主要用於測試)
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(o *managerOptions) {
		o.clock = clock
	}
}

// WithManagerRelay 設置跨實例的事件轉送，未設置時只在本機廣播
func WithManagerRelay(relay Relay) ManagerOption {
	return func(o *managerOptions) {
		o.relay = relay
	}
}

// WithManagerMetrics 設置監控指標
func WithManagerMetrics(metrics *Metrics) ManagerOption {
	return func(o *managerOptions) {
		o.metrics = metrics
	}
}

type room struct {
	members        map[*Client]struct{}
	endTime        *time.Time
	ended          bool
	finalTickShown bool
}

// Manager 管理拍賣房間與連線
// rooms 與 clients 由同一把鎖保護，投遞事件時只做不阻塞的佇列寫入
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.RWMutex
	wg     sync.WaitGroup
	active bool

	rooms   map[string]*room
	clients map[*Client]string
	options managerOptions
}

var _ auction.Broadcaster = (*Manager)(nil)

func NewManager(opts ...ManagerOption) *Manager {
	options := managerOptions{
		logger:            slog.Default(),
		queueSize:         64,
		countdownInterval: time.Second,
		clock:             time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.queueSize <= 0 {
		options.queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		ctx:     ctx,
		cancel:  cancel,
		logger:  options.logger.With(slog.String("caller", "RoomManager")),
		active:  true,
		rooms:   make(map[string]*room),
		clients: make(map[*Client]string),
		options: options,
	}
	if options.metrics != nil {
		options.metrics.bind(m)
	}
	return m
}

// Start 啟動跨實例事件的接收與倒數計時
func (m *Manager) Start() {
	if relay := m.options.relay; relay != nil {
		relay.Start()
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for req := range relay.Subscribe() {
				m.deliver(req.Channel, req.Message)
			}
		}()
	}

	if m.options.countdownInterval > 0 {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			ticker := time.NewTicker(m.options.countdownInterval)
			defer ticker.Stop()
			for {
				select {
				case <-m.ctx.Done():
					return
				case <-ticker.C:
					m.Tick()
				}
			}
		}()
	}
}

// Close 停止所有背景工作並關閉所有連線的佇列
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	m.mu.Unlock()

	m.cancel()
	if m.options.relay != nil {
		m.options.relay.Close()
	}
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for client := range m.clients {
		close(client.send)
	}
	clear(m.clients)
	clear(m.rooms)
	m.logger.Info("room manager closed")
}

// Connect 註冊一條新連線，userID 為 uuid.Nil 表示匿名觀看
func (m *Manager) Connect(userID uuid.UUID, name string) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return nil, ErrManagerClosed
	}
	client := &Client{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		send:   make(chan Event, m.options.queueSize),
	}
	m.clients[client] = ""
	return client, nil
}

// Join 將連線加入房間，原本在其他房間時會先離開
// endTime 來自加入前讀取的狀態快照，用於倒數
func (m *Manager) Join(client *Client, auctionID string, endTime *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.clients[client]
	if !ok {
		return ErrUnknownClient
	}
	if current == auctionID {
		m.observeEndTime(auctionID, endTime)
		return nil
	}
	if current != "" {
		m.removeMember(client, current)
	}

	r, ok := m.rooms[auctionID]
	if !ok {
		r = &room{members: make(map[*Client]struct{})}
		m.rooms[auctionID] = r
	}
	r.members[client] = struct{}{}
	m.clients[client] = auctionID
	m.observeEndTime(auctionID, endTime)
	m.notifyParticipants(auctionID, auction.EventParticipantJoined)
	return nil
}

// Leave 讓連線離開指定房間，連線不在該房間時不做任何事
func (m *Manager) Leave(client *Client, auctionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.clients[client]; ok && current == auctionID && current != "" {
		m.removeMember(client, current)
		m.clients[client] = ""
	}
}

// Disconnect 移除連線並關閉它的佇列，所在房間會收到 participant-left
func (m *Manager) Disconnect(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.clients[client]
	if !ok {
		return
	}
	if current != "" {
		m.removeMember(client, current)
	}
	delete(m.clients, client)
	close(client.send)
}

// RoomOf 回傳連線目前所在的房間
func (m *Manager) RoomOf(client *Client) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	auctionID, ok := m.clients[client]
	return auctionID, ok && auctionID != ""
}

// Participants 回傳房間內的連線數
func (m *Manager) Participants(auctionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[auctionID]; ok {
		return len(r.members)
	}
	return 0
}

// Rooms 回傳目前有連線的房間數
func (m *Manager) Rooms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Clients 回傳目前的連線數
func (m *Manager) Clients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Broadcast 將事件送給房間內的所有連線
// 設置了 Relay 時經由 Relay 轉送，所有實例 (包含自己) 收到後再投遞給本機的連線
func (m *Manager) Broadcast(auctionID string, eventType string, payload any) error {
	const op = "Broadcast"
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("[%s] Fail to marshal %s payload, err=%w", op, eventType, err)
	}
	return m.BroadcastEvent(auctionID, event)
}

// BroadcastEvent 廣播已序列化的事件
func (m *Manager) BroadcastEvent(auctionID string, event Event) error {
	const op = "BroadcastEvent"
	m.mu.RLock()
	active := m.active
	m.mu.RUnlock()
	if !active {
		return ErrManagerClosed
	}

	if relay := m.options.relay; relay != nil {
		err := relay.Publish(PublishRequest{Channel: auctionID, Message: event})
		if err == nil {
			return nil
		}
		m.logger.Warn("Fail to relay event, deliver locally",
			slog.String("auctionId", auctionID),
			slog.String("event", event.Type),
			slog.Any("error", err))
		m.deliver(auctionID, event)
		return fmt.Errorf("[%s] Fail to relay event, err=%w", op, err)
	}

	m.deliver(auctionID, event)
	return nil
}

// Send 只送給單一連線
func (m *Manager) Send(client *Client, eventType string, payload any) error {
	const op = "Send"
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("[%s] Fail to marshal %s payload, err=%w", op, eventType, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.clients[client]; !ok {
		return ErrUnknownClient
	}
	if !client.offer(event) {
		m.options.metrics.dropped()
		m.logger.Debug("queue full, event dropped",
			slog.String("clientId", client.ID.String()),
			slog.String("event", eventType))
	}
	return nil
}

// Tick 對每個仍在倒數的房間送出 countdown，結束時間到達時送出最後一次 0
func (m *Manager) Tick() {
	now := m.options.clock()

	m.mu.Lock()
	defer m.mu.Unlock()
	for auctionID, r := range m.rooms {
		if r.ended || r.endTime == nil || r.finalTickShown {
			continue
		}
		remaining := r.endTime.Sub(now)
		if remaining <= 0 {
			remaining = 0
			r.finalTickShown = true
		}
		event, err := NewEvent(auction.EventCountdown, CountdownPayload{
			AuctionID:   auctionID,
			EndTime:     *r.endTime,
			RemainingMs: remaining.Milliseconds(),
		})
		if err != nil {
			continue
		}
		m.offerAll(r, event)
	}
}

// deliver 投遞給本機房間內的連線，並依事件內容更新房間的倒數資訊
func (m *Manager) deliver(auctionID string, event Event) {
	switch event.Type {
	case auction.EventState, auction.EventAuctionExtended, auction.EventAuctionEnded:
		m.mu.Lock()
		m.observeEvent(auctionID, event)
		m.mu.Unlock()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.active {
		return
	}
	if r, ok := m.rooms[auctionID]; ok {
		m.offerAll(r, event)
	}
}

func (m *Manager) offerAll(r *room, event Event) {
	for client := range r.members {
		if !client.offer(event) {
			m.options.metrics.dropped()
			m.logger.Debug("queue full, event dropped",
				slog.String("clientId", client.ID.String()),
				slog.String("event", event.Type))
		}
	}
}

// 以下方法需持有寫鎖

func (m *Manager) observeEvent(auctionID string, event Event) {
	r, ok := m.rooms[auctionID]
	if !ok {
		return
	}
	if event.Type == auction.EventAuctionEnded {
		r.ended = true
		return
	}
	var t timing
	if err := json.Unmarshal(event.Data, &t); err != nil {
		return
	}
	if t.Status == models.StatusEnded {
		r.ended = true
	}
	m.observeEndTime(auctionID, t.EndTime)
}

func (m *Manager) observeEndTime(auctionID string, endTime *time.Time) {
	r, ok := m.rooms[auctionID]
	if !ok || endTime == nil {
		return
	}
	if r.endTime == nil || !r.endTime.Equal(*endTime) {
		t := *endTime
		r.endTime = &t
		r.finalTickShown = false
	}
}

func (m *Manager) removeMember(client *Client, auctionID string) {
	r, ok := m.rooms[auctionID]
	if !ok {
		return
	}
	delete(r.members, client)
	if len(r.members) == 0 {
		delete(m.rooms, auctionID)
		return
	}
	m.notifyParticipants(auctionID, auction.EventParticipantLeft)
}

func (m *Manager) notifyParticipants(auctionID, eventType string) {
	r, ok := m.rooms[auctionID]
	if !ok {
		return
	}
	event, err := NewEvent(eventType, ParticipantsPayload{
		AuctionID:    auctionID,
		Participants: len(r.members),
	})
	if err != nil {
		return
	}
	m.offerAll(r, event)
}
