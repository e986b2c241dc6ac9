package api

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"lotbid/adapters/room"
	"lotbid/api/openapi"
	"lotbid/auction"
)

// BroadcastSecretHeader 是橋接通知攜帶共享密鑰的 header
const BroadcastSecretHeader = "X-Broadcast-Secret"

// Notifier 把 HTTP 服務造成的狀態變更通知即時服務
// 通知失敗只記錄，不影響已完成的主要操作
type Notifier interface {
	Notify(ctx context.Context, auctionID, event string, payload any)
}

type bridgeOptions struct {
	logger  *slog.Logger
	timeout time.Duration
	client  *http.Client
	metrics *Metrics
}

type BridgeOption func(*bridgeOptions)

// WithBridgeLogger 設置日誌記錄器
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(o *bridgeOptions) {
		o.logger = logger
	}
}

// WithBridgeTimeout 設置單次通知的最長時間
func WithBridgeTimeout(d time.Duration) BridgeOption {
	return func(o *bridgeOptions) {
		o.timeout = d
	}
}

// WithBridgeHTTPClient 設置 HTTP client
func WithBridgeHTTPClient(client *http.Client) BridgeOption {
	return func(o *bridgeOptions) {
		o.client = client
	}
}

func withBridgeMetrics(metrics *Metrics) BridgeOption {
	return func(o *bridgeOptions) {
		o.metrics = metrics
	}
}

// BridgeNotifier 以 HTTP 呼叫即時服務的 /realtime/broadcast
type BridgeNotifier struct {
	url     string
	secret  string
	logger  *slog.Logger
	options bridgeOptions
}

var _ Notifier = (*BridgeNotifier)(nil)

func NewBridgeNotifier(baseURL, secret string, opts ...BridgeOption) *BridgeNotifier {
	options := bridgeOptions{
		logger:  slog.Default(),
		timeout: 3 * time.Second,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&options)
	}
	url := ""
	if baseURL != "" {
		url = strings.TrimRight(baseURL, "/") + "/realtime/broadcast"
	}
	return &BridgeNotifier{
		url:     url,
		secret:  secret,
		logger:  options.logger.With(slog.String("caller", "BridgeNotifier")),
		options: options,
	}
}

// Notify 送出通知，URL 為空時不做任何事
func (b *BridgeNotifier) Notify(ctx context.Context, auctionID, event string, payload any) {
	if b.url == "" {
		return
	}
	if err := b.send(ctx, auctionID, event, payload); err != nil {
		if b.options.metrics != nil {
			b.options.metrics.bridgeFailed()
		}
		b.logger.Warn("Fail to notify realtime service",
			slog.String("auctionId", auctionID),
			slog.String("event", event),
			slog.Any("error", err))
	}
}

func (b *BridgeNotifier) send(ctx context.Context, auctionID, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(openapi.BroadcastRequest{AuctionId: auctionID, Event: event, Payload: data})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.options.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(BroadcastSecretHeader, b.secret)

	resp, err := b.options.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", auction.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", auction.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}

// localNotifier 在同一個程序內直接廣播
type localNotifier struct {
	broadcaster auction.Broadcaster
	logger      *slog.Logger
}

func (n localNotifier) Notify(_ context.Context, auctionID, event string, payload any) {
	if err := n.broadcaster.Broadcast(auctionID, event, payload); err != nil {
		n.logger.Warn("Fail to broadcast",
			slog.String("auctionId", auctionID),
			slog.String("event", event),
			slog.Any("error", err))
	}
}

// PostRealtimeBroadcast 接收橋接通知並廣播到房間
func (impl *ServerImpl) PostRealtimeBroadcast(_ context.Context, request openapi.PostRealtimeBroadcastRequestObject) (openapi.PostRealtimeBroadcastResponseObject, error) {
	secret := impl.config.Bridge.Secret
	given := lo.FromPtr(request.Params.XBroadcastSecret)
	if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
		return openapi.PostRealtimeBroadcast401JSONResponse(errorBody("unauthorized")), nil
	}

	auctionID := strings.TrimSpace(request.Body.AuctionId)
	eventType := strings.TrimSpace(request.Body.Event)
	if auctionID == "" || eventType == "" {
		return openapi.PostRealtimeBroadcast400JSONResponse(errorBody("auctionId and event are required")), nil
	}

	event := room.Event{Type: eventType, Data: NormalizePayload(request.Body.Payload)}
	if err := impl.rooms.BroadcastEvent(auctionID, event); err != nil {
		impl.logger.Warn("Fail to broadcast bridged event",
			slog.String("auctionId", auctionID),
			slog.String("event", eventType),
			slog.Any("error", err))
	}
	return openapi.PostRealtimeBroadcast204Response{}, nil
}
