package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"lotbid/adapters/auth"
	"lotbid/adapters/room"
	"lotbid/auction"
	"lotbid/models"
)

// 客戶端送來的事件名稱
const (
	MessageJoinRoom = "join-room"
	MessageLeave    = "leave"
	MessagePlaceBid = "place-bid"
	MessageTimeSync = "time-sync"
)

const (
	defaultPingInterval = 25 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultReadLimit    = 4096
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type roomRequest struct {
	AuctionID string `json:"auctionId"`
}

type bidRequest struct {
	AuctionID string          `json:"auctionId"`
	Amount    json.RawMessage `json:"amount"`
}

type timeSyncRequest struct {
	ClientTime json.RawMessage `json:"clientTime"`
}

// TimeSyncPayload 是 time-sync 的回應，serverTime 為毫秒時間戳
type TimeSyncPayload struct {
	ServerTime int64           `json:"serverTime"`
	ClientTime json.RawMessage `json:"clientTime"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// connection 是一條 WebSocket 連線的狀態，只在該連線的讀取 goroutine 中使用
type connection struct {
	ctx      context.Context
	impl     *ServerImpl
	conn     *websocket.Conn
	client   *room.Client
	identity *auth.Identity
	logger   *slog.Logger
}

func (impl *ServerImpl) checkOrigin(r *http.Request) bool {
	allowed := impl.config.Realtime.AllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(allowed, origin)
}

// authenticateSocket 從 Authorization header 或 token 參數取得身份
// 沒有提供 token 時為匿名連線
func (impl *ServerImpl) authenticateSocket(c *gin.Context) (*auth.Identity, error) {
	token := strings.TrimSpace(c.Query("token"))
	if header := c.GetHeader("Authorization"); header != "" {
		var err error
		if token, err = auth.BearerToken(header); err != nil {
			return nil, err
		}
	}
	if token == "" {
		return nil, nil
	}
	return impl.verifier.Verify(c.Request.Context(), token)
}

func (impl *ServerImpl) handleWebSocket(c *gin.Context) {
	identity, err := impl.authenticateSocket(c)
	if err != nil {
		impl.logger.Debug("Reject websocket token", slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}

	userID, name := uuid.Nil, ""
	if identity != nil {
		userID, name = identity.UserID, identity.Name
		user := models.User{ID: identity.UserID, Name: lo.CoalesceOrEmpty(identity.Name, identity.UserID.String()), Role: identity.Role}
		if err := impl.store.UpsertUser(c.Request.Context(), user); err != nil {
			respondError(c, impl.logger, err)
			return
		}
	}

	client, err := impl.rooms.Connect(userID, name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody("server is shutting down"))
		return
	}
	conn, err := impl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失敗時已經回應錯誤
		impl.rooms.Disconnect(client)
		impl.logger.Debug("Fail to upgrade websocket", slog.Any("error", err))
		return
	}

	session := &connection{
		ctx:      c.Request.Context(),
		impl:     impl,
		conn:     conn,
		client:   client,
		identity: identity,
		logger: impl.logger.With(
			slog.String("clientId", client.ID.String()),
			slog.String("userId", userID.String())),
	}
	session.logger.Debug("Websocket connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.writeLoop()
	}()
	session.readLoop()
	impl.rooms.Disconnect(client)
	<-done
	session.logger.Debug("Websocket disconnected")
}

// writeLoop 送出佇列中的事件並定期 ping，佇列關閉時結束並關閉連線
func (s *connection) writeLoop() {
	pingInterval := lo.Ternary(s.impl.config.Realtime.PingInterval > 0, s.impl.config.Realtime.PingInterval, defaultPingInterval)
	writeTimeout := lo.Ternary(s.impl.config.Realtime.WriteTimeout > 0, s.impl.config.Realtime.WriteTimeout, defaultWriteTimeout)
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	events := s.client.Events()
	for {
		select {
		case event, ok := <-events:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(event); err != nil {
				s.logger.Debug("Fail to write event", slog.String("event", event.Type), slog.Any("error", err))
				// 讓讀取端結束，Disconnect 後佇列會被關閉
				s.conn.Close()
				for range events {
				}
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.conn.Close()
				for range events {
				}
				return
			}
		}
	}
}

func (s *connection) readLoop() {
	pingInterval := lo.Ternary(s.impl.config.Realtime.PingInterval > 0, s.impl.config.Realtime.PingInterval, defaultPingInterval)
	readLimit := lo.Ternary(s.impl.config.Realtime.ReadLimit > 0, s.impl.config.Realtime.ReadLimit, int64(defaultReadLimit))
	pongWait := pingInterval * 2

	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message inboundMessage
		if err := s.conn.ReadJSON(&message); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			// 文字訊息被截斷時 ReadJSON 回傳 io.ErrUnexpectedEOF，連線本身仍然可用
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.sendError("invalid message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Websocket closed unexpectedly", slog.Any("error", err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.dispatch(message)
	}
}

func (s *connection) dispatch(message inboundMessage) {
	switch message.Type {
	case MessageJoinRoom:
		var req roomRequest
		if !s.decode(message.Data, &req) {
			return
		}
		s.joinRoom(strings.TrimSpace(req.AuctionID))
	case MessageLeave:
		var req roomRequest
		if !s.decode(message.Data, &req) {
			return
		}
		s.leave(strings.TrimSpace(req.AuctionID))
	case MessagePlaceBid:
		var req bidRequest
		if !s.decode(message.Data, &req) {
			return
		}
		s.placeBid(req)
	case MessageTimeSync:
		var req timeSyncRequest
		if len(message.Data) > 0 && !s.decode(message.Data, &req) {
			return
		}
		s.send(auction.EventTimeSync, TimeSyncPayload{
			ServerTime: s.impl.clock().UnixMilli(),
			ClientTime: lo.Ternary(len(req.ClientTime) > 0, req.ClientTime, json.RawMessage("null")),
		})
	default:
		s.sendError("unknown message type")
	}
}

func (s *connection) decode(data json.RawMessage, v any) bool {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.sendError("invalid message data")
		return false
	}
	return true
}

// joinRoom 確認可見後加入房間，加入後重新讀取快照再送出 state
// 加入前成立的出價不會廣播給這條連線，所以不能沿用加入前的快照
func (s *connection) joinRoom(auctionID string) {
	id, err := uuid.Parse(auctionID)
	if err != nil {
		s.sendError("auction not found")
		return
	}
	listing, ok := s.loadListing(id)
	if !ok {
		return
	}
	if !listing.Status.PubliclyVisible() && (s.identity == nil || !s.identity.IsAdmin()) {
		s.sendError("auction not found")
		return
	}
	if err := s.impl.rooms.Join(s.client, listing.ID.String(), listing.EndTime); err != nil {
		s.sendError("connection closed")
		return
	}
	if listing, ok = s.loadListing(id); !ok {
		return
	}
	s.send(auction.EventState, auction.NewStateSnapshot(listing, s.impl.clock().UTC()))
}

func (s *connection) loadListing(id uuid.UUID) (*models.Listing, bool) {
	listing, err := s.impl.store.GetListingWithBids(s.ctx, id)
	if err != nil {
		_, message := classify(err)
		if !errors.Is(err, auction.ErrNotFound) {
			s.logger.Warn("Fail to load auction for join", slog.String("auctionId", id.String()), slog.Any("error", err))
		}
		s.sendError(message)
		return nil, false
	}
	return listing, true
}

// leave 與 joinRoom 使用相同的房間 ID 格式
func (s *connection) leave(auctionID string) {
	id, err := uuid.Parse(auctionID)
	if err != nil {
		s.sendError("auction not found")
		return
	}
	s.impl.rooms.Leave(s.client, id.String())
}

func (s *connection) placeBid(req bidRequest) {
	request := auction.PlaceBidRequest{
		AuctionID: req.AuctionID,
		Amount:    rawAmount(req.Amount),
	}
	if s.client.Authenticated() {
		request.BidderID = lo.ToPtr(s.client.UserID)
	}

	outcome, err := s.impl.admission.PlaceBid(s.ctx, request)
	if rejection, ok := auction.AsRejection(err); ok {
		s.impl.metrics.bidRejected(string(rejection.Reason))
		s.send(auction.EventBidRejected, auction.BidRejectedPayload{
			AuctionID: req.AuctionID,
			Reason:    rejection.Reason,
			Message:   rejection.Message,
		})
		return
	}
	if err != nil {
		s.impl.metrics.bidRejected("ERROR")
		_, message := classify(err)
		if message == "internal server error" {
			s.logger.Error("Fail to place bid", slog.String("auctionId", req.AuctionID), slog.Any("error", err))
		}
		s.sendError(message)
		return
	}
	s.impl.metrics.bidAccepted()
	s.send(auction.EventBidAccepted, outcome.Payload)
}

// rawAmount 將金額還原成字串，同時接受 JSON 數字與字串
func rawAmount(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(raw))
}

func (s *connection) send(eventType string, payload any) {
	if err := s.impl.rooms.Send(s.client, eventType, payload); err != nil {
		s.logger.Debug("Fail to send event", slog.String("event", eventType), slog.Any("error", err))
	}
}

func (s *connection) sendError(message string) {
	s.send(auction.EventError, ErrorPayload{Message: message})
}
