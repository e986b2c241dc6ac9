package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Locker 是跨實例的出價鎖，介面與 redis.IAutoRenewMutex 相容
type Locker interface {
	Lock(ctx context.Context) (context.Context, error)
	Unlock() (bool, error)
}

// LockFactory 依照 key 建立鎖
type LockFactory func(key string) Locker

// PlaceBidRequest 是一次出價請求
// Amount 保留客戶端送來的原始數字字串，由 PlaceBid 檢查格式
// BidderID 為 nil 表示請求沒有通過身份驗證
type PlaceBidRequest struct {
	AuctionID string
	Amount    string
	BidderID  *uuid.UUID
}

// BidOutcome 是出價成功後要通知的內容
type BidOutcome struct {
	Payload  NewBidPayload
	EndTime  *time.Time
	Extended bool
}

type admissionOptions struct {
	logger             *slog.Logger
	lockFactory        LockFactory
	softCloseWindow    time.Duration
	softCloseExtension time.Duration
}

type AdmissionOption func(*admissionOptions)

// WithAdmissionLogger 設置日誌記錄器
func WithAdmissionLogger(logger *slog.Logger) AdmissionOption {
	return func(o *admissionOptions) {
		o.logger = logger
	}
}

// WithAdmissionLockFactory 設置跨實例的出價鎖，未設置時只依賴資料庫的行鎖
func WithAdmissionLockFactory(factory LockFactory) AdmissionOption {
	return func(o *admissionOptions) {
		o.lockFactory = factory
	}
}

// WithSoftClose 設置延長結束時間的規則
// 在結束前 window 內成交的出價會把結束時間延後到出價時間加上 extension，window 為 0 時停用
func WithSoftClose(window, extension time.Duration) AdmissionOption {
	return func(o *admissionOptions) {
		o.softCloseWindow = window
		o.softCloseExtension = extension
	}
}

// Admission 負責檢查出價並寫入，成功後廣播給拍賣房間
type Admission struct {
	store       Store
	broadcaster Broadcaster
	logger      *slog.Logger
	options     admissionOptions
}

func NewAdmission(store Store, broadcaster Broadcaster, opts ...AdmissionOption) *Admission {
	options := admissionOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Admission{
		store:       store,
		broadcaster: broadcaster,
		logger:      options.logger.With(slog.String("caller", "BidAdmission")),
		options:     options,
	}
}

// BidLockKey 回傳拍賣出價鎖的 key
func BidLockKey(auctionID uuid.UUID) string {
	return "lotbid:bid-lock:" + auctionID.String()
}

// PlaceBid 檢查並寫入出價
//
// 檢查順序(第一個失敗的條件決定拒絕原因):
//  1. 拍賣存在且狀態為 live，否則 AUCTION_NOT_LIVE
//  2. 金額為正數，否則 INVALID_AMOUNT
//  3. 金額大於目前最高出價(沒有出價時大於起標價)，否則 BID_TOO_LOW
//  4. 出價者已通過身份驗證，否則 UNAUTHORIZED
//
// 被拒絕時返回 *BidRejection，不會寫入任何資料。
// 成功時會廣播 new-bid，延長結束時間時另外廣播 auction-extended，
// 回覆出價者的 bid-accepted 由呼叫者處理
func (a *Admission) PlaceBid(ctx context.Context, req PlaceBidRequest) (*BidOutcome, error) {
	const op = "PlaceBid"
	auctionID, err := uuid.Parse(strings.TrimSpace(req.AuctionID))
	if err != nil {
		return nil, reject(ReasonAuctionNotLive, "auction %q does not exist", req.AuctionID)
	}

	if a.options.lockFactory != nil {
		mutex := a.options.lockFactory(BidLockKey(auctionID))
		lockCtx, err := mutex.Lock(ctx)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to acquire bid lock, err=%w", op, errors.Join(ErrUpstreamUnavailable, err))
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				a.logger.Warn("Fail to release bid lock", slog.String("auctionID", auctionID.String()), slog.Any("error", err))
			}
		}()
		ctx = lockCtx
	}

	receipt, err := a.store.PlaceBid(ctx, auctionID, func(snapshot BidSnapshot) (*BidDraft, error) {
		return a.admit(snapshot, req)
	})
	if err != nil {
		if _, ok := AsRejection(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("[%s] Fail to place bid, err=%w", op, err)
	}

	outcome := &BidOutcome{
		Payload: NewBidPayload{
			AuctionID: auctionID,
			Bid:       NewBidView(receipt.Bid),
			Highest:   receipt.Bid.Amount,
			BidCount:  receipt.BidCount,
		},
		EndTime:  receipt.EndTime,
		Extended: receipt.Extended,
	}
	a.logger.Info("Bid accepted",
		slog.String("auctionID", auctionID.String()),
		slog.Uint64("bidID", receipt.Bid.ID),
		slog.String("amount", receipt.Bid.Amount.String()))

	room := auctionID.String()
	if err := a.broadcaster.Broadcast(room, EventNewBid, outcome.Payload); err != nil {
		a.logger.Warn("Fail to broadcast new bid", slog.String("auctionID", room), slog.Any("error", err))
	}
	if receipt.Extended && receipt.EndTime != nil {
		extended := ExtendedPayload{AuctionID: auctionID, EndTime: *receipt.EndTime}
		if err := a.broadcaster.Broadcast(room, EventAuctionExtended, extended); err != nil {
			a.logger.Warn("Fail to broadcast auction extension", slog.String("auctionID", room), slog.Any("error", err))
		}
	}
	return outcome, nil
}

// admit 在拍賣已上鎖的狀態下執行檢查
func (a *Admission) admit(snapshot BidSnapshot, req PlaceBidRequest) (*BidDraft, error) {
	listing := snapshot.Listing
	if listing == nil {
		return nil, reject(ReasonAuctionNotLive, "auction %q does not exist", req.AuctionID)
	}
	if !listing.Status.AcceptsBids() {
		return nil, reject(ReasonAuctionNotLive, "auction is %s", listing.Status)
	}
	if listing.EndTime != nil && !snapshot.Now.Before(*listing.EndTime) {
		return nil, reject(ReasonAuctionNotLive, "bidding closed at %s", listing.EndTime.UTC().Format(time.RFC3339))
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	floor := listing.StartPrice
	if snapshot.Highest != nil {
		floor = snapshot.Highest.Amount
	}
	if !amount.GreaterThan(floor) {
		return nil, reject(ReasonBidTooLow, "bid must be greater than %s", floor.StringFixed(2))
	}

	if req.BidderID == nil || *req.BidderID == uuid.Nil {
		return nil, reject(ReasonUnauthorized, "sign in to place a bid")
	}

	draft := &BidDraft{UserID: *req.BidderID, Amount: amount}
	if a.options.softCloseWindow > 0 && listing.EndTime != nil &&
		listing.EndTime.Sub(snapshot.Now) <= a.options.softCloseWindow {
		extended := snapshot.Now.Add(a.options.softCloseExtension)
		if extended.After(*listing.EndTime) {
			draft.ExtendEndTime = &extended
		}
	}
	return draft, nil
}

// MaxAmount 是金額欄位 numeric(14,2) 能存放的最大值
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ParseAmount 檢查出價金額，必須是正數、最多兩位小數且不超過 MaxAmount
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if raw == "" {
		return decimal.Zero, reject(ReasonInvalidAmount, "amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, reject(ReasonInvalidAmount, "amount %q is not a number", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, reject(ReasonInvalidAmount, "amount must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, reject(ReasonInvalidAmount, "amount must have at most two decimal places")
	}
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, reject(ReasonInvalidAmount, "amount must not exceed %s", MaxAmount.StringFixed(2))
	}
	return amount, nil
}
