package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotbid/models"
)

// SettlementResult 是結算結果，由拍賣與出價計算而來，不另外儲存
type SettlementResult struct {
	// Settled 只有在這次呼叫真的寫入結算結果時為 true，重複呼叫為 false
	Settled      bool
	WinningBidID *uint64
	WinnerID     *uuid.UUID
	WinnerName   *string
	FinalPrice   *decimal.Decimal
	BidCount     int
}

// Winner 回傳公開顯示的得標者，沒有得標者時為 nil
func (r SettlementResult) Winner() *Winner {
	if r.WinnerID == nil {
		return nil
	}
	return &Winner{ID: *r.WinnerID, Name: r.WinnerName}
}

// RankBids 依結算順序排序出價(不修改傳入的 slice)
// 金額高者優先，同金額時較早者優先，同時間以序號較小者優先
func RankBids(bids []models.Bid) []models.Bid {
	ranked := slices.Clone(bids)
	slices.SortStableFunc(ranked, func(a, b models.Bid) int {
		switch {
		case a.Outranks(b):
			return -1
		case b.Outranks(a):
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// SelectWinner 選出得標出價，沒有出價時回傳 nil
func SelectWinner(bids []models.Bid) *models.Bid {
	if len(bids) == 0 {
		return nil
	}
	winner := RankBids(bids)[0]
	return &winner
}

type engineOptions struct {
	logger *slog.Logger
	clock  func() time.Time
}

type EngineOption func(*engineOptions)

// WithEngineLogger 設置日誌記錄器
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithEngineClock 設置時間來源 (主要用於測試)
func WithEngineClock(clock func() time.Time) EngineOption {
	return func(o *engineOptions) {
		o.clock = clock
	}
}

// Engine 是結算引擎
// 只讀寫 Store，不負責通知即時頻道，通知由呼叫者處理
type Engine struct {
	store   Store
	logger  *slog.Logger
	options engineOptions
}

func NewEngine(store Store, opts ...EngineOption) *Engine {
	options := engineOptions{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Engine{
		store:   store,
		logger:  options.logger.With(slog.String("caller", "SettlementEngine")),
		options: options,
	}
}

// SettleAuctionIfNeeded 對已結束的拍賣執行結算
//
// 返回值:
//   - nil: 拍賣不存在或狀態不是 ended
//   - Settled=false: 之前已經結算過，返回既有的結果
//   - Settled=true: 這次呼叫寫入了結算結果(包含無人出價的情況)
//
// 多個呼叫同時結算同一個拍賣時，只有一個呼叫的結果會被寫入，
// 其他呼叫會讀回已寫入的結果並返回 Settled=false
func (e *Engine) SettleAuctionIfNeeded(ctx context.Context, auctionID uuid.UUID) (*SettlementResult, error) {
	const op = "SettleAuctionIfNeeded"
	listing, err := e.store.GetListingWithBids(ctx, auctionID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load listing, err=%w", op, err)
	}
	if listing.Status != models.StatusEnded {
		return nil, nil
	}
	if listing.Settled() {
		return e.persistedResult(listing), nil
	}

	update := SettlementUpdate{SettledAt: e.options.clock().UTC()}
	winner := SelectWinner(listing.Bids)
	if winner != nil {
		bidID, userID, amount := winner.ID, winner.UserID, winner.Amount
		update.WinningBidID = &bidID
		update.WinnerUserID = &userID
		update.FinalPrice = &amount
	}

	applied, err := e.store.UpdateSettlement(ctx, auctionID, update)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to persist settlement, err=%w", op, err)
	}
	if !applied {
		// 其他呼叫已經先完成結算，以資料庫中的結果為準
		e.logger.Info("Settlement already persisted by a concurrent caller", slog.String("auctionID", auctionID.String()))
		persisted, err := e.store.GetListingWithBids(ctx, auctionID)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to reload listing, err=%w", op, err)
		}
		return e.persistedResult(persisted), nil
	}

	result := &SettlementResult{
		Settled:      true,
		WinningBidID: update.WinningBidID,
		WinnerID:     update.WinnerUserID,
		FinalPrice:   update.FinalPrice,
		BidCount:     len(listing.Bids),
	}
	if winner != nil {
		result.WinnerName = e.resolveName(ctx, winner.UserID)
	}
	e.logger.Info("Auction settled",
		slog.String("auctionID", auctionID.String()),
		slog.Int("bidCount", result.BidCount),
		slog.Bool("hasWinner", winner != nil))
	return result, nil
}

// resolveName 取得得標者名稱，失敗時只記錄並返回 nil，不影響結算
func (e *Engine) resolveName(ctx context.Context, userID uuid.UUID) *string {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		e.logger.Warn("Fail to resolve winner name", slog.String("userID", userID.String()), slog.Any("error", err))
		return nil
	}
	name := user.Name
	return &name
}

func (e *Engine) persistedResult(listing *models.Listing) *SettlementResult {
	result := &SettlementResult{
		Settled:      false,
		WinningBidID: listing.WinningBidID,
		WinnerID:     listing.WinnerUserID,
		FinalPrice:   listing.FinalPrice,
		BidCount:     len(listing.Bids),
	}
	if listing.Winner != nil {
		name := listing.Winner.Name
		result.WinnerName = &name
	}
	return result
}
