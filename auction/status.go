package auction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"lotbid/models"
)

// TransitionStatus 將拍賣轉換到下一個狀態
//
// 只允許往前轉換，倒退或原地轉換返回 ErrPreconditionFailed。
// 轉換到 live 時若沒有開始時間，以現在時間補上；
// 轉換到 ended 時若結束時間未設定或仍在未來，以現在時間為結束時間。
// 這裡不會觸發結算，結算由呼叫者在轉換成功後呼叫 SettleAuctionIfNeeded
func (e *Engine) TransitionStatus(ctx context.Context, auctionID uuid.UUID, to models.Status) (*models.Listing, error) {
	const op = "TransitionStatus"
	if !to.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	listing, err := e.store.GetListingWithBids(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load listing, err=%w", op, err)
	}
	if !listing.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("[%s] Cannot transition from %s to %s, err=%w", op, listing.Status, to, ErrPreconditionFailed)
	}

	now := e.options.clock().UTC()
	change := StatusChange{To: to}
	switch to {
	case models.StatusLive:
		if listing.StartTime == nil {
			change.StartTime = &now
		}
	case models.StatusEnded:
		if listing.StartTime == nil {
			change.StartTime = &now
		}
		if listing.EndTime == nil || listing.EndTime.After(now) {
			change.EndTime = &now
		}
	}

	updated, err := e.store.UpdateStatus(ctx, auctionID, listing.Status, change)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to update status, err=%w", op, err)
	}
	e.logger.Info("Auction status changed",
		slog.String("auctionID", auctionID.String()),
		slog.String("from", string(listing.Status)),
		slog.String("to", string(to)))
	return updated, nil
}
