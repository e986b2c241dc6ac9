//go:generate mockgen -package=auction -destination=mock.go -source=store.go

package auction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotbid/models"
)

// Store 定義了拍賣引擎需要的持久化操作
type Store interface {
	// GetListingWithBids 取得拍賣以及所有出價、得標者，不存在時返回 ErrNotFound
	GetListingWithBids(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	// CreateListing 建立拍賣，輸入不合法時返回 *ValidationError
	CreateListing(ctx context.Context, input ListingInput) (*models.Listing, error)
	// ListListings 依建立時間由新到舊分頁列出拍賣
	ListListings(ctx context.Context, query ListQuery) ([]models.Listing, int64, error)
	// UpdateSettlement 以單一條件式更新寫入結算結果，只有尚未結算時才會寫入
	// 返回值表示這次呼叫是否真的寫入
	UpdateSettlement(ctx context.Context, id uuid.UUID, update SettlementUpdate) (bool, error)
	// UpdateStatus 只有在目前狀態仍為 from 時才會轉換，否則返回 ErrPreconditionFailed
	UpdateStatus(ctx context.Context, id uuid.UUID, from models.Status, change StatusChange) (*models.Listing, error)
	// PlaceBid 鎖住拍賣後呼叫 admit 檢查，admit 通過才寫入出價
	PlaceBid(ctx context.Context, listingID uuid.UUID, admit AdmitFunc) (*BidReceipt, error)
	// GetUser 取得使用者，不存在時返回 ErrNotFound
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Broadcaster 將事件送給某個拍賣房間內的所有連線
type Broadcaster interface {
	Broadcast(auctionID string, event string, payload any) error
}

// 列表分頁大小
const (
	DefaultPageSize      = 36
	DefaultAdminPageSize = 50
	MaxPageSize          = 100
)

// ListQuery 是列表查詢的條件
type ListQuery struct {
	Page          int
	PageSize      int
	Status        models.Status
	IncludeDrafts bool
}

// SettlementUpdate 是結算時寫入拍賣的欄位，三個結算欄位會一起寫入
type SettlementUpdate struct {
	WinningBidID *uint64
	WinnerUserID *uuid.UUID
	FinalPrice   *decimal.Decimal
	SettledAt    time.Time
}

// StatusChange 描述一次狀態轉換要寫入的欄位
type StatusChange struct {
	To        models.Status
	StartTime *time.Time
	EndTime   *time.Time
}

// BidSnapshot 是出價檢查時看到的拍賣狀態(已上鎖)
// Listing 為 nil 表示拍賣不存在
type BidSnapshot struct {
	Listing  *models.Listing
	Highest  *models.Bid
	BidCount int64
	Now      time.Time
}

// BidDraft 是通過檢查後要寫入的出價
// ExtendEndTime 不為 nil 時，會在同一個交易中延長結束時間
type BidDraft struct {
	UserID        uuid.UUID
	Amount        decimal.Decimal
	ExtendEndTime *time.Time
}

// AdmitFunc 檢查出價，返回錯誤時不寫入任何資料
type AdmitFunc func(snapshot BidSnapshot) (*BidDraft, error)

// BidReceipt 是寫入後的出價與拍賣的最新狀態
type BidReceipt struct {
	Bid      models.Bid
	BidCount int64
	EndTime  *time.Time
	Extended bool
}
