package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid 代表拍賣的出價紀錄
// 出價建立後不可修改，ID 是遞增序號，在同金額同時間的出價中用來決定先後
type Bid struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	ListingID uuid.UUID       `gorm:"type:uuid;not null;index:idx_bids_listing_id;<-:create"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;<-:create"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null;<-:create"`
	CreatedAt time.Time       `gorm:"not null;<-:create"`

	// 外鍵關聯
	User *User `gorm:"foreignKey:UserID"`
}

// Outranks 判斷 b 是否排在 other 之前
// 金額高者優先，同金額時較早出價者優先，時間相同時以序號較小者優先
func (b Bid) Outranks(other Bid) bool {
	if c := b.Amount.Cmp(other.Amount); c != 0 {
		return c > 0
	}
	if !b.CreatedAt.Equal(other.CreatedAt) {
		return b.CreatedAt.Before(other.CreatedAt)
	}
	return b.ID < other.ID
}
