package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing 代表一筆車輛拍賣
// 車輛資訊在建立時複製進來，來源車輛之後被修改也不影響拍賣顯示
type Listing struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Lot         string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null;default:''"`

	// 車輛資訊快照
	VehicleID *uuid.UUID `gorm:"type:uuid"`
	Make      string     `gorm:"type:varchar(128);not null"`
	Model     string     `gorm:"type:varchar(128);not null"`
	Year      int        `gorm:"not null"`
	Mileage   int        `gorm:"not null;default:0"`
	Engine    string     `gorm:"type:varchar(128)"`
	Image     string     `gorm:"type:text"`

	Status     Status          `gorm:"type:varchar(16);not null;default:draft;index"`
	StartPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	StartTime  *time.Time
	EndTime    *time.Time
	FinalPrice *decimal.Decimal `gorm:"type:numeric(14,2)"`

	// 結算欄位只會由結算流程一次寫入
	WinningBidID *uint64    `gorm:"index"`
	WinnerUserID *uuid.UUID `gorm:"type:uuid"`
	SettledAt    *time.Time

	// 外鍵關聯
	Bids   []Bid `gorm:"foreignKey:ListingID"`
	Winner *User `gorm:"foreignKey:WinnerUserID"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// 非資料表欄位，列表查詢時以聚合計算，不載入完整出價
	BidCount      int64               `gorm:"-"`
	HighestAmount decimal.NullDecimal `gorm:"-"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		l.ID = id
	}
	return nil
}

// Settled 判斷拍賣是否已經結算過(包含無人出價的結算)
func (l *Listing) Settled() bool {
	return l.SettledAt != nil
}

// WinningBid 從已載入的 Bids 中找出得標出價
func (l *Listing) WinningBid() *Bid {
	if l.WinningBidID == nil {
		return nil
	}
	for i := range l.Bids {
		if l.Bids[i].ID == *l.WinningBidID {
			return &l.Bids[i]
		}
	}
	return nil
}

// HighestBid 回傳目前排名第一的出價，沒有出價時回傳 nil
// 需要先載入 Bids
func (l *Listing) HighestBid() *Bid {
	var best *Bid
	for i := range l.Bids {
		if best == nil || l.Bids[i].Outranks(*best) {
			best = &l.Bids[i]
		}
	}
	return best
}

// CurrentPrice 回傳目前最高出價，沒有出價時回傳起標價
func (l *Listing) CurrentPrice() decimal.Decimal {
	if best := l.HighestBid(); best != nil {
		return best.Amount
	}
	if l.HighestAmount.Valid {
		return l.HighestAmount.Decimal
	}
	return l.StartPrice
}
