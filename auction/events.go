package auction

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lotbid/models"
)

// 即時頻道的事件名稱
const (
	EventState             = "state"
	EventNewBid            = "new-bid"
	EventBidAccepted       = "bid-accepted"
	EventBidRejected       = "bid-rejected"
	EventCountdown         = "countdown"
	EventAuctionExtended   = "auction-extended"
	EventAuctionEnded      = "auction-ended"
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventTimeSync          = "time-sync"
	EventError             = "error"
)

// BidView 是出價對外顯示的格式
type BidView struct {
	ID        uint64          `json:"id"`
	AuctionID uuid.UUID       `json:"auctionId"`
	BidderID  uuid.UUID       `json:"bidderId"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewBidView(bid models.Bid) BidView {
	return BidView{
		ID:        bid.ID,
		AuctionID: bid.ListingID,
		BidderID:  bid.UserID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt,
	}
}

// Winner 是公開顯示的得標者
type Winner struct {
	ID   uuid.UUID `json:"id"`
	Name *string   `json:"name"`
}

// NewBidPayload 是 new-bid 與 bid-accepted 事件的內容
type NewBidPayload struct {
	AuctionID uuid.UUID       `json:"auctionId"`
	Bid       BidView         `json:"bid"`
	Highest   decimal.Decimal `json:"highest"`
	BidCount  int64           `json:"bidCount"`
}

// BidRejectedPayload 是 bid-rejected 事件的內容
type BidRejectedPayload struct {
	AuctionID string       `json:"auctionId"`
	Reason    RejectReason `json:"reason"`
	Message   string       `json:"message"`
}

// ExtendedPayload 是 auction-extended 事件的內容
type ExtendedPayload struct {
	AuctionID uuid.UUID `json:"auctionId"`
	EndTime   time.Time `json:"endTime"`
}

// EndedPayload 是 auction-ended 事件的內容
type EndedPayload struct {
	AuctionID  uuid.UUID        `json:"auctionId"`
	Settled    bool             `json:"settled"`
	FinalPrice *decimal.Decimal `json:"finalPrice"`
	Winner     *Winner          `json:"winner"`
	BidCount   int              `json:"bidCount"`
}

func NewEndedPayload(auctionID uuid.UUID, result SettlementResult) EndedPayload {
	return EndedPayload{
		AuctionID:  auctionID,
		Settled:    result.Settled,
		FinalPrice: result.FinalPrice,
		Winner:     result.Winner(),
		BidCount:   result.BidCount,
	}
}

// StateSnapshot 是 state 事件的內容，也是 GET /auctions/{id} 的回應
// 客戶端斷線重連後以此重新同步
type StateSnapshot struct {
	AuctionID    uuid.UUID        `json:"auctionId"`
	Lot          string           `json:"lot"`
	Title        string           `json:"title"`
	Make         string           `json:"make"`
	Model        string           `json:"model"`
	Year         int              `json:"year"`
	Mileage      int              `json:"mileage"`
	Engine       string           `json:"engine"`
	Image        string           `json:"image"`
	Status       models.Status    `json:"status"`
	StartPrice   decimal.Decimal  `json:"startPrice"`
	CurrentPrice decimal.Decimal  `json:"currentPrice"`
	Highest      *BidView         `json:"highest"`
	BidCount     int              `json:"bidCount"`
	RecentBids   []BidView        `json:"recentBids"`
	StartTime    *time.Time       `json:"startTime"`
	EndTime      *time.Time       `json:"endTime"`
	ServerTime   time.Time        `json:"serverTime"`
	Settled      bool             `json:"settled"`
	FinalPrice   *decimal.Decimal `json:"finalPrice"`
	Winner       *Winner          `json:"winner"`
}

const recentBidLimit = 10

// NewStateSnapshot 由已載入出價的拍賣建立快照
func NewStateSnapshot(listing *models.Listing, now time.Time) StateSnapshot {
	snapshot := StateSnapshot{
		AuctionID:    listing.ID,
		Lot:          listing.Lot,
		Title:        listing.Title,
		Make:         listing.Make,
		Model:        listing.Model,
		Year:         listing.Year,
		Mileage:      listing.Mileage,
		Engine:       listing.Engine,
		Image:        listing.Image,
		Status:       listing.Status,
		StartPrice:   listing.StartPrice,
		CurrentPrice: listing.CurrentPrice(),
		BidCount:     len(listing.Bids),
		RecentBids:   make([]BidView, 0, recentBidLimit),
		StartTime:    listing.StartTime,
		EndTime:      listing.EndTime,
		ServerTime:   now,
		Settled:      listing.Settled(),
		FinalPrice:   listing.FinalPrice,
	}
	if best := listing.HighestBid(); best != nil {
		view := NewBidView(*best)
		snapshot.Highest = &view
	}
	recent := slices.Clone(listing.Bids)
	slices.SortFunc(recent, func(a, b models.Bid) int {
		return cmp.Compare(b.ID, a.ID)
	})
	for i := 0; i < len(recent) && i < recentBidLimit; i++ {
		snapshot.RecentBids = append(snapshot.RecentBids, NewBidView(recent[i]))
	}
	if listing.WinnerUserID != nil {
		snapshot.Winner = winnerOf(listing)
	}
	return snapshot
}

func winnerOf(listing *models.Listing) *Winner {
	if listing.WinnerUserID == nil {
		return nil
	}
	winner := &Winner{ID: *listing.WinnerUserID}
	if listing.Winner != nil {
		name := listing.Winner.Name
		winner.Name = &name
	}
	return winner
}

// ResultView 是拍賣結果的公開格式
type ResultView struct {
	AuctionID  uuid.UUID        `json:"auctionId"`
	Status     models.Status    `json:"status"`
	Settled    bool             `json:"settled"`
	FinalPrice *decimal.Decimal `json:"finalPrice"`
	Winner     *Winner          `json:"winner"`
	BidCount   int              `json:"bidCount"`
}

// NewResultView 由已載入出價的拍賣建立結果，尚未結算時 finalPrice 與 winner 為 null
func NewResultView(listing *models.Listing) ResultView {
	return ResultView{
		AuctionID:  listing.ID,
		Status:     listing.Status,
		Settled:    listing.Settled(),
		FinalPrice: listing.FinalPrice,
		Winner:     winnerOf(listing),
		BidCount:   len(listing.Bids),
	}
}

// ListingSummary 是列表中的一筆拍賣
type ListingSummary struct {
	ID           uuid.UUID       `json:"id"`
	Lot          string          `json:"lot"`
	Title        string          `json:"title"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Mileage      int             `json:"mileage"`
	Engine       string          `json:"engine"`
	Image        string          `json:"image"`
	Status       models.Status   `json:"status"`
	StartPrice   decimal.Decimal `json:"startPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	BidCount     int64           `json:"bidCount"`
	StartTime    *time.Time      `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
}

func NewListingSummary(listing models.Listing) ListingSummary {
	return ListingSummary{
		ID:           listing.ID,
		Lot:          listing.Lot,
		Title:        listing.Title,
		Make:         listing.Make,
		Model:        listing.Model,
		Year:         listing.Year,
		Mileage:      listing.Mileage,
		Engine:       listing.Engine,
		Image:        listing.Image,
		Status:       listing.Status,
		StartPrice:   listing.StartPrice,
		CurrentPrice: listing.CurrentPrice(),
		BidCount:     listing.BidCount,
		StartTime:    listing.StartTime,
		EndTime:      listing.EndTime,
	}
}
