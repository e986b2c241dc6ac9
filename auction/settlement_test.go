package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lotbid/models"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func bidAt(id uint64, amount int64, offset time.Duration) models.Bid {
	return models.Bid{
		ID:        id,
		UserID:    uuid.New(),
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: baseTime.Add(offset),
	}
}

func TestSelectWinner(t *testing.T) {
	t0 := bidAt(1, 400, 0)
	t2 := bidAt(2, 500, 2*time.Second)
	t1 := bidAt(3, 500, 1*time.Second)

	tests := []struct {
		name     string
		bids     []models.Bid
		expected *uint64
	}{
		{
			name: "no bids",
			bids: nil,
		},
		{
			name:     "equal amounts prefer the earliest bid",
			bids:     []models.Bid{t2, t1, t0},
			expected: &t1.ID,
		},
		{
			name:     "highest amount wins regardless of time",
			bids:     []models.Bid{bidAt(1, 100, 0), bidAt(2, 300, 5*time.Second), bidAt(3, 200, time.Second)},
			expected: seq(2),
		},
		{
			name:     "same amount and same time prefer the lower sequence",
			bids:     []models.Bid{bidAt(9, 500, 0), bidAt(4, 500, 0), bidAt(7, 500, 0)},
			expected: seq(4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner := SelectWinner(tt.bids)
			if tt.expected == nil {
				assert.Nil(t, winner)
				return
			}
			require.NotNil(t, winner)
			assert.Equal(t, *tt.expected, winner.ID)
		})
	}
}

func TestSelectWinner_Deterministic(t *testing.T) {
	bids := []models.Bid{
		bidAt(1, 1200, 0),
		bidAt(2, 1500, time.Second),
		bidAt(3, 1500, time.Second),
		bidAt(4, 1500, 2*time.Second),
		bidAt(5, 900, 3*time.Second),
	}
	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{3, 1, 4, 2, 0},
	}
	for _, order := range orders {
		shuffled := make([]models.Bid, 0, len(order))
		for _, i := range order {
			shuffled = append(shuffled, bids[i])
		}
		winner := SelectWinner(shuffled)
		require.NotNil(t, winner)
		assert.Equal(t, uint64(2), winner.ID, "order %v", order)
	}
}

func TestRankBids_DoesNotMutateInput(t *testing.T) {
	bids := []models.Bid{bidAt(1, 100, 0), bidAt(2, 300, time.Second)}
	ranked := RankBids(bids)
	assert.Equal(t, uint64(2), ranked[0].ID)
	assert.Equal(t, uint64(1), bids[0].ID)
}

func seq(v uint64) *uint64 { return &v }

func newTestEngine(t *testing.T) (*Engine, *MockStore) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	engine := NewEngine(store, WithEngineClock(func() time.Time { return baseTime }))
	return engine, store
}

func TestEngine_SettleAuctionIfNeeded(t *testing.T) {
	ctx := context.Background()
	auctionID := uuid.New()

	t.Run("missing listing returns nil", func(t *testing.T) {
		engine, store := newTestEngine(t)
		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(nil, ErrNotFound)

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		engine, store := newTestEngine(t)
		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(nil, errors.New("connection reset"))

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		assert.Error(t, err)
		assert.Nil(t, result)
	})

	for _, status := range []models.Status{models.StatusDraft, models.StatusScheduled, models.StatusLive} {
		t.Run("status "+string(status)+" returns nil", func(t *testing.T) {
			engine, store := newTestEngine(t)
			listing := &models.Listing{ID: auctionID, Status: status, Bids: []models.Bid{bidAt(1, 100, 0)}}
			store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(listing, nil)

			result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
			assert.NoError(t, err)
			assert.Nil(t, result)
		})
	}

	t.Run("winner is persisted with a single update", func(t *testing.T) {
		engine, store := newTestEngine(t)
		bids := []models.Bid{bidAt(1, 500, 2*time.Second), bidAt(2, 500, time.Second), bidAt(3, 400, 0)}
		listing := &models.Listing{ID: auctionID, Status: models.StatusEnded, Bids: bids}
		winnerID := bids[1].UserID

		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(listing, nil)
		store.EXPECT().UpdateSettlement(gomock.Any(), auctionID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, update SettlementUpdate) (bool, error) {
				require.NotNil(t, update.WinningBidID)
				assert.Equal(t, uint64(2), *update.WinningBidID)
				assert.Equal(t, winnerID, *update.WinnerUserID)
				assert.True(t, update.FinalPrice.Equal(decimal.NewFromInt(500)))
				assert.Equal(t, baseTime, update.SettledAt)
				return true, nil
			})
		store.EXPECT().GetUser(gomock.Any(), winnerID).Return(&models.User{ID: winnerID, Name: "Mira"}, nil)

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Settled)
		assert.Equal(t, winnerID, *result.WinnerID)
		assert.Equal(t, "Mira", *result.WinnerName)
		assert.True(t, result.FinalPrice.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, 3, result.BidCount)
	})

	t.Run("no bids settles without a winner", func(t *testing.T) {
		engine, store := newTestEngine(t)
		listing := &models.Listing{ID: auctionID, Status: models.StatusEnded}
		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(listing, nil)
		store.EXPECT().UpdateSettlement(gomock.Any(), auctionID, SettlementUpdate{SettledAt: baseTime}).Return(true, nil)

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Settled)
		assert.Nil(t, result.WinnerID)
		assert.Nil(t, result.FinalPrice)
		assert.Nil(t, result.Winner())
		assert.Equal(t, 0, result.BidCount)
	})

	t.Run("already settled returns the persisted outcome", func(t *testing.T) {
		engine, store := newTestEngine(t)
		bids := []models.Bid{bidAt(1, 700, 0), bidAt(2, 900, time.Second)}
		winner := models.User{ID: bids[0].UserID, Name: "Early"}
		price := decimal.NewFromInt(700)
		settledAt := baseTime.Add(-time.Hour)
		listing := &models.Listing{
			ID:           auctionID,
			Status:       models.StatusEnded,
			Bids:         bids,
			WinningBidID: seq(1),
			WinnerUserID: &winner.ID,
			Winner:       &winner,
			FinalPrice:   &price,
			SettledAt:    &settledAt,
		}
		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(listing, nil)

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.Settled)
		assert.Equal(t, winner.ID, *result.WinnerID)
		assert.Equal(t, "Early", *result.WinnerName)
		assert.True(t, result.FinalPrice.Equal(price))
		assert.Equal(t, 2, result.BidCount)
	})

	t.Run("losing a concurrent settlement returns the persisted winner", func(t *testing.T) {
		engine, store := newTestEngine(t)
		bids := []models.Bid{bidAt(1, 500, 0)}
		open := &models.Listing{ID: auctionID, Status: models.StatusEnded, Bids: bids}
		winner := models.User{ID: bids[0].UserID, Name: "First"}
		price := decimal.NewFromInt(500)
		settledAt := baseTime
		persisted := &models.Listing{
			ID:           auctionID,
			Status:       models.StatusEnded,
			Bids:         bids,
			WinningBidID: seq(1),
			WinnerUserID: &winner.ID,
			Winner:       &winner,
			FinalPrice:   &price,
			SettledAt:    &settledAt,
		}

		gomock.InOrder(
			store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(open, nil),
			store.EXPECT().UpdateSettlement(gomock.Any(), auctionID, gomock.Any()).Return(false, nil),
			store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(persisted, nil),
		)

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.Settled)
		assert.Equal(t, winner.ID, *result.WinnerID)
		assert.Equal(t, "First", *result.WinnerName)
	})

	t.Run("winner name failure degrades to nil", func(t *testing.T) {
		engine, store := newTestEngine(t)
		bids := []models.Bid{bidAt(1, 500, 0)}
		listing := &models.Listing{ID: auctionID, Status: models.StatusEnded, Bids: bids}
		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(listing, nil)
		store.EXPECT().UpdateSettlement(gomock.Any(), auctionID, gomock.Any()).Return(true, nil)
		store.EXPECT().GetUser(gomock.Any(), bids[0].UserID).Return(nil, ErrNotFound)

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Settled)
		assert.Equal(t, bids[0].UserID, *result.WinnerID)
		assert.Nil(t, result.WinnerName)
		assert.Equal(t, &Winner{ID: bids[0].UserID}, result.Winner())
	})

	t.Run("persist failure is returned", func(t *testing.T) {
		engine, store := newTestEngine(t)
		listing := &models.Listing{ID: auctionID, Status: models.StatusEnded}
		store.EXPECT().GetListingWithBids(gomock.Any(), auctionID).Return(listing, nil)
		store.EXPECT().UpdateSettlement(gomock.Any(), auctionID, gomock.Any()).Return(false, errors.New("deadlock"))

		result, err := engine.SettleAuctionIfNeeded(ctx, auctionID)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
