package database

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lotbid/auction"
	"lotbid/models"
)

func TestStore_GetListingWithBids(t *testing.T) {
	ctx := context.Background()

	t.Run("missing listing", func(t *testing.T) {
		_, store := setupTest(t)
		_, err := store.GetListingWithBids(ctx, uuid.New())
		assert.ErrorIs(t, err, auction.ErrNotFound)
	})

	t.Run("bids and winner are loaded", func(t *testing.T) {
		db, store := setupTest(t)
		alice := createUser(t, db, "Alice")
		bob := createUser(t, db, "Bob")
		listing := createListing(t, db, models.StatusEnded, 1000)
		first := createBid(t, db, listing.ID, alice.ID, 1200, testNow)
		second := createBid(t, db, listing.ID, bob.ID, 1500, testNow.Add(time.Second))
		require.NoError(t, db.Model(&listing).Updates(map[string]any{
			"winning_bid_id": second.ID,
			"winner_user_id": bob.ID,
			"final_price":    decimal.NewFromInt(1500),
			"settled_at":     testNow,
		}).Error)

		loaded, err := store.GetListingWithBids(ctx, listing.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Bids, 2)
		assert.Equal(t, first.ID, loaded.Bids[0].ID)
		assert.True(t, loaded.Bids[1].Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, int64(2), loaded.BidCount)
		require.NotNil(t, loaded.Winner)
		assert.Equal(t, "Bob", loaded.Winner.Name)
		assert.True(t, loaded.Settled())
		assert.Equal(t, second.ID, loaded.WinningBid().ID)
	})
}

func TestStore_CreateListing(t *testing.T) {
	ctx := context.Background()

	t.Run("raw fields", func(t *testing.T) {
		_, store := setupTest(t)
		listing, err := store.CreateListing(ctx, auction.ListingInput{
			Title:       "  1994 Toyota Supra  ",
			StartingBid: decimal.NewFromInt(1000),
			Make:        "Toyota",
			Model:       "Supra",
			Year:        1994,
			Mileage:     82000,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, listing.ID)
		assert.Regexp(t, `^LOT-[0-9A-F]{8}$`, listing.Lot)
		assert.Equal(t, "1994 Toyota Supra", listing.Title)
		assert.Equal(t, models.StatusDraft, listing.Status)

		loaded, err := store.GetListingWithBids(ctx, listing.ID)
		require.NoError(t, err)
		assert.True(t, loaded.StartPrice.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, 82000, loaded.Mileage)
	})

	t.Run("vehicle snapshot is copied", func(t *testing.T) {
		db, store := setupTest(t)
		vehicle := models.Vehicle{
			Make:    "Honda",
			Model:   "NSX",
			Year:    1991,
			Mileage: 54000,
			Engine:  "3.0L V6",
			Images:  datatypes.JSONSlice[string]{"https://cdn.example.com/nsx-1.jpg", "https://cdn.example.com/nsx-2.jpg"},
		}
		require.NoError(t, db.Create(&vehicle).Error)

		listing, err := store.CreateListing(ctx, auction.ListingInput{
			Title:       "Honda NSX",
			StartingBid: decimal.Zero,
			VehicleID:   &vehicle.ID,
			Status:      models.StatusScheduled,
		})
		require.NoError(t, err)
		assert.Equal(t, "Honda", listing.Make)
		assert.Equal(t, "NSX", listing.Model)
		assert.Equal(t, 1991, listing.Year)
		assert.Equal(t, "3.0L V6", listing.Engine)
		assert.Equal(t, "https://cdn.example.com/nsx-1.jpg", listing.Image)
		assert.Equal(t, models.StatusScheduled, listing.Status)

		// 來源車輛修改後拍賣資料不變
		require.NoError(t, db.Model(&vehicle).Update("make", "Acura").Error)
		loaded, err := store.GetListingWithBids(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Honda", loaded.Make)
	})

	tests := []struct {
		name  string
		input auction.ListingInput
		field string
	}{
		{
			name:  "empty title",
			input: auction.ListingInput{Title: "   ", Make: "Mazda", Model: "RX-7", Year: 1993},
			field: "title",
		},
		{
			name:  "negative starting bid",
			input: auction.ListingInput{Title: "RX-7", StartingBid: decimal.NewFromInt(-1), Make: "Mazda", Model: "RX-7", Year: 1993},
			field: "startingBid",
		},
		{
			name:  "year before 1900",
			input: auction.ListingInput{Title: "Old", Make: "Ford", Model: "T", Year: 1899},
			field: "year",
		},
		{
			name:  "missing make without vehicle",
			input: auction.ListingInput{Title: "RX-7", Model: "RX-7", Year: 1993},
			field: "make",
		},
		{
			name:  "missing year without vehicle",
			input: auction.ListingInput{Title: "RX-7", Make: "Mazda", Model: "RX-7"},
			field: "year",
		},
		{
			name:  "unknown vehicle",
			input: auction.ListingInput{Title: "Ghost", VehicleID: ptr(uuid.New())},
			field: "vehicleId",
		},
		{
			name:  "live status on creation",
			input: auction.ListingInput{Title: "RX-7", Make: "Mazda", Model: "RX-7", Year: 1993, Status: models.StatusLive},
			field: "status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, store := setupTest(t)
			_, err := store.CreateListing(ctx, tt.input)
			require.ErrorIs(t, err, auction.ErrValidation)
			var validationErr *auction.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestStore_ListListings(t *testing.T) {
	ctx := context.Background()
	db, store := setupTest(t)
	user := createUser(t, db, "Carol")

	var created []models.Listing
	for i, status := range []models.Status{models.StatusDraft, models.StatusScheduled, models.StatusLive, models.StatusLive, models.StatusEnded} {
		listing := createListing(t, db, status, 100)
		require.NoError(t, db.Model(&listing).Update("created_at", testNow.Add(time.Duration(i)*time.Minute)).Error)
		created = append(created, listing)
	}
	createBid(t, db, created[2].ID, user.ID, 150, testNow)
	createBid(t, db, created[2].ID, user.ID, 175, testNow.Add(time.Second))

	t.Run("drafts are hidden and newest comes first", func(t *testing.T) {
		listings, total, err := store.ListListings(ctx, auction.ListQuery{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, listings, 4)
		assert.Equal(t, created[4].ID, listings[0].ID)
		assert.Equal(t, created[1].ID, listings[3].ID)
		assert.Equal(t, int64(2), listings[2].BidCount)
		assert.True(t, listings[2].CurrentPrice().Equal(decimal.NewFromInt(175)))
		assert.True(t, listings[0].CurrentPrice().Equal(decimal.NewFromInt(100)))
	})

	t.Run("admins see drafts", func(t *testing.T) {
		_, total, err := store.ListListings(ctx, auction.ListQuery{Page: 1, PageSize: 10, IncludeDrafts: true})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("status filter and pagination", func(t *testing.T) {
		listings, total, err := store.ListListings(ctx, auction.ListQuery{Page: 2, PageSize: 1, Status: models.StatusLive})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, listings, 1)
		assert.Equal(t, created[2].ID, listings[0].ID)
	})

	t.Run("page past the end", func(t *testing.T) {
		listings, total, err := store.ListListings(ctx, auction.ListQuery{Page: 9, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Empty(t, listings)
	})
}

func TestStore_UpdateSettlement(t *testing.T) {
	ctx := context.Background()
	db, store := setupTest(t)
	user := createUser(t, db, "Dan")
	listing := createListing(t, db, models.StatusEnded, 100)
	bid := createBid(t, db, listing.ID, user.ID, 300, testNow)
	price := decimal.NewFromInt(300)

	applied, err := store.UpdateSettlement(ctx, listing.ID, auction.SettlementUpdate{
		WinningBidID: &bid.ID,
		WinnerUserID: &user.ID,
		FinalPrice:   &price,
		SettledAt:    testNow,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	// 第二次寫入不會覆蓋
	applied, err = store.UpdateSettlement(ctx, listing.ID, auction.SettlementUpdate{SettledAt: testNow.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, applied)

	loaded, err := store.GetListingWithBids(ctx, listing.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.WinningBidID)
	assert.Equal(t, bid.ID, *loaded.WinningBidID)
	assert.True(t, loaded.FinalPrice.Equal(price))

	t.Run("not ended listing is never settled", func(t *testing.T) {
		live := createListing(t, db, models.StatusLive, 100)
		applied, err := store.UpdateSettlement(ctx, live.ID, auction.SettlementUpdate{SettledAt: testNow})
		require.NoError(t, err)
		assert.False(t, applied)
	})
}

func TestStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	db, store := setupTest(t)
	listing := createListing(t, db, models.StatusScheduled, 100)
	start := testNow

	updated, err := store.UpdateStatus(ctx, listing.ID, models.StatusScheduled, auction.StatusChange{To: models.StatusLive, StartTime: &start})
	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, updated.Status)
	require.NotNil(t, updated.StartTime)
	assert.True(t, start.Equal(*updated.StartTime))

	_, err = store.UpdateStatus(ctx, listing.ID, models.StatusScheduled, auction.StatusChange{To: models.StatusEnded})
	assert.ErrorIs(t, err, auction.ErrPreconditionFailed)

	_, err = store.UpdateStatus(ctx, uuid.New(), models.StatusScheduled, auction.StatusChange{To: models.StatusLive})
	assert.ErrorIs(t, err, auction.ErrNotFound)
}

func TestStore_PlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("missing listing reaches admit with a nil listing", func(t *testing.T) {
		_, store := setupTest(t)
		var seen auction.BidSnapshot
		_, err := store.PlaceBid(ctx, uuid.New(), func(snapshot auction.BidSnapshot) (*auction.BidDraft, error) {
			seen = snapshot
			return nil, &auction.BidRejection{Reason: auction.ReasonAuctionNotLive, Message: "missing"}
		})
		_, ok := auction.AsRejection(err)
		assert.True(t, ok)
		assert.Nil(t, seen.Listing)
	})

	t.Run("snapshot carries the highest bid and count", func(t *testing.T) {
		db, store := setupTest(t)
		alice := createUser(t, db, "Alice")
		bob := createUser(t, db, "Bob")
		listing := createListing(t, db, models.StatusLive, 1000)
		createBid(t, db, listing.ID, alice.ID, 1500, testNow.Add(-2*time.Second))
		earliest := createBid(t, db, listing.ID, bob.ID, 1500, testNow.Add(-3*time.Second))
		createBid(t, db, listing.ID, alice.ID, 1200, testNow.Add(-4*time.Second))

		receipt, err := store.PlaceBid(ctx, listing.ID, func(snapshot auction.BidSnapshot) (*auction.BidDraft, error) {
			require.NotNil(t, snapshot.Listing)
			require.NotNil(t, snapshot.Highest)
			assert.Equal(t, earliest.ID, snapshot.Highest.ID)
			assert.Equal(t, int64(3), snapshot.BidCount)
			assert.Equal(t, testNow, snapshot.Now)
			return &auction.BidDraft{UserID: bob.ID, Amount: decimal.NewFromInt(1600)}, nil
		})
		require.NoError(t, err)
		assert.NotZero(t, receipt.Bid.ID)
		assert.Equal(t, int64(4), receipt.BidCount)
		assert.False(t, receipt.Extended)
		assert.True(t, testNow.Equal(receipt.Bid.CreatedAt))
	})

	t.Run("bid time is read after the listing is locked", func(t *testing.T) {
		db, _ := setupTest(t)
		user := createUser(t, db, "Dan")
		listing := createListing(t, db, models.StatusLive, 1000)
		var locked atomic.Bool
		require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:listing_locked", func(tx *gorm.DB) {
			if tx.Statement.Table == "listings" {
				locked.Store(true)
			}
		}))
		afterLock := testNow.Add(time.Minute)
		store := NewStore(db, WithStoreClock(func() time.Time {
			return lo.Ternary(locked.Load(), afterLock, testNow)
		}))

		receipt, err := store.PlaceBid(ctx, listing.ID, func(snapshot auction.BidSnapshot) (*auction.BidDraft, error) {
			assert.Equal(t, afterLock, snapshot.Now)
			return &auction.BidDraft{UserID: user.ID, Amount: decimal.NewFromInt(1100)}, nil
		})
		require.NoError(t, err)
		assert.True(t, afterLock.Equal(receipt.Bid.CreatedAt))
	})

	t.Run("rejection writes nothing", func(t *testing.T) {
		db, store := setupTest(t)
		listing := createListing(t, db, models.StatusLive, 1000)
		_, err := store.PlaceBid(ctx, listing.ID, func(auction.BidSnapshot) (*auction.BidDraft, error) {
			return nil, &auction.BidRejection{Reason: auction.ReasonBidTooLow, Message: "too low"}
		})
		rejection, ok := auction.AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, auction.ReasonBidTooLow, rejection.Reason)

		var count int64
		require.NoError(t, db.Model(&models.Bid{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("extension is persisted with the bid", func(t *testing.T) {
		db, store := setupTest(t)
		user := createUser(t, db, "Eve")
		listing := createListing(t, db, models.StatusLive, 10)
		extended := testNow.Add(2 * time.Hour)

		receipt, err := store.PlaceBid(ctx, listing.ID, func(auction.BidSnapshot) (*auction.BidDraft, error) {
			return &auction.BidDraft{UserID: user.ID, Amount: decimal.NewFromInt(20), ExtendEndTime: &extended}, nil
		})
		require.NoError(t, err)
		assert.True(t, receipt.Extended)

		loaded, err := store.GetListingWithBids(ctx, listing.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded.EndTime)
		assert.True(t, extended.Equal(*loaded.EndTime))
	})
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	_, store := setupTest(t)
	id := uuid.New()

	_, err := store.GetUser(ctx, id)
	assert.ErrorIs(t, err, auction.ErrNotFound)

	require.NoError(t, store.UpsertUser(ctx, models.User{ID: id, Name: "Frank", Role: models.RoleUser}))
	require.NoError(t, store.UpsertUser(ctx, models.User{ID: id, Name: "Frank Castle", Role: models.RoleAdmin}))

	user, err := store.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Frank Castle", user.Name)
	assert.Equal(t, models.RoleAdmin, user.Role)
}
