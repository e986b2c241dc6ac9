package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lotbid/models"
)

var testNow = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

// setupTest 建立獨立的 in-memory sqlite 資料庫
func setupTest(t *testing.T) (*gorm.DB, *Store) {
	t.Helper()
	db, err := Open(Config{
		Driver:       DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	store := NewStore(db, WithStoreClock(func() time.Time { return testNow }))
	return db, store
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createListing(t *testing.T, db *gorm.DB, status models.Status, startPrice int64) models.Listing {
	t.Helper()
	end := testNow.Add(time.Hour)
	listing := models.Listing{
		Lot:        newLot(),
		Title:      "1998 Nissan Skyline GT-R",
		Make:       "Nissan",
		Model:      "Skyline GT-R",
		Year:       1998,
		Status:     status,
		StartPrice: decimal.NewFromInt(startPrice),
		EndTime:    &end,
	}
	require.NoError(t, db.Create(&listing).Error)
	return listing
}

func createBid(t *testing.T, db *gorm.DB, listingID, userID uuid.UUID, amount int64, at time.Time) models.Bid {
	t.Helper()
	bid := models.Bid{
		ListingID: listingID,
		UserID:    userID,
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: at,
	}
	require.NoError(t, db.Create(&bid).Error)
	return bid
}
