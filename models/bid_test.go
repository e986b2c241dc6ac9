package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_HighestBid(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no bids", func(t *testing.T) {
		l := Listing{StartPrice: decimal.NewFromInt(1000)}
		assert.Nil(t, l.HighestBid())
		assert.True(t, l.CurrentPrice().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("amount then time", func(t *testing.T) {
		l := Listing{Bids: []Bid{
			{ID: 1, Amount: decimal.NewFromInt(500), CreatedAt: base.Add(2 * time.Second)},
			{ID: 2, Amount: decimal.NewFromInt(500), CreatedAt: base.Add(1 * time.Second)},
			{ID: 3, Amount: decimal.NewFromInt(400), CreatedAt: base},
		}}
		best := l.HighestBid()
		require.NotNil(t, best)
		assert.Equal(t, uint64(2), best.ID)
	})

	t.Run("same timestamp falls back to sequence", func(t *testing.T) {
		l := Listing{Bids: []Bid{
			{ID: 9, Amount: decimal.NewFromInt(700), CreatedAt: base},
			{ID: 4, Amount: decimal.NewFromInt(700), CreatedAt: base},
		}}
		assert.Equal(t, uint64(4), l.HighestBid().ID)
	})
}
