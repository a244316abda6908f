package state

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSessionStartsWithoutPrice(t *testing.T) {
	s := NewSession()
	_, ok := s.LastPrice()
	assert.False(t, ok)
}

func TestSessionRemembersLatestPrice(t *testing.T) {
	s := NewSession()
	s.SetLastPrice(decimal.RequireFromString("1.50"))
	s.SetLastPrice(decimal.RequireFromString("2.015"))

	price, ok := s.LastPrice()
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("2.015")))
}

func TestSessionCounters(t *testing.T) {
	s := NewSession()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	s.BeginTick(now)
	s.RecordFetchFailure()
	s.BeginTick(now.Add(10 * time.Second))
	s.RecordOrderSubmitted(now.Add(11 * time.Second))
	s.RecordOrderFailure()

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Ticks)
	assert.Equal(t, 1, snap.FetchFailures)
	assert.Equal(t, 1, snap.OrdersSubmitted)
	assert.Equal(t, 1, snap.OrderFailures)
	assert.Equal(t, now.Add(10*time.Second), snap.LastTickTime)
	assert.Equal(t, now.Add(11*time.Second), snap.LastTradeTime)
}
