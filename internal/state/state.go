package state

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a copy of the session counters plus the remembered price.
type Snapshot struct {
	LastPrice       decimal.Decimal
	HasLastPrice    bool
	Ticks           int
	FetchFailures   int
	OrdersSubmitted int
	OrderFailures   int
	LastTickTime    time.Time
	LastTradeTime   time.Time
}

// Session is owned by the strategy loop and only touched from its
// goroutine. Nothing here is persisted; a restart begins with no price.
type Session struct {
	snapshot Snapshot
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) LastPrice() (decimal.Decimal, bool) {
	return s.snapshot.LastPrice, s.snapshot.HasLastPrice
}

func (s *Session) SetLastPrice(price decimal.Decimal) {
	s.snapshot.LastPrice = price
	s.snapshot.HasLastPrice = true
}

func (s *Session) BeginTick(now time.Time) {
	s.snapshot.Ticks++
	s.snapshot.LastTickTime = now
}

func (s *Session) RecordFetchFailure() {
	s.snapshot.FetchFailures++
}

func (s *Session) RecordOrderSubmitted(now time.Time) {
	s.snapshot.OrdersSubmitted++
	s.snapshot.LastTradeTime = now
}

func (s *Session) RecordOrderFailure() {
	s.snapshot.OrderFailures++
}

func (s *Session) Snapshot() Snapshot {
	return s.snapshot
}
