package strategy

import (
	"time"

	"github.com/shopspring/decimal"
)

type Action string

const (
	Hold Action = "HOLD"
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// MarketSnapshot is what a decision sees: the price just observed and the
// one observed on the previous tick.
type MarketSnapshot struct {
	Timestamp time.Time
	Price     decimal.Decimal
	LastPrice decimal.Decimal
}

// TradeIntent is sized by Notional for buys. A sell always exits the full
// position, which is resolved at submission time.
type TradeIntent struct {
	Action   Action
	Notional decimal.Decimal
	Delta    decimal.Decimal
	Reason   string
}

type Strategy interface {
	Decide(snapshot MarketSnapshot) TradeIntent
}
