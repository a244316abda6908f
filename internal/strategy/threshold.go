package strategy

import "github.com/shopspring/decimal"

// Threshold sells everything on a rise of at least Threshold since the last
// tick and buys Notional dollars on a fall of at least Threshold. Both
// boundaries trigger.
type Threshold struct {
	Threshold decimal.Decimal
	Notional  decimal.Decimal
}

func NewThreshold(threshold, notional decimal.Decimal) Threshold {
	return Threshold{Threshold: threshold, Notional: notional}
}

func (s Threshold) Decide(snapshot MarketSnapshot) TradeIntent {
	delta := snapshot.Price.Sub(snapshot.LastPrice)

	if delta.GreaterThanOrEqual(s.Threshold) {
		return TradeIntent{Action: Sell, Delta: delta, Reason: "price_rose"}
	}
	if delta.LessThanOrEqual(s.Threshold.Neg()) {
		return TradeIntent{Action: Buy, Notional: s.Notional, Delta: delta, Reason: "price_fell"}
	}
	return TradeIntent{Action: Hold, Delta: delta, Reason: "within_threshold"}
}
