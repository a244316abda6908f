package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestThresholdDecide(t *testing.T) {
	strat := NewThreshold(d("0.01"), d("10"))

	cases := []struct {
		name   string
		last   string
		price  string
		action Action
		delta  string
	}{
		{"rise above threshold sells", "2.00", "2.02", Sell, "0.02"},
		{"rise exactly at threshold sells", "2.00", "2.01", Sell, "0.01"},
		{"fall exactly at threshold buys", "2.00", "1.99", Buy, "-0.01"},
		{"fall below threshold buys", "2.00", "1.90", Buy, "-0.10"},
		{"small fall holds", "2.02", "2.015", Hold, "-0.005"},
		{"small rise holds", "2.00", "2.009", Hold, "0.009"},
		{"unchanged holds", "2.00", "2.00", Hold, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent := strat.Decide(MarketSnapshot{Price: d(tc.price), LastPrice: d(tc.last)})
			assert.Equal(t, tc.action, intent.Action)
			assert.True(t, intent.Delta.Equal(d(tc.delta)), "delta %s", intent.Delta)
		})
	}
}

func TestThresholdBuyUsesNotionalAndSellHasNone(t *testing.T) {
	strat := NewThreshold(d("0.01"), d("10"))

	buy := strat.Decide(MarketSnapshot{Price: d("1.5"), LastPrice: d("1.6")})
	assert.Equal(t, Buy, buy.Action)
	assert.True(t, buy.Notional.Equal(d("10")))

	sell := strat.Decide(MarketSnapshot{Price: d("1.7"), LastPrice: d("1.6")})
	assert.Equal(t, Sell, sell.Action)
	assert.True(t, sell.Notional.IsZero())
}
