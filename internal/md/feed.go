// Package md reads market data for the traded symbol.
package md

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cryptotrader/internal/broker"
)

type latestTrader interface {
	GetLatestCryptoTrade(symbol string, req marketdata.GetLatestCryptoTradeRequest) (*marketdata.CryptoTrade, error)
}

type Feed struct {
	client latestTrader
	lg     zerolog.Logger
}

func NewFeed(apiKey, apiSecret, baseURL string, lg zerolog.Logger) *Feed {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
	return newFeed(client, lg)
}

func newFeed(client latestTrader, lg zerolog.Logger) *Feed {
	return &Feed{
		client: client,
		lg:     lg.With().Str("module", "md").Logger(),
	}
}

// LatestPrice returns the price of the most recent trade. Failures wrap
// broker.ErrFetch.
func (f *Feed) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("%w: latest trade %s: %w", broker.ErrFetch, symbol, err)
	}
	trade, err := f.client.GetLatestCryptoTrade(symbol, marketdata.GetLatestCryptoTradeRequest{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: latest trade %s: %w", broker.ErrFetch, symbol, err)
	}
	if trade == nil || trade.Price <= 0 {
		return decimal.Zero, fmt.Errorf("%w: latest trade %s: no usable price", broker.ErrFetch, symbol)
	}

	price := decimal.NewFromFloat(trade.Price)
	f.lg.Debug().Str("symbol", symbol).Stringer("price", price).Time("trade_time", trade.Timestamp).Msg("latest trade")
	return price, nil
}
