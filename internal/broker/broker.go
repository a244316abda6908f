package broker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Every error returned by Client wraps exactly one of these.
var (
	ErrFetch         = errors.New("fetch failed")
	ErrOrderRejected = errors.New("order rejected")
	ErrInvalidOrder  = errors.New("invalid order request")
)

// OrderRequest sizes an order either by Notional (dollars) or by Qty
// (units), never both.
type OrderRequest struct {
	Symbol        string
	Side          alpaca.Side
	Type          alpaca.OrderType
	TimeInForce   alpaca.TimeInForce
	Notional      decimal.Decimal
	Qty           decimal.Decimal
	ClientOrderID string
}

type OrderRef struct {
	ID            string
	ClientOrderID string
	Status        string
}

type Position struct {
	Symbol   string
	Qty      decimal.Decimal
	AvgEntry decimal.Decimal
}

type Account struct {
	Cash        decimal.Decimal
	Equity      decimal.Decimal
	BuyingPower decimal.Decimal
}

type Client struct {
	client *alpaca.Client
	lg     zerolog.Logger
}

func New(apiKey, apiSecret, baseURL string, lg zerolog.Logger) *Client {
	opts := alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	}
	return &Client{
		client: alpaca.NewClient(opts),
		lg:     lg.With().Str("module", "broker").Logger(),
	}
}

// MarketBuyNotional is a GTC market buy for a dollar amount.
func MarketBuyNotional(symbol string, notional decimal.Decimal) OrderRequest {
	return OrderRequest{
		Symbol:      symbol,
		Side:        alpaca.Buy,
		Type:        alpaca.Market,
		TimeInForce: alpaca.GTC,
		Notional:    notional,
	}
}

// MarketSellQty is a GTC market sell for a unit quantity.
func MarketSellQty(symbol string, qty decimal.Decimal) OrderRequest {
	return OrderRequest{
		Symbol:      symbol,
		Side:        alpaca.Sell,
		Type:        alpaca.Market,
		TimeInForce: alpaca.GTC,
		Qty:         qty,
	}
}

func (r OrderRequest) toAlpaca() (alpaca.PlaceOrderRequest, error) {
	hasNotional := !r.Notional.IsZero()
	hasQty := !r.Qty.IsZero()
	if hasNotional == hasQty {
		return alpaca.PlaceOrderRequest{}, fmt.Errorf("%w: exactly one of notional or qty must be set", ErrInvalidOrder)
	}
	if r.Notional.IsNegative() || r.Qty.IsNegative() {
		return alpaca.PlaceOrderRequest{}, fmt.Errorf("%w: size must be positive", ErrInvalidOrder)
	}

	req := alpaca.PlaceOrderRequest{
		Symbol:        r.Symbol,
		Side:          r.Side,
		Type:          r.Type,
		TimeInForce:   r.TimeInForce,
		ClientOrderID: r.ClientOrderID,
	}
	if hasNotional {
		notional := r.Notional
		req.Notional = &notional
	} else {
		qty := r.Qty
		req.Qty = &qty
	}
	return req, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (OrderRef, error) {
	orderReq, err := req.toAlpaca()
	if err != nil {
		return OrderRef{}, err
	}

	order, err := c.client.PlaceOrder(orderReq)
	if err != nil {
		c.lg.Error().Err(err).Str("side", string(req.Side)).Str("symbol", req.Symbol).
			Stringer("notional", req.Notional).Stringer("qty", req.Qty).Msg("place order failed")
		return OrderRef{}, fmt.Errorf("%w: %s %s: %w", ErrOrderRejected, req.Side, req.Symbol, err)
	}

	c.lg.Debug().Str("order_id", order.ID).Str("side", string(req.Side)).Str("symbol", req.Symbol).
		Str("status", string(order.Status)).Msg("place order success")
	return OrderRef{
		ID:            order.ID,
		ClientOrderID: order.ClientOrderID,
		Status:        string(order.Status),
	}, nil
}

// Position looks up the holding for a slash-form symbol.
func (c *Client) Position(ctx context.Context, symbol string) (Position, error) {
	pos, err := c.client.GetPosition(PositionSymbol(symbol))
	if err != nil {
		c.lg.Error().Err(err).Str("symbol", symbol).Msg("fetch position failed")
		return Position{}, fmt.Errorf("%w: position %s: %w", ErrFetch, symbol, err)
	}

	c.lg.Debug().Str("symbol", pos.Symbol).Stringer("qty", pos.Qty).Stringer("avg_entry", pos.AvgEntryPrice).Msg("position fetched")
	return Position{
		Symbol:   pos.Symbol,
		Qty:      pos.Qty,
		AvgEntry: pos.AvgEntryPrice,
	}, nil
}

func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	positions, err := c.client.GetPositions()
	if err != nil {
		c.lg.Error().Err(err).Msg("fetch positions failed")
		return nil, fmt.Errorf("%w: positions: %w", ErrFetch, err)
	}
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		out = append(out, Position{
			Symbol:   p.Symbol,
			Qty:      p.Qty,
			AvgEntry: p.AvgEntryPrice,
		})
	}
	return out, nil
}

func (c *Client) Account(ctx context.Context) (Account, error) {
	acct, err := c.client.GetAccount()
	if err != nil {
		c.lg.Error().Err(err).Msg("fetch account failed")
		return Account{}, fmt.Errorf("%w: account: %w", ErrFetch, err)
	}
	return Account{
		Cash:        acct.Cash,
		Equity:      acct.Equity,
		BuyingPower: acct.BuyingPower,
	}, nil
}

// PositionSymbol converts XRP/USD to XRPUSD; positions are keyed without
// the slash.
func PositionSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// IsNotFound reports whether err carries a 404 from the trading API.
func IsNotFound(err error) bool {
	var apiErr *alpaca.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func WaitForContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
