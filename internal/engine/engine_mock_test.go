package engine

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"cryptotrader/internal/broker"
)

type brokerMock struct {
	account      broker.Account
	accountErr   error
	positions    []broker.Position
	positionsErr error
	position     broker.Position
	positionErr  error
	orderErr     error

	positionCalls []string
	orders        []broker.OrderRequest
}

func (m *brokerMock) Account(ctx context.Context) (broker.Account, error) {
	if m.accountErr != nil {
		return broker.Account{}, m.accountErr
	}
	return m.account, nil
}

func (m *brokerMock) Positions(ctx context.Context) ([]broker.Position, error) {
	if m.positionsErr != nil {
		return nil, m.positionsErr
	}
	return m.positions, nil
}

func (m *brokerMock) Position(ctx context.Context, symbol string) (broker.Position, error) {
	m.positionCalls = append(m.positionCalls, symbol)
	if m.positionErr != nil {
		return broker.Position{}, m.positionErr
	}
	return m.position, nil
}

func (m *brokerMock) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderRef, error) {
	m.orders = append(m.orders, req)
	if m.orderErr != nil {
		return broker.OrderRef{}, m.orderErr
	}
	return broker.OrderRef{ID: "order-" + req.ClientOrderID, ClientOrderID: req.ClientOrderID, Status: "accepted"}, nil
}

// feedMock replays prices in order; an empty string is a fetch failure.
type feedMock struct {
	prices []string
	calls  int
	onCall func(n int)
}

var errFeedDown = errors.New("feed down")

func (m *feedMock) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	m.calls++
	if m.onCall != nil {
		m.onCall(m.calls)
	}
	if m.calls > len(m.prices) || m.prices[m.calls-1] == "" {
		return decimal.Zero, errFeedDown
	}
	return decimal.RequireFromString(m.prices[m.calls-1]), nil
}
