package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cryptotrader/internal/broker"
	"cryptotrader/internal/config"
	"cryptotrader/internal/risk"
	"cryptotrader/internal/state"
	"cryptotrader/internal/strategy"
)

const (
	ResultPriceUnavailable = "price_unavailable"
	ResultInitialized      = "initialized"
	ResultHold             = "hold"
	ResultRejected         = "rejected"
	ResultDryRun           = "dry_run"
	ResultOrderSubmitted   = "order_submitted"
	ResultOrderFailed      = "order_failed"
)

type Broker interface {
	Account(ctx context.Context) (broker.Account, error)
	Positions(ctx context.Context) ([]broker.Position, error)
	Position(ctx context.Context, symbol string) (broker.Position, error)
	PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderRef, error)
}

type PriceFeed interface {
	LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// TickResult describes what one tick did.
type TickResult struct {
	Result string
	Price  decimal.Decimal
	Intent strategy.TradeIntent
	Order  broker.OrderRef
	Err    error
}

type Engine struct {
	cfg         config.Config
	strategy    strategy.Strategy
	gate        risk.Gate
	broker      Broker
	feed        PriceFeed
	session     *state.Session
	decisions   *DecisionLogger
	lg          zerolog.Logger
	runID       string
	orderSeqNum uint64
	now         func() time.Time
}

func New(cfg config.Config, runID string, strat strategy.Strategy, gate risk.Gate, brokerClient Broker, feed PriceFeed, session *state.Session, decisions *DecisionLogger, lg zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		strategy:  strat,
		gate:      gate,
		broker:    brokerClient,
		feed:      feed,
		session:   session,
		decisions: decisions,
		lg:        lg.With().Str("module", "engine").Logger(),
		runID:     runID,
		now:       time.Now,
	}
}

// Run ticks until ctx is cancelled. Cancellation is observed between ticks;
// the returned error is ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	e.lg.Info().Str("symbol", e.cfg.Symbol).Str("mode", string(e.cfg.Mode)).Msgf("Starting real-time %s strategy", e.cfg.Symbol)

	for ctx.Err() == nil {
		e.Tick(ctx)
		if err := broker.WaitForContext(ctx, e.cfg.PollInterval); err != nil {
			break
		}
	}

	snap := e.session.Snapshot()
	e.lg.Info().
		Int("ticks", snap.Ticks).
		Int("orders_submitted", snap.OrdersSubmitted).
		Int("order_failures", snap.OrderFailures).
		Int("fetch_failures", snap.FetchFailures).
		Msg("Script interrupted. Exiting...")
	return ctx.Err()
}

// Tick runs one fetch, decide, act cycle. No error escapes a tick.
func (e *Engine) Tick(ctx context.Context) TickResult {
	now := e.now().UTC()
	e.session.BeginTick(now)

	e.reportAccount(ctx)
	e.reportPositions(ctx)

	price, err := e.feed.LatestPrice(ctx, e.cfg.Symbol)
	if err != nil {
		e.session.RecordFetchFailure()
		e.lg.Error().Err(err).Msg("Failed to fetch trade")
		return TickResult{Result: ResultPriceUnavailable, Err: err}
	}
	e.lg.Info().Msgf("Current %s price: $%s", e.cfg.Symbol, price)

	lastPrice, ok := e.session.LastPrice()
	if !ok {
		e.session.SetLastPrice(price)
		e.lg.Info().Msg("Initial price set. Waiting for next cycle.")
		e.decisions.Append(Decision{
			Timestamp: now,
			Symbol:    e.cfg.Symbol,
			Price:     price,
			Intent:    strategy.Hold,
			Result:    ResultInitialized,
		})
		return TickResult{Result: ResultInitialized, Price: price}
	}

	intent := e.strategy.Decide(strategy.MarketSnapshot{
		Timestamp: now,
		Price:     price,
		LastPrice: lastPrice,
	})
	result := e.act(ctx, intent)
	result.Price = price
	result.Intent = intent

	// the remembered price moves on whatever the outcome
	e.session.SetLastPrice(price)

	decision := Decision{
		Timestamp:     now,
		Symbol:        e.cfg.Symbol,
		Price:         price,
		LastPrice:     lastPrice,
		Delta:         intent.Delta,
		Intent:        intent.Action,
		Reason:        intent.Reason,
		Result:        result.Result,
		OrderID:       result.Order.ID,
		ClientOrderID: result.Order.ClientOrderID,
	}
	if result.Err != nil {
		decision.Error = result.Err.Error()
	}
	e.decisions.Append(decision)
	return result
}

func (e *Engine) act(ctx context.Context, intent strategy.TradeIntent) TickResult {
	switch intent.Action {
	case strategy.Sell:
		e.lg.Info().Msgf("Price increased by %s. Selling.", intent.Delta.StringFixed(5))
	case strategy.Buy:
		e.lg.Info().Msgf("Price decreased by %s. Buying.", intent.Delta.Abs().StringFixed(5))
	default:
		e.lg.Info().Msgf("Price change %s is too small. No action.", intent.Delta.StringFixed(5))
		return TickResult{Result: ResultHold}
	}

	if _, err := e.gate.Evaluate(intent, risk.RiskContext{KillSwitch: e.cfg.KillSwitch}); err != nil {
		e.lg.Warn().Str("intent", string(intent.Action)).Str("reject", err.Error()).Msg("Order blocked")
		return TickResult{Result: ResultRejected, Err: err}
	}

	if e.cfg.Mode == config.ModeDryRun {
		e.lg.Info().Str("intent", string(intent.Action)).Msg("Dry run, no order submitted")
		return TickResult{Result: ResultDryRun}
	}

	if intent.Action == strategy.Buy {
		return e.buy(ctx, intent.Notional)
	}
	return e.sell(ctx)
}

func (e *Engine) buy(ctx context.Context, notional decimal.Decimal) TickResult {
	req := broker.MarketBuyNotional(e.cfg.Symbol, notional)
	req.ClientOrderID = e.nextClientOrderID()

	ref, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		e.session.RecordOrderFailure()
		e.lg.Error().Err(err).Msg("Buy failed")
		return TickResult{Result: ResultOrderFailed, Err: err}
	}

	e.session.RecordOrderSubmitted(e.now().UTC())
	e.lg.Info().Str("order_id", ref.ID).Msgf("Buy order submitted for $%s of %s", notional, e.cfg.Symbol)
	return TickResult{Result: ResultOrderSubmitted, Order: ref}
}

// sell exits the whole position. A failed lookup, including a missing
// position, counts as a failed order.
func (e *Engine) sell(ctx context.Context) TickResult {
	pos, err := e.broker.Position(ctx, e.cfg.Symbol)
	if err != nil {
		e.session.RecordOrderFailure()
		e.lg.Error().Err(err).Msg("Sell failed")
		return TickResult{Result: ResultOrderFailed, Err: err}
	}

	req := broker.MarketSellQty(e.cfg.Symbol, pos.Qty)
	req.ClientOrderID = e.nextClientOrderID()

	ref, err := e.broker.PlaceOrder(ctx, req)
	if err != nil {
		e.session.RecordOrderFailure()
		e.lg.Error().Err(err).Msg("Sell failed")
		return TickResult{Result: ResultOrderFailed, Err: err}
	}

	e.session.RecordOrderSubmitted(e.now().UTC())
	e.lg.Info().Str("order_id", ref.ID).Stringer("qty", pos.Qty).Msgf("Sell order submitted for all %s holdings", e.cfg.Symbol)
	return TickResult{Result: ResultOrderSubmitted, Order: ref}
}

func (e *Engine) nextClientOrderID() string {
	e.orderSeqNum++
	return fmt.Sprintf("%s-%d", e.runID, e.orderSeqNum)
}
