package engine

import "context"

// reportAccount and reportPositions print the brokerage view of the account
// at the start of each tick. Failures are reported and otherwise ignored.
func (e *Engine) reportAccount(ctx context.Context) {
	account, err := e.broker.Account(ctx)
	if err != nil {
		e.lg.Error().Err(err).Msg("Failed to fetch account info")
		return
	}
	e.lg.Info().Msgf("Account balance: $%s", account.Cash)
}

func (e *Engine) reportPositions(ctx context.Context) {
	positions, err := e.broker.Positions(ctx)
	if err != nil {
		e.lg.Error().Err(err).Msg("Failed to fetch positions")
		return
	}
	if len(positions) == 0 {
		e.lg.Info().Msg("No current holdings.")
		return
	}
	e.lg.Info().Msg("Current holdings:")
	for _, p := range positions {
		e.lg.Info().Msgf("  %s: %s @ $%s", p.Symbol, p.Qty, p.AvgEntry)
	}
}
