package risk

import (
	"errors"

	"github.com/rs/zerolog"

	"cryptotrader/internal/strategy"
)

var (
	ErrKillSwitch      = errors.New("kill_switch_enabled")
	ErrInvalidNotional = errors.New("invalid_notional")
)

type RiskContext struct {
	KillSwitch bool
}

type ApprovedIntent struct {
	Intent strategy.TradeIntent
	Reason string
}

// Gate never looks at holdings; a sell with nothing held is left to fail
// at the broker.
type Gate struct {
	lg zerolog.Logger
}

func NewGate(lg zerolog.Logger) Gate {
	return Gate{lg: lg.With().Str("module", "risk").Logger()}
}

func (g Gate) Evaluate(intent strategy.TradeIntent, ctx RiskContext) (ApprovedIntent, error) {
	if intent.Action == strategy.Hold {
		return ApprovedIntent{Intent: intent, Reason: "hold"}, nil
	}

	if ctx.KillSwitch {
		g.lg.Info().Str("intent", string(intent.Action)).Str("reason", ErrKillSwitch.Error()).Msg("risk rejected")
		return ApprovedIntent{}, ErrKillSwitch
	}
	if intent.Action == strategy.Buy && !intent.Notional.IsPositive() {
		g.lg.Info().Stringer("notional", intent.Notional).Str("reason", ErrInvalidNotional.Error()).Msg("risk rejected")
		return ApprovedIntent{}, ErrInvalidNotional
	}

	g.lg.Debug().Str("intent", string(intent.Action)).Str("reason", intent.Reason).Msg("risk approved")
	return ApprovedIntent{Intent: intent, Reason: "approved"}, nil
}
