package engine

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cryptotrader/internal/strategy"
)

type Decision struct {
	RunID         string          `json:"run_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	LastPrice     decimal.Decimal `json:"last_price"`
	Delta         decimal.Decimal `json:"delta"`
	Intent        strategy.Action `json:"intent"`
	Reason        string          `json:"reason,omitempty"`
	Result        string          `json:"result"`
	OrderID       string          `json:"order_id,omitempty"`
	ClientOrderID string          `json:"client_order_id,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// DecisionLogger appends one JSON line per decision. A nil *DecisionLogger
// is valid and discards everything.
type DecisionLogger struct {
	runID  string
	file   *os.File
	writer *bufio.Writer
	lg     zerolog.Logger
	mu     sync.Mutex
}

func NewDecisionLogger(path string, runID string, lg zerolog.Logger) (*DecisionLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &DecisionLogger{
		runID:  runID,
		file:   file,
		writer: bufio.NewWriter(file),
		lg:     lg.With().Str("module", "decisions").Logger(),
	}, nil
}

func (d *DecisionLogger) Append(decision Decision) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	decision.RunID = d.runID
	payload, err := json.Marshal(decision)
	if err != nil {
		d.lg.Error().Err(err).Msg("failed to marshal decision")
		return
	}
	if _, err := d.writer.Write(append(payload, '\n')); err != nil {
		d.lg.Error().Err(err).Msg("failed to write decision")
		return
	}
	if err := d.writer.Flush(); err != nil {
		d.lg.Error().Err(err).Msg("failed to flush decision log")
	}
}

func (d *DecisionLogger) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writer.Flush(); err != nil {
		_ = d.file.Close()
		return err
	}
	return d.file.Close()
}
