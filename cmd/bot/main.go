package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"cryptotrader/internal/broker"
	"cryptotrader/internal/config"
	"cryptotrader/internal/engine"
	"cryptotrader/internal/logging"
	"cryptotrader/internal/md"
	"cryptotrader/internal/risk"
	"cryptotrader/internal/state"
	"cryptotrader/internal/strategy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	lg, logFile, err := logging.New(cfg.LogPath, cfg.Level())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	runID := generateRunID()
	var decisions *engine.DecisionLogger
	if cfg.DecisionsPath != "" {
		decisions, err = engine.NewDecisionLogger(cfg.DecisionsPath, runID, lg)
		if err != nil {
			return fmt.Errorf("decision logger error: %w", err)
		}
		defer func() {
			if err := decisions.Close(); err != nil {
				lg.Error().Err(err).Msg("failed to close decision logger")
			}
		}()
	}

	brokerClient := broker.New(cfg.APIKey, cfg.APISecret, cfg.BaseURL, lg)
	feed := md.NewFeed(cfg.APIKey, cfg.APISecret, cfg.DataBaseURL, lg)
	strat := strategy.NewThreshold(cfg.Threshold, cfg.Notional)
	engineImpl := engine.New(cfg, runID, strat, risk.NewGate(lg), brokerClient, feed, state.NewSession(), decisions, lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	logStartup(lg, cfg, runID)
	if err := engineImpl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logStartup(lg zerolog.Logger, cfg config.Config, runID string) {
	lg.Info().
		Str("run_id", runID).
		Str("mode", string(cfg.Mode)).
		Str("symbol", cfg.Symbol).
		Stringer("notional", cfg.Notional).
		Stringer("threshold", cfg.Threshold).
		Dur("poll_interval", cfg.PollInterval).
		Bool("kill_switch", cfg.KillSwitch).
		Str("base_url", cfg.BaseURL).
		Msg("starting bot")
}

func generateRunID() string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return timestamp
	}
	return timestamp + "-" + hex.EncodeToString(randomBytes)
}
