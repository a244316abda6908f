package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeTrade  Mode = "trade"
	ModeDryRun Mode = "dry-run"
)

const (
	DefaultSymbol       = "XRP/USD"
	DefaultPollInterval = 10 * time.Second
	DefaultLogPath      = "xrp_trade.log"
	DefaultBaseURL      = "https://paper-api.alpaca.markets"
)

var (
	DefaultNotional  = decimal.NewFromInt(10)
	DefaultThreshold = decimal.RequireFromString("0.01")
)

type Config struct {
	Mode          Mode
	Symbol        string
	Notional      decimal.Decimal
	Threshold     decimal.Decimal
	PollInterval  time.Duration
	KillSwitch    bool
	LogPath       string
	LogLevel      string
	DecisionsPath string
	BaseURL       string
	DataBaseURL   string
	APIKey        string
	APISecret     string
	ConfigPath    string
}

// fileConfig mirrors Config for the optional YAML file. Unset keys keep
// the defaults.
type fileConfig struct {
	Mode          *string `yaml:"mode"`
	Symbol        *string `yaml:"symbol"`
	Notional      *string `yaml:"notional"`
	Threshold     *string `yaml:"threshold"`
	PollInterval  *string `yaml:"pollInterval"`
	KillSwitch    *bool   `yaml:"killSwitch"`
	LogPath       *string `yaml:"logPath"`
	LogLevel      *string `yaml:"logLevel"`
	DecisionsPath *string `yaml:"decisionsPath"`
	BaseURL       *string `yaml:"baseURL"`
	DataBaseURL   *string `yaml:"dataBaseURL"`
	APIKey        *string `yaml:"apiKey"`
	APISecret     *string `yaml:"apiSecret"`
}

func Load() (Config, error) {
	loadDotEnvIfPresent(".env")
	return load(flag.CommandLine, os.Args[1:])
}

func defaults() Config {
	return Config{
		Mode:         ModeTrade,
		Symbol:       DefaultSymbol,
		Notional:     DefaultNotional,
		Threshold:    DefaultThreshold,
		PollInterval: DefaultPollInterval,
		LogPath:      DefaultLogPath,
		LogLevel:     zerolog.LevelInfoValue,
		BaseURL:      DefaultBaseURL,
	}
}

// load applies defaults, then the YAML file, then the environment, then
// flags explicitly set on the command line.
func load(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaults()

	var (
		configPath    string
		mode          string
		symbol        string
		notional      string
		threshold     string
		pollInterval  time.Duration
		killSwitch    bool
		logPath       string
		logLevel      string
		decisionsPath string
		baseURL       string
		dataBaseURL   string
	)
	fs.StringVar(&configPath, "config", "", "path to YAML config file")
	fs.StringVar(&mode, "mode", string(cfg.Mode), "run mode: trade or dry-run")
	fs.StringVar(&symbol, "symbol", cfg.Symbol, "crypto symbol in slash form, e.g. XRP/USD")
	fs.StringVar(&notional, "notional", cfg.Notional.String(), "dollar amount per buy order")
	fs.StringVar(&threshold, "threshold", cfg.Threshold.String(), "price change that triggers an order")
	fs.DurationVar(&pollInterval, "poll-interval", cfg.PollInterval, "delay between ticks")
	fs.BoolVar(&killSwitch, "kill-switch", false, "if true, never place orders")
	fs.StringVar(&logPath, "log-path", cfg.LogPath, "append-only status log file")
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&decisionsPath, "decisions-path", "", "path to decisions journal (disabled when empty)")
	fs.StringVar(&baseURL, "base-url", cfg.BaseURL, "trading API base URL")
	fs.StringVar(&dataBaseURL, "data-base-url", "", "market data API base URL override")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configPath != "" {
		if err := applyFile(&cfg, configPath); err != nil {
			return cfg, err
		}
		cfg.ConfigPath = configPath
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		if flagErr != nil {
			return
		}
		switch f.Name {
		case "mode":
			cfg.Mode = Mode(mode)
		case "symbol":
			cfg.Symbol = symbol
		case "notional":
			cfg.Notional, flagErr = parseDecimal("notional", notional)
		case "threshold":
			cfg.Threshold, flagErr = parseDecimal("threshold", threshold)
		case "poll-interval":
			cfg.PollInterval = pollInterval
		case "kill-switch":
			cfg.KillSwitch = killSwitch
		case "log-path":
			cfg.LogPath = logPath
		case "log-level":
			cfg.LogLevel = logLevel
		case "decisions-path":
			cfg.DecisionsPath = decisionsPath
		case "base-url":
			cfg.BaseURL = baseURL
		case "data-base-url":
			cfg.DataBaseURL = dataBaseURL
		}
	})
	if flagErr != nil {
		return cfg, flagErr
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Mode != nil {
		cfg.Mode = Mode(*fc.Mode)
	}
	if fc.Symbol != nil {
		cfg.Symbol = *fc.Symbol
	}
	if fc.Notional != nil {
		if cfg.Notional, err = parseDecimal("notional", *fc.Notional); err != nil {
			return err
		}
	}
	if fc.Threshold != nil {
		if cfg.Threshold, err = parseDecimal("threshold", *fc.Threshold); err != nil {
			return err
		}
	}
	if fc.PollInterval != nil {
		if cfg.PollInterval, err = time.ParseDuration(*fc.PollInterval); err != nil {
			return fmt.Errorf("invalid pollInterval: %w", err)
		}
	}
	if fc.KillSwitch != nil {
		cfg.KillSwitch = *fc.KillSwitch
	}
	if fc.LogPath != nil {
		cfg.LogPath = *fc.LogPath
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.DecisionsPath != nil {
		cfg.DecisionsPath = *fc.DecisionsPath
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.DataBaseURL != nil {
		cfg.DataBaseURL = *fc.DataBaseURL
	}
	if fc.APIKey != nil {
		cfg.APIKey = *fc.APIKey
	}
	if fc.APISecret != nil {
		cfg.APISecret = *fc.APISecret
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.APISecret = v
	}
	if v := os.Getenv("APCA_API_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TRADER_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("TRADER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if v := os.Getenv("TRADER_NOTIONAL"); v != "" {
		if cfg.Notional, err = parseDecimal("TRADER_NOTIONAL", v); err != nil {
			return err
		}
	}
	if v := os.Getenv("TRADER_THRESHOLD"); v != "" {
		if cfg.Threshold, err = parseDecimal("TRADER_THRESHOLD", v); err != nil {
			return err
		}
	}
	if v := os.Getenv("TRADER_POLL_INTERVAL"); v != "" {
		if cfg.PollInterval, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid TRADER_POLL_INTERVAL: %w", err)
		}
	}
	return nil
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

// loadDotEnvIfPresent never overrides variables that are already set.
func loadDotEnvIfPresent(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", path, err)
	}
}

func validate(cfg Config) error {
	if cfg.Mode != ModeTrade && cfg.Mode != ModeDryRun {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}
	if cfg.Mode == ModeTrade && (cfg.APIKey == "" || cfg.APISecret == "") {
		return fmt.Errorf("APCA_API_KEY_ID and APCA_API_SECRET_KEY are required in trade mode")
	}
	if !strings.Contains(cfg.Symbol, "/") {
		return fmt.Errorf("symbol must use slash format, e.g. XRP/USD: %q", cfg.Symbol)
	}
	if !cfg.Notional.IsPositive() {
		return fmt.Errorf("notional must be > 0")
	}
	if !cfg.Threshold.IsPositive() {
		return fmt.Errorf("threshold must be > 0")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be > 0")
	}
	if cfg.LogPath == "" {
		return fmt.Errorf("log-path must not be empty")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return nil
}

// Level falls back to info when LogLevel does not parse.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
