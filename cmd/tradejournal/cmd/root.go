package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A futures trading journal",
	Long: `Tradejournal records futures trades and reviews them.

It provides tools for:
  - Importing broker CSV exports (Tradovate, NinjaTrader, generic)
  - Manual trade entry, soft delete and sharing
  - Performance analytics and Org-mode reviews
  - Personal discipline rules with a daily checklist
  - Risk-based position sizing
  - A JSON HTTP API for dashboards

Configuration is read from --config (YAML or JSON), .env and TJ_* variables.`,
	SilenceUsage: true,
}

var (
	cfgFile      string
	dbFlag       string
	logLevelFlag string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "tradejournal.yaml", "config file (YAML or JSON); defaults apply when missing")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "database DSN, overrides database.dsn")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
}

// app is what every command needs: config, logger and an open store.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *journal.Store
	loc   *time.Location
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbFlag != "" {
		cfg.Database.DSN = dbFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	return cfg, cfg.Validate()
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	loc, err := config.Location(cfg.Analytics.Timezone)
	if err != nil {
		return nil, err
	}
	store, err := journal.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.Debug("store opened", zap.String("driver", store.Driver()))
	return &app{cfg: cfg, log: log, store: store, loc: loc}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	_ = a.log.Sync()
}

func (a *app) user() string { return a.cfg.User.ID }

// dayRange turns optional YYYY-MM-DD bounds into [from, to) in loc. The
// to day is included.
func dayRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	var start, end time.Time
	if from != "" {
		t, err := time.ParseInLocation(journal.DayLayout, from, loc)
		if err != nil {
			return start, end, fmt.Errorf("from: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation(journal.DayLayout, to, loc)
		if err != nil {
			return start, end, fmt.Errorf("to: %w", err)
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}
