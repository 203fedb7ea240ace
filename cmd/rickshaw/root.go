package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"github.com/tatianab/rickshaw/internal/areas"
	"github.com/tatianab/rickshaw/internal/config"
	"github.com/tatianab/rickshaw/internal/engine"
	"github.com/tatianab/rickshaw/internal/responses"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rickshaw",
		Short: "Haggle with a Bangalore auto driver",
		Long: `Haggle over an auto-rickshaw fare in Bangalore.

Tell the driver where you want to go, then bargain: name a price, push back, or agree.
The driver's opening quote and floor depend on distance, time of day, traffic, weather
and a mood you only learn at the end.

Available subcommands:
  play        Start a ride (the default)
  simulate    Play many rides with an automated passenger
  receipts    List saved rides

Examples:
  rickshaw
  rickshaw play --start indiranagar --hour 23
  rickshaw simulate --games 500 --seed 7
  rickshaw simulate --player gemini --games 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.String("start", config.DefaultStart, "Area the driver is waiting at")
	f.Int("hour", -1, "Hour of day 0-23 (default: the clock)")
	f.Uint64("seed", 0, "Seed for a reproducible ride (default: random)")
	f.Bool("plain", false, "Use line-by-line input and output instead of the full-screen interface")
	f.String("save-dir", config.DefaultSaveDir, "Directory for ride receipts (empty disables saving)")
	f.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	f.String("log-file", "", "Write logs to this file")
	f.String("gemini-model", config.DefaultGeminiModel, "Gemini model for the gemini passenger")

	play := newPlayCmd()
	cmd.AddCommand(play)
	cmd.AddCommand(newSimulateCmd())
	cmd.AddCommand(newReceiptsCmd())
	cmd.RunE = play.RunE

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes to the configured log file, or to fallback when there is none.
// The returned func closes the file.
func newLogger(cfg *config.Config, fallback io.Writer) (*slog.Logger, func(), error) {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	w, closeFn := fallback, func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closeFn = f, func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}

// newEngine loads the map and driver lines and applies start, hour and seed.
func newEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	m, err := areas.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load areas: %w", err)
	}
	bank, err := responses.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load driver lines: %w", err)
	}

	opts := []engine.Option{engine.WithStart(cfg.Start), engine.WithLogger(logger)}
	if cfg.Hour >= 0 {
		opts = append(opts, engine.WithHour(cfg.Hour))
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))))
	}
	return engine.New(m, bank, opts...), nil
}
