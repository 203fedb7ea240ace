package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"github.com/tatianab/rickshaw/internal/sim"
)

type simulateOptions struct {
	Games    int
	Player   string
	MaxTurns int
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play many rides with an automated passenger",
		Long: `Play rides against the driver with an automated passenger and print how it did.

Players:
  scripted    opens at half the quote, raises its offer each turn, gives in when bored
  gemini      a Gemini model playing the passenger (needs GEMINI_API_KEY)

Examples:
  rickshaw simulate --games 1000 --seed 42
  rickshaw simulate --player gemini --games 3 --log-level info`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Games, "games", 100, "Number of rides to play")
	cmd.Flags().StringVar(&opts.Player, "player", "scripted", "Passenger: scripted or gemini")
	cmd.Flags().IntVar(&opts.MaxTurns, "max-turns", sim.DefaultMaxTurns, "Turns before the passenger walks away")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	if opts.Games < 1 {
		return fmt.Errorf("--games must be at least 1")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	var player sim.Player
	switch opts.Player {
	case "scripted":
		var rng *rand.Rand
		if cfg.Seed != 0 {
			rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
		} else {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		player = sim.NewScripted(eng.Areas().Names(), rng)
	case "gemini":
		if err := cfg.RequireGemini(); err != nil {
			return err
		}
		g, err := sim.NewGemini(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer g.Close()
		player = g
	default:
		return fmt.Errorf("unknown player %q: use scripted or gemini", opts.Player)
	}

	runner := &sim.Runner{Engine: eng, Player: player, MaxTurns: opts.MaxTurns, Logger: logger}
	stats, err := runner.Run(cmd.Context(), opts.Games)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), stats.Table())
	return nil
}
