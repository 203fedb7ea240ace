package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tatianab/rickshaw/internal/config"
	"github.com/tatianab/rickshaw/internal/console"
	"github.com/tatianab/rickshaw/internal/engine"
	"github.com/tatianab/rickshaw/internal/report"
	"github.com/tatianab/rickshaw/internal/tui"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start a ride",
		Long: `Start a ride from the configured area.

The full-screen interface is used on a terminal; --plain, or input that is not a
terminal, switches to line-by-line play. Agreed rides are saved to --save-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPlay(cmd, cfg)
		},
	}
}

func runPlay(cmd *cobra.Command, cfg *config.Config) error {
	plain := cfg.Plain || !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd())

	// The full-screen interface owns the terminal, so its logs go nowhere unless a file is set.
	var fallback io.Writer = os.Stderr
	if !plain {
		fallback = io.Discard
	}
	logger, closeLog, err := newLogger(cfg, fallback)
	if err != nil {
		return err
	}
	defer closeLog()

	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	game, err := eng.NewGame()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var res *engine.Result
	if plain {
		res, err = console.Run(cmd.Context(), game, cmd.InOrStdin(), out)
	} else {
		res, err = tui.Run(game)
		if err == nil && res != nil {
			fmt.Fprint(out, report.Summary(res))
		}
	}
	if err != nil {
		return err
	}
	if res == nil || cfg.SaveDir == "" {
		return nil
	}

	receipt, err := game.Receipt(time.Now())
	if err != nil {
		return err
	}
	path, err := receipt.Save(cfg.SaveDir)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	logger.Info("receipt saved", "path", path, "id", receipt.ID)
	fmt.Fprintf(out, "\n🧾 Receipt saved to %s\n", path)
	return nil
}
