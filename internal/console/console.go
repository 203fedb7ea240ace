// Package console plays a game over plain line-oriented input and output,
// for pipes and terminals that cannot host the full-screen interface.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tatianab/rickshaw/internal/engine"
	"github.com/tatianab/rickshaw/internal/report"
)

const (
	playerPrompt = "You: "
	driverPrefix = "AI: "
)

// Run plays game to completion, reading one line per turn from in.
// It returns the scored result when a fare was agreed, and a nil result when the
// player left or input ran out.
func Run(ctx context.Context, game *engine.Game, in io.Reader, out io.Writer) (*engine.Result, error) {
	w := bufio.NewWriter(out)
	defer w.Flush()

	fmt.Fprintln(w, report.Banner(game.Session().Location.Name))
	fmt.Fprintln(w, driverPrefix+game.Opening())

	scanner := bufio.NewScanner(in)
	for game.State() != engine.StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fmt.Fprint(w, playerPrompt)
		if err := w.Flush(); err != nil {
			return nil, err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Exiting conversation...")
			return nil, nil
		}

		turn, err := game.ProcessTurn(ctx, scanner.Text())
		if err != nil && !errors.Is(err, engine.ErrUnknownDestination) {
			return nil, err
		}
		if turn.Exited {
			fmt.Fprintln(w, "Exiting conversation...")
			return nil, nil
		}
		fmt.Fprintln(w, driverPrefix+turn.Reply)
	}

	res, err := game.Result()
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, report.Summary(res))
	return res, nil
}
