// Package sim plays whole games against the negotiation engine with automated
// passengers and summarises how they fared.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tatianab/rickshaw/internal/engine"
)

// DefaultMaxTurns caps a simulated game; a passenger still talking after that walks away.
const DefaultMaxTurns = 20

// Outcome is how one simulated game ended.
type Outcome struct {
	Agreed   bool
	Turns    int
	Rounds   int
	Score    int
	Quoted   int
	Final    int
	Discount float64 // share of the quote saved, 0 when no fare was agreed
}

// Stats aggregates outcomes. Means are over agreed games only.
type Stats struct {
	Player       string
	Games        int
	Agreed       int
	MeanScore    float64
	MeanRounds   float64
	MeanDiscount float64
	Outcomes     []Outcome
}

// AgreementRate is the share of games that ended in a fare.
func (s *Stats) AgreementRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Agreed) / float64(s.Games)
}

// Runner plays games for one player.
type Runner struct {
	Engine   *engine.Engine
	Player   Player
	MaxTurns int
	Logger   *slog.Logger
}

// Run plays n games and aggregates their outcomes.
func (r *Runner) Run(ctx context.Context, n int) (*Stats, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stats := &Stats{Player: r.Player.Name()}
	var score, rounds, discount float64
	for i := range n {
		out, err := r.Play(ctx)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		logger.Info("simulated game", "game", i+1, "agreed", out.Agreed, "turns", out.Turns,
			"quoted", out.Quoted, "final", out.Final, "score", out.Score)

		stats.Games++
		stats.Outcomes = append(stats.Outcomes, *out)
		if out.Agreed {
			stats.Agreed++
			score += float64(out.Score)
			rounds += float64(out.Rounds)
			discount += out.Discount
		}
	}
	if stats.Agreed > 0 {
		k := float64(stats.Agreed)
		stats.MeanScore = score / k
		stats.MeanRounds = rounds / k
		stats.MeanDiscount = discount / k
	}
	return stats, nil
}

// Play runs a single game to agreement, exit or the turn limit.
func (r *Runner) Play(ctx context.Context) (*Outcome, error) {
	maxTurns := r.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	g, err := r.Engine.NewGame()
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	step := 0
	for out.Turns < maxTurns && g.State() != engine.StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		negotiating := g.State() == engine.StateNegotiating

		line, err := r.Player.Next(ctx, View{Session: g.Session(), Transcript: g.Transcript(), Step: step})
		if err != nil {
			return nil, err
		}
		out.Turns++
		if negotiating {
			step++
		}

		if _, err := g.ProcessTurn(ctx, line); err != nil && !errors.Is(err, engine.ErrUnknownDestination) {
			return nil, err
		}
	}

	res, err := g.Result()
	if errors.Is(err, engine.ErrNoAgreement) {
		out.Rounds = g.Session().Rounds
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.Agreed = true
	out.Rounds = res.Rounds
	out.Score = res.Score
	out.Quoted = res.Quoted
	out.Final = res.Final
	if res.Quoted > 0 {
		out.Discount = 1 - float64(res.Final)/float64(res.Quoted)
	}
	return out, nil
}

// Table renders the aggregate statistics.
func (s *Stats) Table() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle("Simulation: " + s.Player)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Value", Align: text.AlignRight}})
	t.AppendRows([]table.Row{
		{"Games", s.Games},
		{"Agreed", s.Agreed},
		{"Agreement rate", fmt.Sprintf("%.0f%%", s.AgreementRate()*100)},
		{"Mean score", fmt.Sprintf("%.1f/10", s.MeanScore)},
		{"Mean rounds", fmt.Sprintf("%.1f", s.MeanRounds)},
		{"Mean discount", fmt.Sprintf("%.0f%%", s.MeanDiscount*100)},
	})
	return t.Render()
}
