package sim

import (
	"context"
	"fmt"

	"github.com/tatianab/rickshaw/internal/engine"
	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/pricing"
)

// View is what a player sees before choosing its next line.
type View struct {
	Session    models.Session
	Transcript []string
	// Step counts the player's turns since the fare was first quoted.
	Step int
}

// Player stands in for a passenger.
type Player interface {
	Name() string
	// Next returns the passenger's next line.
	Next(ctx context.Context, v View) (string, error)
}

// Scripted haggles by rule: it names a random area, opens at half the quote and
// raises its offer each turn, sometimes protests instead, and gives in once its
// patience runs out.
type Scripted struct {
	areas []string
	rng   engine.Rand

	Patience    int
	ProtestRate float64
	OpenRatio   float64
	Step        float64
}

// NewScripted returns a scripted player choosing destinations from areas.
func NewScripted(areas []string, rng engine.Rand) *Scripted {
	return &Scripted{
		areas:       areas,
		rng:         rng,
		Patience:    6,
		ProtestRate: 0.2,
		OpenRatio:   0.5,
		Step:        0.08,
	}
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Next(_ context.Context, v View) (string, error) {
	sess := v.Session
	if !sess.HasDestination() {
		if len(s.areas) == 0 {
			return "", fmt.Errorf("scripted player has no areas to choose from")
		}
		i := s.rng.IntN(len(s.areas))
		if s.areas[i] == sess.Location.Name && len(s.areas) > 1 {
			i = (i + 1) % len(s.areas)
		}
		return "take me to " + s.areas[i], nil
	}

	if v.Step >= s.Patience {
		return "ok chalo", nil
	}
	if s.rng.Float64() < s.ProtestRate {
		return "bahut zyada hai bhaiya", nil
	}
	return fmt.Sprintf("%d de dunga", s.offer(sess.BasePrice, v.Step)), nil
}

func (s *Scripted) offer(quoted, step int) int {
	ratio := min(s.OpenRatio+float64(step)*s.Step, 0.95)
	return max(10, pricing.RoundTo(float64(quoted)*ratio, 10))
}
