package engine

import (
	"time"

	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/pricing"
)

const maxScore = 10

// Result summarizes a ride the player and driver agreed on.
type Result struct {
	From        models.Area
	Destination models.Area
	Distance    float64
	Conditions  models.Conditions
	Quoted      int
	Final       int
	Minimum     int
	Rounds      int
	Score       int
}

// Result scores the game. It returns ErrNoAgreement unless the game ended with
// an agreed fare; leaving the conversation is never scored.
func (g *Game) Result() (*Result, error) {
	s := g.session
	if !g.agreed {
		return nil, ErrNoAgreement
	}
	return &Result{
		From:        s.Location,
		Destination: *s.Destination,
		Distance:    s.Distance,
		Conditions:  s.Conditions,
		Quoted:      s.BasePrice,
		Final:       s.CurrentPrice,
		Minimum:     s.MinPrice,
		Rounds:      s.Rounds,
		Score:       Score(s.BasePrice, s.CurrentPrice, s.MinPrice, s.Conditions),
	}, nil
}

// Receipt turns the result into a record of the ride.
func (g *Game) Receipt(at time.Time) (*models.Receipt, error) {
	r, err := g.Result()
	if err != nil {
		return nil, err
	}
	return &models.Receipt{
		At:         at,
		From:       r.From.Name,
		To:         r.Destination.Name,
		Distance:   r.Distance,
		Conditions: r.Conditions,
		Quoted:     r.Quoted,
		Final:      r.Final,
		Minimum:    r.Minimum,
		Rounds:     r.Rounds,
		Score:      r.Score,
		Transcript: g.Transcript(),
	}, nil
}

// Score rates a deal from 0 to 10: how much of the gap between quote and minimum
// the player won, plus bonuses for bargaining in heavy traffic, rain, at night or
// with a bad-tempered driver. A quote equal to the minimum leaves no gap to win.
func Score(quoted, final, minimum int, c models.Conditions) int {
	var score float64
	if quoted != minimum {
		score = maxScore * float64(quoted-final) / float64(quoted-minimum)
	}

	if c.Traffic.Heavy() {
		score++
	}
	if c.Weather.Wet() {
		score++
	}
	if pricing.IsNight(c.Hour) {
		score++
	}
	if c.Mood == models.MoodBad {
		score += 2
	}
	return min(maxScore, max(0, int(score)))
}

// Rating is the commentary for a score.
func Rating(score int) string {
	switch {
	case score >= 9:
		return "🔥 Legendary negotiator! Even a Bangalore auto driver couldn't resist!"
	case score >= 7:
		return "💪 Solid bargaining skills! You know your way around autos."
	case score >= 5:
		return "👍 Not bad, but there's room for improvement."
	case score >= 3:
		return "😅 You got taken for a ride! Try being more assertive."
	default:
		return "🤦 Rookie mistake! Even tourists bargain better than this!"
	}
}
