package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/rickshaw/internal/areas"
	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/responses"
)

// scriptRand replays queued values. Once a queue runs dry IntN returns 0 and
// Float64 returns 0.99, which never accepts an offer and always remarks on the weather.
type scriptRand struct {
	t      *testing.T
	ints   []int
	floats []float64
}

func (r *scriptRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		r.t.Fatalf("scripted IntN value %d out of range [0, %d)", v, n)
	}
	return v
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	m, err := areas.Load()
	require.NoError(t, err)
	bank, err := responses.Load()
	require.NoError(t, err)
	return New(m, bank, opts...)
}

// newGame starts a game at noon with the given conditions. The returned rand
// has already been consumed up to and including the opening line.
func newGame(t *testing.T, traffic models.Traffic, weather models.Weather, mood models.Mood) (*Game, *scriptRand) {
	t.Helper()
	rng := &scriptRand{t: t, ints: []int{
		slices.Index(models.AllTraffic, traffic),
		slices.Index(models.AllWeather, weather),
		slices.Index(models.AllMoods, mood),
		0, // opening line
	}}
	g, err := newEngine(t, WithRand(rng), WithHour(12)).NewGame()
	require.NoError(t, err)
	return g, rng
}

// plainGame is a neutral, clear, low-traffic noon ride to Koramangala:
// quoted 210, minimum 130.
func plainGame(t *testing.T) (*Game, *scriptRand) {
	t.Helper()
	g, rng := newGame(t, models.TrafficLow, models.WeatherClear, models.MoodNeutral)
	turn, err := g.ProcessTurn(context.Background(), "Koramangala")
	require.NoError(t, err)
	require.Equal(t, StateNegotiating, turn.State)
	return g, rng
}

func TestNewGame(t *testing.T) {
	g, _ := newGame(t, models.TrafficVeryHigh, models.WeatherHeavyRain, models.MoodBad)

	s := g.Session()
	assert.Equal(t, models.Conditions{
		Hour:    12,
		Traffic: models.TrafficVeryHigh,
		Weather: models.WeatherHeavyRain,
		Mood:    models.MoodBad,
	}, s.Conditions)
	assert.Equal(t, "majestic", s.Location.Name)
	assert.False(t, s.HasDestination())
	assert.Equal(t, StateAwaitingDestination, g.State())
	assert.Equal(t, "Kahan jana hai bhai?", g.Opening())
	assert.Equal(t, []string{"AI: Kahan jana hai bhai?"}, g.Transcript())
}

func TestNewGameUnknownStart(t *testing.T) {
	_, err := newEngine(t, WithStart("atlantis")).NewGame()
	assert.ErrorContains(t, err, "atlantis")
}

func TestChooseDestination(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dest     string
		category responses.Category
		reply    string
		price    int
	}{
		{"exact name", "Koramangala", "koramangala", responses.PriceHigh, "₹210, low traffic hai.", 210},
		{"name inside a sentence", "take me to mg road please", "mg road", responses.CloseDistance, "Itna paas? Phir bhi ₹120, weather clear", 120},
		{"partial word", "going to white", "whitefield", responses.FarDistance, "Itna door? ₹410, woh bhi weather clear", 410},
		{"same place", "majestic", "majestic", responses.CloseDistance, "Itna paas? Phir bhi ₹60, weather clear", 60},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newGame(t, models.TrafficLow, models.WeatherClear, models.MoodNeutral)
			turn, err := g.ProcessTurn(context.Background(), tc.input)
			require.NoError(t, err)

			assert.Equal(t, tc.category, turn.Category)
			assert.Equal(t, tc.reply, turn.Reply)
			assert.Equal(t, tc.price, turn.Price)
			assert.Equal(t, StateNegotiating, turn.State)

			s := g.Session()
			require.True(t, s.HasDestination())
			assert.Equal(t, tc.dest, s.Destination.Name)
			assert.Equal(t, tc.price, s.BasePrice)
			assert.Equal(t, tc.price, s.CurrentPrice)
			assert.Zero(t, s.Rounds)
		})
	}
}

func TestUnknownDestination(t *testing.T) {
	g, _ := newGame(t, models.TrafficLow, models.WeatherClear, models.MoodNeutral)

	turn, err := g.ProcessTurn(context.Background(), "take me to korangala")
	assert.ErrorIs(t, err, ErrUnknownDestination)
	require.NotNil(t, turn)
	assert.Equal(t, responses.UnknownPlace, turn.Category)
	assert.Equal(t, "Woh kahan hai bhai? Koi landmark bolo.", turn.Reply)
	assert.Equal(t, StateAwaitingDestination, g.State())
	assert.False(t, g.Session().HasDestination())

	// Short words are never matched on their own.
	_, err = g.ProcessTurn(context.Background(), "to mg")
	assert.ErrorIs(t, err, ErrUnknownDestination)

	// The game recovers once a known place is named.
	turn, err = g.ProcessTurn(context.Background(), "indiranagar")
	require.NoError(t, err)
	assert.Equal(t, StateNegotiating, turn.State)
}

func TestAgreeWithOfferAboveMinimum(t *testing.T) {
	g, _ := plainGame(t)

	turn, err := g.ProcessTurn(context.Background(), "ok 500")
	require.NoError(t, err)
	assert.Equal(t, responses.Agreement, turn.Category)
	assert.Equal(t, "Chalo baitho, clear mein jaldi chalenge.", turn.Reply)
	assert.Equal(t, StateDone, turn.State)
	assert.True(t, turn.Accepted)
	assert.Equal(t, 500, turn.Price)
	assert.Equal(t, 500, turn.Offer)

	res, err := g.Result()
	require.NoError(t, err)
	assert.Equal(t, 500, res.Final)
	assert.Equal(t, 0, res.Score, "paying above the quote scores nothing")

	_, err = g.ProcessTurn(context.Background(), "hello?")
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestAgreeWithoutOffer(t *testing.T) {
	g, _ := plainGame(t)

	turn, err := g.ProcessTurn(context.Background(), "theek hai, chalo")
	require.NoError(t, err)
	assert.Equal(t, StateDone, turn.State)
	assert.Equal(t, 210, turn.Price)

	res, err := g.Result()
	require.NoError(t, err)
	assert.Equal(t, 210, res.Final)
	assert.Equal(t, 0, res.Score)
}

func TestAgreeWithOfferBelowMinimum(t *testing.T) {
	g, _ := plainGame(t)

	turn, err := g.ProcessTurn(context.Background(), "ok 50")
	require.NoError(t, err)
	assert.Equal(t, responses.TooLow, turn.Category)
	assert.Equal(t, "Arrey bhai, mazak mat karo! ₹200, weather clear", turn.Reply)
	assert.Equal(t, 200, turn.Price)
	assert.Equal(t, StateNegotiating, turn.State)
}

func TestDisagreementBeatsAgreement(t *testing.T) {
	g, rng := plainGame(t)
	rng.ints = append(rng.ints, 3) // cut of 50

	turn, err := g.ProcessTurn(context.Background(), "ok no way too expensive")
	require.NoError(t, err)
	assert.Equal(t, responses.PriceMedium, turn.Category)
	assert.Equal(t, 160, turn.Price)
	assert.Equal(t, StateNegotiating, turn.State)
	assert.Equal(t, "Accha ₹160, lekin weather clear.", turn.Reply)
}

func TestDisagreementFloorsAtMinimum(t *testing.T) {
	g, rng := plainGame(t)
	rng.ints = append(rng.ints, 3, 0, 3, 0, 3, 0)

	var prices []int
	for range 3 {
		turn, err := g.ProcessTurn(context.Background(), "bahut zyada")
		require.NoError(t, err)
		prices = append(prices, turn.Price)
	}
	assert.Equal(t, []int{160, 130, 130}, prices)
}

func TestOfferWayTooLow(t *testing.T) {
	g, _ := plainGame(t)

	turn, err := g.ProcessTurn(context.Background(), "100 rupees")
	require.NoError(t, err)
	assert.Equal(t, responses.TooLow, turn.Category)
	assert.Equal(t, 210, turn.Price, "price holds")
	assert.Zero(t, turn.Round, "a laughable offer is not a round")
}

func TestOfferRoundsThenAccept(t *testing.T) {
	g, rng := plainGame(t)
	rng.floats = []float64{
		0.9,      // round 1 remark
		0.9,      // round 2 remark
		0.9, 0.1, // round 3 remark, acceptance draw under 0.3
	}

	turn, err := g.ProcessTurn(context.Background(), "150")
	require.NoError(t, err)
	assert.Equal(t, 1, turn.Round)
	assert.Equal(t, 200, turn.Price)
	assert.Equal(t, responses.PriceMedium, turn.Category)

	turn, err = g.ProcessTurn(context.Background(), "150")
	require.NoError(t, err)
	assert.Equal(t, 2, turn.Round)
	assert.Equal(t, 190, turn.Price)

	turn, err = g.ProcessTurn(context.Background(), "150")
	require.NoError(t, err)
	assert.Equal(t, 3, turn.Round)
	assert.True(t, turn.Accepted)
	assert.Equal(t, responses.Agreement, turn.Category)
	assert.Equal(t, 150, turn.Price)

	res, err := g.Result()
	require.NoError(t, err)
	assert.Equal(t, 210, res.Quoted)
	assert.Equal(t, 150, res.Final)
	assert.Equal(t, 130, res.Minimum)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, 7, res.Score)
}

func TestOfferRejectedWhenDrawTooHigh(t *testing.T) {
	g, rng := plainGame(t)
	rng.floats = []float64{0.9, 0.9, 0.9, 0.5}

	for range 3 {
		_, err := g.ProcessTurn(context.Background(), "150")
		require.NoError(t, err)
	}
	assert.Equal(t, StateNegotiating, g.State())
	assert.Equal(t, 180, g.Session().CurrentPrice)
}

func TestCounterSnapsToOffer(t *testing.T) {
	g, _ := plainGame(t)

	// 210 - 10 would undercut the 205 on the table.
	turn, err := g.ProcessTurn(context.Background(), "i can do 205")
	require.NoError(t, err)
	assert.Equal(t, 205, turn.Price)
	assert.Equal(t, responses.PriceMedium, turn.Category)
}

func TestCounterSnapsToMinimum(t *testing.T) {
	g, rng := plainGame(t)
	rng.ints = append(rng.ints, 3, 0, 3, 0) // two 50 cuts: 210 -> 160 -> 130

	for range 2 {
		_, err := g.ProcessTurn(context.Background(), "nahi")
		require.NoError(t, err)
	}

	turn, err := g.ProcessTurn(context.Background(), "125")
	require.NoError(t, err)
	assert.Equal(t, 130, turn.Price)
	assert.Equal(t, responses.PriceLow, turn.Category)
	assert.Equal(t, "Nahi bhai, ₹130. weather clear", turn.Reply)
}

func TestNudgeWithoutOffer(t *testing.T) {
	tests := []struct {
		mood  models.Mood
		cut   int // index into the mood's cuts
		price int
	}{
		{models.MoodNeutral, 2, 195}, // 210 - 15
		{models.MoodBad, 1, 220},     // 230 - 10
		{models.MoodGood, 2, 170},    // 190 - 20
	}

	for _, tc := range tests {
		t.Run(string(tc.mood), func(t *testing.T) {
			g, rng := newGame(t, models.TrafficLow, models.WeatherClear, tc.mood)
			_, err := g.ProcessTurn(context.Background(), "koramangala")
			require.NoError(t, err)

			rng.ints = append(rng.ints, tc.cut)
			turn, err := g.ProcessTurn(context.Background(), "hmm, come on")
			require.NoError(t, err)

			assert.Equal(t, tc.price, turn.Price)
			assert.Equal(t, responses.PriceMedium, turn.Category)
		})
	}
}

func TestExit(t *testing.T) {
	for _, word := range []string{"exit", "  QUIT ", "Bye"} {
		t.Run(word, func(t *testing.T) {
			g, _ := plainGame(t)

			turn, err := g.ProcessTurn(context.Background(), word)
			require.NoError(t, err)
			assert.True(t, turn.Exited)
			assert.False(t, turn.Accepted)
			assert.Equal(t, StateDone, g.State())

			_, err = g.Result()
			assert.ErrorIs(t, err, ErrNoAgreement)
			_, err = g.Receipt(time.Now())
			assert.ErrorIs(t, err, ErrNoAgreement)
		})
	}
}

func TestExitBeforeDestination(t *testing.T) {
	g, _ := newGame(t, models.TrafficLow, models.WeatherClear, models.MoodNeutral)
	turn, err := g.ProcessTurn(context.Background(), "bye")
	require.NoError(t, err)
	assert.True(t, turn.Exited)
	assert.Equal(t, StateDone, g.State())
}

func TestTranscriptAndReceipt(t *testing.T) {
	g, _ := plainGame(t)
	_, err := g.ProcessTurn(context.Background(), "OK")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"AI: Kahan jana hai bhai?",
		"You: koramangala",
		"AI: ₹210, low traffic hai.",
		"You: ok",
		"AI: Chalo baitho, clear mein jaldi chalenge.",
	}, g.Transcript())

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r, err := g.Receipt(at)
	require.NoError(t, err)
	assert.Equal(t, "majestic", r.From)
	assert.Equal(t, "koramangala", r.To)
	assert.Equal(t, 210, r.Final)
	assert.Equal(t, at, r.At)
	assert.Len(t, r.Transcript, 5)
}

func TestPriceNeverBelowMinimum(t *testing.T) {
	inputs := []string{
		"no", "too much", "uber is cheaper", "100", "150", "200", "250", "300",
		"hmm", "please", "ok 20", "chalo 1000", "okay", "90", "140 deal", "",
	}
	dests := []string{"koramangala", "airport", "mg road", "majestic", "whitefield", "kengeri"}

	for seed := uint64(0); seed < 300; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31+7))
		g, err := newEngine(t, WithRand(rng), WithHour(int(seed%24))).NewGame()
		require.NoError(t, err)

		_, err = g.ProcessTurn(context.Background(), dests[rng.IntN(len(dests))])
		require.NoError(t, err)

		for i := 0; i < 40 && g.State() != StateDone; i++ {
			turn, err := g.ProcessTurn(context.Background(), inputs[rng.IntN(len(inputs))])
			require.NoError(t, err)

			s := g.Session()
			require.GreaterOrEqual(t, s.CurrentPrice, s.MinPrice, "seed %d turn %d", seed, i)
			require.GreaterOrEqual(t, s.BasePrice, s.MinPrice)
			require.Equal(t, s.CurrentPrice, turn.Price)
		}

		if res, err := g.Result(); err == nil {
			require.GreaterOrEqual(t, res.Score, 0)
			require.LessOrEqual(t, res.Score, 10)
		}
	}
}

func TestHugeOfferKeepsFloor(t *testing.T) {
	g, _ := plainGame(t)

	turn, err := g.ProcessTurn(context.Background(), "9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, StateNegotiating, turn.State)
	assert.Equal(t, responses.PriceMedium, turn.Category)
	assert.Equal(t, math.MaxInt-2, turn.Price)
	assert.GreaterOrEqual(t, g.Session().CurrentPrice, g.Session().MinPrice)

	// Digits past the int range are no offer at all, so the driver just nudges.
	turn, err = g.ProcessTurn(context.Background(), "99999999999999999999")
	require.NoError(t, err)
	assert.Zero(t, turn.Offer)
	assert.GreaterOrEqual(t, turn.Price, 130)
	assert.Zero(t, turn.Price%5)
}
