package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tatianab/rickshaw/internal/areas"
	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/pricing"
	"github.com/tatianab/rickshaw/internal/responses"
)

// DefaultStart is where every ride begins unless configured otherwise.
const DefaultStart = "majestic"

var (
	// ErrUnknownDestination is reported alongside the driver's reply when the
	// player names a place the driver does not know. The game carries on.
	ErrUnknownDestination = errors.New("unknown destination")
	// ErrGameOver is returned for turns played after the game has ended.
	ErrGameOver = errors.New("game is over")
	// ErrNoAgreement is returned when asking for the result of a game that did
	// not end in an agreed fare.
	ErrNoAgreement = errors.New("no fare was agreed")
)

// Rand is the source of every random choice a game makes.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// State is a game's position in the negotiation.
type State int

const (
	StateAwaitingDestination State = iota
	StateNegotiating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingDestination:
		return "awaiting_destination"
	case StateNegotiating:
		return "negotiating"
	case StateDone:
		return "done"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Engine creates games against a shared map and set of driver lines.
type Engine struct {
	areas  *areas.Map
	bank   *responses.Bank
	rng    Rand
	now    func() time.Time
	start  string
	logger *slog.Logger
}

type Option func(*Engine)

// WithRand makes every game draw from rng.
func WithRand(rng Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock sets where a game's hour of day comes from.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHour pins every game to the given hour of day.
func WithHour(hour int) Option {
	return WithClock(func() time.Time {
		return time.Date(2000, 1, 1, hour, 0, 0, 0, time.Local)
	})
}

// WithStart sets the area rides start from.
func WithStart(name string) Option {
	return func(e *Engine) { e.start = name }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(m *areas.Map, bank *responses.Bank, opts ...Option) *Engine {
	e := &Engine{
		areas:  m,
		bank:   bank,
		rng:    globalRand{},
		now:    time.Now,
		start:  DefaultStart,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Areas returns the map games are played on.
func (e *Engine) Areas() *areas.Map {
	return e.areas
}

// NewGame starts a session at the configured start area with freshly drawn
// traffic, weather and driver mood.
func (e *Engine) NewGame() (*Game, error) {
	start, ok := e.areas.Lookup(e.start)
	if !ok {
		return nil, fmt.Errorf("start location %q is not on the map", e.start)
	}

	cond := models.Conditions{
		Hour:    e.now().Hour(),
		Traffic: models.AllTraffic[e.rng.IntN(len(models.AllTraffic))],
		Weather: models.AllWeather[e.rng.IntN(len(models.AllWeather))],
		Mood:    models.AllMoods[e.rng.IntN(len(models.AllMoods))],
	}

	g := &Game{
		session: models.Session{
			Conditions: cond,
			Location:   start,
		},
		state:  StateAwaitingDestination,
		areas:  e.areas,
		picker: responses.NewPicker(e.bank, e.rng),
		rng:    e.rng,
		logger: e.logger,
	}
	g.opening = g.say(responses.AskDestination, responses.Values{
		responses.SlotWeather: string(cond.Weather),
		responses.SlotTraffic: string(cond.Traffic),
	})

	e.logger.Debug("new game",
		"start", start.Name,
		"hour", cond.Hour,
		"traffic", cond.Traffic,
		"weather", cond.Weather,
		"mood", cond.Mood,
	)
	return g, nil
}

// Game is a single negotiation between the player and one driver.
// It is not safe for concurrent use.
type Game struct {
	session    models.Session
	state      State
	agreed     bool
	opening    string
	transcript []string

	areas  *areas.Map
	picker *responses.Picker
	rng    Rand
	logger *slog.Logger
}

// Turn is the outcome of one line of player input.
type Turn struct {
	Reply    string
	Category responses.Category
	State    State
	Price    int // the driver's current price after the turn, 0 before a destination
	Offer    int // the player's offer, 0 if none was made
	Round    int
	Accepted bool
	Exited   bool
}

// Opening is the driver's first line.
func (g *Game) Opening() string {
	return g.opening
}

func (g *Game) State() State {
	return g.state
}

// Session returns a copy of the current session state.
func (g *Game) Session() models.Session {
	s := g.session
	if s.Destination != nil {
		d := *s.Destination
		s.Destination = &d
	}
	return s
}

// Transcript returns the conversation so far, one "You: " or "AI: " line per entry.
func (g *Game) Transcript() []string {
	out := make([]string, 0, len(g.transcript)+1)
	out = append(out, "AI: "+g.opening)
	return append(out, g.transcript...)
}

// IsExit reports whether input asks to leave the conversation.
func IsExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

// ProcessTurn feeds one line of player input to the driver.
//
// For an unrecognized destination the returned Turn still carries the driver's
// reply and the error wraps ErrUnknownDestination. Once the game is done every
// call returns ErrGameOver.
func (g *Game) ProcessTurn(ctx context.Context, input string) (*Turn, error) {
	if g.state == StateDone {
		return nil, ErrGameOver
	}

	input = strings.ToLower(strings.TrimSpace(input))
	if IsExit(input) {
		g.state = StateDone
		g.logger.DebugContext(ctx, "player left", "input", input)
		return &Turn{State: g.state, Price: g.session.CurrentPrice, Exited: true}, nil
	}
	g.transcript = append(g.transcript, "You: "+input)

	var turn *Turn
	var err error
	if g.state == StateAwaitingDestination {
		turn, err = g.chooseDestination(ctx, input)
	} else {
		turn = g.negotiate(ctx, input)
	}
	g.transcript = append(g.transcript, "AI: "+turn.Reply)
	return turn, err
}

func (g *Game) chooseDestination(ctx context.Context, input string) (*Turn, error) {
	dest, ok := g.areas.Within(input)
	if !ok {
		for _, word := range strings.Fields(input) {
			if utf8.RuneCountInString(word) <= 3 {
				continue
			}
			if dest, ok = g.areas.Resolve(word); ok {
				break
			}
		}
	}
	if !ok {
		g.logger.DebugContext(ctx, "unknown destination", "input", input)
		reply := g.say(responses.UnknownPlace, nil)
		return g.turn(responses.UnknownPlace, reply, 0), fmt.Errorf("%w: %q", ErrUnknownDestination, input)
	}

	s := &g.session
	s.Destination = &dest
	s.Distance = areas.Distance(s.Location, dest)
	s.BasePrice, s.MinPrice = pricing.Quote(s.Distance, s.Conditions.Hour, s.Conditions.Traffic, s.Conditions.Weather, s.Conditions.Mood)
	s.CurrentPrice = s.BasePrice
	s.Rounds = 0
	g.state = StateNegotiating

	category := responses.PriceHigh
	switch {
	case s.Distance < 3:
		category = responses.CloseDistance
	case s.Distance > 10:
		category = responses.FarDistance
	}

	g.logger.DebugContext(ctx, "destination set",
		"destination", dest.Name,
		"distance", s.Distance,
		"quoted", s.BasePrice,
		"min", s.MinPrice,
	)
	return g.turn(category, g.say(category, g.values(g.remark())), 0), nil
}

func (g *Game) say(c responses.Category, vals responses.Values) string {
	return responses.Format(g.picker.Pick(c), vals)
}

// remark is an aside about either the traffic or the weather, at even odds.
func (g *Game) remark() string {
	c := g.session.Conditions
	if g.rng.Float64() < 0.5 {
		return "traffic " + string(c.Traffic)
	}
	return "weather " + string(c.Weather)
}

// values fills every slot a driver line may use.
func (g *Game) values(remark string) responses.Values {
	c := g.session.Conditions
	return responses.Values{
		responses.SlotPrice:     strconv.Itoa(g.session.CurrentPrice),
		responses.SlotTraffic:   string(c.Traffic),
		responses.SlotWeather:   string(c.Weather),
		responses.SlotCondition: remark,
	}
}

func (g *Game) turn(c responses.Category, reply string, offer int) *Turn {
	return &Turn{
		Reply:    reply,
		Category: c,
		State:    g.state,
		Price:    g.session.CurrentPrice,
		Offer:    offer,
		Round:    g.session.Rounds,
		Accepted: g.agreed,
	}
}
