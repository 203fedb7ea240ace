// Package responses holds the driver's canned lines and picks them without
// repeating itself.
package responses

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var defaultResponses []byte

// Category is the situation a line is spoken in.
type Category string

const (
	AskDestination Category = "ask_destination"
	UnknownPlace   Category = "unknown_place"
	PriceHigh      Category = "price_high"
	PriceMedium    Category = "price_medium"
	PriceLow       Category = "price_low"
	TooLow         Category = "too_low"
	Agreement      Category = "agreement"
	CloseDistance  Category = "close_distance"
	FarDistance    Category = "far_distance"
)

// Categories lists every category a Bank is expected to fill.
var Categories = []Category{
	AskDestination, UnknownPlace, PriceHigh, PriceMedium, PriceLow,
	TooLow, Agreement, CloseDistance, FarDistance,
}

// Fallback is spoken when a category has no lines at all.
const Fallback = "I don't understand."

// Bank maps each category to its templates.
type Bank struct {
	lines map[Category][]string
}

// Load returns the built-in driver lines.
func Load() (*Bank, error) {
	return Parse(defaultResponses)
}

// Parse reads a YAML mapping of category name to a list of templates.
func Parse(data []byte) (*Bank, error) {
	var lines map[Category][]string
	if err := yaml.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}
	if lines == nil {
		lines = map[Category][]string{}
	}
	return &Bank{lines: lines}, nil
}

// Templates returns the templates for a category.
func (b *Bank) Templates(c Category) []string {
	return b.lines[c]
}

// Rand is the randomness a Picker draws from.
type Rand interface {
	IntN(n int) int
}

// Picker draws lines from a Bank, steering clear of the ones it used recently.
// A Picker belongs to a single session.
type Picker struct {
	bank    *Bank
	rng     Rand
	history map[Category][]string
}

func NewPicker(bank *Bank, rng Rand) *Picker {
	return &Picker{
		bank:    bank,
		rng:     rng,
		history: make(map[Category][]string),
	}
}

// Pick returns a template for c. Up to min(3, n-1) of the most recent picks are
// excluded from the draw; the history starts over once it would exclude all but one.
func (p *Picker) Pick(c Category) string {
	all := p.bank.Templates(c)
	if len(all) == 0 {
		return Fallback
	}

	recent := p.history[c]
	if len(recent) >= len(all)-1 {
		recent = nil
	}

	pool := make([]string, 0, len(all))
	for _, t := range all {
		if !slices.Contains(recent, t) {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		recent = nil
		pool = all
	}

	picked := pool[p.rng.IntN(len(pool))]

	recent = append(recent, picked)
	if limit := min(3, len(all)-1); limit > 0 && len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	p.history[c] = recent
	return picked
}

// Recent returns the templates currently barred from being picked for c.
func (p *Picker) Recent(c Category) []string {
	return slices.Clone(p.history[c])
}

// Slot names understood in templates.
const (
	SlotPrice     = "price"
	SlotTraffic   = "traffic"
	SlotWeather   = "weather"
	SlotCondition = "condition"
)

// Values fills template slots by name.
type Values map[string]string

// ErrMissingPlaceholder means a template names a slot that was not supplied.
var ErrMissingPlaceholder = errors.New("missing placeholder value")

var placeholder = regexp.MustCompile(`\{([^}]+)\}`)

// Expand substitutes every {slot} in tmpl. Values for slots the template does
// not use are ignored.
func Expand(tmpl string, vals Values) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := vals[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return tmpl, fmt.Errorf("%w: %v", ErrMissingPlaceholder, missing)
	}
	return out, nil
}

// Format is Expand that never fails: a template it cannot fully expand is
// returned as written.
func Format(tmpl string, vals Values) string {
	out, err := Expand(tmpl, vals)
	if err != nil {
		return tmpl
	}
	return out
}
