package engine

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/pricing"
	"github.com/tatianab/rickshaw/internal/responses"
)

var (
	disagreeWords = []string{
		"nahi", "no", "not", "illogical", "expensive", "costly", "zyada", "bahut",
		"too much", "cab", "uber", "ola",
	}
	agreeWords = []string{
		"ok", "okay", "theek", "thik", "thike", "done", "fine", "agree", "chalo",
		"let's go", "deal", "chalega",
	}

	disagreement = wordsPattern(disagreeWords)
	agreement    = wordsPattern(agreeWords)
	number       = regexp.MustCompile(`\d+`)
)

// Price cuts the driver picks from, by mood.
var (
	counterCuts = map[models.Mood][]int{
		models.MoodBad:     {5, 10, 15},
		models.MoodGood:    {10, 20, 30},
		models.MoodNeutral: {10, 15, 20},
	}
	nudgeCuts = map[models.Mood][]int{
		models.MoodBad:     {5, 10},
		models.MoodGood:    {10, 15, 20},
		models.MoodNeutral: {5, 10, 15},
	}
)

const (
	tooLowRatio    = 0.85 // offers under this share of the minimum are laughed off
	minAcceptRound = 3
)

func wordsPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Disagrees reports whether the input pushes back on the price.
func Disagrees(input string) bool {
	return disagreement.MatchString(input)
}

// Agrees reports whether the input accepts a price. Pushback wins over agreement
// when both appear; callers check Disagrees first.
func Agrees(input string) bool {
	return agreement.MatchString(input)
}

// ExtractOffer returns the first whole number in input, or 0 when there is none.
// Zero and numbers too large for an int count as no offer.
func ExtractOffer(input string) int {
	m := number.FindString(input)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func (g *Game) negotiate(ctx context.Context, input string) *Turn {
	s := &g.session
	offer := ExtractOffer(input)
	remark := g.remark()

	var category responses.Category
	var branch string
	switch {
	case Disagrees(input):
		branch = "disagree"
		cut := (g.rng.IntN(4) + 2) * 10
		s.CurrentPrice = pricing.RoundInt(max(s.MinPrice, s.CurrentPrice-cut), 10)
		category = responses.PriceMedium

	case Agrees(input):
		switch {
		case offer == 0:
			branch = "agree"
			category = g.settle(s.CurrentPrice)
		case offer >= s.MinPrice:
			branch = "agree_offer"
			category = g.settle(offer)
		default:
			branch = "agree_low_offer"
			s.CurrentPrice = max(s.MinPrice, s.CurrentPrice-10)
			category = responses.TooLow
		}

	case offer > 0:
		branch = "offer"
		category = g.counter(offer)

	default:
		branch = "nudge"
		cuts := nudgeCuts[s.Conditions.Mood]
		cut := cuts[g.rng.IntN(len(cuts))]
		s.CurrentPrice = pricing.RoundInt(max(s.MinPrice, s.CurrentPrice-cut), 5)
		category = responses.PriceMedium
	}

	g.logger.DebugContext(ctx, "negotiation turn",
		"branch", branch,
		"offer", offer,
		"price", s.CurrentPrice,
		"min", s.MinPrice,
		"round", s.Rounds,
		"state", g.state,
	)
	return g.turn(category, g.say(category, g.values(remark)), offer)
}

// counter handles a bare numeric offer: the driver either takes it or names a
// lower price of their own.
func (g *Game) counter(offer int) responses.Category {
	s := &g.session
	if float64(offer) < float64(s.MinPrice)*tooLowRatio {
		return responses.TooLow
	}

	s.Rounds++
	chance := acceptanceChance(s.Rounds, s.Conditions, float64(offer)/float64(s.BasePrice))
	if offer >= s.MinPrice && s.Rounds >= minAcceptRound && g.rng.Float64() < chance {
		return g.settle(offer)
	}

	cuts := counterCuts[s.Conditions.Mood]
	cut := cuts[g.rng.IntN(len(cuts))]
	switch {
	case s.CurrentPrice-cut < offer && offer >= s.MinPrice:
		s.CurrentPrice = offer
	case s.CurrentPrice-cut < offer:
		s.CurrentPrice = s.MinPrice
	default:
		s.CurrentPrice = max(s.MinPrice, s.CurrentPrice-cut)
	}
	s.CurrentPrice = pricing.RoundInt(s.CurrentPrice, 5)

	if offer < s.MinPrice {
		return responses.PriceLow
	}
	return responses.PriceMedium
}

func (g *Game) settle(price int) responses.Category {
	g.session.CurrentPrice = price
	g.state = StateDone
	g.agreed = true
	return responses.Agreement
}

// acceptanceChance is the probability the driver takes an acceptable offer in the
// given round. ratio is the offer over the opening quote.
func acceptanceChance(round int, c models.Conditions, ratio float64) float64 {
	var chance float64
	switch {
	case round <= 1:
		chance = 0
	case round == 2:
		chance = 0.1
	default:
		chance = 0.3
	}

	switch c.Mood {
	case models.MoodGood:
		chance += 0.15
	case models.MoodBad:
		chance -= 0.15
	}
	if c.Traffic.Heavy() {
		chance -= 0.1
	}
	if c.Weather.Wet() {
		chance -= 0.1
	}

	if ratio >= 0.95 {
		chance += 0.2
	} else if ratio <= 0.7 {
		chance -= 0.2
	}

	if round >= 5 {
		chance += 0.3
	}
	if round >= 8 {
		chance += 0.2
	}
	return chance
}
