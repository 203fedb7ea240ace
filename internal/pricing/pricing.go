// Package pricing turns a trip and its conditions into the driver's quote.
package pricing

import (
	"math"

	"github.com/tatianab/rickshaw/internal/models"
)

const (
	BaseFare        = 40  // rupees, also the absolute floor
	RatePerKm       = 18  // rupees per grid unit
	HagglingFactor  = 1.6 // how far above the fair fare drivers open
	NightMultiplier = 1.5
)

var trafficMultipliers = map[models.Traffic]float64{
	models.TrafficLow:      1.0,
	models.TrafficMedium:   1.2,
	models.TrafficHigh:     1.4,
	models.TrafficVeryHigh: 1.6,
}

var weatherMultipliers = map[models.Weather]float64{
	models.WeatherClear:     1.0,
	models.WeatherRainy:     1.3,
	models.WeatherHeavyRain: 1.5,
}

var moodMultipliers = map[models.Mood]float64{
	models.MoodGood:    0.9,
	models.MoodNeutral: 1.0,
	models.MoodBad:     1.1,
}

// IsNight reports whether night charges apply at the given hour.
func IsNight(hour int) bool {
	return hour < 6 || hour >= 22
}

// TimeOfDay is "Night" or "Day".
func TimeOfDay(hour int) string {
	if IsNight(hour) {
		return "Night"
	}
	return "Day"
}

// Quote returns the driver's opening price and the lowest price the driver will settle for.
// Both are deterministic in their inputs; quoted >= min >= BaseFare.
func Quote(distance float64, hour int, traffic models.Traffic, weather models.Weather, mood models.Mood) (quoted, minPrice int) {
	raw := BaseFare + distance*RatePerKm
	if IsNight(hour) {
		raw *= NightMultiplier
	}
	raw *= multiplier(trafficMultipliers, traffic)
	raw *= multiplier(weatherMultipliers, weather)
	raw *= multiplier(moodMultipliers, mood)

	quoted = RoundTo(raw*HagglingFactor, 10)
	minPrice = max(BaseFare, RoundTo(raw, 10))
	return quoted, minPrice
}

// RoundTo rounds v to the nearest multiple of step, halves going to the even multiple.
func RoundTo(v float64, step int) int {
	return int(math.RoundToEven(v/float64(step))) * step
}

// RoundInt is RoundTo for whole rupees, done in integer arithmetic so that
// any int rounds to a representable multiple of step.
func RoundInt(v, step int) int {
	q, r := v/step, v%step
	if r < 0 {
		q, r = q-1, r+step
	}
	if 2*r > step || (2*r == step && q%2 != 0) {
		q++
	}
	switch {
	case q > math.MaxInt/step:
		q--
	case q < math.MinInt/step:
		q++
	}
	return q * step
}

func multiplier[K comparable](table map[K]float64, k K) float64 {
	if m, ok := table[k]; ok {
		return m
	}
	return 1.0
}
