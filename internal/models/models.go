package models

import "strings"

// Traffic is the road congestion level for a session.
type Traffic string

const (
	TrafficLow      Traffic = "low"
	TrafficMedium   Traffic = "medium"
	TrafficHigh     Traffic = "high"
	TrafficVeryHigh Traffic = "very_high"
)

// AllTraffic lists traffic levels in the order they are drawn from.
var AllTraffic = []Traffic{TrafficLow, TrafficMedium, TrafficHigh, TrafficVeryHigh}

// Heavy reports whether the traffic slows the ride down (high or worse).
func (t Traffic) Heavy() bool {
	return t == TrafficHigh || t == TrafficVeryHigh
}

// Weather is the weather for a session.
type Weather string

const (
	WeatherClear     Weather = "clear"
	WeatherRainy     Weather = "rainy"
	WeatherHeavyRain Weather = "heavy_rain"
)

// AllWeather lists weather kinds in the order they are drawn from.
var AllWeather = []Weather{WeatherClear, WeatherRainy, WeatherHeavyRain}

// Wet reports whether it is raining.
func (w Weather) Wet() bool {
	return w == WeatherRainy || w == WeatherHeavyRain
}

// Mood is the driver's disposition.
type Mood string

const (
	MoodGood    Mood = "good"
	MoodNeutral Mood = "neutral"
	MoodBad     Mood = "bad"
)

// AllMoods lists moods in the order they are drawn from.
var AllMoods = []Mood{MoodGood, MoodNeutral, MoodBad}

// Area is a named place on the city grid. Coordinates are abstract grid units.
type Area struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// Conditions are the environmental attributes fixed when a session starts.
type Conditions struct {
	Hour    int     `yaml:"hour"` // 0-23
	Traffic Traffic `yaml:"traffic"`
	Weather Weather `yaml:"weather"`
	Mood    Mood    `yaml:"mood"`
}

// Session is the mutable state of a single negotiation.
type Session struct {
	Conditions   Conditions `yaml:"conditions"`
	Location     Area       `yaml:"location"`
	Destination  *Area      `yaml:"destination,omitempty"` // set once
	Distance     float64    `yaml:"distance"`
	BasePrice    int        `yaml:"base_price"` // the driver's opening quote
	MinPrice     int        `yaml:"min_price"`
	CurrentPrice int        `yaml:"current_price"`
	Rounds       int        `yaml:"rounds"` // priced offers considered so far
}

// HasDestination reports whether the player has named a recognized place yet.
func (s Session) HasDestination() bool {
	return s.Destination != nil
}

// Title turns a lower-case key such as "very_high" or "mg road" into "Very High" / "Mg Road".
func Title(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
