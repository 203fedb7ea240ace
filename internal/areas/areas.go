// Package areas holds the static city map the driver knows about.
package areas

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/tatianab/rickshaw/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed areas.yaml
var defaultAreas []byte

// Map is an ordered, case-insensitive lookup of areas by name.
type Map struct {
	areas  []models.Area
	byName map[string]int
}

// Load returns the built-in Bangalore map.
func Load() (*Map, error) {
	return Parse(defaultAreas)
}

// Parse builds a Map from YAML of the form `areas: [{name, x, y}, ...]`.
func Parse(data []byte) (*Map, error) {
	var doc struct {
		Areas []models.Area `yaml:"areas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal areas: %w", err)
	}
	if len(doc.Areas) == 0 {
		return nil, fmt.Errorf("no areas defined")
	}

	m := &Map{byName: make(map[string]int, len(doc.Areas))}
	for _, a := range doc.Areas {
		a.Name = normalize(a.Name)
		if a.Name == "" {
			return nil, fmt.Errorf("area at (%d, %d) has no name", a.X, a.Y)
		}
		if _, dup := m.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate area %q", a.Name)
		}
		m.byName[a.Name] = len(m.areas)
		m.areas = append(m.areas, a)
	}
	return m, nil
}

// Resolve finds the area a piece of text refers to. An exact name wins; otherwise the
// first area whose name contains the text, or is contained in it, is returned.
func (m *Map) Resolve(text string) (models.Area, bool) {
	q := normalize(text)
	if q == "" {
		return models.Area{}, false
	}
	if a, ok := m.Lookup(q); ok {
		return a, true
	}
	for _, a := range m.areas {
		if strings.Contains(a.Name, q) || strings.Contains(q, a.Name) {
			return a, true
		}
	}
	return models.Area{}, false
}

// Within returns the first area whose full name appears somewhere in text.
func (m *Map) Within(text string) (models.Area, bool) {
	q := normalize(text)
	if q == "" {
		return models.Area{}, false
	}
	for _, a := range m.areas {
		if strings.Contains(q, a.Name) {
			return a, true
		}
	}
	return models.Area{}, false
}

// Lookup is an exact, case-insensitive match.
func (m *Map) Lookup(name string) (models.Area, bool) {
	i, ok := m.byName[normalize(name)]
	if !ok {
		return models.Area{}, false
	}
	return m.areas[i], true
}

// Names lists area names in map order.
func (m *Map) Names() []string {
	names := make([]string, len(m.areas))
	for i, a := range m.areas {
		names[i] = a.Name
	}
	return names
}

func (m *Map) Len() int {
	return len(m.areas)
}

// Distance is the straight-line distance between two areas in grid units.
func Distance(a, b models.Area) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
