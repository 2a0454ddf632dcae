package pace

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when a pace setting is non-positive or not finite.
var ErrInvalidConfig = errors.New("pace: invalid config")

// Config holds the race parameters and the display-only bar styling.
type Config struct {
	RaceDistance   int     `json:"race_distance"`
	QualifyingTime float64 `json:"qualifying_time"`
	PoolLength     float64 `json:"pool_length"`
	BarWidth       float64 `json:"pace_bar_width"`
	Units          string  `json:"units"`

	// Passed through to renderers untouched.
	BarColor     string `json:"pace_bar_color"`
	Caption      string `json:"caption"`
	CaptionColor string `json:"caption_color"`
}

const (
	UnitsMeters = "meters"
	UnitsYards  = "yards"
)

// Defaults returns the settings a fresh session starts with.
func Defaults() Config {
	return Config{
		RaceDistance:   500,
		QualifyingTime: 314.1528,
		PoolLength:     50,
		BarWidth:       20,
		Units:          UnitsMeters,
		BarColor:       "red",
		Caption:        "qualifying pace",
		CaptionColor:   "white",
	}
}

// Validate checks every numeric field; the returned error wraps ErrInvalidConfig
// and names the offending field.
func (c Config) Validate() error {
	if c.RaceDistance <= 0 {
		return fmt.Errorf("%w: race_distance must be positive, got %d", ErrInvalidConfig, c.RaceDistance)
	}
	checks := []struct {
		name  string
		value float64
	}{
		{"qualifying_time", c.QualifyingTime},
		{"pool_length", c.PoolLength},
		{"pace_bar_width", c.BarWidth},
	}
	for _, ch := range checks {
		if math.IsNaN(ch.value) || math.IsInf(ch.value, 0) || ch.value <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidConfig, ch.name, ch.value)
		}
	}
	if c.Units != "" && c.Units != UnitsMeters && c.Units != UnitsYards {
		return fmt.Errorf("%w: unknown units %q", ErrInvalidConfig, c.Units)
	}
	return nil
}

// Speed is the qualifying pace in pool units per second.
func (c Config) Speed() float64 {
	return float64(c.RaceDistance) / c.QualifyingTime
}

// Options lists the values UIs offer in their pickers. Any positive value is
// still accepted by Validate.
type Options struct {
	PoolLengths   []float64 `json:"pool_lengths"`
	RaceDistances []int     `json:"race_distances"`
	BarWidths     []float64 `json:"pace_bar_widths"`
	Units         []string  `json:"units"`
}

func DefaultOptions() Options {
	return Options{
		PoolLengths:   []float64{25, 50, 100},
		RaceDistances: []int{50, 100, 200, 400, 500},
		BarWidths:     []float64{5, 10, 15, 20, 25},
		Units:         []string{UnitsMeters, UnitsYards},
	}
}
