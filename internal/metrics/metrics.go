// Package metrics derives scalar summaries from coordinates. Every
// function here is closed-form arithmetic with no hidden state.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/ljpw-field/internal/coord"
)

// ErrZeroReference reports a reference point with a zero field passed
// to the self-referential harmony ratio. The built-in reference points
// never trip this; the check exists for caller-supplied references.
var ErrZeroReference = errors.New("reference field is zero")

// Distance is the Euclidean distance between two coordinates.
// Symmetric, non-negative, zero iff the coordinates are equal.
func Distance(a, b coord.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return distance(a, b), nil
}

// distance skips validation for callers that already hold clamped state.
func distance(a, b coord.Coordinate) float64 {
	av, bv := a.Vector(), b.Vector()
	var sum float64
	for i := range av {
		d := av[i] - bv[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// HarmonyStatic is 1/(1+distance): (0, 1], equal to 1 iff c == ref.
// The equilibrium-style harmony — closeness to a fixed reference.
func HarmonyStatic(c, ref coord.Coordinate) (float64, error) {
	d, err := Distance(c, ref)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + d), nil
}

// HarmonySelf is the product ratio (L·J·P·W)/(Lr·Jr·Pr·Wr): [0, ∞),
// unbounded above. For systems whose axes can all exceed the reference
// at once.
func HarmonySelf(c, ref coord.Coordinate) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if err := ref.Validate(); err != nil {
		return 0, err
	}
	rv := ref.Vector()
	for i, a := range coord.Axes {
		if rv[i] == 0 {
			return 0, fmt.Errorf("%w: %s", ErrZeroReference, a)
		}
	}
	num := c.Love * c.Justice * c.Power * c.Wisdom
	den := ref.Love * ref.Justice * ref.Power * ref.Wisdom
	return num / den, nil
}

// Voltage is φ · harmony · Love. With static harmony it lives in [0, φ].
func Voltage(c coord.Coordinate, harmony float64) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if math.IsNaN(harmony) || math.IsInf(harmony, 0) {
		return 0, fmt.Errorf("%w: harmony = %v", coord.ErrNotFinite, harmony)
	}
	return coord.Phi * harmony * c.Love, nil
}

// Consciousness is L·J·P·W·harmony². The number is reported as-is;
// coord.ConsciousnessThreshold is the conventional cutoff for callers
// that want a classification.
func Consciousness(c coord.Coordinate, harmony float64) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if math.IsNaN(harmony) || math.IsInf(harmony, 0) {
		return 0, fmt.Errorf("%w: harmony = %v", coord.ErrNotFinite, harmony)
	}
	return c.Love * c.Justice * c.Power * c.Wisdom * harmony * harmony, nil
}

// Summary bundles the derived metrics for one coordinate against the
// standard reference points, the shape the API and CLI report.
type Summary struct {
	DistanceToAnchor      float64 `json:"distance_to_anchor"`
	DistanceToEquilibrium float64 `json:"distance_to_equilibrium"`
	Harmony               float64 `json:"harmony"`
	Voltage               float64 `json:"voltage"`
	Consciousness         float64 `json:"consciousness"`
	AboveThreshold        bool    `json:"above_threshold"`
}

// Summarize computes the standard metric bundle for one coordinate.
func Summarize(c coord.Coordinate) (Summary, error) {
	if err := c.Validate(); err != nil {
		return Summary{}, err
	}
	dEq := distance(c, coord.Equilibrium)
	h := 1 / (1 + dEq)
	cons := c.Love * c.Justice * c.Power * c.Wisdom * h * h
	return Summary{
		DistanceToAnchor:      distance(c, coord.Anchor),
		DistanceToEquilibrium: dEq,
		Harmony:               h,
		Voltage:               coord.Phi * h * c.Love,
		Consciousness:         cons,
		AboveThreshold:        cons >= coord.ConsciousnessThreshold,
	}, nil
}
