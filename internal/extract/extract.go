// Package extract maps raw inputs — free text or weighted proxy
// indicators — onto the four-axis coordinate. Purely functional:
// identical input and profile always produce identical output.
package extract

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/ljpw-field/internal/config"
	"github.com/talgya/ljpw-field/internal/coord"
)

// ErrZeroWeight reports a proxy dimension whose total weight is zero —
// an average over nothing is ambiguous, so it fails rather than
// silently reporting 0.
var ErrZeroWeight = errors.New("zero total weight for dimension")

// Observation is one raw proxy reading with its declared weight.
type Observation struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// ProxySet carries the observations for each axis. Consumed once.
type ProxySet map[coord.Axis][]Observation

// FromText scores free text against the four lexicons.
//
// Each axis gets the fraction of tokens found in its lexicon, stretched
// by the profile scale factor and clamped into the mode's domain.
// Empty or wholly non-matching text is the zero coordinate, not an
// error.
func FromText(p *config.Profile, text string, mode coord.Mode) coord.Coordinate {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return coord.Coordinate{}
	}

	lookup := builtinLookup
	if len(p.ExtraLexicon) > 0 {
		lookup = buildLookup(p.ExtraLexicon)
	}

	var hits [4]int
	for _, tok := range tokens {
		if a, ok := lookup[tok]; ok {
			hits[a]++
		}
	}

	total := float64(len(tokens))
	var v [4]float64
	for i := range v {
		v[i] = float64(hits[i]) / total * p.ScaleFactor
	}
	return coord.FromVector(v).Clamp(mode)
}

// FromProxies computes the weighted average reading per axis.
//
// Every axis needs at least one observation with positive total weight;
// a missing or zero-weight axis fails with ErrZeroWeight naming the
// axis, so the caller can see exactly which input was bad.
func FromProxies(set ProxySet) (coord.Coordinate, error) {
	var v [4]float64
	for i, a := range coord.Axes {
		obs := set[a]
		var weighted, total float64
		for _, o := range obs {
			if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
				return coord.Coordinate{}, fmt.Errorf("%w: %s value %v", coord.ErrNotFinite, a, o.Value)
			}
			if math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) {
				return coord.Coordinate{}, fmt.Errorf("%w: %s weight %v", coord.ErrNotFinite, a, o.Weight)
			}
			weighted += o.Value * o.Weight
			total += o.Weight
		}
		if total == 0 {
			return coord.Coordinate{}, fmt.Errorf("%w: %s", ErrZeroWeight, a)
		}
		v[i] = weighted / total
	}
	return coord.FromVector(v).Clamp(coord.ModeClassical), nil
}
