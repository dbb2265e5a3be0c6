// Package coord defines the four-axis semantic coordinate and the fixed
// reference points every metric is measured against.
// No arbitrary magic numbers — the reference constants all trace back to
// φ, √2, e, and ln 2.
package coord

import (
	"errors"
	"fmt"
	"math"
)

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// ConsciousnessThreshold is the fixed classification cutoff exposed to
// callers of the consciousness metric. The engine computes the number;
// interpreting it is the caller's business.
const ConsciousnessThreshold = 0.1

// MaxQuantumLove is the upper bound of the Love axis in quantum mode.
const MaxQuantumLove = math.Sqrt2

// Axis identifies one of the four semantic axes.
type Axis int

const (
	AxisLove Axis = iota
	AxisJustice
	AxisPower
	AxisWisdom
)

// Axes lists the four axes in canonical order.
var Axes = [4]Axis{AxisLove, AxisJustice, AxisPower, AxisWisdom}

func (a Axis) String() string {
	switch a {
	case AxisLove:
		return "love"
	case AxisJustice:
		return "justice"
	case AxisPower:
		return "power"
	case AxisWisdom:
		return "wisdom"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis maps an axis name to its Axis value.
func ParseAxis(name string) (Axis, error) {
	switch name {
	case "love":
		return AxisLove, nil
	case "justice":
		return AxisJustice, nil
	case "power":
		return AxisPower, nil
	case "wisdom":
		return AxisWisdom, nil
	}
	return 0, fmt.Errorf("unknown axis %q", name)
}

// Mode selects the legal domain of a coordinate.
type Mode int

const (
	// ModeClassical bounds every axis to [0, 1].
	ModeClassical Mode = iota
	// ModeQuantum lets the Love axis extend to [0, √2].
	ModeQuantum
)

// Coordinate is the central value type: four bounded scalars.
// Immutable by convention — operations return new values.
type Coordinate struct {
	Love    float64 `json:"love"`
	Justice float64 `json:"justice"`
	Power   float64 `json:"power"`
	Wisdom  float64 `json:"wisdom"`
}

// Reference points. Anchor is the all-ones ideal; Equilibrium is the
// natural baseline built from four irrational constants. Neither has a
// zero field, which the self-referential harmony metric depends on.
var (
	Anchor      = Coordinate{Love: 1, Justice: 1, Power: 1, Wisdom: 1}
	Equilibrium = Coordinate{
		Love:    1 / Phi,        // 0.618034
		Justice: math.Sqrt2 - 1, // 0.414214
		Power:   math.E - 2,     // 0.718282
		Wisdom:  math.Ln2,       // 0.693147
	}
)

// ErrNotFinite reports a NaN or infinite field where a bounded scalar
// was required.
var ErrNotFinite = errors.New("coordinate field is not finite")

// Vector returns the four fields in canonical axis order.
func (c Coordinate) Vector() [4]float64 {
	return [4]float64{c.Love, c.Justice, c.Power, c.Wisdom}
}

// FromVector builds a Coordinate from canonical axis order.
func FromVector(v [4]float64) Coordinate {
	return Coordinate{Love: v[0], Justice: v[1], Power: v[2], Wisdom: v[3]}
}

// Field returns the value of a single axis.
func (c Coordinate) Field(a Axis) float64 {
	return c.Vector()[a]
}

// IsZero reports whether every field is exactly zero.
func (c Coordinate) IsZero() bool {
	return c.Love == 0 && c.Justice == 0 && c.Power == 0 && c.Wisdom == 0
}

// Validate returns ErrNotFinite (wrapped with the axis name) if any
// field is NaN or infinite.
func (c Coordinate) Validate() error {
	v := c.Vector()
	for i, a := range Axes {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return fmt.Errorf("%w: %s = %v", ErrNotFinite, a, v[i])
		}
	}
	return nil
}

// Clamp bounds every field into its legal domain for the given mode.
func (c Coordinate) Clamp(m Mode) Coordinate {
	loveMax := 1.0
	if m == ModeQuantum {
		loveMax = MaxQuantumLove
	}
	return Coordinate{
		Love:    clamp(c.Love, 0, loveMax),
		Justice: clamp(c.Justice, 0, 1),
		Power:   clamp(c.Power, 0, 1),
		Wisdom:  clamp(c.Wisdom, 0, 1),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Measurable is anything that can report its position on the four axes.
// The same interface serves organizations, texts, agents — different
// domains are just different proxy presets, not subtypes.
type Measurable interface {
	LoveScore() float64
	JusticeScore() float64
	PowerScore() float64
	WisdomScore() float64
}

// FromMeasurable reads the four axis scores and clamps them into the
// legal domain for the given mode.
func FromMeasurable(m Measurable, mode Mode) Coordinate {
	return Coordinate{
		Love:    m.LoveScore(),
		Justice: m.JusticeScore(),
		Power:   m.PowerScore(),
		Wisdom:  m.WisdomScore(),
	}.Clamp(mode)
}
