package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/talgya/ljpw-field/internal/coord"
)

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]coord.Coordinate{
		{{Love: 0.1, Justice: 0.9, Power: 0.4, Wisdom: 0.7}, {Love: 0.8, Justice: 0.2, Power: 0.6, Wisdom: 0.3}},
		{coord.Anchor, coord.Equilibrium},
		{{}, coord.Anchor},
	}
	for _, pr := range pairs {
		ab, err := Distance(pr[0], pr[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ba, err := Distance(pr[1], pr[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ab != ba {
			t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceZeroIffEqual(t *testing.T) {
	c := coord.Coordinate{Love: 0.3, Justice: 0.3, Power: 0.3, Wisdom: 0.3}
	d, err := Distance(c, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Fatalf("distance(c, c) = %v, want 0", d)
	}

	d, err = Distance(c, coord.Anchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d <= 0 {
		t.Fatalf("distance to anchor = %v, want > 0", d)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Unit offset on every axis: distance is exactly 2.
	d, err := Distance(coord.Coordinate{}, coord.Anchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 2 {
		t.Fatalf("distance(0, anchor) = %v, want 2", d)
	}
}

func TestHarmonyStaticRange(t *testing.T) {
	states := []coord.Coordinate{
		{},
		{Love: 0.2, Justice: 0.9, Power: 0.1, Wisdom: 0.5},
		coord.Anchor,
		coord.Equilibrium,
	}
	for _, c := range states {
		h, err := HarmonyStatic(c, coord.Equilibrium)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h <= 0 || h > 1 {
			t.Fatalf("harmony(%+v) = %v, outside (0, 1]", c, h)
		}
		if c == coord.Equilibrium && h != 1 {
			t.Fatalf("harmony at reference = %v, want exactly 1", h)
		}
		if c != coord.Equilibrium && h == 1 {
			t.Fatalf("harmony = 1 away from reference (%+v)", c)
		}
	}
}

func TestHarmonySelf(t *testing.T) {
	h, err := HarmonySelf(coord.Anchor, coord.Anchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 1 {
		t.Fatalf("self harmony at reference = %v, want 1", h)
	}

	// Exceeding the reference on every axis pushes the ratio above 1.
	c := coord.Coordinate{Love: 0.8, Justice: 0.8, Power: 0.8, Wisdom: 0.8}
	h, err = HarmonySelf(c, coord.Equilibrium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h <= 1 {
		t.Fatalf("self harmony = %v, want > 1", h)
	}
}

func TestHarmonySelfZeroReference(t *testing.T) {
	ref := coord.Coordinate{Love: 1, Justice: 0, Power: 1, Wisdom: 1}
	_, err := HarmonySelf(coord.Anchor, ref)
	if !errors.Is(err, ErrZeroReference) {
		t.Fatalf("got %v, want ErrZeroReference", err)
	}
}

func TestVoltage(t *testing.T) {
	c := coord.Coordinate{Love: 1, Justice: 1, Power: 1, Wisdom: 1}
	v, err := Voltage(c, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != coord.Phi {
		t.Fatalf("voltage = %v, want phi", v)
	}

	v, err = Voltage(coord.Coordinate{}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Fatalf("voltage with zero love = %v, want 0", v)
	}
}

func TestConsciousness(t *testing.T) {
	got, err := Consciousness(coord.Anchor, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.25 {
		t.Fatalf("consciousness = %v, want 0.25", got)
	}

	// Any zero axis kills the product.
	got, err = Consciousness(coord.Coordinate{Justice: 1, Power: 1, Wisdom: 1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("consciousness with zero love = %v, want 0", got)
	}
}

func TestMetricsRejectNonFinite(t *testing.T) {
	bad := coord.Coordinate{Love: math.NaN(), Justice: 1, Power: 1, Wisdom: 1}

	if _, err := Distance(bad, coord.Anchor); !errors.Is(err, coord.ErrNotFinite) {
		t.Fatalf("Distance: got %v, want ErrNotFinite", err)
	}
	if _, err := HarmonyStatic(coord.Anchor, bad); !errors.Is(err, coord.ErrNotFinite) {
		t.Fatalf("HarmonyStatic: got %v, want ErrNotFinite", err)
	}
	if _, err := HarmonySelf(bad, coord.Anchor); !errors.Is(err, coord.ErrNotFinite) {
		t.Fatalf("HarmonySelf: got %v, want ErrNotFinite", err)
	}
	if _, err := Voltage(coord.Anchor, math.Inf(1)); !errors.Is(err, coord.ErrNotFinite) {
		t.Fatalf("Voltage: got %v, want ErrNotFinite", err)
	}
	if _, err := Consciousness(coord.Anchor, math.NaN()); !errors.Is(err, coord.ErrNotFinite) {
		t.Fatalf("Consciousness: got %v, want ErrNotFinite", err)
	}
}

func TestSummarize(t *testing.T) {
	sum, err := Summarize(coord.Equilibrium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Harmony != 1 {
		t.Fatalf("harmony at equilibrium = %v, want 1", sum.Harmony)
	}
	if sum.DistanceToEquilibrium != 0 {
		t.Fatalf("distance to equilibrium = %v, want 0", sum.DistanceToEquilibrium)
	}
	// L·J·P·W at equilibrium ≈ 0.1274 > 0.1, harmony is 1.
	if !sum.AboveThreshold {
		t.Fatal("equilibrium should sit above the consciousness threshold")
	}

	sum, err = Summarize(coord.Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Consciousness != 0 || sum.AboveThreshold {
		t.Fatalf("zero state: consciousness = %v, above = %v", sum.Consciousness, sum.AboveThreshold)
	}
}
