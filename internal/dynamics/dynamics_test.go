package dynamics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/talgya/ljpw-field/internal/config"
	"github.com/talgya/ljpw-field/internal/coord"
)

func TestSimulateRejectsBadParameters(t *testing.T) {
	p := config.V1()
	initial := coord.Equilibrium

	cases := []Options{
		{Duration: 10, Step: 0},
		{Duration: 10, Step: -0.1},
		{Duration: 0, Step: 0.1},
		{Duration: -5, Step: 0.1},
		{Duration: math.NaN(), Step: 0.1},
		{Duration: 10, Step: math.Inf(1)},
	}
	for _, opts := range cases {
		if _, err := Simulate(context.Background(), p, initial, opts); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("opts %+v: got %v, want ErrInvalidParameter", opts, err)
		}
	}
}

func TestSimulateRejectsNonFiniteInitial(t *testing.T) {
	bad := coord.Coordinate{Love: math.NaN()}
	_, err := Simulate(context.Background(), config.V1(), bad, Options{Duration: 1, Step: 0.1})
	if !errors.Is(err, coord.ErrNotFinite) {
		t.Fatalf("got %v, want ErrNotFinite", err)
	}
}

func TestZeroStateIsFixedPoint(t *testing.T) {
	tr, err := Simulate(context.Background(), config.V1(), coord.Coordinate{}, Options{
		Duration: 100,
		Step:     0.1,
		Bounded:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range tr.Samples {
		if !s.State.IsZero() {
			t.Fatalf("t=%v: state %+v left the origin", s.T, s.State)
		}
	}
	if tr.PathLength != 0 {
		t.Fatalf("path length = %v, want 0", tr.PathLength)
	}
}

func TestBoundedRunConvergesTowardAnchor(t *testing.T) {
	initial := coord.Coordinate{Love: 0.001, Justice: 0.001, Power: 0.001, Wisdom: 0.001}
	tr, err := Simulate(context.Background(), config.V1(), initial, Options{
		Duration: 100,
		Step:     0.1,
		Bounded:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := distToAnchor(initial)
	after := distToAnchor(tr.Final())
	if after >= before {
		t.Fatalf("distance to anchor grew: %v -> %v", before, after)
	}
	// Over 100 time units the bounded system should have essentially
	// saturated at the anchor.
	if after > 0.05 {
		t.Fatalf("final distance to anchor = %v, expected near 0", after)
	}
}

func TestBoundedStateStaysInDomain(t *testing.T) {
	tr, err := Simulate(context.Background(), config.V1(), coord.Equilibrium, Options{
		Duration: 50,
		Step:     0.1,
		Bounded:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range tr.Samples {
		for i, v := range s.State.Vector() {
			if v < 0 || v > 1 {
				t.Fatalf("t=%v: %s = %v out of [0,1]", s.T, coord.Axes[i], v)
			}
		}
	}
	if tr.Overflowed {
		t.Fatal("bounded run flagged as overflowed")
	}
}

func TestUnboundedRunOverflowsNotHangs(t *testing.T) {
	tr, err := Simulate(context.Background(), config.V1(), coord.Anchor, Options{
		Duration: 1000,
		Step:     1.0,
		Bounded:  false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tr.Overflowed {
		t.Fatalf("expected overflow flag; final state %+v", tr.Final())
	}
	if len(tr.Samples) >= 1001 {
		t.Fatalf("overflowed run was not cut short: %d samples", len(tr.Samples))
	}
	// Statistics accumulated before the overflow stay finite.
	if math.IsNaN(tr.PathLength) || math.IsInf(tr.PathLength, 0) {
		t.Fatalf("path length not finite: %v", tr.PathLength)
	}
	if math.IsNaN(tr.DisharmonyIntegral) || math.IsInf(tr.DisharmonyIntegral, 0) {
		t.Fatalf("disharmony integral not finite: %v", tr.DisharmonyIntegral)
	}
}

func TestTrajectoryShape(t *testing.T) {
	initial := coord.Equilibrium
	tr, err := Simulate(context.Background(), config.V1(), initial, Options{
		Duration: 1.0,
		Step:     0.3, // does not divide evenly: 4 steps, last one short
		Bounded:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Samples[0].T != 0 || tr.Samples[0].State != initial {
		t.Fatalf("first sample = %+v, want initial at t=0", tr.Samples[0])
	}
	wantSteps := int(math.Ceil(1.0 / 0.3))
	if len(tr.Samples) != wantSteps+1 {
		t.Fatalf("samples = %d, want %d steps + initial", len(tr.Samples), wantSteps)
	}
	last := tr.Samples[len(tr.Samples)-1]
	if math.Abs(last.T-1.0) > 1e-9 {
		t.Fatalf("final sample at t=%v, want 1.0", last.T)
	}
	if tr.RunID == "" {
		t.Fatal("trajectory has no run ID")
	}
}

func TestDeterministicWithoutNoise(t *testing.T) {
	initial := coord.Coordinate{Love: 0.2, Justice: 0.4, Power: 0.6, Wisdom: 0.8}
	opts := Options{Duration: 10, Step: 0.1, Bounded: true}

	a, err := Simulate(context.Background(), config.V1(), initial, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Simulate(context.Background(), config.V1(), initial, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("runs diverge at sample %d: %+v vs %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestNoiseForcingPerturbsTheRun(t *testing.T) {
	// Short run from a low state so neither trajectory saturates at the
	// clamp boundary, where the forcing would be invisible.
	initial := coord.Coordinate{Love: 0.1, Justice: 0.1, Power: 0.1, Wisdom: 0.1}
	quiet, err := Simulate(context.Background(), config.V1(), initial, Options{
		Duration: 2, Step: 0.1, Bounded: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	noisy, err := Simulate(context.Background(), config.V1(), initial, Options{
		Duration: 2, Step: 0.1, Bounded: true, NoiseAmplitude: 0.2, NoiseSeed: 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiet.Final() == noisy.Final() {
		t.Fatal("noise forcing had no effect on the trajectory")
	}

	// Same seed and amplitude reproduce the same perturbed path.
	again, err := Simulate(context.Background(), config.V1(), initial, Options{
		Duration: 2, Step: 0.1, Bounded: true, NoiseAmplitude: 0.2, NoiseSeed: 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noisy.Final() != again.Final() {
		t.Fatal("seeded noise runs are not reproducible")
	}
}

func TestMaxStepsCapsRun(t *testing.T) {
	tr, err := Simulate(context.Background(), config.V1(), coord.Equilibrium, Options{
		Duration: 100,
		Step:     0.1,
		Bounded:  true,
		MaxSteps: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Samples) != 11 {
		t.Fatalf("samples = %d, want 11 (10 steps + initial)", len(tr.Samples))
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Simulate(ctx, config.V1(), coord.Equilibrium, Options{Duration: 100, Step: 0.001})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func distToAnchor(c coord.Coordinate) float64 {
	return dist4(c.Vector(), coord.Anchor.Vector())
}
