// Package dynamics integrates the four-axis coupled ODE system forward
// in time. The system is a ring of harmony-modulated transfers between
// axes: each axis is fed by the other three, decays toward zero on its
// own, and Justice additionally bleeds through a saturating erosion
// term driven by Power and damped by Wisdom. The all-zero state is an
// exact fixed point — a dead system stays dead.
package dynamics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/ljpw-field/internal/config"
	"github.com/talgya/ljpw-field/internal/coord"
)

// ErrInvalidParameter reports a non-positive or non-finite duration or
// step size. Checked before any integration begins.
var ErrInvalidParameter = errors.New("invalid simulation parameter")

// OverflowLimit is the magnitude past which an unbounded run stops
// early with a partial trajectory instead of marching toward ±Inf.
const OverflowLimit = 1e12

// Options configures one simulation run.
type Options struct {
	Duration float64    `json:"duration"`
	Step     float64    `json:"step"`
	Bounded  bool       `json:"bounded"`
	Mode     coord.Mode `json:"mode"`

	// NoiseAmplitude adds smooth stochastic forcing to every axis.
	// Zero (the default) reproduces the deterministic system exactly.
	NoiseAmplitude float64 `json:"noise_amplitude,omitempty"`
	NoiseSeed      int64   `json:"noise_seed,omitempty"`

	// MaxSteps caps the iteration count regardless of duration.
	// Zero means no cap.
	MaxSteps int `json:"max_steps,omitempty"`
}

// Sample is one point on a trajectory.
type Sample struct {
	T     float64          `json:"t"`
	State coord.Coordinate `json:"state"`
}

// Trajectory is the result of one run: the sampled path plus its
// summary statistics. Immutable once returned; owned by the caller.
type Trajectory struct {
	RunID   string           `json:"run_id"`
	Initial coord.Coordinate `json:"initial"`
	Options Options          `json:"options"`
	Samples []Sample         `json:"samples"`

	// PathLength is the cumulative Euclidean distance between
	// consecutive states.
	PathLength float64 `json:"path_length"`

	// DisharmonyIntegral is ∫(1−harmony)dt over the run, trapezoidal.
	DisharmonyIntegral float64 `json:"disharmony_integral"`

	// StruggleRatio is DisharmonyIntegral divided by elapsed time.
	StruggleRatio float64 `json:"struggle_ratio"`

	// Overflowed marks an unbounded run cut short at OverflowLimit.
	// The partial trajectory up to that point is still returned.
	Overflowed bool `json:"overflowed"`
}

// Final returns the last sampled state.
func (tr *Trajectory) Final() coord.Coordinate {
	return tr.Samples[len(tr.Samples)-1].State
}

// Simulate integrates the system from initial over opts.Duration with a
// classical 4th-order Runge–Kutta step. Cancellation is cooperative:
// the context is checked once per step.
func Simulate(ctx context.Context, p *config.Profile, initial coord.Coordinate, opts Options) (*Trajectory, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if !(opts.Step > 0) || math.IsInf(opts.Step, 0) {
		return nil, fmt.Errorf("%w: step %v", ErrInvalidParameter, opts.Step)
	}
	if !(opts.Duration > 0) || math.IsInf(opts.Duration, 0) {
		return nil, fmt.Errorf("%w: duration %v", ErrInvalidParameter, opts.Duration)
	}

	steps := int(math.Ceil(opts.Duration / opts.Step))
	if opts.MaxSteps > 0 && steps > opts.MaxSteps {
		steps = opts.MaxSteps
	}

	deriv := derivativeFunc(p, opts)

	tr := &Trajectory{
		RunID:   uuid.NewString(),
		Initial: initial,
		Options: opts,
		Samples: make([]Sample, 0, steps+1),
	}
	tr.Samples = append(tr.Samples, Sample{T: 0, State: initial})

	state := initial.Vector()
	hPrev := harmony(state)
	t := 0.0

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dt := opts.Step
		if t+dt > opts.Duration {
			dt = opts.Duration - t
		}

		next := rk4(deriv, t, state, dt)
		t += dt

		if opts.Bounded {
			next = coord.FromVector(next).Clamp(opts.Mode).Vector()
		}

		overflow := false
		for _, v := range next {
			if math.Abs(v) > OverflowLimit || math.IsNaN(v) {
				overflow = true
				break
			}
		}
		if overflow {
			// Keep the statistics finite: record the state that blew
			// past the limit but stop accumulating integrals.
			tr.Overflowed = true
			tr.Samples = append(tr.Samples, Sample{T: t, State: coord.FromVector(next)})
			break
		}

		hNext := harmony(next)
		tr.PathLength += dist4(state, next)
		tr.DisharmonyIntegral += 0.5 * ((1 - hPrev) + (1 - hNext)) * dt
		tr.Samples = append(tr.Samples, Sample{T: t, State: coord.FromVector(next)})

		state = next
		hPrev = hNext
	}

	if elapsed := tr.Samples[len(tr.Samples)-1].T; elapsed > 0 {
		tr.StruggleRatio = tr.DisharmonyIntegral / elapsed
	}
	return tr, nil
}

// derivativeFunc builds the dS/dt evaluator for one run, binding the
// profile constants and, when enabled, a seeded noise field.
func derivativeFunc(p *config.Profile, opts Options) func(t float64, s [4]float64) [4]float64 {
	var noise opensimplex.Noise
	if opts.NoiseAmplitude > 0 {
		noise = opensimplex.New(opts.NoiseSeed)
	}

	return func(t float64, s [4]float64) [4]float64 {
		h := harmony(s)

		mLJ := 1 + p.Couplings.LoveJustice*h
		mJP := 1 + p.Couplings.JusticePower*h
		mPW := 1 + p.Couplings.PowerWisdom*h
		mWL := 1 + p.Couplings.WisdomLove*h

		L, J, P, W := s[0], s[1], s[2], s[3]

		var d [4]float64
		d[0] = p.Gain[0]/3*(mLJ*J+P+mWL*W) - p.Decay[0]*L
		d[1] = p.Gain[1]/3*(mLJ*L+mJP*P+W) - p.Decay[1]*J - erosion(p, P, W)
		d[2] = p.Gain[2]/3*(mJP*J+mPW*W+L) - p.Decay[2]*P
		d[3] = p.Gain[3]/3*(mPW*P+mWL*L+J) - p.Decay[3]*W

		if noise != nil {
			for i := range d {
				d[i] += opts.NoiseAmplitude * noise.Eval2(t, float64(i)*17.0)
			}
		}
		return d
	}
}

// erosion is the saturating drain on Justice: grows with Power, damped
// by Wisdom, exactly zero when Power is zero.
func erosion(p *config.Profile, power, wisdom float64) float64 {
	sat := p.Erosion.Saturation
	frac := power * power / (power*power + sat*sat)
	return p.Erosion.Strength * frac / (1 + p.Erosion.Damping*wisdom)
}

// rk4 advances one classical Runge–Kutta step of size dt.
func rk4(f func(float64, [4]float64) [4]float64, t float64, s [4]float64, dt float64) [4]float64 {
	k1 := f(t, s)
	k2 := f(t+dt/2, add(s, scale(k1, dt/2)))
	k3 := f(t+dt/2, add(s, scale(k2, dt/2)))
	k4 := f(t+dt, add(s, scale(k3, dt)))

	var out [4]float64
	for i := range out {
		out[i] = s[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

// harmony is the static harmony against the natural equilibrium,
// inlined on the raw vector for the inner loop.
func harmony(s [4]float64) float64 {
	return 1 / (1 + dist4(s, coord.Equilibrium.Vector()))
}

func dist4(a, b [4]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func add(a, b [4]float64) [4]float64 {
	for i := range a {
		a[i] += b[i]
	}
	return a
}

func scale(v [4]float64, f float64) [4]float64 {
	for i := range v {
		v[i] *= f
	}
	return v
}
