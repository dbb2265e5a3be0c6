// Package config holds the versioned constant bundles the engine runs on.
// The source material describes its constants as if the framework revises
// itself; here a revision is just a named, immutable Profile injected at
// construction time. See DESIGN.md for how the canonical values were chosen.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/talgya/ljpw-field/internal/coord"
)

// Couplings are the four dimension-pair constants k used to build the
// harmony-dependent multipliers 1 + k·H. The pairs form a ring:
// Love↔Justice, Justice↔Power, Power↔Wisdom, Wisdom↔Love.
type Couplings struct {
	LoveJustice  float64 `json:"love_justice"`
	JusticePower float64 `json:"justice_power"`
	PowerWisdom  float64 `json:"power_wisdom"`
	WisdomLove   float64 `json:"wisdom_love"`
}

// Erosion parameterizes the saturating drain on the Justice axis:
// strength · P²/(P²+sat²) · 1/(1+damp·W).
type Erosion struct {
	Strength   float64 `json:"strength"`
	Saturation float64 `json:"saturation"`
	Damping    float64 `json:"damping"`
}

// Profile is one complete, immutable constant bundle.
type Profile struct {
	Name string `json:"name"`

	// ScaleFactor stretches raw lexicon hit fractions before clamping.
	ScaleFactor float64 `json:"scale_factor"`

	// Per-axis transfer gain and decay rate for the dynamics.
	Gain  [4]float64 `json:"gain"`
	Decay [4]float64 `json:"decay"`

	Couplings Couplings `json:"couplings"`
	Erosion   Erosion   `json:"erosion"`

	// ExtraLexicon adds words to an axis lexicon (keyed by axis name).
	// Additions only — the built-in lists are fixed at build time.
	ExtraLexicon map[string][]string `json:"extra_lexicon,omitempty"`
}

// V1 returns the canonical constant bundle.
// The source material scatters inconsistent illustrative values; these
// are the ones this implementation standardizes on.
func V1() *Profile {
	return &Profile{
		Name:        "v1",
		ScaleFactor: 4.0,
		Gain:        [4]float64{0.55, 0.55, 0.55, 0.55},
		Decay:       [4]float64{0.35, 0.35, 0.35, 0.35},
		Couplings: Couplings{
			LoveJustice:  0.30,
			JusticePower: 0.25,
			PowerWisdom:  0.20,
			WisdomLove:   0.35,
		},
		Erosion: Erosion{
			Strength:   0.08,
			Saturation: 0.35,
			Damping:    2.0,
		},
	}
}

// Load reads a profile from a JSON file, filling unset numeric fields
// from the V1 defaults. A missing path error is surfaced, not swallowed.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	p := V1()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects bundles that would make the engine degenerate.
func (p *Profile) Validate() error {
	if p.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be positive, got %v", p.ScaleFactor)
	}
	for i, a := range coord.Axes {
		if p.Gain[i] < 0 {
			return fmt.Errorf("gain[%s] must be non-negative, got %v", a, p.Gain[i])
		}
		if p.Decay[i] < 0 {
			return fmt.Errorf("decay[%s] must be non-negative, got %v", a, p.Decay[i])
		}
	}
	if p.Erosion.Saturation <= 0 {
		return fmt.Errorf("erosion saturation must be positive, got %v", p.Erosion.Saturation)
	}
	for name := range p.ExtraLexicon {
		if _, err := coord.ParseAxis(name); err != nil {
			return fmt.Errorf("extra_lexicon: %w", err)
		}
	}
	return nil
}
