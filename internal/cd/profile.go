package cd

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrRatioBounds = errors.New("cd: ratio outside [0,1]")
	ErrNegativeAcc = errors.New("cd: negative acceleration")
)

// Profile is immutable once registered; callers receive copies or read-only pointers.
type Profile struct {
	HorizontalRatio float64 `yaml:"horizontal_ratio" json:"horizontal_ratio"`
	VerticalRatio   float64 `yaml:"vertical_ratio" json:"vertical_ratio"`
	RotationalRatio float64 `yaml:"rotational_ratio" json:"rotational_ratio"`

	// m/s^2
	Acceleration float64 `yaml:"acceleration" json:"acceleration"`
	// deg/s^2
	SpinAcceleration float64 `yaml:"spin_acceleration" json:"spin_acceleration"`
	// deg/s^2
	TwistAcceleration float64 `yaml:"twist_acceleration" json:"twist_acceleration"`
}

// Identity tracks 1:1 with unbounded acceleration.
func Identity() Profile {
	inf := math.Inf(1)
	return Profile{
		HorizontalRatio:   1,
		VerticalRatio:     1,
		RotationalRatio:   1,
		Acceleration:      inf,
		SpinAcceleration:  inf,
		TwistAcceleration: inf,
	}
}

func (p *Profile) clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// WithRotationalRatio returns a copy with a different rotational ratio.
func (p Profile) WithRotationalRatio(r float64) Profile {
	p.RotationalRatio = r
	return p
}

// Validate accepts zero ratios and zero accelerations: they model an
// immovable object.
func (p Profile) Validate() error {
	ratios := map[string]float64{
		"horizontal_ratio": p.HorizontalRatio,
		"vertical_ratio":   p.VerticalRatio,
		"rotational_ratio": p.RotationalRatio,
	}
	for name, r := range ratios {
		if math.IsNaN(r) || r < 0 || r > 1 {
			return fmt.Errorf("%s=%v: %w", name, r, ErrRatioBounds)
		}
	}
	accs := map[string]float64{
		"acceleration":       p.Acceleration,
		"spin_acceleration":  p.SpinAcceleration,
		"twist_acceleration": p.TwistAcceleration,
	}
	for name, a := range accs {
		if math.IsNaN(a) || a < 0 {
			return fmt.Errorf("%s=%v: %w", name, a, ErrNegativeAcc)
		}
	}
	return nil
}
