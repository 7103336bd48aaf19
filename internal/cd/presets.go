package cd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownIntensity = errors.New("cd: unknown intensity")
	ErrUnknownCondition = errors.New("cd: unknown condition")
)

type Intensity string

const (
	None       Intensity = "none"
	Subtle     Intensity = "subtle"
	Pronounced Intensity = "pronounced"
)

// Variant pairs the profile used for an empty tool with the one used once it
// carries a load. A nil entry means pass-through.
type Variant struct {
	Normal *Profile `yaml:"normal" json:"normal"`
	Loaded *Profile `yaml:"loaded" json:"loaded"`
}

func (v Variant) clone() Variant {
	return Variant{Normal: v.Normal.clone(), Loaded: v.Loaded.clone()}
}

var Presets = map[Intensity]Variant{
	None: {},
	Subtle: {
		Normal: &Profile{
			HorizontalRatio: 0.9, VerticalRatio: 0.8, RotationalRatio: 0.9,
			Acceleration: 7, SpinAcceleration: 630, TwistAcceleration: 720,
		},
		Loaded: &Profile{
			HorizontalRatio: 0.85, VerticalRatio: 0.75, RotationalRatio: 0.85,
			Acceleration: 6, SpinAcceleration: 540, TwistAcceleration: 630,
		},
	},
	Pronounced: {
		Normal: &Profile{
			HorizontalRatio: 0.8, VerticalRatio: 0.7, RotationalRatio: 0.8,
			Acceleration: 5, SpinAcceleration: 450, TwistAcceleration: 540,
		},
		Loaded: &Profile{
			HorizontalRatio: 0.75, VerticalRatio: 0.65, RotationalRatio: 0.75,
			Acceleration: 4, SpinAcceleration: 360, TwistAcceleration: 450,
		},
	},
}

func ParseIntensity(s string) (Intensity, error) {
	i := Intensity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Presets[i]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownIntensity)
	}
	return i, nil
}

// ListPresets returns preset names, including the *_loaded variants.
func ListPresets() []string {
	names := make([]string, 0, len(Presets)*2)
	for i := range Presets {
		names = append(names, string(i), string(i)+"_loaded")
	}
	sort.Strings(names)
	return names
}

// GetPreset resolves a preset name such as "subtle" or "pronounced_loaded"
// and returns a copy of its profile. The bool reports whether the name is
// known; a known name can still map to a nil profile (the none preset).
func GetPreset(name string) (*Profile, bool) {
	name = strings.ToLower(name)
	loaded := strings.HasSuffix(name, "_loaded")
	v, ok := Presets[Intensity(strings.TrimSuffix(name, "_loaded"))]
	if !ok {
		return nil, false
	}
	if loaded {
		return v.Loaded.clone(), true
	}
	return v.Normal.clone(), true
}

// Condition identifies an experimental condition. C conditions are driven by
// controllers, P conditions by tracked hands and physical props.
type Condition string

const (
	C0 Condition = "C0"
	C1 Condition = "C1"
	C2 Condition = "C2"
	P0 Condition = "P0"
	P1 Condition = "P1"
	P2 Condition = "P2"
)

var conditionOrder = []Condition{C0, C1, C2, P0, P1, P2}

var conditionIntensity = map[Condition]Intensity{
	C0: None, C1: Subtle, C2: Pronounced,
	P0: None, P1: Subtle, P2: Pronounced,
}

func ParseCondition(s string) (Condition, error) {
	c := Condition(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := conditionIntensity[c]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownCondition)
	}
	return c, nil
}

func Conditions() []Condition {
	out := make([]Condition, len(conditionOrder))
	copy(out, conditionOrder)
	return out
}

// Next cycles C0 → C1 → C2 → P0 → P1 → P2 → C0.
func (c Condition) Next() Condition {
	for i, cc := range conditionOrder {
		if cc == c {
			return conditionOrder[(i+1)%len(conditionOrder)]
		}
	}
	return C0
}

func (c Condition) Intensity() Intensity { return conditionIntensity[c] }

// Tracking reports whether the condition uses tracked hands and props.
func (c Condition) Tracking() bool { return strings.HasPrefix(string(c), "P") }
