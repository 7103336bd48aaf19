package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/heft/internal/host"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScript   = errors.New("scenario: script has no actions")
	ErrUnknownAction = errors.New("scenario: unknown action")
	ErrUnknownAnchor = errors.New("scenario: unknown anchor")
	ErrMissingObject = errors.New("scenario: action needs an object")
)

type ActionKind string

const (
	Move    ActionKind = "move"
	Press   ActionKind = "press"
	Release ActionKind = "release"
	Hold    ActionKind = "hold"
	Drop    ActionKind = "drop"
	Carry   ActionKind = "carry"
	Roll    ActionKind = "roll"
	Walk    ActionKind = "walk"
	Wait    ActionKind = "wait"
)

// Action is one step of a script. Which fields matter depends on Kind.
type Action struct {
	Kind   ActionKind `yaml:"kind"`
	Anchor string     `yaml:"anchor,omitempty"`
	// With names a second anchor that moves rigidly with Anchor.
	With   string        `yaml:"with,omitempty"`
	Object host.ObjectID `yaml:"object,omitempty"`

	To      mgl64.Vec3  `yaml:"to,omitempty"`
	Forward *mgl64.Vec3 `yaml:"forward,omitempty"`
	// Point is the carried point in the displayed object's frame; zero means
	// the object origin.
	Point     mgl64.Vec3 `yaml:"point,omitempty"`
	Tolerance float64    `yaml:"tolerance,omitempty"`

	Degrees float64 `yaml:"degrees,omitempty"`
	Seconds float64 `yaml:"seconds,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case Wait:
		return fmt.Sprintf("wait %.2fs", a.Seconds)
	case Roll:
		return fmt.Sprintf("roll %s %.0f°", a.Anchor, a.Degrees)
	case Press, Release:
		return fmt.Sprintf("%s %s", a.Kind, a.Anchor)
	case Hold, Drop:
		return fmt.Sprintf("%s %s", a.Kind, a.Object)
	}
	return fmt.Sprintf("%s %s -> (%.2f, %.2f, %.2f)", a.Kind, a.Anchor, a.To[0], a.To[1], a.To[2])
}

// Placement is an initial pose in a script.
type Placement struct {
	Pos     mgl64.Vec3  `yaml:"pos"`
	Forward *mgl64.Vec3 `yaml:"forward,omitempty"`
}

type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Head    Placement                   `yaml:"head"`
	Anchors map[string]Placement        `yaml:"anchors"`
	Objects map[host.ObjectID]Placement `yaml:"objects,omitempty"`
	Actions []Action                    `yaml:"actions"`
}

func (s *Script) Validate() error {
	if len(s.Actions) == 0 {
		return fmt.Errorf("%s: %w", s.Name, ErrEmptyScript)
	}
	for name := range s.Anchors {
		if host.ParseAnchor(name) == host.NoAnchor {
			return fmt.Errorf("placement %q: %w", name, ErrUnknownAnchor)
		}
	}
	for i, a := range s.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, a.Kind, err)
		}
	}
	return nil
}

func (a Action) validate() error {
	switch a.Kind {
	case Wait, Walk:
		return nil
	case Move, Press, Release, Carry, Roll:
	case Hold, Drop:
		if a.Object == "" {
			return ErrMissingObject
		}
	default:
		return ErrUnknownAction
	}
	if host.ParseAnchor(a.Anchor) == host.NoAnchor {
		return fmt.Errorf("%q: %w", a.Anchor, ErrUnknownAnchor)
	}
	if a.With != "" && host.ParseAnchor(a.With) == host.NoAnchor {
		return fmt.Errorf("%q: %w", a.With, ErrUnknownAnchor)
	}
	return nil
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func Save(path string, s *Script) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
