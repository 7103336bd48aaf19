package cd

import "fmt"

// Registry maps intensities to profile variants and remembers the active one.
// It is owned by the experiment and handed to controllers at construction.
type Registry struct {
	variants map[Intensity]Variant
	active   Intensity
}

func NewRegistry() *Registry {
	r := &Registry{
		variants: make(map[Intensity]Variant, len(Presets)),
		active:   None,
	}
	for k, v := range Presets {
		r.variants[k] = v.clone()
	}
	return r
}

// Register adds or replaces a variant. Non-nil profiles are validated and
// copied so later edits by the caller cannot leak in.
func (r *Registry) Register(i Intensity, v Variant) error {
	cp := Variant{}
	for _, pair := range []struct {
		src *Profile
		dst **Profile
	}{{v.Normal, &cp.Normal}, {v.Loaded, &cp.Loaded}} {
		if pair.src == nil {
			continue
		}
		if err := pair.src.Validate(); err != nil {
			return fmt.Errorf("register %s: %w", i, err)
		}
		p := *pair.src
		*pair.dst = &p
	}
	r.variants[i] = cp
	return nil
}

func (r *Registry) Select(i Intensity) error {
	if _, ok := r.variants[i]; !ok {
		return fmt.Errorf("select %q: %w", i, ErrUnknownIntensity)
	}
	r.active = i
	return nil
}

func (r *Registry) Active() Intensity { return r.active }

// Profile returns the active profile for the given load state. The pointer
// belongs to this registry; edits through it never reach Presets.
func (r *Registry) Profile(loaded bool) *Profile {
	v := r.variants[r.active]
	if loaded {
		return v.Loaded
	}
	return v.Normal
}
