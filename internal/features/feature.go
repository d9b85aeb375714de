package features

import (
	"fmt"
	"sort"
)

// Feature is a named scalar bounded to [min, max]. The bounds are fixed at
// construction and Set is the only way to change the value.
type Feature struct {
	Name  string
	min   float64
	max   float64
	value float64
}

// New creates a feature with value min
func New(name string, min, max float64) *Feature {
	return &Feature{Name: name, min: min, max: max, value: min}
}

// Set stores v clamped into [min, max]
func (f *Feature) Set(v float64) {
	switch {
	case v < f.min:
		v = f.min
	case v > f.max:
		v = f.max
	}
	f.value = v
}

func (f *Feature) Value() float64 { return f.value }
func (f *Feature) Min() float64   { return f.min }
func (f *Feature) Max() float64   { return f.max }

// MinMaxScale rewrites the value onto [0, 1]. A degenerate range scales to 0.
func (f *Feature) MinMaxScale() {
	span := f.max - f.min
	if span <= 0 {
		f.value = 0
		return
	}
	f.value = (f.value - f.min) / span
}

func (f *Feature) String() string {
	return fmt.Sprintf("%s=%g [%g,%g]", f.Name, f.value, f.min, f.max)
}

// Vector maps feature names to features
type Vector map[string]*Feature

// Add inserts f and returns it
func (v Vector) Add(f *Feature) *Feature {
	v[f.Name] = f
	return f
}

// Names returns the feature names sorted
func (v Vector) Names() []string {
	names := make([]string, 0, len(v))
	for n := range v {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Values lays the vector out in the given name order. Every name must be
// present and the vector must not hold extra names.
func (v Vector) Values(names []string) ([]float64, error) {
	if len(names) != len(v) {
		return nil, fmt.Errorf("vector has %d features, catalog has %d", len(v), len(names))
	}
	out := make([]float64, len(names))
	for i, n := range names {
		f, ok := v[n]
		if !ok {
			return nil, fmt.Errorf("feature %q missing from vector", n)
		}
		out[i] = f.value
	}
	return out, nil
}
