package rl

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"metabot/internal/features"
)

var (
	ErrWeightsNotInitialized = errors.New("weights not initialized")
	ErrFeatureMismatch       = errors.New("feature set does not match weights")
	ErrUnknownInitMethod     = errors.New("unknown weight init method")
	ErrInvalidRange          = errors.New("invalid init range")
	ErrUnknownMember         = errors.New("member has no weight row")
)

// InitMethod selects how fresh weights are drawn
type InitMethod string

const (
	// FixedInterval draws every weight from [-1, 1]
	FixedInterval InitMethod = "fixed_interval"
	// Parameterized draws from [-1/sqrt(F), 1/sqrt(F)] for F features
	Parameterized InitMethod = "parameterized"
)

// ParseInitMethod validates a configured init method name
func ParseInitMethod(s string) (InitMethod, error) {
	switch InitMethod(s) {
	case FixedInterval, Parameterized:
		return InitMethod(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInitMethod, s)
	}
}

// Weights holds one linear weight row per portfolio member. All rows share
// the same ordered feature catalog.
type Weights struct {
	names []string
	index map[string]int
	rows  map[string][]float64
}

// NewWeights creates zero rows for members over the feature catalog
func NewWeights(names, members []string) *Weights {
	w := &Weights{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		rows:  make(map[string][]float64, len(members)),
	}
	for i, n := range w.names {
		w.index[n] = i
	}
	for _, m := range members {
		w.rows[m] = make([]float64, len(names))
	}
	return w
}

// InitWeights creates randomly initialized rows
func InitWeights(names, members []string, method InitMethod, rng *rand.Rand) (*Weights, error) {
	var lo, hi float64
	switch method {
	case FixedInterval:
		lo, hi = -1, 1
	case Parameterized:
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: empty feature catalog", ErrInvalidRange)
		}
		hi = 1 / math.Sqrt(float64(len(names)))
		lo = -hi
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInitMethod, method)
	}

	return UniformWeights(names, members, lo, hi, rng)
}

// UniformWeights draws every weight uniformly from [lo, hi]
func UniformWeights(names, members []string, lo, hi float64, rng *rand.Rand) (*Weights, error) {
	if lo > hi {
		return nil, fmt.Errorf("%w: min %g > max %g", ErrInvalidRange, lo, hi)
	}
	w := NewWeights(names, members)
	// Sorted member order keeps draws reproducible for a seed.
	for _, m := range w.Members() {
		row := w.rows[m]
		for i := range row {
			row[i] = lo + rng.Float64()*(hi-lo)
		}
	}
	return w, nil
}

// Names returns the feature catalog in row order
func (w *Weights) Names() []string { return w.names }

// Members returns the member ids sorted
func (w *Weights) Members() []string {
	out := make([]string, 0, len(w.rows))
	for m := range w.rows {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Row returns member's weights in catalog order. The slice is shared.
func (w *Weights) Row(member string) ([]float64, bool) {
	r, ok := w.rows[member]
	return r, ok
}

// Get returns a single weight
func (w *Weights) Get(member, feature string) (float64, bool) {
	r, ok := w.rows[member]
	if !ok {
		return 0, false
	}
	i, ok := w.index[feature]
	if !ok {
		return 0, false
	}
	return r[i], true
}

// Set overwrites a single weight
func (w *Weights) Set(member, feature string, v float64) error {
	r, ok := w.rows[member]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	i, ok := w.index[feature]
	if !ok {
		return fmt.Errorf("%w: unknown feature %q", ErrFeatureMismatch, feature)
	}
	r[i] = v
	return nil
}

// Align lays a feature vector out in catalog order
func (w *Weights) Align(v features.Vector) ([]float64, error) {
	vals, err := v.Values(w.names)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureMismatch, err)
	}
	return vals, nil
}

// SameCatalog reports whether names equals the weights' catalog
func (w *Weights) SameCatalog(names []string) bool {
	if len(names) != len(w.names) {
		return false
	}
	for _, n := range names {
		if _, ok := w.index[n]; !ok {
			return false
		}
	}
	return true
}

// Q returns the clipped linear estimate for member on aligned values
func (w *Weights) Q(member string, values []float64) (float64, error) {
	r, ok := w.rows[member]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	if len(values) != len(r) {
		return 0, fmt.Errorf("%w: %d values for %d weights", ErrFeatureMismatch, len(values), len(r))
	}
	return clip(floats.Dot(values, r)), nil
}

// Update adds step·values to member's row
func (w *Weights) Update(member string, values []float64, step float64) error {
	r, ok := w.rows[member]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	if len(values) != len(r) {
		return fmt.Errorf("%w: %d values for %d weights", ErrFeatureMismatch, len(values), len(r))
	}
	floats.AddScaled(r, step, values)
	return nil
}

// Map returns the nested member → feature → weight mapping
func (w *Weights) Map() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(w.rows))
	for m, r := range w.rows {
		inner := make(map[string]float64, len(r))
		for i, n := range w.names {
			inner[n] = r[i]
		}
		out[m] = inner
	}
	return out
}

// Clone returns a deep copy
func (w *Weights) Clone() *Weights {
	c := NewWeights(w.names, nil)
	for m, r := range w.rows {
		c.rows[m] = append([]float64(nil), r...)
	}
	return c
}

func clip(q float64) float64 {
	return math.Max(-1, math.Min(1, q))
}
