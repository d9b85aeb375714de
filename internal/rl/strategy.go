package rl

import (
	"math"
	"math/rand"
	"sort"
)

// tieTolerance is how close two estimates must be to count as a tie
const tieTolerance = 1e-6

// Strategy picks one candidate from a set of value estimates
type Strategy interface {
	Select(values map[string]float64) string
	// ConcludeEpisode is called once per finished match
	ConcludeEpisode()
}

// EpsilonGreedy explores uniformly with probability Epsilon and otherwise
// picks uniformly among the best estimates.
type EpsilonGreedy struct {
	Epsilon float64
	Decay   float64
	rng     *rand.Rand
}

// NewEpsilonGreedy creates an epsilon-greedy strategy with multiplicative decay
func NewEpsilonGreedy(epsilon, decay float64, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{Epsilon: epsilon, Decay: decay, rng: rng}
}

func (e *EpsilonGreedy) Select(values map[string]float64) string {
	if len(values) == 0 {
		return ""
	}
	// Map order is random; sort so a seeded rng reproduces choices.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if e.rng.Float64() < e.Epsilon {
		return keys[e.rng.Intn(len(keys))]
	}

	best := math.Inf(-1)
	for _, k := range keys {
		if values[k] > best {
			best = values[k]
		}
	}
	var ties []string
	for _, k := range keys {
		if math.Abs(values[k]-best) <= tieTolerance {
			ties = append(ties, k)
		}
	}
	if len(ties) == 0 { // every estimate is NaN
		return keys[e.rng.Intn(len(keys))]
	}
	return ties[e.rng.Intn(len(ties))]
}

func (e *EpsilonGreedy) ConcludeEpisode() {
	e.Epsilon *= e.Decay
}
