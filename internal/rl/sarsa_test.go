package rl

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSarsaTerminalUpdate(t *testing.T) {
	strategy := NewEpsilonGreedy(0.2, 0.5, rand.New(rand.NewSource(1)))
	s := NewSarsa(0.1, 0.5, 0.9, strategy, nil)
	s.Weights = NewWeights([]string{"f"}, []string{"a"})
	s.Weights.Set("a", "f", 0.2)

	next, err := s.Step([]float64{0.5}, "a", 1, nil, true)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next != "" {
		t.Errorf("terminal step chose %q", next)
	}
	w, _ := s.Weights.Get("a", "f")
	if math.Abs(w-0.245) > 1e-12 {
		t.Errorf("weight = %.15f, want 0.245", w)
	}
	if math.Abs(s.Alpha-0.05) > 1e-12 {
		t.Errorf("alpha = %g, want 0.05 after decay", s.Alpha)
	}
	if math.Abs(strategy.Epsilon-0.1) > 1e-12 {
		t.Errorf("epsilon = %g, want 0.1 after decay", strategy.Epsilon)
	}
}

func TestSarsaBootstrapsOnChosenAction(t *testing.T) {
	strategy := NewEpsilonGreedy(0, 0.5, rand.New(rand.NewSource(1)))
	s := NewSarsa(0.1, 0.5, 0.9, strategy, nil)
	s.Weights = NewWeights([]string{"f"}, []string{"a", "b"})
	s.Weights.Set("a", "f", 0.4)
	s.Weights.Set("b", "f", 0.8)

	next, err := s.Step([]float64{1}, "a", 0, []float64{0.5}, false)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next != "b" {
		t.Fatalf("next action = %q, want b", next)
	}
	// q=0.4, futureQ=0.4, delta=0.9*0.4-0.4=-0.04
	wa, _ := s.Weights.Get("a", "f")
	if math.Abs(wa-0.396) > 1e-12 {
		t.Errorf("weight a = %.15f, want 0.396", wa)
	}
	wb, _ := s.Weights.Get("b", "f")
	if wb != 0.8 {
		t.Errorf("weight b changed to %g", wb)
	}
	if s.Alpha != 0.1 || strategy.Epsilon != 0 {
		t.Errorf("non-terminal step decayed alpha=%g epsilon=%g", s.Alpha, strategy.Epsilon)
	}
}

func TestSarsaUpdatesEveryFeature(t *testing.T) {
	s := NewSarsa(0.5, 1, 0.9, NewEpsilonGreedy(0, 1, rand.New(rand.NewSource(1))), nil)
	s.Weights = NewWeights([]string{"x", "y", "z"}, []string{"a"})

	if _, err := s.Step([]float64{1, 0, 0.5}, "a", -1, nil, true); err != nil {
		t.Fatal(err)
	}
	// q=0, delta=-1, step=-0.5
	want := map[string]float64{"x": -0.5, "y": 0, "z": -0.25}
	for f, v := range want {
		if got, _ := s.Weights.Get("a", f); math.Abs(got-v) > 1e-12 {
			t.Errorf("%s = %g, want %g", f, got, v)
		}
	}
}

func TestSarsaWithoutWeights(t *testing.T) {
	s := NewSarsa(0.1, 1, 0.9, NewEpsilonGreedy(0, 1, rand.New(rand.NewSource(1))), nil)
	if _, err := s.Step([]float64{1}, "a", 0, nil, true); !errors.Is(err, ErrWeightsNotInitialized) {
		t.Errorf("Step: err = %v, want ErrWeightsNotInitialized", err)
	}
	if _, err := s.Choose([]float64{1}); !errors.Is(err, ErrWeightsNotInitialized) {
		t.Errorf("Choose: err = %v, want ErrWeightsNotInitialized", err)
	}
}

func TestSarsaUpdateLeavesEpisodeOpen(t *testing.T) {
	strategy := NewEpsilonGreedy(0.2, 0.5, rand.New(rand.NewSource(1)))
	s := NewSarsa(0.1, 0.5, 0.9, strategy, nil)
	s.Weights = NewWeights([]string{"f"}, []string{"a"})
	s.Weights.Set("a", "f", 0.2)

	if _, err := s.Update([]float64{0.5}, "a", 1, nil, true); err != nil {
		t.Fatalf("Update: %v", err)
	}
	w, _ := s.Weights.Get("a", "f")
	if math.Abs(w-0.245) > 1e-12 {
		t.Errorf("weight = %.15f, want 0.245", w)
	}
	if s.Alpha != 0.1 || strategy.Epsilon != 0.2 {
		t.Errorf("Update decayed alpha=%g epsilon=%g", s.Alpha, strategy.Epsilon)
	}

	s.ConcludeEpisode()
	if math.Abs(s.Alpha-0.05) > 1e-12 || math.Abs(strategy.Epsilon-0.1) > 1e-12 {
		t.Errorf("after ConcludeEpisode alpha=%g epsilon=%g", s.Alpha, strategy.Epsilon)
	}
}
