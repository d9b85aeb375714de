package rl

import (
	"log/slog"
)

// Sarsa is an on-policy TD(0) learner over linear per-member weights
type Sarsa struct {
	Alpha      float64
	AlphaDecay float64
	Gamma      float64
	Strategy   Strategy
	Weights    *Weights

	log *slog.Logger
}

// NewSarsa creates a learner without weights; set Weights before use
func NewSarsa(alpha, alphaDecay, gamma float64, strategy Strategy, log *slog.Logger) *Sarsa {
	if log == nil {
		log = slog.Default()
	}
	return &Sarsa{
		Alpha:      alpha,
		AlphaDecay: alphaDecay,
		Gamma:      gamma,
		Strategy:   strategy,
		log:        log,
	}
}

// QValues estimates every member on aligned feature values
func (s *Sarsa) QValues(values []float64) (map[string]float64, error) {
	if s.Weights == nil {
		return nil, ErrWeightsNotInitialized
	}
	out := make(map[string]float64, len(s.Weights.rows))
	for m := range s.Weights.rows {
		q, err := s.Weights.Q(m, values)
		if err != nil {
			return nil, err
		}
		out[m] = q
	}
	return out, nil
}

// Choose asks the strategy for a member given aligned feature values
func (s *Sarsa) Choose(values []float64) (string, error) {
	qs, err := s.QValues(values)
	if err != nil {
		return "", err
	}
	return s.Strategy.Select(qs), nil
}

// Step applies one Sarsa(0) update for (prev, action, reward, next, done)
// and returns the action chosen on next, which the caller must commit to.
// When done, next is ignored, no action is chosen and the episode is
// concluded.
func (s *Sarsa) Step(prev []float64, action string, reward float64, next []float64, done bool) (string, error) {
	nextAction, err := s.Update(prev, action, reward, next, done)
	if err != nil {
		return "", err
	}
	if done {
		s.ConcludeEpisode()
	}
	return nextAction, nil
}

// Update is Step without concluding the episode on done
func (s *Sarsa) Update(prev []float64, action string, reward float64, next []float64, done bool) (string, error) {
	if s.Weights == nil {
		return "", ErrWeightsNotInitialized
	}

	var nextAction string
	var futureQ float64
	if !done {
		var err error
		if nextAction, err = s.Choose(next); err != nil {
			return "", err
		}
		if futureQ, err = s.Weights.Q(nextAction, next); err != nil {
			return "", err
		}
	}

	q, err := s.Weights.Q(action, prev)
	if err != nil {
		return "", err
	}
	delta := reward + s.Gamma*futureQ - q
	if err := s.Weights.Update(action, prev, s.Alpha*delta); err != nil {
		return "", err
	}
	s.log.Debug("sarsa update", "action", action, "reward", reward, "q", q, "future_q", futureQ, "delta", delta, "next", nextAction)
	return nextAction, nil
}

// ConcludeEpisode decays alpha and concludes the strategy's episode
func (s *Sarsa) ConcludeEpisode() {
	s.Alpha *= s.AlphaDecay
	s.Strategy.ConcludeEpisode()
}
