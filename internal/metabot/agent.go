package metabot

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"metabot/internal/config"
	"metabot/internal/features"
	"metabot/internal/logging"
	"metabot/internal/rl"
	"metabot/internal/rts"
	"metabot/internal/scripts"
)

// ErrPlayerMismatch is returned when Decide is called for a player other
// than the one bound at the start of the match
var ErrPlayerMismatch = errors.New("player does not match bound player")

const unbound = -1

// History records weight snapshots after each match
type History interface {
	Record(player int, w *rl.Weights) (string, error)
}

// Summary receives one record per finished match
type Summary interface {
	WriteMatch(rec logging.MatchRecord) error
}

// Deps carries collaborators owned by the caller. Nil fields get defaults
// built from config.
type Deps struct {
	Log       *slog.Logger
	Rand      *rand.Rand
	Portfolio []scripts.Policy
	Extractor features.Extractor
	History   History
	Summary   Summary
}

// MatchStats counts what happened in the current match
type MatchStats struct {
	Frames    int
	Decisions int
	Updates   int
	Failures  int
	Choices   map[string]int
}

// Agent delegates every frame to one portfolio member and learns which
// member to pick with linear Sarsa(0).
type Agent struct {
	cfg        *config.Config
	log        *slog.Logger
	rng        *rand.Rand
	portfolio  map[string]scripts.Policy
	members    []string
	extractor  features.Extractor
	strategy   *rl.EpsilonGreedy
	learner    *rl.Sarsa
	initMethod rl.InitMethod
	history    History
	summary    Summary

	stickyDuration int

	world rts.World
	match int

	// per match
	player    int
	countdown int
	currState rts.State
	choice    string
	gameOver  bool
	ended     bool
	stats     MatchStats
	started   time.Time
}

// New builds an agent. Unknown portfolio members and init methods are
// configuration errors. A weight file that cannot be loaded is logged and
// replaced by random weights on the first decision.
func New(cfg *config.Config, deps Deps) (*Agent, error) {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.RL.Random.Seed))
	}
	method, err := rl.ParseInitMethod(cfg.RL.Weights.InitMethod)
	if err != nil {
		return nil, err
	}

	policies := deps.Portfolio
	if policies == nil {
		if policies, err = scripts.Portfolio(cfg.Portfolio.Members); err != nil {
			return nil, err
		}
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("%w: empty portfolio", scripts.ErrUnknownMember)
	}
	portfolio := make(map[string]scripts.Policy, len(policies))
	members := make([]string, 0, len(policies))
	for _, p := range policies {
		if _, dup := portfolio[p.ID()]; dup {
			return nil, fmt.Errorf("duplicate portfolio member %q", p.ID())
		}
		portfolio[p.ID()] = p
		members = append(members, p.ID())
	}

	extractor := deps.Extractor
	if extractor == nil {
		extractor = features.NewQuadrantExtractor(cfg.RL.Feature.Extractor.QuadrantDivision)
	}

	strategy := rl.NewEpsilonGreedy(cfg.RL.Epsilon.Initial, cfg.RL.Epsilon.Decay, rng)
	a := &Agent{
		cfg:            cfg,
		log:            log,
		rng:            rng,
		portfolio:      portfolio,
		members:        members,
		extractor:      extractor,
		strategy:       strategy,
		learner:        rl.NewSarsa(cfg.RL.Alpha.Initial, cfg.RL.Alpha.Decay, cfg.RL.Gamma, strategy, log),
		initMethod:     method,
		history:        deps.History,
		summary:        deps.Summary,
		stickyDuration: max(cfg.StickyDuration(), 0),
	}
	a.clearMatch()

	if cfg.RL.Lambda != 0 {
		log.Info("rl.lambda has no effect on Sarsa(0)", "lambda", cfg.RL.Lambda)
	}
	if cfg.RL.BinInput != "" {
		if err := a.LoadWeights(cfg.RL.BinInput); err != nil {
			if errors.Is(err, rl.ErrUnknownMember) {
				return nil, err
			}
			log.Error("could not load weights, using random init", "path", cfg.RL.BinInput, "error", err)
		}
	}
	return a, nil
}

// LoadWeights replaces the weights with a binary weight file. The file must
// hold exactly one row per portfolio member.
func (a *Agent) LoadWeights(path string) error {
	w, err := rl.LoadBin(path)
	if err != nil {
		return err
	}
	for _, m := range a.members {
		if _, ok := w.Row(m); !ok {
			return fmt.Errorf("%w: %s has no row in %s", rl.ErrUnknownMember, m, path)
		}
	}
	for _, m := range w.Members() {
		if _, ok := a.portfolio[m]; !ok {
			return fmt.Errorf("%w: %s in %s is not in the portfolio", rl.ErrUnknownMember, m, path)
		}
	}
	a.learner.Weights = w
	a.log.Info("loaded weights", "path", path, "features", len(w.Names()), "members", len(a.members))
	return nil
}

// Reset clears per-match state and resets every member on the last world
// seen. Weights and schedules carry over.
func (a *Agent) Reset() {
	a.clearMatch()
	for _, m := range a.members {
		a.portfolio[m].Reset(a.world)
	}
}

func (a *Agent) clearMatch() {
	a.player = unbound
	a.countdown = 0
	a.currState = nil
	a.choice = ""
	a.gameOver = false
	a.ended = false
	a.stats = MatchStats{Choices: make(map[string]int)}
}

// ResetForNewWorld resets for a match on w. Weights built for a different
// feature catalog are dropped and re-initialized on the next decision.
func (a *Agent) ResetForNewWorld(w rts.World) {
	a.world = w
	a.Reset()
	if a.learner.Weights == nil {
		return
	}
	names := a.extractor.Names(w)
	if !a.learner.Weights.SameCatalog(names) {
		a.log.Warn("feature catalog changed, discarding weights",
			"world", w.Name, "old_features", len(a.learner.Weights.Names()), "new_features", len(names))
		a.learner.Weights = nil
	}
}

// Decide returns player's action for this frame. The chosen member is kept
// for stickyDuration further frames; a new choice, and the learning update
// for the previous one, happen only when the countdown runs out.
func (a *Agent) Decide(player int, s rts.State) (rts.PlayerAction, error) {
	if a.player == unbound {
		a.player = player
		a.world = rts.WorldOf(s)
		a.started = time.Now()
	} else if player != a.player {
		return rts.NoopAction(player), fmt.Errorf("%w: bound to %d, got %d", ErrPlayerMismatch, a.player, player)
	}
	a.stats.Frames++

	if a.choice == "" || a.countdown == 0 {
		if err := a.decisionPoint(s); err != nil {
			return rts.NoopAction(player), err
		}
		a.countdown = a.stickyDuration
	} else {
		a.countdown--
	}
	return a.delegate(s), nil
}

func (a *Agent) decisionPoint(s rts.State) error {
	if a.gameOver {
		return nil
	}
	curr := s.Clone()
	if err := a.ensureWeights(curr); err != nil {
		return err
	}
	next, err := a.featureValues(a.player, curr)
	if err != nil {
		return err
	}
	if a.currState == nil {
		choice, err := a.learner.Choose(next)
		if err != nil {
			return err
		}
		a.currState = curr
		a.commit(choice)
		return nil
	}

	prev, err := a.featureValues(a.player, a.currState)
	if err != nil {
		return err
	}
	done := s.GameOver()
	var reward float64
	if done {
		reward = rts.OutcomeFor(a.player, s.Winner()).Reward()
	}
	// The episode is concluded once per match, in OnMatchEnd.
	choice, err := a.learner.Update(prev, a.choice, reward, next, done)
	if err != nil {
		return err
	}
	a.currState = curr
	a.stats.Updates++
	if done {
		a.gameOver = true
		return nil
	}
	a.commit(choice)
	return nil
}

func (a *Agent) commit(choice string) {
	a.choice = choice
	a.stats.Decisions++
	a.stats.Choices[choice]++
	a.log.Debug("member chosen", "player", a.player, "member", choice, "frame", a.currState.Time())
}

func (a *Agent) ensureWeights(s rts.State) error {
	if a.learner.Weights != nil {
		return nil
	}
	names := a.extractor.Names(rts.WorldOf(s))
	w, err := rl.InitWeights(names, a.members, a.initMethod, a.rng)
	if err != nil {
		return err
	}
	a.learner.Weights = w
	a.log.Info("initialized weights", "features", len(names), "members", len(a.members), "method", a.initMethod)
	return nil
}

func (a *Agent) featureValues(player int, s rts.State) ([]float64, error) {
	return a.learner.Weights.Align(features.Normalized(a.extractor, s, player))
}

func (a *Agent) delegate(s rts.State) rts.PlayerAction {
	p, ok := a.portfolio[a.choice]
	if !ok {
		a.log.Error("chosen member is not in the portfolio", "member", a.choice)
		return rts.NoopAction(a.player)
	}
	act, err := computeSafely(p, a.player, s)
	if err != nil {
		a.stats.Failures++
		a.log.Warn("member failed, substituting empty action", "member", a.choice, "frame", s.Time(), "error", err)
		return rts.NoopAction(a.player)
	}
	return act
}

func computeSafely(p scripts.Policy, player int, s rts.State) (act rts.PlayerAction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", p.ID(), r)
		}
	}()
	return p.ComputeAction(player, s)
}

// OnMatchEnd applies the terminal update on the last decision state with
// the match outcome as reward, wherever the sticky countdown stands, and
// concludes the episode. It then saves weights and the match summary as
// configured. Output failures are logged and do not fail the call.
func (a *Agent) OnMatchEnd(winner int) error {
	if a.ended {
		a.log.Warn("match already ended", "match", a.match, "winner", winner)
		return nil
	}
	a.match++
	if a.player == unbound || a.currState == nil || a.choice == "" {
		a.log.Warn("match ended before the first decision", "winner", winner)
		return nil
	}
	outcome := rts.OutcomeFor(a.player, winner)
	prev, err := a.featureValues(a.player, a.currState)
	if err != nil {
		return err
	}
	if _, err := a.learner.Step(prev, a.choice, outcome.Reward(), nil, true); err != nil {
		return err
	}
	a.stats.Updates++
	a.ended = true
	a.log.Info("match ended",
		"match", a.match,
		"player", a.player,
		"winner", winner,
		"outcome", outcome,
		"decisions", a.stats.Decisions,
		"failures", a.stats.Failures,
		"epsilon", a.strategy.Epsilon,
		"alpha", a.learner.Alpha,
	)

	if a.cfg.RL.SaveBin || a.cfg.RL.SaveHuman {
		if err := a.SaveWeights(); err != nil {
			a.log.Error("could not save weights", "dir", a.cfg.RL.WorkingDir, "error", err)
		}
	}
	if a.history != nil {
		id, err := a.history.Record(a.player, a.learner.Weights)
		if err != nil {
			a.log.Error("could not record weight snapshot", "error", err)
		} else {
			a.log.Debug("recorded weight snapshot", "id", id)
		}
	}
	if a.summary != nil {
		if err := a.summary.WriteMatch(a.record(winner, outcome)); err != nil {
			a.log.Error("could not write match summary", "error", err)
		}
	}
	return nil
}

// SaveWeights writes weights_<player>.bin and one
// weights_<player>_<member>.csv per member into the working directory,
// as enabled in config.
func (a *Agent) SaveWeights() error {
	w := a.learner.Weights
	if w == nil {
		return rl.ErrWeightsNotInitialized
	}
	dir := a.cfg.RL.WorkingDir
	var errs []error
	if a.cfg.RL.SaveBin {
		errs = append(errs, w.SaveBin(filepath.Join(dir, fmt.Sprintf("weights_%d.bin", a.player))))
	}
	if a.cfg.RL.SaveHuman {
		for _, m := range a.members {
			errs = append(errs, w.SaveHuman(filepath.Join(dir, fmt.Sprintf("weights_%d_%s.csv", a.player, m)), m))
		}
	}
	return errors.Join(errs...)
}

func (a *Agent) record(winner int, outcome rts.Outcome) logging.MatchRecord {
	choices := make(map[string]int, len(a.stats.Choices))
	for k, v := range a.stats.Choices {
		choices[k] = v
	}
	return logging.MatchRecord{
		Match:     a.match,
		Player:    a.player,
		Winner:    winner,
		Outcome:   outcome.String(),
		Reward:    outcome.Reward(),
		Frames:    a.stats.Frames,
		Decisions: a.stats.Decisions,
		Updates:   a.stats.Updates,
		Failures:  a.stats.Failures,
		Choices:   choices,
		Epsilon:   a.strategy.Epsilon,
		Alpha:     a.learner.Alpha,
		Duration:  time.Since(a.started),
	}
}

// QValues estimates every member for player on s, initializing weights if
// needed. It does not bind the player or change the current choice.
func (a *Agent) QValues(player int, s rts.State) (map[string]float64, error) {
	if err := a.ensureWeights(s); err != nil {
		return nil, err
	}
	vals, err := a.featureValues(player, s)
	if err != nil {
		return nil, err
	}
	return a.learner.QValues(vals)
}

// Features returns the normalized feature vector of s for player
func (a *Agent) Features(player int, s rts.State) features.Vector {
	return features.Normalized(a.extractor, s, player)
}

func (a *Agent) Weights() *rl.Weights { return a.learner.Weights }
func (a *Agent) Members() []string    { return a.members }
func (a *Agent) Choice() string       { return a.choice }
func (a *Agent) Player() int          { return a.player }
func (a *Agent) Epsilon() float64     { return a.strategy.Epsilon }
func (a *Agent) Alpha() float64       { return a.learner.Alpha }

// Stats returns a copy of the current match counters
func (a *Agent) Stats() MatchStats {
	s := a.stats
	s.Choices = make(map[string]int, len(a.stats.Choices))
	for k, v := range a.stats.Choices {
		s.Choices[k] = v
	}
	return s
}
