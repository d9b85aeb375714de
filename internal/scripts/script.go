package scripts

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"metabot/internal/rts"
)

// Policy is one scripted portfolio member
type Policy interface {
	// ID is the stable member identifier used to key weights
	ID() string
	ComputeAction(player int, s rts.State) (rts.PlayerAction, error)
	// Reset prepares the policy for a new map
	Reset(w rts.World)
}

// Rule is a condition → action pair. Rules run by descending priority and an
// exclusive rule that fires blocks the rest of its category for the frame.
type Rule struct {
	Name         string
	Priority     int
	Category     string
	Exclusive    bool
	ConditionSrc string // expr source
	program      *vm.Program
	Action       ActionFunc
}

// Script is a Policy driven by a fixed rule table
type Script struct {
	id    string
	rules []*Rule
	world rts.World
}

// NewScript compiles the rule conditions and sorts rules by priority
func NewScript(id string, rules []*Rule) (*Script, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%s: compile rule %q: %w", id, r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return &Script{id: id, rules: rules}, nil
}

func (s *Script) ID() string { return s.id }

func (s *Script) Reset(w rts.World) { s.world = w }

// Rules returns the compiled rules in evaluation order
func (s *Script) Rules() []*Rule { return s.rules }

func (s *Script) ComputeAction(player int, st rts.State) (rts.PlayerAction, error) {
	if st == nil {
		return rts.NoopAction(player), fmt.Errorf("%s: nil state", s.id)
	}
	if player != 0 && player != 1 {
		return rts.NoopAction(player), fmt.Errorf("%s: invalid player %d", s.id, player)
	}

	env := newEnv(player, st, s.world)
	b := newBuilder(player)
	fired := make(map[string]bool)
	for _, r := range s.rules {
		if fired[r.Category] {
			continue
		}
		out, err := vm.Run(r.program, env)
		if err != nil {
			return rts.NoopAction(player), fmt.Errorf("%s: rule %q: %w", s.id, r.Name, err)
		}
		if match, ok := out.(bool); !ok || !match {
			continue
		}
		r.Action(env, b)
		if r.Exclusive {
			fired[r.Category] = true
		}
	}
	return b.action, nil
}
