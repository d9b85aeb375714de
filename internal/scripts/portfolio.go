package scripts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMember is returned for a portfolio name with no script
var ErrUnknownMember = errors.New("unknown portfolio member")

// Member enumerates the available scripts
type Member int

const (
	WorkerRush Member = iota
	LightRush
	RangedRush
	RangedDefense
	HeavyRush
	Expand
	BuildBarracks
	Passive
)

var allMembers = []Member{WorkerRush, LightRush, RangedRush, RangedDefense, HeavyRush, Expand, BuildBarracks, Passive}

func (m Member) String() string {
	switch m {
	case WorkerRush:
		return "WorkerRush"
	case LightRush:
		return "LightRush"
	case RangedRush:
		return "RangedRush"
	case RangedDefense:
		return "RangedDefense"
	case HeavyRush:
		return "HeavyRush"
	case Expand:
		return "Expand"
	case BuildBarracks:
		return "BuildBarracks"
	case Passive:
		return "PassiveAI"
	default:
		return "unknown"
	}
}

// Members lists every known script
func Members() []Member {
	return append([]Member(nil), allMembers...)
}

// ParseMember resolves a configured name, ignoring case and surrounding space
func ParseMember(name string) (Member, error) {
	name = strings.TrimSpace(name)
	for _, m := range allMembers {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMember, name)
}

// New builds the script for m
func New(m Member) (Policy, error) {
	switch m {
	case WorkerRush:
		return NewScript(m.String(), workerRushRules())
	case LightRush:
		return NewScript(m.String(), rushRules("Light", attack("Light")))
	case RangedRush:
		return NewScript(m.String(), rushRules("Ranged", attack("Ranged")))
	case RangedDefense:
		return NewScript(m.String(), rushRules("Ranged", defend("Ranged")))
	case HeavyRush:
		return NewScript(m.String(), rushRules("Heavy", attack("Heavy")))
	case Expand:
		return NewScript(m.String(), expandRules())
	case BuildBarracks:
		return NewScript(m.String(), buildBarracksRules())
	case Passive:
		return NewScript(m.String(), nil)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMember, int(m))
	}
}

// Portfolio resolves and builds every named member in order
func Portfolio(names []string) ([]Policy, error) {
	out := make([]Policy, 0, len(names))
	for _, n := range names {
		m, err := ParseMember(n)
		if err != nil {
			return nil, err
		}
		p, err := New(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func workerRushRules() []*Rule {
	return []*Rule{
		{
			Name:         "train-worker",
			Priority:     100,
			Category:     "production",
			ConditionSrc: `Count("Base") > 0 && CanAfford("Worker")`,
			Action:       train("Base", "Worker"),
		},
		{
			Name:         "harvest",
			Priority:     50,
			Category:     "economy",
			ConditionSrc: `Count("Worker") > 0 && HasResources()`,
			Action:       harvest(1),
		},
		{
			Name:         "attack",
			Priority:     10,
			Category:     "military",
			ConditionSrc: `Count("Worker") > 0 && EnemiesExist()`,
			Action:       attack("Worker"),
		},
	}
}

// rushRules keeps a small worker economy, gets one barracks up and pours
// every spare resource into unit.
func rushRules(unit string, army ActionFunc) []*Rule {
	return []*Rule{
		{
			Name:         "train-worker",
			Priority:     100,
			Category:     "production",
			ConditionSrc: `Count("Base") > 0 && Count("Worker") < 2 && CanAfford("Worker")`,
			Action:       train("Base", "Worker"),
		},
		{
			Name:         "build-barracks",
			Priority:     90,
			Category:     "construction",
			Exclusive:    true,
			ConditionSrc: `Count("Barracks") == 0 && Count("Worker") > 0 && CanAfford("Barracks")`,
			Action:       build("Barracks"),
		},
		{
			Name:         "train-" + strings.ToLower(unit),
			Priority:     80,
			Category:     "production",
			ConditionSrc: fmt.Sprintf(`Count("Barracks") > 0 && CanAfford(%q)`, unit),
			Action:       train("Barracks", unit),
		},
		{
			Name:         "harvest",
			Priority:     50,
			Category:     "economy",
			ConditionSrc: `Count("Worker") > 0 && HasResources()`,
			Action:       harvest(-1),
		},
		{
			Name:         "army",
			Priority:     10,
			Category:     "military",
			ConditionSrc: fmt.Sprintf(`Count(%q) > 0 && EnemiesExist()`, unit),
			Action:       army,
		},
	}
}

func expandRules() []*Rule {
	return []*Rule{
		{
			Name:         "train-worker",
			Priority:     100,
			Category:     "production",
			ConditionSrc: `Count("Base") > 0 && Count("Worker") < 4 * Count("Base") && CanAfford("Worker")`,
			Action:       train("Base", "Worker"),
		},
		{
			Name:         "build-base",
			Priority:     90,
			Category:     "construction",
			Exclusive:    true,
			ConditionSrc: `Count("Base") < 2 && Count("Worker") > 1 && CanAfford("Base")`,
			Action:       expand("Base"),
		},
		{
			Name:         "harvest",
			Priority:     50,
			Category:     "economy",
			ConditionSrc: `Count("Worker") > 0 && HasResources()`,
			Action:       harvest(-1),
		},
	}
}

func buildBarracksRules() []*Rule {
	return []*Rule{
		{
			Name:         "train-worker",
			Priority:     100,
			Category:     "production",
			ConditionSrc: `Count("Base") > 0 && Count("Worker") < 2 && CanAfford("Worker")`,
			Action:       train("Base", "Worker"),
		},
		{
			Name:         "build-barracks",
			Priority:     90,
			Category:     "construction",
			Exclusive:    true,
			ConditionSrc: `Count("Barracks") == 0 && Count("Worker") > 0 && CanAfford("Barracks")`,
			Action:       build("Barracks"),
		},
		{
			Name:         "harvest",
			Priority:     50,
			Category:     "economy",
			ConditionSrc: `Count("Worker") > 0 && HasResources()`,
			Action:       harvest(-1),
		},
	}
}
