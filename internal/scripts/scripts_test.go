package scripts

import (
	"errors"
	"testing"

	"metabot/internal/rts"
	"metabot/internal/rts/rtstest"
)

func TestEveryMemberBuilds(t *testing.T) {
	for _, m := range Members() {
		p, err := New(m)
		if err != nil {
			t.Errorf("New(%s): %v", m, err)
			continue
		}
		if p.ID() != m.String() {
			t.Errorf("New(%s).ID() = %q", m, p.ID())
		}
		if _, err := p.ComputeAction(0, rtstest.TwoBases(16)); err != nil {
			t.Errorf("%s.ComputeAction: %v", m, err)
		}
	}
}

func TestParseMember(t *testing.T) {
	tests := []struct {
		in   string
		want Member
	}{
		{"WorkerRush", WorkerRush},
		{"workerrush", WorkerRush},
		{" LightRush ", LightRush},
		{"PassiveAI", Passive},
		{"rangeddefense", RangedDefense},
	}
	for _, tt := range tests {
		got, err := ParseMember(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMember(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMember("TurtleRush"); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("ParseMember(TurtleRush): err = %v, want ErrUnknownMember", err)
	}
}

func TestPortfolio(t *testing.T) {
	ps, err := Portfolio([]string{"WorkerRush", "LightRush", "RangedRush", "HeavyRush", "Expand", "BuildBarracks"})
	if err != nil {
		t.Fatalf("Portfolio: %v", err)
	}
	if len(ps) != 6 {
		t.Fatalf("Portfolio returned %d policies, want 6", len(ps))
	}
	if _, err := Portfolio([]string{"WorkerRush", "Nope"}); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("Portfolio with unknown name: err = %v", err)
	}
}

func TestRulesSortedByPriority(t *testing.T) {
	p, _ := New(LightRush)
	rules := p.(*Script).Rules()
	for i := 1; i < len(rules); i++ {
		if rules[i].Priority > rules[i-1].Priority {
			t.Errorf("rule %q (priority %d) after %q (priority %d)", rules[i].Name, rules[i].Priority, rules[i-1].Name, rules[i-1].Priority)
		}
	}
}

func TestBadConditionFailsToCompile(t *testing.T) {
	_, err := NewScript("broken", []*Rule{{Name: "bad", ConditionSrc: `Count("Base") +`}})
	if err == nil {
		t.Fatal("expected compile error")
	}
	_, err = NewScript("notbool", []*Rule{{Name: "int", ConditionSrc: `Count("Base")`}})
	if err == nil {
		t.Fatal("expected error for non-boolean condition")
	}
}

func ordersOf(a rts.PlayerAction, kind rts.OrderKind) []rts.Order {
	var out []rts.Order
	for _, o := range a.Orders {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func TestWorkerRush(t *testing.T) {
	g := rtstest.TwoBases(16)
	p, _ := New(WorkerRush)
	act, err := p.ComputeAction(0, g)
	if err != nil {
		t.Fatal(err)
	}
	if act.Player != 0 {
		t.Errorf("action player = %d", act.Player)
	}
	produce := ordersOf(act, rts.OrderProduce)
	if len(produce) != 1 || produce[0].UnitID != 2 || produce[0].UnitType != "Worker" {
		t.Errorf("produce orders = %+v, want base 2 training a Worker", produce)
	}
	harvest := ordersOf(act, rts.OrderHarvest)
	if len(harvest) != 1 || harvest[0].UnitID != 3 || harvest[0].TargetID != 1 {
		t.Errorf("harvest orders = %+v, want worker 3 on patch 1", harvest)
	}

	// A second worker goes on the attack.
	rtstest.Add(g, 0, "Worker", 3, 3)
	act, _ = p.ComputeAction(0, g)
	if got := len(ordersOf(act, rts.OrderAttack)); got != 1 {
		t.Errorf("%d attack orders, want 1", got)
	}
}

func TestLightRushBuildsThenTrains(t *testing.T) {
	g := rtstest.TwoBases(16)
	rtstest.SetResources(g, 0, 10)
	p, _ := New(LightRush)

	act, err := p.ComputeAction(0, g)
	if err != nil {
		t.Fatal(err)
	}
	builds := ordersOf(act, rts.OrderBuild)
	if len(builds) != 1 || builds[0].UnitType != "Barracks" {
		t.Fatalf("build orders = %+v, want one Barracks", builds)
	}
	for _, o := range act.Orders {
		if o.Kind == rts.OrderProduce && o.X == builds[0].X && o.Y == builds[0].Y {
			t.Errorf("produce and build claimed the same tile %d,%d", o.X, o.Y)
		}
	}

	rtstest.Add(g, 0, "Barracks", 4, 4)
	act, _ = p.ComputeAction(0, g)
	found := false
	for _, o := range ordersOf(act, rts.OrderProduce) {
		if o.UnitType == "Light" {
			found = true
		}
	}
	if !found {
		t.Errorf("no Light produced with a barracks and 10 resources: %+v", act.Orders)
	}
}

func TestRangedDefenseHoldsUntilThreatened(t *testing.T) {
	g := rtstest.TwoBases(24)
	ranged := rtstest.Add(g, 0, "Ranged", 10, 10)
	p, _ := New(RangedDefense)
	p.Reset(rts.WorldOf(g))

	act, _ := p.ComputeAction(0, g)
	for _, o := range act.Orders {
		if o.UnitID == ranged.ID && o.Kind != rts.OrderMove {
			t.Errorf("idle defender got %s order, want move home", o.Kind)
		}
	}

	rtstest.Add(g, 1, "Light", 4, 4)
	act, _ = p.ComputeAction(0, g)
	attacked := false
	for _, o := range act.Orders {
		if o.UnitID == ranged.ID && o.Kind == rts.OrderAttack {
			attacked = true
		}
	}
	if !attacked {
		t.Errorf("defender ignored enemy near base: %+v", act.Orders)
	}
}

func TestPassiveDoesNothing(t *testing.T) {
	p, _ := New(Passive)
	act, err := p.ComputeAction(1, rtstest.TwoBases(16))
	if err != nil || !act.IsEmpty() {
		t.Errorf("PassiveAI = %+v, %v; want empty action", act, err)
	}
}

func TestInvalidPlayer(t *testing.T) {
	p, _ := New(WorkerRush)
	if _, err := p.ComputeAction(3, rtstest.TwoBases(16)); err == nil {
		t.Error("expected error for player 3")
	}
}
