package scripts

import (
	"metabot/internal/rts"
)

// ActionFunc adds orders for the frame when a rule's condition holds
type ActionFunc func(env Env, b *builder)

// builder accumulates one frame's orders, one per unit, and tracks spending
// and claimed tiles so later rules don't double-book them.
type builder struct {
	action  rts.PlayerAction
	spent   int
	claimed map[[2]int]bool
}

func newBuilder(player int) *builder {
	return &builder{action: rts.NoopAction(player), claimed: make(map[[2]int]bool)}
}

func (b *builder) free(u rts.Unit) bool {
	return !b.action.Assigned(u.ID)
}

func (b *builder) add(o rts.Order) {
	b.action.Orders = append(b.action.Orders, o)
}

func (b *builder) budget(env Env) int {
	return env.Cash() - b.spent
}

// freeTileNear finds an empty, unclaimed tile around (x, y)
func (b *builder) freeTileNear(env Env, x, y int) (int, int, bool) {
	for r := 1; r <= 3; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue // ring only
				}
				tx, ty := x+dx, y+dy
				if !rts.InBounds(env.state, tx, ty) || rts.Occupied(env.state, tx, ty) || b.claimed[[2]int{tx, ty}] {
					continue
				}
				b.claimed[[2]int{tx, ty}] = true
				return tx, ty, true
			}
		}
	}
	return 0, 0, false
}

// train orders each idle producer to build one unit while the budget lasts
func train(producer, unit string) ActionFunc {
	return func(env Env, b *builder) {
		ut, ok := env.state.UnitTypes().Lookup(unit)
		if !ok {
			return
		}
		for _, p := range env.Own(producer) {
			if !b.free(p) || b.budget(env) < ut.Cost {
				continue
			}
			x, y, ok := b.freeTileNear(env, p.X, p.Y)
			if !ok {
				continue
			}
			b.add(rts.Order{UnitID: p.ID, Kind: rts.OrderProduce, X: x, Y: y, UnitType: ut.Name})
			b.spent += ut.Cost
		}
	}
}

// harvest sends up to limit idle workers to their nearest patch; limit < 0 means all
func harvest(limit int) ActionFunc {
	return func(env Env, b *builder) {
		patches := env.Patches()
		sent := 0
		for _, w := range env.Own("Worker") {
			if limit >= 0 && sent >= limit {
				return
			}
			if !b.free(w) {
				continue
			}
			target, ok := nearest(w, patches)
			if !ok {
				return
			}
			b.add(rts.Order{UnitID: w.ID, Kind: rts.OrderHarvest, X: target.X, Y: target.Y, TargetID: target.ID})
			sent++
		}
	}
}

// attack sends every idle unit of the given types at its nearest enemy
func attack(types ...string) ActionFunc {
	return func(env Env, b *builder) {
		enemies := env.Enemies()
		for _, t := range types {
			for _, u := range env.Own(t) {
				if !b.free(u) {
					continue
				}
				target, ok := nearest(u, enemies)
				if !ok {
					return
				}
				b.add(rts.Order{UnitID: u.ID, Kind: rts.OrderAttack, X: target.X, Y: target.Y, TargetID: target.ID})
			}
		}
	}
}

// defend engages enemies near the base and otherwise holds units at home
func defend(unit string) ActionFunc {
	return func(env Env, b *builder) {
		bases := env.Own("Base")
		if len(bases) == 0 {
			attack(unit)(env, b)
			return
		}
		home := bases[0]
		radius := env.defenseRadius()
		var threats []rts.Unit
		for _, e := range env.Enemies() {
			if rts.Distance(home, e) <= radius {
				threats = append(threats, e)
			}
		}
		for _, u := range env.Own(unit) {
			if !b.free(u) {
				continue
			}
			if target, ok := nearest(u, threats); ok {
				b.add(rts.Order{UnitID: u.ID, Kind: rts.OrderAttack, X: target.X, Y: target.Y, TargetID: target.ID})
				continue
			}
			if rts.Distance(u, home) > 2 {
				b.add(rts.Order{UnitID: u.ID, Kind: rts.OrderMove, X: home.X, Y: home.Y})
			}
		}
	}
}

// build has one idle worker place a building next to the first base
func build(building string) ActionFunc {
	return func(env Env, b *builder) {
		anchors := env.Own("Base")
		if len(anchors) == 0 {
			anchors = env.Own("Worker")
		}
		if len(anchors) == 0 {
			return
		}
		buildAt(env, b, building, anchors[0])
	}
}

// expand has one idle worker place a building next to the patch farthest
// from the first base
func expand(building string) ActionFunc {
	return func(env Env, b *builder) {
		bases := env.Own("Base")
		patches := env.Patches()
		if len(bases) == 0 || len(patches) == 0 {
			return
		}
		site := patches[0]
		for _, p := range patches[1:] {
			if rts.Distance(bases[0], p) > rts.Distance(bases[0], site) {
				site = p
			}
		}
		buildAt(env, b, building, site)
	}
}

func buildAt(env Env, b *builder, building string, anchor rts.Unit) {
	ut, ok := env.state.UnitTypes().Lookup(building)
	if !ok || b.budget(env) < ut.Cost {
		return
	}
	for _, w := range env.Own("Worker") {
		if !b.free(w) {
			continue
		}
		x, y, ok := b.freeTileNear(env, anchor.X, anchor.Y)
		if !ok {
			return
		}
		b.add(rts.Order{UnitID: w.ID, Kind: rts.OrderBuild, X: x, Y: y, UnitType: ut.Name})
		b.spent += ut.Cost
		return
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
