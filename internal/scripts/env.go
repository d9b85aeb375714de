package scripts

import (
	"strings"

	"metabot/internal/rts"
)

// Env wraps one frame of game state and exposes helpers callable from rule
// conditions.
type Env struct {
	player int
	state  rts.State
	world  rts.World
}

func newEnv(player int, s rts.State, w rts.World) Env {
	return Env{player: player, state: s, world: w}
}

// Count returns how many units of type t the player owns
func (e Env) Count(t string) int {
	return len(e.Own(t))
}

// EnemyCount returns how many units of type t the opponent owns
func (e Env) EnemyCount(t string) int {
	n := 0
	for _, u := range e.Enemies() {
		if strings.EqualFold(u.Type, t) {
			n++
		}
	}
	return n
}

// Cash returns the player's stockpile
func (e Env) Cash() int {
	return e.state.Resources(e.player)
}

// Time returns the current frame
func (e Env) Time() int {
	return e.state.Time()
}

// CanAfford reports whether the stockpile covers one unit of type t
func (e Env) CanAfford(t string) bool {
	ut, ok := e.state.UnitTypes().Lookup(t)
	return ok && e.Cash() >= ut.Cost
}

// EnemiesExist reports whether any opposing unit is on the map
func (e Env) EnemiesExist() bool {
	return len(e.Enemies()) > 0
}

// HasResources reports whether any resource patch remains
func (e Env) HasResources() bool {
	return len(e.Patches()) > 0
}

// EnemyNearBase reports whether an enemy is within radius of any own base
func (e Env) EnemyNearBase(radius int) bool {
	for _, b := range e.Own("Base") {
		for _, u := range e.Enemies() {
			if rts.Distance(b, u) <= radius {
				return true
			}
		}
	}
	return false
}

// Own returns the player's units of type t
func (e Env) Own(t string) []rts.Unit {
	var out []rts.Unit
	for _, u := range e.state.Units() {
		if u.Player == e.player && strings.EqualFold(u.Type, t) {
			out = append(out, u)
		}
	}
	return out
}

// Enemies returns every unit owned by another player
func (e Env) Enemies() []rts.Unit {
	var out []rts.Unit
	for _, u := range e.state.Units() {
		if u.Player >= 0 && u.Player != e.player {
			out = append(out, u)
		}
	}
	return out
}

// Patches returns the resource patches on the map
func (e Env) Patches() []rts.Unit {
	types := e.state.UnitTypes()
	var out []rts.Unit
	for _, u := range e.state.Units() {
		if types.IsResource(u.Type) {
			out = append(out, u)
		}
	}
	return out
}

// defenseRadius is how far from base defensive scripts engage
func (e Env) defenseRadius() int {
	r := e.world.Width
	if e.world.Height > r {
		r = e.world.Height
	}
	if r == 0 {
		r = e.state.Width()
	}
	return r / 3
}

func nearest(from rts.Unit, candidates []rts.Unit) (rts.Unit, bool) {
	var best rts.Unit
	found := false
	for _, c := range candidates {
		if !found || rts.Distance(from, c) < rts.Distance(from, best) {
			best = c
			found = true
		}
	}
	return best, found
}
