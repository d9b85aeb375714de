// Package rtstest builds small game states for tests.
package rtstest

import "metabot/internal/rts"

// TwoBases returns a size×size map with one base and one worker per player in
// opposite corners and a resource patch next to each base.
func TwoBases(size int) *rts.GameState {
	types := rts.DefaultUnitTypeTable()
	w := rts.World{Name: "twobases", Width: size, Height: size, Types: types}
	far := size - 2
	units := []rts.Unit{
		{ID: 1, Player: -1, Type: "Resource", X: 0, Y: 0, HP: 1, MaxHP: 1},
		{ID: 2, Player: 0, Type: "Base", X: 1, Y: 1, HP: 10, MaxHP: 10},
		{ID: 3, Player: 0, Type: "Worker", X: 2, Y: 1, HP: 1, MaxHP: 1},
		{ID: 4, Player: -1, Type: "Resource", X: size - 1, Y: size - 1, HP: 1, MaxHP: 1},
		{ID: 5, Player: 1, Type: "Base", X: far, Y: far, HP: 10, MaxHP: 10},
		{ID: 6, Player: 1, Type: "Worker", X: far - 1, Y: far, HP: 1, MaxHP: 1},
	}
	players := []rts.Player{{ID: 0, Resources: 5}, {ID: 1, Resources: 5}}
	return rts.NewGameState(w, players, units)
}

// Add appends a unit with the next free id and the catalog's max health
func Add(g *rts.GameState, player int, typ string, x, y int) rts.Unit {
	var next int64 = 1
	for _, u := range g.UnitList {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	hp := 1
	if ut, ok := g.Map.Types.Lookup(typ); ok {
		hp = ut.HP
	}
	u := rts.Unit{ID: next, Player: player, Type: typ, X: x, Y: y, HP: hp, MaxHP: hp}
	g.UnitList = append(g.UnitList, u)
	return u
}

// SetResources overwrites a player's stockpile
func SetResources(g *rts.GameState, player, amount int) {
	for i := range g.Players {
		if g.Players[i].ID == player {
			g.Players[i].Resources = amount
		}
	}
}
