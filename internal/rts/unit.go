package rts

import "strings"

// UnitType describes one entry of the engine's unit catalog
type UnitType struct {
	Name     string `json:"name"`
	HP       int    `json:"hp"`
	Cost     int    `json:"cost"`
	Resource bool   `json:"resource,omitempty"` // resource patches are not owned by players
}

// UnitTypeTable is the active unit catalog for a world
type UnitTypeTable struct {
	Types []UnitType `json:"types"`
}

// DefaultUnitTypeTable returns the standard catalog: one resource type and
// six player-owned types.
func DefaultUnitTypeTable() UnitTypeTable {
	return UnitTypeTable{Types: []UnitType{
		{Name: "Resource", HP: 1, Resource: true},
		{Name: "Base", HP: 10, Cost: 10},
		{Name: "Barracks", HP: 4, Cost: 5},
		{Name: "Worker", HP: 1, Cost: 1},
		{Name: "Light", HP: 4, Cost: 2},
		{Name: "Heavy", HP: 4, Cost: 2},
		{Name: "Ranged", HP: 1, Cost: 2},
	}}
}

// Lookup finds a type by name, ignoring case
func (t UnitTypeTable) Lookup(name string) (UnitType, bool) {
	for _, ut := range t.Types {
		if strings.EqualFold(ut.Name, name) {
			return ut, true
		}
	}
	return UnitType{}, false
}

// NonResource returns the player-owned types in catalog order
func (t UnitTypeTable) NonResource() []UnitType {
	out := make([]UnitType, 0, len(t.Types))
	for _, ut := range t.Types {
		if !ut.Resource {
			out = append(out, ut)
		}
	}
	return out
}

// IsResource reports whether name is a resource type in this catalog
func (t UnitTypeTable) IsResource(name string) bool {
	ut, ok := t.Lookup(name)
	return ok && ut.Resource
}

// Unit is one entity on the map
type Unit struct {
	ID     int64  `json:"id"`
	Player int    `json:"player"` // -1 for neutral resource patches
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	HP     int    `json:"hp"`
	MaxHP  int    `json:"max_hp"`
}

// HealthRatio returns current over maximum health, 0 if unknown
func (u Unit) HealthRatio() float64 {
	if u.MaxHP <= 0 {
		return 0
	}
	return float64(u.HP) / float64(u.MaxHP)
}

// Distance returns the Manhattan distance between two units
func Distance(a, b Unit) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
