package rts

// OrderKind is the verb of a unit order
type OrderKind int

const (
	OrderMove OrderKind = iota
	OrderHarvest
	OrderAttack
	OrderProduce
	OrderBuild
)

func (k OrderKind) String() string {
	switch k {
	case OrderMove:
		return "move"
	case OrderHarvest:
		return "harvest"
	case OrderAttack:
		return "attack"
	case OrderProduce:
		return "produce"
	case OrderBuild:
		return "build"
	default:
		return "unknown"
	}
}

// Order is a single command for one unit
type Order struct {
	UnitID   int64     `json:"unit_id"`
	Kind     OrderKind `json:"kind"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	TargetID int64     `json:"target_id,omitempty"`
	UnitType string    `json:"unit_type,omitempty"` // produce and build
}

// PlayerAction is everything one player does in one frame
type PlayerAction struct {
	Player int     `json:"player"`
	Orders []Order `json:"orders"`
}

// NoopAction returns an empty action for player
func NoopAction(player int) PlayerAction {
	return PlayerAction{Player: player}
}

// IsEmpty reports whether the action carries no orders
func (a PlayerAction) IsEmpty() bool {
	return len(a.Orders) == 0
}

// Assigned reports whether unit already has an order in this action
func (a PlayerAction) Assigned(unitID int64) bool {
	for _, o := range a.Orders {
		if o.UnitID == unitID {
			return true
		}
	}
	return false
}
