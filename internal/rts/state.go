package rts

// NoWinner is the winner id reported for draws and timeouts
const NoWinner = -1

// State is the read-only snapshot the engine hands to controllers each frame
type State interface {
	Time() int
	GameOver() bool
	Winner() int // NoWinner while running or on a draw
	Resources(player int) int
	Width() int
	Height() int
	UnitTypes() UnitTypeTable
	Units() []Unit
	// UnitsInRect returns units with x in [x, x+w) and y in [y, y+h)
	UnitsInRect(x, y, w, h int) []Unit
	Clone() State
}

// World describes the map a match is played on
type World struct {
	Name   string        `json:"name"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Types  UnitTypeTable `json:"unit_types"`
}

// WorldOf derives the world description of a state
func WorldOf(s State) World {
	return World{Width: s.Width(), Height: s.Height(), Types: s.UnitTypes()}
}

// Player holds per-player economy
type Player struct {
	ID        int `json:"id"`
	Resources int `json:"resources"`
}

// GameState is the concrete State used by snapshots and tests
type GameState struct {
	Map      World    `json:"world"`
	Frame    int      `json:"time"`
	Players  []Player `json:"players"`
	UnitList []Unit   `json:"units"`
	Over     bool     `json:"game_over"`
	WinnerID int      `json:"winner"`
}

// NewGameState creates a running state at frame zero
func NewGameState(w World, players []Player, units []Unit) *GameState {
	return &GameState{
		Map:      w,
		Players:  players,
		UnitList: units,
		WinnerID: NoWinner,
	}
}

func (g *GameState) Time() int                { return g.Frame }
func (g *GameState) GameOver() bool           { return g.Over }
func (g *GameState) Width() int               { return g.Map.Width }
func (g *GameState) Height() int              { return g.Map.Height }
func (g *GameState) UnitTypes() UnitTypeTable { return g.Map.Types }
func (g *GameState) Units() []Unit            { return g.UnitList }

func (g *GameState) Winner() int {
	if !g.Over {
		return NoWinner
	}
	return g.WinnerID
}

func (g *GameState) Resources(player int) int {
	for _, p := range g.Players {
		if p.ID == player {
			return p.Resources
		}
	}
	return 0
}

func (g *GameState) UnitsInRect(x, y, w, h int) []Unit {
	var out []Unit
	for _, u := range g.UnitList {
		if u.X >= x && u.X < x+w && u.Y >= y && u.Y < y+h {
			out = append(out, u)
		}
	}
	return out
}

// Clone returns a deep copy
func (g *GameState) Clone() State {
	c := *g
	c.Players = append([]Player(nil), g.Players...)
	c.UnitList = append([]Unit(nil), g.UnitList...)
	c.Map.Types.Types = append([]UnitType(nil), g.Map.Types.Types...)
	return &c
}

// Finish marks the match over with the given winner
func (g *GameState) Finish(winner int) {
	g.Over = true
	g.WinnerID = winner
}

// Occupied reports whether any unit stands on (x, y)
func Occupied(s State, x, y int) bool {
	return len(s.UnitsInRect(x, y, 1, 1)) > 0
}

// InBounds reports whether (x, y) lies on the map
func InBounds(s State, x, y int) bool {
	return x >= 0 && x < s.Width() && y >= 0 && y < s.Height()
}
