package rts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveSnapshot writes a state to a JSON file
func SaveSnapshot(path string, g *GameState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot reads a state from a JSON file. A snapshot without a unit
// catalog gets the default one.
func LoadSnapshot(path string) (*GameState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := &GameState{WinnerID: NoWinner}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if len(g.Map.Types.Types) == 0 {
		g.Map.Types = DefaultUnitTypeTable()
	}
	if g.Map.Width <= 0 || g.Map.Height <= 0 {
		return nil, fmt.Errorf("snapshot %s: invalid map size %dx%d", path, g.Map.Width, g.Map.Height)
	}
	for i := range g.UnitList {
		u := &g.UnitList[i]
		if u.MaxHP == 0 {
			if ut, ok := g.Map.Types.Lookup(u.Type); ok {
				u.MaxHP = ut.HP
			}
		}
	}
	return g, nil
}
