package features

import (
	"fmt"

	"metabot/internal/rts"
)

// Global feature names
const (
	ResourcesOwn = "resources_own"
	ResourcesOpp = "resources_opp"
	GameTime     = "game_time"
	Bias         = "bias"
)

// Fixed bounds of the global features
const (
	MaxResources = 20
	MaxGameTime  = 3000
)

// HealthName names the average-health feature of one player in a quadrant
func HealthName(qx, qy, player int) string {
	return fmt.Sprintf("avg_health-%d-%d-%d", qx, qy, player)
}

// CountName names the unit-count feature of one player and type in a quadrant
func CountName(qx, qy, player int, unitType string) string {
	return fmt.Sprintf("unit_count-%d-%d-%d-%s", qx, qy, player, unitType)
}

// QuadrantExtractor splits the map into a Divisions×Divisions grid and
// describes each cell by per-player unit counts and average health.
type QuadrantExtractor struct {
	Divisions int
}

// NewQuadrantExtractor returns an extractor with n bands per axis
func NewQuadrantExtractor(n int) *QuadrantExtractor {
	if n < 1 {
		n = 1
	}
	return &QuadrantExtractor{Divisions: n}
}

// Count returns the catalog size for k non-resource unit types
func (q *QuadrantExtractor) Count(k int) int {
	n := q.Divisions
	return 4 + n*n*2*(1+k)
}

func (q *QuadrantExtractor) Names(w rts.World) []string {
	types := w.Types.NonResource()
	names := make([]string, 0, q.Count(len(types)))
	names = append(names, ResourcesOwn, ResourcesOpp, GameTime, Bias)
	for qx := 0; qx < q.Divisions; qx++ {
		for qy := 0; qy < q.Divisions; qy++ {
			for p := 0; p < 2; p++ {
				names = append(names, HealthName(qx, qy, p))
				for _, ut := range types {
					names = append(names, CountName(qx, qy, p, ut.Name))
				}
			}
		}
	}
	return names
}

func (q *QuadrantExtractor) RawFeatures(s rts.State, player int) Vector {
	types := s.UnitTypes()
	nonResource := types.NonResource()
	v := make(Vector, q.Count(len(nonResource)))

	v.Add(New(ResourcesOwn, 0, MaxResources)).Set(float64(s.Resources(player)))
	v.Add(New(ResourcesOpp, 0, MaxResources)).Set(float64(s.Resources(rts.Opponent(player))))
	v.Add(New(GameTime, 0, MaxGameTime)).Set(float64(s.Time()))
	v.Add(New(Bias, 0, 1)).Set(1)

	// Remainder tiles past the last full band belong to no quadrant.
	qw := s.Width() / q.Divisions
	qh := s.Height() / q.Divisions
	tiles := float64(qw * qh)

	for qx := 0; qx < q.Divisions; qx++ {
		for qy := 0; qy < q.Divisions; qy++ {
			units := s.UnitsInRect(qx*qw, qy*qh, qw, qh)
			for p := 0; p < 2; p++ {
				counts := make(map[string]int, len(nonResource))
				var health float64
				var owned int
				for _, u := range units {
					if u.Player != p {
						continue
					}
					ut, ok := types.Lookup(u.Type)
					if !ok || ut.Resource {
						continue
					}
					counts[ut.Name]++
					health += u.HealthRatio()
					owned++
				}

				avg := v.Add(New(HealthName(qx, qy, p), 0, 1))
				if owned > 0 {
					avg.Set(health / float64(owned))
				}
				for _, ut := range nonResource {
					v.Add(New(CountName(qx, qy, p, ut.Name), 0, tiles)).Set(float64(counts[ut.Name]))
				}
			}
		}
	}
	return v
}
