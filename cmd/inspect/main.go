package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"unicode"

	"metabot/internal/config"
	"metabot/internal/logging"
	"metabot/internal/metabot"
	"metabot/internal/rts"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	weightsPath := flag.String("weights", "", "binary weight file, overrides rl.bin_input")
	statePath := flag.String("state", "", "path to JSON state snapshot")
	player := flag.Int("player", 0, "player to evaluate for")
	all := flag.Bool("all", false, "print features that are zero too")
	noDisplay := flag.Bool("no-display", false, "skip the map rendering")
	flag.Parse()

	if *statePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -state is required")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *weightsPath != "" {
		cfg.RL.BinInput = *weightsPath
	}
	cfg.RL.SaveBin = false
	cfg.RL.SaveHuman = false

	log, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	state, err := rts.LoadSnapshot(*statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading state: %v\n", err)
		os.Exit(1)
	}

	agent, err := metabot.New(cfg, metabot.Deps{Log: log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating agent: %v\n", err)
		os.Exit(1)
	}
	if cfg.RL.BinInput != "" && agent.Weights() == nil {
		fmt.Fprintf(os.Stderr, "Error: could not load weights from %s\n", cfg.RL.BinInput)
		os.Exit(1)
	}

	if !*noDisplay {
		NewDisplay(cfg.RL.Feature.Extractor.QuadrantDivision).Render(state)
		fmt.Println()
	}

	vec := agent.Features(*player, state)
	names := vec.Names()
	fmt.Printf("Features (%d) for player %d:\n", len(names), *player)
	hidden := 0
	for _, n := range names {
		v := vec[n].Value()
		if v == 0 && !*all {
			hidden++
			continue
		}
		fmt.Printf("  %-36s %.4f\n", n, v)
	}
	if hidden > 0 {
		fmt.Printf("  (%d features at zero hidden, use -all)\n", hidden)
	}
	fmt.Println()

	q, err := agent.QValues(*player, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing Q-values: %v\n", err)
		os.Exit(1)
	}
	members := make([]string, 0, len(q))
	for m := range q {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if q[members[i]] != q[members[j]] {
			return q[members[i]] > q[members[j]]
		}
		return members[i] < members[j]
	})

	source := "random init"
	if cfg.RL.BinInput != "" {
		source = cfg.RL.BinInput
	}
	fmt.Printf("Q-values (%s):\n", source)
	for i, m := range members {
		mark := " "
		if i == 0 {
			mark = "*"
		}
		fmt.Printf(" %s %-16s %+.4f\n", mark, m, q[m])
	}
}

// Display renders a state to the terminal with quadrant boundaries
type Display struct {
	divisions int
}

// NewDisplay creates a display for an n×n quadrant grid
func NewDisplay(n int) *Display {
	if n < 1 {
		n = 1
	}
	return &Display{divisions: n}
}

// Render draws the map, one column per tile. Player 0 units are lowercase,
// player 1 uppercase, resources '$'.
func (d *Display) Render(g *rts.GameState) {
	w, h := g.Width(), g.Height()
	qw, qh := w/d.divisions, h/d.divisions

	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = make([]rune, w)
		for x := range grid[y] {
			grid[y][x] = '·'
		}
	}
	for _, u := range g.Units() {
		if rts.InBounds(g, u.X, u.Y) {
			grid[u.Y][u.X] = glyph(u, g.UnitTypes())
		}
	}

	horizontal := func(left, cross, right string) {
		fmt.Print(left)
		for x := 0; x < w; x++ {
			if d.boundary(x, qw) {
				fmt.Print(cross)
			}
			fmt.Print("──")
		}
		fmt.Println(right)
	}

	horizontal("┌", "┬", "┐")
	for y := 0; y < h; y++ {
		if d.boundary(y, qh) {
			horizontal("├", "┼", "┤")
		}
		fmt.Print("│")
		for x := 0; x < w; x++ {
			if d.boundary(x, qw) {
				fmt.Print("│")
			}
			fmt.Printf(" %c", grid[y][x])
		}
		fmt.Println("│")
	}
	horizontal("└", "┴", "┘")

	fmt.Printf("  Frame: %d | Resources: %d / %d | Units: %d | Quadrants: %dx%d\n",
		g.Time(), g.Resources(0), g.Resources(1), len(g.Units()), d.divisions, d.divisions)
	if g.GameOver() {
		fmt.Printf("  Game over, winner: %d\n", g.Winner())
	}
}

// boundary reports whether tile i starts a new band. Tiles past the last
// full band form their own region.
func (d *Display) boundary(i, band int) bool {
	return band > 0 && i > 0 && i%band == 0 && i <= band*d.divisions
}

var glyphs = map[string]rune{
	"Base":     'b',
	"Barracks": 'k',
	"Worker":   'w',
	"Light":    'l',
	"Heavy":    'h',
	"Ranged":   'r',
}

func glyph(u rts.Unit, types rts.UnitTypeTable) rune {
	ut, ok := types.Lookup(u.Type)
	if !ok {
		return '?'
	}
	if ut.Resource {
		return '$'
	}
	r, ok := glyphs[ut.Name]
	if !ok {
		r = 'u'
	}
	if u.Player == 1 {
		r = unicode.ToUpper(r)
	}
	return r
}
