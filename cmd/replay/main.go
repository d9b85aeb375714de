package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"metabot/internal/config"
	"metabot/internal/logging"
	"metabot/internal/metabot"
	"metabot/internal/rts"
	"metabot/internal/store"
)

// Replays a recorded match, one JSON snapshot per frame, through the agent
// and learns from it as if it were played live.
func main() {
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	pattern := flag.String("states", "", "glob of JSON snapshots, replayed in name order")
	player := flag.Int("player", 0, "player the agent controls")
	matches := flag.Int("matches", 1, "number of times to replay the recording")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	log, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	frames, err := loadFrames(*pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading states: %v\n", err)
		os.Exit(1)
	}

	deps := metabot.Deps{Log: log}
	if cfg.RL.WeightsDB != "" {
		db, err := store.NewStore(cfg.RL.WeightsDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening weights db: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.History = db
	}
	summary, err := logging.OpenMatchLog(cfg.Runner.Output, cfg.Runner.OutputJSONL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening match log: %v\n", err)
		os.Exit(1)
	}
	defer summary.Close()
	recorder := &recorder{next: summary}
	deps.Summary = recorder

	agent, err := metabot.New(cfg, deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating agent: %v\n", err)
		os.Exit(1)
	}

	last := frames[len(frames)-1]
	winner := last.Winner()
	if !last.GameOver() {
		winner = rts.NoWinner
	}

	fmt.Printf("Replaying %d frames of %s as player %d, %d match(es)\n",
		len(frames), last.Map.Name, *player, *matches)
	fmt.Printf("Portfolio: %v\n", agent.Members())
	fmt.Println("---")

	startTime := time.Now()
	for m := 1; m <= *matches; m++ {
		agent.ResetForNewWorld(last.Map)
		for _, f := range frames {
			if _, err := agent.Decide(*player, f); err != nil {
				fmt.Fprintf(os.Stderr, "Error at frame %d: %v\n", f.Time(), err)
				os.Exit(1)
			}
		}
		if err := agent.OnMatchEnd(winner); err != nil {
			fmt.Fprintf(os.Stderr, "Error ending match %d: %v\n", m, err)
			os.Exit(1)
		}
		st := agent.Stats()
		fmt.Printf("Match %d: decisions=%d failures=%d choices=%v epsilon=%.4f alpha=%.4f\n",
			m, st.Decisions, st.Failures, st.Choices, agent.Epsilon(), agent.Alpha())
	}

	totals := logging.Aggregate(recorder.records)
	fmt.Println("---")
	fmt.Printf("Done: %d matches in %v\n", totals.Matches, time.Since(startTime))
	fmt.Printf("Outcomes: win=%d loss=%d draw=%d, mean reward %.2f\n",
		totals.Outcomes[rts.OutcomeWin], totals.Outcomes[rts.OutcomeLoss], totals.Outcomes[rts.OutcomeDraw], totals.MeanReward)
}

func loadFrames(pattern string) ([]*rts.GameState, error) {
	if pattern == "" {
		return nil, fmt.Errorf("-states is required")
	}
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no snapshots match %s", pattern)
	}
	sort.Strings(paths)
	frames := make([]*rts.GameState, 0, len(paths))
	for _, p := range paths {
		g, err := rts.LoadSnapshot(p)
		if err != nil {
			return nil, err
		}
		frames = append(frames, g)
	}
	return frames, nil
}

// recorder keeps every summary record for the final report
type recorder struct {
	next    *logging.MatchLog
	records []logging.MatchRecord
}

func (r *recorder) WriteMatch(rec logging.MatchRecord) error {
	r.records = append(r.records, rec)
	return r.next.WriteMatch(rec)
}
