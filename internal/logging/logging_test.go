package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"metabot/internal/config"
	"metabot/internal/rts"
)

func TestMatchLogAppends(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "runs", "summary.csv")
	jsonPath := filepath.Join(dir, "runs", "summary.jsonl")

	for match := 1; match <= 2; match++ {
		l, err := OpenMatchLog(csvPath, jsonPath)
		if err != nil {
			t.Fatalf("OpenMatchLog: %v", err)
		}
		rec := MatchRecord{
			Match: match, Player: 0, Winner: 0, Outcome: "win", Reward: 1,
			Frames: 300, Decisions: 3, Choices: map[string]int{"LightRush": 3},
			Epsilon: 0.1, Alpha: 0.1, Duration: 1500 * time.Millisecond,
		}
		if err := l.WriteMatch(rec); err != nil {
			t.Fatalf("WriteMatch: %v", err)
		}
		l.Close()
	}

	data, _ := os.ReadFile(csvPath)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "match,player,winner") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], ",1500") {
		t.Errorf("row = %q, want duration 1500ms", lines[2])
	}

	f, _ := os.Open(jsonPath)
	defer f.Close()
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		var rec MatchRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %d: %v", n+1, err)
		}
		n++
		if rec.Match != n || rec.Choices["LightRush"] != 3 {
			t.Errorf("line %d = %+v", n, rec)
		}
	}
	if n != 2 {
		t.Errorf("jsonl has %d lines, want 2", n)
	}
}

func TestMatchLogOptionalPaths(t *testing.T) {
	l, err := OpenMatchLog("", "")
	if err != nil {
		t.Fatalf("OpenMatchLog: %v", err)
	}
	defer l.Close()
	if err := l.WriteMatch(MatchRecord{}); err != nil {
		t.Errorf("WriteMatch with no outputs: %v", err)
	}
}

func TestAggregate(t *testing.T) {
	records := []MatchRecord{
		{Player: 0, Winner: 0, Reward: 1, Decisions: 4},
		{Player: 0, Winner: 1, Reward: -1, Decisions: 2},
		{Player: 1, Winner: 1, Reward: 1, Decisions: 6},
		{Player: 1, Winner: rts.NoWinner, Reward: 0, Decisions: 4},
	}
	got := Aggregate(records)
	if got.Matches != 4 || got.Outcomes[rts.OutcomeWin] != 2 || got.Outcomes[rts.OutcomeLoss] != 1 || got.Outcomes[rts.OutcomeDraw] != 1 {
		t.Errorf("outcomes = %v", got.Outcomes)
	}
	if got.WinRate != 0.5 || got.MeanReward != 0.25 || got.MeanDecisions != 4 {
		t.Errorf("win=%g reward=%g decisions=%g", got.WinRate, got.MeanReward, got.MeanDecisions)
	}
	if empty := Aggregate(nil); empty.Matches != 0 || empty.Outcomes == nil {
		t.Errorf("Aggregate(nil) = %+v", empty)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown", "member", "LightRush")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"member":"LightRush"`) {
		t.Errorf("output = %q", out)
	}
	if _, err := New(config.LogConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(config.LogConfig{Format: "xml"}, &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
