package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"metabot/internal/rts"
)

// MatchRecord summarizes one finished match from the agent's viewpoint
type MatchRecord struct {
	Match     int            `json:"match"`
	Player    int            `json:"player"`
	Winner    int            `json:"winner"`
	Outcome   string         `json:"outcome"`
	Reward    float64        `json:"reward"`
	Frames    int            `json:"frames"`
	Decisions int            `json:"decisions"`
	Updates   int            `json:"updates"`
	Failures  int            `json:"delegate_failures"`
	Choices   map[string]int `json:"choices"`
	Epsilon   float64        `json:"epsilon"`
	Alpha     float64        `json:"alpha"`
	Duration  time.Duration  `json:"duration_ns"`
}

var csvHeader = []string{
	"match", "player", "winner", "outcome", "reward", "frames", "decisions",
	"updates", "delegate_failures", "epsilon", "alpha", "duration_ms",
}

// MatchLog appends match summaries to a CSV file and a JSON-lines file.
// Either path may be empty.
type MatchLog struct {
	csvPath   string
	jsonPath  string
	csvFile   *os.File
	csvWriter *csv.Writer
	jsonFile  *os.File
}

// OpenMatchLog opens both files for appending, writing the CSV header to a
// new file.
func OpenMatchLog(csvPath, jsonPath string) (*MatchLog, error) {
	l := &MatchLog{csvPath: csvPath, jsonPath: jsonPath}

	if csvPath != "" {
		f, err := openAppend(csvPath)
		if err != nil {
			return nil, err
		}
		l.csvFile = f
		l.csvWriter = csv.NewWriter(f)
		info, err := f.Stat()
		if err != nil {
			l.Close()
			return nil, err
		}
		if info.Size() == 0 {
			if err := l.csvWriter.Write(csvHeader); err != nil {
				l.Close()
				return nil, err
			}
			l.csvWriter.Flush()
		}
	}

	if jsonPath != "" {
		f, err := openAppend(jsonPath)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.jsonFile = f
	}
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Close flushes and closes all files
func (l *MatchLog) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
}

// WriteMatch appends one record to every open file
func (l *MatchLog) WriteMatch(rec MatchRecord) error {
	if l.csvWriter != nil {
		row := []string{
			strconv.Itoa(rec.Match),
			strconv.Itoa(rec.Player),
			strconv.Itoa(rec.Winner),
			rec.Outcome,
			fmt.Sprintf("%g", rec.Reward),
			strconv.Itoa(rec.Frames),
			strconv.Itoa(rec.Decisions),
			strconv.Itoa(rec.Updates),
			strconv.Itoa(rec.Failures),
			fmt.Sprintf("%.6f", rec.Epsilon),
			fmt.Sprintf("%.6f", rec.Alpha),
			strconv.FormatInt(rec.Duration.Milliseconds(), 10),
		}
		l.csvWriter.Write(row)
		l.csvWriter.Flush()
		if err := l.csvWriter.Error(); err != nil {
			return fmt.Errorf("write %s: %w", l.csvPath, err)
		}
	}

	if l.jsonFile != nil {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := l.jsonFile.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write %s: %w", l.jsonPath, err)
		}
	}
	return nil
}

// Totals aggregates outcomes over many matches
type Totals struct {
	Matches       int
	Outcomes      map[rts.Outcome]int
	WinRate       float64
	MeanReward    float64
	MeanDecisions float64
}

// Aggregate computes totals from match records
func Aggregate(records []MatchRecord) Totals {
	t := Totals{Outcomes: make(map[rts.Outcome]int), Matches: len(records)}
	if len(records) == 0 {
		return t
	}
	var rewardSum, decisionSum float64
	for _, r := range records {
		t.Outcomes[rts.OutcomeFor(r.Player, r.Winner)]++
		rewardSum += r.Reward
		decisionSum += float64(r.Decisions)
	}
	n := float64(len(records))
	t.WinRate = float64(t.Outcomes[rts.OutcomeWin]) / n
	t.MeanReward = rewardSum / n
	t.MeanDecisions = decisionSum / n
	return t
}
