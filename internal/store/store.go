package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"metabot/internal/rl"
)

// timeLayout is fixed-width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoSnapshot is returned when a player has no recorded weights
var ErrNoSnapshot = errors.New("no weight snapshot")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id   TEXT PRIMARY KEY,
	player        INTEGER NOT NULL,
	feature_names TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_rows (
	snapshot_id TEXT NOT NULL,
	member      TEXT NOT NULL,
	weights     BLOB NOT NULL,
	PRIMARY KEY (snapshot_id, member),
	FOREIGN KEY (snapshot_id) REFERENCES snapshots(snapshot_id)
);

CREATE INDEX IF NOT EXISTS snapshots_player ON snapshots(player);
`

// Store keeps a history of weight snapshots in SQLite
type Store struct {
	db *sql.DB
}

// Snapshot describes one recorded set of weights
type Snapshot struct {
	ID        string
	Player    int
	Features  int
	Members   []string
	CreatedAt time.Time
}

// NewStore opens a SQLite database and runs migrations
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores every member row of w as one snapshot and returns its id
func (s *Store) Record(player int, w *rl.Weights) (string, error) {
	if w == nil {
		return "", rl.ErrWeightsNotInitialized
	}
	id := uuid.New().String()
	now := time.Now().UTC()

	names, err := json.Marshal(w.Names())
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO snapshots (snapshot_id, player, feature_names, created_at) VALUES (?, ?, ?, ?)`,
		id, player, string(names), now.Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	for _, m := range w.Members() {
		row, _ := w.Row(m)
		_, err = tx.Exec(
			`INSERT INTO snapshot_rows (snapshot_id, member, weights) VALUES (?, ?, ?)`,
			id, m, encodeRow(row),
		)
		if err != nil {
			return "", fmt.Errorf("insert row %s: %w", m, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Load rebuilds the weights of one snapshot
func (s *Store) Load(id string) (*rl.Weights, error) {
	var namesJSON string
	err := s.db.QueryRow(`SELECT feature_names FROM snapshots WHERE snapshot_id = ?`, id).Scan(&namesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}

	rows, err := s.db.Query(`SELECT member, weights FROM snapshot_rows WHERE snapshot_id = ? ORDER BY member`, id)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	decoded := make(map[string][]float64)
	var members []string
	for rows.Next() {
		var member string
		var blob []byte
		if err := rows.Scan(&member, &blob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		vec := decodeRow(blob)
		if len(vec) != len(names) {
			return nil, fmt.Errorf("%w: %s row has %d weights for %d features", rl.ErrFeatureMismatch, member, len(vec), len(names))
		}
		decoded[member] = vec
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	w := rl.NewWeights(names, members)
	for m, vec := range decoded {
		row, _ := w.Row(m)
		copy(row, vec)
	}
	return w, nil
}

// Latest rebuilds the most recent snapshot recorded for player
func (s *Store) Latest(player int) (*rl.Weights, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT snapshot_id FROM snapshots WHERE player = ? ORDER BY rowid DESC LIMIT 1`,
		player,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for player %d", ErrNoSnapshot, player)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return s.Load(id)
}

// List returns up to limit snapshots for player, newest first
func (s *Store) List(player, limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT s.snapshot_id, s.player, s.feature_names, s.created_at, r.member
		 FROM snapshots s JOIN snapshot_rows r ON r.snapshot_id = s.snapshot_id
		 WHERE s.snapshot_id IN (
			SELECT snapshot_id FROM snapshots WHERE player = ? ORDER BY rowid DESC LIMIT ?
		 )
		 ORDER BY s.rowid DESC, r.member`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var id, namesJSON, created, member string
		var p int
		if err := rows.Scan(&id, &p, &namesJSON, &created, &member); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			var names []string
			if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
				return nil, fmt.Errorf("unmarshal names: %w", err)
			}
			ts, err := time.Parse(timeLayout, created)
			if err != nil {
				return nil, fmt.Errorf("parse created_at: %w", err)
			}
			out = append(out, Snapshot{ID: id, Player: p, Features: len(names), CreatedAt: ts})
		}
		last := &out[len(out)-1]
		last.Members = append(last.Members, member)
	}
	return out, rows.Err()
}

func encodeRow(row []float64) []byte {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeRow(buf []byte) []float64 {
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out
}
