package store

import (
	"errors"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"

	"metabot/internal/rl"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleWeights(t *testing.T, seed int64) *rl.Weights {
	t.Helper()
	w, err := rl.InitWeights([]string{"bias", "game_time", "resources_own"}, []string{"Expand", "WorkerRush"}, rl.FixedInterval, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestRecordAndLoad(t *testing.T) {
	s := tempDB(t)
	w := sampleWeights(t, 1)

	id, err := s.Record(0, w)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty snapshot id")
	}

	got, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Map(), w.Map()) {
		t.Error("loaded weights differ from recorded weights")
	}
	if !reflect.DeepEqual(got.Names(), w.Names()) {
		t.Errorf("names = %v, want %v", got.Names(), w.Names())
	}
}

func TestLatestAndList(t *testing.T) {
	s := tempDB(t)
	first := sampleWeights(t, 1)
	second := sampleWeights(t, 2)

	if _, err := s.Record(0, first); err != nil {
		t.Fatal(err)
	}
	secondID, err := s.Record(0, second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(1, first); err != nil {
		t.Fatal(err)
	}

	latest, err := s.Latest(0)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !reflect.DeepEqual(latest.Map(), second.Map()) {
		t.Error("Latest(0) did not return the newest snapshot")
	}

	snaps, err := s.List(0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("List(0) returned %d snapshots, want 2", len(snaps))
	}
	if snaps[0].ID != secondID {
		t.Errorf("newest snapshot = %s, want %s", snaps[0].ID, secondID)
	}
	if snaps[0].Features != 3 || !reflect.DeepEqual(snaps[0].Members, []string{"Expand", "WorkerRush"}) {
		t.Errorf("snapshot = %+v", snaps[0])
	}

	limited, _ := s.List(0, 1)
	if len(limited) != 1 {
		t.Errorf("List(0, 1) returned %d snapshots", len(limited))
	}
}

func TestMissingSnapshot(t *testing.T) {
	s := tempDB(t)
	if _, err := s.Latest(3); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Latest: err = %v, want ErrNoSnapshot", err)
	}
	if _, err := s.Load("nope"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load: err = %v, want ErrNoSnapshot", err)
	}
	if _, err := s.Record(0, nil); !errors.Is(err, rl.ErrWeightsNotInitialized) {
		t.Errorf("Record(nil): err = %v", err)
	}
}
