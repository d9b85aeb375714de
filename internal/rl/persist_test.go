package rl

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBinRoundTrip(t *testing.T) {
	w, err := InitWeights(catalog(130), members, FixedInterval, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out", "weights_0.bin")
	if err := w.SaveBin(path); err != nil {
		t.Fatalf("SaveBin: %v", err)
	}
	got, err := LoadBin(path)
	if err != nil {
		t.Fatalf("LoadBin: %v", err)
	}
	if !reflect.DeepEqual(got.Map(), w.Map()) {
		t.Error("loaded weights differ from saved weights")
	}
	if !reflect.DeepEqual(got.Names(), w.Names()) {
		t.Error("loaded catalog order differs")
	}
}

func TestLoadBinErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadBin(filepath.Join(dir, "missing.bin")); err == nil {
		t.Error("expected error for missing file")
	}
	junk := filepath.Join(dir, "junk.bin")
	os.WriteFile(junk, []byte("not a weight file"), 0644)
	if _, err := LoadBin(junk); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestHumanAppendsRows(t *testing.T) {
	w, _ := InitWeights(catalog(6), members, Parameterized, rand.New(rand.NewSource(4)))
	path := filepath.Join(t.TempDir(), "weights_0_LightRush.csv")

	if err := w.SaveHuman(path, "LightRush"); err != nil {
		t.Fatalf("SaveHuman: %v", err)
	}
	w.Set("LightRush", "f3", 0.123456789012345)
	if err := w.SaveHuman(path, "LightRush"); err != nil {
		t.Fatalf("SaveHuman: %v", err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("file has %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "#f0,f1,f2,f3,f4,f5" {
		t.Errorf("header = %q", lines[0])
	}

	names, rows, err := ReadHuman(path)
	if err != nil {
		t.Fatalf("ReadHuman: %v", err)
	}
	if !reflect.DeepEqual(names, w.Names()) {
		t.Errorf("header names = %v, want %v", names, w.Names())
	}
	want, _ := w.Row("LightRush")
	if !reflect.DeepEqual(rows[len(rows)-1], want) {
		t.Errorf("last row = %v, want %v", rows[len(rows)-1], want)
	}
}

func TestSaveBeforeInit(t *testing.T) {
	var w *Weights
	dir := t.TempDir()
	if err := w.SaveBin(filepath.Join(dir, "w.bin")); !errors.Is(err, ErrWeightsNotInitialized) {
		t.Errorf("SaveBin: err = %v, want ErrWeightsNotInitialized", err)
	}
	if err := w.SaveHuman(filepath.Join(dir, "w.csv"), "Expand"); !errors.Is(err, ErrWeightsNotInitialized) {
		t.Errorf("SaveHuman: err = %v, want ErrWeightsNotInitialized", err)
	}
}
