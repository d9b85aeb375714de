package rl

import (
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// blobVersion tags the binary weight format
const blobVersion = 1

// humanComment prefixes the header line of human-readable weight files
const humanComment = "#"

type weightBlob struct {
	Version int
	Names   []string
	Rows    map[string][]float64
}

// SaveBin writes all rows to a binary file, replacing it
func (w *Weights) SaveBin(path string) error {
	if w == nil {
		return ErrWeightsNotInitialized
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	blob := weightBlob{Version: blobVersion, Names: w.names, Rows: w.rows}
	if err := gob.NewEncoder(f).Encode(blob); err != nil {
		f.Close()
		return fmt.Errorf("encode weights: %w", err)
	}
	return f.Close()
}

// LoadBin reads weights written by SaveBin
func LoadBin(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blob weightBlob
	if err := gob.NewDecoder(f).Decode(&blob); err != nil {
		return nil, fmt.Errorf("decode weights %s: %w", path, err)
	}
	if blob.Version != blobVersion {
		return nil, fmt.Errorf("weights %s: unsupported version %d", path, blob.Version)
	}
	w := NewWeights(blob.Names, nil)
	for m, r := range blob.Rows {
		if len(r) != len(blob.Names) {
			return nil, fmt.Errorf("%w: row %s has %d weights for %d features", ErrFeatureMismatch, m, len(r), len(blob.Names))
		}
		w.rows[m] = r
	}
	return w, nil
}

// SaveHuman appends member's row to a CSV file. A new file starts with a
// commented header of feature names.
func (w *Weights) SaveHuman(path, member string) error {
	if w == nil {
		return ErrWeightsNotInitialized
	}
	row, ok := w.rows[member]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 && len(w.names) > 0 {
		header := append([]string{humanComment + w.names[0]}, w.names[1:]...)
		cw.Write(header)
	}
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	cw.Write(record)
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadHuman parses a file written by SaveHuman and returns the header names
// and every appended row in order.
func ReadHuman(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || !strings.HasPrefix(header[0], humanComment) {
		return nil, nil, fmt.Errorf("%s: missing %q header", path, humanComment)
	}
	header[0] = strings.TrimPrefix(header[0], humanComment)

	var rows [][]float64
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		vals := make([]float64, len(rec))
		for i, s := range rec {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
			}
		}
		rows = append(rows, vals)
	}
	return header, rows, nil
}
