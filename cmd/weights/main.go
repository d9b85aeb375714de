package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"metabot/internal/rl"
	"metabot/internal/store"
)

const usage = `usage: weights <command> [flags]

commands:
  human   convert a binary weight file to one CSV per member
  record  record a binary weight file into the snapshot history
  list    list recorded snapshots for a player
  export  write the latest recorded snapshot of a player to a binary file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "human":
		err = human(args)
	case "record":
		err = record(args)
	case "list":
		err = list(args)
	case "export":
		err = export(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func human(args []string) error {
	fs := flag.NewFlagSet("human", flag.ExitOnError)
	bin := fs.String("bin", "weights/weights_0.bin", "binary weight file")
	out := fs.String("out", "weights/human", "output directory")
	fs.Parse(args)

	w, err := rl.LoadBin(*bin)
	if err != nil {
		return err
	}
	for _, m := range w.Members() {
		path := filepath.Join(*out, fmt.Sprintf("weights_%s.csv", m))
		if err := w.SaveHuman(path, m); err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	fmt.Printf("%d members, %d features\n", len(w.Members()), len(w.Names()))
	return nil
}

func record(args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	db := fs.String("db", "weights/history.db", "sqlite history")
	bin := fs.String("bin", "weights/weights_0.bin", "binary weight file")
	player := fs.Int("player", 0, "player the weights belong to")
	fs.Parse(args)

	w, err := rl.LoadBin(*bin)
	if err != nil {
		return err
	}
	s, err := store.NewStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.Record(*player, w)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s as snapshot %s\n", *bin, id)
	return nil
}

func list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	db := fs.String("db", "weights/history.db", "sqlite history")
	player := fs.Int("player", 0, "player to list")
	limit := fs.Int("limit", 20, "maximum snapshots to show")
	fs.Parse(args)

	s, err := store.NewStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	snaps, err := s.List(*player, *limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Printf("No snapshots for player %d\n", *player)
		return nil
	}
	for _, sn := range snaps {
		fmt.Printf("%s  %s  features=%d members=%v\n",
			sn.ID, sn.CreatedAt.Local().Format("2006-01-02 15:04:05"), sn.Features, sn.Members)
	}
	return nil
}

func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	db := fs.String("db", "weights/history.db", "sqlite history")
	player := fs.Int("player", 0, "player to export")
	id := fs.String("id", "", "snapshot id, latest when empty")
	out := fs.String("out", "weights/weights_0.bin", "binary weight file to write")
	fs.Parse(args)

	s, err := store.NewStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	var w *rl.Weights
	if *id != "" {
		w, err = s.Load(*id)
	} else {
		w, err = s.Latest(*player)
	}
	if err != nil {
		return err
	}
	if err := w.SaveBin(*out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d members, %d features)\n", *out, len(w.Members()), len(w.Names()))
	return nil
}
