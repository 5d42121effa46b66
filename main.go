package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"ipd/internal/config"
	"ipd/internal/dilemma"
	"ipd/internal/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ipd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}
	diag := log.New(stderr, "ipd: ", 0)

	var db *store.SQLiteStore
	if cfg.DBPath != "" {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	if cfg.History > 0 {
		return printHistory(ctx, db, cfg.History, stdout)
	}

	// both players draw from one generator so a seed fixes the whole game
	rng := dilemma.NewRand(cfg.Seed)

	var roster dilemma.Roster
	p1, err := roster.NewPlayer(dilemma.WithRand(rng), dilemma.WithStrategy(cfg.Player1))
	if err != nil {
		diag.Printf("player %d: %v", p1.ID(), err)
	}
	p2, err := roster.NewPlayer(dilemma.WithRand(rng), dilemma.WithStrategy(cfg.Player2))
	if err != nil {
		diag.Printf("player %d: %v", p2.ID(), err)
	}

	game, err := dilemma.NewGame(cfg.Rounds, p1, p2,
		dilemma.WithOutput(stdout),
		dilemma.WithLogger(diag),
	)
	if err != nil {
		return err
	}
	if err := game.Play(); err != nil {
		// the game already logged it; nothing to store
		return nil
	}

	if db == nil {
		return nil
	}
	res, err := game.Result()
	if err != nil {
		return err
	}
	id, err := db.SaveResult(ctx, res)
	if err != nil {
		return err
	}
	diag.Printf("saved match %s", id)
	return nil
}

func printHistory(ctx context.Context, db *store.SQLiteStore, limit int, w io.Writer) error {
	matches, err := db.ListMatches(ctx, limit)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%s  %s  %d rounds\n", m.CreatedAt.Format(time.RFC3339), m.ID, m.Rounds)
		for _, p := range m.Players {
			fmt.Fprintf(w, "  player %d  %-22s  score %d\n", p.PlayerID, p.Strategy, p.Score)
		}
	}
	return nil
}
