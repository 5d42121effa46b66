// Package config loads simulator settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"ipd/internal/dilemma"
)

// Config holds the settings for one simulation run.
type Config struct {
	Rounds  int              `env:"IPD_ROUNDS" envDefault:"5"`
	Player1 dilemma.Selector `env:"IPD_PLAYER1_STRATEGY" envDefault:"random"`
	Player2 dilemma.Selector `env:"IPD_PLAYER2_STRATEGY" envDefault:"tit-for-tat"`
	Seed    uint64           `env:"IPD_SEED"`
	DBPath  string           `env:"IPD_DB_PATH"`
	History int              `env:"IPD_HISTORY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// RegisterFlags binds cfg to fs. Current values become the flag defaults,
// so flags override whatever the environment provided.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "number of rounds to play")
	fs.TextVar(&cfg.Player1, "p1", cfg.Player1, "strategy for player 1 (1-5 or name)")
	fs.TextVar(&cfg.Player2, "p2", cfg.Player2, "strategy for player 2 (1-5 or name)")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the random strategy, 0 uses the clock")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite file for match history, empty disables it")
	fs.IntVar(&cfg.History, "history", cfg.History, "print the N most recent stored matches and exit")
}

// Load reads the environment and then parses args.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.RegisterFlags(fs)
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Rounds <= 0 {
		return Config{}, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.History < 0 {
		return Config{}, fmt.Errorf("history must not be negative, got %d", cfg.History)
	}
	if cfg.History > 0 && cfg.DBPath == "" {
		return Config{}, errors.New("history requires a database path")
	}
	return cfg, nil
}
