// Package store keeps a history of finished games in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ipd/internal/dilemma"
)

// ErrNotFound is returned when a match id is unknown.
var ErrNotFound = errors.New("match not found")

// Match is a stored game.
type Match struct {
	ID        string
	Rounds    int
	CreatedAt time.Time
	Players   []MatchPlayer
}

// MatchPlayer is one seat of a stored game.
type MatchPlayer struct {
	Seat     int
	PlayerID int
	Strategy dilemma.Selector
	Score    int
	Moves    []dilemma.Move
}

// SQLiteStore implements match persistence using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path. Use ":memory:" for a throwaway store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			rounds INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS match_players (
			match_id TEXT NOT NULL,
			seat INTEGER NOT NULL,
			player_id INTEGER NOT NULL,
			strategy INTEGER NOT NULL,
			score INTEGER NOT NULL,
			moves TEXT NOT NULL,
			PRIMARY KEY (match_id, seat),
			FOREIGN KEY (match_id) REFERENCES matches(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_created_at ON matches(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveResult stores a scored game and returns its new id.
func (s *SQLiteStore) SaveResult(ctx context.Context, res dilemma.Result) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO matches (id, rounds, created_at) VALUES (?, ?, ?)`,
		id, res.Rounds, s.now().UnixMilli(),
	); err != nil {
		return "", fmt.Errorf("failed to insert match: %w", err)
	}

	for i, p := range res.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, seat, player_id, strategy, score, moves)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, i+1, p.ID, int(p.Strategy), p.Score, encodeMoves(p.Moves),
		); err != nil {
			return "", fmt.Errorf("failed to insert player %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit match: %w", err)
	}
	return id, nil
}

// GetMatch returns the match with the given id.
func (s *SQLiteStore) GetMatch(ctx context.Context, id string) (*Match, error) {
	var m Match
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, rounds, created_at FROM matches WHERE id = ?`, id,
	).Scan(&m.ID, &m.Rounds, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	m.CreatedAt = time.UnixMilli(created).UTC()

	if m.Players, err = s.matchPlayers(ctx, m.ID); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatches returns up to limit matches, newest first.
func (s *SQLiteStore) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rounds, created_at FROM matches
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	var matches []Match
	for rows.Next() {
		var m Match
		var created int64
		if err := rows.Scan(&m.ID, &m.Rounds, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.CreatedAt = time.UnixMilli(created).UTC()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	rows.Close()

	for i := range matches {
		if matches[i].Players, err = s.matchPlayers(ctx, matches[i].ID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *SQLiteStore) matchPlayers(ctx context.Context, matchID string) ([]MatchPlayer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seat, player_id, strategy, score, moves FROM match_players
		WHERE match_id = ? ORDER BY seat`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	var players []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		var strategy int
		var moves string
		if err := rows.Scan(&p.Seat, &p.PlayerID, &strategy, &p.Score, &moves); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.Strategy = dilemma.Selector(strategy)
		if p.Moves, err = decodeMoves(moves); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Moves are stored one letter per round, C or D.
func encodeMoves(moves []dilemma.Move) string {
	var b strings.Builder
	b.Grow(len(moves))
	for _, m := range moves {
		if m == dilemma.Defect {
			b.WriteByte('D')
		} else {
			b.WriteByte('C')
		}
	}
	return b.String()
}

func decodeMoves(s string) ([]dilemma.Move, error) {
	moves := make([]dilemma.Move, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'C':
			moves[i] = dilemma.Cooperate
		case 'D':
			moves[i] = dilemma.Defect
		default:
			return nil, fmt.Errorf("invalid move %q at round %d", s[i], i+1)
		}
	}
	return moves, nil
}
