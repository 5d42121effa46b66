package dilemma

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
)

type testGame struct {
	game  *Game
	first *Player
	other *Player
	out   *bytes.Buffer
	diag  *bytes.Buffer
}

func newTestGame(t *testing.T, rounds int, a, b Selector, seed uint64) testGame {
	t.Helper()
	var r Roster
	rng := NewRand(seed)
	first, err := r.NewPlayer(WithStrategy(a), WithRand(rng))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	second, err := r.NewPlayer(WithStrategy(b), WithRand(rng))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	g, err := NewGame(rounds, first, second, WithOutput(out), WithLogger(log.New(diag, "", 0)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return testGame{game: g, first: first, other: second, out: out, diag: diag}
}

func repeat(m Move, n int) []Move {
	out := make([]Move, n)
	for i := range out {
		out[i] = m
	}
	return out
}

func equalMoves(a, b []Move) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewGameRejectsNonPositiveRounds(t *testing.T) {
	var r Roster
	a, _ := r.NewPlayer()
	b, _ := r.NewPlayer()
	if _, err := NewGame(0, a, b); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestNewGameFixesCapacities(t *testing.T) {
	tg := newTestGame(t, 7, TitForTat, TitForTat, 1)
	if tg.game.State() != Ready {
		t.Fatalf("expected ready, got %s", tg.game.State())
	}
	if tg.first.Capacity() != 7 || tg.other.Capacity() != 7 {
		t.Fatalf("expected capacities 7, got %d and %d", tg.first.Capacity(), tg.other.Capacity())
	}
}

func TestPlayWithoutTwoPlayers(t *testing.T) {
	var r Roster
	a, _ := r.NewPlayer()
	diag := &bytes.Buffer{}
	g, err := NewGame(3, a, nil, WithOutput(io.Discard), WithLogger(log.New(diag, "", 0)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if g.State() != Setup {
		t.Fatalf("expected setup, got %s", g.State())
	}

	if err := g.Play(); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("expected insufficient players, got %v", err)
	}
	if len(a.Moves()) != 0 {
		t.Fatalf("expected no moves, got %d", len(a.Moves()))
	}
	if a.Capacity() != 0 {
		t.Fatalf("expected capacity untouched, got %d", a.Capacity())
	}
	if !strings.Contains(diag.String(), "not enough players") {
		t.Fatalf("expected diagnostic, got %q", diag.String())
	}
	if _, err := g.Result(); !errors.Is(err, ErrPrematureReport) {
		t.Fatalf("expected premature report, got %v", err)
	}
}

func TestTitForTatVersusTitForTat(t *testing.T) {
	const rounds = 10
	tg := newTestGame(t, rounds, TitForTat, TitForTat, 1)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	for _, p := range []*Player{tg.first, tg.other} {
		if !equalMoves(p.Moves(), repeat(Cooperate, rounds)) {
			t.Fatalf("player %d: expected all Cooperate, got %v", p.ID(), p.Moves())
		}
		if p.Score() != 3*rounds {
			t.Fatalf("player %d: expected score %d, got %d", p.ID(), 3*rounds, p.Score())
		}
	}
	if tg.game.State() != Reported {
		t.Fatalf("expected reported, got %s", tg.game.State())
	}
}

func TestAlwaysDefectVersusAlwaysCooperate(t *testing.T) {
	const rounds = 6
	tg := newTestGame(t, rounds, AlwaysDefect, AlwaysCooperate, 1)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if tg.first.Score() != 5*rounds {
		t.Fatalf("expected defector score %d, got %d", 5*rounds, tg.first.Score())
	}
	if tg.other.Score() != 0 {
		t.Fatalf("expected cooperator score 0, got %d", tg.other.Score())
	}
}

func TestSuspiciousTitForTatOpeningAsymmetry(t *testing.T) {
	const rounds = 4

	// Player two sees player one's move from the same round.
	tg := newTestGame(t, rounds, SuspiciousTitForTat, TitForTat, 1)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	wantFirst := []Move{Defect, Cooperate, Cooperate, Cooperate}
	wantOther := []Move{Cooperate, Cooperate, Cooperate, Cooperate}
	if !equalMoves(tg.first.Moves(), wantFirst) {
		t.Fatalf("suspicious: expected %v, got %v", wantFirst, tg.first.Moves())
	}
	if !equalMoves(tg.other.Moves(), wantOther) {
		t.Fatalf("tit for tat: expected %v, got %v", wantOther, tg.other.Moves())
	}
	if tg.first.Score() != 5+3*(rounds-1) || tg.other.Score() != 3*(rounds-1) {
		t.Fatalf("unexpected scores %d and %d", tg.first.Score(), tg.other.Score())
	}

	// Seated the other way round the opening defection is mirrored forever.
	tg = newTestGame(t, rounds, TitForTat, SuspiciousTitForTat, 1)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	wantFirst = []Move{Cooperate, Defect, Defect, Defect}
	wantOther = []Move{Defect, Defect, Defect, Defect}
	if !equalMoves(tg.first.Moves(), wantFirst) {
		t.Fatalf("tit for tat: expected %v, got %v", wantFirst, tg.first.Moves())
	}
	if !equalMoves(tg.other.Moves(), wantOther) {
		t.Fatalf("suspicious: expected %v, got %v", wantOther, tg.other.Moves())
	}
	if tg.first.Score() != rounds-1 || tg.other.Score() != 5+(rounds-1) {
		t.Fatalf("unexpected scores %d and %d", tg.first.Score(), tg.other.Score())
	}
}

func TestDeterministicPairsRepeat(t *testing.T) {
	deterministic := []Selector{AlwaysCooperate, AlwaysDefect, TitForTat, SuspiciousTitForTat}
	for _, a := range deterministic {
		for _, b := range deterministic {
			x := newTestGame(t, 8, a, b, 1)
			y := newTestGame(t, 8, a, b, 99)
			if err := x.game.Play(); err != nil {
				t.Fatalf("%s vs %s: play: %v", a, b, err)
			}
			if err := y.game.Play(); err != nil {
				t.Fatalf("%s vs %s: play: %v", a, b, err)
			}
			rx, _ := x.game.Result()
			ry, _ := y.game.Result()
			for i := range rx.Players {
				if !equalMoves(rx.Players[i].Moves, ry.Players[i].Moves) {
					t.Fatalf("%s vs %s: player %d moves differ", a, b, i+1)
				}
				if rx.Players[i].Score != ry.Players[i].Score {
					t.Fatalf("%s vs %s: player %d scores differ", a, b, i+1)
				}
			}
			if x.out.String() != y.out.String() {
				t.Fatalf("%s vs %s: reports differ", a, b)
			}
		}
	}
}

func TestEveryPairingPlaysAllRounds(t *testing.T) {
	const rounds = 5
	for a := AlwaysCooperate; a <= SuspiciousTitForTat; a++ {
		for b := AlwaysCooperate; b <= SuspiciousTitForTat; b++ {
			tg := newTestGame(t, rounds, a, b, 3)
			if err := tg.game.Play(); err != nil {
				t.Fatalf("%s vs %s: play: %v", a, b, err)
			}
			res, err := tg.game.Result()
			if err != nil {
				t.Fatalf("%s vs %s: result: %v", a, b, err)
			}
			total := 0
			for _, p := range res.Players {
				if len(p.Moves) != rounds {
					t.Fatalf("%s vs %s: player %d played %d rounds", a, b, p.ID, len(p.Moves))
				}
				total += len(p.Moves)

				score := 0
				for i, m := range p.Moves {
					opp := res.Players[0].Moves
					if p.ID == res.Players[0].ID {
						opp = res.Players[1].Moves
					}
					score += Payoff(m, opp[i])
				}
				if score != p.Score {
					t.Fatalf("%s vs %s: player %d expected score %d, got %d", a, b, p.ID, score, p.Score)
				}
			}
			if total != 2*rounds {
				t.Fatalf("%s vs %s: expected %d moves in total, got %d", a, b, 2*rounds, total)
			}
			if tg.diag.Len() != 0 {
				t.Fatalf("%s vs %s: unexpected diagnostics %q", a, b, tg.diag.String())
			}
		}
	}
}

func TestRandomVersusTitForTatFollowsSameRoundMove(t *testing.T) {
	tg := newTestGame(t, 5, Random, TitForTat, 2024)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	a, b := tg.first.Moves(), tg.other.Moves()
	if b[0] != Cooperate {
		t.Fatalf("expected tit for tat to open Cooperate, got %s", b[0])
	}
	for k := 1; k < len(a); k++ {
		if b[k] != a[k] {
			t.Fatalf("round %d: expected tit for tat to answer %s, got %s", k+1, a[k], b[k])
		}
	}

	again := newTestGame(t, 5, Random, TitForTat, 2024)
	if err := again.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !equalMoves(a, again.first.Moves()) {
		t.Fatalf("expected seeded random moves to repeat, got %v and %v", a, again.first.Moves())
	}
}

func TestPlayReportsResults(t *testing.T) {
	tg := newTestGame(t, 2, AlwaysDefect, AlwaysCooperate, 1)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	want := strings.Join([]string{
		"Moves for Player 1:",
		"Move 1: Defect",
		"Move 2: Defect",
		"Score: 10",
		"Moves for Player 2:",
		"Move 1: Cooperate",
		"Move 2: Cooperate",
		"Score: 0",
		"",
	}, "\n")
	if tg.out.String() != want {
		t.Fatalf("unexpected report:\n%s", tg.out.String())
	}
}

func TestPlayTwiceIsRejected(t *testing.T) {
	tg := newTestGame(t, 3, AlwaysDefect, AlwaysDefect, 1)
	if err := tg.game.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	report := tg.out.String()

	if err := tg.game.Play(); !errors.Is(err, ErrAlreadyPlayed) {
		t.Fatalf("expected already played, got %v", err)
	}
	if tg.first.Score() != 3 || tg.other.Score() != 3 {
		t.Fatalf("expected scores unchanged, got %d and %d", tg.first.Score(), tg.other.Score())
	}
	if tg.out.String() != report {
		t.Fatal("expected no further output")
	}
}

func TestMismatchedCapacitiesSkipScoringAndReport(t *testing.T) {
	var r Roster
	a, _ := r.NewPlayer(WithStrategy(AlwaysDefect))
	b, _ := r.NewPlayer()
	if err := a.SetCapacity(2); err != nil {
		t.Fatalf("set capacity: %v", err)
	}
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	g, err := NewGame(4, a, b, WithOutput(out), WithLogger(log.New(diag, "", 0)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if a.Capacity() != 2 {
		t.Fatalf("expected original capacity kept, got %d", a.Capacity())
	}

	if err := g.Play(); !errors.Is(err, ErrPrematureReport) {
		t.Fatalf("expected premature report, got %v", err)
	}
	if len(a.Moves()) != 2 || len(b.Moves()) != 4 {
		t.Fatalf("expected 2 and 4 moves, got %d and %d", len(a.Moves()), len(b.Moves()))
	}
	if a.Score() != 0 || b.Score() != 0 {
		t.Fatalf("expected no scoring, got %d and %d", a.Score(), b.Score())
	}
	if out.Len() != 0 {
		t.Fatalf("expected no report, got %q", out.String())
	}
	for _, msg := range []string{"max moves already set", "no more moves left", "same number of moves"} {
		if !strings.Contains(diag.String(), msg) {
			t.Fatalf("expected diagnostic %q in %q", msg, diag.String())
		}
	}
	if g.State() != Played {
		t.Fatalf("expected played, got %s", g.State())
	}
}
