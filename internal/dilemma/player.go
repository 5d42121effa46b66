package dilemma

import (
	"strconv"

	"golang.org/x/exp/rand"
)

// Player owns a strategy engine, its recorded moves and its score.
type Player struct {
	id       int
	engine   *Engine
	score    int
	capacity int
	moves    []Move
}

type PlayerOption func(*playerOptions)

type playerOptions struct {
	rng      *rand.Rand
	selector Selector
}

// WithRand sets the entropy source used by the Random strategy.
func WithRand(rng *rand.Rand) PlayerOption {
	return func(o *playerOptions) {
		o.rng = rng
	}
}

// WithStrategy sets the player's initial strategy.
func WithStrategy(sel Selector) PlayerOption {
	return func(o *playerOptions) {
		o.selector = sel
	}
}

// Roster issues player identities in creation order. Each simulation keeps
// its own roster, so independent games never share a counter.
type Roster struct {
	issued int
}

// NewPlayer creates the next player. An invalid WithStrategy selector is
// returned as an error alongside a player that kept the default strategy.
func (r *Roster) NewPlayer(opts ...PlayerOption) (*Player, error) {
	o := playerOptions{selector: AlwaysCooperate}
	for _, opt := range opts {
		opt(&o)
	}

	r.issued++
	p := &Player{
		id:     r.issued,
		engine: NewEngine(o.rng),
	}
	if o.selector == AlwaysCooperate {
		return p, nil
	}
	return p, p.SetStrategy(o.selector)
}

func (p *Player) ID() int {
	return p.id
}

func (p *Player) Score() int {
	return p.score
}

func (p *Player) Capacity() int {
	return p.capacity
}

func (p *Player) Strategy() Selector {
	return p.engine.Selector()
}

// SetCapacity fixes the number of rounds the player will play. It can only
// be called once.
func (p *Player) SetCapacity(n int) error {
	if p.capacity != 0 {
		return newError(CodeCapacityAlreadySet, "max moves already set",
			map[string]string{"player": strconv.Itoa(p.id), "capacity": strconv.Itoa(p.capacity)})
	}
	if n <= 0 {
		return newError(CodeInvalidConfiguration, "max moves must be positive",
			map[string]string{"player": strconv.Itoa(p.id), "capacity": strconv.Itoa(n)})
	}
	p.capacity = n
	p.moves = make([]Move, 0, n)
	return nil
}

func (p *Player) SetStrategy(sel Selector) error {
	return p.engine.SetSelector(sel)
}

// MakeMove asks the strategy for a move and records it. seen is false when
// the opponent has not moved yet.
func (p *Player) MakeMove(opponent Move, seen bool) error {
	if len(p.moves) >= p.capacity {
		return newError(CodeCapacityExceeded, "no more moves left for the player",
			map[string]string{"player": strconv.Itoa(p.id), "capacity": strconv.Itoa(p.capacity)})
	}
	p.moves = append(p.moves, p.engine.Decide(opponent, seen))
	return nil
}

// LastMove returns the most recent move, or false if none was recorded.
func (p *Player) LastMove() (Move, bool) {
	if len(p.moves) == 0 {
		return Cooperate, false
	}
	return p.moves[len(p.moves)-1], true
}

// Moves returns a copy of the recorded moves.
func (p *Player) Moves() []Move {
	out := make([]Move, len(p.moves))
	copy(out, p.moves)
	return out
}

// AccrueScore adds this player's payoff for every round played against
// opponent. Both players must have played the same number of rounds.
func (p *Player) AccrueScore(opponent *Player) error {
	if len(p.moves) != len(opponent.moves) {
		return newError(CodeMismatchedRounds,
			"both players must make the same number of moves before calculating score",
			map[string]string{
				"player":         strconv.Itoa(p.id),
				"moves":          strconv.Itoa(len(p.moves)),
				"opponent":       strconv.Itoa(opponent.id),
				"opponent_moves": strconv.Itoa(len(opponent.moves)),
			})
	}
	for i, m := range p.moves {
		p.score += Payoff(m, opponent.moves[i])
	}
	return nil
}
