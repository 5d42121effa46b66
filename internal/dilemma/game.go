package dilemma

import (
	"io"
	"log"
	"os"
	"strconv"
)

type State int

const (
	Setup State = iota
	Ready
	Played
	Scored
	Reported
)

func (s State) String() string {
	switch s {
	case Setup:
		return "setup"
	case Ready:
		return "ready"
	case Played:
		return "played"
	case Scored:
		return "scored"
	case Reported:
		return "reported"
	}
	return "unknown"
}

// Game drives two players through a fixed number of rounds.
type Game struct {
	rounds  int
	players [2]*Player
	state   State
	out     io.Writer
	log     *log.Logger
}

type GameOption func(*Game)

// WithOutput sets where results are reported.
func WithOutput(w io.Writer) GameOption {
	return func(g *Game) {
		g.out = w
	}
}

// WithLogger sets where diagnostics are written.
func WithLogger(l *log.Logger) GameOption {
	return func(g *Game) {
		g.log = l
	}
}

// NewGame seats first and second for rounds rounds. When both players are
// present their capacities are fixed and the game is Ready; a player whose
// capacity was already set is logged and kept as is.
func NewGame(rounds int, first, second *Player, opts ...GameOption) (*Game, error) {
	if rounds <= 0 {
		return nil, newError(CodeInvalidConfiguration, "rounds must be positive",
			map[string]string{"rounds": strconv.Itoa(rounds)})
	}

	g := &Game{
		rounds:  rounds,
		players: [2]*Player{first, second},
		state:   Setup,
		out:     os.Stdout,
		log:     log.New(os.Stderr, "ipd: ", 0),
	}
	for _, opt := range opts {
		opt(g)
	}

	if first == nil || second == nil {
		return g, nil
	}
	for _, p := range g.players {
		if err := p.SetCapacity(rounds); err != nil {
			g.log.Printf("player %d: %v", p.ID(), err)
		}
	}
	g.state = Ready
	return g, nil
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Rounds() int {
	return g.rounds
}

// Players returns the two seats in order. A seat may be nil during Setup.
func (g *Game) Players() (*Player, *Player) {
	return g.players[0], g.players[1]
}

// Play runs every round, scores both players and reports the results.
// Player one moves first each round and player two sees that move.
func (g *Game) Play() error {
	switch g.state {
	case Setup:
		g.log.Print(ErrInsufficientPlayers.Message)
		return ErrInsufficientPlayers
	case Ready:
	default:
		g.log.Print(ErrAlreadyPlayed.Message)
		return ErrAlreadyPlayed
	}

	first, second := g.players[0], g.players[1]
	for i := 0; i < g.rounds; i++ {
		if err := first.MakeMove(second.LastMove()); err != nil {
			g.log.Printf("round %d: player %d: %v", i+1, first.ID(), err)
		}
		if err := second.MakeMove(first.LastMove()); err != nil {
			g.log.Printf("round %d: player %d: %v", i+1, second.ID(), err)
		}
	}
	g.state = Played

	g.calculateScore()
	return g.reportResults()
}

func (g *Game) calculateScore() {
	first, second := g.players[0], g.players[1]
	errA := first.AccrueScore(second)
	if errA != nil {
		g.log.Printf("player %d: %v", first.ID(), errA)
	}
	errB := second.AccrueScore(first)
	if errB != nil {
		g.log.Printf("player %d: %v", second.ID(), errB)
	}
	if errA == nil && errB == nil {
		g.state = Scored
	}
}

func (g *Game) reportResults() error {
	if g.state != Scored {
		g.log.Print(ErrPrematureReport.Message)
		return ErrPrematureReport
	}
	res, _ := g.Result()
	if err := WriteReport(g.out, res); err != nil {
		return err
	}
	g.state = Reported
	return nil
}

// PlayerResult is one player's share of a Result.
type PlayerResult struct {
	ID       int
	Strategy Selector
	Moves    []Move
	Score    int
}

// Result is a snapshot of a scored game.
type Result struct {
	Rounds  int
	Players [2]PlayerResult
}

// Result returns the outcome once both players have been scored.
func (g *Game) Result() (Result, error) {
	if g.state != Scored && g.state != Reported {
		return Result{}, ErrPrematureReport
	}
	res := Result{Rounds: g.rounds}
	for i, p := range g.players {
		res.Players[i] = PlayerResult{
			ID:       p.ID(),
			Strategy: p.Strategy(),
			Moves:    p.Moves(),
			Score:    p.Score(),
		}
	}
	return res, nil
}
