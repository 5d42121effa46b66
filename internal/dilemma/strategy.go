package dilemma

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/rand"
)

// Selector identifies a decision rule. The numeric values are the codes
// accepted on the command line.
type Selector int

const (
	AlwaysCooperate Selector = iota + 1
	AlwaysDefect
	TitForTat
	Random
	SuspiciousTitForTat
)

var selectorNames = map[Selector]string{
	AlwaysCooperate:     "always-cooperate",
	AlwaysDefect:        "always-defect",
	TitForTat:           "tit-for-tat",
	Random:              "random",
	SuspiciousTitForTat: "suspicious-tit-for-tat",
}

var selectorAliases = map[string]Selector{
	"all-c": AlwaysCooperate,
	"all-d": AlwaysDefect,
	"tft":   TitForTat,
	"rand":  Random,
	"stft":  SuspiciousTitForTat,
}

func (s Selector) Valid() bool {
	return s >= AlwaysCooperate && s <= SuspiciousTitForTat
}

func (s Selector) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return "selector(" + strconv.Itoa(int(s)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (s Selector) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return []byte(strconv.Itoa(int(s))), nil
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts a decimal code or a strategy name. Any integer is
// accepted so that range checking happens where the selector is applied.
func (s *Selector) UnmarshalText(text []byte) error {
	raw := strings.ToLower(strings.TrimSpace(string(text)))
	if n, err := strconv.Atoi(raw); err == nil {
		*s = Selector(n)
		return nil
	}
	if sel, ok := selectorAliases[raw]; ok {
		*s = sel
		return nil
	}
	for sel, name := range selectorNames {
		if name == raw {
			*s = sel
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q", raw)
}

// Strategy decides the next move from the opponent's last one. seen is
// false when the opponent has not moved yet.
type Strategy interface {
	Selector() Selector
	Decide(opponent Move, seen bool) Move
	// Rounds is the number of decisions made since the strategy was installed.
	Rounds() int
	bot()
}

type CooperateBot struct {
	rounds int
}

func (b *CooperateBot) Selector() Selector { return AlwaysCooperate }
func (b *CooperateBot) Rounds() int        { return b.rounds }
func (b *CooperateBot) bot()               {}

func (b *CooperateBot) Decide(Move, bool) Move {
	b.rounds++
	return Cooperate
}

type DefectBot struct {
	rounds int
}

func (b *DefectBot) Selector() Selector { return AlwaysDefect }
func (b *DefectBot) Rounds() int        { return b.rounds }
func (b *DefectBot) bot()               {}

func (b *DefectBot) Decide(Move, bool) Move {
	b.rounds++
	return Defect
}

// mirror opens with a fixed move and then copies the opponent.
type mirror struct {
	opening Move
	rounds  int
}

func (m *mirror) decide(opponent Move, seen bool) Move {
	if m.rounds == 0 || !seen {
		m.rounds++
		return m.opening
	}
	return opponent
}

type TitForTatBot struct {
	mirror
}

func (b *TitForTatBot) Selector() Selector { return TitForTat }
func (b *TitForTatBot) Rounds() int        { return b.rounds }
func (b *TitForTatBot) bot()               {}

func (b *TitForTatBot) Decide(opponent Move, seen bool) Move {
	return b.decide(opponent, seen)
}

// SuspiciousTitForTatBot is tit for tat that opens with a defection.
type SuspiciousTitForTatBot struct {
	mirror
}

func (b *SuspiciousTitForTatBot) Selector() Selector { return SuspiciousTitForTat }
func (b *SuspiciousTitForTatBot) Rounds() int        { return b.rounds }
func (b *SuspiciousTitForTatBot) bot()               {}

func (b *SuspiciousTitForTatBot) Decide(opponent Move, seen bool) Move {
	return b.decide(opponent, seen)
}

type RandomBot struct {
	rng    *rand.Rand
	rounds int
}

func (b *RandomBot) Selector() Selector { return Random }
func (b *RandomBot) Rounds() int        { return b.rounds }
func (b *RandomBot) bot()               {}

func (b *RandomBot) Decide(Move, bool) Move {
	b.rounds++
	return Move(b.rng.Intn(2))
}

// NewRand returns a generator for the Random strategy. A zero seed is
// replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// NewStrategy returns a fresh strategy for sel. rng is only used by Random.
func NewStrategy(sel Selector, rng *rand.Rand) (Strategy, error) {
	switch sel {
	case AlwaysCooperate:
		return &CooperateBot{}, nil
	case AlwaysDefect:
		return &DefectBot{}, nil
	case TitForTat:
		return &TitForTatBot{mirror{opening: Cooperate}}, nil
	case Random:
		if rng == nil {
			rng = NewRand(0)
		}
		return &RandomBot{rng: rng}, nil
	case SuspiciousTitForTat:
		return &SuspiciousTitForTatBot{mirror{opening: Defect}}, nil
	}
	return nil, newError(CodeInvalidConfiguration,
		"invalid strategy, choose between 1 and 5",
		map[string]string{"selector": strconv.Itoa(int(sel))})
}

// Engine holds a player's current strategy.
type Engine struct {
	strategy Strategy
	rng      *rand.Rand
}

// NewEngine returns an engine playing AlwaysCooperate. A nil rng is
// replaced by one seeded from the clock.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Engine{
		strategy: &CooperateBot{},
		rng:      rng,
	}
}

// SetSelector installs a fresh strategy for sel. On error the current
// strategy is kept.
func (e *Engine) SetSelector(sel Selector) error {
	s, err := NewStrategy(sel, e.rng)
	if err != nil {
		return err
	}
	e.strategy = s
	return nil
}

func (e *Engine) Selector() Selector {
	return e.strategy.Selector()
}

func (e *Engine) Rounds() int {
	return e.strategy.Rounds()
}

func (e *Engine) Decide(opponent Move, seen bool) Move {
	return e.strategy.Decide(opponent, seen)
}
