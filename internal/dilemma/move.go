package dilemma

type Move int

const (
	Cooperate Move = iota
	Defect
)

func (m Move) String() string {
	switch m {
	case Cooperate:
		return "Cooperate"
	case Defect:
		return "Defect"
	}
	return "Unknown"
}

// Payoff returns the points awarded to the player who made self when the
// opponent made opp. Only the scoring player is rewarded.
func Payoff(self, opp Move) int {
	// if both play nice then both get the reward
	if self == Cooperate && opp == Cooperate {
		return 3
	}

	// if both defect they share the punishment
	if self == Defect && opp == Defect {
		return 1
	}

	// defecting on a cooperator is the temptation payoff
	if self == Defect && opp == Cooperate {
		return 5
	}

	// the sucker gets nothing
	return 0
}
