package models

// Street is one of the hand's betting rounds, plus the terminal showdown.
type Street string

const (
	StreetPreFlop  Street = "preflop"
	StreetFlop     Street = "flop"
	StreetTurn     Street = "turn"
	StreetRiver    Street = "river"
	StreetShowdown Street = "showdown"
)

// Next returns the street that follows s. Showdown is terminal.
func (s Street) Next() Street {
	switch s {
	case StreetPreFlop:
		return StreetFlop
	case StreetFlop:
		return StreetTurn
	case StreetTurn:
		return StreetRiver
	default:
		return StreetShowdown
	}
}

// RevealedCount returns how many community cards are face up while
// betting on s.
func (s Street) RevealedCount() int {
	switch s {
	case StreetPreFlop:
		return 0
	case StreetFlop:
		return 3
	case StreetTurn:
		return 4
	default:
		return 5
	}
}

func (s Street) String() string {
	switch s {
	case StreetPreFlop:
		return "Pre-flop"
	case StreetFlop:
		return "Flop"
	case StreetTurn:
		return "Turn"
	case StreetRiver:
		return "River"
	case StreetShowdown:
		return "Showdown"
	default:
		return string(s)
	}
}
