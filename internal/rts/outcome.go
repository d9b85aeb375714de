package rts

// Outcome is how a match ended from one player's viewpoint
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDraw:
		return "draw"
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "unknown"
	}
}

// OutcomeFor maps a winner id onto player's outcome
func OutcomeFor(player, winner int) Outcome {
	switch {
	case winner == NoWinner:
		return OutcomeDraw
	case winner == player:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

// Reward is the terminal learning signal: +1, -1 or 0
func (o Outcome) Reward() float64 {
	switch o {
	case OutcomeWin:
		return 1
	case OutcomeLoss:
		return -1
	default:
		return 0
	}
}

// Opponent returns the other player of a two-player match
func Opponent(player int) int {
	return 1 - player
}
