package engine

import (
	"time"

	"github.com/NikoM94/JSChess/internal/board"
)

// Clock holds the time control state of a "go" command.
type Clock struct {
	Time      [2]time.Duration // remaining time, indexed by color
	Inc       [2]time.Duration // increment per move
	MovesToGo int              // moves until the next control (0 = sudden death)
}

// Budget returns the time to spend on one move for color us at game ply
// ply, or zero when no clock is running for us.
func (c Clock) Budget(us board.Color, ply int) time.Duration {
	timeLeft := c.Time[us]
	if timeLeft <= 0 {
		return 0
	}

	mtg := c.MovesToGo
	if mtg == 0 {
		// Sudden death: expect fewer remaining moves as the game goes on.
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
	}

	budget := timeLeft/time.Duration(mtg) + c.Inc[us]*9/10
	if ply < 8 {
		budget = budget * 85 / 100
	}

	if limit := timeLeft * 8 / 10; budget > limit {
		budget = limit
	}
	if budget < 10*time.Millisecond {
		budget = 10 * time.Millisecond
	}
	return budget
}
