package game

import (
	"fmt"

	"github.com/NikoM94/JSChess/internal/board"
)

// Status summarizes the state of the game for the side to move.
type Status struct {
	Turn      board.Color
	InCheck   bool
	Checkmate bool
	Stalemate bool
	Draw      bool
	Over      bool
	Result    string
}

// String returns a one-line description, e.g. "White to move (check)".
func (s Status) String() string {
	if s.Over {
		return s.Result
	}
	if s.InCheck {
		return fmt.Sprintf("%s to move (check)", s.Turn)
	}
	return fmt.Sprintf("%s to move", s.Turn)
}

// Status reports check, checkmate, stalemate and the draw rules.
func (g *Game) Status() Status {
	pos := g.position
	side := pos.Side(pos.Turn())
	st := Status{
		Turn:      pos.Turn(),
		InCheck:   side.InCheck,
		Checkmate: side.Checkmate,
		Stalemate: side.Stalemate,
	}

	switch {
	case st.Checkmate:
		st.Over = true
		st.Result = fmt.Sprintf("%s wins by checkmate", pos.Turn().Other())
	case st.Stalemate:
		st.Draw, st.Over = true, true
		st.Result = "Draw by stalemate"
	case g.isThreefoldRepetition():
		st.Draw, st.Over = true, true
		st.Result = "Draw by threefold repetition"
	case pos.IsFiftyMoveDraw():
		st.Draw, st.Over = true, true
		st.Result = "Draw by 50-move rule"
	case pos.IsInsufficientMaterial():
		st.Draw, st.Over = true, true
		st.Result = "Draw by insufficient material"
	}
	return st
}

// isThreefoldRepetition reports whether the current position occurred at
// least three times.
func (g *Game) isThreefoldRepetition() bool {
	if len(g.keys) < 5 {
		return false
	}
	current := g.keys[len(g.keys)-1]
	count := 0
	for _, k := range g.keys {
		if k == current {
			count++
		}
	}
	return count >= 3
}
