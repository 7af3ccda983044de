// Package engine implements a small alpha-beta search over board positions.
package engine

import (
	"github.com/NikoM94/JSChess/internal/board"
)

// Piece-square tables, written from White's side with rank 8 on the first
// row. Black reads them mirrored.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...]*[64]int{
	board.Pawn:   &pawnPST,
	board.Knight: &knightPST,
	board.Bishop: &bishopPST,
	board.Rook:   &rookPST,
	board.Queen:  &queenPST,
}

// phaseWeight counts non-pawn material toward the middlegame; 24 is the
// full starting set.
var phaseWeight = [...]int{
	board.Knight: 1,
	board.Bishop: 1,
	board.Rook:   2,
	board.Queen:  4,
	board.King:   0,
}

const maxPhase = 24

// pstIndex maps sq to a table index for a piece of color c.
func pstIndex(sq board.Square, c board.Color) int {
	if c == board.Black {
		return sq.Rank()*8 + sq.File()
	}
	return (7-sq.Rank())*8 + sq.File()
}

// Evaluate returns the static evaluation of pos in centipawns from the point
// of view of c: material plus piece-square bonuses, with the king table
// blended between middlegame and endgame by the remaining material.
func Evaluate(pos *board.Position, c board.Color) int {
	var mg, eg, phase int
	for _, id := range pos.Pieces() {
		pc, _ := pos.Piece(id)
		sign := 1
		if pc.Color != c {
			sign = -1
		}
		idx := pstIndex(pc.Square, pc.Color)

		if pc.Type == board.King {
			mg += sign * kingMidgamePST[idx]
			eg += sign * kingEndgamePST[idx]
			continue
		}
		v := pc.Value() + psts[pc.Type][idx]
		mg += sign * v
		eg += sign * v
		phase += phaseWeight[pc.Type]
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	return (mg*phase + eg*(maxPhase-phase)) / maxPhase
}
