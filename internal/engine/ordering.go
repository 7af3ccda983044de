package engine

import (
	"sort"

	"github.com/NikoM94/JSChess/internal/board"
)

const (
	ttMoveScore    = 1 << 20
	promotionScore = 1 << 16
	captureScore   = 1 << 12
)

// scoreMove ranks m for search order: the cached best move, then
// promotions, then captures by most valuable victim and least valuable
// attacker.
func scoreMove(pos *board.Position, m board.Move, ttMove board.Move, hasTT bool) int {
	if hasTT && m == ttMove {
		return ttMoveScore
	}
	score := 0
	if m.Kind == board.Promotion {
		score += promotionScore + board.PieceValue[m.Promote]
	}
	if m.IsCapture() {
		victim, _ := pos.Piece(m.Captured)
		attacker, _ := pos.Piece(m.Piece)
		score += captureScore + victim.Value()*10 - attacker.Value()/100
	}
	return score
}

// orderMoves returns a copy of moves sorted best first.
func orderMoves(pos *board.Position, moves board.MoveList, ttMove board.Move, hasTT bool) board.MoveList {
	out := append(board.MoveList(nil), moves...)
	scores := make([]int, len(out))
	for i, m := range out {
		scores[i] = scoreMove(pos, m, ttMove, hasTT)
	}
	sort.Stable(byScore{out, scores})
	return out
}

type byScore struct {
	moves  board.MoveList
	scores []int
}

func (b byScore) Len() int           { return len(b.moves) }
func (b byScore) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b byScore) Swap(i, j int) {
	b.moves[i], b.moves[j] = b.moves[j], b.moves[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}
