package engine

import (
	"context"

	"github.com/NikoM94/JSChess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64
)

// quiescence captures stop this many plies past the nominal depth.
const maxQuiescencePly = 6

// searcher runs one alpha-beta search. Children are searched on copies of
// the parent position, so the caller's position is never touched.
type searcher struct {
	ctx      context.Context
	tt       *TranspositionTable
	nodes    uint64
	maxNodes uint64
	stopped  bool
}

// expired polls the context every few nodes and latches once it is done.
func (s *searcher) expired() bool {
	if s.stopped {
		return true
	}
	if s.maxNodes > 0 && s.nodes >= s.maxNodes {
		s.stopped = true
	} else if s.nodes&63 == 0 && s.ctx.Err() != nil {
		s.stopped = true
	}
	return s.stopped
}

// child returns a copy of pos with m played.
func child(pos *board.Position, m board.Move) *board.Position {
	next := pos.Clone()
	if err := next.Apply(m); err != nil {
		panic(err) // m came from pos.LegalMoves
	}
	return next
}

// root searches every legal move of pos to depth and returns the best one.
// ok is false when the search was stopped before the first move finished.
func (s *searcher) root(pos *board.Position, depth int, prev board.Move, hasPrev bool) (best board.Move, score int, ok bool) {
	alpha, beta := -Infinity, Infinity
	for _, m := range orderMoves(pos, pos.LegalMoves(pos.Turn()), prev, hasPrev) {
		v := -s.negamax(child(pos, m), depth-1, 1, -beta, -alpha)
		if s.stopped {
			break
		}
		if !ok || v > alpha {
			best, score, ok = m, v, true
			alpha = v
		}
	}
	if ok && !s.stopped {
		s.tt.Store(pos.Key(), depth, scoreToTT(score, 0), TTExact, best, true)
	}
	return best, score, ok
}

func (s *searcher) negamax(pos *board.Position, depth, ply, alpha, beta int) int {
	s.nodes++
	if s.expired() {
		return 0
	}

	moves := pos.LegalMoves(pos.Turn())
	if len(moves) == 0 {
		if pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}
	if pos.IsFiftyMoveDraw() || pos.IsInsufficientMaterial() {
		return 0
	}
	if depth <= 0 || ply >= MaxPly {
		return s.quiesce(pos, ply, 0, alpha, beta)
	}

	key := pos.Key()
	entry, hit := s.tt.Probe(key)
	if hit && int(entry.Depth) >= depth {
		v := scoreFromTT(int(entry.Score), ply)
		switch entry.Flag {
		case TTExact:
			return v
		case TTLowerBound:
			if v >= beta {
				return v
			}
		case TTUpperBound:
			if v <= alpha {
				return v
			}
		}
	}

	origAlpha := alpha
	best := -Infinity
	var bestMove board.Move
	for _, m := range orderMoves(pos, moves, entry.BestMove, hit && entry.HasMove) {
		v := -s.negamax(child(pos, m), depth-1, ply+1, -beta, -alpha)
		if s.stopped {
			return 0
		}
		if v > best {
			best, bestMove = v, m
		}
		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			break
		}
	}

	flag := TTExact
	switch {
	case best <= origAlpha:
		flag = TTUpperBound
	case best >= beta:
		flag = TTLowerBound
	}
	s.tt.Store(key, depth, scoreToTT(best, ply), flag, bestMove, true)
	return best
}

// quiesce extends the search along captures and promotions until the
// position is quiet, so the static evaluation is not taken mid-exchange.
func (s *searcher) quiesce(pos *board.Position, ply, qply, alpha, beta int) int {
	stand := Evaluate(pos, pos.Turn())
	if stand >= beta || qply >= maxQuiescencePly {
		return stand
	}
	if stand > alpha {
		alpha = stand
	}

	for _, m := range orderMoves(pos, pos.LegalMoves(pos.Turn()), board.Move{}, false) {
		if !m.IsCapture() && m.Kind != board.Promotion {
			continue
		}
		s.nodes++
		if s.expired() {
			return 0
		}
		v := -s.quiesce(child(pos, m), ply+1, qply+1, -beta, -alpha)
		if v >= beta {
			return v
		}
		if v > alpha {
			alpha = v
		}
	}
	return alpha
}

// principalVariation follows cached best moves from pos, checking each one
// is still legal.
func (s *searcher) principalVariation(pos *board.Position, first board.Move, depth int) []board.Move {
	pv := []board.Move{first}
	cur := child(pos, first)
	for len(pv) < depth {
		entry, ok := s.tt.Probe(cur.Key())
		if !ok || !entry.HasMove || !cur.LegalMoves(cur.Turn()).Contains(entry.BestMove) {
			break
		}
		pv = append(pv, entry.BestMove)
		cur = child(cur, entry.BestMove)
	}
	return pv
}
