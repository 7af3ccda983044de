package board

import "sync"

// AttacksOnTile counts the pieces not of color exclude that attack sq.
// Sliders, knights and kings attack the squares their pseudo-legal moves
// reach; pawns attack their two forward diagonals whether or not anything
// stands there, and never attack with a push or en passant.
func AttacksOnTile(p *Position, sq Square, exclude Color) int {
	n := 0
	for _, id := range p.pieces {
		pc := &p.arena[id]
		if pc.Color == exclude {
			continue
		}
		if p.attacks(pc, sq) {
			n++
		}
	}
	return n
}

func (p *Position) attacks(pc *Piece, sq Square) bool {
	if pc.Type == Pawn {
		df := sq.File() - pc.Square.File()
		return sq.Rank() == pc.Square.Rank()+pc.Color.forward() && (df == 1 || df == -1)
	}
	for _, m := range p.pseudoLegal(pc.ID) {
		if m.To == sq {
			return true
		}
	}
	return false
}

// IsLegal reports whether playing m leaves the king of color moving
// unattacked. The check runs on a private copy of p, which is discarded;
// p itself is only read.
func IsLegal(p *Position, m Move, moving Color) bool {
	cp := p.scratch()
	m.apply(cp)
	king := cp.kingOf(moving)
	if king == NoPieceID {
		return false
	}
	return AttacksOnTile(cp, cp.arena[king].Square, moving) == 0
}

// filterLegal keeps the candidates that pass IsLegal, preserving order.
// With more than one worker the checks run concurrently; each works on its
// own copy so the result matches the sequential path.
func (p *Position) filterLegal(candidates MoveList, moving Color) MoveList {
	verdict := make([]bool, len(candidates))
	if p.workers > 1 && len(candidates) > 1 {
		var wg sync.WaitGroup
		sem := make(chan struct{}, p.workers)
		for i := range candidates {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer func() { <-sem; wg.Done() }()
				verdict[i] = IsLegal(p, candidates[i], moving)
			}()
		}
		wg.Wait()
	} else {
		for i, m := range candidates {
			verdict[i] = IsLegal(p, m, moving)
		}
	}

	legal := make(MoveList, 0, len(candidates))
	for i, m := range candidates {
		if verdict[i] {
			legal = append(legal, m)
		}
	}
	return legal
}
