package board

// IsFiftyMoveDraw reports whether fifty full moves passed without a capture
// or pawn move.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.halfMove >= 100
}

// IsInsufficientMaterial reports whether neither side can possibly mate:
// bare kings, or a single minor piece against a bare king.
func (p *Position) IsInsufficientMaterial() bool {
	minors := [2]int{}
	for _, id := range p.pieces {
		pc := p.arena[id]
		switch pc.Type {
		case Pawn, Rook, Queen:
			return false
		case Knight, Bishop:
			minors[pc.Color]++
		}
	}
	if minors[White]+minors[Black] == 0 {
		return true
	}
	return minors[White]+minors[Black] == 1
}

// IsDraw reports stalemate, the fifty-move rule or insufficient material.
// Repetition needs the game history and is tracked by the caller.
func (p *Position) IsDraw() bool {
	return p.IsStalemate() || p.IsFiftyMoveDraw() || p.IsInsufficientMaterial()
}
