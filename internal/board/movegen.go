package board

// offset is a (file, rank) displacement.
type offset struct{ df, dr int }

var (
	rookDirs   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([]offset{}, rookDirs...), bishopDirs...)

	knightJumps = []offset{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = queenDirs
)

// PseudoLegalMoves returns the moves the piece on sq could make ignoring
// king safety. Castling is never included.
func (p *Position) PseudoLegalMoves(sq Square) MoveList {
	if !sq.IsValid() || p.squares[sq] == NoPieceID {
		return nil
	}
	return p.pseudoLegal(p.squares[sq])
}

func (p *Position) pseudoLegal(id PieceID) MoveList {
	pc := &p.arena[id]
	switch pc.Type {
	case Pawn:
		return p.pawnMoves(pc)
	case Knight:
		return p.stepMoves(pc, knightJumps)
	case Bishop:
		return p.slideMoves(pc, bishopDirs)
	case Rook:
		return p.slideMoves(pc, rookDirs)
	case Queen:
		return p.slideMoves(pc, queenDirs)
	case King:
		return p.stepMoves(pc, kingSteps)
	}
	return nil
}

// reach emits the move of pc onto sq: Normal when empty, Attack when an
// enemy stands there. ok is false when sq is blocked by a friendly piece.
func (p *Position) reach(pc *Piece, sq Square) (m Move, ok bool) {
	occ := p.squares[sq]
	if occ == NoPieceID {
		return newMove(Normal, pc.ID, pc.Square, sq), true
	}
	if p.arena[occ].Color == pc.Color {
		return Move{}, false
	}
	m = newMove(Attack, pc.ID, pc.Square, sq)
	m.Captured = occ
	return m, true
}

func (p *Position) stepMoves(pc *Piece, steps []offset) MoveList {
	var out MoveList
	f, r := pc.Square.File(), pc.Square.Rank()
	for _, o := range steps {
		sq := NewSquare(f+o.df, r+o.dr)
		if sq == NoSquare {
			continue
		}
		if m, ok := p.reach(pc, sq); ok {
			out = append(out, m)
		}
	}
	return out
}

func (p *Position) slideMoves(pc *Piece, dirs []offset) MoveList {
	var out MoveList
	for _, o := range dirs {
		f, r := pc.Square.File(), pc.Square.Rank()
		for {
			f, r = f+o.df, r+o.dr
			sq := NewSquare(f, r)
			if sq == NoSquare {
				break
			}
			m, ok := p.reach(pc, sq)
			if ok {
				out = append(out, m)
			}
			if p.squares[sq] != NoPieceID {
				break
			}
		}
	}
	return out
}

func (p *Position) pawnMoves(pc *Piece) MoveList {
	var out MoveList
	dir := pc.Color.forward()
	f, r := pc.Square.File(), pc.Square.Rank()

	if one := NewSquare(f, r+dir); one != NoSquare && p.squares[one] == NoPieceID {
		out = p.pawnTo(out, pc, one, NoPieceID)
		two := NewSquare(f, r+2*dir)
		if r == pawnStartRank(pc.Color) && two != NoSquare && p.squares[two] == NoPieceID {
			out = append(out, newMove(DoubleStep, pc.ID, pc.Square, two))
		}
	}

	for _, df := range [2]int{-1, 1} {
		sq := NewSquare(f+df, r+dir)
		if sq == NoSquare {
			continue
		}
		if occ := p.squares[sq]; occ != NoPieceID && p.arena[occ].Color != pc.Color {
			out = p.pawnTo(out, pc, sq, occ)
		}
	}

	if p.enPassant != NoPieceID {
		ep := &p.arena[p.enPassant]
		df := ep.Square.File() - f
		if ep.Color != pc.Color && ep.Square.Rank() == r && (df == 1 || df == -1) {
			to := NewSquare(ep.Square.File(), r+dir)
			if to != NoSquare && p.squares[to] == NoPieceID {
				m := newMove(EnPassant, pc.ID, pc.Square, to)
				m.Captured = p.enPassant
				out = append(out, m)
			}
		}
	}
	return out
}

// pawnTo emits a pawn arrival on sq, expanding last-rank arrivals into the
// four promotion choices.
func (p *Position) pawnTo(out MoveList, pc *Piece, sq Square, captured PieceID) MoveList {
	if sq.Rank() == lastRank(pc.Color) {
		for _, pt := range PromotionTypes {
			m := newMove(Promotion, pc.ID, pc.Square, sq)
			m.Captured = captured
			m.Promote = pt
			out = append(out, m)
		}
		return out
	}
	kind := Normal
	if captured != NoPieceID {
		kind = Attack
	}
	m := newMove(kind, pc.ID, pc.Square, sq)
	m.Captured = captured
	return append(out, m)
}

func pawnStartRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

// lastRank returns the promotion rank for pawns of color c.
func lastRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}
