package board

// Side is everything derived for one color in the current position. It is
// rebuilt from scratch after every applied move.
type Side struct {
	Color      Color
	Pieces     []PieceID
	King       PieceID
	InCheck    bool
	Checkmate  bool
	Stalemate  bool
	LegalMoves MoveList

	// castling available this ply
	CanCastleKingSide  bool
	CanCastleQueenSide bool
}

func (s Side) clone() Side {
	s.Pieces = append([]PieceID(nil), s.Pieces...)
	s.LegalMoves = append(MoveList(nil), s.LegalMoves...)
	return s
}

// refresh recomputes both sides and the per-piece move caches.
func (p *Position) refresh() {
	p.sides[White] = p.computeSide(White)
	p.sides[Black] = p.computeSide(Black)
}

func (p *Position) computeSide(c Color) Side {
	s := Side{Color: c, King: NoPieceID}
	for _, id := range p.pieces {
		pc := &p.arena[id]
		if pc.Color != c {
			continue
		}
		s.Pieces = append(s.Pieces, id)
		if pc.Type == King {
			s.King = id
		}
	}
	if s.King != NoPieceID {
		s.InCheck = AttacksOnTile(p, p.arena[s.King].Square, c) > 0
	}

	var candidates MoveList
	for _, id := range s.Pieces {
		for _, m := range p.pseudoLegal(id) {
			if m.Captured != NoPieceID && p.arena[m.Captured].Type == King {
				continue
			}
			candidates = append(candidates, m)
		}
	}
	s.LegalMoves = p.filterLegal(candidates, c)

	if m, ok := p.castleMove(c, true, s.InCheck); ok {
		s.CanCastleKingSide = true
		s.LegalMoves = append(s.LegalMoves, m)
	}
	if m, ok := p.castleMove(c, false, s.InCheck); ok {
		s.CanCastleQueenSide = true
		s.LegalMoves = append(s.LegalMoves, m)
	}

	s.Checkmate = s.InCheck && len(s.LegalMoves) == 0
	s.Stalemate = !s.InCheck && len(s.LegalMoves) == 0

	for _, id := range s.Pieces {
		p.arena[id].moves = nil
	}
	for _, m := range s.LegalMoves {
		p.arena[m.Piece].moves = append(p.arena[m.Piece].moves, m)
	}
	return s
}

// castleMove builds the castle of color c on the given wing if it is
// available this ply: the right is held, the king and rook stand on their
// home squares, the king is not in check, every square between king and
// rook is empty and neither square the king crosses or lands on is attacked.
func (p *Position) castleMove(c Color, kingSide, inCheck bool) (Move, bool) {
	if inCheck || !p.castling.CanCastle(c, kingSide) {
		return Move{}, false
	}
	rank := 0
	if c == Black {
		rank = 7
	}
	rookFile, step := 0, -1
	if kingSide {
		rookFile, step = 7, 1
	}

	kingSq := NewSquare(4, rank)
	rookSq := NewSquare(rookFile, rank)
	king, rook := p.squares[kingSq], p.squares[rookSq]
	if king == NoPieceID || rook == NoPieceID {
		return Move{}, false
	}
	if k, r := p.arena[king], p.arena[rook]; k.Type != King || k.Color != c || r.Type != Rook || r.Color != c {
		return Move{}, false
	}

	for f := 4 + step; f != rookFile; f += step {
		if p.squares[NewSquare(f, rank)] != NoPieceID {
			return Move{}, false
		}
	}
	for i := 1; i <= 2; i++ {
		if AttacksOnTile(p, NewSquare(4+i*step, rank), c) > 0 {
			return Move{}, false
		}
	}

	m := newMove(Castle, king, kingSq, NewSquare(4+2*step, rank))
	m.Rook = rook
	m.RookFrom = rookSq
	m.RookTo = NewSquare(4+step, rank)
	return m, true
}
