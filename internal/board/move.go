package board

import "fmt"

// MoveKind is the closed set of move variants.
type MoveKind uint8

const (
	Normal MoveKind = iota
	DoubleStep
	Attack
	EnPassant
	Promotion
	Castle
)

// String returns the variant name.
func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case DoubleStep:
		return "double-step"
	case Attack:
		return "attack"
	case EnPassant:
		return "en-passant"
	case Promotion:
		return "promotion"
	case Castle:
		return "castle"
	default:
		return fmt.Sprintf("MoveKind(%d)", uint8(k))
	}
}

// Move is one candidate ply. Kind selects which payload fields are meaningful:
//
//	Normal, DoubleStep  Piece, From, To
//	Attack, EnPassant   plus Captured (for EnPassant it stands beside To)
//	Promotion           plus Promote and, when capturing, Captured
//	Castle              Piece is the king; plus Rook, RookFrom, RookTo
//
// Unused reference fields hold NoPieceID so moves compare with ==.
type Move struct {
	Kind     MoveKind
	Piece    PieceID
	From     Square
	To       Square
	Captured PieceID
	Promote  PieceType

	Rook     PieceID
	RookFrom Square
	RookTo   Square
}

func newMove(kind MoveKind, piece PieceID, from, to Square) Move {
	return Move{
		Kind:     kind,
		Piece:    piece,
		From:     from,
		To:       to,
		Captured: NoPieceID,
		Promote:  NoPieceType,
		Rook:     NoPieceID,
		RookFrom: NoSquare,
		RookTo:   NoSquare,
	}
}

// IsCapture reports whether the move removes an enemy piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPieceID
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Kind == Promotion {
		s += string(m.Promote.Char())
	}
	return s
}

// undo records what apply changed beyond what the move itself carries.
type undo struct {
	moverMoved bool
	rookMoved  bool
	capturedAt int
	promoted   PieceID
}

// apply performs the piece movement of m on p. It touches only the grid,
// the arena and the piece list; ply bookkeeping belongs to Position.Apply.
func (m Move) apply(p *Position) undo {
	u := undo{capturedAt: -1, promoted: NoPieceID}
	u.moverMoved = p.arena[m.Piece].HasMoved

	switch m.Kind {
	case Normal, DoubleStep:
		p.relocate(m.Piece, m.To)
	case Attack, EnPassant:
		u.capturedAt = p.lift(m.Captured)
		p.relocate(m.Piece, m.To)
	case Promotion:
		if m.Captured != NoPieceID {
			u.capturedAt = p.lift(m.Captured)
		}
		u.promoted = p.promote(m.Piece, m.To, m.Promote)
	case Castle:
		u.rookMoved = p.arena[m.Rook].HasMoved
		p.relocate(m.Piece, m.To)
		p.relocate(m.Rook, m.RookTo)
	}
	return u
}

// unapply reverses apply given the record it returned.
func (m Move) unapply(p *Position, u undo) {
	switch m.Kind {
	case Normal, DoubleStep:
		p.restore(m.Piece, m.From, u.moverMoved)
	case Attack, EnPassant:
		p.restore(m.Piece, m.From, u.moverMoved)
		p.drop(m.Captured, u.capturedAt)
	case Promotion:
		p.demote(m.Piece, u.promoted)
		if m.Captured != NoPieceID {
			p.drop(m.Captured, u.capturedAt)
		}
	case Castle:
		p.restore(m.Rook, m.RookFrom, u.rookMoved)
		p.restore(m.Piece, m.From, u.moverMoved)
	}
}

// MoveList is a slice of moves with lookup helpers.
type MoveList []Move

// Contains reports whether m is in the list.
func (ml MoveList) Contains(m Move) bool {
	for _, x := range ml {
		if x == m {
			return true
		}
	}
	return false
}

// From returns the moves starting on sq.
func (ml MoveList) From(sq Square) MoveList {
	var out MoveList
	for _, m := range ml {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

// Destinations returns the distinct target squares of the list, in order.
func (ml MoveList) Destinations() []Square {
	var out []Square
	seen := [64]bool{}
	for _, m := range ml {
		if !seen[m.To] {
			seen[m.To] = true
			out = append(out, m.To)
		}
	}
	return out
}

// Strings returns the coordinate form of every move.
func (ml MoveList) Strings() []string {
	out := make([]string, len(ml))
	for i, m := range ml {
		out[i] = m.String()
	}
	return out
}

// FindMove resolves a from/to request against the legal moves of the side
// to move. promo selects the promotion piece and must be NoPieceType for
// every other move. A pawn reaching the last rank without promo yields
// ErrAmbiguousPromotion; anything else unmatched yields ErrIllegalMove.
func (p *Position) FindMove(from, to Square, promo PieceType) (Move, error) {
	promoting := false
	for _, m := range p.sides[p.turn].LegalMoves {
		if m.From != from || m.To != to {
			continue
		}
		if m.Kind == Promotion {
			promoting = true
			if m.Promote == promo {
				return m, nil
			}
			continue
		}
		if promo == NoPieceType {
			return m, nil
		}
	}
	if promoting && promo == NoPieceType {
		return Move{}, fmt.Errorf("%w: %s%s", ErrAmbiguousPromotion, from, to)
	}
	return Move{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
}

// ParseMove parses a coordinate move string ("e2e4", "e7e8q") and resolves
// it with FindMove.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: invalid move string %q", ErrIllegalMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}
	promo := NoPieceType
	if len(s) == 5 {
		promo = PieceTypeFromChar(s[4])
		if promo == Pawn || promo == King || promo == NoPieceType {
			return Move{}, fmt.Errorf("%w: invalid promotion piece %c", ErrIllegalMove, s[4])
		}
	}
	return pos.FindMove(from, to, promo)
}
