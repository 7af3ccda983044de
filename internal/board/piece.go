package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// forward is the rank delta of a pawn step for this color.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// PromotionTypes lists the piece types a pawn may promote to, in emission order.
var PromotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the notation character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "pnbrqk"[pt]
}

// PieceTypeFromChar parses a piece letter in either case.
func PieceTypeFromChar(c byte) PieceType {
	switch c {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	default:
		return NoPieceType
	}
}

// PieceValue is the material value of each piece type in centipawns.
var PieceValue = [7]int{100, 300, 325, 500, 900, 20000, 0}

// PieceID indexes a piece in its position's arena. IDs are stable for the
// lifetime of a position and are shared by every clone of it.
type PieceID int

// NoPieceID marks an empty tile or an absent reference.
const NoPieceID PieceID = -1

// Piece is a single chess piece owned by a position.
type Piece struct {
	ID       PieceID
	Type     PieceType
	Color    Color
	Square   Square
	HasMoved bool

	// legal moves for this piece, refreshed every ply
	moves []Move
}

// Char returns the notation character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) Char() byte {
	c := p.Type.Char()
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return c
}

// String returns the notation character for the piece.
func (p Piece) String() string {
	return string(p.Char())
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type]
}
