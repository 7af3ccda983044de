// Package board models a chess position, generates its legal moves, and
// applies them one ply at a time.
package board

import "fmt"

// Square identifies a square on the chess board (0-63).
// Uses Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)
// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank (row) of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String returns the algebraic name of the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// IsValid reports whether the square lies on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// IsLight reports whether the square is a light square (h1 is light).
func (sq Square) IsLight() bool {
	return (sq.File()+sq.Rank())%2 == 1
}

// onBoard reports whether file and rank are both within 0..7.
func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// NewSquare creates a square from file and rank (0-indexed). Coordinates
// outside the board yield NoSquare.
func NewSquare(file, rank int) Square {
	if !onBoard(file, rank) {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	sq := NewSquare(int(s[0])-'a', int(s[1])-'1')
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	return sq, nil
}

// Tile is a read-only view of one board square and its occupant.
type Tile struct {
	Square   Square
	Occupant PieceID
}

// Empty reports whether no piece stands on the tile.
func (t Tile) Empty() bool {
	return t.Occupant == NoPieceID
}

// Color returns the display color of the tile.
func (t Tile) Color() Color {
	if t.Square.IsLight() {
		return White
	}
	return Black
}
