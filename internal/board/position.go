package board

import (
	"fmt"
	"strings"
)

// CastlingRights holds the permanent castling permissions of both colors.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the notation form of the rights, "-" when none remain.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle reports whether the color still holds the right on the given wing.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	r := WhiteQueenSideCastle
	if kingSide {
		r = WhiteKingSideCastle
	}
	if c == Black {
		r <<= 2
	}
	return r
}

// cornerRight returns the right tied to a rook's home square.
func cornerRight(sq Square) CastlingRights {
	switch sq {
	case A1:
		return WhiteQueenSideCastle
	case H1:
		return WhiteKingSideCastle
	case A8:
		return BlackQueenSideCastle
	case H8:
		return BlackKingSideCastle
	}
	return NoCastling
}

// Position is the complete game state: the grid, every piece, whose turn it
// is and the per-ply bookkeeping needed to generate the next legal moves.
//
// Pieces live in an arena indexed by PieceID; tiles store the index of their
// occupant. The live piece list and the non-empty tiles are in bijection.
type Position struct {
	squares [64]PieceID
	arena   []Piece
	pieces  []PieceID

	turn      Color
	castling  CastlingRights
	enPassant PieceID
	captured  []PieceID
	halfMove  int
	fullMove  int

	sides   [2]Side
	workers int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func emptyPosition() *Position {
	p := &Position{enPassant: NoPieceID, fullMove: 1}
	for i := range p.squares {
		p.squares[i] = NoPieceID
	}
	return p
}

// SetWorkers sets how many goroutines evaluate legality per side. Values
// below 2 keep evaluation sequential. The move sets are not recomputed.
func (p *Position) SetWorkers(n int) {
	p.workers = n
}

// Get returns the tile at file, rank (both 0-7). ok is false off the board.
func (p *Position) Get(file, rank int) (Tile, bool) {
	sq := NewSquare(file, rank)
	if sq == NoSquare {
		return Tile{Square: NoSquare, Occupant: NoPieceID}, false
	}
	return Tile{Square: sq, Occupant: p.squares[sq]}, true
}

// PieceAt returns the piece standing on sq.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.IsValid() || p.squares[sq] == NoPieceID {
		return Piece{}, false
	}
	return p.arena[p.squares[sq]], true
}

// Piece returns the arena entry for id, captured pieces included.
func (p *Position) Piece(id PieceID) (Piece, bool) {
	if id < 0 || int(id) >= len(p.arena) {
		return Piece{}, false
	}
	return p.arena[id], true
}

// Pieces returns the IDs of every piece on the board.
func (p *Position) Pieces() []PieceID {
	return append([]PieceID(nil), p.pieces...)
}

// Turn returns the color to move.
func (p *Position) Turn() Color {
	return p.turn
}

// CastlingRights returns the permanent castling rights.
func (p *Position) CastlingRights() CastlingRights {
	return p.castling
}

// EnPassantPawn returns the pawn that just double-stepped, or NoPieceID.
func (p *Position) EnPassantPawn() PieceID {
	return p.enPassant
}

// EnPassantSquare returns the square skipped by the en passant pawn, or
// NoSquare.
func (p *Position) EnPassantSquare() Square {
	if p.enPassant == NoPieceID {
		return NoSquare
	}
	pawn := p.arena[p.enPassant]
	return NewSquare(pawn.Square.File(), pawn.Square.Rank()-pawn.Color.forward())
}

// HalfMoveClock returns the plies since the last capture or pawn move.
func (p *Position) HalfMoveClock() int {
	return p.halfMove
}

// FullMoveNumber returns the move counter, starting at 1.
func (p *Position) FullMoveNumber() int {
	return p.fullMove
}

// Captured returns the pieces captured so far, oldest first.
func (p *Position) Captured() []Piece {
	out := make([]Piece, len(p.captured))
	for i, id := range p.captured {
		out[i] = p.arena[id]
		out[i].moves = nil
	}
	return out
}

// Side returns the derived aggregate for color c.
func (p *Position) Side(c Color) Side {
	return p.sides[c]
}

// LegalMoves returns the legal moves of color c.
func (p *Position) LegalMoves(c Color) MoveList {
	return append(MoveList(nil), p.sides[c].LegalMoves...)
}

// MovesFrom returns the legal moves of the piece on sq, if any.
func (p *Position) MovesFrom(sq Square) MoveList {
	pc, ok := p.PieceAt(sq)
	if !ok {
		return nil
	}
	return append(MoveList(nil), pc.moves...)
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.sides[p.turn].InCheck
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.sides[p.turn].Checkmate
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return p.sides[p.turn].Stalemate
}

// IsTerminal reports whether the side to move has no legal moves.
func (p *Position) IsTerminal() bool {
	return len(p.sides[p.turn].LegalMoves) == 0
}

// Apply plays m for the side to move. m must be one of that side's legal
// moves; otherwise ErrIllegalMove is returned and nothing changes.
func (p *Position) Apply(m Move) error {
	us := p.turn
	if !p.sides[us].LegalMoves.Contains(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	mover := p.arena[m.Piece]

	m.apply(p)

	if m.Captured != NoPieceID {
		p.captured = append(p.captured, m.Captured)
	}
	if mover.Type == King {
		p.castling &^= castleRight(us, true) | castleRight(us, false)
	}
	p.castling &^= cornerRight(m.From) | cornerRight(m.To)

	p.enPassant = NoPieceID
	if m.Kind == DoubleStep {
		p.enPassant = m.Piece
	}

	if mover.Type == Pawn || m.IsCapture() {
		p.halfMove = 0
	} else {
		p.halfMove++
	}
	if us == Black {
		p.fullMove++
	}

	p.turn = us.Other()
	p.refresh()
	return nil
}

// Clone returns a fully independent deep copy, derived sides included.
func (p *Position) Clone() *Position {
	c := p.scratch()
	c.captured = append([]PieceID(nil), p.captured...)
	c.halfMove = p.halfMove
	c.fullMove = p.fullMove
	c.workers = p.workers
	for i := range p.sides {
		c.sides[i] = p.sides[i].clone()
	}
	for _, s := range c.sides {
		for _, m := range s.LegalMoves {
			c.arena[m.Piece].moves = append(c.arena[m.Piece].moves, m)
		}
	}
	return c
}

// scratch copies only what move application and attack detection read.
func (p *Position) scratch() *Position {
	c := &Position{
		squares:   p.squares,
		arena:     make([]Piece, len(p.arena), len(p.arena)+1),
		pieces:    append([]PieceID(nil), p.pieces...),
		turn:      p.turn,
		castling:  p.castling,
		enPassant: p.enPassant,
	}
	copy(c.arena, p.arena)
	for i := range c.arena {
		c.arena[i].moves = nil
	}
	return c
}

// place adds a new piece to the arena and the board.
func (p *Position) place(pt PieceType, c Color, sq Square) PieceID {
	id := PieceID(len(p.arena))
	p.arena = append(p.arena, Piece{ID: id, Type: pt, Color: c, Square: sq})
	p.pieces = append(p.pieces, id)
	p.squares[sq] = id
	return id
}

func (p *Position) relocate(id PieceID, to Square) {
	pc := &p.arena[id]
	p.squares[pc.Square] = NoPieceID
	p.squares[to] = id
	pc.Square = to
	pc.HasMoved = true
}

func (p *Position) restore(id PieceID, from Square, moved bool) {
	pc := &p.arena[id]
	p.squares[pc.Square] = NoPieceID
	p.squares[from] = id
	pc.Square = from
	pc.HasMoved = moved
}

// lift takes a captured piece off the board and returns its list index.
func (p *Position) lift(id PieceID) int {
	i := p.indexOf(id)
	p.pieces = append(p.pieces[:i], p.pieces[i+1:]...)
	sq := p.arena[id].Square
	if p.squares[sq] == id {
		p.squares[sq] = NoPieceID
	}
	return i
}

// drop puts a lifted piece back at list index i and on its square.
func (p *Position) drop(id PieceID, i int) {
	p.pieces = append(p.pieces, NoPieceID)
	copy(p.pieces[i+1:], p.pieces[i:])
	p.pieces[i] = id
	p.squares[p.arena[id].Square] = id
}

// promote replaces pawn with a new piece of type pt on to. The pawn keeps
// its arena slot and its last square.
func (p *Position) promote(pawn PieceID, to Square, pt PieceType) PieceID {
	old := p.arena[pawn]
	id := PieceID(len(p.arena))
	p.arena = append(p.arena, Piece{ID: id, Type: pt, Color: old.Color, Square: to, HasMoved: true})
	p.pieces[p.indexOf(pawn)] = id
	p.squares[old.Square] = NoPieceID
	p.squares[to] = id
	return id
}

// demote undoes promote. promoted must be the newest arena entry.
func (p *Position) demote(pawn, promoted PieceID) {
	p.pieces[p.indexOf(promoted)] = pawn
	p.squares[p.arena[promoted].Square] = NoPieceID
	p.squares[p.arena[pawn].Square] = pawn
	p.arena = p.arena[:promoted]
}

func (p *Position) indexOf(id PieceID) int {
	for i, x := range p.pieces {
		if x == id {
			return i
		}
	}
	panic(fmt.Sprintf("board: piece %d not in piece list", id))
}

// kingOf returns the king of color c, or NoPieceID.
func (p *Position) kingOf(c Color) PieceID {
	for _, id := range p.pieces {
		if pc := &p.arena[id]; pc.Type == King && pc.Color == c {
			return id
		}
	}
	return NoPieceID
}

// Validate checks the structural invariants: the piece list and the
// occupied tiles agree one-to-one, each color has exactly one king and no
// pawn stands on the first or last rank.
func (p *Position) Validate() error {
	seen := make(map[PieceID]bool, len(p.pieces))
	kings := [2]int{}
	for _, id := range p.pieces {
		if id < 0 || int(id) >= len(p.arena) {
			return fmt.Errorf("piece %d outside arena", id)
		}
		if seen[id] {
			return fmt.Errorf("piece %d listed twice", id)
		}
		seen[id] = true
		pc := p.arena[id]
		if p.squares[pc.Square] != id {
			return fmt.Errorf("%s on %s is not on its tile", pc.Type, pc.Square)
		}
		if pc.Type == King {
			kings[pc.Color]++
		}
		if pc.Type == Pawn && (pc.Square.Rank() == 0 || pc.Square.Rank() == 7) {
			return fmt.Errorf("pawn on %s", pc.Square)
		}
	}
	occupied := 0
	for _, id := range p.squares {
		if id != NoPieceID {
			occupied++
		}
	}
	if occupied != len(p.pieces) {
		return fmt.Errorf("%d occupied tiles but %d pieces", occupied, len(p.pieces))
	}
	if kings[White] != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if kings[Black] != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	return nil
}

// Material returns the material balance (positive favors white), kings excluded.
func (p *Position) Material() int {
	score := 0
	for _, id := range p.pieces {
		pc := p.arena[id]
		if pc.Type == King {
			continue
		}
		if pc.Color == White {
			score += pc.Value()
		} else {
			score -= pc.Value()
		}
	}
	return score
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			if pc, ok := p.PieceAt(NewSquare(file, rank)); ok {
				sb.WriteString(pc.String() + " ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.turn)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassantSquare())
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.halfMove)
	fmt.Fprintf(&sb, "Full move: %d\n", p.fullMove)
	fmt.Fprintf(&sb, "Key: %016x\n", p.Key())
	return sb.String()
}
