package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the notation of the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses FEN notation into a new Position. The half-move clock
// and full-move number are optional and default to 0 and 1.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidNotation, len(parts))
	}

	pos := emptyPosition()

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.turn = White
	case "b":
		pos.turn = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidNotation, parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if err := parseEnPassant(pos, parts[3]); err != nil {
		return nil, err
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidNotation, parts[4])
		}
		pos.halfMove = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidNotation, parts[5])
		}
		pos.fullMove = fmn
	}

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotation, err)
	}
	markMoved(pos)

	them := pos.turn.Other()
	if AttacksOnTile(pos, pos.arena[pos.kingOf(them)].Square, them) > 0 {
		return nil, fmt.Errorf("%w: %s to move can capture the king", ErrInvalidNotation, pos.turn)
	}

	pos.refresh()
	return pos, nil
}

// LoadFEN replaces the position with the one described by fen. On error the
// position is left as it was.
func (p *Position) LoadFEN(fen string) error {
	next, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	next.workers = p.workers
	*p = *next
	return nil
}

// CanonicalFEN returns the notation Position.FEN would produce for fen.
func CanonicalFEN(fen string) (string, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return "", err
	}
	return pos.FEN(), nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidNotation, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidNotation, rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pt := PieceTypeFromChar(byte(c))
			if pt == NoPieceType || c > 'z' {
				return fmt.Errorf("%w: piece character %q", ErrInvalidNotation, c)
			}
			color := Black
			if c >= 'A' && c <= 'Z' {
				color = White
			}
			pos.place(pt, color, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidNotation, rank+1, file)
		}
	}
	return nil
}

func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.castling = NoCastling
		return nil
	}
	for _, c := range castling {
		var r CastlingRights
		switch c {
		case 'K':
			r = WhiteKingSideCastle
		case 'Q':
			r = WhiteQueenSideCastle
		case 'k':
			r = BlackKingSideCastle
		case 'q':
			r = BlackQueenSideCastle
		default:
			return fmt.Errorf("%w: castling character %q", ErrInvalidNotation, c)
		}
		if pos.castling&r != 0 {
			return fmt.Errorf("%w: castling character %q repeated", ErrInvalidNotation, c)
		}
		pos.castling |= r
	}
	return nil
}

// parseEnPassant resolves the skipped square to the pawn that double-stepped
// past it. That pawn must belong to the side that just moved.
func parseEnPassant(pos *Position, field string) error {
	if field == "-" {
		return nil
	}
	sq, err := ParseSquare(field)
	if err != nil {
		return fmt.Errorf("%w: en passant square %q", ErrInvalidNotation, field)
	}
	mover := pos.turn.Other()
	wantRank := 2
	if mover == Black {
		wantRank = 5
	}
	if sq.Rank() != wantRank {
		return fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidNotation, sq)
	}
	pawnSq := NewSquare(sq.File(), sq.Rank()+mover.forward())
	id := pos.squares[pawnSq]
	if id == NoPieceID || pos.arena[id].Type != Pawn || pos.arena[id].Color != mover {
		return fmt.Errorf("%w: no pawn behind en passant square %s", ErrInvalidNotation, sq)
	}
	if pos.squares[sq] != NoPieceID {
		return fmt.Errorf("%w: en passant square %s is occupied", ErrInvalidNotation, sq)
	}
	pos.enPassant = id
	return nil
}

// markMoved derives HasMoved for a freshly parsed position: pawns off their
// start rank have moved, and kings and rooks have moved unless a castling
// right still ties them to their home squares.
func markMoved(pos *Position) {
	for _, id := range pos.pieces {
		pc := &pos.arena[id]
		home := 0
		if pc.Color == Black {
			home = 7
		}
		switch pc.Type {
		case Pawn:
			pc.HasMoved = pc.Square.Rank() != pawnStartRank(pc.Color)
		case King:
			pc.HasMoved = pc.Square != NewSquare(4, home) ||
				!(pos.castling.CanCastle(pc.Color, true) || pos.castling.CanCastle(pc.Color, false))
		case Rook:
			r := cornerRight(pc.Square)
			pc.HasMoved = r == NoCastling || pos.castling&r == 0 || pc.Square.Rank() != home
		}
	}
}

// FEN returns the canonical notation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc, ok := p.PieceAt(NewSquare(file, rank))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castling.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassantSquare().String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfMove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullMove))

	return sb.String()
}
