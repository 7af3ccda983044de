package board

import (
	"fmt"
	"strings"
)

// SAN returns m in Standard Algebraic Notation. m must be legal in pos.
func (m Move) SAN(pos *Position) string {
	if m.Kind == Castle {
		if m.To.File() > m.From.File() {
			return "O-O" + checkSuffix(pos, m)
		}
		return "O-O-O" + checkSuffix(pos, m)
	}

	pc, ok := pos.Piece(m.Piece)
	if !ok {
		return m.String()
	}

	var sb strings.Builder
	if pc.Type != Pawn {
		sb.WriteByte(pc.Type.Char() - ('a' - 'A'))
		sb.WriteString(disambiguation(pos, m, pc.Type))
	}
	if m.IsCapture() {
		if pc.Type == Pawn {
			sb.WriteByte('a' + byte(m.From.File()))
		}
		sb.WriteByte('x')
	}
	sb.WriteString(m.To.String())
	if m.Kind == Promotion {
		sb.WriteByte('=')
		sb.WriteByte(m.Promote.Char() - ('a' - 'A'))
	}
	sb.WriteString(checkSuffix(pos, m))
	return sb.String()
}

func checkSuffix(pos *Position, m Move) string {
	next := pos.Clone()
	if err := next.Apply(m); err != nil {
		return ""
	}
	switch {
	case next.IsCheckmate():
		return "#"
	case next.InCheck():
		return "+"
	}
	return ""
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece type onto the same square.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	var rivals []Square
	for _, other := range pos.sides[pos.turn].LegalMoves {
		if other.To != m.To || other.From == m.From {
			continue
		}
		if pos.arena[other.Piece].Type == pt {
			rivals = append(rivals, other.From)
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range rivals {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if !sameFile {
		return string(rune('a' + m.From.File()))
	}
	if !sameRank {
		return string(rune('1' + m.From.Rank()))
	}
	return m.From.String()
}

// ParseSAN resolves a SAN string against the legal moves of pos.
func ParseSAN(s string, pos *Position) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	moves := pos.sides[pos.turn].LegalMoves
	if s == "O-O" || s == "0-0" || s == "O-O-O" || s == "0-0-0" {
		kingSide := len(s) == 3
		for _, m := range moves {
			if m.Kind == Castle && (m.To.File() > m.From.File()) == kingSide {
				return m, nil
			}
		}
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
	}

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if idx+1 >= len(s) {
			return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
		}
		promo = PieceTypeFromChar(s[idx+1])
		s = s[:idx]
	}

	capture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		pt = PieceTypeFromChar(s[0])
		s = s[1:]
	}
	if len(s) < 2 {
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return Move{}, err
	}

	file, rank := -1, -1
	for _, c := range s[:len(s)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		}
	}

	// Pawn captures always name the source file.
	if pt == Pawn && capture && file < 0 {
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
	}

	sawPromotion := false
	for _, m := range moves {
		if m.To != dest || pos.arena[m.Piece].Type != pt {
			continue
		}
		if file >= 0 && m.From.File() != file {
			continue
		}
		if rank >= 0 && m.From.Rank() != rank {
			continue
		}
		if capture && !m.IsCapture() {
			continue
		}
		if pt == Pawn && !capture && m.IsCapture() {
			continue
		}
		if m.Kind == Promotion {
			sawPromotion = true
			if m.Promote != promo {
				continue
			}
		}
		return m, nil
	}
	if sawPromotion && promo == NoPieceType {
		return Move{}, fmt.Errorf("%w: %s", ErrAmbiguousPromotion, orig)
	}
	return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
}

// MovesToSAN converts a sequence of moves played from pos into SAN.
// pos is not modified.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, 0, len(moves))
	p := pos.Clone()
	for _, m := range moves {
		result = append(result, m.SAN(p))
		if err := p.Apply(m); err != nil {
			break
		}
	}
	return result
}
