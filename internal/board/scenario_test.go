package board

import (
	"errors"
	"testing"
)

func countKinds(ml MoveList) map[MoveKind]int {
	out := make(map[MoveKind]int)
	for _, m := range ml {
		out[m.Kind]++
	}
	return out
}

func TestStartingPositionMoves(t *testing.T) {
	pos := NewPosition()

	for _, c := range []Color{White, Black} {
		side := pos.Side(c)
		if len(side.LegalMoves) != 20 {
			t.Errorf("%v has %d legal moves, want 20", c, len(side.LegalMoves))
		}
		kinds := countKinds(side.LegalMoves)
		if kinds[Normal] != 12 || kinds[DoubleStep] != 8 {
			t.Errorf("%v kinds = %v, want 12 normal (8 pawn, 4 knight) and 8 double-step", c, kinds)
		}
		if side.InCheck || side.Checkmate || side.Stalemate {
			t.Errorf("%v flags set in the starting position: %+v", c, side)
		}
		if len(side.Pieces) != 16 {
			t.Errorf("%v has %d pieces, want 16", c, len(side.Pieces))
		}
	}
}

func TestDoubleStepTargetClearsAfterReply(t *testing.T) {
	for _, reply := range []string{"g8f6", "d7d6", "e7e5", "b8c6"} {
		t.Run(reply, func(t *testing.T) {
			pos := NewPosition()
			mustPlay(t, pos, "e2e4")

			pawn := pos.squares[E4]
			if pawn == NoPieceID || pos.EnPassantPawn() != pawn {
				t.Fatalf("en passant pawn = %v, want the e4 pawn %v", pos.EnPassantPawn(), pawn)
			}
			if pos.EnPassantSquare() != E3 {
				t.Errorf("en passant square = %v, want e3", pos.EnPassantSquare())
			}

			mustPlay(t, pos, reply)
			if pos.EnPassantPawn() == pawn {
				t.Errorf("e4 pawn still the en passant target after %s", reply)
			}
			want := NoPieceID
			if reply == "e7e5" {
				want = pos.squares[E5]
			}
			if pos.EnPassantPawn() != want {
				t.Errorf("en passant pawn after %s = %v, want %v", reply, pos.EnPassantPawn(), want)
			}
		})
	}
}

func TestEnPassantWindow(t *testing.T) {
	pos := mustParse(t, "4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1")
	mustPlay(t, pos, "d7d5")

	if pos.EnPassantSquare() != D6 {
		t.Fatalf("en passant square = %v, want d6", pos.EnPassantSquare())
	}

	m, err := ParseMove("e5d6", pos)
	if err != nil {
		t.Fatalf("ParseMove(e5d6): %v", err)
	}
	if m.Kind != EnPassant || m.Captured != pos.squares[D5] {
		t.Fatalf("e5d6 = %+v, want en passant capturing the d5 pawn", m)
	}

	taken := pos.Clone()
	if err := taken.Apply(m); err != nil {
		t.Fatalf("Apply(e5d6): %v", err)
	}
	if _, ok := taken.PieceAt(D5); ok {
		t.Error("d5 still occupied after en passant")
	}
	if pc, ok := taken.PieceAt(D6); !ok || pc.Type != Pawn || pc.Color != White {
		t.Error("white pawn missing from d6 after en passant")
	}
	if got := taken.Captured(); len(got) != 1 || got[0].Type != Pawn {
		t.Errorf("captured = %+v, want one pawn", got)
	}

	// The window closes after one ply.
	mustPlay(t, pos, "e1d1")
	if pos.EnPassantPawn() != NoPieceID {
		t.Error("en passant pawn survived a ply")
	}
	mustPlay(t, pos, "e8f8")
	for _, m := range pos.LegalMoves(White) {
		if m.Kind == EnPassant {
			t.Errorf("en passant %v still available", m)
		}
	}
}

func TestEnPassantNeedsAdjacentFile(t *testing.T) {
	// d5 pawn just double-stepped; the b5 pawn is two files away.
	pos := mustParse(t, "4k3/8/8/1P1p4/8/8/8/4K3 w - d6 0 2")
	for _, m := range pos.MovesFrom(B5) {
		if m.Kind == EnPassant {
			t.Errorf("b5 pawn offered en passant %v", m)
		}
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		kingSide  bool
		queenSide bool
	}{
		{"king side available", "4k3/8/8/8/8/8/8/4K2R w K - 0 1", true, false},
		{"transit attacked", "4kr2/8/8/8/8/8/8/4K2R w K - 0 1", false, false},
		{"landing attacked", "4k1r1/8/8/8/8/8/8/4K2R w K - 0 1", false, false},
		{"in check", "4k3/8/8/8/8/8/8/r3K2R w K - 0 1", false, false},
		{"path blocked", "4k3/8/8/8/8/8/8/4KN1R w K - 0 1", false, false},
		{"no right", "4k3/8/8/8/8/8/8/4K2R w - - 0 1", false, false},
		{"queen side b-file attacked", "1r2k3/8/8/8/8/8/8/R3K3 w Q - 0 1", false, true},
		{"queen side c-file attacked", "2r1k3/8/8/8/8/8/8/R3K3 w Q - 0 1", false, false},
		{"queen side b-file occupied", "4k3/8/8/8/8/8/8/RN2K3 w Q - 0 1", false, false},
		{"both", "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			side := pos.Side(White)
			if side.CanCastleKingSide != tc.kingSide || side.CanCastleQueenSide != tc.queenSide {
				t.Errorf("castle = %t/%t, want %t/%t", side.CanCastleKingSide, side.CanCastleQueenSide, tc.kingSide, tc.queenSide)
			}
			if got, want := countKinds(side.LegalMoves)[Castle], btoi(tc.kingSide)+btoi(tc.queenSide); got != want {
				t.Errorf("%d castle moves listed, want %d", got, want)
			}
		})
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestCastleApply(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	mustPlay(t, pos, "e1g1")

	king, ok := pos.PieceAt(G1)
	if !ok || king.Type != King || !king.HasMoved {
		t.Errorf("g1 = %+v, want a moved king", king)
	}
	rook, ok := pos.PieceAt(F1)
	if !ok || rook.Type != Rook || !rook.HasMoved {
		t.Errorf("f1 = %+v, want a moved rook", rook)
	}
	if _, ok := pos.PieceAt(H1); ok {
		t.Error("h1 still occupied")
	}
	if pos.CastlingRights().CanCastle(White, true) {
		t.Error("white king side right not revoked")
	}
}

func TestPromotion(t *testing.T) {
	pos := mustParse(t, "k7/4P3/8/8/8/8/8/K7 w - - 0 1")

	moves := pos.MovesFrom(E7)
	if len(moves) != 4 {
		t.Fatalf("e7 pawn has %d moves, want 4", len(moves))
	}
	for i, m := range moves {
		if m.Kind != Promotion || m.Promote != PromotionTypes[i] {
			t.Errorf("move %d = %v %v, want promotion to %v", i, m.Kind, m.Promote, PromotionTypes[i])
		}
	}

	if _, err := pos.FindMove(E7, E8, NoPieceType); !errors.Is(err, ErrAmbiguousPromotion) {
		t.Fatalf("FindMove without piece: err = %v, want ErrAmbiguousPromotion", err)
	}

	pawn := pos.squares[E7]
	m, err := pos.FindMove(E7, E8, Knight)
	if err != nil {
		t.Fatalf("FindMove(e7e8n): %v", err)
	}
	if err := pos.Apply(m); err != nil {
		t.Fatalf("Apply(e7e8n): %v", err)
	}
	pc, ok := pos.PieceAt(E8)
	if !ok || pc.Type != Knight || pc.Color != White || !pc.HasMoved {
		t.Errorf("e8 = %+v, want a white knight", pc)
	}
	for _, id := range pos.Pieces() {
		if id == pawn {
			t.Error("promoted pawn still in the piece list")
		}
	}
	if err := pos.Validate(); err != nil {
		t.Error(err)
	}
}

func TestPinnedPieceHasNoMoves(t *testing.T) {
	pos := mustParse(t, "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")

	if got := len(pos.PseudoLegalMoves(E2)); got == 0 {
		t.Fatal("bishop should have pseudo-legal moves")
	}
	if got := pos.MovesFrom(E2); len(got) != 0 {
		t.Errorf("pinned bishop has legal moves %v", got.Strings())
	}
	if pos.InCheck() {
		t.Error("white should not be in check")
	}
}

func TestNoKingCaptures(t *testing.T) {
	// Black to move with the white king en prise would be an illegal
	// position, so check the generator filter on White's own options.
	pos := mustParse(t, "4k3/8/8/8/8/8/3q4/4K3 w - - 0 1")
	for _, c := range []Color{White, Black} {
		for _, m := range pos.LegalMoves(c) {
			if m.Captured != NoPieceID && pos.arena[m.Captured].Type == King {
				t.Errorf("%v may capture a king with %v", c, m)
			}
		}
	}
	if !pos.InCheck() {
		t.Error("white should be in check from d2")
	}
}
