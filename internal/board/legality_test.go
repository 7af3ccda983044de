package board

import "testing"

func TestAttacksOnTile(t *testing.T) {
	// White: Kg1, Rd1, Nf3, pawn e4. Black: Ke8, Bb6.
	pos := mustParse(t, "4k3/8/1b6/8/4P3/5N2/8/3R2K1 w - - 0 1")

	tests := []struct {
		sq      Square
		exclude Color
		want    int
	}{
		{D5, Black, 2}, // pawn e4 and rook d1
		{D4, Black, 2}, // rook d1 and knight f3
		{E5, Black, 1}, // knight f3 only; pawns do not attack by pushing
		{F5, Black, 1}, // pawn e4
		{G1, White, 1}, // bishop b6 through c5 d4 e3 f2
		{F2, White, 1}, // bishop b6
		{D8, White, 2}, // king e8 and bishop b6
		{D8, Black, 1}, // rook d1 up the open file
		{H8, Black, 0}, // nothing
		{E4, White, 0}, // nothing black reaches e4
	}
	for _, tc := range tests {
		if got := AttacksOnTile(pos, tc.sq, tc.exclude); got != tc.want {
			t.Errorf("AttacksOnTile(%v, exclude %v) = %d, want %d", tc.sq, tc.exclude, got, tc.want)
		}
	}
}

func TestIsLegalDoesNotMutate(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)
		before := snapshot(pos)
		us := pos.Turn()

		var candidates MoveList
		for _, id := range pos.pieces {
			if pos.arena[id].Color == us {
				candidates = append(candidates, pos.pseudoLegal(id)...)
			}
		}
		for _, m := range candidates {
			IsLegal(pos, m, us)
			if after := snapshot(pos); after != before {
				t.Fatalf("%s: IsLegal(%v) changed the position:\n%s\n%s", fen, m, before, after)
			}
		}
	}
}

func TestIsLegal(t *testing.T) {
	pos := mustParse(t, "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	bishop := pos.squares[E2]

	for _, m := range pos.pseudoLegal(bishop) {
		if IsLegal(pos, m, White) {
			t.Errorf("pinned bishop move %v judged legal", m)
		}
	}

	king := pos.squares[E1]
	for _, m := range pos.pseudoLegal(king) {
		if !IsLegal(pos, m, White) {
			t.Errorf("king move %v judged illegal", m)
		}
	}
}

func TestKingCannotTakeDefendedPiece(t *testing.T) {
	// Black rook on e2 is defended by the bishop on b5.
	pos := mustParse(t, "4k3/8/8/1b6/8/8/4r3/4K3 w - - 0 1")
	for _, m := range pos.LegalMoves(White) {
		if m.To == E2 {
			t.Errorf("king may take defended rook: %v", m)
		}
	}
	if !pos.InCheck() {
		t.Error("white should be in check")
	}
}
