package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NikoM94/JSChess/internal/board"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestEvaluateSymmetric(t *testing.T) {
	pos := board.NewPosition()
	if w, b := Evaluate(pos, board.White), Evaluate(pos, board.Black); w != 0 || b != 0 {
		t.Errorf("start position = %d / %d, want 0", w, b)
	}

	// White is a queen up.
	pos = mustParse(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	w, b := Evaluate(pos, board.White), Evaluate(pos, board.Black)
	if w <= 800 || w != -b {
		t.Errorf("queen up: white %d black %d", w, b)
	}
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(1)
	eng.SetDifficulty(Easy)

	res, err := eng.BestMove(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}
	if !pos.LegalMoves(board.White).Contains(res.Move) {
		t.Errorf("best move %v is not legal", res.Move)
	}
	if pos.FEN() != board.StartFEN {
		t.Error("search modified the position")
	}
}

func TestSearchFindsMate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"scholar", "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5Q2/PPPP1PPP/RNB1K1NR w KQkq - 4 4", "f3f7"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			eng := NewEngine(1)
			res, err := eng.Search(context.Background(), pos, SearchLimits{Depth: 2})
			if err != nil {
				t.Fatal(err)
			}
			if res.Move.String() != tc.want {
				t.Errorf("best move = %v, want %s", res.Move, tc.want)
			}
			if res.Score < MateScore-MaxPly {
				t.Errorf("score = %d, want a mate score", res.Score)
			}
			if got := ScoreToString(res.Score); got != "Mate in 1" {
				t.Errorf("ScoreToString = %q", got)
			}
		})
	}
}

func TestSearchWinsMaterial(t *testing.T) {
	// The black queen on d5 is hanging to the knight.
	pos := mustParse(t, "4k3/8/8/3q4/8/4N3/8/4K3 w - - 0 1")
	res, err := NewEngine(1).Search(context.Background(), pos, SearchLimits{Depth: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Move.String() != "e3d5" {
		t.Errorf("best move = %v, want e3d5", res.Move)
	}
}

func TestSearchNoMoves(t *testing.T) {
	pos := mustParse(t, "k7/1Q6/1K6/8/8/8/8/8 b - - 0 1")
	if _, err := NewEngine(1).Search(context.Background(), pos, SearchLimits{Depth: 1}); !errors.Is(err, ErrNoMoves) {
		t.Errorf("error = %v, want ErrNoMoves", err)
	}
}

func TestSearchCancelled(t *testing.T) {
	pos := board.NewPosition()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewEngine(1).Search(ctx, pos, SearchLimits{})
	if err != nil {
		t.Fatal(err)
	}
	if !pos.LegalMoves(board.White).Contains(res.Move) {
		t.Errorf("fallback move %v is not legal", res.Move)
	}
}

func TestSearchReportsInfo(t *testing.T) {
	eng := NewEngine(1)
	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		if len(info.PV) == 0 {
			t.Errorf("depth %d: empty PV", info.Depth)
		}
	}
	res, err := eng.Search(context.Background(), board.NewPosition(), SearchLimits{Depth: 2, MoveTime: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	if len(depths) != 2 || depths[1] != 2 || res.Depth != 2 {
		t.Errorf("iterations %v, result depth %d", depths, res.Depth)
	}
}

func TestPerftDivide(t *testing.T) {
	pos := board.NewPosition()
	if n := Perft(pos, 2); n != 400 {
		t.Errorf("Perft(2) = %d, want 400", n)
	}

	div, err := PerftDivide(context.Background(), pos, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(div) != 20 {
		t.Fatalf("%d root moves, want 20", len(div))
	}
	var total uint64
	for i, d := range div {
		if i > 0 && div[i-1].Move >= d.Move {
			t.Errorf("divide not sorted at %s", d.Move)
		}
		if d.Nodes != 20 {
			t.Errorf("%s: %d nodes, want 20", d.Move, d.Nodes)
		}
		total += d.Nodes
	}
	if total != 400 {
		t.Errorf("divide total = %d", total)
	}
}

func TestPerftDivideParallel(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	seq, err := PerftDivide(context.Background(), pos, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	par, err := PerftDivide(context.Background(), pos, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 48 || len(par) != len(seq) {
		t.Fatalf("root moves: sequential %d, parallel %d, want 48", len(seq), len(par))
	}
	var total uint64
	for i := range seq {
		if seq[i] != par[i] {
			t.Errorf("entry %d: sequential %+v, parallel %+v", i, seq[i], par[i])
		}
		total += par[i].Nodes
	}
	if total != 2039 {
		t.Errorf("divide total = %d, want 2039", total)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PerftDivide(ctx, pos, 3, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled divide error = %v, want context.Canceled", err)
	}
}

func TestClockBudget(t *testing.T) {
	c := Clock{Time: [2]time.Duration{time.Minute, 0}}
	if b := c.Budget(board.Black, 20); b != 0 {
		t.Errorf("no clock: budget %v", b)
	}
	b := c.Budget(board.White, 20)
	if b <= 0 || b > time.Minute*8/10 {
		t.Errorf("budget %v out of range", b)
	}

	c.MovesToGo = 1
	if b := c.Budget(board.White, 20); b != time.Minute*8/10 {
		t.Errorf("one move to go: budget %v", b)
	}
}

func TestTranspositionTable(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()
	m := pos.LegalMoves(board.White)[0]

	if _, ok := tt.Probe(pos.Key()); ok {
		t.Fatal("hit on empty table")
	}
	tt.Store(pos.Key(), 3, 42, TTExact, m, true)
	e, ok := tt.Probe(pos.Key())
	if !ok || e.Score != 42 || e.BestMove != m || e.Flag != TTExact {
		t.Errorf("probe = %+v, %t", e, ok)
	}

	// A shallower result from the same search does not replace a deeper one.
	tt.Store(pos.Key(), 1, 7, TTUpperBound, m, true)
	if e, _ := tt.Probe(pos.Key()); e.Score != 42 {
		t.Errorf("shallow store replaced entry: %+v", e)
	}

	tt.Clear()
	if _, ok := tt.Probe(pos.Key()); ok {
		t.Error("hit after Clear")
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{135, "1.35"},
		{-7, "-0.07"},
		{MateScore - 3, "Mate in 2"},
		{-MateScore + 2, "Mated in 1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
