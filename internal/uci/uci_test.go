package uci

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/NikoM94/JSChess/internal/board"
	"github.com/NikoM94/JSChess/internal/engine"
)

func run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	u := New(engine.NewEngine(1), &out, WithWorkers(2))
	if err := u.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci\nisready\nquit\n")
	for _, want := range []string{"id name ChessPlay", "option name Hash", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPositionAndGo(t *testing.T) {
	out := run(t, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo depth 2\n")
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("no mate score in:\n%s", out)
	}
	if !strings.Contains(out, "bestmove a1a8") {
		t.Errorf("bestmove missing:\n%s", out)
	}
}

func TestPositionMoves(t *testing.T) {
	out := run(t, "position startpos moves e2e4 e7e5 g1f3\nd\n")
	want := "Fen: rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestPositionErrors(t *testing.T) {
	out := run(t, "position startpos moves e2e5\nposition fen not-a-fen\nd\n")
	if strings.Count(out, "info string") != 2 {
		t.Errorf("want two error lines:\n%s", out)
	}
	// The failed commands leave the previous position in place.
	if !strings.Contains(out, "Fen: "+board.StartFEN) {
		t.Errorf("position changed:\n%s", out)
	}
}

func TestGoWithoutMoves(t *testing.T) {
	out := run(t, "position fen k7/1Q6/1K6/8/8/8/8/8 b - - 0 1\ngo depth 1\n")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("output:\n%s", out)
	}
}

func TestStop(t *testing.T) {
	r, w := newPipe()
	var out safeBuffer
	u := New(engine.NewEngine(1), &out)
	done := make(chan error, 1)
	go func() { done <- u.Run(r) }()

	w.write("position startpos\n")
	w.write("go infinite\n")
	time.Sleep(50 * time.Millisecond)
	w.write("stop\n")
	w.write("quit\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("search did not stop")
	}
	if !strings.Contains(out.String(), "bestmove ") {
		t.Errorf("no bestmove after stop:\n%s", out.String())
	}
}

func TestPerftAndDivide(t *testing.T) {
	out := run(t, "perft 2\ndivide 1\ngo perft 1\n")
	if !strings.Contains(out, "Nodes: 400") {
		t.Errorf("perft output:\n%s", out)
	}
	if !strings.Contains(out, "e2e4: 1") || !strings.Contains(out, "Nodes searched: 20") {
		t.Errorf("divide output:\n%s", out)
	}
	if !strings.Contains(out, "Nodes: 20") {
		t.Errorf("go perft output:\n%s", out)
	}
}

func TestMovesAndOptions(t *testing.T) {
	out := run(t, strings.Join([]string{
		"setoption name Hash value 2",
		"setoption name Workers value 4",
		"setoption name Difficulty value hard",
		"setoption name Bogus value 1",
		"position fen 4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		"moves",
	}, "\n"))
	if !strings.Contains(out, `unknown option "Bogus"`) {
		t.Errorf("bogus option accepted:\n%s", out)
	}
	if !strings.Contains(out, "O-O") || !strings.Contains(out, "Rh8+") {
		t.Errorf("moves output:\n%s", out)
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 movestogo 20 depth 4 nodes 5000"))
	if opts.Depth != 4 || opts.Nodes != 5000 || opts.Clock.MovesToGo != 20 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Clock.Time[board.White] != time.Minute || opts.Clock.Inc[board.Black] != 500*time.Millisecond {
		t.Errorf("clock = %+v", opts.Clock)
	}

	pos := board.NewPosition()
	l := limits(opts, pos)
	if l.MoveTime <= 0 || l.MoveTime > 48*time.Second {
		t.Errorf("move time %v", l.MoveTime)
	}
	if l := limits(parseGoOptions([]string{"infinite"}), pos); l.MoveTime != 0 || l.Depth != 0 {
		t.Errorf("infinite limits = %+v", l)
	}
	if l := limits(parseGoOptions([]string{"movetime", "250"}), pos); l.MoveTime != 250*time.Millisecond {
		t.Errorf("movetime limits = %+v", l)
	}
}
