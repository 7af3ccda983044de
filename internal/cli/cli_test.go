package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/NikoM94/JSChess/internal/board"
	"github.com/NikoM94/JSChess/internal/engine"
	"github.com/NikoM94/JSChess/internal/game"
	"github.com/NikoM94/JSChess/internal/storage"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func play(t *testing.T, g *game.Game, cfg Config, input string) (*Session, string) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(g, &out, cfg)
	if err := s.Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s, out.String()
}

func openStore(t *testing.T) *storage.Storage {
	t.Helper()
	st, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestMovesAndQueries(t *testing.T) {
	_, out := play(t, game.New(), Config{}, strings.Join([]string{
		"e2e4", "e5", "Nf3", "e2e5", "Ke3", "fen", "pgn", "select b8", "quit",
	}, "\n"))

	for _, want := range []string{
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		"1. e4 e5 2. Nf3",
		"e2e5: illegal move",
		"Ke3: illegal move",
		"b8: a6 c6",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckmateStatus(t *testing.T) {
	s, out := play(t, game.New(), Config{}, "f3\ne5\ng4\nQh4\na3\n")
	if !strings.Contains(out, "Black wins by checkmate") {
		t.Errorf("no mate message:\n%s", out)
	}
	if !strings.Contains(out, "a3: game is over") {
		t.Errorf("move after mate accepted:\n%s", out)
	}
	if n := len(s.Game().MovesUCI()); n != 4 {
		t.Errorf("%d moves recorded, want 4", n)
	}
}

func TestHistoryBrowsing(t *testing.T) {
	_, out := play(t, game.New(), Config{}, "e4\ne5\nback\nback\nback\nlatest\n")
	if !strings.Contains(out, "position 1 of 2") || !strings.Contains(out, "position 0 of 2") {
		t.Errorf("history output:\n%s", out)
	}
	if !strings.Contains(out, "no further positions") {
		t.Errorf("browsed past the start:\n%s", out)
	}
}

func TestComputerReplies(t *testing.T) {
	store := openStore(t)
	eng := engine.NewEngine(1)
	eng.SetDifficulty(engine.Easy)

	s, out := play(t, game.New(), Config{Store: store, Engine: eng, Computer: board.Black}, "e2e4\nquit\n")
	if n := len(s.Game().MovesUCI()); n != 2 {
		t.Fatalf("%d moves played, want 2", n)
	}
	if !strings.Contains(out, "computer plays") {
		t.Errorf("no computer move reported:\n%s", out)
	}

	rec, err := store.LoadGame(s.Game().ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Moves) != 2 || rec.FEN != s.Game().FEN() {
		t.Errorf("saved record %+v", rec)
	}
}

func TestComputerOpensAsWhite(t *testing.T) {
	eng := engine.NewEngine(1)
	eng.SetDifficulty(engine.Easy)
	s, _ := play(t, game.New(), Config{Engine: eng, Computer: board.White}, "")
	if s.Game().Turn() != board.Black || len(s.Game().MovesUCI()) != 1 {
		t.Errorf("computer did not open: %v", s.Game().MovesUCI())
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := openStore(t)
	first, _ := play(t, game.New(), Config{Store: store}, "d4\nd5\nsave\n")

	second, out := play(t, game.New(), Config{Store: store}, "list\nload "+first.Game().ID[:8]+"\nc4\n")
	if !strings.Contains(out, first.Game().Name) || !strings.Contains(out, "2 plies") {
		t.Errorf("list output:\n%s", out)
	}
	if second.Game().ID != first.Game().ID {
		t.Fatalf("loaded game %s, want %s", second.Game().ID, first.Game().ID)
	}
	if got := strings.Join(second.Game().MovesUCI(), " "); got != "d2d4 d7d5 c2c4" {
		t.Errorf("moves after load = %q", got)
	}

	games, err := store.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 {
		t.Errorf("%d saved games, want 2", len(games))
	}
}

func TestAutosaveKeepsCreationTime(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	s := NewSession(game.New(), io.Discard, Config{Store: store})

	if err := s.Exec(ctx, "e2e4"); err != nil {
		t.Fatal(err)
	}
	rec, err := store.LoadGame(s.Game().ID)
	if err != nil {
		t.Fatal(err)
	}
	created := rec.Created

	time.Sleep(20 * time.Millisecond)
	if err := s.Exec(ctx, "e7e5"); err != nil {
		t.Fatal(err)
	}
	rec, err = store.LoadGame(s.Game().ID)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.Created.Equal(created) {
		t.Errorf("created moved from %v to %v", created, rec.Created)
	}
	if !rec.Updated.After(created) {
		t.Errorf("updated %v not after created %v", rec.Updated, created)
	}
	if len(rec.Moves) != 2 {
		t.Errorf("saved moves %v", rec.Moves)
	}
}

func TestInterruptedComputerTurn(t *testing.T) {
	eng := engine.NewEngine(1)
	eng.SetDifficulty(engine.Easy)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSession(game.New(), io.Discard, Config{Engine: eng, Computer: board.Black})
	if err := s.Exec(ctx, "e2e4"); !errors.Is(err, context.Canceled) {
		t.Errorf("Exec error = %v, want context.Canceled", err)
	}
	if got := strings.Join(s.Game().MovesUCI(), " "); got != "e2e4" {
		t.Errorf("moves = %q, want only e2e4", got)
	}
	if s.Game().Turn() != board.Black {
		t.Error("computer moved after the interrupt")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	eng := engine.NewEngine(1)
	eng.SetDifficulty(engine.Easy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSession(game.New(), io.Discard, Config{Engine: eng, Computer: board.White})
	if err := s.Run(ctx, strings.NewReader("e7e5\n")); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if n := len(s.Game().MovesUCI()); n != 0 {
		t.Errorf("%d moves played on a cancelled context", n)
	}

	// Cancelling while waiting for input ends the session.
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel = context.WithCancel(context.Background())
	s = NewSession(game.New(), io.Discard, Config{})
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, r) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWithoutStore(t *testing.T) {
	_, out := play(t, game.New(), Config{}, "save\nlist\nload x\n")
	if strings.Count(out, "no database configured") != 3 {
		t.Errorf("output:\n%s", out)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, board.NewPosition(), false, []board.Square{board.E3})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("%d lines, want 9", len(lines))
	}
	if lines[0] != "8  r  n  b  q  k  b  n  r " {
		t.Errorf("rank 8 = %q", lines[0])
	}
	if lines[5] != "3  .  .  .  .  *  .  .  . " {
		t.Errorf("rank 3 = %q", lines[5])
	}

	buf.Reset()
	Render(&buf, board.NewPosition(), true, nil)
	if !strings.HasPrefix(buf.String(), "1  R  N  B  K  Q  B  N  R ") {
		t.Errorf("flipped board:\n%s", buf.String())
	}
}
