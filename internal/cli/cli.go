// Package cli runs a chess game in a terminal: it reads commands and moves
// line by line, draws the board and lets the engine answer for one side.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/NikoM94/JSChess/internal/board"
	"github.com/NikoM94/JSChess/internal/engine"
	"github.com/NikoM94/JSChess/internal/game"
	"github.com/NikoM94/JSChess/internal/storage"
)

// Config wires the optional parts of a session.
type Config struct {
	// Store saves the game after every ply when set.
	Store *storage.Storage
	// Engine plays Computer's moves when set.
	Engine   *engine.Engine
	Computer board.Color
	Workers  int
	Logger   *log.Logger
}

// Session is one interactive game.
type Session struct {
	game    *game.Game
	cfg     Config
	out     io.Writer
	logger  *log.Logger
	started time.Time
	flip    bool
	done    bool
}

// NewSession creates a session for g that writes to out.
func NewSession(g *game.Game, out io.Writer, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.Engine == nil {
		cfg.Computer = board.NoColor
	}
	return &Session{
		game:    g,
		cfg:     cfg,
		out:     out,
		logger:  logger,
		started: time.Now(),
		flip:    cfg.Computer == board.White,
	}
}

// Game returns the game being played.
func (s *Session) Game() *game.Game {
	return s.game
}

const help = `moves:    e2e4, e7e8q, Nf3, O-O
commands:
  board              draw the position
  select <square>    show where a piece can go
  moves              list legal moves
  status | fen | pgn show the game state
  back | next | latest
                     browse earlier positions
  hint               ask the engine for a move
  flip               turn the board around
  save | list | load <id> | delete <id>
  quit`

// Run reads lines from r until "quit", end of input or ctx is done. A done
// context is returned as ctx.Err().
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.showBoard(nil)
	if err := s.computerTurn(ctx); err != nil {
		return err
	}
	s.prompt()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}
			if err := s.Exec(ctx, line); err != nil {
				return err
			}
			if s.done {
				return nil
			}
			s.prompt()
		}
	}
}

func (s *Session) prompt() {
	fmt.Fprintf(s.out, "%s> ", s.game.Turn())
}

// Exec runs one command or move. Only failures of the session itself and a
// done ctx are returned; bad input is reported to the player.
func (s *Session) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch strings.ToLower(cmd) {
	case "help", "?":
		fmt.Fprintln(s.out, help)
	case "quit", "exit":
		s.done = true
		return s.save()
	case "board":
		s.showBoard(nil)
	case "flip":
		s.flip = !s.flip
		s.showBoard(nil)
	case "select":
		s.selectSquare(args)
	case "moves":
		pos := s.game.Position()
		var san []string
		for _, m := range pos.LegalMoves(pos.Turn()) {
			san = append(san, m.SAN(pos))
		}
		fmt.Fprintln(s.out, strings.Join(san, " "))
	case "status":
		s.showStatus()
	case "fen":
		fmt.Fprintln(s.out, s.game.FEN())
	case "pgn":
		s.showMoves()
	case "back":
		fen, ok := s.game.History().Previous()
		s.showHistory(fen, ok)
	case "next":
		fen, ok := s.game.History().Next()
		s.showHistory(fen, ok)
	case "latest":
		s.game.History().Latest()
		s.showBoard(nil)
	case "hint":
		s.hint(ctx)
	case "save":
		if s.cfg.Store == nil {
			s.warn("no database configured")
			return nil
		}
		if err := s.save(); err != nil {
			return err
		}
		s.info("saved %s (%s)", s.game.Name, s.game.ID)
	case "list":
		return s.list()
	case "load":
		return s.load(args)
	case "delete":
		return s.delete(args)
	default:
		return s.move(ctx, cmd)
	}
	return nil
}

func (s *Session) info(format string, args ...any) {
	fmt.Fprintln(s.out, infoStyle.Sprintf(format, args...))
}

func (s *Session) warn(format string, args ...any) {
	fmt.Fprintln(s.out, errStyle.Sprintf(format, args...))
}

func (s *Session) showBoard(marks []board.Square) {
	Render(s.out, s.game.Position(), s.flip, marks)
	s.showStatus()
}

func (s *Session) showStatus() {
	st := s.game.Status()
	switch {
	case st.Over:
		fmt.Fprintln(s.out, overStyle.Sprint(st.String()))
	case st.InCheck:
		fmt.Fprintln(s.out, checkStyle.Sprint(st.String()))
	default:
		fmt.Fprintln(s.out, st.String())
	}
}

func (s *Session) showMoves() {
	san := s.game.MovesSAN()
	var sb strings.Builder
	ply := 0
	if start, err := board.ParseFEN(s.game.StartFEN()); err == nil {
		ply = (start.FullMoveNumber()-1)*2 + int(start.Turn())
	}
	for i, m := range san {
		n := ply + i
		switch {
		case n%2 == 0:
			fmt.Fprintf(&sb, "%d. %s ", n/2+1, m)
		case i == 0:
			fmt.Fprintf(&sb, "%d... %s ", n/2+1, m)
		default:
			fmt.Fprintf(&sb, "%s ", m)
		}
	}
	fmt.Fprintln(s.out, strings.TrimSpace(sb.String()))
}

func (s *Session) showHistory(fen string, moved bool) {
	if !moved {
		s.warn("no further positions")
		return
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		s.warn("%v", err)
		return
	}
	h := s.game.History()
	Render(s.out, pos, s.flip, nil)
	s.info("position %d of %d", h.Cursor(), h.Len()-1)
}

func (s *Session) selectSquare(args []string) {
	if len(args) != 1 {
		s.warn("usage: select <square>")
		return
	}
	sq, err := board.ParseSquare(args[0])
	if err != nil {
		s.warn("%v", err)
		return
	}
	dests, err := s.game.Select(sq)
	if err != nil {
		s.warn("%v", err)
		return
	}
	Render(s.out, s.game.Position(), s.flip, dests)
	names := make([]string, len(dests))
	for i, d := range dests {
		names[i] = d.String()
	}
	sort.Strings(names)
	s.info("%s: %s", sq, strings.Join(names, " "))
}

// isCoordinate reports whether input has the shape of "e2e4" or "e7e8q".
func isCoordinate(input string) bool {
	if len(input) != 4 && len(input) != 5 {
		return false
	}
	_, err1 := board.ParseSquare(input[0:2])
	_, err2 := board.ParseSquare(input[2:4])
	return err1 == nil && err2 == nil
}

// move plays input as a coordinate move or, failing its shape, as SAN.
func (s *Session) move(ctx context.Context, input string) error {
	s.game.History().Latest()

	var err error
	if isCoordinate(input) {
		_, err = s.game.AttemptUCI(input)
	} else {
		_, err = s.game.AttemptSAN(input)
	}
	if err != nil {
		s.warn("%s: %v", input, err)
		return nil
	}
	if err := s.afterPly(); err != nil {
		return err
	}
	if err := s.computerTurn(ctx); err != nil {
		return err
	}
	s.showBoard(nil)
	return nil
}

// computerTurn lets the engine move while it is the computer's turn. An
// interrupted search plays nothing and returns ctx.Err().
func (s *Session) computerTurn(ctx context.Context) error {
	for s.cfg.Engine != nil && s.game.Turn() == s.cfg.Computer && !s.game.Status().Over {
		res, err := s.cfg.Engine.BestMove(ctx, s.game.Position())
		if err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.game.Play(res.Move); err != nil {
			return fmt.Errorf("engine move %s: %w", res.Move, err)
		}
		last := s.game.MovesSAN()
		s.info("computer plays %s (%s)", last[len(last)-1], engine.ScoreToString(res.Score))
		if err := s.afterPly(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) hint(ctx context.Context) {
	if s.game.Status().Over {
		s.warn("%v", game.ErrGameOver)
		return
	}
	eng := s.cfg.Engine
	if eng == nil {
		eng = engine.NewEngine(1)
		eng.SetDifficulty(engine.Easy)
	}
	pos := s.game.Position()
	res, err := eng.BestMove(ctx, pos)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.warn("%v", err)
		return
	}
	s.info("hint: %s (%s)", res.Move.SAN(pos), engine.ScoreToString(res.Score))
}

// afterPly saves the game and, once it is over, records the result.
func (s *Session) afterPly() error {
	if err := s.save(); err != nil {
		return err
	}
	st := s.game.Status()
	if !st.Over || s.cfg.Store == nil || s.cfg.Computer == board.NoColor {
		return nil
	}
	human := s.cfg.Computer.Other()
	result := storage.GameResult{
		Draw:     st.Draw,
		Won:      st.Checkmate && st.Turn != human,
		Duration: time.Since(s.started),
	}
	s.logger.Printf("game %s finished: %s", s.game.ID, st.Result)
	return s.cfg.Store.RecordResult(result)
}

// Record returns the storage form of the current game.
func (s *Session) Record() *storage.GameRecord {
	rec := &storage.GameRecord{
		ID:       s.game.ID,
		Name:     s.game.Name,
		StartFEN: s.game.StartFEN(),
		Moves:    s.game.MovesUCI(),
		FEN:      s.game.FEN(),
	}
	if st := s.game.Status(); st.Over {
		rec.Result = st.Result
	}
	return rec
}

func (s *Session) save() error {
	if s.cfg.Store == nil {
		return nil
	}
	if err := s.cfg.Store.SaveGame(s.Record()); err != nil {
		return fmt.Errorf("save game %s: %w", s.game.ID, err)
	}
	return nil
}

func (s *Session) list() error {
	if s.cfg.Store == nil {
		s.warn("no database configured")
		return nil
	}
	games, err := s.cfg.Store.ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		s.info("no saved games")
	}
	for _, g := range games {
		result := g.Result
		if result == "" {
			result = "in progress"
		}
		fmt.Fprintf(s.out, "%.8s  %-20s %3d plies  %s  %s\n",
			g.ID, g.Name, len(g.Moves), g.Updated.Format("2006-01-02 15:04"), result)
	}
	return nil
}

// Resume rebuilds a game from a saved record.
func Resume(rec *storage.GameRecord, opts ...game.Option) (*game.Game, error) {
	opts = append(opts, game.WithID(rec.ID), game.WithName(rec.Name))
	return game.Replay(rec.StartFEN, rec.Moves, opts...)
}

func (s *Session) load(args []string) error {
	if s.cfg.Store == nil {
		s.warn("no database configured")
		return nil
	}
	if len(args) != 1 {
		s.warn("usage: load <id>")
		return nil
	}
	rec, err := s.cfg.Store.LoadGame(args[0])
	if err != nil {
		s.warn("%v", err)
		return nil
	}
	g, err := Resume(rec, game.WithLogger(s.logger), game.WithWorkers(s.cfg.Workers))
	if err != nil {
		s.warn("game %s is corrupt: %v", rec.ID, err)
		return nil
	}
	if err := s.save(); err != nil {
		return err
	}
	s.game = g
	s.started = time.Now()
	s.info("loaded %s (%s)", g.Name, g.ID)
	s.showBoard(nil)
	return nil
}

func (s *Session) delete(args []string) error {
	if s.cfg.Store == nil {
		s.warn("no database configured")
		return nil
	}
	if len(args) != 1 {
		s.warn("usage: delete <id>")
		return nil
	}
	if args[0] == s.game.ID {
		s.warn("cannot delete the game in progress")
		return nil
	}
	if err := s.cfg.Store.DeleteGame(args[0]); err != nil {
		s.warn("%v", err)
		return nil
	}
	s.info("deleted %s", args[0])
	return nil
}
