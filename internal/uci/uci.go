// Package uci speaks the Universal Chess Interface protocol over a pair of
// streams, driving the search engine on a board position.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NikoM94/JSChess/internal/board"
	"github.com/NikoM94/JSChess/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	workers  int

	out    io.Writer
	outMu  sync.Mutex
	logger *log.Logger

	// Search state
	searchDone chan struct{}
	cancel     context.CancelFunc
}

// Option configures a UCI handler.
type Option func(*UCI)

// WithLogger logs received commands and errors.
func WithLogger(l *log.Logger) Option {
	return func(u *UCI) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithWorkers sets the number of goroutines used for legality checks.
func WithWorkers(n int) Option {
	return func(u *UCI) { u.workers = n }
}

// New creates a UCI protocol handler that writes responses to out.
func New(eng *engine.Engine, out io.Writer, opts ...Option) *UCI {
	u := &UCI{
		engine: eng,
		out:    out,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.position = u.newPosition()
	return u
}

func (u *UCI) newPosition() *board.Position {
	pos := board.NewPosition()
	pos.SetWorkers(u.workers)
	return pos
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// Run reads commands from r until "quit" or end of input. A search still
// running at end of input is allowed to finish.
func (u *UCI) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		u.logger.Printf("<< %s", line)

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.printf("%s\nFen: %s\n", u.position, u.position.FEN())
		case "moves":
			u.handleMoves()
		case "perft":
			u.handlePerft(args)
		case "divide":
			u.handleDivide(args)
		default:
			u.printf("info string unknown command %s\n", cmd)
		}
	}

	u.wait()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name ChessPlay\n")
	u.printf("id author ChessPlay Team\n")
	u.printf("\n")
	u.printf("option name Hash type spin default 16 min 1 max 1024\n")
	u.printf("option name Workers type spin default 1 min 1 max 64\n")
	u.printf("option name Difficulty type combo default medium var easy var medium var hard\n")
	u.printf("uciok\n")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = u.newPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = u.newPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.reportError(err)
			return
		}
		pos.SetWorkers(u.workers)
	default:
		u.printf("info string expected startpos or fen\n")
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := board.ParseMove(s, pos)
			if err == nil {
				err = pos.Apply(m)
			}
			if err != nil {
				u.reportError(err)
				return
			}
		}
	}
	u.position = pos
}

func (u *UCI) reportError(err error) {
	u.logger.Printf("error: %v", err)
	u.printf("info string %v\n", err)
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
	Clock    engine.Clock
	Perft    int
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	next := func(i *int) int {
		if *i+1 >= len(args) {
			return 0
		}
		*i++
		n, _ := strconv.Atoi(args[*i])
		return n
	}
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			opts.Depth = next(&i)
		case "nodes":
			opts.Nodes = uint64(next(&i))
		case "movetime":
			opts.MoveTime = ms(next(&i))
		case "infinite":
			opts.Infinite = true
		case "wtime":
			opts.Clock.Time[board.White] = ms(next(&i))
		case "btime":
			opts.Clock.Time[board.Black] = ms(next(&i))
		case "winc":
			opts.Clock.Inc[board.White] = ms(next(&i))
		case "binc":
			opts.Clock.Inc[board.Black] = ms(next(&i))
		case "movestogo":
			opts.Clock.MovesToGo = next(&i)
		case "perft":
			opts.Perft = next(&i)
		}
	}
	return opts
}

// limits converts GoOptions to engine.SearchLimits for pos.
func limits(opts GoOptions, pos *board.Position) engine.SearchLimits {
	l := engine.SearchLimits{Depth: opts.Depth, Nodes: opts.Nodes}
	if opts.Infinite {
		return l
	}
	if opts.MoveTime > 0 {
		l.MoveTime = opts.MoveTime
	} else {
		ply := (pos.FullMoveNumber()-1)*2 + int(pos.Turn())
		l.MoveTime = opts.Clock.Budget(pos.Turn(), ply)
	}
	return l
}

// handleGo starts a search in the background. Its result is written as a
// "bestmove" line when it finishes or is stopped.
func (u *UCI) handleGo(args []string) {
	opts := parseGoOptions(args)
	if opts.Perft > 0 {
		u.handlePerft([]string{strconv.Itoa(opts.Perft)})
		return
	}

	u.handleStop()
	pos := u.position.Clone()
	lim := limits(opts, pos)
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	u.searchDone, u.cancel = done, cancel
	go func() {
		defer close(done)
		defer cancel()
		res, err := u.engine.Search(ctx, pos, lim)
		if err != nil {
			u.printf("bestmove 0000\n")
			return
		}
		if len(res.PV) > 1 {
			u.printf("bestmove %s ponder %s\n", res.Move, res.PV[1])
			return
		}
		u.printf("bestmove %s\n", res.Move)
	}()
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	switch {
	case info.Score > engine.MateScore-engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.MateScore-info.Score+1)/2))
	case info.Score < -engine.MateScore+engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", -(engine.MateScore+info.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searchDone == nil {
		return
	}
	u.cancel()
	u.wait()
}

// wait blocks until the current search, if any, has finished.
func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}
	val := strings.Join(value, " ")

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil || mb < 1 {
			u.printf("info string invalid hash size %q\n", val)
			return
		}
		u.handleStop()
		u.engine.SetHashSize(mb)
	case "workers", "threads":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			u.printf("info string invalid worker count %q\n", val)
			return
		}
		u.workers = n
		u.position.SetWorkers(n)
	case "difficulty":
		d, err := engine.ParseDifficulty(val)
		if err != nil {
			u.reportError(err)
			return
		}
		u.engine.SetDifficulty(d)
	default:
		u.printf("info string unknown option %q\n", strings.Join(name, " "))
	}
}

// handleMoves lists the legal moves of the side to move in SAN.
func (u *UCI) handleMoves() {
	moves := u.position.LegalMoves(u.position.Turn())
	san := make([]string, len(moves))
	for i, m := range moves {
		san[i] = m.SAN(u.position)
	}
	u.printf("%s\n", strings.Join(san, " "))
}

func parseDepth(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	d, err := strconv.Atoi(args[0])
	if err != nil || d < 1 {
		return def
	}
	return d
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := parseDepth(args, 3)

	start := time.Now()
	nodes := engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// handleDivide prints the perft count below each root move.
func (u *UCI) handleDivide(args []string) {
	depth := parseDepth(args, 2)

	div, err := engine.PerftDivide(context.Background(), u.position, depth, u.workers)
	if err != nil {
		u.printf("info string divide: %v\n", err)
		return
	}
	var total uint64
	for _, d := range div {
		u.printf("%s: %d\n", d.Move, d.Nodes)
		total += d.Nodes
	}
	u.printf("\nNodes searched: %d\n", total)
}
