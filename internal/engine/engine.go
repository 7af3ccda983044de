package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/NikoM94/JSChess/internal/board"
)

// ErrNoMoves is returned when searching a position without legal moves.
var ErrNoMoves = errors.New("no legal moves")

// SearchInfo describes one completed iteration of a search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // permille
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Result is the outcome of a search.
type Result struct {
	Move  board.Move
	Score int // centipawns from the side to move
	Depth int
	Nodes uint64
	PV    []board.Move
}

// Difficulty represents the computer player's strength.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 1, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 3, MoveTime: 2 * time.Second},
	Hard:   {Depth: 5, MoveTime: 5 * time.Second},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Engine is the computer player.
type Engine struct {
	tt         *TranspositionTable
	difficulty Difficulty
	depth      int
	logger     *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc

	// OnInfo, when set, is called after every completed iteration.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with a transposition table of ttSizeMB
// megabytes.
func NewEngine(ttSizeMB int) *Engine {
	return &Engine{
		tt:         NewTranspositionTable(ttSizeMB),
		difficulty: Medium,
		logger:     log.New(io.Discard, "", 0),
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// SetDepth overrides the search depth of the difficulty presets. Zero
// restores the preset depth.
func (e *Engine) SetDepth(depth int) {
	e.depth = depth
}

// Difficulty returns the engine difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// SetLogger logs one line per completed search.
func (e *Engine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// BestMove searches pos with the limits of the current difficulty.
func (e *Engine) BestMove(ctx context.Context, pos *board.Position) (Result, error) {
	limits := DifficultySettings[e.difficulty]
	if e.depth > 0 {
		limits.Depth = e.depth
	}
	return e.Search(ctx, pos, limits)
}

// Search finds the best move for the side to move by iterative deepening.
// It returns the deepest completed iteration when ctx is cancelled, the move
// time runs out, Stop is called or the node limit is reached. pos is not
// modified.
func (e *Engine) Search(ctx context.Context, pos *board.Position, limits SearchLimits) (Result, error) {
	moves := pos.LegalMoves(pos.Turn())
	if len(moves) == 0 {
		return Result{}, ErrNoMoves
	}

	if limits.MoveTime > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, limits.MoveTime)
		defer cancelTimeout()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.tt.NewSearch()
	s := &searcher{ctx: ctx, tt: e.tt, maxNodes: limits.Nodes}

	maxDepth := MaxPly
	if limits.Depth > 0 && limits.Depth < MaxPly {
		maxDepth = limits.Depth
	}

	start := time.Now()
	res := Result{Move: moves[0], Depth: 0}
	for depth := 1; depth <= maxDepth; depth++ {
		move, score, ok := s.root(pos, depth, res.Move, res.Depth > 0)
		if !ok || s.stopped {
			break
		}
		res = Result{Move: move, Score: score, Depth: depth, Nodes: s.nodes}
		res.PV = s.principalVariation(pos, move, depth)

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    s.nodes,
				Time:     time.Since(start),
				PV:       res.PV,
				HashFull: e.tt.HashFull(),
			})
		}

		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
	}
	res.Nodes = s.nodes

	e.logger.Printf("search %s depth=%d score=%s nodes=%d time=%s",
		res.Move, res.Depth, ScoreToString(res.Score), res.Nodes, time.Since(start).Round(time.Millisecond))
	return res, nil
}

// Stop cancels the running search, if any.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Clear empties the transposition table.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// ScoreToString renders a score as pawns ("0.35") or a mate distance
// ("Mate in 2", "Mated in 1").
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("Mate in %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Mated in %d", (MateScore+score+1)/2)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

// SetHashSize replaces the transposition table with one of sizeMB megabytes.
func (e *Engine) SetHashSize(sizeMB int) {
	e.tt = NewTranspositionTable(sizeMB)
}
