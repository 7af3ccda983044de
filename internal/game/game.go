// Package game wraps a board position into a playable session: it resolves
// square-based commands into legal moves, answers queries for a front end
// and keeps the move and notation history.
package game

import (
	"errors"
	"fmt"
	"io"
	"log"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"github.com/NikoM94/JSChess/internal/board"
)

// ErrNotYourPiece is returned when selecting a square that holds no piece of
// the side to move.
var ErrNotYourPiece = errors.New("no piece of the side to move on that square")

// ErrGameOver is returned for move attempts after the game has ended.
var ErrGameOver = errors.New("game is over")

// Game is one chess game from a starting notation to the current position.
type Game struct {
	ID   string
	Name string

	position *board.Position
	start    string
	moves    []board.Move
	uci      []string
	san      []string
	keys     []uint64
	history  *History
	selected board.Square

	workers int
	logger  *log.Logger
}

// Option configures a Game.
type Option func(*Game)

// WithLogger logs a summary line after every ply.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithWorkers sets the number of goroutines used for legality checks.
func WithWorkers(n int) Option {
	return func(g *Game) { g.workers = n }
}

// WithID overrides the generated game ID.
func WithID(id string) Option {
	return func(g *Game) {
		if id != "" {
			g.ID = id
		}
	}
}

// WithName overrides the generated game name.
func WithName(name string) Option {
	return func(g *Game) {
		if name != "" {
			g.Name = name
		}
	}
}

// New starts a game from the standard starting position.
func New(opts ...Option) *Game {
	g, err := FromFEN(board.StartFEN, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// FromFEN starts a game from the given notation.
func FromFEN(fen string, opts ...Option) (*Game, error) {
	g := &Game{
		ID:       uuid.New().String(),
		Name:     petname.Generate(2, "-"),
		selected: board.NoSquare,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(g)
	}

	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	pos.SetWorkers(g.workers)
	g.position = pos
	g.start = pos.FEN()
	g.keys = []uint64{pos.Key()}
	g.history = newHistory(g.start)
	g.logger.Printf("game %s (%s) from %s", g.Name, g.ID, g.start)
	return g, nil
}

// Replay rebuilds a game by playing coordinate moves from a start notation.
func Replay(start string, moves []string, opts ...Option) (*Game, error) {
	g, err := FromFEN(start, opts...)
	if err != nil {
		return nil, err
	}
	for i, s := range moves {
		if _, err := g.AttemptUCI(s); err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", i+1, s, err)
		}
	}
	return g, nil
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	return g.position.Clone()
}

// StartFEN returns the notation the game started from.
func (g *Game) StartFEN() string {
	return g.start
}

// FEN returns the notation of the current position.
func (g *Game) FEN() string {
	return g.position.FEN()
}

// Turn returns the color to move.
func (g *Game) Turn() board.Color {
	return g.position.Turn()
}

// Occupant returns the piece on sq.
func (g *Game) Occupant(sq board.Square) (board.Piece, bool) {
	return g.position.PieceAt(sq)
}

// Destinations returns the squares the piece on sq may legally move to.
func (g *Game) Destinations(sq board.Square) []board.Square {
	return g.position.MovesFrom(sq).Destinations()
}

// LegalMoves returns the legal moves of the side to move.
func (g *Game) LegalMoves() board.MoveList {
	return g.position.LegalMoves(g.position.Turn())
}

// Captured returns the captured pieces, oldest first.
func (g *Game) Captured() []board.Piece {
	return g.position.Captured()
}

// MovesUCI returns the moves played, in coordinate form.
func (g *Game) MovesUCI() []string {
	return append([]string(nil), g.uci...)
}

// MovesSAN returns the moves played, in SAN.
func (g *Game) MovesSAN() []string {
	return append([]string(nil), g.san...)
}

// LastMove returns the most recent move.
func (g *Game) LastMove() (board.Move, bool) {
	if len(g.moves) == 0 {
		return board.Move{}, false
	}
	return g.moves[len(g.moves)-1], true
}

// History returns the notation history of the game.
func (g *Game) History() *History {
	return g.history
}

// Select marks sq as the source square of the next move and returns its
// destinations. The square must hold a piece of the side to move.
func (g *Game) Select(sq board.Square) ([]board.Square, error) {
	pc, ok := g.position.PieceAt(sq)
	if !ok || pc.Color != g.position.Turn() {
		g.selected = board.NoSquare
		return nil, fmt.Errorf("%w: %s", ErrNotYourPiece, sq)
	}
	g.selected = sq
	return g.Destinations(sq), nil
}

// Selected returns the selected source square, or NoSquare.
func (g *Game) Selected() board.Square {
	return g.selected
}

// Attempt plays the move from from to to. promo names the promotion piece
// and must be NoPieceType unless a pawn reaches its last rank.
func (g *Game) Attempt(from, to board.Square, promo board.PieceType) (board.Move, error) {
	if g.Status().Over {
		return board.Move{}, ErrGameOver
	}
	m, err := g.position.FindMove(from, to, promo)
	if err != nil {
		return board.Move{}, err
	}
	return m, g.Play(m)
}

// AttemptSelected plays from the selected square to to.
func (g *Game) AttemptSelected(to board.Square, promo board.PieceType) (board.Move, error) {
	if g.selected == board.NoSquare {
		return board.Move{}, fmt.Errorf("%w: no square selected", board.ErrIllegalMove)
	}
	return g.Attempt(g.selected, to, promo)
}

// AttemptUCI plays a move given in coordinate form ("e2e4", "e7e8q").
func (g *Game) AttemptUCI(s string) (board.Move, error) {
	if g.Status().Over {
		return board.Move{}, ErrGameOver
	}
	m, err := board.ParseMove(s, g.position)
	if err != nil {
		return board.Move{}, err
	}
	return m, g.Play(m)
}

// AttemptSAN plays a move given in SAN ("Nf3", "exd5", "O-O").
func (g *Game) AttemptSAN(s string) (board.Move, error) {
	if g.Status().Over {
		return board.Move{}, ErrGameOver
	}
	m, err := board.ParseSAN(s, g.position)
	if err != nil {
		return board.Move{}, err
	}
	return m, g.Play(m)
}

// Play applies a legal move and records it.
func (g *Game) Play(m board.Move) error {
	san := m.SAN(g.position)
	if err := g.position.Apply(m); err != nil {
		return err
	}

	g.moves = append(g.moves, m)
	g.uci = append(g.uci, m.String())
	g.san = append(g.san, san)
	g.keys = append(g.keys, g.position.Key())
	g.history.push(g.position.FEN())
	g.selected = board.NoSquare

	g.logInfo(m, san)
	return nil
}

// logInfo writes the per-ply summary: ply, move, side to move, reply count,
// check flag and captured pieces.
func (g *Game) logInfo(m board.Move, san string) {
	st := g.Status()
	captured := ""
	for _, pc := range g.position.Captured() {
		captured += pc.String()
	}
	if captured == "" {
		captured = "-"
	}
	g.logger.Printf("ply %d %s (%s) turn=%s moves=%d check=%t captured=%s",
		len(g.moves), san, m, st.Turn, len(g.LegalMoves()), st.InCheck, captured)
	if st.Over {
		g.logger.Printf("game over: %s", st.Result)
	}
}
