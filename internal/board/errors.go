package board

import "errors"

var (
	// ErrIllegalMove is returned when a move is not in the active side's legal set.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidNotation is returned for malformed or inconsistent position notation.
	ErrInvalidNotation = errors.New("invalid notation")

	// ErrAmbiguousPromotion is returned when a pawn reaches the last rank and
	// no promotion piece was chosen.
	ErrAmbiguousPromotion = errors.New("promotion piece required")

	// ErrOutOfBounds is returned when a square name does not lie on the board.
	ErrOutOfBounds = errors.New("square out of bounds")
)
