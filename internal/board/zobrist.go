package board

// Zobrist keys for position hashing. Fixed seed so keys are stable across
// runs and can be stored.
var (
	zobristPiece      [2][6][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	rng := prng{state: 0x98F107A2BEEF1234}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// xorshift64*
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// Key returns a hash of everything that decides the legal moves: placement,
// side to move, castling rights and the en passant file. Positions that
// repeat share a key.
func (p *Position) Key() uint64 {
	var key uint64
	for _, id := range p.pieces {
		pc := &p.arena[id]
		key ^= zobristPiece[pc.Color][pc.Type][pc.Square]
	}
	if p.turn == Black {
		key ^= zobristSideToMove
	}
	key ^= zobristCastling[p.castling]
	if p.enPassant != NoPieceID {
		key ^= zobristEnPassant[p.arena[p.enPassant].Square.File()]
	}
	return key
}
