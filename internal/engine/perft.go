package engine

import (
	"context"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/NikoM94/JSChess/internal/board"
)

// Perft counts the leaf nodes of the legal move tree of pos to depth.
func Perft(pos *board.Position, depth int) uint64 {
	n, _ := perft(context.Background(), pos, depth)
	return n
}

func perft(ctx context.Context, pos *board.Position, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	moves := pos.LegalMoves(pos.Turn())
	if depth == 1 {
		return uint64(len(moves)), nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var nodes uint64
	for _, m := range moves {
		n, err := perft(ctx, child(pos, m), depth-1)
		if err != nil {
			return 0, err
		}
		nodes += n
	}
	return nodes, nil
}

// DivideEntry is the subtree size under one root move.
type DivideEntry struct {
	Move  string
	Nodes uint64
}

// PerftDivide returns the perft count below each legal root move, ordered by
// the move's coordinate form. Root moves are counted on up to workers
// goroutines. A done ctx aborts the count and is returned as the error.
func PerftDivide(ctx context.Context, pos *board.Position, depth, workers int) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	moves := pos.LegalMoves(pos.Turn())
	subtree := make([]uint64, len(moves))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range moves {
		next := child(pos, m)
		g.Go(func() error {
			n, err := perft(ctx, next, depth-1)
			subtree[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(map[string]uint64, len(moves))
	for i, m := range moves {
		counts[m.String()] = subtree[i]
	}
	keys := maps.Keys(counts)
	slices.Sort(keys)
	out := make([]DivideEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, DivideEntry{Move: k, Nodes: counts[k]})
	}
	return out, nil
}
