package engine

import (
	"sync"
	"sync/atomic"

	"github.com/NikoM94/JSChess/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

const ttShardCount = 64
const ttShardMask = ttShardCount - 1

// TTEntry is one slot of the transposition table.
type TTEntry struct {
	Key      uint64
	BestMove board.Move
	HasMove  bool
	Score    int32
	Depth    int8
	Flag     TTFlag
	Age      uint8
}

// TranspositionTable caches search results by position key. Slots are
// guarded by sharded locks so several searches may share one table.
type TranspositionTable struct {
	entries []TTEntry
	shards  [ttShardCount]sync.RWMutex
	size    uint64
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// entrySize is an estimate used only to turn megabytes into a slot count.
const entrySize = 64

// NewTranspositionTable creates a transposition table of roughly sizeMB
// megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	return &TranspositionTable{
		entries: make([]TTEntry, n),
		size:    n,
		mask:    n - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up a position. The full key is compared, so a hit is never a
// different position that shares a slot.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	tt.probes.Add(1)

	idx := key & tt.mask
	shard := &tt.shards[idx&ttShardMask]
	shard.RLock()
	entry := tt.entries[idx]
	shard.RUnlock()

	if entry.Key == key && entry.Depth > 0 {
		tt.hits.Add(1)
		return entry, true
	}
	return TTEntry{}, false
}

// Store saves a search result. An entry from the current search is only
// replaced by one searched at least as deep.
func (tt *TranspositionTable) Store(key uint64, depth, score int, flag TTFlag, best board.Move, hasMove bool) {
	idx := key & tt.mask
	shard := &tt.shards[idx&ttShardMask]
	shard.Lock()
	defer shard.Unlock()

	entry := &tt.entries[idx]
	age := uint8(tt.age.Load())
	if entry.Age != age || depth >= int(entry.Depth) {
		*entry = TTEntry{
			Key:      key,
			BestMove: best,
			HasMove:  hasMove,
			Score:    int32(score),
			Depth:    int8(depth),
			Flag:     flag,
			Age:      age,
		}
	}
}

// NewSearch ages existing entries so they can be replaced.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.shards {
		tt.shards[i].Lock()
	}
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	for i := range tt.shards {
		tt.shards[i].Unlock()
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille of sampled slots used by the current search.
func (tt *TranspositionTable) HashFull() int {
	sample := 1000
	if uint64(sample) > tt.size {
		sample = int(tt.size)
	}
	age := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == age {
			used++
		}
	}
	return used * 1000 / sample
}

// HitRate returns the percentage of probes that hit.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of slots.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// scoreFromTT converts a stored mate score back to distance from the root.
func scoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// scoreToTT stores mate scores as distance from the stored node.
func scoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
