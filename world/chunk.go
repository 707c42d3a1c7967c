package world

import (
	"github.com/golang/snappy"
)

type ChunkPos struct {
	X int32
	Z int32
}

// Column is one 16x16 chunk column. Section data arrives as an opaque blob
// sized by the server; most columns are never inspected before the player
// moves on, so the blob is held snappy-compressed and only expanded on
// demand. Heightmaps stays as the decoded NBT tree the server sent.
type Column struct {
	Pos        ChunkPos
	Heightmaps map[string]any
	compressed []byte
	blocks     map[blockKey]int32
}

type blockKey struct {
	x int32
	y int16
	z int32
}

// SetChunk stores a column, replacing any previous column at the same
// position. Local block overrides from earlier updates are dropped.
func (w *World) SetChunk(pos ChunkPos, heightmaps map[string]any, sections []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunks[pos] = &Column{
		Pos:        pos,
		Heightmaps: heightmaps,
		compressed: snappy.Encode(nil, sections),
		blocks:     make(map[blockKey]int32),
	}
}

// Chunk returns the decompressed section data for a column, or false if the
// column is not resident.
func (w *World) Chunk(pos ChunkPos) ([]byte, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return nil, false
	}
	sections, err := snappy.Decode(nil, c.compressed)
	if err != nil {
		// Only reachable if the store itself corrupted the blob.
		return nil, false
	}
	return sections, true
}

func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// SetBlock records a block state override at an absolute world position.
// Updates for non-resident columns are dropped; the server re-sends full
// columns when they come back into range.
func (w *World) SetBlock(x int32, y int16, z int32, state int32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	pos := ChunkPos{X: x >> 4, Z: z >> 4}
	c, ok := w.chunks[pos]
	if !ok {
		return false
	}
	c.blocks[blockKey{x, y, z}] = state
	return true
}

// BlockOverride reports a block update applied after the column arrived.
func (w *World) BlockOverride(x int32, y int16, z int32) (int32, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[ChunkPos{X: x >> 4, Z: z >> 4}]
	if !ok {
		return 0, false
	}
	state, ok := c.blocks[blockKey{x, y, z}]
	return state, ok
}
