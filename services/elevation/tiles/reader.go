// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tiles

import (
	"container/list"
)

// DefaultReaderBudget is the per-reader decoded-tile memory budget.
const DefaultReaderBudget = 64 << 20 // 64 MiB

// Reader reads tiles through a memory-governed cache of decoded tiles.
//
// Each worker owns one Reader; the budget is per reader, so total
// memory across N workers is bounded by N budgets, not one.
//
// Thread Safety: NOT safe for concurrent use. A Reader belongs to a
// single worker; only the trim call is externally serialized (by the
// work queue's mutex) to bound pause overlap between workers.
type Reader struct {
	store  *Store
	budget int64

	used    int64
	entries map[ID]*readerEntry
	lru     *list.List
}

type readerEntry struct {
	tile       *Tile
	bytes      int64
	lruElement *list.Element
}

// NewReader creates a Reader over store with the given byte budget.
// A non-positive budget falls back to DefaultReaderBudget.
func NewReader(store *Store, budget int64) *Reader {
	if budget <= 0 {
		budget = DefaultReaderBudget
	}
	return &Reader{
		store:   store,
		budget:  budget,
		entries: make(map[ID]*readerEntry),
		lru:     list.New(),
	}
}

// Tile returns the decoded tile for id, reading through the cache.
func (r *Reader) Tile(id ID) (*Tile, error) {
	if entry, ok := r.entries[id]; ok {
		r.lru.MoveToFront(entry.lruElement)
		return entry.tile, nil
	}

	tile, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}

	entry := &readerEntry{tile: tile, bytes: tile.estimatedBytes()}
	entry.lruElement = r.lru.PushFront(id)
	r.entries[id] = entry
	r.used += entry.bytes
	return tile, nil
}

// OpenForMutation loads a tile for editing through the reading cache,
// so repeated opens of a cached tile skip the store.
func (r *Reader) OpenForMutation(id ID) (*Handle, error) {
	tile, err := r.Tile(id)
	if err != nil {
		return nil, err
	}
	return &Handle{store: r.store, tile: tile}, nil
}

// OverBudget reports whether cached tiles exceed the byte budget.
// Cheap; called after every tile update.
func (r *Reader) OverBudget() bool {
	return r.used > r.budget
}

// Trim evicts least-recently-used tiles until the cache is back under
// budget or empty.
func (r *Reader) Trim() {
	for r.used > r.budget && r.lru.Len() > 0 {
		oldest := r.lru.Back()
		id := oldest.Value.(ID)
		entry := r.entries[id]
		r.lru.Remove(oldest)
		delete(r.entries, id)
		r.used -= entry.bytes
	}
}

// CachedBytes returns the current estimated cache size. For logging.
func (r *Reader) CachedBytes() int64 { return r.used }
