// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package builder

import (
	"math/rand"
	"sync"
	"time"

	"github.com/AleutianAI/relief/services/elevation/tiles"
)

// tileQueue is the shared work queue the workers drain. A single mutex
// serializes pops and, via trimUnder, the workers' reader-cache trims,
// so a trim never overlaps another worker's pop.
type tileQueue struct {
	mu  sync.Mutex
	ids []tiles.ID
}

func newTileQueue(ids []tiles.ID) *tileQueue {
	return &tileQueue{ids: ids}
}

// pop removes and returns the front tile id. The second return is false
// once the queue is drained.
func (q *tileQueue) pop() (tiles.ID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ids) == 0 {
		return 0, false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

// trimUnder runs fn while holding the queue mutex.
func (q *tileQueue) trimUnder(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fn()
}

// Shuffle randomizes tile order in place to balance load across
// workers. A zero seed draws one from the clock; a fixed seed gives a
// deterministic order for tests.
func Shuffle(ids []tiles.ID, seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
