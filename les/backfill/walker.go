// Copyright 2021 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package backfill

import (
	"runtime"
	"sync"

	"github.com/probeum/beamfill/common"
	"github.com/probeum/beamfill/statedb"
)

// workQueue is an ordered sequence of candidate hashes (tail = top,
// duplicates tolerated) plus a cache of hashes confirmed absent locally.
// Both the pipeline's walk and concurrent request-completion callbacks
// mutate it, so access is serialized with a mutex rather than confined to a
// single goroutine; see DESIGN.md for the reasoning.
type workQueue struct {
	mu      sync.Mutex
	stack   []common.Hash
	missing map[common.Hash]struct{}
}

func newWorkQueue() *workQueue {
	return &workQueue{missing: make(map[common.Hash]struct{})}
}

// Push appends hashes onto the stack (newest on top).
func (q *workQueue) Push(hashes ...common.Hash) {
	if len(hashes) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stack = append(q.stack, hashes...)
}

// SetRootHash enqueues a new walk root, unless the stack already holds a
// full request's worth of pending entries. A new root can therefore be
// silently dropped while backfill is already busy on a previous one.
func (q *workQueue) SetRootHash(root common.Hash, requestSize int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.stack) < requestSize {
		q.stack = append(q.stack, root)
	}
}

// Len reports the current stack depth.
func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.stack)
}

// popOnDeck splits the top n entries off the stack and returns them. If
// fewer than n are present, all of them are returned.
func (q *workQueue) popOnDeck(n int) []common.Hash {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.stack) {
		n = len(q.stack)
	}
	onDeck := make([]common.Hash, n)
	copy(onDeck, q.stack[len(q.stack)-n:])
	q.stack = q.stack[:len(q.stack)-n]
	return onDeck
}

// requeue pushes hashes back onto the stack, used for unreturned, timed
// out, or lost-peer hashes.
func (q *workQueue) requeue(hashes []common.Hash) {
	q.Push(hashes...)
}

// hasFullRequestOfMissing reports whether the top requestSize entries are
// all confirmed absent from the local store.
func (q *workQueue) hasFullRequestOfMissing(requestSize int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.stack) < requestSize {
		return false
	}
	for _, h := range q.stack[len(q.stack)-requestSize:] {
		if _, missing := q.missing[h]; !missing {
			return false
		}
	}
	return true
}

// walk grows the tail of the stack with children of locally-known nodes
// until a full request's worth of
// confirmed-missing entries sits on top, or nothing more can be expanded.
// It cooperatively yields (via runtime.Gosched, never holding the mutex
// across a store access) after every store miss and every successful
// expansion, so request completions are not starved.
func (q *workQueue) walk(store statedb.KeyValueReader, requestSize int, decode func([]byte) map[common.Hash]struct{}) {
	for !q.hasFullRequestOfMissing(requestSize) {
		hash, encoded, found := q.scanForLocallyKnown(store)
		if !found {
			return
		}
		q.removeAndExpand(hash, encoded, decode)
		runtime.Gosched()
	}
}

// scanForLocallyKnown walks the stack from top to bottom looking for the
// first entry that is either already known-missing (skip) or present in
// the store (return it). It records newly-discovered misses into
// MissingSet as it goes, yielding between each store access.
func (q *workQueue) scanForLocallyKnown(store statedb.KeyValueReader) (common.Hash, []byte, bool) {
	for {
		hash, ok := q.nextUnresolved()
		if !ok {
			return common.Hash{}, nil, false
		}
		encoded, err := store.Get(hash.Bytes())
		if err == nil {
			return hash, encoded, true
		}
		q.markMissing(hash)
		runtime.Gosched()
	}
}

// nextUnresolved returns the first (top-to-bottom) stack entry not already
// known missing, without removing it.
func (q *workQueue) nextUnresolved() (common.Hash, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(q.stack) - 1; i >= 0; i-- {
		h := q.stack[i]
		if _, missing := q.missing[h]; !missing {
			return h, true
		}
	}
	return common.Hash{}, false
}

func (q *workQueue) markMissing(h common.Hash) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.missing[h] = struct{}{}
}

// removeAndExpand deletes one occurrence of hash from the stack and pushes
// its decoded children onto the top.
func (q *workQueue) removeAndExpand(hash common.Hash, encoded []byte, decode func([]byte) map[common.Hash]struct{}) {
	q.mu.Lock()
	for i := len(q.stack) - 1; i >= 0; i-- {
		if q.stack[i] == hash {
			q.stack = append(q.stack[:i], q.stack[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	children := decode(encoded)
	if len(children) == 0 {
		return
	}
	flat := make([]common.Hash, 0, len(children))
	for h := range children {
		flat = append(flat, h)
	}
	q.Push(flat...)
}

// unmarkMissing removes hash from the missing set after it has been
// successfully written.
func (q *workQueue) unmarkMissing(h common.Hash) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.missing, h)
}
