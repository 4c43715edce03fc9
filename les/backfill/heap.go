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
	"container/heap"
	"context"
	"sync"

	mapset "github.com/deckarep/golang-set"
)

// heapItem is one entry in the binary heap backing waitingPeers. It tracks
// its own index, kept current by Push and Swap; waitingPeers.Remove does not
// use it and finds the entry by a linear scan.
type heapItem struct {
	peer Peer
	idx  int
}

// peerHeap implements container/heap.Interface, ordered by the peer's
// current sort key (read fresh from its tracker on every comparison, not
// cached at insert time).
type peerHeap struct {
	items    []*heapItem
	trackers *trackerRegistry
}

func (h peerHeap) Len() int { return len(h.items) }

func (h peerHeap) Less(i, j int) bool {
	ki := h.trackers.get(h.items[i].peer.Handle()).sortKey()
	kj := h.trackers.get(h.items[j].peer.Handle()).sortKey()
	return ki < kj
}

func (h peerHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].idx, h.items[j].idx = i, j
}

func (h *peerHeap) Push(x interface{}) {
	it := x.(*heapItem)
	it.idx = len(h.items)
	h.items = append(h.items, it)
}

func (h *peerHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return it
}

// waitingPeers is the priority queue of peers eligible for background
// requests. Put is non-blocking; GetFastest blocks until a peer is
// available or ctx is cancelled.
type waitingPeers struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	h        peerHeap
	present  mapset.Set // PeerHandle values currently enqueued, for O(1) idempotent Put
}

func newWaitingPeers(trackers *trackerRegistry) *waitingPeers {
	w := &waitingPeers{
		h:       peerHeap{trackers: trackers},
		present: mapset.NewSet(),
	}
	w.nonEmpty = sync.NewCond(&w.mu)
	return w
}

// Put inserts peer if it is not already present; a peer already waiting is
// left untouched.
func (w *waitingPeers) Put(p Peer) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.present.Contains(p.Handle()) {
		return
	}
	w.present.Add(p.Handle())
	heap.Push(&w.h, &heapItem{peer: p})
	w.nonEmpty.Signal()
}

// Remove drops peer from the waiting set if present, used when a peer
// disconnects while idle. A peer could also simply be skipped lazily when
// popped, but an explicit Remove keeps Len() accurate for callers like
// tests.
func (w *waitingPeers) Remove(handle PeerHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.present.Contains(handle) {
		return
	}
	for i, it := range w.h.items {
		if it.peer.Handle() == handle {
			heap.Remove(&w.h, i)
			break
		}
	}
	w.present.Remove(handle)
}

// GetFastest blocks until at least one peer is waiting, then removes and
// returns the one with the lowest sort key. It returns an error if ctx is
// done first.
func (w *waitingPeers) GetFastest(ctx context.Context) (Peer, error) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.nonEmpty.Broadcast()
			w.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	w.mu.Lock()
	defer w.mu.Unlock()
	for w.h.Len() == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.nonEmpty.Wait()
	}
	it := heap.Pop(&w.h).(*heapItem)
	w.present.Remove(it.peer.Handle())
	return it.peer, nil
}

// Len reports how many peers are currently waiting.
func (w *waitingPeers) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.h.Len()
}
