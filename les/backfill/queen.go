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
	"context"
	"sync"
	"time"

	"github.com/probeum/beamfill/log"
)

// QueenTracker is the narrow capability the foreground beam-sync path
// depends on: get the current fastest peer, and report when it misbehaved
// on a latency-critical request.
type QueenTracker interface {
	GetQueenPeer(ctx context.Context) (Peer, error)
	PenalizeQueen(handle PeerHandle)
}

// queenSlot holds at most one peer: the fastest known, reserved for
// foreground traffic. PenalizeQueen can be called from any goroutine,
// including the foreground sync path, not only the pipeline's own loop; the
// slot is guarded by its own mutex rather than a command channel, which
// gives the same serialization guarantee with less machinery.
type queenSlot struct {
	mu      sync.Mutex
	peer    Peer
	waiting *waitingPeers
	penalty time.Duration
}

func newQueenSlot(waiting *waitingPeers, penalty time.Duration) *queenSlot {
	return &queenSlot{waiting: waiting, penalty: penalty}
}

// tryElect runs the election state machine for a peer just popped from
// the waiting heap. It returns true if the peer became the new queen (in
// which case the caller must not issue a background request this round).
func (q *queenSlot) tryElect(candidate Peer, sortKey func(Peer) float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.peer == nil {
		q.peer = candidate
		return true
	}
	if q.peer.Handle() == candidate.Handle() {
		// Defensively ignored: the queen is never in the waiting heap, so
		// this should be unreachable.
		return false
	}
	if sortKey(candidate) < sortKey(q.peer) {
		old := q.peer
		q.peer = candidate
		q.waiting.Put(old)
		return true
	}
	return false
}

// clearIfQueen clears the slot if handle is the current queen, used by the
// peer-pool subscriber on disconnect and when a popped peer turns out not
// operational.
func (q *queenSlot) clearIfQueen(handle PeerHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.peer != nil && q.peer.Handle() == handle {
		q.peer = nil
	}
}

// penalize demotes peer if it is currently queen, scheduling it to
// reappear in the waiting heap after the configured penalty.
func (q *queenSlot) penalize(handle PeerHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.peer == nil || q.peer.Handle() != handle {
		return
	}
	demoted := q.peer
	q.peer = nil
	log.Debug("Penalizing queen peer for minor infraction", "peer", handle, "delay", q.penalty)
	time.AfterFunc(q.penalty, func() { q.waiting.Put(demoted) })
}

// current returns the queen without blocking.
func (q *queenSlot) current() Peer {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.peer
}
