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
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// emaFactor is the smoothing constant applied on every sample, the same
// shape of update go-probeum's own p2p/msgrate.Tracker uses for its
// round-trip estimates.
const emaFactor = 0.1

// PerfTracker holds an exponentially-weighted moving average of a single
// peer's items-served-per-second for the node-data request kind. A tracker
// made by newPerfTracker has no sample yet and reports itself as
// "unknown-fast" so a never-measured peer still gets a turn.
type PerfTracker struct {
	mu  sync.Mutex
	ema float64 // items/second; NaN until the first sample lands
}

// newPerfTracker returns a PerfTracker with no sample recorded.
func newPerfTracker() *PerfTracker {
	return &PerfTracker{ema: math.NaN()}
}

// Update folds one request outcome into the EMA: delivered items over
// elapsed wall time. Called by the request pipeline after every request
// that returns without error; failed requests leave the average unchanged.
func (t *PerfTracker) Update(delivered int, elapsed time.Duration) {
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	rate := float64(delivered) / elapsed.Seconds()

	t.mu.Lock()
	defer t.mu.Unlock()
	if math.IsNaN(t.ema) {
		t.ema = rate
		return
	}
	t.ema = emaFactor*rate + (1-emaFactor)*t.ema
}

// ItemsPerSecond returns the current EMA and whether a sample has ever
// landed.
func (t *PerfTracker) ItemsPerSecond() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if math.IsNaN(t.ema) {
		return 0, false
	}
	return t.ema, true
}

// sortKey is the negated items/second, so that a lower sort key means a
// faster, more desirable peer and a min-heap can be used directly. A peer
// with no sample yet sorts ahead of every measured peer.
func (t *PerfTracker) sortKey() float64 {
	rate, ok := t.ItemsPerSecond()
	if !ok {
		return math.Inf(-1)
	}
	return -rate
}

// trackerRegistry hands out one PerfTracker per peer, bounded by an LRU so a
// long-running engine does not accumulate trackers for peers long gone.
type trackerRegistry struct {
	cache *lru.Cache
}

func newTrackerRegistry(size int) *trackerRegistry {
	c, err := lru.New(size)
	if err != nil {
		// Only returns an error for a non-positive size, which never
		// happens with our compile-time constant.
		panic(err)
	}
	return &trackerRegistry{cache: c}
}

func (r *trackerRegistry) get(p PeerHandle) *PerfTracker {
	if v, ok := r.cache.Get(p); ok {
		return v.(*PerfTracker)
	}
	t := newPerfTracker()
	r.cache.Add(p, t)
	return t
}
