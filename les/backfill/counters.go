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

import "sync"

// counters tracks cumulative totals plus a per-peer request multiset for
// reporting progress.
type counters struct {
	mu             sync.Mutex
	totalProcessed int
	added          int
	missed         int
	requestsByPeer map[PeerHandle]int
}

func newCounters() *counters {
	return &counters{requestsByPeer: make(map[PeerHandle]int)}
}

func (c *counters) incAdded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added++
	c.totalProcessed++
}

func (c *counters) incMissed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missed++
}

func (c *counters) incRequests(p PeerHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestsByPeer[p]++
}

// snapshot is an immutable view returned by snapshotAndReset for the
// progress reporter.
type snapshot struct {
	totalProcessed int
	added          int
	missed         int
	topRequesters  []requesterCount
}

type requesterCount struct {
	peer  PeerHandle
	count int
}

// snapshotAndReset returns the current totals (total_processed is
// cumulative and never reset) and the top-n requesters, then clears added,
// missed and the per-peer request counts.
func (c *counters) snapshotAndReset(topN int) snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := snapshot{
		totalProcessed: c.totalProcessed,
		added:          c.added,
		missed:         c.missed,
		topRequesters:  topRequesters(c.requestsByPeer, topN),
	}

	c.added = 0
	c.missed = 0
	c.requestsByPeer = make(map[PeerHandle]int)
	return s
}

// topRequesters returns the n peers with the highest request counts. Ties
// keep the order of Go's map iteration, which is randomized, so the order
// among peers with equal counts is not defined.
func topRequesters(m map[PeerHandle]int, n int) []requesterCount {
	all := make([]requesterCount, 0, len(m))
	for p, c := range m {
		all = append(all, requesterCount{peer: p, count: c})
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].count > all[j-1].count; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if n < len(all) {
		all = all[:n]
	}
	return all
}
