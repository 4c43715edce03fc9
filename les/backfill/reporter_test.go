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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/probeum/beamfill/common"
)

func TestProgressReporter_ReportOnceResetsPerIntervalCounters(t *testing.T) {
	q := newWorkQueue()
	q.Push(common.BytesToHash([]byte{0x01}))
	cnt := newCounters()
	cnt.incAdded()
	cnt.incRequests(NewPeerHandle("p1"))
	waiting := newWaitingPeers(newTrackerRegistry(8))
	queen := newQueenSlot(waiting, time.Millisecond)

	r := newProgressReporter(q, cnt, queen)
	require.NotPanics(t, r.reportOnce)

	s := cnt.snapshotAndReset(topRequesterCount)
	require.Equal(t, 0, s.added, "reportOnce should have already drained the added counter")
}

func TestProgressReporter_ReportOnceIsQuietWhenQueueEmpty(t *testing.T) {
	q := newWorkQueue()
	cnt := newCounters()
	cnt.incAdded()
	waiting := newWaitingPeers(newTrackerRegistry(8))
	queen := newQueenSlot(waiting, time.Millisecond)

	r := newProgressReporter(q, cnt, queen)
	r.reportOnce()

	s := cnt.snapshotAndReset(topRequesterCount)
	require.Equal(t, 1, s.added, "an empty queue should skip the snapshot, leaving counters untouched")
}

func TestFormatTopRequesters(t *testing.T) {
	top := []requesterCount{{peer: NewPeerHandle("a"), count: 3}, {peer: NewPeerHandle("b"), count: 1}}
	require.Equal(t, []string{"a", "b"}, formatTopRequesters(top))
}
