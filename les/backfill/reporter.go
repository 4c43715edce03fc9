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
	"time"

	"github.com/probeum/beamfill/log"
)

const topRequesterCount = 3

// progressReporter, every reportInterval, if there is still work queued,
// logs the running totals and resets the per-interval counters.
type progressReporter struct {
	queue    *workQueue
	counters *counters
	queen    *queenSlot
	interval time.Duration
}

func newProgressReporter(queue *workQueue, counters *counters, queen *queenSlot) *progressReporter {
	return &progressReporter{queue: queue, counters: counters, queen: queen, interval: reportInterval}
}

func (r *progressReporter) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reportOnce()
		}
	}
}

func (r *progressReporter) reportOnce() {
	if r.queue.Len() == 0 {
		log.Debug("Beam-Backfill: waiting for new state root")
		return
	}

	s := r.counters.snapshotAndReset(topRequesterCount)
	queen := r.queen.current()
	var queenID interface{} = "<none>"
	if queen != nil {
		queenID = queen.Handle()
	}

	log.Debug("Beam-Backfill",
		"all", s.totalProcessed,
		"new", s.added,
		"missed", s.missed,
		"queen", queenID,
	)
	log.Debug("Beam-Backfill-Peer-Usage", "top", formatTopRequesters(s.topRequesters))
}

func formatTopRequesters(top []requesterCount) []string {
	out := make([]string, len(top))
	for i, r := range top {
		out[i] = r.peer.String()
	}
	return out
}
