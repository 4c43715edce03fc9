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

// Package backfill implements a background state-trie backfill engine for a
// beam-syncing client: while the foreground sync fetches state nodes on
// demand to execute recent blocks, this engine walks the historical state
// trie depth-first, requesting missing nodes from remote peers and
// persisting them locally.
package backfill

import "time"

const (
	// RequestSize is the number of hashes bundled into a single
	// get-node-data request.
	RequestSize = 16

	// GapBetweenTests is the peer cool-down applied after a successful
	// background request. Timeouts and other errors cool the peer down for
	// twice this; a peer that is gone is not cooled down at all.
	GapBetweenTests = 5 * time.Second

	// NonIdealResponsePenalty is how long a peer is excluded from the
	// waiting heap after PenalizeQueen demotes it.
	NonIdealResponsePenalty = 10 * time.Second

	// reportInterval is the cadence of the progress reporter.
	reportInterval = 10 * time.Second

	// activePeerRequeueDelay is how long a peer found mid-request is
	// reinserted after, rather than immediately recycled.
	activePeerRequeueDelay = 10 * time.Second

	// idleSleep is how long the pipeline waits before retrying when the
	// walker produced no hashes to request.
	idleSleep = 2 * time.Second

	// peerEventBacklog bounds the peer join/leave subscription channel.
	peerEventBacklog = 2000

	// trackerCacheSize bounds the number of per-peer EMA trackers retained
	// across peer churn.
	trackerCacheSize = 1024
)

// Config collects the engine's runtime tunables. The zero value is usable
// standalone: New fills any field left at its zero value with the package
// default before constructing the engine, the way probeconfig packages
// default-fill a config struct, so callers are never required to start
// from DefaultConfig.
type Config struct {
	RequestSize             int
	GapBetweenTests         time.Duration
	NonIdealResponsePenalty time.Duration
}

// DefaultConfig returns the tunables the engine uses out of the box.
func DefaultConfig() Config {
	return Config{
		RequestSize:             RequestSize,
		GapBetweenTests:         GapBetweenTests,
		NonIdealResponsePenalty: NonIdealResponsePenalty,
	}
}

// withDefaults fills any zero-valued field with the package default. A
// zero RequestSize in particular would otherwise make
// hasFullRequestOfMissing(0) vacuously true and silently stall the walk.
func (c Config) withDefaults() Config {
	if c.RequestSize <= 0 {
		c.RequestSize = RequestSize
	}
	if c.GapBetweenTests <= 0 {
		c.GapBetweenTests = GapBetweenTests
	}
	if c.NonIdealResponsePenalty <= 0 {
		c.NonIdealResponsePenalty = NonIdealResponsePenalty
	}
	return c
}
