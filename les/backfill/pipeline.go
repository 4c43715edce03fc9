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
	"errors"
	"sync"
	"time"

	"github.com/probeum/beamfill/common"
	"github.com/probeum/beamfill/log"
	"github.com/probeum/beamfill/statedb"
)

// pipeline is the single outer loop that walks the trie, pops a peer, runs
// queen election, and spawns bounded background requests.
type pipeline struct {
	store    statedb.Database
	queue    *workQueue
	waiting  *waitingPeers
	queen    *queenSlot
	trackers *trackerRegistry
	counters *counters
	cfg      Config

	wg sync.WaitGroup
}

func newPipeline(store statedb.Database, queue *workQueue, waiting *waitingPeers, queen *queenSlot, trackers *trackerRegistry, counters *counters, cfg Config) *pipeline {
	return &pipeline{
		store: store, queue: queue, waiting: waiting, queen: queen,
		trackers: trackers, counters: counters, cfg: cfg,
	}
}

// run loops until ctx is cancelled.
func (p *pipeline) run(ctx context.Context) {
	defer p.wg.Wait()

	for ctx.Err() == nil {
		p.queue.walk(p.store, p.cfg.RequestSize, decodeChildren)

		peer, err := p.waiting.GetFastest(ctx)
		if err != nil {
			return
		}

		if !peer.IsOperational() {
			log.Warn("Dropping peer from backfill as no longer operational", "peer", peer.Handle())
			p.queen.clearIfQueen(peer.Handle())
			continue
		}

		if p.queen.tryElect(peer, func(c Peer) float64 { return p.trackers.get(c.Handle()).sortKey() }) {
			log.Debug("Switching queen peer", "peer", peer.Handle())
			continue
		}

		if peer.IsRequesting() {
			log.Debug("Backfill is skipping active peer", "peer", peer.Handle())
			p.requeuePeerAfter(peer, activePeerRequeueDelay)
			continue
		}

		onDeck := p.queue.popOnDeck(p.cfg.RequestSize)
		if len(onDeck) == 0 {
			p.waiting.Put(peer)
			log.Debug("Backfill is waiting for more hashes to arrive")
			select {
			case <-ctx.Done():
				return
			case <-time.After(idleSleep):
			}
			continue
		}

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.makeRequest(ctx, peer, onDeck)
		}()
	}
}

func (p *pipeline) requeuePeerAfter(peer Peer, delay time.Duration) {
	time.AfterFunc(delay, func() { p.waiting.Put(peer) })
}

// makeRequest issues one bounded background request and applies its
// outcome: success feeds the tracker and persists results, a timeout
// requeues the hashes and cools the peer down longer, a gone/cancelled peer
// just requeues, and any other error logs and requeues with a cooldown.
func (p *pipeline) makeRequest(ctx context.Context, peer Peer, hashes []common.Hash) {
	p.counters.incRequests(peer.Handle())

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	responses, err := peer.GetNodeData(reqCtx, hashes)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		p.trackers.get(peer.Handle()).Update(len(responses), elapsed)
		p.requeuePeerAfter(peer, p.cfg.GapBetweenTests)
		p.insertResults(hashes, responses)

	case errors.Is(err, context.DeadlineExceeded):
		p.queue.requeue(hashes)
		p.requeuePeerAfter(peer, 2*p.cfg.GapBetweenTests)

	case errors.Is(err, ErrPeerGone), errors.Is(err, context.Canceled):
		// Peer will leave the pool on its own; dropped on the floor if the
		// engine itself is shutting down.
		p.queue.requeue(hashes)

	default:
		log.Info("Unexpected error while getting background nodes", "peer", peer.Handle(), "err", err)
		p.queue.requeue(hashes)
		p.requeuePeerAfter(peer, 2*p.cfg.GapBetweenTests)
	}
}

// insertResults writes every returned node under its own hash in a single
// atomic batch, re-enqueues anything the peer did not have, and expands the
// children of everything that was written.
func (p *pipeline) insertResults(requested []common.Hash, responses []NodeResponse) {
	returned := make(map[common.Hash][]byte, len(responses))
	for _, r := range responses {
		returned[r.Hash] = r.Data
	}

	batch := p.store.NewBatch()
	var expand [][]byte
	var written []common.Hash
	var missed []common.Hash

	for _, h := range requested {
		data, ok := returned[h]
		if !ok {
			missed = append(missed, h)
			continue
		}
		if err := batch.Put(h.Bytes(), data); err != nil {
			log.Error("Failed to stage trie node for write", "hash", h, "err", err)
			missed = append(missed, h)
			continue
		}
		written = append(written, h)
		expand = append(expand, data)
	}

	if err := batch.Write(); err != nil {
		log.Crit("Failed to persist backfilled trie nodes", "err", err)
		// Re-queue everything we meant to write, so no hash is silently
		// dropped. The error is only logged: it is not returned to any
		// caller, and the engine keeps running.
		p.queue.requeue(written)
		p.queue.requeue(missed)
		return
	}

	for i, h := range written {
		p.counters.incAdded()
		p.queue.unmarkMissing(h)
		children := decodeChildren(expand[i])
		if len(children) > 0 {
			flat := make([]common.Hash, 0, len(children))
			for c := range children {
				flat = append(flat, c)
			}
			p.queue.Push(flat...)
		}
	}
	for range missed {
		p.counters.incMissed()
	}
	p.queue.requeue(missed)
}
