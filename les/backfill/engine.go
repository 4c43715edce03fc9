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

	"github.com/probeum/beamfill/common"
	"github.com/probeum/beamfill/statedb"
)

// Engine is the background state-trie backfill engine: it wires the trie
// node decoder, peer performance tracking, the waiting-peer heap, queen
// election, the depth-first walker, the request pipeline, the peer pool
// subscriber and the progress reporter into one cancellable unit.
//
// Engine implements QueenTracker, the capability the foreground beam-sync
// path depends on.
type Engine struct {
	cfg  Config
	pool PeerPool

	queue    *workQueue
	trackers *trackerRegistry
	waiting  *waitingPeers
	queen    *queenSlot
	counters *counters
	pipeline *pipeline
	sub      *peerSubscriber
	reporter *progressReporter

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New constructs a backfill Engine over the given content-addressed store
// and peer pool. The engine does nothing until Start is called.
func New(store statedb.Database, pool PeerPool, cfg Config) *Engine {
	cfg = cfg.withDefaults()

	trackers := newTrackerRegistry(trackerCacheSize)
	waiting := newWaitingPeers(trackers)
	queen := newQueenSlot(waiting, cfg.NonIdealResponsePenalty)
	queue := newWorkQueue()
	cnt := newCounters()

	return &Engine{
		cfg:      cfg,
		pool:     pool,
		queue:    queue,
		trackers: trackers,
		waiting:  waiting,
		queen:    queen,
		counters: cnt,
		pipeline: newPipeline(store, queue, waiting, queen, trackers, cnt, cfg),
		sub:      newPeerSubscriber(pool, waiting, queen),
		reporter: newProgressReporter(queue, cnt, queen),
		done:     make(chan struct{}),
	}
}

// Start launches the pipeline, the peer pool subscriber and the progress
// reporter as sibling goroutines, all governed by a single cancellation
// scope derived from ctx.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); e.sub.run(ctx) }()
	go func() { defer wg.Done(); e.reporter.run(ctx) }()
	go func() { defer wg.Done(); e.pipeline.run(ctx) }()

	go func() {
		wg.Wait()
		close(e.done)
	}()
}

// Stop cancels the engine's scope and blocks until every goroutine has
// observed it. Idempotent.
func (e *Engine) Stop() {
	e.once.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
	})
	<-e.done
}

// SetRootHash enqueues a new walk root. It is a no-op if the stack already
// holds a full request's worth of pending entries.
func (e *Engine) SetRootHash(root common.Hash) {
	e.queue.SetRootHash(root, e.cfg.RequestSize)
}

// GetQueenPeer awaits and returns the current queen, electing one from the
// waiting heap if none is set yet.
func (e *Engine) GetQueenPeer(ctx context.Context) (Peer, error) {
	for {
		if q := e.queen.current(); q != nil {
			return q, nil
		}
		candidate, err := e.waiting.GetFastest(ctx)
		if err != nil {
			return nil, err
		}
		e.queen.tryElect(candidate, func(c Peer) float64 { return e.trackers.get(c.Handle()).sortKey() })
	}
}

// PenalizeQueen demotes peer if it is currently the queen.
func (e *Engine) PenalizeQueen(handle PeerHandle) {
	e.queen.penalize(handle)
}

var _ QueenTracker = (*Engine)(nil)
