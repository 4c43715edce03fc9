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

	"github.com/probeum/beamfill/log"
)

// peerSubscriber listens for peer join/leave events and registers peers
// with the waiting heap and queen slot. It declares zero interest in any
// other pool traffic.
type peerSubscriber struct {
	pool    PeerPool
	waiting *waitingPeers
	queen   *queenSlot
}

func newPeerSubscriber(pool PeerPool, waiting *waitingPeers, queen *queenSlot) *peerSubscriber {
	return &peerSubscriber{pool: pool, waiting: waiting, queen: queen}
}

// run registers every already-connected peer, then drains the pool's
// membership feed until ctx is cancelled.
func (s *peerSubscriber) run(ctx context.Context) {
	for _, p := range s.pool.Peers() {
		s.register(p)
	}

	events := s.pool.Subscribe(ctx, peerEventBacklog)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case PeerJoined:
				s.register(ev.Peer)
			case PeerLeft:
				s.deregister(ev.Peer)
			}
		}
	}
}

func (s *peerSubscriber) register(p Peer) {
	log.Debug("Backfill registering peer", "peer", p.Handle())
	s.waiting.Put(p)
}

func (s *peerSubscriber) deregister(p Peer) {
	handle := p.Handle()
	log.Debug("Backfill deregistering peer", "peer", handle)
	s.waiting.Remove(handle)
	s.queen.clearIfQueen(handle)
}
