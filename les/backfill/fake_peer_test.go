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
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/probeum/beamfill/common"
)

// fakePeer is a minimal in-package double for Peer, hand-written rather
// than generated.
type fakePeer struct {
	handle      PeerHandle
	operational int32
	requesting  int32

	mu   sync.Mutex
	resp func(hashes []common.Hash) ([]NodeResponse, error)
}

func newFakePeer(respond func(hashes []common.Hash) ([]NodeResponse, error)) *fakePeer {
	return &fakePeer{
		handle:      NewPeerHandle(uuid.NewString()),
		operational: 1,
		resp:        respond,
	}
}

func (p *fakePeer) Handle() PeerHandle   { return p.handle }
func (p *fakePeer) IsOperational() bool  { return atomic.LoadInt32(&p.operational) == 1 }
func (p *fakePeer) IsRequesting() bool   { return atomic.LoadInt32(&p.requesting) == 1 }
func (p *fakePeer) ItemsPerSecond() (float64, bool) { return 0, false }

func (p *fakePeer) setOperational(v bool) {
	if v {
		atomic.StoreInt32(&p.operational, 1)
	} else {
		atomic.StoreInt32(&p.operational, 0)
	}
}

func (p *fakePeer) GetNodeData(ctx context.Context, hashes []common.Hash) ([]NodeResponse, error) {
	atomic.StoreInt32(&p.requesting, 1)
	defer atomic.StoreInt32(&p.requesting, 0)

	p.mu.Lock()
	fn := p.resp
	p.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(hashes)
}

// fakePool is a minimal in-package double for PeerPool.
type fakePool struct {
	mu    sync.Mutex
	peers []Peer
	subs  []chan PeerEvent
}

func newFakePool(initial ...Peer) *fakePool {
	return &fakePool{peers: initial}
}

func (p *fakePool) Peers() []Peer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Peer, len(p.peers))
	copy(out, p.peers)
	return out
}

func (p *fakePool) Subscribe(ctx context.Context, backlog int) <-chan PeerEvent {
	ch := make(chan PeerEvent, backlog)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (p *fakePool) join(peer Peer) {
	p.mu.Lock()
	p.peers = append(p.peers, peer)
	subs := append([]chan PeerEvent(nil), p.subs...)
	p.mu.Unlock()
	for _, s := range subs {
		s <- PeerEvent{Kind: PeerJoined, Peer: peer}
	}
}

func (p *fakePool) leave(peer Peer) {
	p.mu.Lock()
	for i, q := range p.peers {
		if q.Handle() == peer.Handle() {
			p.peers = append(p.peers[:i], p.peers[i+1:]...)
			break
		}
	}
	subs := append([]chan PeerEvent(nil), p.subs...)
	p.mu.Unlock()
	for _, s := range subs {
		s <- PeerEvent{Kind: PeerLeft, Peer: peer}
	}
}
