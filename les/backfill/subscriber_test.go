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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeerSubscriber_RegistersAlreadyConnectedPeersOnStart(t *testing.T) {
	p := newFakePeer(nil)
	pool := newFakePool(p)
	w := newWaitingPeers(newTrackerRegistry(8))
	q := newQueenSlot(w, time.Millisecond)
	sub := newPeerSubscriber(pool, w, q)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.run(ctx)

	require.Eventually(t, func() bool { return w.Len() == 1 }, time.Second, time.Millisecond)
}

func TestPeerSubscriber_RegistersOnJoinAndDeregistersOnLeave(t *testing.T) {
	pool := newFakePool()
	w := newWaitingPeers(newTrackerRegistry(8))
	q := newQueenSlot(w, time.Millisecond)
	sub := newPeerSubscriber(pool, w, q)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.run(ctx)

	time.Sleep(10 * time.Millisecond) // let sub.run reach Subscribe before the first event

	p := newFakePeer(nil)
	pool.join(p)
	require.Eventually(t, func() bool { return w.Len() == 1 }, time.Second, time.Millisecond)

	pool.leave(p)
	require.Eventually(t, func() bool { return w.Len() == 0 }, time.Second, time.Millisecond)
}

func TestPeerSubscriber_LeaveClearsQueenSlot(t *testing.T) {
	pool := newFakePool()
	w := newWaitingPeers(newTrackerRegistry(8))
	q := newQueenSlot(w, time.Millisecond)
	sub := newPeerSubscriber(pool, w, q)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.run(ctx)
	time.Sleep(10 * time.Millisecond)

	p := newFakePeer(nil)
	q.tryElect(p, func(Peer) float64 { return 0 })

	pool.leave(p)
	require.Eventually(t, func() bool { return q.current() == nil }, time.Second, time.Millisecond)
}
