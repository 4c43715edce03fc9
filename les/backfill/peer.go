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
	"time"

	"github.com/probeum/beamfill/common"
)

// ErrPeerGone is returned by GetNodeData when the peer disconnected or the
// request was cancelled out from under it.
var ErrPeerGone = errors.New("backfill: peer gone")

// Peer is the narrow slice of a connected remote node that the backfill
// engine depends on. It is satisfied by a wrapper around the real `probe`
// sub-protocol peer, adding the extra bookkeeping (operational/requesting
// flags, EMA throughput) the engine needs; the engine never owns a Peer's
// lifetime, only a handle to it.
type Peer interface {
	// Handle returns the peer's stable identity, valid for the life of this
	// connection.
	Handle() PeerHandle

	// IsOperational reports whether the peer is still usable. The engine
	// checks this at every pop from the waiting heap.
	IsOperational() bool

	// GetNodeData requests the given hashes, returning whatever subset the
	// peer has, in arbitrary order. It must honor ctx for cancellation and
	// apply its own transport-level timeout.
	GetNodeData(ctx context.Context, hashes []common.Hash) ([]NodeResponse, error)

	// IsRequesting reports whether a get-node-data request issued by this
	// engine is already in flight for this peer, guarding against issuing a
	// second concurrent request to the same peer.
	IsRequesting() bool

	// ItemsPerSecond returns the peer's current node-data EMA throughput,
	// or false if no sample has been recorded yet.
	ItemsPerSecond() (rate float64, ok bool)
}

// PeerHandle is an opaque, stable identity for a connected peer. Two
// handles compare equal iff they identify the same connection; a
// reconnection from the same remote address is a distinct PeerHandle.
type PeerHandle struct {
	id string
}

// NewPeerHandle wraps an opaque per-connection identifier (e.g. the p2p
// session's node ID plus a connection counter) into a PeerHandle.
func NewPeerHandle(id string) PeerHandle { return PeerHandle{id: id} }

func (h PeerHandle) String() string { return h.id }

// NodeResponse pairs a requested hash with the node bytes a peer returned
// for it.
type NodeResponse struct {
	Hash common.Hash
	Data []byte
}

// PeerEventKind distinguishes join from leave events on the PeerPool feed.
type PeerEventKind uint8

const (
	PeerJoined PeerEventKind = iota
	PeerLeft
)

// PeerEvent is a single peer-pool membership change.
type PeerEvent struct {
	Kind PeerEventKind
	Peer Peer
}

// PeerPool is the external peer-to-peer collaborator the engine subscribes
// to for membership changes and enumerates at startup. It is the
// Go-idiomatic replacement for a synchronous
// register_peer/deregister_peer callback pair: a buffered channel feed plus
// a point-in-time snapshot.
type PeerPool interface {
	// Subscribe returns a channel of membership events with the given
	// backlog capacity. The channel is closed when ctx is done.
	Subscribe(ctx context.Context, backlog int) <-chan PeerEvent

	// Peers returns the currently connected peers.
	Peers() []Peer
}

// requestTimeout bounds how long a single get-node-data round trip is
// allowed to take before the engine buckets it as a timeout; concrete
// transports are expected to honor ctx long before this fires, but the
// pipeline still classifies on context.DeadlineExceeded.
const requestTimeout = 15 * time.Second
