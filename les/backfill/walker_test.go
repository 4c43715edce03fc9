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

	"github.com/stretchr/testify/require"

	"github.com/probeum/beamfill/common"
	"github.com/probeum/beamfill/statedb"
)

func TestWorkQueue_SetRootHash_NoOpWhenStackWellSupplied(t *testing.T) {
	q := newWorkQueue()
	for i := 0; i < RequestSize; i++ {
		q.Push(common.BytesToHash([]byte{byte(i)}))
	}
	q.SetRootHash(common.BytesToHash([]byte{0xAA}), RequestSize)
	require.Equal(t, RequestSize, q.Len())
}

func TestWorkQueue_SetRootHash_EnqueuesWhenSparse(t *testing.T) {
	q := newWorkQueue()
	root := common.BytesToHash([]byte{0xAA})
	q.SetRootHash(root, RequestSize)
	require.Equal(t, 1, q.Len())
}

func TestWalk_ExpandsKnownNodesDepthFirst(t *testing.T) {
	// Root (present) branches into hashA (not yet fetched) and hashB
	// (present, an extension whose child hashC is not yet fetched). The
	// walk should expand both present nodes and stop with hashA and hashC
	// sitting on the stack, confirmed missing from the store.
	store := statedb.NewMemoryDatabase()

	hashA := common.BytesToHash(hashBytes(0xA))
	hashC := common.BytesToHash(hashBytes(0xC))

	hashB := common.BytesToHash(hashBytes(0xB))
	branchB := rlpList([][]byte{rlpString([]byte{0x31}), rlpString(hashC.Bytes())})
	require.NoError(t, store.Put(hashB.Bytes(), branchB))

	items := make([][]byte, 17)
	items[0] = rlpString(hashA.Bytes())
	items[1] = rlpString(hashB.Bytes())
	for i := 2; i < 16; i++ {
		items[i] = rlpString([]byte{})
	}
	items[16] = rlpString([]byte{})
	rootHash := common.BytesToHash(hashBytes(0xF))
	require.NoError(t, store.Put(rootHash.Bytes(), rlpList(items)))

	q := newWorkQueue()
	q.Push(rootHash)
	q.walk(store, RequestSize, decodeChildren)

	require.Equal(t, 2, q.Len())
	require.True(t, q.hasFullRequestOfMissing(2))
}

func TestWalk_StopsWhenNothingMoreToExpand(t *testing.T) {
	store := statedb.NewMemoryDatabase()
	q := newWorkQueue()
	missing := common.BytesToHash(hashBytes(1))
	q.Push(missing)

	q.walk(store, RequestSize, decodeChildren)

	require.Equal(t, 1, q.Len())
	require.True(t, q.hasFullRequestOfMissing(1))
}

func TestWorkQueue_PopOnDeckAndRequeue(t *testing.T) {
	q := newWorkQueue()
	var hashes []common.Hash
	for i := 0; i < RequestSize; i++ {
		h := common.BytesToHash([]byte{byte(i)})
		hashes = append(hashes, h)
		q.Push(h)
	}

	onDeck := q.popOnDeck(RequestSize)
	require.Len(t, onDeck, RequestSize)
	require.Equal(t, 0, q.Len())

	q.requeue(onDeck)
	require.Equal(t, RequestSize, q.Len())
}
