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
	"github.com/probeum/beamfill/common"
	"github.com/probeum/beamfill/rlp"
)

// decodeChildren parses the raw bytes of a persisted trie node and returns
// the set of 32-byte child hashes to enqueue for further walking. It never
// fails upward: undecodable blobs (most commonly contract bytecode stored
// under its own hash) simply yield an empty set, so the walk carries on.
func decodeChildren(encodedNode []byte) map[common.Hash]struct{} {
	decoded, err := rlp.Decode(encodedNode)
	if err != nil {
		return nil
	}
	items, ok := decoded.([]interface{})
	if !ok {
		return nil
	}

	switch len(items) {
	case 17:
		// Branch node: slots 0..15 are child hashes or inlined values,
		// slot 16 is a value. Only full-length slots are hashes.
		children := make(map[common.Hash]struct{})
		for _, slot := range items[:16] {
			b, ok := slot.([]byte)
			if !ok || len(b) != common.HashLength {
				continue
			}
			children[common.BytesToHash(b)] = struct{}{}
		}
		return children

	case 2:
		// Extension or leaf node: [path, value]. Only treat the second
		// element as a child hash if it is hash-shaped; a leaf's inlined
		// value is ignored.
		b, ok := items[1].([]byte)
		if !ok || len(b) != common.HashLength {
			return nil
		}
		return map[common.Hash]struct{}{common.BytesToHash(b): {}}

	default:
		return nil
	}
}
