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
)

// rlpString/rlpList are tiny test-local encoders, the inverse of the
// decoder under test, used only to synthesize fixtures.
func rlpString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{byte(0x80 + len(b))}, b...)
	}
	panic("fixture too large for short-string encoding")
}

func rlpList(items [][]byte) []byte {
	var body []byte
	for _, it := range items {
		body = append(body, it...)
	}
	if len(body) < 56 {
		return append([]byte{byte(0xC0 + len(body))}, body...)
	}
	var size []byte
	for n := len(body); n > 0; n >>= 8 {
		size = append([]byte{byte(n)}, size...)
	}
	out := append([]byte{byte(0xF7 + len(size))}, size...)
	return append(out, body...)
}

func hashBytes(seed byte) []byte {
	b := make([]byte, 32)
	for i := range b {
		b[i] = seed
	}
	return b
}

func TestDecodeChildren_BranchNode(t *testing.T) {
	items := make([][]byte, 17)
	want := make(map[common.Hash]struct{}, 16)
	for i := 0; i < 16; i++ {
		h := hashBytes(byte(i + 1))
		items[i] = rlpString(h)
		want[common.BytesToHash(h)] = struct{}{}
	}
	items[16] = rlpString([]byte{}) // value slot, empty

	children := decodeChildren(rlpList(items))
	require.Equal(t, want, children)
}

func TestDecodeChildren_ExtensionNode(t *testing.T) {
	path := rlpString([]byte{0x12, 0x34})
	child := hashBytes(7)
	blob := rlpList([][]byte{path, rlpString(child)})

	children := decodeChildren(blob)
	require.Equal(t, map[common.Hash]struct{}{common.BytesToHash(child): {}}, children)
}

func TestDecodeChildren_LeafWithInlinedValue(t *testing.T) {
	path := rlpString([]byte{0x20, 0x01})
	value := rlpString([]byte("short-value"))
	blob := rlpList([][]byte{path, value})

	children := decodeChildren(blob)
	require.Empty(t, children)
}

func TestDecodeChildren_UndecodableBlobYieldsEmptySet(t *testing.T) {
	// Not valid RLP: a single-byte length header claiming more bytes than
	// are present.
	garbage := []byte{0xB8, 0xFF, 0x01, 0x02}

	children := decodeChildren(garbage)
	require.Empty(t, children)
}

func TestDecodeChildren_BranchIgnoresShortSlots(t *testing.T) {
	items := make([][]byte, 17)
	for i := 0; i < 16; i++ {
		items[i] = rlpString([]byte{byte(i)}) // inlined, not hash-shaped
	}
	items[16] = rlpString([]byte{})

	children := decodeChildren(rlpList(items))
	require.Empty(t, children)
}
