// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package rlp implements just enough of the recursive-length-prefix
// encoding used by the Merkle-Patricia trie to recover the shape of a
// decoded node: a byte string, or a list of items. It intentionally does
// not reproduce a full Stream/Kind reflective decoder (see DESIGN.md)
// because the only consumer in this module, the trie node child
// extractor, needs nothing beyond "is this a list, and what strings does it
// contain".
package rlp

import "errors"

// ErrMalformed is returned for any input that is not well-formed RLP.
var ErrMalformed = errors.New("rlp: malformed input")

// Decode parses the RLP encoding at the start of data and returns either a
// []byte (for a string item) or a []interface{} (for a list item, whose
// elements are themselves []byte or []interface{}). It does not require
// that data be consumed exactly to the end by the caller's interpretation;
// Decode itself errors if trailing bytes remain.
func Decode(data []byte) (interface{}, error) {
	val, rest, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrMalformed
	}
	return val, nil
}

func decodeValue(data []byte) (val interface{}, rest []byte, err error) {
	if len(data) == 0 {
		return nil, nil, ErrMalformed
	}
	b0 := data[0]
	switch {
	case b0 < 0x80:
		return data[0:1], data[1:], nil

	case b0 < 0xB8:
		size := int(b0 - 0x80)
		return splitString(data[1:], size)

	case b0 < 0xC0:
		lenOfLen := int(b0 - 0xB7)
		size, tail, err := decodeLength(data[1:], lenOfLen)
		if err != nil {
			return nil, nil, err
		}
		return splitString(tail, size)

	case b0 < 0xF8:
		size := int(b0 - 0xC0)
		return splitList(data[1:], size)

	default:
		lenOfLen := int(b0 - 0xF7)
		size, tail, err := decodeLength(data[1:], lenOfLen)
		if err != nil {
			return nil, nil, err
		}
		return splitList(tail, size)
	}
}

func decodeLength(data []byte, lenOfLen int) (size int, rest []byte, err error) {
	if lenOfLen == 0 || len(data) < lenOfLen {
		return 0, nil, ErrMalformed
	}
	for _, b := range data[:lenOfLen] {
		size = size<<8 | int(b)
	}
	if size < 0 {
		return 0, nil, ErrMalformed
	}
	return size, data[lenOfLen:], nil
}

func splitString(data []byte, size int) (val interface{}, rest []byte, err error) {
	if len(data) < size {
		return nil, nil, ErrMalformed
	}
	return data[:size:size], data[size:], nil
}

func splitList(data []byte, size int) (val interface{}, rest []byte, err error) {
	if len(data) < size {
		return nil, nil, ErrMalformed
	}
	body, rest := data[:size], data[size:]

	var items []interface{}
	for len(body) > 0 {
		var item interface{}
		item, body, err = decodeValue(body)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, rest, nil
}
