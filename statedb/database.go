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

// Package statedb defines the content-addressed key/value store contract
// that the backfill engine persists trie nodes into, and two
// implementations of it: a LevelDB-backed store for production use and an
// in-memory store for tests.
package statedb

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("statedb: not found")

// KeyValueReader wraps the Has and Get method of a backing data store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	Put(key []byte, value []byte) error
}

// Batch is a write-only batch that commits its contents atomically when
// Write is called.
type Batch interface {
	KeyValueWriter
	Write() error
	ValueSize() int
	Reset()
}

// Batcher wraps the NewBatch method of a backing data store.
type Batcher interface {
	NewBatch() Batch
}

// Database is the full store contract the engine depends on: point lookups
// plus atomic multi-put batches.
type Database interface {
	KeyValueReader
	KeyValueWriter
	Batcher
	Close() error
}
