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

package statedb

import "sync"

// MemoryDatabase is a trivial in-memory Database, used by tests in place of
// LevelDBDatabase.
type MemoryDatabase struct {
	mu sync.RWMutex
	kv map[string][]byte
}

// NewMemoryDatabase returns an empty MemoryDatabase.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{kv: make(map[string][]byte)}
}

func (d *MemoryDatabase) Has(key []byte) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.kv[string(key)]
	return ok, nil
}

func (d *MemoryDatabase) Get(key []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.kv[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (d *MemoryDatabase) Put(key, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	d.kv[string(key)] = cp
	return nil
}

func (d *MemoryDatabase) NewBatch() Batch {
	return &memoryBatch{db: d}
}

func (d *MemoryDatabase) Close() error { return nil }

type memoryBatch struct {
	db   *MemoryDatabase
	puts []kv
	size int
}

func (b *memoryBatch) Put(key, value []byte) error {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	b.puts = append(b.puts, kv{k, v})
	b.size += len(k) + len(v)
	return nil
}

func (b *memoryBatch) ValueSize() int { return b.size }

func (b *memoryBatch) Reset() {
	b.puts = b.puts[:0]
	b.size = 0
}

func (b *memoryBatch) Write() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	for _, e := range b.puts {
		b.db.kv[string(e.k)] = e.v
	}
	return nil
}
