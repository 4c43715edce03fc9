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

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/probeum/beamfill/log"
)

// LevelDBDatabase is a goleveldb-backed Database with a bounded fastcache
// clean-read cache layered in front of it.
type LevelDBDatabase struct {
	db     *leveldb.DB
	cleans *fastcache.Cache // nil disables the clean cache
}

// OpenLevelDB opens (or creates) a LevelDB store at path, with a clean-read
// cache of cacheSizeMB megabytes. A cacheSizeMB of 0 disables the cache.
func OpenLevelDB(path string, cacheSizeMB int) (*LevelDBDatabase, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 64,
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	ldb := &LevelDBDatabase{db: db}
	if cacheSizeMB > 0 {
		ldb.cleans = fastcache.New(cacheSizeMB * 1024 * 1024)
	}
	return ldb, nil
}

func (d *LevelDBDatabase) Has(key []byte) (bool, error) {
	if d.cleans != nil && d.cleans.Has(key) {
		return true, nil
	}
	return d.db.Has(key, nil)
}

func (d *LevelDBDatabase) Get(key []byte) ([]byte, error) {
	if d.cleans != nil {
		if v := d.cleans.Get(nil, key); v != nil {
			return v, nil
		}
	}
	v, err := d.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.cleans != nil {
		d.cleans.Set(key, v)
	}
	return v, nil
}

func (d *LevelDBDatabase) Put(key, value []byte) error {
	if err := d.db.Put(key, value, nil); err != nil {
		return err
	}
	if d.cleans != nil {
		d.cleans.Set(key, value)
	}
	return nil
}

func (d *LevelDBDatabase) NewBatch() Batch {
	return &levelDBBatch{db: d, b: new(leveldb.Batch)}
}

func (d *LevelDBDatabase) Close() error {
	return d.db.Close()
}

type levelDBBatch struct {
	db   *LevelDBDatabase
	b    *leveldb.Batch
	size int
	puts []kv
}

type kv struct{ k, v []byte }

func (b *levelDBBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.puts = append(b.puts, kv{key, value})
	b.size += len(key) + len(value)
	return nil
}

func (b *levelDBBatch) ValueSize() int { return b.size }

func (b *levelDBBatch) Reset() {
	b.b.Reset()
	b.puts = b.puts[:0]
	b.size = 0
}

// Write commits the batch atomically, then warms the clean cache the same
// way individual Puts do.
func (b *levelDBBatch) Write() error {
	if err := b.db.db.Write(b.b, nil); err != nil {
		log.Error("Failed to write trie node batch", "err", err)
		return err
	}
	if b.db.cleans != nil {
		for _, e := range b.puts {
			b.db.cleans.Set(e.k, e.v)
		}
	}
	return nil
}
