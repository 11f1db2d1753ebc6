// Copyright 2021 by the Authors
// This file is part of the go-lumen library.
//
// The go-lumen library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-lumen library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-lumen library. If not, see <http://www.gnu.org/licenses/>.

package light

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/lumen-chain/go-lumen/chaindb"
	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/core/rawdb"
	"github.com/lumen-chain/go-lumen/core/types"
)

// chainDataCacheLimit bounds the number of chain data entries kept in memory
// in front of the backing store.
const chainDataCacheLimit = 512

// ChainStore maps block hashes to their chain data on top of a key-value
// store. Writes go through the chain's serializer; point reads may interleave
// with a write and observe the last committed value.
type ChainStore struct {
	db    chaindb.KeyValueStore
	cache *lru.Cache // hash -> *types.ChainData
}

// ChainEntry pairs a block hash with the chain data to store under it. It is
// the unit of the atomic multi-write used while rebranching.
type ChainEntry struct {
	Hash common.Hash
	Data *types.ChainData
}

// NewChainStore creates a chain store around a backing key-value store.
func NewChainStore(db chaindb.KeyValueStore) *ChainStore {
	cache, _ := lru.New(chainDataCacheLimit)
	return &ChainStore{db: db, cache: cache}
}

// Get returns the chain data stored under the given block hash, or nil when
// the hash is unknown. Callers must not mutate the result; rebranching works
// on copies.
func (s *ChainStore) Get(hash common.Hash) *types.ChainData {
	if cached, ok := s.cache.Get(hash); ok {
		return cached.(*types.ChainData)
	}
	cd := rawdb.ReadChainData(s.db, hash)
	if cd != nil {
		s.cache.Add(hash, cd)
	}
	return cd
}

// GetBlock returns the block stored under the given hash, or nil.
func (s *ChainStore) GetBlock(hash common.Hash) *types.Block {
	if cd := s.Get(hash); cd != nil {
		return cd.Block
	}
	return nil
}

// Put inserts or overwrites the chain data under the given block hash.
func (s *ChainStore) Put(hash common.Hash, cd *types.ChainData) error {
	if err := rawdb.WriteChainData(s.db, hash, cd); err != nil {
		return err
	}
	s.cache.Add(hash, cd)
	return nil
}

// WriteBatch commits a set of entries as one atomic write. Either every entry
// becomes visible or, on error, none does. The cache picks up the new values
// only after a successful commit.
func (s *ChainStore) WriteBatch(entries []ChainEntry) error {
	batch := s.db.NewBatch()
	for _, entry := range entries {
		if err := rawdb.WriteChainData(batch, entry.Hash, entry.Data); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	for _, entry := range entries {
		s.cache.Add(entry.Hash, entry.Data)
	}
	return nil
}

// Truncate removes every chain data entry from the store. It runs before a
// non-grafting proof adoption replaces the whole local view.
func (s *ChainStore) Truncate() error {
	batch := s.db.NewBatch()
	it := s.db.NewIterator(rawdb.ChainDataPrefix(), nil)
	defer it.Release()
	for it.Next() {
		if err := batch.Delete(it.Key()); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}
