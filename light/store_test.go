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
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumen-chain/go-lumen/chaindb/memorydb"
	"github.com/lumen-chain/go-lumen/core/types"
)

func testChainData(seed uint64) *types.ChainData {
	interlink := &types.Interlink{}
	block := types.NewBlock(&types.Header{
		InterlinkHash: interlink.Hash(),
		Number:        seed,
		Time:          1609459200 + seed,
		NBits:         types.TargetToCompact(types.MaxTarget),
		Nonce:         types.EncodeNonce(seed),
	}, interlink)
	return types.NewChainData(block, big.NewInt(int64(seed+1)), big.NewInt(int64(seed+1)), false)
}

func TestChainStoreRoundtrip(t *testing.T) {
	store := NewChainStore(memorydb.New())

	cd := testChainData(1)
	hash := cd.Block.Hash()
	require.Nil(t, store.Get(hash))
	require.NoError(t, store.Put(hash, cd))

	got := store.Get(hash)
	require.NotNil(t, got)
	require.Equal(t, hash, got.Block.Hash())
	require.Zero(t, got.TotalDifficulty.Cmp(cd.TotalDifficulty))

	require.NotNil(t, store.GetBlock(hash))
	require.Nil(t, store.GetBlock(testChainData(2).Block.Hash()))
}

func TestChainStoreSurvivesCacheEviction(t *testing.T) {
	db := memorydb.New()
	store := NewChainStore(db)

	cd := testChainData(1)
	hash := cd.Block.Hash()
	require.NoError(t, store.Put(hash, cd))

	// A fresh store over the same database must read the entry back from disk.
	reloaded := NewChainStore(db)
	got := reloaded.Get(hash)
	require.NotNil(t, got)
	require.Equal(t, hash, got.Block.Hash())
}

func TestChainStoreWriteBatch(t *testing.T) {
	store := NewChainStore(memorydb.New())

	var entries []ChainEntry
	for i := uint64(0); i < 4; i++ {
		cd := testChainData(i)
		entries = append(entries, ChainEntry{Hash: cd.Block.Hash(), Data: cd})
	}
	require.NoError(t, store.WriteBatch(entries))
	for _, entry := range entries {
		require.NotNil(t, store.Get(entry.Hash))
	}
}

func TestChainStoreTruncate(t *testing.T) {
	store := NewChainStore(memorydb.New())

	for i := uint64(0); i < 4; i++ {
		cd := testChainData(i)
		require.NoError(t, store.Put(cd.Block.Hash(), cd))
	}
	require.NoError(t, store.Truncate())
	for i := uint64(0); i < 4; i++ {
		require.Nil(t, store.Get(testChainData(i).Block.Hash()))
	}
}
