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

package rawdb

import (
	"encoding/json"

	"github.com/lumen-chain/go-lumen/chaindb"
	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/log"
	"github.com/lumen-chain/go-lumen/params"
)

// ReadHeadHash retrieves the hash of the current main-chain head.
func ReadHeadHash(db chaindb.KeyValueReader) common.Hash {
	data, _ := db.Get(headHashKey)
	if len(data) == 0 {
		return common.Hash{}
	}
	return common.BytesToHash(data)
}

// WriteHeadHash stores the hash of the current main-chain head.
func WriteHeadHash(db chaindb.KeyValueWriter, hash common.Hash) {
	if err := db.Put(headHashKey, hash.Bytes()); err != nil {
		log.Crit("Failed to store last block's hash", "err", err)
	}
}

// ReadChainData retrieves the chain data stored under the given block hash,
// or nil if none is present.
func ReadChainData(db chaindb.KeyValueReader, hash common.Hash) *types.ChainData {
	data, _ := db.Get(chainDataKey(hash))
	if len(data) == 0 {
		return nil
	}
	cd := new(types.ChainData)
	if err := json.Unmarshal(data, cd); err != nil {
		log.Error("Invalid chain data", "hash", hash, "err", err)
		return nil
	}
	return cd
}

// WriteChainData stores chain data under its block hash.
func WriteChainData(db chaindb.KeyValueWriter, hash common.Hash, cd *types.ChainData) error {
	data, err := json.Marshal(cd)
	if err != nil {
		return err
	}
	return db.Put(chainDataKey(hash), data)
}

// DeleteChainData removes the chain data stored under the given block hash.
func DeleteChainData(db chaindb.KeyValueWriter, hash common.Hash) error {
	return db.Delete(chainDataKey(hash))
}

// ReadChainConfig retrieves the chain config keyed by the genesis hash.
func ReadChainConfig(db chaindb.KeyValueReader, hash common.Hash) *params.ChainConfig {
	data, _ := db.Get(configKey(hash))
	if len(data) == 0 {
		return nil
	}
	var config params.ChainConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Error("Invalid chain config JSON", "hash", hash, "err", err)
		return nil
	}
	return &config
}

// WriteChainConfig writes the chain config keyed by the genesis hash.
func WriteChainConfig(db chaindb.KeyValueWriter, hash common.Hash, cfg *params.ChainConfig) {
	if cfg == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Crit("Failed to JSON encode chain config", "err", err)
	}
	if err := db.Put(configKey(hash), data); err != nil {
		log.Crit("Failed to store chain config", "err", err)
	}
}
