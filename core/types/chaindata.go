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

package types

import (
	"encoding/json"
	"errors"
	"math/big"
)

// retrievalOnlySentinel marks chain data that may be looked up but never
// extended. It replaces both accumulated totals at once.
var retrievalOnlySentinel = big.NewInt(-1)

// ChainData is the per-block metadata the chain keeps alongside every stored
// block: the accumulated totals of the chain ending at the block and the flag
// marking membership in the currently selected main chain.
type ChainData struct {
	Block *Block

	// TotalDifficulty is the sum of claimed block difficulties from the chain
	// root to this block, or -1 for blocks stored for retrieval only.
	TotalDifficulty *big.Int

	// TotalWork is the sum of the work actually expended on each block,
	// inferred from the block hashes, with the same -1 convention.
	TotalWork *big.Int

	// OnMainChain is set while the block lies on the currently selected main
	// chain. It flips during rebranching and at no other time.
	OnMainChain bool
}

// NewChainData wraps a block with its accumulated totals.
func NewChainData(block *Block, totalDifficulty, totalWork *big.Int, onMainChain bool) *ChainData {
	return &ChainData{
		Block:           block,
		TotalDifficulty: totalDifficulty,
		TotalWork:       totalWork,
		OnMainChain:     onMainChain,
	}
}

// NewRetrievalOnlyChainData wraps a block that is stored so its hash resolves,
// but that must never serve as a predecessor of new blocks.
func NewRetrievalOnlyChainData(block *Block, onMainChain bool) *ChainData {
	return &ChainData{
		Block:           block,
		TotalDifficulty: new(big.Int).Set(retrievalOnlySentinel),
		TotalWork:       new(big.Int).Set(retrievalOnlySentinel),
		OnMainChain:     onMainChain,
	}
}

// Extendable reports whether new blocks may build on top of this one. Blocks
// stored for retrieval only are terminal leaves.
func (cd *ChainData) Extendable() bool {
	return cd.TotalDifficulty != nil && cd.TotalDifficulty.Sign() > 0
}

// WithMainChain returns a copy of cd with the main-chain flag set to the given
// value. The copy shares the block but not the flag, so concurrently cached
// instances stay untouched.
func (cd *ChainData) WithMainChain(onMainChain bool) *ChainData {
	return &ChainData{
		Block:           cd.Block,
		TotalDifficulty: cd.TotalDifficulty,
		TotalWork:       cd.TotalWork,
		OnMainChain:     onMainChain,
	}
}

// chainDataJSON is the storage encoding of ChainData.
type chainDataJSON struct {
	Block           *Block   `json:"block"`
	TotalDifficulty *big.Int `json:"totalDifficulty"`
	TotalWork       *big.Int `json:"totalWork"`
	OnMainChain     bool     `json:"onMainChain"`
}

// MarshalJSON encodes the chain data for storage.
func (cd *ChainData) MarshalJSON() ([]byte, error) {
	return json.Marshal(&chainDataJSON{
		Block:           cd.Block,
		TotalDifficulty: cd.TotalDifficulty,
		TotalWork:       cd.TotalWork,
		OnMainChain:     cd.OnMainChain,
	})
}

// UnmarshalJSON decodes chain data from its storage encoding.
func (cd *ChainData) UnmarshalJSON(input []byte) error {
	var dec chainDataJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Block == nil {
		return errors.New("missing block")
	}
	if dec.TotalDifficulty == nil || dec.TotalWork == nil {
		return errors.New("missing accumulated totals")
	}
	cd.Block = dec.Block
	cd.TotalDifficulty = dec.TotalDifficulty
	cd.TotalWork = dec.TotalWork
	cd.OnMainChain = dec.OnMainChain
	return nil
}
