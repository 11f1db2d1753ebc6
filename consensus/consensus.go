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

// Package consensus implements different Lumen consensus engines.
package consensus

import (
	"math/big"

	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/params"
)

// ChainReader defines a small collection of methods needed to access the local
// blockchain during header verification.
type ChainReader interface {
	// Config retrieves the blockchain's chain configuration.
	Config() *params.ChainConfig

	// GetBlock retrieves a block from the database by hash. Blocks stored for
	// retrieval only are returned as well; callers needing an extendable
	// ancestor must check separately.
	GetBlock(hash common.Hash) *types.Block
}

// Engine is an algorithm-agnostic consensus engine for light chains.
type Engine interface {
	// VerifyHeader checks whether a header conforms to the consensus rules
	// given its already-validated parent block. On success it returns the
	// assembled block, carrying the interlink the header committed to.
	VerifyHeader(chain ChainReader, header *types.Header, parent *types.Block) (*types.Block, error)

	// CalcNextTarget computes the difficulty target a child of the given
	// parent must meet. It returns ErrInsufficientWindow while the chain is
	// too short, or its tail too sparse, for the retarget window.
	CalcNextTarget(chain ChainReader, parent *types.Block) (*big.Int, error)
}
