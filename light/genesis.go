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
	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/core/types"
)

// genesisTime is the timestamp of the mainnet genesis block.
const genesisTime = 1609459200 // 2021-01-01 00:00:00 UTC

// DefaultGenesisBlock returns the Lumen main network genesis block. The
// genesis carries the easiest admissible target and an empty interlink; it is
// installed directly and never validated.
func DefaultGenesisBlock() *types.Block {
	interlink := &types.Interlink{}
	header := &types.Header{
		ParentHash:    common.Hash{},
		InterlinkHash: interlink.Hash(),
		Number:        0,
		Time:          genesisTime,
		NBits:         types.TargetToCompact(types.MaxTarget),
		Nonce:         types.EncodeNonce(0),
	}
	return types.NewBlock(header, interlink)
}
