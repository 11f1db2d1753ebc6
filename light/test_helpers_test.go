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

	"github.com/lumen-chain/go-lumen/chaindb/memorydb"
	"github.com/lumen-chain/go-lumen/consensus"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/params"
)

// testChainConfig shrinks the proof parameters so tests stay quick: proofs
// carry a five-header dense suffix and score levels from two superblocks up.
func testChainConfig() *params.ChainConfig {
	return &params.ChainConfig{
		NetworkID: big.NewInt(1337),
		Nipopow:   &params.NipopowConfig{K: 5, M: 2},
	}
}

// newTestChain spins up a light chain over a fresh in-memory store.
func newTestChain(t *testing.T, engine consensus.Engine) *LightChain {
	t.Helper()
	chain, err := NewLightChain(memorydb.New(), testChainConfig(), engine)
	if err != nil {
		t.Fatalf("failed to create light chain: %v", err)
	}
	t.Cleanup(chain.Stop)
	return chain
}

// makeChild assembles an unsealed child header of parent whose target is
// MaxTarget shifted down by targetShift. Wider shifts mean harder blocks.
func makeChild(parent *types.Block, targetShift uint) *types.Header {
	target := new(big.Int).Rsh(types.MaxTarget, targetShift)
	return &types.Header{
		ParentHash:    parent.Hash(),
		InterlinkHash: parent.NextInterlink(target).Hash(),
		Number:        parent.Number() + 1,
		Time:          parent.Time() + params.BlockTime,
		NBits:         types.TargetToCompact(target),
	}
}

// blockOf pairs a header with the interlink derived from its parent, the way
// the append path stores it.
func blockOf(parent *types.Block, header *types.Header) *types.Block {
	return types.NewBlock(header, parent.NextInterlink(header.Target()))
}

// mineChild assembles and seals a child header at the parent's target.
func mineChild(t *testing.T, parent *types.Block) *types.Block {
	t.Helper()
	header := makeChild(parent, 0)
	target := header.Target()
	for nonce := uint64(0); ; nonce++ {
		header.Nonce = types.EncodeNonce(nonce)
		if header.Hash().Big().Cmp(target) <= 0 {
			return blockOf(parent, header)
		}
		if nonce > 1<<26 {
			t.Fatal("mining did not converge")
		}
	}
}

// mineChain mines length linked blocks on top of parent at the easiest target.
func mineChain(t *testing.T, parent *types.Block, length int) types.Blocks {
	t.Helper()
	chain := make(types.Blocks, 0, length)
	for i := 0; i < length; i++ {
		block := mineChild(t, parent)
		chain = append(chain, block)
		parent = block
	}
	return chain
}

// proofOf splits a chain rooted at genesis into a dense prefix and a k-header
// suffix.
func proofOf(genesis *types.Block, chain types.Blocks, k int) *types.ChainProof {
	full := append(types.Blocks{genesis}, chain...)
	cut := len(full) - k
	headers := make([]*types.Header, 0, k)
	for _, b := range full[cut:] {
		headers = append(headers, b.Header())
	}
	return types.NewChainProof(full[:cut], headers)
}

// collectHeads drains all buffered head events from ch.
func collectHeads(ch chan ChainHeadEvent) []ChainHeadEvent {
	var evs []ChainHeadEvent
	for {
		select {
		case ev := <-ch:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}
