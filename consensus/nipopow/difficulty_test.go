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

package nipopow

import (
	"errors"
	"math/big"
	"testing"

	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/consensus"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/params"
)

// testChainReader serves blocks from a map, standing in for the light chain
// store.
type testChainReader struct {
	config *params.ChainConfig
	blocks map[common.Hash]*types.Block
}

func newTestChainReader() *testChainReader {
	return &testChainReader{
		config: params.AllNipopowProtocolChanges,
		blocks: make(map[common.Hash]*types.Block),
	}
}

func (r *testChainReader) Config() *params.ChainConfig { return r.config }

func (r *testChainReader) GetBlock(hash common.Hash) *types.Block { return r.blocks[hash] }

func (r *testChainReader) add(block *types.Block) *types.Block {
	r.blocks[block.Hash()] = block
	return block
}

// buildChain links n+1 unsealed blocks starting at height 0 with the given
// spacing and target, registering them with the reader.
func buildChain(r *testChainReader, n int, spacing uint64, target *big.Int) []*types.Block {
	interlink := &types.Interlink{}
	genesis := types.NewBlock(&types.Header{
		InterlinkHash: interlink.Hash(),
		Number:        0,
		Time:          1609459200,
		NBits:         types.TargetToCompact(target),
	}, interlink)
	chain := []*types.Block{r.add(genesis)}

	parent := genesis
	for i := 0; i < n; i++ {
		link := parent.NextInterlink(target)
		block := types.NewBlock(&types.Header{
			ParentHash:    parent.Hash(),
			InterlinkHash: link.Hash(),
			Number:        parent.Number() + 1,
			Time:          parent.Time() + spacing,
			NBits:         types.TargetToCompact(target),
		}, link)
		chain = append(chain, r.add(block))
		parent = block
	}
	return chain
}

func TestCalcNextTargetInsufficientWindow(t *testing.T) {
	engine := NewFaker()
	reader := newTestChainReader()
	chain := buildChain(reader, int(params.DifficultyBlockWindow)-2, params.BlockTime, types.MaxTarget)

	if _, err := engine.CalcNextTarget(reader, chain[len(chain)-1]); !errors.Is(err, consensus.ErrInsufficientWindow) {
		t.Fatalf("short chain: got %v, want %v", err, consensus.ErrInsufficientWindow)
	}
}

func TestCalcNextTargetSteadyState(t *testing.T) {
	engine := NewFaker()
	reader := newTestChainReader()
	target := new(big.Int).Rsh(types.MaxTarget, 8)
	chain := buildChain(reader, int(params.DifficultyBlockWindow), params.BlockTime, target)

	next, err := engine.CalcNextTarget(reader, chain[len(chain)-1])
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	// Perfect spacing keeps the target unchanged.
	if next.Cmp(target) != 0 {
		t.Errorf("steady state retarget: got %v, want %v", next, target)
	}
}

func TestCalcNextTargetSlowChain(t *testing.T) {
	engine := NewFaker()
	reader := newTestChainReader()
	target := new(big.Int).Rsh(types.MaxTarget, 8)
	// Blocks arriving at twice the desired spacing ease the target, bounded
	// by the maximum adjustment factor.
	chain := buildChain(reader, int(params.DifficultyBlockWindow), 2*params.BlockTime, target)

	next, err := engine.CalcNextTarget(reader, chain[len(chain)-1])
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	want := new(big.Int).Lsh(target, 1)
	if next.Cmp(want) != 0 {
		t.Errorf("slow chain retarget: got %v, want %v", next, want)
	}
}

func TestCalcNextTargetFastChain(t *testing.T) {
	engine := NewFaker()
	reader := newTestChainReader()
	target := new(big.Int).Rsh(types.MaxTarget, 8)
	chain := buildChain(reader, int(params.DifficultyBlockWindow), params.BlockTime/4, target)

	next, err := engine.CalcNextTarget(reader, chain[len(chain)-1])
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	// A four-fold speedup is clamped to the maximum adjustment factor.
	want := new(big.Int).Rsh(target, 1)
	if next.Cmp(want) != 0 {
		t.Errorf("fast chain retarget: got %v, want %v", next, want)
	}
}

func TestCalcNextTargetCapped(t *testing.T) {
	engine := NewFaker()
	reader := newTestChainReader()
	// A slow chain already at the easiest target cannot ease further.
	chain := buildChain(reader, int(params.DifficultyBlockWindow), 2*params.BlockTime, types.MaxTarget)

	next, err := engine.CalcNextTarget(reader, chain[len(chain)-1])
	if err != nil {
		t.Fatalf("retarget failed: %v", err)
	}
	if next.Cmp(types.MaxTarget) != 0 {
		t.Errorf("capped retarget: got %v, want MaxTarget", next)
	}
}

func TestCalcNextTargetSparseTail(t *testing.T) {
	engine := NewFaker()
	reader := newTestChainReader()
	chain := buildChain(reader, int(params.DifficultyBlockWindow), params.BlockTime, types.MaxTarget)

	// Remove a block in the middle of the window, as happens right after a
	// proof adoption truncated the dense history.
	delete(reader.blocks, chain[2].Hash())

	if _, err := engine.CalcNextTarget(reader, chain[len(chain)-1]); !errors.Is(err, consensus.ErrInsufficientWindow) {
		t.Fatalf("sparse tail: got %v, want %v", err, consensus.ErrInsufficientWindow)
	}
}
