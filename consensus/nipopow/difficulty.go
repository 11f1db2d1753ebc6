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
	"math/big"

	"github.com/lumen-chain/go-lumen/consensus"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/params"
)

// CalcNextTarget is the difficulty adjustment algorithm. It scales the
// parent's target by the ratio of actual to expected block spacing over the
// trailing retarget window, bounded by the maximum adjustment factor.
func (n *Nipopow) CalcNextTarget(chain consensus.ChainReader, parent *types.Block) (*big.Int, error) {
	window := params.DifficultyBlockWindow
	if parent.Number()+1 < window {
		return nil, consensus.ErrInsufficientWindow
	}
	// Walk back to the block starting the window. The walk crosses exactly
	// window-1 parent links, so the spacing sample covers window-1 intervals.
	tail := parent
	for i := uint64(1); i < window; i++ {
		prev := chain.GetBlock(tail.ParentHash())
		if prev == nil {
			// The tail of the window is behind an adopted proof prefix; the
			// dense chain does not reach far enough back to retarget.
			return nil, consensus.ErrInsufficientWindow
		}
		tail = prev
	}
	var (
		actualTime   = new(big.Int).SetUint64(parent.Time() - tail.Time())
		expectedTime = new(big.Int).SetUint64((window - 1) * params.BlockTime)
		maxFactor    = new(big.Int).SetUint64(params.DifficultyMaxAdjustmentFactor)
	)
	if actualTime.Sign() <= 0 {
		actualTime = big.NewInt(1)
	}
	// nextTarget = parentTarget * actualTime / expectedTime
	parentTarget := parent.Target()
	nextTarget := new(big.Int).Mul(parentTarget, actualTime)
	nextTarget.Div(nextTarget, expectedTime)

	// Clamp the per-window swing to the maximum adjustment factor.
	if upper := new(big.Int).Mul(parentTarget, maxFactor); nextTarget.Cmp(upper) > 0 {
		nextTarget = upper
	}
	if lower := new(big.Int).Div(parentTarget, maxFactor); nextTarget.Cmp(lower) < 0 {
		nextTarget = lower
	}
	// Keep the result in the admissible range.
	if nextTarget.Cmp(types.MaxTarget) > 0 {
		nextTarget = new(big.Int).Set(types.MaxTarget)
	}
	if nextTarget.Sign() == 0 {
		nextTarget = big.NewInt(1)
	}
	// The compact form is what headers carry; round-trip through it so the
	// required target is exactly representable.
	return types.CompactToTarget(types.TargetToCompact(nextTarget)), nil
}
