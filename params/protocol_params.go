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

package params

const (
	// MaxTargetBits is the exponent of the maximum (easiest) proof-of-work
	// target. A block hash interpreted as an integer must not exceed
	// 2^MaxTargetBits for the chain to accept it under any difficulty.
	MaxTargetBits uint = 240

	// BlockTime is the desired spacing between consecutive blocks, in seconds.
	BlockTime uint64 = 60

	// DifficultyBlockWindow is the number of trailing blocks the retarget
	// algorithm averages over. Heads shorter than the window cannot be
	// retargeted yet.
	DifficultyBlockWindow uint64 = 120

	// DifficultyMaxAdjustmentFactor bounds how far a single retarget may move
	// the target in either direction.
	DifficultyMaxAdjustmentFactor uint64 = 2

	// DenseSuffixLength is the protocol parameter K: the number of trailing
	// headers a chain proof must carry in its dense suffix. Proof producers
	// and consumers must agree on it.
	DenseSuffixLength = 30

	// SuperblockMin is the protocol parameter M: the minimum number of
	// superblocks a proof prefix must accumulate at a level before the scoring
	// rule counts that level.
	SuperblockMin = 20

	// AllowedFutureBlockTime is the maximum clock drift tolerated on incoming
	// block timestamps, in seconds.
	AllowedFutureBlockTime uint64 = 15
)
