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
	"math/big"

	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/params"
)

var (
	// MaxTarget is the easiest admissible proof-of-work target. A block hash,
	// interpreted as a big-endian integer, must be at most the header target,
	// which in turn must be at most MaxTarget.
	MaxTarget = new(big.Int).Lsh(big.NewInt(1), params.MaxTargetBits)

	big1 = big.NewInt(1)
)

// HashToTarget interprets a block hash as a proof-of-work target, clamped to
// MaxTarget. The lower the hash, the harder the equivalent target.
func HashToTarget(hash common.Hash) *big.Int {
	target := hash.Big()
	if target.Cmp(MaxTarget) > 0 {
		return new(big.Int).Set(MaxTarget)
	}
	if target.Sign() == 0 {
		return big.NewInt(1)
	}
	return target
}

// TargetToDifficulty converts a target to its difficulty: the expected number
// of hash attempts, relative to MaxTarget, needed to find a conforming hash.
func TargetToDifficulty(target *big.Int) *big.Int {
	if target.Sign() <= 0 {
		return new(big.Int).Set(MaxTarget)
	}
	diff := new(big.Int).Div(MaxTarget, target)
	if diff.Sign() == 0 {
		return big.NewInt(1)
	}
	return diff
}

// RealDifficulty returns the work actually expended on a block, inferred from
// its hash rather than from its claimed target.
func RealDifficulty(hash common.Hash) *big.Int {
	return TargetToDifficulty(HashToTarget(hash))
}

// TargetDepth returns the superblock depth of a target: the number of powers
// of two by which it undercuts MaxTarget. Depth 0 is an ordinary block target,
// each additional level is exponentially rarer.
func TargetDepth(target *big.Int) int {
	if target.Sign() <= 0 {
		return int(params.MaxTargetBits)
	}
	depth := int(params.MaxTargetBits) - (target.BitLen() - 1)
	if depth < 0 {
		return 0
	}
	return depth
}

// IsValidTarget reports whether target lies in the admissible range (0, MaxTarget].
func IsValidTarget(target *big.Int) bool {
	return target != nil && target.Sign() > 0 && target.Cmp(MaxTarget) <= 0
}

// TargetToCompact encodes a target into its 32-bit compact form. The encoding
// stores a 23-bit mantissa and a byte-granular exponent, mirroring the scheme
// proof-of-work chains have used since Bitcoin.
func TargetToCompact(target *big.Int) uint32 {
	// No negative targets exist in this protocol; the sign bit stays clear.
	if target.Sign() <= 0 {
		return 0
	}
	var (
		size     = uint32((target.BitLen() + 7) / 8)
		mantissa uint32
	)
	if size <= 3 {
		mantissa = uint32(target.Int64()) << (8 * (3 - size))
	} else {
		tn := new(big.Int).Rsh(target, 8*uint(size-3))
		mantissa = uint32(tn.Int64())
	}
	// Normalize the mantissa when its high bit is set, since the compact form
	// reserves that bit for the sign.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}
	return size<<24 | mantissa
}

// CompactToTarget decodes a 32-bit compact form back into a full target.
// Malformed encodings (sign bit set, zero mantissa) decode to zero, which no
// validity check accepts.
func CompactToTarget(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	if compact&0x00800000 != 0 || mantissa == 0 {
		return new(big.Int)
	}
	size := compact >> 24
	if size <= 3 {
		return big.NewInt(int64(mantissa >> (8 * (3 - size))))
	}
	return new(big.Int).Lsh(big.NewInt(int64(mantissa)), 8*uint(size-3))
}
