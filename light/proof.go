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
	"errors"
	"fmt"
	"math/big"

	"github.com/lumen-chain/go-lumen/core/types"
)

var (
	errBadSuffixLength = errors.New("suffix length matches neither K nor the chain length")
	errSuffixInterlink = errors.New("suffix interlink commitment mismatch")
)

// verifyProof validates an incoming chain proof. Beyond the proof's internal
// consistency it checks the dense-suffix length against the protocol parameter
// K and replays the interlink derivation across the suffix. On success it
// returns the suffix assembled into blocks, ready for the append path.
func (lc *LightChain) verifyProof(proof *types.ChainProof) (types.Blocks, error) {
	if err := proof.Verify(); err != nil {
		return nil, err
	}
	// The suffix must span exactly K headers, unless the whole chain above
	// genesis is shorter than that and the suffix covers all of it.
	k := lc.chainConfig.Nipopow.SuffixLength()
	suffixLen := uint64(len(proof.Suffix))
	if suffixLen != k && suffixLen != proof.Head().Number {
		return nil, fmt.Errorf("%w: have %d, want %d", errBadSuffixLength, suffixLen, k)
	}
	// Replay the interlink derivation from the prefix head across the suffix.
	// Each header must commit to exactly the interlink its predecessor yields.
	var (
		head   = proof.PrefixHead()
		blocks = make(types.Blocks, 0, len(proof.Suffix))
	)
	for _, h := range proof.Suffix {
		interlink := head.NextInterlink(h.Target())
		if interlink.Hash() != h.InterlinkHash {
			return nil, errSuffixInterlink
		}
		block := types.NewBlock(h, interlink)
		blocks = append(blocks, block)
		head = block
	}
	return blocks, nil
}

// isBetterProof decides whether p1 represents more accumulated work than p2.
// Prefixes are compared by superblock score above their lowest common
// ancestor; equal scores fall back to the dense suffixes' total difficulty,
// with ties counting in favour of p1.
func isBetterProof(p1, p2 *types.ChainProof, m uint64) bool {
	lca := types.LowestCommonAncestor(p1.Prefix, p2.Prefix)
	score1 := superblockScore(p1.Prefix, lca, m)
	score2 := superblockScore(p2.Prefix, lca, m)
	if c := score1.Cmp(score2); c != 0 {
		return c > 0
	}
	return p1.SuffixTotalDifficulty().Cmp(p2.SuffixTotalDifficulty()) >= 0
}

// superblockScore computes the score of a proof prefix above the given
// ancestor. Blocks are bucketed by the superblock depth their hash actually
// achieved; the score is the count of blocks at or above the deepest level
// that still gathers at least m of them, weighted exponentially by that level.
func superblockScore(chain types.Blocks, lca *types.Block, m uint64) *big.Int {
	var lcaHeight uint64
	if lca != nil {
		lcaHeight = lca.Number()
	}
	var (
		counts   = make(map[int]uint64)
		maxDepth = 0
	)
	for _, block := range chain {
		if block.Number() < lcaHeight {
			continue
		}
		depth := types.TargetDepth(types.HashToTarget(block.Hash()))
		counts[depth]++
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	// Walk from the deepest observed level down, accumulating counts until m
	// blocks are gathered. Shallower levels subsume deeper ones.
	var (
		depth uint
		sum   uint64
	)
	for d := maxDepth; d >= 0; d-- {
		sum += counts[d]
		if sum >= m {
			depth = uint(d)
			break
		}
	}
	score := new(big.Int).Lsh(big.NewInt(1), depth)
	return score.Mul(score, new(big.Int).SetUint64(sum))
}
