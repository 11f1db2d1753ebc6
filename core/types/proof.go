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
	"errors"
	"fmt"
	"math/big"

	mapset "github.com/deckarep/golang-set"

	"github.com/lumen-chain/go-lumen/common"
)

var (
	errEmptyPrefix    = errors.New("proof has empty prefix")
	errUnsortedChain  = errors.New("prefix heights not strictly increasing")
	errDuplicateBlock = errors.New("duplicate block in proof")
	errUnchainedBlock = errors.New("prefix block not reachable from successor")
	errSuffixGap      = errors.New("suffix does not extend prefix head")
)

// ChainProof is a compact proof of accumulated proof-of-work: a sparse prefix
// of interlinked superblocks backing the bulk of the claimed work, followed by
// a dense suffix of the most recent headers.
type ChainProof struct {
	Prefix Blocks    `json:"prefix"`
	Suffix []*Header `json:"suffix"`
}

// NewChainProof assembles a proof from its two parts.
func NewChainProof(prefix Blocks, suffix []*Header) *ChainProof {
	return &ChainProof{Prefix: prefix, Suffix: suffix}
}

// PrefixHead returns the last block of the sparse prefix.
func (p *ChainProof) PrefixHead() *Block {
	return p.Prefix.Head()
}

// Head returns the header the proof claims as chain head: the last suffix
// header, or the prefix head for proofs with an empty suffix.
func (p *ChainProof) Head() *Header {
	if len(p.Suffix) > 0 {
		return p.Suffix[len(p.Suffix)-1]
	}
	if head := p.Prefix.Head(); head != nil {
		return head.Header()
	}
	return nil
}

// SuffixTotalDifficulty sums the claimed difficulty over the dense suffix.
func (p *ChainProof) SuffixTotalDifficulty() *big.Int {
	total := new(big.Int)
	for _, h := range p.Suffix {
		total.Add(total, h.Difficulty())
	}
	return total
}

// Verify checks the internal consistency of the proof: the prefix must be a
// strictly ascending superchain whose blocks all carry valid proof-of-work and
// chain into their successor either densely or through the interlink, and the
// suffix must be a dense, valid extension of the prefix head.
//
// Interlink commitments of the suffix are not checked here; they need the
// interlink derivation the consuming chain performs during adoption.
func (p *ChainProof) Verify() error {
	if len(p.Prefix) == 0 {
		return errEmptyPrefix
	}
	seen := mapset.NewSet()
	for i, block := range p.Prefix {
		hash := block.Hash()
		if !seen.Add(hash) {
			return errDuplicateBlock
		}
		// The chain root is pinned by configuration, not by its seal.
		if block.Number() != 0 && !block.header.VerifyProofOfWork() {
			return fmt.Errorf("prefix block %s: invalid proof-of-work", hash.TerminalString())
		}
		if i == 0 {
			continue
		}
		prev := p.Prefix[i-1]
		if block.Number() <= prev.Number() {
			return errUnsortedChain
		}
		// A successor must reference its prefix predecessor, either as direct
		// parent or through one of its interlink slots.
		if block.ParentHash() != prev.Hash() && !block.interlink.Contains(prev.Hash()) {
			return errUnchainedBlock
		}
	}
	// The dense suffix chains header to header on top of the prefix head.
	prev := p.Prefix.Head().Header()
	for _, h := range p.Suffix {
		if !h.VerifyProofOfWork() {
			return fmt.Errorf("suffix header #%d: invalid proof-of-work", h.Number)
		}
		if !h.IsImmediateSuccessorOf(prev) {
			return errSuffixGap
		}
		prev = h
	}
	return nil
}

// LowestCommonAncestor returns the highest block contained in both prefix
// chains, or nil if they share none.
func LowestCommonAncestor(c1, c2 Blocks) *Block {
	hashes := mapset.NewSet()
	for _, block := range c1 {
		hashes.Add(block.Hash())
	}
	for i := len(c2) - 1; i >= 0; i-- {
		if hashes.Contains(c2[i].Hash()) {
			return c2[i]
		}
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (p *ChainProof) String() string {
	var head common.Hash
	if h := p.Head(); h != nil {
		head = h.Hash()
	}
	return fmt.Sprintf("proof{prefix: %d, suffix: %d, head: %s}", len(p.Prefix), len(p.Suffix), head.TerminalString())
}
