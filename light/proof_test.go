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
	"testing"

	"github.com/lumen-chain/go-lumen/consensus/nipopow"
	"github.com/lumen-chain/go-lumen/core/types"
)

func TestIsBetterProofReflexive(t *testing.T) {
	genesis := DefaultGenesisBlock()
	chain := mineChain(t, genesis, 7)
	proof := proofOf(genesis, chain, 5)

	// Equal score and equal suffix difficulty: the tie counts as better.
	if !isBetterProof(proof, proof, 2) {
		t.Error("proof is not better than itself under the tie rule")
	}
}

func TestSuperblockScoreMonotone(t *testing.T) {
	genesis := DefaultGenesisBlock()
	chain := mineChain(t, genesis, 10)
	full := append(types.Blocks{genesis}, chain...)

	// Adding blocks above the ancestor never lowers the score.
	prev := superblockScore(full[:1], genesis, 2)
	for i := 2; i <= len(full); i++ {
		score := superblockScore(full[:i], genesis, 2)
		if score.Cmp(prev) < 0 {
			t.Fatalf("score shrank when adding block %d: %v -> %v", i-1, prev, score)
		}
		prev = score
	}
}

func TestSuperblockScoreEmpty(t *testing.T) {
	genesis := DefaultGenesisBlock()
	chain := mineChain(t, genesis, 3)

	// No blocks at or above the ancestor height scores zero.
	above := types.NewBlockWithHeader(&types.Header{Number: 100})
	if score := superblockScore(types.Blocks{genesis, chain[0]}, above, 2); score.Sign() != 0 {
		t.Errorf("empty comparison score: got %v, want 0", score)
	}
}

func TestProofAdoptionWithReset(t *testing.T) {
	chain := newTestChain(t, nipopow.NewFaker())
	heads := make(chan ChainHeadEvent, 16)
	sub := chain.SubscribeChainHeadEvent(heads)
	defer sub.Unsubscribe()

	genesis := chain.Genesis()
	mined := mineChain(t, genesis, 12)
	proof := proofOf(genesis, mined, 5)

	ok, err := chain.PushProof(proof)
	if err != nil {
		t.Fatalf("push proof failed: %v", err)
	}
	if !ok {
		t.Fatal("valid proof rejected")
	}
	// The proof head became the chain head.
	if chain.HeadHash() != mined[len(mined)-1].Hash() {
		t.Errorf("head after adoption: got %v, want %v", chain.HeadHash(), mined[len(mined)-1].Hash())
	}
	if chain.Height() != 12 {
		t.Errorf("height after adoption: got %d, want 12", chain.Height())
	}
	// The prefix head carries real totals, earlier prefix blocks only resolve.
	prefixHead := proof.PrefixHead()
	if cd := chain.GetChainData(prefixHead.Hash()); cd == nil || !cd.Extendable() {
		t.Error("prefix head not extendable after adoption")
	}
	for _, block := range proof.Prefix[:len(proof.Prefix)-1] {
		cd := chain.GetChainData(block.Hash())
		if cd == nil {
			t.Fatalf("prefix block #%d not retrievable", block.Number())
		}
		if cd.Extendable() {
			t.Errorf("prefix block #%d extendable, want retrieval only", block.Number())
		}
	}
	// One head event per replayed suffix block.
	if evs := collectHeads(heads); len(evs) != 5 {
		t.Errorf("head events: got %d, want 5", len(evs))
	}
	// The adopted chain keeps extending.
	next := mineChild(t, chain.Head())
	if code, _ := chain.PushHeader(next.Header()); code != OkExtended {
		t.Error("adopted chain does not extend")
	}
}

func TestProofRejection(t *testing.T) {
	chain := newTestChain(t, nipopow.NewFaker())

	genesis := chain.Genesis()
	mined := mineChain(t, genesis, 9)
	proof := proofOf(genesis, mined, 5)

	// Tamper with the last suffix header's interlink commitment and re-seal it
	// so only the interlink replay can catch the lie.
	last := proof.Suffix[len(proof.Suffix)-1]
	last.InterlinkHash[0] ^= 1
	target := last.Target()
	for nonce := uint64(0); ; nonce++ {
		last.Nonce = types.EncodeNonce(nonce)
		if last.Hash().Big().Cmp(target) <= 0 {
			break
		}
	}

	headBefore := chain.HeadHash()
	ok, err := chain.PushProof(proof)
	if err != nil {
		t.Fatalf("push proof failed: %v", err)
	}
	if ok {
		t.Fatal("tampered proof accepted")
	}
	if chain.HeadHash() != headBefore {
		t.Error("rejected proof changed the head")
	}
}

func TestProofBadSuffixLength(t *testing.T) {
	chain := newTestChain(t, nipopow.NewFaker())

	genesis := chain.Genesis()
	mined := mineChain(t, genesis, 9)

	// K is 5 in the test config and the chain is longer than K: a four-header
	// suffix fits neither allowance.
	proof := proofOf(genesis, mined, 4)
	if ok, _ := chain.PushProof(proof); ok {
		t.Fatal("proof with short suffix accepted")
	}
}

func TestProofShortChainSuffix(t *testing.T) {
	chain := newTestChain(t, nipopow.NewFaker())

	genesis := chain.Genesis()
	mined := mineChain(t, genesis, 3)

	// The whole chain above genesis is shorter than K; a suffix spanning all
	// of it is allowed.
	proof := proofOf(genesis, mined, 3)
	ok, err := chain.PushProof(proof)
	if err != nil {
		t.Fatalf("push proof failed: %v", err)
	}
	if !ok {
		t.Fatal("short chain proof rejected")
	}
	if chain.Height() != 3 {
		t.Errorf("height: got %d, want 3", chain.Height())
	}
}

func TestNonBetterProofRetained(t *testing.T) {
	chain := newTestChain(t, nipopow.NewFaker())

	genesis := chain.Genesis()
	mined := mineChain(t, genesis, 12)

	// Adopt the long proof first.
	long := proofOf(genesis, mined, 5)
	if ok, err := chain.PushProof(long); !ok || err != nil {
		t.Fatalf("long proof not adopted: ok %v err %v", ok, err)
	}
	headAfterLong := chain.HeadHash()

	// A proof of a strict sub-chain verifies but scores lower: accepted, not
	// adopted.
	short := proofOf(genesis, mined[:7], 5)
	ok, err := chain.PushProof(short)
	if err != nil {
		t.Fatalf("push short proof failed: %v", err)
	}
	if !ok {
		t.Fatal("valid non-better proof rejected")
	}
	if chain.HeadHash() != headAfterLong {
		t.Error("non-better proof moved the head")
	}
}

func TestProofGraftingSkipsReset(t *testing.T) {
	chain := newTestChain(t, nipopow.NewFaker())

	genesis := chain.Genesis()
	mined := mineChain(t, genesis, 8)

	// Feed the first blocks through the header path so the later proof's
	// prefix head is already part of the stored chain.
	for _, block := range mined[:4] {
		if code, err := chain.PushHeader(block.Header()); err != nil || code != OkExtended {
			t.Fatalf("setup push: code %v err %v", code, err)
		}
	}
	proof := proofOf(genesis, mined, 5) // prefix head is block #3, stored above
	ok, err := chain.PushProof(proof)
	if err != nil {
		t.Fatalf("push proof failed: %v", err)
	}
	if !ok {
		t.Fatal("grafting proof rejected")
	}
	if chain.Height() != 8 {
		t.Errorf("height: got %d, want 8", chain.Height())
	}
	// The early chain remains fully intact and extendable: no reset happened.
	for _, block := range mined[:4] {
		cd := chain.GetChainData(block.Hash())
		if cd == nil || !cd.Extendable() {
			t.Errorf("block #%d lost by grafting adoption", block.Number())
		}
	}
}
