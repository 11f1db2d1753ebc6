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

// Package types contains data types related to Lumen consensus.
package types

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/crypto"
)

// A BlockNonce is a 64-bit value which proves that a sufficient amount of
// computation has been carried out on a block.
type BlockNonce [8]byte

// EncodeNonce converts the given integer to a block nonce.
func EncodeNonce(i uint64) BlockNonce {
	var n BlockNonce
	binary.BigEndian.PutUint64(n[:], i)
	return n
}

// Uint64 returns the integer value of a block nonce.
func (n BlockNonce) Uint64() uint64 {
	return binary.BigEndian.Uint64(n[:])
}

// MarshalText encodes n as a hex string with 0x prefix.
func (n BlockNonce) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", n[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *BlockNonce) UnmarshalText(input []byte) error {
	b := common.FromHex(string(input))
	if len(b) != len(n) {
		return fmt.Errorf("invalid block nonce length %d", len(b))
	}
	copy(n[:], b)
	return nil
}

// Header represents a block header in the Lumen blockchain. Bodies are never
// transferred to light consensus nodes; the header plus the interlink is the
// whole block.
type Header struct {
	ParentHash    common.Hash `json:"parentHash"`
	InterlinkHash common.Hash `json:"interlinkHash"`
	Number        uint64      `json:"number"`
	Time          uint64      `json:"timestamp"`
	NBits         uint32      `json:"nBits"`
	Nonce         BlockNonce  `json:"nonce"`
}

// headerEncodeSize is the byte length of the canonical header encoding:
// two hashes plus number, timestamp, compact bits and nonce.
const headerEncodeSize = 2*common.HashLength + 8 + 8 + 4 + 8

// encode writes the canonical binary form of the header, which is what gets
// hashed for both identity and proof-of-work.
func (h *Header) encode() []byte {
	buf := make([]byte, 0, headerEncodeSize)
	buf = append(buf, h.ParentHash[:]...)
	buf = append(buf, h.InterlinkHash[:]...)
	buf = appendUint64(buf, h.Number)
	buf = appendUint64(buf, h.Time)
	buf = appendUint32(buf, h.NBits)
	buf = append(buf, h.Nonce[:]...)
	return buf
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

// Hash returns the block hash of the header, which is the SHA3-256 hash of its
// canonical encoding. The hash doubles as the proof-of-work: it must not
// exceed the header target.
func (h *Header) Hash() common.Hash {
	return crypto.SHA3Hash(h.encode())
}

// Target returns the full form of the header's compact difficulty target.
func (h *Header) Target() *big.Int {
	return CompactToTarget(h.NBits)
}

// Difficulty returns the claimed difficulty of the header, derived from its
// target.
func (h *Header) Difficulty() *big.Int {
	return TargetToDifficulty(h.Target())
}

// VerifyProofOfWork reports whether the header hash satisfies its own claimed
// target, and that target is admissible.
func (h *Header) VerifyProofOfWork() bool {
	target := h.Target()
	if !IsValidTarget(target) {
		return false
	}
	return h.Hash().Big().Cmp(target) <= 0
}

// IsImmediateSuccessorOf reports whether h directly extends parent: number
// increments by one, the parent link matches and the timestamp advances.
func (h *Header) IsImmediateSuccessorOf(parent *Header) bool {
	if h.Number != parent.Number+1 {
		return false
	}
	if h.ParentHash != parent.Hash() {
		return false
	}
	return h.Time > parent.Time
}

// SanityCheck checks a few basic things. These checks exceed what any sane
// production value would hold and exist to stop junk headers early.
func (h *Header) SanityCheck() error {
	if h.NBits == 0 {
		return errors.New("missing difficulty target")
	}
	if !IsValidTarget(h.Target()) {
		return fmt.Errorf("target out of range: nBits %#x", h.NBits)
	}
	return nil
}

// CopyHeader creates a deep copy of a block header to prevent side effects
// from modifying a header variable.
func CopyHeader(h *Header) *Header {
	cpy := *h
	return &cpy
}

// Interlink is the ordered list of back-references a block carries to the most
// recent superblocks, one slot per superblock level. Slot 0 references the
// chain root. Slot i (i >= 1) points at the last preceding block whose hash
// beat its successor's target by at least i levels.
type Interlink struct {
	Hashes []common.Hash `json:"hashes"`
}

// Hash returns the SHA3-256 commitment to the interlink that block headers
// embed.
func (il *Interlink) Hash() common.Hash {
	buf := make([]byte, 0, 1+len(il.Hashes)*common.HashLength)
	buf = append(buf, byte(len(il.Hashes)))
	for _, h := range il.Hashes {
		buf = append(buf, h[:]...)
	}
	return crypto.SHA3Hash(buf)
}

// Len returns the number of superblock references.
func (il *Interlink) Len() int {
	return len(il.Hashes)
}

// Contains reports whether the interlink references the given hash.
func (il *Interlink) Contains(hash common.Hash) bool {
	for _, h := range il.Hashes {
		if h == hash {
			return true
		}
	}
	return false
}

// copyInterlink deep-copies an interlink.
func copyInterlink(il *Interlink) *Interlink {
	cpy := &Interlink{}
	if len(il.Hashes) > 0 {
		cpy.Hashes = make([]common.Hash, len(il.Hashes))
		copy(cpy.Hashes, il.Hashes)
	}
	return cpy
}

// Block represents a light block in the Lumen blockchain: a header paired with
// the interlink it committed to.
type Block struct {
	header    *Header
	interlink *Interlink

	// caches
	hash atomic.Value
}

// NewBlock creates a new block. The input data is copied, changes to header or
// interlink values will not affect the block.
func NewBlock(header *Header, interlink *Interlink) *Block {
	return &Block{
		header:    CopyHeader(header),
		interlink: copyInterlink(interlink),
	}
}

// NewBlockWithHeader creates a block with the given header data and an empty
// interlink. The header data is copied.
func NewBlockWithHeader(header *Header) *Block {
	return NewBlock(header, &Interlink{})
}

// Hash returns the SHA3-256 hash of b's header.
// The hash is computed on the first call and cached thereafter.
func (b *Block) Hash() common.Hash {
	if hash := b.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	v := b.header.Hash()
	b.hash.Store(v)
	return v
}

// Header returns a deep copy of the block header.
func (b *Block) Header() *Header { return CopyHeader(b.header) }

// Interlink returns the block's interlink. The caller must not modify it.
func (b *Block) Interlink() *Interlink { return b.interlink }

func (b *Block) Number() uint64             { return b.header.Number }
func (b *Block) Time() uint64               { return b.header.Time }
func (b *Block) NBits() uint32              { return b.header.NBits }
func (b *Block) Nonce() uint64              { return b.header.Nonce.Uint64() }
func (b *Block) ParentHash() common.Hash    { return b.header.ParentHash }
func (b *Block) InterlinkHash() common.Hash { return b.header.InterlinkHash }

// Target returns the full form of the block's difficulty target.
func (b *Block) Target() *big.Int { return b.header.Target() }

// Difficulty returns the claimed difficulty of the block.
func (b *Block) Difficulty() *big.Int { return b.header.Difficulty() }

// NextInterlink derives the interlink a successor mined at nextTarget must
// commit to. Slot 0 anchors the chain root and never changes. Every further
// slot the current block qualifies for points at the current block; the
// remaining slots carry over. Only the chain root itself has an empty
// interlink, which seeds slot 0 with its own hash.
func (b *Block) NextInterlink(nextTarget *big.Int) *Interlink {
	hash := b.Hash()
	level := TargetDepth(HashToTarget(hash)) - TargetDepth(nextTarget)
	if level < 0 {
		level = 0
	}
	length := len(b.interlink.Hashes)
	if level+1 > length {
		length = level + 1
	}
	hashes := make([]common.Hash, length)
	for i := range hashes {
		switch {
		case i == 0 && len(b.interlink.Hashes) > 0:
			hashes[0] = b.interlink.Hashes[0]
		case i <= level:
			hashes[i] = hash
		default:
			hashes[i] = b.interlink.Hashes[i]
		}
	}
	return &Interlink{Hashes: hashes}
}

// String implements the fmt.Stringer interface.
func (b *Block) String() string {
	return fmt.Sprintf("#%d [%s]", b.Number(), b.Hash().TerminalString())
}

// Blocks is a slice of blocks ordered by ascending height.
type Blocks []*Block

// Head returns the last (highest) block of the slice, or nil when empty.
func (bs Blocks) Head() *Block {
	if len(bs) == 0 {
		return nil
	}
	return bs[len(bs)-1]
}

// blockJSON is the storage and wire encoding of a block.
type blockJSON struct {
	Header    *Header    `json:"header"`
	Interlink *Interlink `json:"interlink"`
}

// MarshalJSON encodes the block for storage.
func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(&blockJSON{Header: b.header, Interlink: b.interlink})
}

// UnmarshalJSON decodes a block from its storage encoding.
func (b *Block) UnmarshalJSON(input []byte) error {
	var dec blockJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Header == nil {
		return errors.New("missing block header")
	}
	if dec.Interlink == nil {
		dec.Interlink = &Interlink{}
	}
	b.header, b.interlink = dec.Header, dec.Interlink
	b.hash = atomic.Value{}
	return nil
}
