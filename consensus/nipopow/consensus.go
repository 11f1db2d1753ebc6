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
	"fmt"
	"time"

	"github.com/lumen-chain/go-lumen/consensus"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/params"
)

// Various error messages to mark headers invalid. These should be private to
// prevent engine specific errors from being referenced in the remainder of the
// codebase, inherently breaking if the engine is swapped out. Please put common
// error types into the consensus package.
var (
	errOlderBlockTime    = errors.New("timestamp older than parent")
	errInvalidDifficulty = errors.New("difficulty does not match retarget")
	errInvalidInterlink  = errors.New("interlink commitment mismatch")
	errInvalidPoW        = errors.New("invalid proof-of-work")
)

// VerifyHeader checks whether a header conforms to the consensus rules of the
// superblock proof-of-work engine. The parent block must already be validated
// and stored by the caller.
func (n *Nipopow) VerifyHeader(chain consensus.ChainReader, header *types.Header, parent *types.Block) (*types.Block, error) {
	// If we're running a full engine faking, accept any input as valid
	if n.config.PowMode == ModeFullFake {
		return types.NewBlock(header, parent.NextInterlink(header.Target())), nil
	}
	if err := header.SanityCheck(); err != nil {
		return nil, err
	}
	// Verify the engine specific seal securing the block
	if err := n.verifySeal(header); err != nil {
		return nil, err
	}
	// Verify that the header is a well-formed immediate successor
	if header.Number != parent.Number()+1 {
		return nil, consensus.ErrInvalidNumber
	}
	if header.ParentHash != parent.Hash() {
		return nil, consensus.ErrUnknownAncestor
	}
	if header.Time <= parent.Time() {
		return nil, errOlderBlockTime
	}
	if header.Time > uint64(time.Now().Add(time.Duration(params.AllowedFutureBlockTime)*time.Second).Unix()) {
		return nil, consensus.ErrFutureBlock
	}
	// Verify the header's difficulty against the retarget of its ancestry.
	// Short chains don't span the retarget window yet; their claimed target
	// stands until the window fills up.
	nextTarget, err := n.CalcNextTarget(chain, parent)
	switch {
	case errors.Is(err, consensus.ErrInsufficientWindow):
		n.logger.Debug("Skipping difficulty check", "number", header.Number, "reason", err)
	case err != nil:
		return nil, err
	default:
		if header.NBits != types.TargetToCompact(nextTarget) {
			return nil, fmt.Errorf("%w: have %#x, want %#x", errInvalidDifficulty, header.NBits, types.TargetToCompact(nextTarget))
		}
	}
	// Recompute the interlink the successor of the parent must commit to and
	// match it against the header's commitment.
	interlink := parent.NextInterlink(header.Target())
	if interlink.Hash() != header.InterlinkHash {
		return nil, errInvalidInterlink
	}
	return types.NewBlock(header, interlink), nil
}

// verifySeal checks whether a header satisfies the PoW difficulty requirements.
func (n *Nipopow) verifySeal(header *types.Header) error {
	// If we're running a fake PoW, accept any seal as valid
	if n.config.PowMode == ModeFake || n.config.PowMode == ModeFullFake {
		return nil
	}
	hash := header.Hash()
	if valid, ok := n.seals.Get(hash); ok {
		if valid.(bool) {
			return nil
		}
		return errInvalidPoW
	}
	valid := header.VerifyProofOfWork()
	n.seals.Add(hash, valid)
	if !valid {
		return errInvalidPoW
	}
	return nil
}
