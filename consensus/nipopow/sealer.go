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

	"github.com/lumen-chain/go-lumen/core/types"
)

var errSealAborted = errors.New("sealing aborted")

// Seal grinds the header nonce until the header hash meets its target. The
// input header is not modified; the sealed copy is returned. Abort by closing
// the stop channel.
func (n *Nipopow) Seal(header *types.Header, stop <-chan struct{}) (*types.Header, error) {
	// Fake engines return immediately with whatever nonce is set.
	if n.config.PowMode == ModeFake || n.config.PowMode == ModeFullFake {
		return types.CopyHeader(header), nil
	}
	var (
		sealed = types.CopyHeader(header)
		target = sealed.Target()
		nonce  = sealed.Nonce.Uint64()
	)
	for {
		select {
		case <-stop:
			return nil, errSealAborted
		default:
		}
		// Batch a window of attempts between abort checks.
		for i := 0; i < 4096; i++ {
			sealed.Nonce = types.EncodeNonce(nonce)
			if sealed.Hash().Big().Cmp(target) <= 0 {
				n.logger.Trace("Sealed header", "number", sealed.Number, "nonce", nonce)
				return sealed, nil
			}
			nonce++
		}
	}
}
