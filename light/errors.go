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

import "errors"

// ResultCode describes the outcome of submitting a header to the chain. The
// numeric values are wire-stable; peers exchange them verbatim.
type ResultCode int

const (
	// ErrOrphan means the header's predecessor is unknown or may not be
	// extended. The caller may resubmit after fetching the predecessor.
	ErrOrphan ResultCode = -2

	// ErrInvalid means a proof-of-work, succession, difficulty or interlink
	// check failed.
	ErrInvalid ResultCode = -1

	// OkKnown means the block was already in the store; nothing changed.
	OkKnown ResultCode = 0

	// OkExtended means the block became the new main-chain head.
	OkExtended ResultCode = 1

	// OkRebranched means the block completed a heavier fork; the main chain
	// switched over to it.
	OkRebranched ResultCode = 2

	// OkForked means the block was stored on a side branch.
	OkForked ResultCode = 3
)

// String implements the fmt.Stringer interface.
func (rc ResultCode) String() string {
	switch rc {
	case ErrOrphan:
		return "orphan"
	case ErrInvalid:
		return "invalid"
	case OkKnown:
		return "known"
	case OkExtended:
		return "extended"
	case OkRebranched:
		return "rebranched"
	case OkForked:
		return "forked"
	default:
		return "unknown"
	}
}

var (
	// ErrInvariantViolation is wrapped around failures that indicate store
	// corruption or a verifier bug: a missing predecessor during a rebranch
	// walk, or a proof-derived block failing the append path after the proof
	// itself verified. The current operation aborts; the engine stays up.
	ErrInvariantViolation = errors.New("chain invariant violation")

	// errChainStopped is returned on submissions after Stop.
	errChainStopped = errors.New("light chain stopped")
)
