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

import "github.com/lumen-chain/go-lumen/core/types"

// ChainHeadEvent is posted when the main-chain head moves, either by an
// extension or by a rebranch. It is delivered synchronously from within the
// serialized operation: subscribers must not call back into the chain from the
// delivery goroutine, or they deadlock.
type ChainHeadEvent struct {
	Block *types.Block
}
