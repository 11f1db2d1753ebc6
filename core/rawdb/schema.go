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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import "github.com/lumen-chain/go-lumen/common"

// The fields below define the low level database schema prefixing.
var (
	// headHashKey tracks the latest known main-chain head's hash.
	headHashKey = []byte("LastHash")

	// chainDataPrefix + hash -> chain data
	chainDataPrefix = []byte("d")

	// configPrefix + hash -> chain config
	configPrefix = []byte("lumen-config-")
)

// chainDataKey = chainDataPrefix + hash
func chainDataKey(hash common.Hash) []byte {
	return append(chainDataPrefix, hash.Bytes()...)
}

// ChainDataPrefix exposes the chain data key prefix for store-wide iteration.
func ChainDataPrefix() []byte {
	return chainDataPrefix
}

// configKey = configPrefix + hash
func configKey(hash common.Hash) []byte {
	return append(configPrefix, hash.Bytes()...)
}
