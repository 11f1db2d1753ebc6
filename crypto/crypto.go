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

// Package crypto implements the hashing primitives used across go-lumen.
package crypto

import (
	"hash"

	"golang.org/x/crypto/sha3"

	"github.com/lumen-chain/go-lumen/common"
)

// DigestLength is the byte length of a SHA3-256 digest.
const DigestLength = 32

// SHA3 calculates and returns the SHA3-256 hash of the input data.
func SHA3(data ...[]byte) []byte {
	d := sha3.New256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// SHA3Hash calculates and returns the SHA3-256 hash of the input data,
// converting it to an internal Hash data structure.
func SHA3Hash(data ...[]byte) (h common.Hash) {
	d := sha3.New256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// NewSHA3State returns a fresh SHA3-256 hashing state. Callers that hash many
// items reuse the state through Reset instead of allocating a new one.
func NewSHA3State() hash.Hash {
	return sha3.New256()
}
