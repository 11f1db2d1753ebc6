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

// Package nipopow implements the superblock proof-of-work consensus engine.
package nipopow

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/lumen-chain/go-lumen/log"
)

// Mode defines the type and amount of PoW verification a nipopow engine makes.
type Mode uint

const (
	// ModeNormal performs full verification on every header.
	ModeNormal Mode = iota
	// ModeFake skips the proof-of-work seal check but performs all structural
	// and difficulty checks.
	ModeFake
	// ModeFullFake accepts any well-formed header without verification.
	ModeFullFake
)

// sealCacheItems is the number of recent seal verdicts to keep cached, so
// headers arriving through both a proof and gossip are only ground once.
const sealCacheItems = 2048

// Config are the configuration parameters of the nipopow engine.
type Config struct {
	PowMode Mode
}

// Nipopow is the superblock proof-of-work consensus engine.
type Nipopow struct {
	config Config

	seals *lru.Cache // Cache of recent seal verification results by header hash

	logger log.Logger
}

// New creates a full-strength nipopow engine.
func New(config Config) *Nipopow {
	seals, _ := lru.New(sealCacheItems)
	return &Nipopow{
		config: config,
		seals:  seals,
		logger: log.New("engine", "nipopow"),
	}
}

// NewFaker creates an engine that skips seal verification. It is used by tests
// that exercise chain mechanics without grinding nonces.
func NewFaker() *Nipopow {
	return New(Config{PowMode: ModeFake})
}

// NewFullFaker creates an engine that accepts every header unconditionally.
func NewFullFaker() *Nipopow {
	return New(Config{PowMode: ModeFullFake})
}
