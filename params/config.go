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

// Package params holds the chain configuration and protocol constants.
package params

import (
	"fmt"
	"math/big"
)

var (
	// MainnetChainConfig is the chain parameters to run a node on the main network.
	MainnetChainConfig = &ChainConfig{
		NetworkID: big.NewInt(1),
		Nipopow:   new(NipopowConfig),
	}

	// DevinChainConfig is the chain parameters to run a node on the Devin test network.
	DevinChainConfig = &ChainConfig{
		NetworkID: big.NewInt(3),
		Nipopow:   new(NipopowConfig),
	}

	// AllNipopowProtocolChanges contains the chain parameters used by unit
	// tests: mainnet rules with the engine left to the test to configure.
	AllNipopowProtocolChanges = &ChainConfig{
		NetworkID: big.NewInt(1337),
		Nipopow:   new(NipopowConfig),
	}
)

// ChainConfig is the set of configuration values that define which rules a
// chain instance follows. rawdb.WriteChainConfig can store it keyed by genesis
// hash; the light chain does not store it.
type ChainConfig struct {
	NetworkID *big.Int `json:"networkId"`

	// Consensus engine configuration.
	Nipopow *NipopowConfig `json:"nipopow,omitempty"`
}

// NipopowConfig is the consensus engine config for superblock proof-of-work.
// Zero values fall back to the protocol defaults.
type NipopowConfig struct {
	// K overrides the dense-suffix length for chain proofs.
	K uint64 `json:"k,omitempty"`
	// M overrides the minimum superblock count in the scoring rule.
	M uint64 `json:"m,omitempty"`
}

// SuffixLength returns the configured dense-suffix length K.
func (c *NipopowConfig) SuffixLength() uint64 {
	if c == nil || c.K == 0 {
		return DenseSuffixLength
	}
	return c.K
}

// SuperblockMin returns the configured scoring threshold M.
func (c *NipopowConfig) SuperblockMin() uint64 {
	if c == nil || c.M == 0 {
		return SuperblockMin
	}
	return c.M
}

// String implements the fmt.Stringer interface.
func (c *NipopowConfig) String() string {
	return fmt.Sprintf("nipopow{k: %d, m: %d}", c.SuffixLength(), c.SuperblockMin())
}

// String implements the fmt.Stringer interface.
func (c *ChainConfig) String() string {
	return fmt.Sprintf("{NetworkID: %v Engine: %v}", c.NetworkID, c.Nipopow)
}
