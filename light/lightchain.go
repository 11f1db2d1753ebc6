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

// Package light implements the Lumen light-client chain: it bootstraps from
// compact chain proofs and follows the tip by validating block headers.
package light

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/lumen-chain/go-lumen/chaindb"
	"github.com/lumen-chain/go-lumen/common"
	"github.com/lumen-chain/go-lumen/consensus"
	"github.com/lumen-chain/go-lumen/core/rawdb"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/event"
	"github.com/lumen-chain/go-lumen/log"
	"github.com/lumen-chain/go-lumen/params"
)

// LightChain maintains the local view of the best chain without downloading
// block bodies. It adopts chain proofs, appends headers and rebranches onto
// heavier forks, keeping the per-block chain data in its store consistent.
//
// All mutating operations are serialized: at any instant at most one proof or
// header submission is in progress. Read accessors may interleave and observe
// the state as of the last committed operation.
type LightChain struct {
	chainConfig *params.ChainConfig
	engine      consensus.Engine
	store       *ChainStore

	genesisBlock *types.Block

	// currentHead holds the *types.ChainData of the main-chain head. Head
	// hash and accumulated totals are read together from the one value, so
	// readers always see a consistent pair.
	currentHead atomic.Value

	// proof is the chain proof backing the current view. Only serialized
	// operations touch it.
	proof *types.ChainProof

	chainHeadFeed event.Feed
	serializer    *serializer

	logger log.Logger
}

// NewLightChain constructs a light chain on top of the given store, seeded
// with the default genesis block.
func NewLightChain(db chaindb.KeyValueStore, chainConfig *params.ChainConfig, engine consensus.Engine) (*LightChain, error) {
	genesis := DefaultGenesisBlock()
	lc := &LightChain{
		chainConfig:  chainConfig,
		engine:       engine,
		store:        NewChainStore(db),
		genesisBlock: genesis,
		logger:       log.New("chain", "light"),
	}
	genesisHash := genesis.Hash()
	genesisData := types.NewChainData(genesis, genesis.Difficulty(), types.RealDifficulty(genesisHash), true)
	if err := lc.store.Put(genesisHash, genesisData); err != nil {
		return nil, err
	}
	rawdb.WriteHeadHash(lc.store.db, genesisHash)
	lc.currentHead.Store(genesisData)
	lc.proof = types.NewChainProof(types.Blocks{genesis}, nil)
	lc.serializer = newSerializer()

	lc.logger.Info("Initialised light chain", "genesis", genesisHash.TerminalString(), "config", chainConfig)
	return lc, nil
}

// Stop terminates the serializer. Pending submissions fail with an error;
// in-flight ones complete first.
func (lc *LightChain) Stop() {
	lc.serializer.stop()
	lc.logger.Info("Light chain stopped")
}

// Config retrieves the chain's configuration.
func (lc *LightChain) Config() *params.ChainConfig { return lc.chainConfig }

// Engine retrieves the chain's consensus engine.
func (lc *LightChain) Engine() consensus.Engine { return lc.engine }

// Genesis retrieves the chain's genesis block.
func (lc *LightChain) Genesis() *types.Block { return lc.genesisBlock }

// CurrentChainData returns the chain data of the current main-chain head.
func (lc *LightChain) CurrentChainData() *types.ChainData {
	return lc.currentHead.Load().(*types.ChainData)
}

// Head returns the current main-chain head block.
func (lc *LightChain) Head() *types.Block {
	return lc.CurrentChainData().Block
}

// HeadHash returns the hash of the current main-chain head.
func (lc *LightChain) HeadHash() common.Hash {
	return lc.Head().Hash()
}

// Height returns the height of the current main-chain head.
func (lc *LightChain) Height() uint64 {
	return lc.Head().Number()
}

// TotalDifficulty returns the accumulated claimed difficulty of the main chain.
func (lc *LightChain) TotalDifficulty() *big.Int {
	return lc.CurrentChainData().TotalDifficulty
}

// GetBlock retrieves a block from the store by hash. Blocks stored for
// retrieval only are returned as well.
func (lc *LightChain) GetBlock(hash common.Hash) *types.Block {
	return lc.store.GetBlock(hash)
}

// GetChainData retrieves the chain data stored under the given block hash.
func (lc *LightChain) GetChainData(hash common.Hash) *types.ChainData {
	return lc.store.Get(hash)
}

// GetBlockByNumber walks the main chain backwards from the head to the block
// at the given height. It returns nil when the height exceeds the head or the
// walk leaves the densely stored region.
func (lc *LightChain) GetBlockByNumber(number uint64) *types.Block {
	block := lc.Head()
	if number > block.Number() {
		return nil
	}
	for block != nil && block.Number() > number {
		block = lc.store.GetBlock(block.ParentHash())
	}
	return block
}

// SubscribeChainHeadEvent registers a subscription of ChainHeadEvent.
func (lc *LightChain) SubscribeChainHeadEvent(ch chan<- ChainHeadEvent) event.Subscription {
	return lc.chainHeadFeed.Subscribe(ch)
}

// PushProof verifies a chain proof and, if it represents more work than the
// chain's current proof, adopts it. The boolean is false exactly when
// verification failed; a valid but not-better proof is accepted without being
// adopted. The error reports store failures and invariant violations.
func (lc *LightChain) PushProof(proof *types.ChainProof) (bool, error) {
	var (
		ok      bool
		execErr error
	)
	err := lc.serializer.exec(func() {
		ok, execErr = lc.pushProof(proof)
	})
	if err != nil {
		return false, err
	}
	return ok, execErr
}

// PushHeader validates a single header against its stored predecessor and
// appends it. The result code reports how the chain absorbed it. The error
// reports store failures and invariant violations.
func (lc *LightChain) PushHeader(header *types.Header) (ResultCode, error) {
	var (
		code    ResultCode
		execErr error
	)
	err := lc.serializer.exec(func() {
		code, execErr = lc.pushHeader(header)
	})
	if err != nil {
		return ErrInvalid, err
	}
	return code, execErr
}

// pushProof runs on the serializer.
func (lc *LightChain) pushProof(proof *types.ChainProof) (bool, error) {
	suffixBlocks, err := lc.verifyProof(proof)
	if err != nil {
		lc.logger.Warn("Rejecting invalid chain proof", "proof", proof, "err", err)
		return false, nil
	}
	if isBetterProof(proof, lc.proof, lc.chainConfig.Nipopow.SuperblockMin()) {
		if err := lc.acceptProof(proof, suffixBlocks); err != nil {
			return true, err
		}
	}
	return true, nil
}

// acceptProof installs a verified, better proof as the new chain view. If the
// proof's prefix head already grafts into the stored chain, only the suffix is
// replayed; otherwise the store is reset around the new prefix.
func (lc *LightChain) acceptProof(proof *types.ChainProof, suffixBlocks types.Blocks) error {
	var (
		head     = proof.PrefixHead()
		headHash = head.Hash()
	)
	headData := lc.store.Get(headHash)
	if headData == nil || !headData.Extendable() {
		// The new prefix does not graft onto our chain: wipe the store and
		// rebuild the view around the prefix. Earlier prefix blocks stay
		// retrievable but can never be extended.
		// TODO: seed the store with the tail of the prefix's dense suffix
		// instead of the bare prefix head.
		if err := lc.store.Truncate(); err != nil {
			return err
		}
		headData = types.NewChainData(head, head.Difficulty(), types.RealDifficulty(headHash), true)
		if err := lc.store.Put(headHash, headData); err != nil {
			return err
		}
		for _, block := range proof.Prefix[:len(proof.Prefix)-1] {
			if err := lc.store.Put(block.Hash(), types.NewRetrievalOnlyChainData(block, true)); err != nil {
				return err
			}
		}
		lc.writeHead(headData)
		lc.logger.Info("Adopted chain proof", "proof", proof, "head", headHash.TerminalString())
	}
	// Replay the dense suffix through the regular append path. The proof
	// already verified, so any rejection here means the store and the
	// verifier disagree.
	for _, block := range suffixBlocks {
		hash := block.Hash()
		if existing := lc.store.Get(hash); existing != nil && existing.Extendable() {
			continue
		}
		prevData := lc.store.Get(block.ParentHash())
		if prevData == nil || !prevData.Extendable() {
			return fmt.Errorf("%w: verified suffix block %s has no extendable predecessor", ErrInvariantViolation, hash.TerminalString())
		}
		code, err := lc.pushBlockInternal(block, hash, prevData)
		if err != nil {
			return err
		}
		if code < 0 {
			return fmt.Errorf("%w: verified suffix block %s rejected with %v", ErrInvariantViolation, hash.TerminalString(), code)
		}
	}
	lc.proof = proof
	return nil
}

// pushHeader runs on the serializer.
func (lc *LightChain) pushHeader(header *types.Header) (ResultCode, error) {
	hash := header.Hash()

	// Already-known headers are acknowledged without touching any state.
	if lc.store.Get(hash) != nil {
		return OkKnown, nil
	}
	// The predecessor must be present and extendable.
	prevData := lc.store.Get(header.ParentHash)
	if prevData == nil || !prevData.Extendable() {
		lc.logger.Debug("Discarding orphan header", "number", header.Number, "hash", hash.TerminalString())
		return ErrOrphan, nil
	}
	block, err := lc.engine.VerifyHeader(lc, header, prevData.Block)
	if err != nil {
		lc.logger.Warn("Rejecting invalid header", "number", header.Number, "hash", hash.TerminalString(), "err", err)
		return ErrInvalid, nil
	}
	return lc.pushBlockInternal(block, hash, prevData)
}

// pushBlockInternal appends a validated block on top of its predecessor and
// decides between extending the main chain, rebranching onto a heavier fork
// and storing a side branch.
func (lc *LightChain) pushBlockInternal(block *types.Block, hash common.Hash, prevData *types.ChainData) (ResultCode, error) {
	var (
		totalDifficulty = new(big.Int).Add(prevData.TotalDifficulty, block.Difficulty())
		totalWork       = new(big.Int).Add(prevData.TotalWork, types.RealDifficulty(hash))
		chainData       = types.NewChainData(block, totalDifficulty, totalWork, false)
		head            = lc.CurrentChainData()
	)
	// Extend: the block builds directly on the current head.
	if block.ParentHash() == head.Block.Hash() {
		chainData = chainData.WithMainChain(true)
		if err := lc.store.Put(hash, chainData); err != nil {
			return ErrInvalid, err
		}
		lc.writeHead(chainData)
		lc.chainHeadFeed.Send(ChainHeadEvent{Block: block})
		lc.logger.Debug("Extended main chain", "number", block.Number(), "hash", hash.TerminalString())
		return OkExtended, nil
	}
	// Rebranch: the fork ending in this block is heavier than the main chain.
	if totalDifficulty.Cmp(head.TotalDifficulty) > 0 {
		if err := lc.rebranch(hash, chainData); err != nil {
			return ErrInvalid, err
		}
		lc.chainHeadFeed.Send(ChainHeadEvent{Block: block})
		lc.logger.Info("Rebranched to heavier fork", "number", block.Number(), "hash", hash.TerminalString(), "totalDifficulty", totalDifficulty)
		return OkRebranched, nil
	}
	// Fork: store the block on a side branch.
	if err := lc.store.Put(hash, chainData); err != nil {
		return ErrInvalid, err
	}
	lc.logger.Debug("Stored fork block", "number", block.Number(), "hash", hash.TerminalString())
	return OkForked, nil
}

// rebranch switches the main chain over to the fork ending in newData. It
// walks the fork down to the junction with the current main chain, flips the
// main-chain markers on both paths and commits all flips as one atomic batch.
func (lc *LightChain) rebranch(newHash common.Hash, newData *types.ChainData) error {
	// Collect the fork branch back to the first block on the main chain.
	var (
		forkEntries []ChainEntry
		curHash     = newHash
		cur         = newData
	)
	for !cur.OnMainChain {
		forkEntries = append(forkEntries, ChainEntry{Hash: curHash, Data: cur.WithMainChain(true)})
		curHash = cur.Block.ParentHash()
		cur = lc.store.Get(curHash)
		if cur == nil {
			return fmt.Errorf("%w: missing predecessor %s on fork branch", ErrInvariantViolation, curHash.TerminalString())
		}
	}
	// curHash now identifies the junction: the lowest common ancestor still on
	// the current main chain. Unmark the abandoned segment above it.
	var (
		entries []ChainEntry
		head    = lc.CurrentChainData()
		hash    = head.Block.Hash()
		data    = head
	)
	for hash != curHash {
		entries = append(entries, ChainEntry{Hash: hash, Data: data.WithMainChain(false)})
		hash = data.Block.ParentHash()
		data = lc.store.Get(hash)
		if data == nil {
			return fmt.Errorf("%w: missing predecessor %s on main chain", ErrInvariantViolation, hash.TerminalString())
		}
	}
	// Mark the fork branch in ascending order.
	for i := len(forkEntries) - 1; i >= 0; i-- {
		entries = append(entries, forkEntries[i])
	}
	if err := lc.store.WriteBatch(entries); err != nil {
		return err
	}
	lc.writeHead(forkEntries[0].Data)
	return nil
}

// writeHead publishes new head chain data for readers and persists the head
// hash.
func (lc *LightChain) writeHead(data *types.ChainData) {
	rawdb.WriteHeadHash(lc.store.db, data.Block.Hash())
	lc.currentHead.Store(data)
}
