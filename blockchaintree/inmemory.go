// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package blockchaintree

import (
	"sync"

	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/consensus/beacon"
	"github.com/fenrirchain/fenrir/core/rawdb"
	"github.com/fenrirchain/fenrir/core/types"
	"github.com/fenrirchain/fenrir/log"
)

// InMemoryTree is a reference Tree built around maps instead of a real
// on-disk fork-aware index. It is sufficient to drive the state machine's
// decision rules and is what the wiring and tests use in place of a full
// execution stack.
type InMemoryTree struct {
	mu sync.RWMutex

	db       rawdb.Reader
	consensus *beacon.Beacon

	blocks    map[common.Hash]*types.SealedBlock
	byNumber  map[uint64]common.Hash // canonical chain only
	finalized uint64
	tip       struct {
		number uint64
		hash   common.Hash
	}
}

func NewInMemoryTree(db rawdb.Reader, consensus *beacon.Beacon) *InMemoryTree {
	return &InMemoryTree{
		db:        db,
		consensus: consensus,
		blocks:    make(map[common.Hash]*types.SealedBlock),
		byNumber:  make(map[uint64]common.Hash),
	}
}

// InsertBlock implements Tree. A block whose parent is the canonical tip is
// executed onto the canonical chain (Valid); a block whose parent is
// otherwise known to the tree or the database is buffered on a side branch
// (Accepted); everything else is classified Disconnected and not stored.
func (t *InMemoryTree) InsertBlock(block *types.SealedBlock) (BlockStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.consensus.IsTerminalPoWBlock(block.TotalDifficulty) {
		return Disconnected, &ErrBlockPreMerge{Hash: block.Hash()}
	}

	parentKnown := block.ParentHash() == t.tip.hash
	if !parentKnown {
		if _, ok := t.blocks[block.ParentHash()]; !ok {
			if _, ok := t.db.HeaderNumber(block.ParentHash()); !ok {
				return Disconnected, nil
			}
		}
	}
	t.blocks[block.Hash()] = block

	if parentKnown {
		t.byNumber[block.NumberU64()] = block.Hash()
		t.tip.number, t.tip.hash = block.NumberU64(), block.Hash()
		log.Trace("Inserted block onto canonical chain", "number", block.NumberU64(), "hash", block.Hash())
		return Valid, nil
	}
	log.Trace("Buffered block on side branch", "number", block.NumberU64(), "hash", block.Hash())
	return Accepted, nil
}

// MakeCanonical implements Tree.
func (t *InMemoryTree) MakeCanonical(hash common.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	block, ok := t.blocks[hash]
	if !ok {
		return ErrUnknownBlock
	}
	if t.consensus.IsTerminalPoWBlock(block.TotalDifficulty) {
		return &ErrBlockPreMerge{Hash: hash}
	}
	t.byNumber[block.NumberU64()] = hash
	t.tip.number, t.tip.hash = block.NumberU64(), hash
	return nil
}

// FinalizeBlock implements Tree.
func (t *InMemoryTree) FinalizeBlock(number uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if number > t.finalized {
		t.finalized = number
	}
	for n := range t.byNumber {
		if n < t.finalized {
			if hash := t.byNumber[n]; hash != (common.Hash{}) {
				delete(t.blocks, hash)
			}
		}
	}
}

// RestoreCanonicalHashes implements Tree: rebuild in-memory indices from the
// database starting at the finalized boundary.
func (t *InMemoryTree) RestoreCanonicalHashes(lastFinalizedNumber uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	number := lastFinalizedNumber
	for {
		header, ok := t.db.Header(number)
		if !ok {
			break
		}
		hash := header.Hash()
		t.byNumber[number] = hash
		if number >= t.tip.number {
			t.tip.number, t.tip.hash = number, hash
		}
		number++
	}
	return nil
}

// CanonicalTip implements Tree.
func (t *InMemoryTree) CanonicalTip() (uint64, common.Hash) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tip.number, t.tip.hash
}
