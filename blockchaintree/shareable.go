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
	"github.com/fenrirchain/fenrir/core/types"
)

// ShareableTree wraps a Tree behind an external read-write lock so that it
// can be held by several owners at once (e.g. the driver and an RPC reader),
// while the driver is still the only writer. All mutations acquire the write
// side; CanonicalTip acquires the read side. No lock is ever held across an
// await point because every method here runs to completion synchronously.
type ShareableTree struct {
	mu   sync.RWMutex
	tree Tree
}

func NewShareableTree(tree Tree) *ShareableTree {
	return &ShareableTree{tree: tree}
}

func (s *ShareableTree) InsertBlock(block *types.SealedBlock) (BlockStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.InsertBlock(block)
}

func (s *ShareableTree) MakeCanonical(hash common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.MakeCanonical(hash)
}

func (s *ShareableTree) FinalizeBlock(number uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.FinalizeBlock(number)
}

func (s *ShareableTree) RestoreCanonicalHashes(lastFinalizedNumber uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.RestoreCanonicalHashes(lastFinalizedNumber)
}

func (s *ShareableTree) CanonicalTip() (uint64, common.Hash) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.CanonicalTip()
}
