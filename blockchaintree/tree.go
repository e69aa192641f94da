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

// Package blockchaintree tracks forked and pending blocks on top of the
// canonical chain, supporting reorgs up to a finalized floor. The driver
// mutates it only through the narrow Tree interface; callers are expected to
// hold it behind a read-write lock and never hold that lock across an await
// point (see ShareableTree).
package blockchaintree

import (
	"errors"
	"fmt"

	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/core/types"
)

// BlockStatus classifies the outcome of inserting a block.
type BlockStatus int

const (
	// Valid means the block was fully executed onto the canonical chain or
	// a side branch rooted at it.
	Valid BlockStatus = iota
	// Accepted means the block was buffered on a side branch.
	Accepted
	// Disconnected means the block's parent is unknown.
	Disconnected
)

func (s BlockStatus) String() string {
	switch s {
	case Valid:
		return "valid"
	case Accepted:
		return "accepted"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ErrBlockPreMerge is returned by Insert/MakeCanonical when a block fails
// execution because it still precedes the terminal PoW block. The Engine API
// requires this specific classification: the caller must reply INVALID with
// latestValidHash = 0.
type ErrBlockPreMerge struct{ Hash common.Hash }

func (e *ErrBlockPreMerge) Error() string {
	return fmt.Sprintf("block %s is pre-merge", e.Hash.Hex())
}

// ErrPendingBlockIsInFuture is returned when a block's parent is known but
// not yet executed because an ancestor is still pending; the driver maps
// this to SYNCING rather than INVALID.
var ErrPendingBlockIsInFuture = errors.New("pending block is in the future")

// ErrUnknownBlock is returned by MakeCanonical when the tree holds no block
// with the given hash.
var ErrUnknownBlock = errors.New("unknown block")

// Tree is the contract the driver depends on. Implementations are expected
// to be safe for concurrent readers while the driver holds exclusive access
// for writes (insert/finalize/canonicalize/restore).
type Tree interface {
	// InsertBlock executes (or buffers) block and classifies the outcome.
	InsertBlock(block *types.SealedBlock) (BlockStatus, error)
	// MakeCanonical reorgs the canonical chain to terminate at hash.
	MakeCanonical(hash common.Hash) error
	// FinalizeBlock advances the pruning floor.
	FinalizeBlock(number uint64)
	// RestoreCanonicalHashes rebuilds in-memory indices from the database
	// starting at the finalized boundary.
	RestoreCanonicalHashes(lastFinalizedNumber uint64) error
	// CanonicalTip returns the current canonical chain head.
	CanonicalTip() (number uint64, hash common.Hash)
}
