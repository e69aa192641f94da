// Copyright 2014 The go-ethereum Authors
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

// Package types contains the data types the driver needs from the execution
// stack. Transaction, receipt and state-root machinery are intentionally not
// reproduced here: the spec this package serves treats block/header decoding
// and execution semantics as external collaborators.
package types

import (
	"fmt"

	"github.com/fenrirchain/fenrir/common"
	"github.com/holiman/uint256"
)

// Header is the slice of a block header the driver and the tree need to make
// forkchoice and insertion decisions: identity, lineage, and the proof-of-work
// fields used to classify pre-merge blocks.
type Header struct {
	ParentHash common.Hash    `json:"parentHash"`
	Coinbase   common.Address `json:"miner"`
	Number     uint64         `json:"number"`
	Time       uint64         `json:"timestamp"`
	Difficulty *uint256.Int   `json:"difficulty"`
	Extra      []byte         `json:"extraData"`

	// hash caches the value the sealed payload was decoded with. The driver
	// trusts this value rather than recomputing a real RLP/Keccak hash,
	// since decoding payloads into sealed blocks is out of scope here.
	hash common.Hash
}

// SetHash seals the header with the hash computed by the (external) payload
// decoder, analogous to types.Block's "sealed" invariant upstream.
func (h *Header) SetHash(hash common.Hash) { h.hash = hash }

// Hash returns the header's sealed hash.
func (h *Header) Hash() common.Hash {
	if h.hash.IsZero() {
		panic("types: Hash() called on an unsealed header")
	}
	return h.hash
}

func (h *Header) String() string {
	return fmt.Sprintf("Header(%s number=%d parent=%s)", h.hash.Hex(), h.Number, h.ParentHash.Hex())
}

// TotalDifficulty is carried alongside the header by whatever decoded the
// payload (block/header decoding is out of scope); the tree consults it to
// classify pre-merge blocks.
type SealedBlock struct {
	Header          *Header
	TotalDifficulty *uint256.Int
}

func (b *SealedBlock) Hash() common.Hash       { return b.Header.Hash() }
func (b *SealedBlock) NumberU64() uint64       { return b.Header.Number }
func (b *SealedBlock) ParentHash() common.Hash { return b.Header.ParentHash }
func (b *SealedBlock) Time() uint64            { return b.Header.Time }
