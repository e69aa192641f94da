// Copyright 2022 The go-ethereum Authors
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

// Package rawdb exposes the two read-only, point-lookup tables the driver is
// allowed to see: HeaderNumbers (hash -> number) and Headers (number ->
// header). Everything else the real database engine offers (ancients,
// freezer, state trie nodes, ...) is out of scope.
package rawdb

import (
	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/core/types"
)

// Reader is the read-only view the driver and the tree are handed. It is
// deliberately narrower than a full key/value database: no writes, no
// iteration, no range scans, matching the spec's "short read-only views"
// requirement so that a cursor can never be held open across an await point.
type Reader interface {
	// HeaderNumber resolves a block hash to its number, the HeaderNumbers
	// table.
	HeaderNumber(hash common.Hash) (uint64, bool)
	// Header resolves a block number to its header, the Headers table.
	Header(number uint64) (*types.Header, bool)
	// CanonicalHash resolves a block number to the hash of the canonical
	// block at that height, used to check "is this hash still canonical".
	CanonicalHash(number uint64) (common.Hash, bool)
}
