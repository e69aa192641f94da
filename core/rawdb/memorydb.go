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

package rawdb

import (
	"sync"

	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/core/types"
)

// MemoryDatabase is a trivial in-memory Reader/Writer used to wire up the
// driver outside of a real storage engine (tests, the reference wiring, and
// the in-memory blockchain tree's restore path).
type MemoryDatabase struct {
	mu        sync.RWMutex
	numbers   map[common.Hash]uint64
	headers   map[uint64]*types.Header
	canonical map[uint64]common.Hash
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		numbers:   make(map[common.Hash]uint64),
		headers:   make(map[uint64]*types.Header),
		canonical: make(map[uint64]common.Hash),
	}
}

func (db *MemoryDatabase) HeaderNumber(hash common.Hash) (uint64, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n, ok := db.numbers[hash]
	return n, ok
}

func (db *MemoryDatabase) Header(number uint64) (*types.Header, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	h, ok := db.headers[number]
	return h, ok
}

func (db *MemoryDatabase) CanonicalHash(number uint64) (common.Hash, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	h, ok := db.canonical[number]
	return h, ok
}

// WriteHeader inserts a header into both the Headers and HeaderNumbers
// tables and marks it canonical at its height. It exists for test/wiring
// setup only; the driver itself never writes through Reader.
func (db *MemoryDatabase) WriteHeader(h *types.Header) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.headers[h.Number] = h
	db.numbers[h.Hash()] = h.Number
	db.canonical[h.Number] = h.Hash()
}
