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

// Package payloadbuilder is the handle the driver uses to kick off block
// production for a forkchoiceUpdated call that carries payload attributes.
// The actual block-building loop (transaction selection, state execution,
// sealing) is this package's external collaborator; all the driver needs is
// a synchronous handshake that returns a PayloadID immediately while the
// build proceeds in the background.
package payloadbuilder

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/fenrirchain/fenrir/beacon/engine"
	"github.com/fenrirchain/fenrir/common"
)

// Attributes mirrors engine.PayloadAttributes plus the resolved parent the
// new payload builds on top of — the equivalent of the upstream
// miner.BuildPayloadArgs.
type Attributes struct {
	Parent                common.Hash
	Timestamp             uint64
	SuggestedFeeRecipient common.Address
	Random                common.Hash
}

// Id derives a stable PayloadID from the build arguments, the same role
// BuildPayloadArgs.Id() plays upstream: identical attributes submitted twice
// must resolve to the same id so the driver can recognise "already building
// this".
func (a Attributes) Id() engine.PayloadID {
	h := sha256.New()
	h.Write(a.Parent.Bytes())
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], a.Timestamp)
	h.Write(buf[:])
	h.Write(a.SuggestedFeeRecipient.Bytes())
	h.Write(a.Random.Bytes())
	sum := h.Sum(nil)
	var id engine.PayloadID
	copy(id[:], sum[:len(id)])
	return id
}

// Handle is the synchronous submission surface the driver depends on.
type Handle interface {
	// Submit starts (or recognises an already-running) payload build and
	// returns its id immediately; the build itself proceeds in the
	// background.
	Submit(attrs Attributes) (engine.PayloadID, error)
}

// LocalHandle is an in-process Handle that only tracks which ids are
// "in flight"; it never actually assembles a block, since block-building is
// out of scope here.
type LocalHandle struct {
	mu      sync.Mutex
	pending map[engine.PayloadID]Attributes
}

func NewLocalHandle() *LocalHandle {
	return &LocalHandle{pending: make(map[engine.PayloadID]Attributes)}
}

func (h *LocalHandle) Submit(attrs Attributes) (engine.PayloadID, error) {
	id := attrs.Id()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending[id] = attrs
	return id, nil
}
