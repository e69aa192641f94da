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

package catalyst

import (
	"context"

	"github.com/google/uuid"

	"github.com/fenrirchain/fenrir/beacon/engine"
)

// Handle is the only surface the Engine API transport talks to. Every method
// posts one message to the driver's mailbox and waits for its one-shot
// reply, so callers never see the driver's internal locking or goroutine
// structure. A Handle is safe for concurrent use by many callers.
type Handle struct {
	mbox *mailbox
}

// NewPayload implements engine_newPayloadVX: submit an execution payload for
// validation and, if its parent is already known, insertion.
func (h *Handle) NewPayload(ctx context.Context, payload engine.ExecutableData) (engine.PayloadStatusV1, error) {
	reply := make(chan engine.PayloadStatusV1, 1)
	if !h.mbox.send(&newPayloadMsg{id: uuid.New(), payload: payload, reply: reply}) {
		return engine.PayloadStatusV1{}, ErrEngineUnavailable
	}
	select {
	case status, ok := <-reply:
		if !ok {
			return engine.PayloadStatusV1{}, ErrEngineUnavailable
		}
		return status, nil
	case <-ctx.Done():
		return engine.PayloadStatusV1{}, ctx.Err()
	}
}

// ForkchoiceUpdated implements engine_forkchoiceUpdatedVX: update the
// driver's view of the canonical head and, if attrs is non-nil, start
// building a payload on top of it.
func (h *Handle) ForkchoiceUpdated(ctx context.Context, state engine.ForkchoiceStateV1, attrs *engine.PayloadAttributes) (engine.ForkchoiceUpdatedV1, error) {
	future, err := h.SendForkchoiceUpdated(ctx, state, attrs)
	if err != nil {
		return engine.ForkchoiceUpdatedV1{}, err
	}
	select {
	case onFcu, ok := <-future:
		if !ok {
			return engine.ForkchoiceUpdatedV1{}, ErrEngineUnavailable
		}
		return onFcu.Resolve()
	case <-ctx.Done():
		return engine.ForkchoiceUpdatedV1{}, ctx.Err()
	}
}

// SendForkchoiceUpdated posts the call without waiting for the reply to
// resolve, handing the caller a channel it can select on alongside its own
// context. This is the asynchronous half of the Handle-to-Engine wiring: it
// lets a caller overlap several in-flight forkchoiceUpdated calls instead of
// blocking the transport goroutine on each one in turn.
func (h *Handle) SendForkchoiceUpdated(ctx context.Context, state engine.ForkchoiceStateV1, attrs *engine.PayloadAttributes) (<-chan OnForkchoiceUpdated, error) {
	reply := make(chan OnForkchoiceUpdated, 1)
	if !h.mbox.send(&forkchoiceUpdatedMsg{id: uuid.New(), state: state, attrs: attrs, reply: reply}) {
		return nil, ErrEngineUnavailable
	}
	return reply, nil
}
