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

// Package catalyst hosts the consensus-engine driver: the subsystem that
// mediates between a consensus-layer peer speaking the Engine API and the
// node's historical staged sync pipeline and live blockchain tree.
package catalyst

import (
	"github.com/google/uuid"

	"github.com/fenrirchain/fenrir/beacon/engine"
)

// Message is the mailbox's single envelope type. Both variants carry a
// one-shot reply: the driver sends exactly one reply per message it
// dispatches, and drops the reply (closes the channel) instead if it can no
// longer produce one because the engine is terminating.
type Message interface {
	closeReply()
	correlationID() uuid.UUID
}

// newPayloadMsg asks the driver to validate and, if possible, insert an
// execution payload.
type newPayloadMsg struct {
	id      uuid.UUID
	payload engine.ExecutableData
	reply   chan engine.PayloadStatusV1
}

func (m *newPayloadMsg) closeReply()              { close(m.reply) }
func (m *newPayloadMsg) correlationID() uuid.UUID { return m.id }

// forkchoiceUpdatedMsg asks the driver to update its view of the canonical
// head, optionally starting a new payload build on top of it.
type forkchoiceUpdatedMsg struct {
	id    uuid.UUID
	state engine.ForkchoiceStateV1
	attrs *engine.PayloadAttributes
	reply chan OnForkchoiceUpdated
}

func (m *forkchoiceUpdatedMsg) closeReply()              { close(m.reply) }
func (m *forkchoiceUpdatedMsg) correlationID() uuid.UUID { return m.id }

// payloadIDResult is what the payload builder's async handshake resolves to
// when an OnForkchoiceUpdated was created in its "pending" shape.
type payloadIDResult struct {
	id  engine.PayloadID
	err error
}

// OnForkchoiceUpdated is a lazy ForkchoiceUpdated reply. It lets the driver
// answer the CL immediately in the common case (eager arm) while still
// supporting a future where attribute submission to the payload builder
// happens asynchronously (deferred arm) without changing the reply type the
// Handle hands back to callers. Submission is synchronous today (see
// Driver.acceptHead); the deferred arm exists so that can
// change without reshaping this type.
type OnForkchoiceUpdated struct {
	ready   bool
	result  engine.ForkchoiceUpdatedV1
	callErr error
	status  engine.PayloadStatusV1
	pending <-chan payloadIDResult
}

// Ready builds an OnForkchoiceUpdated that resolves immediately to result.
func Ready(result engine.ForkchoiceUpdatedV1) OnForkchoiceUpdated {
	return OnForkchoiceUpdated{ready: true, result: result}
}

// ReadyErr builds an OnForkchoiceUpdated that resolves immediately to a
// call-level error, e.g. one of the Engine API's reserved error codes. This
// is distinct from a fatal driver error: it only fails the one RPC.
func ReadyErr(err error) OnForkchoiceUpdated {
	return OnForkchoiceUpdated{ready: true, callErr: err}
}

// Pending builds an OnForkchoiceUpdated that resolves once the payload
// builder reports back a PayloadID (or an error, or drops the channel,
// either of which resolves into an invalid-attributes reply).
func Pending(status engine.PayloadStatusV1, ch <-chan payloadIDResult) OnForkchoiceUpdated {
	return OnForkchoiceUpdated{status: status, pending: ch}
}

// Resolve drives the reply to completion.
func (o OnForkchoiceUpdated) Resolve() (engine.ForkchoiceUpdatedV1, error) {
	if o.ready {
		return o.result, o.callErr
	}
	r, ok := <-o.pending
	if !ok || r.err != nil {
		return engine.ForkchoiceUpdatedV1{PayloadStatus: invalidAttributes(r.err)}, nil
	}
	id := r.id
	return engine.ForkchoiceUpdatedV1{PayloadStatus: o.status, PayloadID: &id}, nil
}

func invalidAttributes(err error) engine.PayloadStatusV1 {
	reason := "invalid payload attributes"
	if err != nil {
		reason = reason + ": " + err.Error()
	}
	return engine.PayloadStatusV1{Status: engine.INVALID, ValidationError: &reason}
}
