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

// Package engine holds the Engine API's wire-level vocabulary: the
// ForkchoiceState the CL supplies, the PayloadStatus/ForkchoiceUpdated
// replies the driver sends back, and the payload attributes and IDs used to
// hand off to the payload builder. The two RPCs these types support
// (engine_newPayloadVX, engine_forkchoiceUpdatedVX) are referenced by name
// only; framing and transport belong to the RPC layer.
package engine

import (
	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/common/hexutil"
	"github.com/holiman/uint256"
)

// ForkchoiceStateV1 is the CL's view of which blocks the EL should track.
// Any hash may be zero, meaning "not supplied".
type ForkchoiceStateV1 struct {
	HeadBlockHash      common.Hash
	SafeBlockHash      common.Hash
	FinalizedBlockHash common.Hash
}

// Status is the payload-validity tag the protocol defines.
type Status string

const (
	VALID    Status = "VALID"
	INVALID  Status = "INVALID"
	SYNCING  Status = "SYNCING"
	ACCEPTED Status = "ACCEPTED"
)

// PayloadStatusV1 is the status half of both engine_newPayload and
// engine_forkchoiceUpdated responses.
type PayloadStatusV1 struct {
	Status          Status
	LatestValidHash *common.Hash
	ValidationError *string
}

// Valid builds a VALID status carrying the given latest-valid hash.
func Valid(hash common.Hash) PayloadStatusV1 {
	h := hash
	return PayloadStatusV1{Status: VALID, LatestValidHash: &h}
}

// Invalid builds an INVALID status; latestValid may be the zero hash, which
// the protocol uses for pre-merge rejections.
func Invalid(reason string, latestValid common.Hash) PayloadStatusV1 {
	r := reason
	h := latestValid
	return PayloadStatusV1{Status: INVALID, LatestValidHash: &h, ValidationError: &r}
}

func Syncing() PayloadStatusV1  { return PayloadStatusV1{Status: SYNCING} }
func Accepted() PayloadStatusV1 { return PayloadStatusV1{Status: ACCEPTED} }

// InvalidNoHash builds an INVALID status that omits latestValidHash
// entirely, for the replies the protocol defines without one: an empty
// local head, a malformed payload that never reached validation, or a tree
// error with no known-good ancestor to point to.
func InvalidNoHash(reason string) PayloadStatusV1 {
	r := reason
	return PayloadStatusV1{Status: INVALID, ValidationError: &r}
}

// PayloadID identifies a running payload-build job.
type PayloadID [8]byte

// ForkchoiceUpdatedV1 is the full reply to engine_forkchoiceUpdated: a
// status plus, only when the update was valid, attributes were supplied,
// and payload construction was started, a PayloadID.
type ForkchoiceUpdatedV1 struct {
	PayloadStatus PayloadStatusV1
	PayloadID     *PayloadID
}

// PayloadAttributes instructs the execution layer to begin building a new
// block on top of the forkchoice head.
type PayloadAttributes struct {
	Timestamp             uint64
	Random                common.Hash
	SuggestedFeeRecipient common.Address
}

// ExecutableData is the execution payload the CL hands to engine_newPayload.
// Transaction and withdrawal lists are intentionally absent: decoding them
// into a sealed block is an external collaborator's job. Number/Timestamp and
// ExtraData use the Engine API's hex-over-JSON quantity/byte-array encoding
// (see package hexutil) since this type crosses the wire as JSON even though
// this package itself doesn't own the RPC transport.
type ExecutableData struct {
	ParentHash      common.Hash    `json:"parentHash"`
	FeeRecipient    common.Address `json:"feeRecipient"`
	Number          hexutil.Uint64 `json:"blockNumber"`
	Timestamp       hexutil.Uint64 `json:"timestamp"`
	ExtraData       hexutil.Bytes  `json:"extraData"`
	BlockHash       common.Hash    `json:"blockHash"`
	TotalDifficulty *uint256.Int   `json:"totalDifficulty"`
}
