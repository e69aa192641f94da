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

package engine

import "fmt"

// EngineAPIError is a JSON-RPC error carrying one of the Engine API's
// reserved error codes.
type EngineAPIError struct {
	Code    int
	Message string
}

func (e *EngineAPIError) Error() string { return e.Message }
func (e *EngineAPIError) ErrorCode() int { return e.Code }

// With returns a copy of e with a wrapped cause appended to the message, the
// same pattern the upstream catalyst package uses to attach context to a
// reserved error code without losing the code itself.
func (e *EngineAPIError) With(err error) error {
	return &EngineAPIError{Code: e.Code, Message: fmt.Sprintf("%s: %v", e.Message, err)}
}

// InvalidPayloadAttributes is engine API error -38003: the payload
// attributes supplied with a forkchoiceUpdated call were invalid (here,
// attrs.timestamp <= head.timestamp).
var InvalidPayloadAttributes = &EngineAPIError{Code: -38003, Message: "invalid payload attributes"}
