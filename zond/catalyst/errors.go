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
	"errors"
	"fmt"
)

// ErrEngineUnavailable is returned by Handle methods once the driver has
// exited and stopped accepting mail.
var ErrEngineUnavailable = errors.New("catalyst: engine is unavailable")

// ErrPipelineChannelClosed is a fatal driver error: the background worker's
// completion channel closed without ever sending a result.
var ErrPipelineChannelClosed = errors.New("catalyst: pipeline completion channel closed unexpectedly")

// PipelineError wraps a fatal error surfaced by the staged sync pipeline.
// The driver treats this as terminal: sync cannot make progress.
type PipelineError struct{ Err error }

func (e *PipelineError) Error() string { return fmt.Sprintf("pipeline error: %v", e.Err) }
func (e *PipelineError) Unwrap() error { return e.Err }

// DatabaseError wraps a fatal error returned by the database reader. Like
// PipelineError, the driver treats this as terminal.
type DatabaseError struct{ Err error }

func (e *DatabaseError) Error() string { return fmt.Sprintf("database error: %v", e.Err) }
func (e *DatabaseError) Unwrap() error { return e.Err }

// decodeError wraps a failure to turn an ExecutableData payload into a
// sealed block. It is never fatal to the driver: newPayload replies INVALID
// with no latestValidHash and processing continues.
type decodeError struct{ Err error }

func (e *decodeError) Error() string { return fmt.Sprintf("invalid payload: %v", e.Err) }
func (e *decodeError) Unwrap() error { return e.Err }
