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

import "github.com/fenrirchain/fenrir/stagedsync"

// pipelineResult is what the background pipeline worker reports back through
// its one-shot completion channel.
type pipelineResult struct {
	result stagedsync.Result
	err    error
}

// pipelineSlot holds the engine's single staged-sync pipeline in exactly one
// of two shapes at a time: idle (the driver owns it and may start a run) or
// running (a worker owns it and the driver is waiting on its done channel).
// The zero value is not idle; newIdlePipelineSlot builds the idle slot.
// Every transition goes through setIdle/setRunning so a second run can never be started while one is already outstanding —
// a violation panics rather than silently racing the pipeline.
type pipelineSlot struct {
	idle bool
	done chan pipelineResult
}

func newIdlePipelineSlot() pipelineSlot {
	return pipelineSlot{idle: true}
}

// isIdle reports whether the pipeline is currently idle.
func (s pipelineSlot) isIdle() bool { return s.idle }

// setRunning transitions an idle slot to running, recording the worker's
// completion channel. It panics if the slot was already running: the driver
// must never spawn a second pipeline run concurrently with one in flight.
func (s pipelineSlot) setRunning(done chan pipelineResult) pipelineSlot {
	if !s.idle {
		panic("catalyst: pipeline slot is already running")
	}
	return pipelineSlot{idle: false, done: done}
}

// setIdle transitions a running slot back to idle once its result has been
// consumed. It panics if the slot was already idle.
func (s pipelineSlot) setIdle() pipelineSlot {
	if s.idle {
		panic("catalyst: pipeline slot is already idle")
	}
	return newIdlePipelineSlot()
}
