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

// Package stagedsync is the historical sync engine the driver falls back to
// while it is not yet caught up: a fixed sequence of stages executed against
// a tip, each advancing database state and reporting progress. The stage
// implementations themselves (headers, bodies, senders, execution, ...) are
// an external collaborator per the driver's spec; this package only owns the
// bookkeeping the driver is allowed to see: per-stage progress, the FINISH
// stage, and unwind signalling.
package stagedsync

import (
	"fmt"

	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/core/rawdb"
)

// Target selects which forkchoice hash the driver asks the pipeline to sync
// towards.
type Target int

const (
	Head Target = iota
	Safe
)

func (t Target) String() string {
	if t == Safe {
		return "safe"
	}
	return "head"
}

// StageID names one stage in the fixed sequence. FINISH is always last; the
// driver compares the minimum progress across all stages (Progress.Minimum)
// against MaxBlock.
type StageID string

const FINISH StageID = "Finish"

var order = []StageID{"Headers", "Bodies", "Senders", "Execution", FINISH}

// Progress is the per-stage high-water mark, in block numbers.
type Progress map[StageID]uint64

// Minimum returns the conservative "how far have we synced" measure: the
// lowest progress value across all stages, or nil if no stage has run yet.
func (p Progress) Minimum() *uint64 {
	var min *uint64
	for _, id := range order {
		v, ok := p[id]
		if !ok {
			continue
		}
		if min == nil || v < *min {
			vv := v
			min = &vv
		}
	}
	return min
}

// Get returns the named stage's progress, mirroring FINISH.get_progress.
func (p Progress) Get(id StageID) *uint64 {
	if v, ok := p[id]; ok {
		return &v
	}
	return nil
}

// Result is what a pipeline run reports back: whether it had to unwind
// earlier state, and the progress reached by each stage.
type Result struct {
	Unwound  bool
	Progress Progress
}

// StageError is a fatal error coming out of one of the stages; wrapping it
// keeps the failing stage's identity visible to the driver's error log.
type StageError struct {
	Stage StageID
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// ErrChannelClosed is the StageError a Runner returns when a channel inside
// its stages is closed under it; like any StageError, the driver treats it
// as fatal.
var ErrChannelClosed = &StageError{Stage: "<channel>", Err: fmt.Errorf("pipeline channel closed")}

// Runner is the interface the driver depends on. The production Pipeline
// and the tests' canned fakes both implement it.
type Runner interface {
	// Run executes the staged sequence towards the block identified by tip
	// and returns the terminal stage result. It is always called from a
	// dedicated worker, never from the driver's own goroutine.
	Run(tip common.Hash, target Target) (Result, error)
}

// Pipeline is the reference, in-process staged sync runner. Each stage here
// is a no-op placeholder that advances its progress to the tip's block
// number; real stage bodies (header download, body download, sender
// recovery, execution) are the external collaborator this package defers
// to.
type Pipeline struct {
	db       rawdb.Reader
	progress Progress
}

func NewPipeline(db rawdb.Reader) *Pipeline {
	return &Pipeline{db: db, progress: make(Progress)}
}

func (p *Pipeline) Run(tip common.Hash, target Target) (Result, error) {
	number, ok := p.db.HeaderNumber(tip)
	if !ok {
		// Tip isn't in the database yet; stages make no progress this run.
		return Result{Progress: p.snapshot()}, nil
	}
	for _, id := range order {
		p.progress[id] = number
	}
	return Result{Progress: p.snapshot()}, nil
}

// MinimumProgress exposes the pipeline's own last-known minimum progress
// without requiring a run. It is not part of Runner; the driver instead
// records the minimum progress of each Result it receives.
func (p *Pipeline) MinimumProgress() *uint64 {
	return p.progress.Minimum()
}

func (p *Pipeline) snapshot() Progress {
	out := make(Progress, len(p.progress))
	for k, v := range p.progress {
		out[k] = v
	}
	return out
}
