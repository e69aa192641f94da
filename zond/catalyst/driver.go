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
	"errors"
	"fmt"

	"github.com/fenrirchain/fenrir/beacon/engine"
	"github.com/fenrirchain/fenrir/blockchaintree"
	"github.com/fenrirchain/fenrir/common"
	"github.com/fenrirchain/fenrir/consensus/beacon"
	"github.com/fenrirchain/fenrir/core/rawdb"
	"github.com/fenrirchain/fenrir/core/types"
	"github.com/fenrirchain/fenrir/log"
	"github.com/fenrirchain/fenrir/params"
	"github.com/fenrirchain/fenrir/payloadbuilder"
	"github.com/fenrirchain/fenrir/stagedsync"
)

// Driver is the single writer of consensus state: the one goroutine allowed
// to mutate the blockchain tree and to start staged sync pipeline runs. All
// other access — from the Engine API transport, from RPC readers of the
// tree — goes through the mailbox or through ShareableTree's own lock.
type Driver struct {
	mbox *mailbox

	db        rawdb.Reader
	tree      *blockchaintree.ShareableTree
	pipeline  stagedsync.Runner
	builder   payloadbuilder.Handle
	consensus *beacon.Beacon

	slot pipelineSlot

	havePriorForkchoice bool
	forkchoiceState     engine.ForkchoiceStateV1
	pipelineProgress    *uint64
	maxBlock            *uint64

	done    chan struct{}
	err     error
	success bool
}

// Config wires together the Driver's external collaborators. None of them
// are owned by this package: the database, the tree, the pipeline and the
// payload builder all outlive, and are shared beyond, a single Driver.
type Config struct {
	DB             rawdb.Reader
	Tree           *blockchaintree.ShareableTree
	Pipeline       stagedsync.Runner
	PayloadBuilder payloadbuilder.Handle
	ChainConfig    *params.ChainConfig
	Consensus      *beacon.Beacon

	// MaxBlock, if set, bounds historical sync: once the pipeline's minimum
	// progress (or the tree's canonical tip) reaches it, the driver
	// terminates cleanly instead of parking forever.
	MaxBlock *uint64
}

// New builds the mailbox-connected Handle/Driver pair. The Handle is safe to
// hand to the Engine API transport immediately; the Driver must still be
// started with Start.
func New(cfg Config) (*Handle, *Driver) {
	mbox := newMailbox()
	d := &Driver{
		mbox:      mbox,
		db:        cfg.DB,
		tree:      cfg.Tree,
		pipeline:  cfg.Pipeline,
		builder:   cfg.PayloadBuilder,
		consensus: cfg.Consensus,
		maxBlock:  cfg.MaxBlock,
		slot:      newIdlePipelineSlot(),
		done:      make(chan struct{}),
	}
	return &Handle{mbox: mbox}, d
}

// Start runs the driver loop in its own goroutine until ctx is cancelled or
// a fatal error forces it to stop early.
func (d *Driver) Start(ctx context.Context) {
	go d.run(ctx)
}

// Done is closed once the driver loop has exited, for whatever reason.
func (d *Driver) Done() <-chan struct{} { return d.done }

// Err returns the fatal error that stopped the driver, or nil if it exited
// because ctx was cancelled or Done hasn't fired yet.
func (d *Driver) Err() error { return d.err }

// Success reports whether the driver terminated cleanly because MaxBlock
// was reached, as opposed to being cancelled or failing fatally.
func (d *Driver) Success() bool { return d.success }

// run is the cooperative event loop: drain the mailbox, advance the
// pipeline slot, park. Exactly one of these three things happens on each
// iteration, so the tree and the pipeline slot are never touched from two
// goroutines at once.
func (d *Driver) run(ctx context.Context) {
	defer close(d.done)
	defer func() {
		if r := recover(); r != nil {
			d.shutdown(fmt.Errorf("catalyst: driver panic: %v", r))
		}
	}()

	for {
		var pipelineDone <-chan pipelineResult
		if !d.slot.isIdle() {
			pipelineDone = d.slot.done
		}

		select {
		case <-ctx.Done():
			d.shutdown(ctx.Err())
			return

		case <-d.mbox.wait():
			for _, msg := range d.mbox.drain() {
				if err := d.dispatch(msg); err != nil {
					d.shutdown(err)
					return
				}
			}
			if d.maxBlockReached() {
				d.success = true
				d.shutdown(nil)
				return
			}

		case res, ok := <-pipelineDone:
			d.slot = d.slot.setIdle()
			if !ok {
				d.shutdown(ErrPipelineChannelClosed)
				return
			}
			done, err := d.onPipelineResult(res)
			if err != nil {
				d.shutdown(err)
				return
			}
			if done {
				d.success = true
				d.shutdown(nil)
				return
			}
		}
	}
}

// shutdown records a fatal cause (a clean ctx.Cancel is not fatal) and
// drops every message still queued, closing their reply channels so blocked
// Handle callers observe ErrEngineUnavailable instead of hanging forever.
func (d *Driver) shutdown(cause error) {
	if cause != nil && !errors.Is(cause, context.Canceled) {
		d.err = cause
		log.Error("Consensus engine driver terminated", "err", cause)
	}
	for _, msg := range d.mbox.close() {
		msg.closeReply()
	}
}

// dispatch routes one drained message to its handler and posts the reply.
// A non-nil return is always fatal to the driver loop; every recoverable
// outcome is encoded in the reply value instead.
func (d *Driver) dispatch(msg Message) error {
	switch m := msg.(type) {
	case *newPayloadMsg:
		log.Trace("Dispatching newPayload", "id", m.id, "hash", m.payload.BlockHash)
		status, err := d.dispatchNewPayload(m.payload)
		if err != nil {
			return err
		}
		m.reply <- status
	case *forkchoiceUpdatedMsg:
		log.Trace("Dispatching forkchoiceUpdated", "id", m.id, "head", m.state.HeadBlockHash)
		onFcu, err := d.dispatchForkchoiceUpdated(m.state, m.attrs)
		if err != nil {
			return err
		}
		m.reply <- onFcu
	default:
		return fmt.Errorf("catalyst: unknown mailbox message %T", msg)
	}
	return nil
}

// dispatchNewPayload implements engine_newPayload's decision rule: while
// historical sync is running, or before the CL has ever supplied a head,
// the tree is never touched and every payload that decodes is answered
// SYNCING (one that fails to decode is answered INVALID); only
// once caught up does a payload's fate depend on tree insertion.
func (d *Driver) dispatchNewPayload(payload engine.ExecutableData) (engine.PayloadStatusV1, error) {
	block, err := decodeExecutableData(payload)
	if err != nil {
		wrapped := &decodeError{Err: err}
		log.Debug("Invalid new payload: decode failed", "hash", payload.BlockHash, "err", wrapped)
		return engine.InvalidNoHash(wrapped.Error()), nil
	}
	if !d.slot.isIdle() || !d.havePriorForkchoice {
		return engine.Syncing(), nil
	}

	status, err := d.tree.InsertBlock(block)
	if err == nil {
		switch status {
		case blockchaintree.Valid:
			log.Info("Inserted new payload", "number", block.NumberU64(), "hash", block.Hash())
			return engine.Valid(block.Hash()), nil
		case blockchaintree.Accepted:
			log.Debug("Accepted new payload on side branch", "number", block.NumberU64(), "hash", block.Hash())
			return engine.Accepted(), nil
		default: // Disconnected
			return engine.Syncing(), nil
		}
	}

	var preMerge *blockchaintree.ErrBlockPreMerge
	switch {
	case errors.As(err, &preMerge):
		log.Debug("Rejected pre-merge new payload", "hash", block.Hash())
		return engine.Invalid("block is pre-merge", common.Hash{}), nil
	case errors.Is(err, blockchaintree.ErrPendingBlockIsInFuture):
		return engine.Syncing(), nil
	default:
		return engine.InvalidNoHash(err.Error()), nil
	}
}

// dispatchForkchoiceUpdated implements engine_forkchoiceUpdated's decision
// rule, applied in order: empty head, pipeline busy, attempt to canonicalise,
// then classify the failure if canonicalisation didn't succeed. "First
// forkchoice" is evaluated against the state recorded before this call.
func (d *Driver) dispatchForkchoiceUpdated(state engine.ForkchoiceStateV1, attrs *engine.PayloadAttributes) (OnForkchoiceUpdated, error) {
	if state.HeadBlockHash.IsZero() {
		return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: engine.InvalidNoHash("head block hash is empty")}), nil
	}
	if !d.slot.isIdle() {
		d.forkchoiceState = state
		return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: engine.Syncing()}), nil
	}

	wasFirstForkchoice := !d.havePriorForkchoice
	d.havePriorForkchoice = true

	err := d.tree.MakeCanonical(state.HeadBlockHash)
	if err == nil {
		d.forkchoiceState = state
		d.maybeFinalize(state.FinalizedBlockHash)
		if number, _ := d.tree.CanonicalTip(); d.pipelineProgress == nil || number > *d.pipelineProgress {
			d.trySpawnBackfill(state.HeadBlockHash, stagedsync.Head)
		}
		return d.acceptHead(state.HeadBlockHash, attrs)
	}

	var preMerge *blockchaintree.ErrBlockPreMerge
	if errors.As(err, &preMerge) {
		d.forkchoiceState = state
		d.trySpawnBackfill(state.HeadBlockHash, stagedsync.Head)
		return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: engine.Invalid(err.Error(), common.Hash{})}), nil
	}

	d.forkchoiceState = state
	if wasFirstForkchoice && !state.SafeBlockHash.IsZero() {
		if _, ok := d.db.HeaderNumber(state.SafeBlockHash); !ok {
			d.trySpawnBackfill(state.SafeBlockHash, stagedsync.Safe)
			return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: engine.Syncing()}), nil
		}
	}
	d.trySpawnBackfill(state.HeadBlockHash, stagedsync.Head)
	return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: engine.Syncing()}), nil
}

// acceptHead finishes a forkchoiceUpdated call once head has been
// established as canonical: start a payload build if attrs were supplied,
// otherwise reply with a bare VALID.
func (d *Driver) acceptHead(head common.Hash, attrs *engine.PayloadAttributes) (OnForkchoiceUpdated, error) {
	status := engine.Valid(head)
	if attrs == nil {
		return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: status}), nil
	}

	if number, known := d.db.HeaderNumber(head); known {
		if headHeader, ok := d.db.Header(number); ok {
			candidate := &types.Header{Time: attrs.Timestamp}
			if err := d.consensus.VerifySequencing(headHeader, candidate); err != nil {
				return ReadyErr(engine.InvalidPayloadAttributes.With(err)), nil
			}
		}
	}

	id, err := d.builder.Submit(payloadbuilder.Attributes{
		Parent:                head,
		Timestamp:             attrs.Timestamp,
		SuggestedFeeRecipient: attrs.SuggestedFeeRecipient,
		Random:                attrs.Random,
	})
	if err != nil {
		return ReadyErr(engine.InvalidPayloadAttributes.With(err)), nil
	}
	return Ready(engine.ForkchoiceUpdatedV1{PayloadStatus: status, PayloadID: &id}), nil
}

// maybeFinalize advances the tree's pruning floor when the CL has supplied
// a non-empty finalized hash the database already knows about.
func (d *Driver) maybeFinalize(finalized common.Hash) {
	if finalized.IsZero() {
		return
	}
	if number, ok := d.db.HeaderNumber(finalized); ok {
		d.tree.FinalizeBlock(number)
	}
}

// restoreTreeIfPossible rebuilds the tree's canonical index from whatever
// the database has already persisted, per §4.4.3: restore from the
// finalized boundary if it's resolvable, then check whether the recorded
// head is now resolvable too; if either isn't, schedule another backfill
// towards head.
func (d *Driver) restoreTreeIfPossible() error {
	finalizedNumber, ok := d.db.HeaderNumber(d.forkchoiceState.FinalizedBlockHash)
	if !ok {
		d.trySpawnBackfill(d.forkchoiceState.HeadBlockHash, stagedsync.Head)
		return nil
	}
	if err := d.tree.RestoreCanonicalHashes(finalizedNumber); err != nil {
		return &DatabaseError{Err: err}
	}
	if _, ok := d.db.HeaderNumber(d.forkchoiceState.HeadBlockHash); !ok {
		d.trySpawnBackfill(d.forkchoiceState.HeadBlockHash, stagedsync.Head)
	}
	return nil
}

// trySpawnBackfill starts a staged sync run towards tip if the pipeline
// slot is idle. If a run is already outstanding, the request is dropped:
// the in-flight run will make at least as much progress, and the next
// forkchoiceUpdated call will ask again if it's still not enough.
func (d *Driver) trySpawnBackfill(tip common.Hash, target stagedsync.Target) {
	if !d.slot.isIdle() {
		return
	}
	done := make(chan pipelineResult, 1)
	d.slot = d.slot.setRunning(done)
	pipeline := d.pipeline
	log.Debug("Starting staged sync pipeline", "tip", tip, "target", target)
	go func() {
		result, err := pipeline.Run(tip, target)
		done <- pipelineResult{result: result, err: err}
	}()
}

// onPipelineResult is invoked back on the driver goroutine once a
// background pipeline run completes, so it may safely touch the tree. It
// reports true when MaxBlock has now been reached and the driver should
// terminate cleanly.
func (d *Driver) onPipelineResult(res pipelineResult) (bool, error) {
	if res.err != nil {
		var stageErr *stagedsync.StageError
		if errors.As(res.err, &stageErr) {
			return false, &PipelineError{Err: stageErr}
		}
		return false, &PipelineError{Err: res.err}
	}

	min := res.result.Progress.Minimum()
	d.pipelineProgress = min
	log.Debug("Pipeline run finished", "progress", min, "unwound", res.result.Unwound)

	if res.result.Unwound {
		d.trySpawnBackfill(d.forkchoiceState.HeadBlockHash, stagedsync.Head)
		return false, nil
	}
	if d.maxBlock != nil && min != nil && *min >= *d.maxBlock {
		return true, nil
	}
	if err := d.restoreTreeIfPossible(); err != nil {
		return false, err
	}
	return false, nil
}

// maxBlockReached reports whether the tree's canonical tip has reached the
// configured MaxBlock. The run loop checks it after every mailbox drain, so
// a tip advanced by a valid forkchoiceUpdated or by a newPayload inserted
// onto the canonical chain both count.
func (d *Driver) maxBlockReached() bool {
	if d.maxBlock == nil {
		return false
	}
	number, _ := d.tree.CanonicalTip()
	return number >= *d.maxBlock
}

// decodeExecutableData turns the Engine API's minimal execution payload
// into a SealedBlock. ExecutableData already omits everything
// transaction/withdrawal related, so this is a direct field-for-field
// lift rather than a real block decoder; it still rejects the one thing the
// protocol requires: a payload cannot be its own parent.
func decodeExecutableData(data engine.ExecutableData) (*types.SealedBlock, error) {
	if data.ParentHash == data.BlockHash {
		return nil, errors.New("block hash equals parent hash")
	}
	header := &types.Header{
		ParentHash: data.ParentHash,
		Coinbase:   data.FeeRecipient,
		Number:     uint64(data.Number),
		Time:       uint64(data.Timestamp),
		Extra:      data.ExtraData,
	}
	header.SetHash(data.BlockHash)
	return &types.SealedBlock{Header: header, TotalDifficulty: data.TotalDifficulty}, nil
}
