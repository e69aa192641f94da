// Copyright 2021 The go-ethereum Authors
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

// Package beacon is the proof-of-stake consensus engine consulted by the
// blockchain tree before it accepts a block or a forkchoice head. Everything
// about PoW-era header verification (extradata limits, gas-limit bounds,
// EIP-1559 checks, withdrawals-root presence) belongs to execution semantics
// this spec leaves external; what survives here is the one rule the tree
// depends on: whether a block still precedes the terminal PoW block.
package beacon

import (
	"errors"

	"github.com/fenrirchain/fenrir/core/types"
	"github.com/fenrirchain/fenrir/params"
	"github.com/holiman/uint256"
)

var errInvalidTimestamp = errors.New("invalid timestamp")

// Beacon is a thin consensus engine that classifies a block against the
// merge transition and checks timestamp sequencing. It replaces the upstream engine's full
// PoW/PoS header-verification surface.
type Beacon struct {
	config *params.ChainConfig
}

func New(config *params.ChainConfig) *Beacon {
	return &Beacon{config: config}
}

// VerifySequencing checks the header-chain invariant the driver applies
// before starting a payload build: a child's timestamp must strictly
// increase over its parent's.
func (beacon *Beacon) VerifySequencing(parent, header *types.Header) error {
	if header.Time <= parent.Time {
		return errInvalidTimestamp
	}
	return nil
}

// IsTerminalPoWBlock reports whether header still lies before the terminal
// total difficulty, i.e. whether accepting it would violate the Engine API's
// merge-transition rule. totalDifficulty is supplied by whatever decoded the
// block, since difficulty accounting is itself execution-stack territory.
func (beacon *Beacon) IsTerminalPoWBlock(totalDifficulty *uint256.Int) bool {
	return beacon.config.IsPreMerge(totalDifficulty)
}
