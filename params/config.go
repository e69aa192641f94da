// Copyright 2017 The go-ethereum Authors
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

// Package params carries the chain-wide constants the driver needs to judge
// whether a block still belongs to the pre-merge era.
package params

import "github.com/holiman/uint256"

// ChainConfig is deliberately a small slice of the upstream chain config:
// fork-scheduling and execution-semantics fields are out of scope for the
// consensus-engine driver and live in the (unimplemented) execution stack.
type ChainConfig struct {
	ChainID *uint256.Int

	// TerminalTotalDifficulty is the total difficulty at which the chain
	// switched from proof-of-work to proof-of-stake. A forkchoice head (or
	// payload) whose total difficulty has not yet reached this value is
	// rejected by the tree as BlockPreMerge.
	TerminalTotalDifficulty *uint256.Int
}

// IsPreMerge reports whether a block carrying the given total difficulty
// still precedes the terminal PoW block, i.e. whether the post-merge engine
// must reject it.
func (c *ChainConfig) IsPreMerge(totalDifficulty *uint256.Int) bool {
	if c == nil || c.TerminalTotalDifficulty == nil || totalDifficulty == nil {
		return false
	}
	return totalDifficulty.Lt(c.TerminalTotalDifficulty)
}
