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

	"github.com/fenrirchain/fenrir/blockchaintree"
	"github.com/fenrirchain/fenrir/consensus/beacon"
	"github.com/fenrirchain/fenrir/core/rawdb"
	"github.com/fenrirchain/fenrir/params"
	"github.com/fenrirchain/fenrir/payloadbuilder"
	"github.com/fenrirchain/fenrir/stagedsync"
)

// Register builds a complete, ready-to-start driver from just a database
// and a chain config, wiring up the reference in-memory tree, the
// placeholder staged sync pipeline and a local payload builder. It is the
// equivalent of the upstream RegisterFull helper that a node's backend
// calls during startup; nodes that already run their own tree or pipeline
// should call New directly instead.
func Register(ctx context.Context, db rawdb.Reader, chainConfig *params.ChainConfig) *Handle {
	consensus := beacon.New(chainConfig)
	tree := blockchaintree.NewShareableTree(blockchaintree.NewInMemoryTree(db, consensus))
	handle, driver := New(Config{
		DB:             db,
		Tree:           tree,
		Pipeline:       stagedsync.NewPipeline(db),
		PayloadBuilder: payloadbuilder.NewLocalHandle(),
		ChainConfig:    chainConfig,
		Consensus:      consensus,
	})
	driver.Start(ctx)
	return handle
}

// RegisterAuthenticated is Register plus a JWT Authenticator built around
// jwtSecret, for backends that front the Handle with an HTTP transport and
// need to reject calls the CL never signed.
func RegisterAuthenticated(ctx context.Context, db rawdb.Reader, chainConfig *params.ChainConfig, jwtSecret [32]byte) (*Handle, *Authenticator) {
	return Register(ctx, db, chainConfig), NewAuthenticator(jwtSecret)
}
