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

// Package log is the structured logger used throughout the driver. It mirrors
// the key/value calling convention of the upstream logger (Trace/Debug/Info/
// Warn/Error/Crit with "key", value pairs) but is built directly on log/slog,
// colorized through go-isatty/go-colorable when attached to a terminal.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// LvlTrace sits below slog's own Debug level so that "Trace" calls can be
// filtered out independently of "Debug" ones, matching the five-level scheme
// the rest of the ecosystem expects.
const LvlTrace = slog.Level(-8)

var root = newDefault()

func newDefault() *slog.Logger {
	var w = os.Stderr
	var out io.Writer = w
	if isatty.IsTerminal(w.Fd()) {
		out = colorable.NewColorable(w)
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: LvlTrace})
	return slog.New(h)
}

// SetDefault swaps the package-level logger, e.g. to raise verbosity or
// redirect output in tests.
func SetDefault(l *slog.Logger) { root = l }

func Trace(msg string, ctx ...any) { root.Log(context.Background(), LvlTrace, msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }

// Crit logs at error level and then terminates the process. It is reserved
// for corruption that must never be allowed to propagate silently, mirroring
// the upstream rawdb package's use of log.Crit on unrecoverable DB writes.
func Crit(msg string, ctx ...any) {
	root.Error(msg, ctx...)
	os.Exit(1)
}

// New returns a child logger carrying the given static key/value context.
func New(ctx ...any) *slog.Logger { return root.With(ctx...) }
