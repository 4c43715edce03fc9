// Copyright 2021 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package log

import "os"

var root = &logger{ctx: []interface{}{}, h: new(swapHandler)}

func init() {
	root.SetHandler(LvlFilterHandler(LvlInfo, StreamHandler(os.Stderr, TerminalFormat(false))))
}

// Root returns the root logger.
func Root() Logger { return root }

// SetDefault sets the handler used by the root logger (and, by inheritance,
// every Logger derived from it via New that has not overridden its own
// handler).
func SetDefault(h Handler) { root.SetHandler(h) }

func Trace(msg string, ctx ...interface{}) { root.write(msg, LvlTrace, ctx, 2) }
func Debug(msg string, ctx ...interface{}) { root.write(msg, LvlDebug, ctx, 2) }
func Info(msg string, ctx ...interface{})  { root.write(msg, LvlInfo, ctx, 2) }
func Warn(msg string, ctx ...interface{})  { root.write(msg, LvlWarn, ctx, 2) }
func Error(msg string, ctx ...interface{}) { root.write(msg, LvlError, ctx, 2) }
func Crit(msg string, ctx ...interface{})  { root.write(msg, LvlCrit, ctx, 2) }
