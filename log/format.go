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

import (
	"bytes"
	"fmt"
)

// Format turns a Record into a printable byte slice.
type Format interface {
	Format(r *Record) []byte
}

// FormatFunc turns a function into a Format.
type FormatFunc func(*Record) []byte

func (f FormatFunc) Format(r *Record) []byte { return f(r) }

var lvlColor = map[Lvl]int{
	LvlCrit:  35, // magenta
	LvlError: 31, // red
	LvlWarn:  33, // yellow
	LvlInfo:  32, // green
	LvlDebug: 36, // cyan
	LvlTrace: 34, // blue
}

// TerminalFormat formats a log Record the way go-probeum's terminal logger
// does: "LVL [time] msg key=val key=val ...", with optional ANSI color.
func TerminalFormat(color bool) Format {
	return FormatFunc(func(r *Record) []byte {
		var b bytes.Buffer
		ts := r.Time.Format("01-02|15:04:05.000")
		if color {
			c := lvlColor[r.Lvl]
			fmt.Fprintf(&b, "\x1b[%dm%s\x1b[0m [%s] %s", c, r.Lvl.String(), ts, r.Msg)
		} else {
			fmt.Fprintf(&b, "%s [%s] %s", r.Lvl.String(), ts, r.Msg)
		}
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %v=%v", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

// LogfmtFormat renders a Record in logfmt, used by file-backed handlers
// where color escapes would pollute the output.
func LogfmtFormat() Format {
	return FormatFunc(func(r *Record) []byte {
		var b bytes.Buffer
		fmt.Fprintf(&b, "t=%s lvl=%s msg=%q", r.Time.Format(timeFormat), r.Lvl.String(), r.Msg)
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %v=%v", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

const timeFormat = "2006-01-02T15:04:05-0700"

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case fmt.Stringer:
		return x.String()
	case error:
		return fmt.Sprintf("%q", x.Error())
	default:
		return fmt.Sprintf("%v", x)
	}
}
