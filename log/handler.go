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
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Handler handles or forwards a log Record.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes log records formatted with fmtr to an io.Writer.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	h := FuncHandler(func(r *Record) error {
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
	return LazySync(wr, h)
}

// LazySync wraps a handler so writes to wr are serialized, mirroring the
// teacher's own single-writer stream handlers.
func LazySync(wr io.Writer, h Handler) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		return h.Log(r)
	})
}

// LvlFilterHandler returns a Handler that only lets records at or above
// maxLvl through to h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler dispatches every record to all of hs.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			_ = h.Log(r)
		}
		return nil
	})
}

// DiscardHandler discards every record, used in tests that do not want log
// noise but still need a non-nil Logger.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}

// swapHandler wraps another handler that can be swapped out dynamically at
// runtime in a thread-safe fashion.
type swapHandler struct {
	mu sync.RWMutex
	h  Handler
}

func (h *swapHandler) Log(r *Record) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.h == nil {
		return nil
	}
	return h.h.Log(r)
}

func (h *swapHandler) Swap(newHandler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.h = newHandler
}

func (h *swapHandler) Get() Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.h
}

// NewTerminalHandler returns a StreamHandler using TerminalFormat, enabling
// color automatically when wr is a real terminal (via go-isatty) unless
// forceColor overrides the detection.
func NewTerminalHandler(wr io.Writer, forceColor bool) Handler {
	color := forceColor
	if f, ok := wr.(*os.File); ok && !color {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if color {
		wr = colorable.NewColorable(wr.(*os.File))
	}
	return StreamHandler(wr, TerminalFormat(color))
}
