// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/display"
	"github.com/lassandro/gochip8/pkg/machine"
)

const keyEscape = 0x1b

// consoleKeypad reads the keypad from a raw mode stdin. Escape breaks into
// the debugger.
type consoleKeypad struct {
	state  *display.KeyState
	sticky machine.Keys
	dbg    *debugger.Debugger
	buf    []byte
}

func newConsoleKeypad(dbg *debugger.Debugger, hold int) *consoleKeypad {
	return &consoleKeypad{
		state: display.NewKeyState(hold),
		dbg:   dbg,
		buf:   make([]byte, 32),
	}
}

func (kp *consoleKeypad) Poll() (machine.Keys, bool) {
	if shouldexit {
		return machine.Keys{}, false
	}

	n, _ := os.Stdin.Read(kp.buf)

	for _, ch := range kp.buf[:n] {
		if ch == keyEscape {
			kp.dbg.Break = true
			continue
		}

		kp.state.Press(rune(ch))
	}

	keys, running := kp.state.Frame()

	for i, held := range kp.sticky {
		keys[i] = keys[i] || held
	}

	return keys, running
}

// consoleRenderer redraws the text framebuffer whenever it changes.
type consoleRenderer struct {
	dbg   *debugger.Debugger
	last  [machine.DISPLAY_HEIGHT]uint64
	drawn bool
}

func (r *consoleRenderer) Render(
	report machine.TickReport,
	state *machine.MachineState,
	keys machine.Keys,
) error {
	if r.drawn && report.Display == r.last {
		return nil
	}

	r.last = report.Display
	r.drawn = true

	fmt.Print("\033[H\033[2J")
	r.dbg.PrintDisplay(state)

	return nil
}
