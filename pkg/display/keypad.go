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

package display

import (
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/nsf/termbox-go"
)

// KEYMAP maps the left hand of a QWERTY keyboard onto the hex keypad.
var KEYMAP = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyState turns key press events into held keys. Terminals report presses
// and auto repeat but never releases, so a key stays held for hold frames
// after its last press.
type KeyState struct {
	hold      int
	remaining [machine.KEY_COUNT]int
	quit      bool
}

func NewKeyState(hold int) *KeyState {
	if hold < 1 {
		hold = 1
	}

	return &KeyState{hold: hold}
}

// Press records a press of ch and reports whether it is a keypad key.
func (ks *KeyState) Press(ch rune) bool {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}

	key, ok := KEYMAP[ch]

	if ok {
		ks.remaining[key] = ks.hold
	}

	return ok
}

func (ks *KeyState) Quit() {
	ks.quit = true
}

// Frame returns the keys held this frame and ages every held key by one.
func (ks *KeyState) Frame() (machine.Keys, bool) {
	var keys machine.Keys

	for i, remaining := range ks.remaining {
		if remaining > 0 {
			keys[i] = true
			ks.remaining[i]--
		}
	}

	return keys, !ks.quit
}

// Keypad reads termbox events on a goroutine and hands them to a KeyState
// once per frame.
type Keypad struct {
	state  *KeyState
	events chan termbox.Event
}

// NewKeypad must be called after Open.
func NewKeypad(hold int) *Keypad {
	kp := &Keypad{
		state:  NewKeyState(hold),
		events: make(chan termbox.Event, 64),
	}

	go func() {
		for {
			event := termbox.PollEvent()
			kp.events <- event

			if event.Type == termbox.EventInterrupt || event.Type == termbox.EventError {
				close(kp.events)
				return
			}
		}
	}()

	return kp
}

func (kp *Keypad) Poll() (machine.Keys, bool) {
	for {
		select {
		case event, ok := <-kp.events:
			if !ok {
				kp.state.Quit()
				return kp.state.Frame()
			}

			kp.handle(event)
		default:
			return kp.state.Frame()
		}
	}
}

func (kp *Keypad) handle(event termbox.Event) {
	if event.Type != termbox.EventKey {
		return
	}

	switch event.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		kp.state.Quit()
	default:
		kp.state.Press(event.Ch)
	}
}

// Stop wakes the event goroutine so it can exit.
func (kp *Keypad) Stop() {
	termbox.Interrupt()
}
