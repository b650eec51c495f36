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

package machine

import (
	"math/rand"

	"github.com/retroenv/retrogolib/log"
)

// Keys holds the held state of the sixteen keypad keys, indexed 0x0-0xF.
type Keys [KEY_COUNT]bool

// Instruction is one decoded two-byte instruction word.
type Instruction struct {
	N0   uint8
	N1   uint8
	N2   uint8
	N3   uint8
	Addr uint16
	Byte uint8
}

type MachineState struct {
	Memory    [MEMORY_SIZE]byte
	Display   [DISPLAY_HEIGHT]uint64
	Program   uint16
	Stack     []uint16
	Delay     uint8
	Sound     uint8
	Registers [REGISTER_COUNT]uint8
	Index     uint16
}

// TickReport is the state handed to the renderer after every tick.
type TickReport struct {
	Display  [DISPLAY_HEIGHT]uint64
	Program  uint16
	Index    uint16
	Stack    []uint16
	Delay    uint8
	Sound    uint8
	Tone     bool
	Executed int
	Waiting  bool
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Profile  Profile
	Debugger MachineDebugger

	// Truncate loads the first Capacity bytes of an oversized ROM instead
	// of rejecting it.
	Truncate bool

	logger   *log.Logger
	random   *rand.Rand
	keys     Keys
	lastKeys Keys
	tone     bool
	waiting  bool
	fault    error
}
