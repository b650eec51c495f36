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
	"io"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"
)

func New(profile Profile, logger *log.Logger) *Machine {
	mc := &Machine{
		Profile: profile,
		logger:  logger,
	}

	mc.Reset()

	mc.logger.Debug(
		"Machine created",
		log.String("profile", profile.Name),
		log.Int("instructions_per_tick", profile.InstructionsPerTick),
		log.Int("capacity", profile.Capacity()),
	)

	return mc
}

func (mc *MachineState) Reset() {
	for i := range mc.Memory {
		mc.Memory[i] = 0x00
	}

	for i := range mc.Display {
		mc.Display[i] = 0
	}

	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	copy(mc.Memory[MEMSPACE_FONT:], FONT[:])

	mc.Program = MEMSPACE_PROGRAM
	mc.Index = 0x000
	mc.Stack = make([]uint16, 0, STACK_DEPTH)
	mc.Delay = 0
	mc.Sound = 0
}

// Reset returns the machine to its power-on state. The loaded ROM is
// discarded along with any fault.
func (mc *Machine) Reset() {
	mc.State.Reset()

	if mc.logger == nil {
		mc.logger = log.NewWithConfig(log.DefaultConfig())
	}

	if mc.random == nil {
		mc.Seed(time.Now().UnixNano())
	}

	mc.keys = Keys{}
	mc.lastKeys = Keys{}
	mc.tone = false
	mc.waiting = false
	mc.fault = nil
}

// Seed makes RND reproducible.
func (mc *Machine) Seed(seed int64) {
	mc.random = rand.New(rand.NewSource(seed))
}

// LoadROM resets the machine and copies rom to MEMSPACE_PROGRAM. A rom larger
// than the profile's capacity is rejected, or cut to size when Truncate is
// set. Returns the number of bytes loaded.
func (mc *Machine) LoadROM(rom []byte) (int, error) {
	mc.Reset()

	capacity := mc.Profile.Capacity()

	if len(rom) > capacity {
		if !mc.Truncate {
			return 0, &RomTooLargeError{len(rom), capacity}
		}

		mc.logger.Warn(
			"Truncating rom to program space",
			log.Int("size", len(rom)),
			log.Int("capacity", capacity),
		)

		rom = rom[:capacity]
	}

	copy(mc.State.Memory[MEMSPACE_PROGRAM:], rom)

	return len(rom), nil
}

func (mc *Machine) LoadBin(reader io.Reader) (int, error) {
	rom, err := io.ReadAll(io.LimitReader(reader, MEMORY_SIZE+1))

	if err != nil {
		return 0, err
	}

	return mc.LoadROM(rom)
}

// Fault returns the error that halted the machine, if any.
func (mc *Machine) Fault() error {
	return mc.fault
}

func (mc *Machine) Tone() bool {
	return mc.tone
}

func (mc *Machine) Logger() *log.Logger {
	return mc.logger
}

func (mc *Machine) halt(err error) {
	mc.fault = err

	mc.logger.Error(
		"Machine halted",
		log.Err(err),
		log.Hex("pc", mc.State.Program),
		log.Hex("i", mc.State.Index),
	)
}

func (mc *Machine) push(value uint16) {
	mc.State.Stack = append(mc.State.Stack, value)

	if len(mc.State.Stack) > STACK_DEPTH {
		mc.logger.Debug(
			"Call stack deeper than expected",
			log.Int("depth", len(mc.State.Stack)),
			log.Hex("pc", mc.State.Program),
		)
	}
}

func (mc *Machine) pop() (uint16, error) {
	depth := len(mc.State.Stack)

	if depth == 0 {
		return 0, &StackUnderflowError{mc.current()}
	}

	result := mc.State.Stack[depth-1]
	mc.State.Stack = mc.State.Stack[:depth-1]
	return result, nil
}

// current is the address of the executing instruction.
func (mc *Machine) current() uint16 {
	return mc.State.Program - 2
}

func (mc *Machine) checkRange(addr uint16, size int, op string) error {
	if int(addr)+size > MEMORY_SIZE {
		return &MemoryAccessError{
			Program: mc.current(),
			Addr:    int(addr),
			Size:    size,
			Op:      op,
		}
	}

	return nil
}

// read and write assume the caller has validated addr with checkRange.
func (mc *Machine) read(addr uint16) byte {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value byte) {
	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// Step executes a single instruction against the keypad state of the
// current tick. A returned error halts the machine.
func (mc *Machine) Step() error {
	if mc.fault != nil {
		return mc.fault
	}

	mc.waiting = false

	memory := mc.State.Memory[:mc.Profile.ProgramEnd()]
	instruction, err := Fetch(memory, mc.State.Program)

	if err == nil {
		mc.State.Program += 2

		if op := dispatch(instruction); op != nil {
			err = op(mc, instruction)
		} else {
			err = &UnknownOpcodeError{mc.current(), instruction}
		}
	}

	if err != nil {
		mc.halt(err)
		return err
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}
