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
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrMemoryAccess   = errors.New("memory access violation")
	ErrRomTooLarge    = errors.New("rom too large")
)

type StackUnderflowError struct {
	Program uint16
}

func (err *StackUnderflowError) Error() string {
	return fmt.Sprintf("%#04x: return with empty call stack", err.Program)
}

func (err *StackUnderflowError) Unwrap() error {
	return ErrStackUnderflow
}

type UnknownOpcodeError struct {
	Program     uint16
	Instruction Instruction
}

func (err *UnknownOpcodeError) Error() string {
	return fmt.Sprintf(
		"%#04x: unknown opcode %s", err.Program, err.Instruction,
	)
}

func (err *UnknownOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}

type MemoryAccessError struct {
	Program uint16
	Addr    int
	Size    int
	Op      string
}

func (err *MemoryAccessError) Error() string {
	return fmt.Sprintf(
		"%#04x: %s of %d byte(s) at %#04x exceeds memory",
		err.Program,
		err.Op,
		err.Size,
		err.Addr,
	)
}

func (err *MemoryAccessError) Unwrap() error {
	return ErrMemoryAccess
}

type RomTooLargeError struct {
	Size     int
	Capacity int
}

func (err *RomTooLargeError) Error() string {
	return fmt.Sprintf(
		"rom is %d bytes, program space holds %d", err.Size, err.Capacity,
	)
}

func (err *RomTooLargeError) Unwrap() error {
	return ErrRomTooLarge
}
