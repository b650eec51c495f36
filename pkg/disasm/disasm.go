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

// Package disasm renders machine instructions as assembler mnemonics. Every
// rendering assembles back to the same word.
package disasm

import (
	"fmt"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

type Line struct {
	Addr        uint16
	Instruction machine.Instruction
	Text        string
	Label       string
}

func lookup(in machine.Instruction) *chip8.Instruction {
	word := in.Word()

	for _, op := range chip8.Opcodes[int(in.N0)] {
		if op.Info.Mask&word == op.Info.Value {
			return op.Instruction
		}
	}

	return nil
}

// Mnemonic returns the upper case instruction name, or "" for data words.
func Mnemonic(in machine.Instruction) string {
	if !machine.IsValid(in) {
		return ""
	}

	if ins := lookup(in); ins != nil {
		return strings.ToUpper(ins.Name)
	}

	return ""
}

func Disassemble(in machine.Instruction) string {
	name := Mnemonic(in)

	if name == "" {
		return fmt.Sprintf("DW 0x%04X", in.Word())
	}

	if operands := formatOperands(in); operands != "" {
		return name + " " + operands
	}

	return name
}

func formatOperands(in machine.Instruction) string {
	x, y := in.X(), in.Y()

	switch in.N0 {
	case machine.OP_SYS:
		return ""
	case machine.OP_JP, machine.OP_CALL:
		return fmt.Sprintf("0x%03X", in.Addr)
	case machine.OP_JP_V0:
		return fmt.Sprintf("V0, 0x%03X", in.Addr)
	case machine.OP_LD_I:
		return fmt.Sprintf("I, 0x%03X", in.Addr)
	case machine.OP_SE_BYTE, machine.OP_SNE_BYTE, machine.OP_LD_BYTE,
		machine.OP_ADD_BYTE, machine.OP_RND:
		return fmt.Sprintf("V%X, 0x%02X", x, in.Byte)
	case machine.OP_SE_REG, machine.OP_SNE_REG, machine.OP_ALU:
		return fmt.Sprintf("V%X, V%X", x, y)
	case machine.OP_DRW:
		return fmt.Sprintf("V%X, V%X, %d", x, y, in.N())
	case machine.OP_KEY:
		return fmt.Sprintf("V%X", x)
	}

	switch in.Byte {
	case machine.MISC_LD_VX_DT:
		return fmt.Sprintf("V%X, DT", x)
	case machine.MISC_LD_VX_K:
		return fmt.Sprintf("V%X, K", x)
	case machine.MISC_LD_DT_VX:
		return fmt.Sprintf("DT, V%X", x)
	case machine.MISC_LD_ST_VX:
		return fmt.Sprintf("ST, V%X", x)
	case machine.MISC_ADD_I_VX:
		return fmt.Sprintf("I, V%X", x)
	case machine.MISC_LD_F_VX:
		return fmt.Sprintf("F, V%X", x)
	case machine.MISC_LD_B_VX:
		return fmt.Sprintf("B, V%X", x)
	case machine.MISC_LD_MEM:
		return fmt.Sprintf("[I], V%X", x)
	case machine.MISC_LD_REG:
		return fmt.Sprintf("V%X, [I]", x)
	}

	return ""
}

// IsSkip reports whether the instruction conditionally skips the next one.
func IsSkip(in machine.Instruction) bool {
	if !machine.IsValid(in) {
		return false
	}

	ins := lookup(in)
	return ins != nil && chip8.SkipInstructions.Contains(ins.Name)
}

// Target returns the absolute address named by JP, CALL or LD I.
func Target(in machine.Instruction) (uint16, bool) {
	switch in.N0 {
	case machine.OP_JP, machine.OP_CALL, machine.OP_LD_I:
		return in.Addr, true
	}

	return 0, false
}

// Listing disassembles count words starting at addr. Words that would run
// past the end of memory are not listed.
func Listing(memory []byte, addr uint16, count int, labels map[uint16]string) []Line {
	lines := make([]Line, 0, count)

	for i := 0; i < count; i++ {
		in, err := machine.Fetch(memory, addr)

		if err != nil {
			break
		}

		text := Disassemble(in)

		if target, ok := Target(in); ok {
			if label, exists := labels[target]; exists {
				text = fmt.Sprintf("%s ; %s", text, label)
			}
		}

		lines = append(lines, Line{
			Addr:        addr,
			Instruction: in,
			Text:        text,
			Label:       labels[addr],
		})

		addr += 2
	}

	return lines
}
