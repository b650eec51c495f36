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

import "fmt"

// Decode splits an instruction word into its nibbles and immediates.
//
//	[ n0 | n1 | n2 | n3 ]
//	       [ ---addr--- ]
//	            [ byte  ]
func Decode(hi, lo byte) Instruction {
	return Instruction{
		N0:   hi >> 4,
		N1:   hi & 0x0F,
		N2:   lo >> 4,
		N3:   lo & 0x0F,
		Addr: uint16(hi&0x0F)<<8 | uint16(lo),
		Byte: lo,
	}
}

// Fetch decodes the instruction at pc. Memory is the addressable program
// region; a word that would extend past it is a MemoryAccessError.
func Fetch(memory []byte, pc uint16) (Instruction, error) {
	if int(pc)+1 >= len(memory) {
		return Instruction{}, &MemoryAccessError{
			Program: pc,
			Addr:    int(pc),
			Size:    2,
			Op:      "fetch",
		}
	}

	return Decode(memory[pc], memory[pc+1]), nil
}

func (in Instruction) X() uint8 {
	return in.N1
}

func (in Instruction) Y() uint8 {
	return in.N2
}

func (in Instruction) N() uint8 {
	return in.N3
}

func (in Instruction) Word() uint16 {
	return uint16(in.N0)<<12 | in.Addr
}

func (in Instruction) String() string {
	return fmt.Sprintf("%04X", in.Word())
}
