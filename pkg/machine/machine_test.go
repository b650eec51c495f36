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

package machine_test

import (
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
)

type testMachineState struct {
	Registers [16]uint8
	Program   uint16
	Index     uint16
	Stack     []uint16
	Delay     uint8
	Sound     uint8
	Memory    map[uint16]byte
	Display   map[int]uint64
}

type testCase struct {
	Name     string
	Profile  machine.Profile
	Steps    uint
	Code     []uint16
	Keys     machine.Keys
	LastKeys machine.Keys
	Input    testMachineState
	Output   testMachineState
}

func testMachineSuccess(t *testing.T, test *testCase) {
	profile := test.Profile
	if profile.Name == "" {
		profile = machine.ProfileModern
	}

	mc := machine.New(profile, log.NewTestLogger(t))
	mc.Seed(1)

	if test.Input.Program == 0 {
		test.Input.Program = machine.MEMSPACE_PROGRAM
	}

	if test.Input.Memory == nil {
		test.Input.Memory = make(map[uint16]byte)
	}

	for i, word := range test.Code {
		addr := test.Input.Program + uint16(i*2)
		test.Input.Memory[addr] = byte(word >> 8)
		test.Input.Memory[addr+1] = byte(word)
	}

	mc.State.Registers = test.Input.Registers
	mc.State.Program = test.Input.Program
	mc.State.Index = test.Input.Index
	mc.State.Stack = append(mc.State.Stack, test.Input.Stack...)
	mc.State.Delay = test.Input.Delay
	mc.State.Sound = test.Input.Sound

	for addr, value := range test.Input.Memory {
		mc.State.Memory[addr] = value
	}

	for row, value := range test.Input.Display {
		mc.State.Display[row] = value
	}

	mc.SetKeys(test.Keys, test.LastKeys)

	if test.Steps == 0 {
		test.Steps = 1
	}

	for i := uint(0); i < test.Steps; i++ {
		if err := mc.Step(); err != nil {
			t.Fatalf("Step %d failed\nhave:%v", i, err)
		}
	}

	for i := 0; i < machine.REGISTER_COUNT; i++ {
		want := test.Output.Registers[i]
		have := mc.State.Registers[i]
		if have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#02x (test.Output.Registers[%X])\nhave:%#02x",
				want,
				i,
				have,
			)
		}
	}

	if mc.State.Program != test.Output.Program {
		t.Errorf(
			"Program counter mismatch"+
				"\nwant:%#04x (test.Output.Program)\nhave:%#04x",
			test.Output.Program,
			mc.State.Program,
		)
	}

	if mc.State.Index != test.Output.Index {
		t.Errorf(
			"Index register mismatch"+
				"\nwant:%#04x (test.Output.Index)\nhave:%#04x",
			test.Output.Index,
			mc.State.Index,
		)
	}

	if mc.State.Delay != test.Output.Delay || mc.State.Sound != test.Output.Sound {
		t.Errorf(
			"Timer mismatch"+
				"\nwant:DT=%d ST=%d (test.Output)\nhave:DT=%d ST=%d",
			test.Output.Delay,
			test.Output.Sound,
			mc.State.Delay,
			mc.State.Sound,
		)
	}

	stackMatches := len(mc.State.Stack) == len(test.Output.Stack)
	for i := 0; stackMatches && i < len(mc.State.Stack); i++ {
		stackMatches = mc.State.Stack[i] == test.Output.Stack[i]
	}

	if !stackMatches {
		t.Errorf(
			"Call stack mismatch"+
				"\nwant:%#04x (test.Output.Stack)\nhave:%#04x",
			test.Output.Stack,
			mc.State.Stack,
		)
	}

	for i, value := range mc.State.Memory {
		addr := uint16(i)
		input, expectingInput := test.Input.Memory[addr]
		output, expectingOutput := test.Output.Memory[addr]

		if !expectingInput && !expectingOutput &&
			addr >= machine.MEMSPACE_FONT &&
			addr < machine.MEMSPACE_FONT+uint16(len(machine.FONT)) {
			// Font glyphs were expected to remain
			expectingInput = true
			input = machine.FONT[addr-machine.MEMSPACE_FONT]
		}

		if expectingOutput {
			if value != output {
				t.Fatalf(
					"Memory value mismatch"+
						"\nwant:%#02x (test.Output.Memory[%#04x])\nhave:%#02x",
					output,
					i,
					value,
				)
			}
		} else if expectingInput {
			if value != input {
				t.Fatalf(
					"Memory value mismatch"+
						"\nwant:%#02x (test.Input.Memory[%#04x])\nhave:%#02x",
					input,
					i,
					value,
				)
			}
		} else if value != 0 {
			t.Fatalf(
				"Memory unexpectedly changed"+
					"\nwant:0x00 (test.Output.Memory[%#04x])\nhave:%#02x",
				i,
				value,
			)
		}
	}

	for row, value := range mc.State.Display {
		if want := test.Output.Display[row]; value != want {
			t.Errorf(
				"Display row mismatch"+
					"\nwant:%064b (test.Output.Display[%d])\nhave:%064b",
				want,
				row,
				value,
			)
		}
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			test := test
			t.Run(test.Name, func(t *testing.T) {
				testMachineSuccess(t, &test)
			})
		}
	})
}

// CLS  |0|0|E|0|
// RET  |0|0|E|E|
func TestSys(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "CLS",
			Code: []uint16{0x00E0},
			Input: testMachineState{
				Display: map[int]uint64{0: 0xFF, 31: 1 << 63},
			},
			Output: testMachineState{
				Program: 0x202,
			},
		},
		{
			Name: "RET",
			Code: []uint16{0x00EE},
			Input: testMachineState{
				Stack: []uint16{0x250, 0x304},
			},
			Output: testMachineState{
				Program: 0x304,
				Stack:   []uint16{0x250},
			},
		},
	})
}

// JP   |1|addr |
// CALL |2|addr |
// JP   |B|addr |
func TestFlow(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "JP",
			Code:   []uint16{0x1ABC},
			Output: testMachineState{Program: 0xABC},
		},
		{
			Name: "CALL",
			Code: []uint16{0x2400},
			Output: testMachineState{
				Program: 0x400,
				Stack:   []uint16{0x202},
			},
		},
		{
			Name:  "CALL then RET",
			Steps: 2,
			Code:  []uint16{0x2204, 0x0000, 0x00EE},
			Output: testMachineState{
				Program: 0x202,
				Stack:   []uint16{},
			},
		},
		{
			Name: "JP V0",
			Code: []uint16{0xB300},
			Input: testMachineState{
				Registers: [16]uint8{0x0: 0x42},
			},
			Output: testMachineState{
				Program:   0x342,
				Registers: [16]uint8{0x0: 0x42},
			},
		},
	})
}

// SE   |3|x|byte|
// SNE  |4|x|byte|
// SE   |5|x|y|0|
// SNE  |9|x|y|0|
func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "SE byte taken",
			Code:   []uint16{0x3A12},
			Input:  testMachineState{Registers: [16]uint8{0xA: 0x12}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0xA: 0x12}},
		},
		{
			Name:   "SE byte not taken",
			Code:   []uint16{0x3A12},
			Input:  testMachineState{Registers: [16]uint8{0xA: 0x13}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0xA: 0x13}},
		},
		{
			Name:   "SNE byte taken",
			Code:   []uint16{0x4A12},
			Input:  testMachineState{Registers: [16]uint8{0xA: 0x13}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0xA: 0x13}},
		},
		{
			Name:   "SNE byte not taken",
			Code:   []uint16{0x4A12},
			Input:  testMachineState{Registers: [16]uint8{0xA: 0x12}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0xA: 0x12}},
		},
		{
			Name:   "SE reg taken",
			Code:   []uint16{0x5120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 7}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0x1: 7, 0x2: 7}},
		},
		{
			Name:   "SE reg not taken",
			Code:   []uint16{0x5120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 8}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 7, 0x2: 8}},
		},
		{
			Name:   "SNE reg taken",
			Code:   []uint16{0x9120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 8}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0x1: 7, 0x2: 8}},
		},
		{
			Name:   "SNE reg not taken",
			Code:   []uint16{0x9120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 7}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 7, 0x2: 7}},
		},
	})
}

// LD   |6|x|byte|
// ADD  |7|x|byte|
// LD   |8|x|y|0|
func TestLoad(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "LD byte",
			Code:   []uint16{0x65AB},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x5: 0xAB}},
		},
		{
			Name:   "ADD byte wraps without flag",
			Code:   []uint16{0x7503},
			Input:  testMachineState{Registers: [16]uint8{0x5: 0xFF, 0xF: 0x7}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x5: 0x02, 0xF: 0x7}},
		},
		{
			Name:   "LD Vx Vy",
			Code:   []uint16{0x8340},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x11, 0x4: 0x22}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x3: 0x22, 0x4: 0x22}},
		},
	})
}

// OR   |8|x|y|1|
// AND  |8|x|y|2|
// XOR  |8|x|y|3|
func TestLogic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "OR keeps VF",
			Code:   []uint16{0x8121},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0xF0, 0x2: 0x0F, 0xF: 0x5}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0xFF, 0x2: 0x0F, 0xF: 0x5}},
		},
		{
			Name:   "AND keeps VF",
			Code:   []uint16{0x8122},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0xF3, 0x2: 0x3F, 0xF: 0x5}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x33, 0x2: 0x3F, 0xF: 0x5}},
		},
		{
			Name:   "XOR keeps VF",
			Code:   []uint16{0x8123},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0xFF, 0x2: 0x0F, 0xF: 0x5}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0xF0, 0x2: 0x0F, 0xF: 0x5}},
		},
		{
			Name:    "OR legacy clears VF",
			Profile: machine.ProfileLegacy,
			Code:    []uint16{0x8121},
			Input:   testMachineState{Registers: [16]uint8{0x1: 0xF0, 0x2: 0x0F, 0xF: 0x5}},
			Output:  testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0xFF, 0x2: 0x0F}},
		},
		{
			Name:    "AND legacy clears VF",
			Profile: machine.ProfileLegacy,
			Code:    []uint16{0x8122},
			Input:   testMachineState{Registers: [16]uint8{0x1: 0xF3, 0x2: 0x3F, 0xF: 0x5}},
			Output:  testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x33, 0x2: 0x3F}},
		},
		{
			Name:    "XOR legacy clears VF",
			Profile: machine.ProfileLegacy,
			Code:    []uint16{0x8123},
			Input:   testMachineState{Registers: [16]uint8{0x1: 0xFF, 0x2: 0x0F, 0xF: 0x5}},
			Output:  testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0xF0, 0x2: 0x0F}},
		},
	})
}

// ADD  |8|x|y|4|
// SUB  |8|x|y|5|
// SHR  |8|x|y|6|
// SUBN |8|x|y|7|
// SHL  |8|x|y|E|
func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "ADD no carry",
			Code:   []uint16{0x8124},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x10, 0x2: 0x20, 0xF: 0x1}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x30, 0x2: 0x20}},
		},
		{
			Name:   "ADD carry",
			Code:   []uint16{0x8124},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0xF0, 0x2: 0x20}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x10, 0x2: 0x20, 0xF: 0x1}},
		},
		{
			Name:   "ADD into VF keeps flag",
			Code:   []uint16{0x8F24},
			Input:  testMachineState{Registers: [16]uint8{0x2: 0x20, 0xF: 0xF0}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x2: 0x20, 0xF: 0x1}},
		},
		{
			Name:   "SUB no borrow",
			Code:   []uint16{0x8125},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x30, 0x2: 0x10}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x20, 0x2: 0x10, 0xF: 0x1}},
		},
		{
			Name:   "SUB equal operands",
			Code:   []uint16{0x8125},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x30, 0x2: 0x30}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x2: 0x30, 0xF: 0x1}},
		},
		{
			Name:   "SUB borrow",
			Code:   []uint16{0x8125},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x10, 0x2: 0x30, 0xF: 0x1}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0xE0, 0x2: 0x30}},
		},
		{
			Name:   "SUBN no borrow",
			Code:   []uint16{0x8127},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x10, 0x2: 0x30}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x20, 0x2: 0x30, 0xF: 0x1}},
		},
		{
			Name:   "SUBN borrow",
			Code:   []uint16{0x8127},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x30, 0x2: 0x10, 0xF: 0x1}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0xE0, 0x2: 0x10}},
		},
		{
			Name:   "SHR reads Vy",
			Code:   []uint16{0x8126},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0xFF, 0x2: 0x05}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x02, 0x2: 0x05, 0xF: 0x1}},
		},
		{
			Name:   "SHR low bit clear",
			Code:   []uint16{0x8126},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x01, 0x2: 0x04, 0xF: 0x1}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x02, 0x2: 0x04}},
		},
		{
			Name:   "SHL reads Vy",
			Code:   []uint16{0x812E},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x01, 0x2: 0x81}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x02, 0x2: 0x81, 0xF: 0x1}},
		},
		{
			Name:   "SHL high bit clear",
			Code:   []uint16{0x812E},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x80, 0x2: 0x41, 0xF: 0x1}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x1: 0x82, 0x2: 0x41}},
		},
		{
			Name:   "SHR same register",
			Code:   []uint16{0x8336},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x03}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x3: 0x01, 0xF: 0x1}},
		},
	})
}

// LD   |A|addr |
// RND  |C|x|byte|
// ADD  |F|x|1|E|
// LD   |F|x|2|9|
func TestIndex(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "LD I",
			Code:   []uint16{0xA123},
			Output: testMachineState{Program: 0x202, Index: 0x123},
		},
		{
			Name:   "RND masked to zero",
			Code:   []uint16{0xC400},
			Input:  testMachineState{Registers: [16]uint8{0x4: 0xFF}},
			Output: testMachineState{Program: 0x202},
		},
		{
			Name:   "ADD I",
			Code:   []uint16{0xF21E},
			Input:  testMachineState{Index: 0x300, Registers: [16]uint8{0x2: 0x10, 0xF: 0x1}},
			Output: testMachineState{Program: 0x202, Index: 0x310, Registers: [16]uint8{0x2: 0x10}},
		},
		{
			Name:   "ADD I carry past 0xFFF",
			Code:   []uint16{0xF21E},
			Input:  testMachineState{Index: 0xFFF, Registers: [16]uint8{0x2: 0x01}},
			Output: testMachineState{Program: 0x202, Index: 0x1000, Registers: [16]uint8{0x2: 0x01, 0xF: 0x1}},
		},
		{
			Name:   "LD F",
			Code:   []uint16{0xF329},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x1A}},
			Output: testMachineState{Program: 0x202, Index: 0x082, Registers: [16]uint8{0x3: 0x1A}},
		},
		{
			Name:   "LD F last glyph",
			Code:   []uint16{0xF329},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x0F}},
			Output: testMachineState{Program: 0x202, Index: 0x09B, Registers: [16]uint8{0x3: 0x0F}},
		},
	})
}

// LD   |F|x|0|7|
// LD   |F|x|1|5|
// LD   |F|x|1|8|
func TestTimers(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "LD Vx DT",
			Code:   []uint16{0xF707},
			Input:  testMachineState{Delay: 0x33},
			Output: testMachineState{Program: 0x202, Delay: 0x33, Registers: [16]uint8{0x7: 0x33}},
		},
		{
			Name:   "LD DT Vx",
			Code:   []uint16{0xF715},
			Input:  testMachineState{Registers: [16]uint8{0x7: 0x44}},
			Output: testMachineState{Program: 0x202, Delay: 0x44, Registers: [16]uint8{0x7: 0x44}},
		},
		{
			Name:   "LD ST Vx",
			Code:   []uint16{0xF718},
			Input:  testMachineState{Registers: [16]uint8{0x7: 0x55}},
			Output: testMachineState{Program: 0x202, Sound: 0x55, Registers: [16]uint8{0x7: 0x55}},
		},
	})
}

// LD   |F|x|3|3|
// LD   |F|x|5|5|
// LD   |F|x|6|5|
func TestMemory(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "LD B",
			Code:  []uint16{0xF533},
			Input: testMachineState{Index: 0x400, Registers: [16]uint8{0x5: 254}},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x400,
				Registers: [16]uint8{0x5: 254},
				Memory:    map[uint16]byte{0x400: 2, 0x401: 5, 0x402: 4},
			},
		},
		{
			Name:  "LD [I] Vx",
			Code:  []uint16{0xF255},
			Input: testMachineState{Index: 0x400, Registers: [16]uint8{0x0: 0xA, 0x1: 0xB, 0x2: 0xC, 0x3: 0xD}},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x400,
				Registers: [16]uint8{0x0: 0xA, 0x1: 0xB, 0x2: 0xC, 0x3: 0xD},
				Memory:    map[uint16]byte{0x400: 0xA, 0x401: 0xB, 0x402: 0xC},
			},
		},
		{
			Name: "LD Vx [I]",
			Code: []uint16{0xF165},
			Input: testMachineState{
				Index:     0x400,
				Registers: [16]uint8{0x2: 0x99},
				Memory:    map[uint16]byte{0x400: 0x11, 0x401: 0x22, 0x402: 0x33},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x400,
				Registers: [16]uint8{0x0: 0x11, 0x1: 0x22, 0x2: 0x99},
			},
		},
		{
			Name: "LD Vx [I] at end of memory",
			Code: []uint16{0xF165},
			Input: testMachineState{
				Index:  0xFFE,
				Memory: map[uint16]byte{0xFFE: 0x01, 0xFFF: 0x02},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0xFFE,
				Registers: [16]uint8{0x0: 0x01, 0x1: 0x02},
			},
		},
	})
}

// DRW  |D|x|y|n|
func TestDraw(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "DRW origin",
			Code: []uint16{0xD015},
			Input: testMachineState{
				Index: machine.MEMSPACE_FONT,
			},
			Output: testMachineState{
				Program: 0x202,
				Index:   machine.MEMSPACE_FONT,
				Display: map[int]uint64{
					0: 0xF0 << 56,
					1: 0x90 << 56,
					2: 0x90 << 56,
					3: 0x90 << 56,
					4: 0xF0 << 56,
				},
			},
		},
		{
			Name:  "DRW twice clears and collides",
			Steps: 2,
			Code:  []uint16{0xD011, 0xD011},
			Input: testMachineState{
				Index:  0x300,
				Memory: map[uint16]byte{0x300: 0xFF},
			},
			Output: testMachineState{
				Program:   0x204,
				Index:     0x300,
				Registers: [16]uint8{0xF: 0x1},
			},
		},
		{
			Name: "DRW straddles word boundary",
			Code: []uint16{0xD011},
			Input: testMachineState{
				Index:     0x300,
				Registers: [16]uint8{0x0: 60, 0x1: 2},
				Memory:    map[uint16]byte{0x300: 0xFF},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x300,
				Registers: [16]uint8{0x0: 60, 0x1: 2},
				Display:   map[int]uint64{2: 0xF},
			},
		},
		{
			Name: "DRW wraps origin",
			Code: []uint16{0xD011},
			Input: testMachineState{
				Index:     0x300,
				Registers: [16]uint8{0x0: 64 + 8, 0x1: 32 + 1},
				Memory:    map[uint16]byte{0x300: 0x81},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x300,
				Registers: [16]uint8{0x0: 64 + 8, 0x1: 32 + 1},
				Display:   map[int]uint64{1: 0x81 << 48},
			},
		},
		{
			Name: "DRW clips at bottom",
			Code: []uint16{0xD014},
			Input: testMachineState{
				Index:     0x300,
				Registers: [16]uint8{0x1: 31},
				Memory:    map[uint16]byte{0x300: 0x80, 0x301: 0xFF, 0x302: 0xFF, 0x303: 0xFF},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x300,
				Registers: [16]uint8{0x1: 31},
				Display:   map[int]uint64{31: 1 << 63},
			},
		},
		{
			Name: "DRW collision accumulates across rows",
			Code: []uint16{0xD012},
			Input: testMachineState{
				Index:   0x300,
				Memory:  map[uint16]byte{0x300: 0x80, 0x301: 0x01},
				Display: map[int]uint64{0: 1 << 63},
			},
			Output: testMachineState{
				Program:   0x202,
				Index:     0x300,
				Registers: [16]uint8{0xF: 0x1},
				Display:   map[int]uint64{1: 0x01 << 56},
			},
		},
	})
}

// SKP  |E|x|9|E|
// SKNP |E|x|A|1|
// LD   |F|x|0|A|
func TestKeys(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "SKP held",
			Code:   []uint16{0xE39E},
			Keys:   machine.Keys{0x5: true},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x5}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0x3: 0x5}},
		},
		{
			Name:   "SKP uses low nibble",
			Code:   []uint16{0xE39E},
			Keys:   machine.Keys{0x5: true},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0xF5}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0x3: 0xF5}},
		},
		{
			Name:   "SKNP held",
			Code:   []uint16{0xE3A1},
			Keys:   machine.Keys{0x5: true},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x5}},
			Output: testMachineState{Program: 0x202, Registers: [16]uint8{0x3: 0x5}},
		},
		{
			Name:   "SKNP up",
			Code:   []uint16{0xE3A1},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x5}},
			Output: testMachineState{Program: 0x204, Registers: [16]uint8{0x3: 0x5}},
		},
		{
			Name:     "LD K release",
			Code:     []uint16{0xF40A},
			LastKeys: machine.Keys{0x3: true},
			Output:   testMachineState{Program: 0x202, Registers: [16]uint8{0x4: 0x3}},
		},
		{
			Name:   "LD K press waits",
			Code:   []uint16{0xF40A},
			Keys:   machine.Keys{0x3: true},
			Output: testMachineState{Program: 0x200},
		},
		{
			Name:     "LD K held waits",
			Code:     []uint16{0xF40A},
			Keys:     machine.Keys{0x3: true},
			LastKeys: machine.Keys{0x3: true},
			Output:   testMachineState{Program: 0x200},
		},
		{
			Name:     "LD K lowest released key",
			Code:     []uint16{0xF40A},
			LastKeys: machine.Keys{0x9: true, 0xC: true},
			Output:   testMachineState{Program: 0x202, Registers: [16]uint8{0x4: 0x9}},
		},
	})
}
