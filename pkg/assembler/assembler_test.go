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

package assembler_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/assembler"
)

type testCase struct {
	Name   string
	Input  string
	Output []byte
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func words(values ...uint16) []byte {
	result := make([]byte, 0, len(values)*2)

	for _, value := range values {
		result = append(result, byte(value>>8), byte(value))
	}

	return result
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	result, errs := assembler.Assemble(strings.NewReader(test.Input), nil)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if len(result) != len(test.Output) {
		t.Fatalf(
			"Invalid buffer length\n"+
				"want:%d\n"+
				"have:%d",
			len(test.Output),
			len(result),
		)
	}

	for addr := range result {
		if have, want := result[addr], test.Output[addr]; have != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#02x (test.Output[%#04x])\n"+
					"have:%#02x",
				want,
				addr+assembler.ORIGIN,
				have,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	file := strings.NewReader(test.Input)

	_, errs := assembler.Assemble(file, nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			test := test
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			test := test
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

func TestFlow(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "CLS", Input: "CLS", Output: words(0x00E0)},
		{Name: "RET", Input: "ret", Output: words(0x00EE)},
		{Name: "JP", Input: "JP 0x2A4", Output: words(0x12A4)},
		{Name: "JP V0", Input: "JP V0, x300", Output: words(0xB300)},
		{Name: "CALL", Input: "CALL #768", Output: words(0x2300)},
	})

	testFail(t, []failCase{
		{
			Name:  "JP Oversized",
			Input: "JP 0x1000",
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "JP V1",
			Input: "JP V1, 0x300",
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "CLS Operand",
			Input: "CLS V0",
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "CALL Register",
			Input: "CALL V2",
			Error: &assembler.InvalidOperandError{},
		},
	})
}

// SE   |3|x|byte|
// SNE  |4|x|byte|
// SE   |5|x|y|0|
// SNE  |9|x|y|0|
// SKP  |E|x|9|E|
// SKNP |E|x|A|1|
func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "SE Byte", Input: "SE VA, 0x12", Output: words(0x3A12)},
		{Name: "SNE Byte", Input: "SNE v3, 0b11", Output: words(0x4303)},
		{Name: "SE Register", Input: "SE V1, V2", Output: words(0x5120)},
		{Name: "SNE Register", Input: "SNE VE, VF", Output: words(0x9EF0)},
		{Name: "SKP", Input: "SKP V5", Output: words(0xE59E)},
		{Name: "SKNP", Input: "SKNP VC", Output: words(0xECA1)},
	})

	testFail(t, []failCase{
		{
			Name:  "SE Oversized",
			Input: "SE V0, 0x100",
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "SE Register Name",
			Input: "SE VG, 1",
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "SKP Literal",
			Input: "SKP 5",
			Error: &assembler.InvalidOperandError{},
		},
	})
}

func TestLoad(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "LD Byte", Input: "LD V1, 0x0A", Output: words(0x610A)},
		{Name: "LD Register", Input: "LD V1, V2", Output: words(0x8120)},
		{Name: "LD I", Input: "LD I, 0x2A0", Output: words(0xA2A0)},
		{Name: "LD Vx DT", Input: "LD V4, DT", Output: words(0xF407)},
		{Name: "LD Vx K", Input: "LD V4, K", Output: words(0xF40A)},
		{Name: "LD DT Vx", Input: "LD DT, V4", Output: words(0xF415)},
		{Name: "LD ST Vx", Input: "LD ST, V4", Output: words(0xF418)},
		{Name: "LD F", Input: "LD F, V4", Output: words(0xF429)},
		{Name: "LD B", Input: "LD B, V4", Output: words(0xF433)},
		{Name: "LD [I]", Input: "LD [I], V4", Output: words(0xF455)},
		{Name: "LD Vx [I]", Input: "LD V4, [i]", Output: words(0xF465)},
	})

	testFail(t, []failCase{
		{
			Name:  "LD K Target",
			Input: "LD K, V1",
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "LD Bad Indirect",
			Input: "LD [J], V1",
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "LD Missing Operand",
			Input: "LD V1",
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "LD Invalid Literal",
			Input: "LD V1, 0xZZ",
			Error: &assembler.InvalidLiteralError{},
		},
	})
}

// ---- |8|x|y|n|
func TestArithmetic(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "ADD Byte", Input: "ADD V1, 1", Output: words(0x7101)},
		{Name: "ADD Register", Input: "ADD V1, V2", Output: words(0x8124)},
		{Name: "ADD I", Input: "ADD I, V2", Output: words(0xF21E)},
		{Name: "OR", Input: "OR V1, V2", Output: words(0x8121)},
		{Name: "AND", Input: "AND V1, V2", Output: words(0x8122)},
		{Name: "XOR", Input: "XOR V1, V2", Output: words(0x8123)},
		{Name: "SUB", Input: "SUB V1, V2", Output: words(0x8125)},
		{Name: "SHR", Input: "SHR V1, V2", Output: words(0x8126)},
		{Name: "SHR In Place", Input: "SHR V7", Output: words(0x8776)},
		{Name: "SUBN", Input: "SUBN V1, V2", Output: words(0x8127)},
		{Name: "SHL", Input: "SHL V1, V2", Output: words(0x812E)},
		{Name: "SHL In Place", Input: "SHL V7", Output: words(0x877E)},
		{Name: "RND", Input: "RND V3, 0xF0", Output: words(0xC3F0)},
	})

	testFail(t, []failCase{
		{
			Name:  "OR Literal",
			Input: "OR V1, 0x01",
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "RND Label",
			Input: "RND V1, mask",
			Error: &assembler.InvalidOperandError{},
		},
	})
}

// DRW  |D|x|y|n|
func TestDraw(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "DRW", Input: "DRW V0, V1, 5", Output: words(0xD015)},
		{Name: "DRW Zero", Input: "drw va, vb, 0", Output: words(0xDAB0)},
	})

	testFail(t, []failCase{
		{
			Name:  "DRW Oversized",
			Input: "DRW V0, V1, 16",
			Error: &assembler.OversizedLiteralError{},
		},
	})
}

func TestDirectives(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "DB",
			Input:  ".DB 0xF0, 0x90, #144, 0b11110000",
			Output: []byte{0xF0, 0x90, 0x90, 0xF0},
		},
		{
			Name:   "DW",
			Input:  ".DW 0x1234, 0xABCD",
			Output: words(0x1234, 0xABCD),
		},
		{
			Name: "BLKB",
			Input: `
			.BLKB 3
			.DB 0xFF
			`,
			Output: []byte{0x00, 0x00, 0x00, 0xFF},
		},
		{
			Name: "ORG",
			Input: `
			CLS
			.ORG 0x206
			RET
			`,
			Output: words(0x00E0, 0x0000, 0x0000, 0x00EE),
		},
	})

	testFail(t, []failCase{
		{
			Name:  "DB Oversized",
			Input: ".DB 0x100",
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "DB Empty",
			Input: ".DB",
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name: "ORG Backwards",
			Input: `
			.ORG 0x300
			.ORG 0x200
			`,
			Error: &assembler.BackwardOriginError{},
		},
		{
			Name:  "Unknown Directive",
			Input: ".STRINGZ hello",
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestComment(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Comments",
			Input: `
			; clear the screen
			CLS ; and then
			;RET
			`,
			Output: words(0x00E0),
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Backwards Label",
			Input: `
			loop:
				CLS
				JP loop
			`,
			Output: words(0x00E0, 0x1200),
		},
		{
			Name: "Forwards Label",
			Input: `
			CALL sprite_draw
			JP end
			sprite_draw: RET
			end: JP end
			`,
			Output: words(0x2204, 0x1206, 0x00EE, 0x1206),
		},
		{
			Name: "Label Operand",
			Input: `
			LD I, glyph
			glyph: .DB 0x80
			`,
			Output: []byte{0xA2, 0x02, 0x80},
		},
		{
			Name: "DW Label",
			Input: `
			table: .DW table, 0x0001
			`,
			Output: words(0x0200, 0x0001),
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unknown Label",
			Input: `JP missing`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name: "Redeclared Label",
			Input: `
			start: CLS
			start: RET
			`,
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Literal Label",
			Input: `0x20: CLS`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Unknown Mnemonic",
			Input: `MOV V1, V2`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Unexpected Character",
			Input: `LD V1, $20`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Non ASCII",
			Input: `LD V1, é`,
			Error: &assembler.OversizedCharacterError{},
		},
	})
}

func TestProgramSize(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Fill Memory",
			Input:  ".BLKB 3583\n.DB 0x01",
			Output: append(make([]byte, 3583), 0x01),
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Oversized Binary",
			Input: ".BLKB 3585",
			Error: &assembler.OversizedBinaryError{},
		},
		{
			Name: "Oversized Binary",
			Input: `
			.ORG 0xFFF
			CLS
			`,
			Error: &assembler.OversizedBinaryError{},
		},
	})
}

func TestSymtable(t *testing.T) {
	/*
		+ 11	.ORG 0x300
		+  7	start:
		+  4	CLS
		+ 15	data: .DB 1, 2
		+  8	JP start
	*/
	input := ".ORG 0x300\n" +
		"start:\n" +
		"CLS\n" +
		"data: .DB 1, 2\n" +
		"JP start"

	symtable := assembler.NewSymTable("test.c8")

	result, errs := assembler.Assemble(strings.NewReader(input), symtable)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	if want := []byte{0x00, 0xE0, 0x01, 0x02, 0x13, 0x00}; !bytes.Equal(result[0x100:], want) {
		t.Fatalf("Output mismatch\nwant:%#v\nhave:%#v", want, result[0x100:])
	}

	symbols := map[uint16]int64{
		0x300: 18, // CLS
		0x302: 22, // .DB
		0x304: 37, // JP
	}

	labels := map[uint16]string{
		0x300: "start",
		0x302: "data",
	}

	if !reflect.DeepEqual(symtable.Symbols, symbols) {
		t.Fatalf(
			"Symtable encoding mismatch\nwant:%v (symbols)\nhave:%v",
			symbols,
			symtable.Symbols,
		)
	}

	if !reflect.DeepEqual(symtable.Labels, labels) {
		t.Fatalf(
			"Symtable encoding mismatch\nwant:%v (labels)\nhave:%v",
			labels,
			symtable.Labels,
		)
	}
}
