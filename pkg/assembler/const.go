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

package assembler

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_DIRECTIVE
	TOKEN_LITERAL
	TOKEN_LABEL
	TOKEN_INDIRECT
)

const (
	OPERAND_NONE OperandType = iota
	OPERAND_REG
	OPERAND_V0
	OPERAND_I
	OPERAND_INDIRECT
	OPERAND_DT
	OPERAND_ST
	OPERAND_K
	OPERAND_F
	OPERAND_B
	OPERAND_ADDR
	OPERAND_BYTE
	OPERAND_NIBBLE

	// Parsed operands only
	OPERAND_LITERAL
	OPERAND_LABEL
)

const (
	INSTRUCTION_INVALID InstructionType = iota
	INSTRUCTION_CLS
	INSTRUCTION_RET
	INSTRUCTION_JP
	INSTRUCTION_CALL
	INSTRUCTION_SE
	INSTRUCTION_SNE
	INSTRUCTION_LD
	INSTRUCTION_ADD
	INSTRUCTION_OR
	INSTRUCTION_AND
	INSTRUCTION_XOR
	INSTRUCTION_SUB
	INSTRUCTION_SHR
	INSTRUCTION_SUBN
	INSTRUCTION_SHL
	INSTRUCTION_RND
	INSTRUCTION_DRW
	INSTRUCTION_SKP
	INSTRUCTION_SKNP
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_ORG
	DIRECTIVE_DB
	DIRECTIVE_DW
	DIRECTIVE_BLKB
)

const (
	ORIGIN      = 0x200
	MEMORY_SIZE = 0x1000
)

var instructions = map[string]InstructionType{
	"CLS":  INSTRUCTION_CLS,
	"RET":  INSTRUCTION_RET,
	"JP":   INSTRUCTION_JP,
	"CALL": INSTRUCTION_CALL,
	"SE":   INSTRUCTION_SE,
	"SNE":  INSTRUCTION_SNE,
	"LD":   INSTRUCTION_LD,
	"ADD":  INSTRUCTION_ADD,
	"OR":   INSTRUCTION_OR,
	"AND":  INSTRUCTION_AND,
	"XOR":  INSTRUCTION_XOR,
	"SUB":  INSTRUCTION_SUB,
	"SHR":  INSTRUCTION_SHR,
	"SUBN": INSTRUCTION_SUBN,
	"SHL":  INSTRUCTION_SHL,
	"RND":  INSTRUCTION_RND,
	"DRW":  INSTRUCTION_DRW,
	"SKP":  INSTRUCTION_SKP,
	"SKNP": INSTRUCTION_SKNP,
}

var directives = map[string]DirectiveType{
	".ORG":  DIRECTIVE_ORG,
	".DB":   DIRECTIVE_DB,
	".DW":   DIRECTIVE_DW,
	".BLKB": DIRECTIVE_BLKB,
}

// Operand placement: the first register lands in x, the second in y. Literals
// fill the low bits of the word.
var forms = map[InstructionType][]Form{
	// CLS  |0|0|E|0|
	// RET  |0|0|E|E|
	INSTRUCTION_CLS: {{nil, 0x00E0}},
	INSTRUCTION_RET: {{nil, 0x00EE}},

	// JP   |1|addr |
	// JP   |B|addr | V0, addr
	INSTRUCTION_JP: {
		{[]OperandType{OPERAND_ADDR}, 0x1000},
		{[]OperandType{OPERAND_V0, OPERAND_ADDR}, 0xB000},
	},

	// CALL |2|addr |
	INSTRUCTION_CALL: {{[]OperandType{OPERAND_ADDR}, 0x2000}},

	// SE   |3|x|byte|
	// SE   |5|x|y|0|
	INSTRUCTION_SE: {
		{[]OperandType{OPERAND_REG, OPERAND_BYTE}, 0x3000},
		{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x5000},
	},

	// SNE  |4|x|byte|
	// SNE  |9|x|y|0|
	INSTRUCTION_SNE: {
		{[]OperandType{OPERAND_REG, OPERAND_BYTE}, 0x4000},
		{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x9000},
	},

	INSTRUCTION_LD: {
		{[]OperandType{OPERAND_REG, OPERAND_BYTE}, 0x6000},
		{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8000},
		{[]OperandType{OPERAND_I, OPERAND_ADDR}, 0xA000},
		{[]OperandType{OPERAND_REG, OPERAND_DT}, 0xF007},
		{[]OperandType{OPERAND_REG, OPERAND_K}, 0xF00A},
		{[]OperandType{OPERAND_DT, OPERAND_REG}, 0xF015},
		{[]OperandType{OPERAND_ST, OPERAND_REG}, 0xF018},
		{[]OperandType{OPERAND_F, OPERAND_REG}, 0xF029},
		{[]OperandType{OPERAND_B, OPERAND_REG}, 0xF033},
		{[]OperandType{OPERAND_INDIRECT, OPERAND_REG}, 0xF055},
		{[]OperandType{OPERAND_REG, OPERAND_INDIRECT}, 0xF065},
	},

	INSTRUCTION_ADD: {
		{[]OperandType{OPERAND_REG, OPERAND_BYTE}, 0x7000},
		{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8004},
		{[]OperandType{OPERAND_I, OPERAND_REG}, 0xF01E},
	},

	// ---- |8|x|y|n|
	INSTRUCTION_OR:   {{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8001}},
	INSTRUCTION_AND:  {{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8002}},
	INSTRUCTION_XOR:  {{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8003}},
	INSTRUCTION_SUB:  {{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8005}},
	INSTRUCTION_SUBN: {{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8007}},

	// SHR Vx is shorthand for SHR Vx, Vx
	INSTRUCTION_SHR: {
		{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x8006},
		{[]OperandType{OPERAND_REG}, 0x8006},
	},
	INSTRUCTION_SHL: {
		{[]OperandType{OPERAND_REG, OPERAND_REG}, 0x800E},
		{[]OperandType{OPERAND_REG}, 0x800E},
	},

	// RND  |C|x|byte|
	INSTRUCTION_RND: {{[]OperandType{OPERAND_REG, OPERAND_BYTE}, 0xC000}},

	// DRW  |D|x|y|n|
	INSTRUCTION_DRW: {
		{[]OperandType{OPERAND_REG, OPERAND_REG, OPERAND_NIBBLE}, 0xD000},
	},

	// SKP  |E|x|9|E|
	// SKNP |E|x|A|1|
	INSTRUCTION_SKP:  {{[]OperandType{OPERAND_REG}, 0xE09E}},
	INSTRUCTION_SKNP: {{[]OperandType{OPERAND_REG}, 0xE0A1}},
}
