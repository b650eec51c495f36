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

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
)

type operand struct {
	Type  OperandType
	Token *Token
	Value uint16
	Label string
}

func parseDirective(ident string) DirectiveType {
	return directives[strings.ToUpper(ident)]
}

func parseInstruction(ident string) InstructionType {
	return instructions[strings.ToUpper(ident)]
}

func parseLiteral(token *Token, limit uint16) (uint16, error) {
	result, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	if result > limit {
		return 0, &OversizedLiteralError{token.Position, limit, result}
	}

	return result, nil
}

// parseRegister reports whether the token names a register at all; a
// malformed V name is an error rather than a label.
func parseRegister(token *Token) (uint16, bool, error) {
	ident := token.Value

	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false, nil
	}

	result, err := strconv.ParseUint(ident[1:], 16, 8)

	if err != nil {
		return 0, true, &InvalidRegisterError{token.Position}
	}

	return uint16(result), true, nil
}

func parseOperand(token *Token) (operand, error) {
	result := operand{Token: token}

	switch token.Type {
	case TOKEN_LITERAL:
		value, err := encoding.DecodeLiteral(token.Value)

		if err != nil {
			return result, &InvalidLiteralError{token.Position}
		}

		result.Type = OPERAND_LITERAL
		result.Value = value

	case TOKEN_INDIRECT:
		if !strings.EqualFold(token.Value, "[I]") {
			return result, &InvalidRegisterError{token.Position}
		}

		result.Type = OPERAND_INDIRECT

	case TOKEN_IDENT:
		reg, ok, err := parseRegister(token)

		if err != nil {
			return result, err
		}

		if ok {
			result.Type = OPERAND_REG
			result.Value = reg
			break
		}

		switch strings.ToUpper(token.Value) {
		case "I":
			result.Type = OPERAND_I
		case "DT":
			result.Type = OPERAND_DT
		case "ST":
			result.Type = OPERAND_ST
		case "K":
			result.Type = OPERAND_K
		case "F":
			result.Type = OPERAND_F
		case "B":
			result.Type = OPERAND_B
		default:
			result.Type = OPERAND_LABEL
			result.Label = token.Value
		}

	default:
		return result, &UnknownIdentifierError{token.Position, token.Value}
	}

	return result, nil
}

func accepts(want OperandType, have *operand) bool {
	switch want {
	case OPERAND_V0:
		return have.Type == OPERAND_REG && have.Value == 0
	case OPERAND_ADDR:
		return have.Type == OPERAND_LITERAL || have.Type == OPERAND_LABEL
	case OPERAND_BYTE, OPERAND_NIBBLE:
		return have.Type == OPERAND_LITERAL
	}

	return want == have.Type
}

func matchForm(keyword *Token, candidates []Form, operands []operand) (*Form, error) {
	var sized []*Form

	for i := range candidates {
		if len(candidates[i].Operands) == len(operands) {
			sized = append(sized, &candidates[i])
		}
	}

	if len(sized) == 0 {
		return nil, &InvalidNumArgumentsError{
			keyword.Position,
			len(candidates[0].Operands),
			len(operands),
		}
	}

	// Narrow the candidates one operand at a time so the error names the
	// first operand no form accepts.
	for i := range operands {
		var required []OperandType
		var remaining []*Form

		for _, form := range sized {
			if accepts(form.Operands[i], &operands[i]) {
				remaining = append(remaining, form)
			} else {
				required = appendUnique(required, form.Operands[i])
			}
		}

		if len(remaining) == 0 {
			return nil, &InvalidOperandError{
				operands[i].Token.Position,
				required,
				operands[i].Type,
			}
		}

		sized = remaining
	}

	return sized[0], nil
}

func appendUnique(list []OperandType, value OperandType) []OperandType {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}

	return append(list, value)
}

func classifyWord(word string) TokenType {
	if _, err := encoding.DecodeLiteral(word); err == nil {
		return TOKEN_LITERAL
	}

	if first := rune(word[0]); unicode.IsDigit(first) || first == '#' {
		return TOKEN_LITERAL
	}

	return TOKEN_IDENT
}

func tokenize(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenStart int = 0
	var tokenType TokenType = TOKEN_NONE

	builder.Grow(len(line))

	flush := func() {
		if builder.Len() > 0 {
			var token Token
			token.Position = Cursor{
				Line:     cursor.Line,
				Column:   tokenStart,
				Byte:     cursor.Byte + int64(tokenStart-1),
				Size:     int64(builder.Len()),
				LineByte: cursor.Byte,
			}
			token.Type = tokenType
			token.Value = builder.String()

			if token.Type == TOKEN_IDENT {
				token.Type = classifyWord(token.Value)
			}

			tokens = append(tokens, token)
			builder.Reset()
		}

		tokenType = TOKEN_NONE
	}

	for column, char := range line {
		cursor.Column = column + 1

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column
		}

		switch {
		// Whitespace
		case unicode.IsSpace(char):
			flush()
			continue

		// Comments
		case char == ';':
			flush()
			return

		// Operand Separator
		case char == ',':
			flush()
			continue

		// Label Definition (i.e. loop:)
		case char == ':':
			if tokenType != TOKEN_IDENT || classifyWord(builder.String()) != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_LABEL
			flush()
			continue

		// Assembler Directives
		case char == '.':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_DIRECTIVE

		// Indirect Index (i.e. [I])
		case char == '[':
			if tokenType != TOKEN_NONE {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			tokenType = TOKEN_INDIRECT

		case char == ']':
			if tokenType != TOKEN_INDIRECT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

			builder.WriteRune(char)
			flush()
			continue

		// Identifiers and Literals (i.e. V0, x2A, #42, 0b1010)
		case char == '#', char == '_', unicode.IsDigit(char), unicode.IsLetter(char):
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
				continue
			}

			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			}

		default:
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

			continue
		}

		builder.WriteRune(char)
	}

	flush()
	return
}

func Assemble(input io.ReadSeeker, symtable *SymTable) (rom []byte, errs []error) {
	type LabelRef struct {
		Label    string
		Addr     uint16
		Mask     uint16
		Position Cursor
	}

	var labels = make(map[string]uint16)
	var labelRefs []LabelRef

	var program uint32 = ORIGIN
	var end uint32 = ORIGIN
	var memory = make([]byte, MEMORY_SIZE)

	var cursor = Cursor{Line: 1, Column: 0, Size: 0, Byte: 0}

	errs = make([]error, 0)

	if _, err := input.Seek(0, io.SeekStart); err != nil {
		errs = append(errs, err)
		return
	}

	var scanner = bufio.NewScanner(input)

	// write stores bytes at the program counter; false once memory is full
	write := func(values ...byte) bool {
		if program+uint32(len(values)) > MEMORY_SIZE {
			errs = append(errs, &OversizedBinaryError{})
			return false
		}

		if symtable != nil {
			symtable.Symbols[uint16(program)] = cursor.LineByte
		}

		for _, value := range values {
			memory[program] = value
			program++
		}

		if program > end {
			end = program
		}

		return true
	}

	nextLine := func(line string) {
		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte += int64(len(line) + 1)
	}

	// Process:
	// - Parse line
	// - Assemble line
	for scanner.Scan() {
		line := scanner.Text()
		cursor.Size = int64(len(line))

		tokens, lineErrs := tokenize(line, cursor)

		// Pass any potential assembler errors if we already had parser errors
		if len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			nextLine(line)
			continue
		}

		if len(tokens) > 0 && tokens[0].Type == TOKEN_LABEL {
			label := &tokens[0]

			if _, exists := labels[label.Value]; !exists {
				labels[label.Value] = uint16(program)
			} else {
				errs = append(
					errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			}

			tokens = tokens[1:]
		}

		// No need to assemble label-only statements
		if len(tokens) == 0 {
			nextLine(line)
			continue
		}

		keyword := &tokens[0]
		operands := tokens[1:]

		if keyword.Type == TOKEN_DIRECTIVE {
			directive := parseDirective(keyword.Value)

			switch directive {
			// .ORG addr
			case DIRECTIVE_ORG:
				if count := len(operands); count != 1 {
					errs = append(
						errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
					)

					break
				}

				literal, err := parseLiteral(&operands[0], MEMORY_SIZE-1)

				if err != nil {
					errs = append(errs, err)
					break
				}

				if uint32(literal) < program {
					errs = append(
						errs,
						&BackwardOriginError{
							operands[0].Position,
							uint16(program),
							literal,
						},
					)

					break
				}

				program = uint32(literal)

			// .DB byte, ...
			case DIRECTIVE_DB:
				if len(operands) == 0 {
					errs = append(
						errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
					)

					break
				}

				values := make([]byte, 0, len(operands))

				for i := range operands {
					literal, err := parseLiteral(&operands[i], 0xFF)

					if err != nil {
						errs = append(errs, err)
						continue
					}

					values = append(values, byte(literal))
				}

				if len(values) == len(operands) && !write(values...) {
					return
				}

			// .DW word|label, ...
			case DIRECTIVE_DW:
				if len(operands) == 0 {
					errs = append(
						errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
					)

					break
				}

				for i := range operands {
					op, err := parseOperand(&operands[i])

					if err != nil {
						errs = append(errs, err)
						continue
					}

					switch op.Type {
					case OPERAND_LITERAL:
					case OPERAND_LABEL:
						labelRefs = append(
							labelRefs,
							LabelRef{op.Label, uint16(program), 0xFFFF, op.Token.Position},
						)
					default:
						errs = append(
							errs,
							&InvalidOperandError{
								op.Token.Position,
								[]OperandType{OPERAND_LITERAL, OPERAND_LABEL},
								op.Type,
							},
						)

						continue
					}

					hi, lo := encoding.SplitWord(op.Value)

					if !write(hi, lo) {
						return
					}
				}

			// .BLKB count
			case DIRECTIVE_BLKB:
				if count := len(operands); count != 1 {
					errs = append(
						errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
					)

					break
				}

				literal, err := parseLiteral(&operands[0], MEMORY_SIZE)

				if err != nil {
					errs = append(errs, err)
					break
				}

				if !write(make([]byte, literal)...) {
					return
				}

			default:
				errs = append(
					errs, &UnknownIdentifierError{keyword.Position, keyword.Value},
				)
			}

			nextLine(line)
			continue
		}

		instruction := INSTRUCTION_INVALID

		if keyword.Type == TOKEN_IDENT {
			instruction = parseInstruction(keyword.Value)
		}

		if instruction == INSTRUCTION_INVALID {
			errs = append(
				errs, &UnknownIdentifierError{keyword.Position, keyword.Value},
			)

			nextLine(line)
			continue
		}

		parsed := make([]operand, 0, len(operands))
		failed := false

		for i := range operands {
			op, err := parseOperand(&operands[i])

			if err != nil {
				errs = append(errs, err)
				failed = true
			}

			parsed = append(parsed, op)
		}

		if failed {
			nextLine(line)
			continue
		}

		form, err := matchForm(keyword, forms[instruction], parsed)

		if err != nil {
			errs = append(errs, err)
			nextLine(line)
			continue
		}

		var scratch uint16 = form.Opcode
		var registers int = 0

		for i, want := range form.Operands {
			op := &parsed[i]

			switch want {
			case OPERAND_REG, OPERAND_V0:
				if registers == 0 {
					scratch |= op.Value << 8
				} else {
					scratch |= op.Value << 4
				}

				registers++

			case OPERAND_ADDR:
				if op.Type == OPERAND_LABEL {
					labelRefs = append(
						labelRefs,
						LabelRef{op.Label, uint16(program), 0x0FFF, op.Token.Position},
					)

					break
				}

				literal, err := parseLiteral(op.Token, 0xFFF)

				if err != nil {
					errs = append(errs, err)
				}

				scratch |= literal

			case OPERAND_BYTE:
				literal, err := parseLiteral(op.Token, 0xFF)

				if err != nil {
					errs = append(errs, err)
				}

				scratch |= literal

			case OPERAND_NIBBLE:
				literal, err := parseLiteral(op.Token, 0xF)

				if err != nil {
					errs = append(errs, err)
				}

				scratch |= literal
			}
		}

		// SHR Vx / SHL Vx shift the register in place
		if len(form.Operands) == 1 && form.Opcode&0xF000 == 0x8000 {
			scratch |= (scratch & 0x0F00) >> 4
		}

		hi, lo := encoding.SplitWord(scratch)

		if !write(hi, lo) {
			return
		}

		nextLine(line)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		word := encoding.JoinWord(memory[ref.Addr], memory[ref.Addr+1])
		word |= addr & ref.Mask

		memory[ref.Addr], memory[ref.Addr+1] = encoding.SplitWord(word)
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	rom = make([]byte, end-ORIGIN)
	copy(rom, memory[ORIGIN:end])
	return
}
