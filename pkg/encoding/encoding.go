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

package encoding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotLiteral = errors.New("Invalid numeric literal")

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 || s[0] != '0' {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (uint16, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseUint(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a binary string in the formats: 0b1010, b1010
func DecodeBin(s string) (uint16, error) {
	switch {
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		s = s[2:]
	case strings.HasPrefix(s, "b"), strings.HasPrefix(s, "B"):
		s = s[1:]
	default:
		return 0, errors.New("Invalid binary string")
	}

	result, err := strconv.ParseUint(s, 2, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

func IsLiteral(s string) bool {
	if len(s) == 0 {
		return false
	}

	switch s[0] {
	case '#', 'x', 'X':
		return true
	case 'b', 'B':
		return len(s) > 1 && (s[1] == '0' || s[1] == '1')
	}

	return s[0] >= '0' && s[0] <= '9'
}

// DecodeLiteral accepts any of the hex, decimal or binary forms.
func DecodeLiteral(s string) (uint16, error) {
	if !IsLiteral(s) {
		return 0, fmt.Errorf("%w: '%s'", ErrNotLiteral, s)
	}

	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "x"):
		return DecodeHex(s)
	case strings.HasPrefix(lower, "0b"), strings.HasPrefix(lower, "b"):
		return DecodeBin(s)
	}

	return DecodeInt(s)
}

// FitsBits reports whether value can be stored in an unsigned field of
// bitcount bits.
func FitsBits(value uint16, bitcount uint16) bool {
	return bitcount >= 16 || value>>bitcount == 0
}

// SplitWord returns the big-endian bytes of value.
func SplitWord(value uint16) (byte, byte) {
	return byte(value >> 8), byte(value)
}

func JoinWord(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
