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

// wide is a 128-bit staging word for sprite rows. hi holds the 64 display
// columns, MSB leftmost; lo catches the bits shifted past the right edge.
type wide struct {
	hi uint64
	lo uint64
}

func (w wide) shr(n uint) wide {
	switch {
	case n == 0:
		return w
	case n >= 64:
		return wide{0, w.hi >> (n - 64)}
	default:
		return wide{w.hi >> n, w.lo>>n | w.hi<<(64-n)}
	}
}

// spriteMask places an 8-pixel sprite row at column col of a display row.
// Pixels past the right edge are dropped.
func spriteMask(sprite byte, col uint8) uint64 {
	staged := wide{hi: uint64(sprite) << (DISPLAY_WIDTH - 8)}
	return staged.shr(uint(col)).hi
}

// blit XORs a sprite row into the display and reports a collision.
func (mc *MachineState) blit(row int, col uint8, sprite byte) bool {
	mask := spriteMask(sprite, col)
	collided := mc.Display[row]&mask != 0

	mc.Display[row] ^= mask
	return collided
}

func (mc *MachineState) ClearDisplay() {
	for i := range mc.Display {
		mc.Display[i] = 0
	}
}

func (mc *MachineState) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}

	return mc.Display[y]&(1<<(DISPLAY_WIDTH-1-x)) != 0
}

// Occupancy counts the non-zero bytes in each blockSize slice of memory.
func (mc *MachineState) Occupancy(blockSize int) []int {
	if blockSize <= 0 {
		blockSize = 1
	}

	result := make([]int, (MEMORY_SIZE+blockSize-1)/blockSize)

	for addr, value := range mc.Memory {
		if value != 0 {
			result[addr/blockSize]++
		}
	}

	return result
}
