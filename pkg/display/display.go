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

// Package display draws the machine on a terminal with termbox and reads the
// keypad from it.
package display

import (
	"fmt"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/nsf/termbox-go"
)

const (
	PIXEL_WIDTH = 2
	BLOCK_SIZE  = 32

	FRAME_WIDTH  = machine.DISPLAY_WIDTH*PIXEL_WIDTH + 2
	FRAME_HEIGHT = machine.DISPLAY_HEIGHT + 2

	STRIP_ROW  = FRAME_HEIGHT
	INFO_ROW   = STRIP_ROW + 1
	KEYPAD_COL = FRAME_WIDTH - 4*3

	MIN_WIDTH  = FRAME_WIDTH
	MIN_HEIGHT = INFO_ROW + 4
)

// KEYPAD_LAYOUT is the hex keypad as printed on the original hardware.
var KEYPAD_LAYOUT = [4][4]uint8{
	{0x1, 0x2, 0x3, 0xC},
	{0x4, 0x5, 0x6, 0xD},
	{0x7, 0x8, 0x9, 0xE},
	{0xA, 0x0, 0xB, 0xF},
}

var occupancyShades = []rune{' ', '░', '▒', '▓', '█'}

// Canvas is the part of termbox the renderer draws through.
type Canvas interface {
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
}

// Draw paints one frame: the bordered framebuffer, the memory occupancy
// strip, the registers and stack, and the keypad with held keys highlighted.
func Draw(
	canvas Canvas,
	report machine.TickReport,
	state *machine.MachineState,
	keys machine.Keys,
) {
	drawFrame(canvas)

	for y := 0; y < machine.DISPLAY_HEIGHT; y++ {
		row := report.Display[y]

		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			bg := termbox.ColorDefault

			if row&(1<<(machine.DISPLAY_WIDTH-1-x)) != 0 {
				bg = termbox.ColorWhite
			}

			for dx := 0; dx < PIXEL_WIDTH; dx++ {
				canvas.SetCell(1+x*PIXEL_WIDTH+dx, 1+y, ' ', termbox.ColorDefault, bg)
			}
		}
	}

	drawOccupancy(canvas, report, state)

	drawText(canvas, 0, INFO_ROW, fmt.Sprintf(
		"PC %#04x  I %#04x  DT %02x  ST %02x  IPT %d",
		report.Program, report.Index, report.Delay, report.Sound, report.Executed,
	), termbox.ColorDefault)

	status := ""
	if report.Waiting {
		status = "WAITING FOR KEY"
	}
	if report.Tone {
		status += " TONE"
	}
	drawText(canvas, 0, INFO_ROW+1, status, termbox.ColorYellow)

	stack := "STACK"
	for _, addr := range report.Stack {
		stack += fmt.Sprintf(" %#04x", addr)
	}
	drawText(canvas, 0, INFO_ROW+2, stack, termbox.ColorDefault)

	for row, line := range KEYPAD_LAYOUT {
		for col, key := range line {
			fg, bg := termbox.ColorDefault, termbox.ColorDefault

			if keys[key] {
				fg, bg = termbox.ColorBlack, termbox.ColorGreen
			}

			canvas.SetCell(KEYPAD_COL+col*3+1, INFO_ROW+row, hexRune(key), fg, bg)
		}
	}
}

func drawFrame(canvas Canvas) {
	fg := termbox.ColorDefault
	bg := termbox.ColorDefault
	right := FRAME_WIDTH - 1
	bottom := FRAME_HEIGHT - 1

	for x := 1; x < right; x++ {
		canvas.SetCell(x, 0, '─', fg, bg)
		canvas.SetCell(x, bottom, '─', fg, bg)
	}

	for y := 1; y < bottom; y++ {
		canvas.SetCell(0, y, '│', fg, bg)
		canvas.SetCell(right, y, '│', fg, bg)
	}

	canvas.SetCell(0, 0, '┌', fg, bg)
	canvas.SetCell(right, 0, '┐', fg, bg)
	canvas.SetCell(0, bottom, '└', fg, bg)
	canvas.SetCell(right, bottom, '┘', fg, bg)
}

// drawOccupancy shades one cell per BLOCK_SIZE bytes of memory. The block
// holding pc is green, I is yellow and stack return addresses are red.
func drawOccupancy(
	canvas Canvas,
	report machine.TickReport,
	state *machine.MachineState,
) {
	blocks := state.Occupancy(BLOCK_SIZE)

	for i, count := range blocks {
		shade := occupancyShades[(count*(len(occupancyShades)-1)+BLOCK_SIZE-1)/BLOCK_SIZE]
		canvas.SetCell(1+i, STRIP_ROW, shade, termbox.ColorBlue, termbox.ColorDefault)
	}

	mark := func(addr uint16, bg termbox.Attribute) {
		block := int(addr) / BLOCK_SIZE

		if block >= len(blocks) {
			return
		}

		count := blocks[block]
		shade := occupancyShades[(count*(len(occupancyShades)-1)+BLOCK_SIZE-1)/BLOCK_SIZE]
		canvas.SetCell(1+block, STRIP_ROW, shade, termbox.ColorBlack, bg)
	}

	for _, addr := range report.Stack {
		mark(addr, termbox.ColorRed)
	}

	mark(report.Index, termbox.ColorYellow)
	mark(report.Program, termbox.ColorGreen)
}

func drawText(canvas Canvas, x, y int, text string, fg termbox.Attribute) {
	for _, ch := range text {
		canvas.SetCell(x, y, ch, fg, termbox.ColorDefault)
		x++
	}
}

func hexRune(key uint8) rune {
	return rune("0123456789ABCDEF"[key&0xF])
}

// Terminal renders to the termbox screen.
type Terminal struct{}

type screen struct{}

func (screen) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

// Open takes over the terminal. Close must be called to restore it.
func Open() (*Terminal, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("termbox: %w", err)
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	return &Terminal{}, nil
}

func (term *Terminal) Render(
	report machine.TickReport,
	state *machine.MachineState,
	keys machine.Keys,
) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}

	Draw(screen{}, report, state, keys)

	return termbox.Flush()
}

func (term *Terminal) Close() {
	termbox.Close()
}
