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

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var termRestore unix.Termios
var termRaw bool

func enterRawTerm() error {
	termios, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), ioctlReadTermios)

	if err != nil {
		return err
	}

	termRestore = *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(
		int(os.Stdin.Fd()), ioctlWriteTermios, &termstate,
	); err != nil {
		return err
	}

	termRaw = true
	return nil
}

func exitRawTerm() error {
	if !termRaw {
		return nil
	}

	termRaw = false

	return unix.IoctlSetTermios(
		int(os.Stdin.Fd()), ioctlWriteTermios, &termRestore,
	)
}

// checkTermSize fails when stdout is smaller than width x height cells.
func checkTermSize(width, height int) error {
	size, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)

	if err != nil {
		return fmt.Errorf("reading terminal size: %w", err)
	}

	if int(size.Col) < width || int(size.Row) < height {
		return fmt.Errorf(
			"terminal is %dx%d, at least %dx%d is needed",
			size.Col, size.Row, width, height,
		)
	}

	return nil
}
