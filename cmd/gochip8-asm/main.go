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
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/disasm"
	"github.com/lassandro/gochip8/pkg/machine"
)

var helpvar bool
var debugvar bool
var listvar bool
var outvar string

const usage = "gochip8-asm [-debug] [-list] [-out outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'"+debugger.SYMTABLE_EXT+"'",
	)
	flag.BoolVar(
		&listvar, "list", false,
		"Prints a disassembly listing of the assembled program",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

func printErrors(input io.ReadSeeker, errs []error) {
	for _, err := range errs {
		tokenErr, ok := err.(assembler.TokenError)

		if !ok || input == os.Stdin {
			log.Println(err)
			continue
		}

		cursor := tokenErr.GetPosition()

		if _, err := input.Seek(cursor.LineByte, io.SeekStart); err != nil {
			log.Println(err)
			continue
		}

		line, _ := bufio.NewReader(input).ReadString('\n')

		size := int(cursor.Size)
		if size < 1 {
			size = 1
		}

		underlinefmt := fmt.Sprintf(
			"%% %ds%s",
			int(cursor.Byte-cursor.LineByte)+1,
			strings.Repeat("~", size-1),
		)

		log.Printf(
			"%d:%d: %s\n%s\n\033[31m%s\033[0m",
			cursor.Line+1,
			cursor.Column+1,
			err,
			strings.TrimRight(line, "\r\n"),
			fmt.Sprintf(underlinefmt, "^"),
		)
	}
}

func printListing(rom []byte, symtable *assembler.SymTable) {
	var memory [machine.MEMORY_SIZE]byte
	copy(memory[machine.MEMSPACE_PROGRAM:], rom)

	var labels map[uint16]string
	if symtable != nil {
		labels = symtable.Labels
	}

	for _, line := range disasm.Listing(
		memory[:], machine.MEMSPACE_PROGRAM, (len(rom)+1)/2, labels,
	) {
		if line.Label != "" {
			fmt.Printf("%s:\n", line.Label)
		}

		fmt.Printf("  %#04x  %s  %s\n", line.Addr, line.Instruction, line.Text)
	}
}

func gochip8_asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	var infile string
	var input io.ReadSeeker

	if stat, _ := os.Stdin.Stat(); len(args) == 0 && stat.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin
		log.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out.ch8"
		}
	} else {
		if len(args) != 1 {
			log.Println(usage)
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			log.Println(err)
			return 1
		} else if stat.IsDir() {
			log.Printf("%s is not a valid CHIP-8 assembly file", filename)
			return 1
		}

		input = file
		infile = file.Name()
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filename))

		if outvar == "" {
			outvar = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".ch8"
		}
	}

	var symtable *assembler.SymTable

	if debugvar || listvar {
		source := ""

		if input != os.Stdin {
			var err error
			if source, err = filepath.Abs(infile); err != nil {
				log.Println(err)
				source = ""
			}
		}

		symtable = assembler.NewSymTable(source)
	}

	rom, errs := assembler.Assemble(input, symtable)

	if len(errs) > 0 {
		printErrors(input, errs)
		return 1
	}

	if err := os.WriteFile(outvar, rom, 0666); err != nil {
		log.Println("Error writing output file")
		log.Println(err)
		return 1
	}

	if listvar {
		printListing(rom, symtable)
	}

	if debugvar {
		file, err := os.Create(debugger.SymbolPath(outvar))

		if err != nil {
			log.Println("Error creating symbol table")
			log.Println(err)
			return 1
		}

		defer file.Close()

		if err := debugger.WriteSymbols(file, symtable); err != nil {
			log.Println("Error writing symbol table")
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(gochip8_asm())
}
