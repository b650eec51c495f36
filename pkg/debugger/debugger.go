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

package debugger

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/disasm"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

// AddBreakpoint returns false if a breakpoint already exists at addr.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

func (dbg *Debugger) RemoveBreakpoint(i int) error {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return fmt.Errorf("Invalid breakpoint number %d", i)
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
	return nil
}

// AddWatchpoint returns false if an identical watchpoint already exists.
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) error {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return fmt.Errorf("Invalid watchpoint number %d", i)
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return nil
}

func (dbg *Debugger) LookupLabel(name string) (uint16, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == name {
			return addr, true
		}
	}

	return 0, false
}

// SymbolPath returns the symbol table path written next to a binary.
func SymbolPath(binary string) string {
	return filepath.Join(
		filepath.Dir(binary),
		strings.TrimSuffix(filepath.Base(binary), filepath.Ext(binary))+SYMTABLE_EXT,
	)
}

func (dbg *Debugger) LoadSymbols(reader io.Reader) error {
	var symtable assembler.SymTable

	if err := gob.NewDecoder(reader).Decode(&symtable); err != nil {
		return fmt.Errorf("decoding symbol table: %w", err)
	}

	dbg.SymTable = &symtable
	return nil
}

func WriteSymbols(writer io.Writer, symtable *assembler.SymTable) error {
	if err := gob.NewEncoder(writer).Encode(symtable); err != nil {
		return fmt.Errorf("encoding symbol table: %w", err)
	}

	return nil
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	out := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(out, "No instruction found at %#04x\n", addr)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := lines[offset]; found {
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(out, "\033[1;30m~~~~~~~~\033[0m ")
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	out := dbg.out()
	end := int(addr) + int(count)

	if end > machine.MEMORY_SIZE {
		end = machine.MEMORY_SIZE
	}

	for i := int(addr); i < end; i++ {
		if i == int(addr) {
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		} else if (i-int(addr))%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%#02x ", result)
		}
	}

	fmt.Fprintln(out)
}

func (dbg *Debugger) PrintRegisters(mc *machine.MachineState) {
	out := dbg.out()

	for i, register := range mc.Registers {
		fmt.Fprintf(out, "\033[1mV%X:\033[0m %#02x\t", i, register)
		if i == (len(mc.Registers)-1)/2 {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(
		out,
		"\033[1mPC:\033[0m %#04x\t\033[1mI:\033[0m %#04x\t"+
			"\033[1mDT:\033[0m %d\t\033[1mST:\033[0m %d\n",
		mc.Program,
		mc.Index,
		mc.Delay,
		mc.Sound,
	)
}

func (dbg *Debugger) PrintStack(mc *machine.MachineState) {
	out := dbg.out()

	if len(mc.Stack) == 0 {
		fmt.Fprintln(out, "Call stack empty")
		return
	}

	for i := len(mc.Stack) - 1; i >= 0; i-- {
		addr := mc.Stack[i]
		fmt.Fprintf(out, "#%02d: %#04x", len(mc.Stack)-1-i, addr)

		if dbg.SymTable != nil {
			if label, exists := dbg.SymTable.Labels[addr]; exists {
				fmt.Fprintf(out, " \033[1;30m(%s)\033[0m", label)
			}
		}

		fmt.Fprintln(out)
	}
}

func (dbg *Debugger) PrintDisplay(mc *machine.MachineState) {
	out := dbg.out()
	border := "+" + strings.Repeat("-", machine.DISPLAY_WIDTH) + "+"

	fmt.Fprintln(out, border)

	for y := 0; y < machine.DISPLAY_HEIGHT; y++ {
		var builder strings.Builder
		builder.Grow(machine.DISPLAY_WIDTH + 2)
		builder.WriteByte('|')

		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			if mc.Pixel(x, y) {
				builder.WriteByte('#')
			} else {
				builder.WriteByte(' ')
			}
		}

		builder.WriteByte('|')
		fmt.Fprintln(out, builder.String())
	}

	fmt.Fprintln(out, border)
}

func (dbg *Debugger) labels() map[uint16]string {
	if dbg.SymTable == nil {
		return nil
	}

	return dbg.SymTable.Labels
}

func (dbg *Debugger) PrintDisasm(mc *machine.MachineState, addr uint16, count int) {
	out := dbg.out()

	for _, line := range disasm.Listing(mc.Memory[:], addr, count, dbg.labels()) {
		if line.Label != "" {
			fmt.Fprintf(out, "%s:\n", line.Label)
		}

		marker := " "
		if line.Addr == mc.Program {
			marker = ">"
		}

		fmt.Fprintf(
			out,
			"%s \033[1m[%#04x]\033[0m %s  %s\n",
			marker,
			line.Addr,
			line.Instruction,
			line.Text,
		)
	}
}

func (dbg *Debugger) PrintLabels() {
	out := dbg.out()

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Fprintf(
			out, "\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

// Memviz writes the machine state graph in Graphviz dot format.
func Memviz(writer io.Writer, mc *machine.MachineState) {
	memviz.Map(writer, mc)
}
