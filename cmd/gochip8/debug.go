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
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/audio"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/machine"
)

var lastcmd []string
var scanner = bufio.NewScanner(os.Stdin)
var keypad *consoleKeypad

const commands = `break      [add|list|remove|clear]    breakpoints
watch      [add|list|remove|clear]    memory watchpoints
register   [V#|PC|I|DT|ST] [0x##]     show or set registers
source     [0x###|label] [#]          assembly source around an address
disasm     [0x###|label] [#]          disassembly around an address
labels                                symbol table labels
jump       [0x###|label]              set the program counter
memory     [0x###|#] [#]              dump memory
set        [0x###] [0x##]             write a memory byte
display                               print the framebuffer
stack                                 print the call stack
memviz     [file]                     write the machine state graph
keys       [set #...|clear]           show or pin keypad keys
continue, next, reset, clear, quit`

// parseAddr accepts a hex address or a label from the symbol table.
func parseAddr(dbg *debugger.Debugger, s string) (uint16, error) {
	if addr, err := encoding.DecodeHex(s); err == nil {
		return addr, nil
	}

	if addr, ok := dbg.LookupLabel(s); ok {
		return addr, nil
	}

	return 0, fmt.Errorf("'%s' is neither an address nor a label", s)
}

func parseCount(s string) (uint16, error) {
	value, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	if value < 0 {
		return 0, fmt.Errorf("negative count %d", value)
	}

	return uint16(value), nil
}

// parseRange reads the "[addr|#] [#]" arguments shared by several commands.
func parseRange(
	dbg *debugger.Debugger,
	args []string,
	addr uint16,
	size uint16,
) (uint16, uint16, error) {
	var err error

	if len(args) > 0 {
		if addr, err = parseAddr(dbg, args[0]); err != nil {
			if size, err = parseCount(args[0]); err != nil {
				return 0, 0, err
			}
		}
	}

	if len(args) > 1 {
		if size, err = parseCount(args[1]); err != nil {
			return 0, 0, err
		}
	}

	return addr, size, nil
}

func indexFormat(count int, extra string) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: %%#04x%s\n", int64(digits)+1, extra)
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := parseAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		fmtstring := indexFormat(len(dbg.Breakpoints), "")

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if err := dbg.RemoveBreakpoint(i); err != nil {
			log.Println(err)
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := parseAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		wtype, ok := debugger.ParseWatchpointType(args[1])

		if !ok {
			log.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#04x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		fmtstring := indexFormat(len(dbg.Watchpoints), " %s")

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if err := dbg.RemoveWatchpoint(i); err != nil {
			log.Println(err)
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "register [V#|PC|I|DT|ST] [0x####]"

	if len(args) == 0 {
		dbg.PrintRegisters(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch {
	case name == "PC":
		mc.Program = value
	case name == "I":
		mc.Index = value
	case name == "DT", name == "ST", len(name) == 2 && name[0] == 'V':
		if !encoding.FitsBits(value, 8) {
			log.Printf("%#x does not fit in %s\n", value, name)
			return
		}

		switch name {
		case "DT":
			mc.Delay = uint8(value)
		case "ST":
			mc.Sound = uint8(value)
		default:
			index, err := strconv.ParseUint(name[1:], 16, 4)

			if err != nil {
				log.Println("Invalid register")
				return
			}

			mc.Registers[index] = uint8(value)
		}
	default:
		log.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m %#04x\n", name, value)
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x###|label] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	addr, size, err := parseRange(dbg, args, mc.Program, 3)

	if err != nil {
		log.Println(err)
		return
	}

	dbg.PrintSource(addr, size)
}

func debugDisasm(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "disasm [0x###|label] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	addr, size, err := parseRange(dbg, args, mc.Program, 8)

	if err != nil {
		log.Println(err)
		return
	}

	dbg.PrintDisasm(mc, addr, int(size))
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return
	}

	mc.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %#04x\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x###|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	addr, size, err := parseRange(dbg, args, mc.Index, 1)

	if err != nil {
		log.Println(err)
		return
	}

	dbg.PrintMem(mc, addr, size)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x###] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := parseAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeLiteral(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	if int(addr) >= machine.MEMORY_SIZE || !encoding.FitsBits(value, 8) {
		log.Println(usage)
		return
	}

	mc.Memory[addr] = uint8(value)
	dbg.PrintMem(mc, addr, 1)
}

func debugMemviz(mc *machine.MachineState, args []string) {
	const usage = "memviz [file]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	file, err := os.Create(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	defer file.Close()

	debugger.Memviz(file, mc)
	fmt.Printf("Machine state written to %s\n", args[0])
}

func debugKeys(args []string) {
	const usage = "keys [set #...|clear]"

	if len(args) == 0 {
		for i, held := range keypad.sticky {
			if held {
				fmt.Printf("%X ", i)
			}
		}

		fmt.Println()
		return
	}

	switch args[0] {
	case "set":
		for _, arg := range args[1:] {
			key, err := strconv.ParseUint(arg, 16, 4)

			if err != nil {
				log.Println(err)
				return
			}

			keypad.sticky[key] = true
		}

	case "clear":
		keypad.sticky = machine.Keys{}

	default:
		log.Println(usage)
	}
}

func debugReset(dbg *debugger.Debugger, mc *machine.Machine) {
	if dbg.Binary == nil {
		fmt.Println("No binary loaded")
		return
	}

	if _, err := dbg.Binary.Seek(0, io.SeekStart); err != nil {
		log.Println(err)
		return
	}

	if _, err := mc.LoadBin(dbg.Binary); err != nil {
		log.Println(err)
		return
	}

	fmt.Println("Machine reset")
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	if err := exitRawTerm(); err != nil {
		log.Println(err)
	}

	defer func() {
		if err := enterRawTerm(); err != nil {
			log.Println(err)
		}
	}()

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, &mc.State, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "d", "dis", "disasm":
			debugDisasm(dbg, &mc.State, args)

		case "l", "label", "labels":
			dbg.PrintLabels()

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "display":
			dbg.PrintDisplay(&mc.State)

		case "stack", "bt":
			dbg.PrintStack(&mc.State)

		case "memviz":
			debugMemviz(&mc.State, args)

		case "k", "keys":
			debugKeys(args)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			debugReset(dbg, mc)

		case "h", "help":
			fmt.Println(commands)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func stopped(dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")

	if dbg.Source != nil && dbg.SymTable != nil {
		dbg.PrintSource(mc.State.Program, 8)
	} else {
		dbg.PrintDisasm(&mc.State, mc.State.Program, 8)
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if shouldexit {
		return
	}

	if !dbg.Break {
		stopped(dbg, mc)
	}

	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	if shouldexit {
		return
	}

	fmt.Println()
	fmt.Println("Program stopped on read")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	if shouldexit {
		return
	}

	fmt.Println()
	fmt.Println("Program stopped on write")
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

// loadSymbols looks for a symbol table next to the binary and opens the
// source file it names. The returned function closes the source.
func loadSymbols(dbg *debugger.Debugger, binary string) func() {
	file, err := os.Open(debugger.SymbolPath(binary))

	if err != nil {
		log.Println("No symbol table loaded")
		return func() {}
	}

	err = dbg.LoadSymbols(file)
	file.Close()

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return func() {}
	}

	if dbg.SymTable.Source == "" {
		return func() {}
	}

	source, err := os.Open(dbg.SymTable.Source)

	if err != nil {
		log.Println("Error loading source file")
		log.Println(err)
		return func() {}
	}

	dbg.Source = source
	return func() { source.Close() }
}

func runDebugger(
	ctx context.Context,
	cancel context.CancelFunc,
	mc *machine.Machine,
	binary *os.File,
	opts config.Options,
	tone audio.ToneSink,
) error {
	dbg := &debugger.Debugger{
		HandleBreak: handleBreak,
		HandleRead:  handleRead,
		HandleWrite: handleWrite,
		Binary:      binary,
	}

	mc.Debugger = dbg

	closeSource := loadSymbols(dbg, binary.Name())
	defer closeSource()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	defer func() {
		signal.Stop(c)
		close(c)
	}()

	go func() {
		for range c {
			fmt.Println()
			dbg.Break = true
		}
	}()

	if err := enterRawTerm(); err != nil {
		return fmt.Errorf("entering raw terminal: %w", err)
	}

	defer exitRawTerm()

	keypad = newConsoleKeypad(dbg, opts.Hold)

	debugREPL(dbg, mc)

	loop := host.Loop{
		Machine:  mc,
		Keypad:   keypad,
		Renderer: &consoleRenderer{dbg: dbg},
		Tone:     tone,
		Logger:   mc.Logger(),
	}

	for !shouldexit {
		err := loop.Run(ctx)

		if err == nil || shouldexit {
			break
		}

		fmt.Println()
		fmt.Println("Program halted:", err)
		dbg.PrintDisasm(&mc.State, mc.State.Program, 4)

		debugREPL(dbg, mc)

		if mc.Fault() != nil {
			return err
		}
	}

	cancel()
	return nil
}
