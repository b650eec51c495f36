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

// Tick runs one 60 Hz frame: timers are decremented once, then the profile's
// instructions per tick are executed against keys. The previous tick's keys
// are kept for Fx0A release detection.
//
// Execution stops at the first error; the machine is then halted and every
// later Tick returns the same error.
func (mc *Machine) Tick(keys Keys) (TickReport, error) {
	if mc.fault != nil {
		return mc.report(0), mc.fault
	}

	mc.keys = keys
	mc.tone = mc.State.DecrementTimers()

	var err error
	executed := 0

	for executed < mc.instructionsPerTick() {
		if err = mc.Step(); err != nil {
			break
		}

		executed++
	}

	mc.lastKeys = keys

	return mc.report(executed), err
}

func (mc *Machine) instructionsPerTick() int {
	if mc.Profile.InstructionsPerTick < 1 {
		return 1
	}

	return mc.Profile.InstructionsPerTick
}

func (mc *Machine) report(executed int) TickReport {
	stack := make([]uint16, len(mc.State.Stack))
	copy(stack, mc.State.Stack)

	return TickReport{
		Display:  mc.State.Display,
		Program:  mc.State.Program,
		Index:    mc.State.Index,
		Stack:    stack,
		Delay:    mc.State.Delay,
		Sound:    mc.State.Sound,
		Tone:     mc.tone,
		Executed: executed,
		Waiting:  mc.waiting,
	}
}

// SetKeys sets the keypad state seen by Step when stepping outside Tick.
func (mc *Machine) SetKeys(keys, lastKeys Keys) {
	mc.keys = keys
	mc.lastKeys = lastKeys
}

// Waiting reports whether the last instruction was an Fx0A still waiting
// for a key release.
func (mc *Machine) Waiting() bool {
	return mc.waiting
}
