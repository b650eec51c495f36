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

// Package host paces the machine in real time and connects it to the
// keypad, renderer and tone collaborators.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/lassandro/gochip8/pkg/audio"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
)

const TICK_RATE = time.Second / 60

type Keypad interface {
	// Poll returns the keys held this frame, and false once the user asked
	// to quit.
	Poll() (machine.Keys, bool)
}

type Renderer interface {
	Render(report machine.TickReport, state *machine.MachineState, keys machine.Keys) error
}

type Loop struct {
	Machine  *machine.Machine
	Keypad   Keypad
	Renderer Renderer
	Tone     audio.ToneSink
	Logger   *log.Logger

	// Rate defaults to TICK_RATE.
	Rate time.Duration

	Frames int
}

// Run ticks the machine until ctx is cancelled, the keypad reports a quit,
// or the machine faults. A fault is returned wrapped; the other two return
// nil.
func (loop *Loop) Run(ctx context.Context) error {
	rate := loop.Rate
	if rate <= 0 {
		rate = TICK_RATE
	}

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			loop.Logger.Debug("Host loop cancelled", log.Int("frames", loop.Frames))
			return nil
		case <-ticker.C:
		}

		done, err := loop.Frame()

		if err != nil || done {
			return err
		}
	}
}

// Frame runs one tick: poll, execute, gate the tone, render. The frame that
// faults is still rendered.
func (loop *Loop) Frame() (bool, error) {
	keys, running := loop.Keypad.Poll()

	if !running {
		loop.Logger.Info("Quit requested", log.Int("frames", loop.Frames))
		return true, nil
	}

	report, fault := loop.Machine.Tick(keys)
	loop.Frames++

	if loop.Tone != nil {
		loop.Tone.SetTone(report.Tone)
	}

	if err := loop.Renderer.Render(report, &loop.Machine.State, keys); err != nil {
		return true, fmt.Errorf("rendering frame %d: %w", loop.Frames, err)
	}

	if fault != nil {
		return true, fmt.Errorf("machine halted: %w", fault)
	}

	return false, nil
}
