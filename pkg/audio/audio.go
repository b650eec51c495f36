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

// Package audio turns the machine's tone gate into sound.
package audio

import "math"

const (
	SAMPLE_RATE    = 44100
	TICK_RATE      = 60
	TONE_FREQUENCY = 440.0
	TONE_AMPLITUDE = 0.2

	SAMPLES_PER_TICK = SAMPLE_RATE / TICK_RATE
)

// ToneSink consumes the tone gate once per tick.
type ToneSink interface {
	SetTone(on bool)
	Close() error
}

// Multi fans the gate out to every sink in order.
type Multi []ToneSink

func (m Multi) SetTone(on bool) {
	for _, sink := range m {
		sink.SetTone(on)
	}
}

// Close closes every sink and returns the first error.
func (m Multi) Close() error {
	var first error

	for _, sink := range m {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// oscillator tracks phase across calls so consecutive buffers join without
// clicks.
type oscillator struct {
	phase float64
	step  float64
}

func newOscillator(frequency float64, sampleRate int) oscillator {
	return oscillator{step: frequency / float64(sampleRate)}
}

func (osc *oscillator) next() float64 {
	value := math.Sin(2 * math.Pi * osc.phase)

	osc.phase += osc.step
	if osc.phase >= 1 {
		osc.phase -= 1
	}

	return value
}
