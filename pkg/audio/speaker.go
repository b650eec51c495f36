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

package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/retroenv/retrogolib/log"
)

// Speaker plays a sine tone on the default output device while the gate is
// high.
type Speaker struct {
	ctrl   *beep.Ctrl
	logger *log.Logger
}

// Sine returns an endless sine streamer at the given frequency and amplitude.
func Sine(rate beep.SampleRate, frequency, amplitude float64) beep.Streamer {
	osc := newOscillator(frequency, int(rate))

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			value := osc.next() * amplitude
			samples[i][0] = value
			samples[i][1] = value
		}

		return len(samples), true
	})
}

func NewSpeaker(logger *log.Logger) (*Speaker, error) {
	rate := beep.SampleRate(SAMPLE_RATE)

	if err := speaker.Init(rate, rate.N(time.Second/TICK_RATE*2)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	spk := &Speaker{
		ctrl: &beep.Ctrl{
			Streamer: Sine(rate, TONE_FREQUENCY, TONE_AMPLITUDE),
			Paused:   true,
		},
		logger: logger,
	}

	speaker.Play(spk.ctrl)

	logger.Debug(
		"Speaker ready",
		log.Int("sample_rate", SAMPLE_RATE),
		log.String("frequency", fmt.Sprintf("%.0fHz", TONE_FREQUENCY)),
	)

	return spk, nil
}

func (spk *Speaker) SetTone(on bool) {
	speaker.Lock()
	spk.ctrl.Paused = !on
	speaker.Unlock()
}

func (spk *Speaker) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
