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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/youpy/go-wav"
)

const (
	WAV_BITS     = 8
	WAV_SILENCE  = 0x80
	WAV_HIGH     = WAV_SILENCE + 0x30
	WAV_LOW      = WAV_SILENCE - 0x30
	WAV_CHANNELS = 1
)

// WavRecorder buffers the gated tone as a square wave, one tick of samples
// per SetTone, and writes it to a WAV file on Close.
type WavRecorder struct {
	filename string
	buffer   []wav.Sample
	osc      oscillator
	logger   *log.Logger
}

func NewWavRecorder(filename string, logger *log.Logger) *WavRecorder {
	return &WavRecorder{
		filename: filename,
		buffer:   make([]wav.Sample, 0),
		osc:      newOscillator(TONE_FREQUENCY, SAMPLE_RATE),
		logger:   logger,
	}
}

func (rec *WavRecorder) SetTone(on bool) {
	for i := 0; i < SAMPLES_PER_TICK; i++ {
		sample := wav.Sample{}

		switch {
		case !on:
			sample.Values[0] = WAV_SILENCE
		case rec.osc.next() >= 0:
			sample.Values[0] = WAV_HIGH
		default:
			sample.Values[0] = WAV_LOW
		}

		rec.buffer = append(rec.buffer, sample)
	}
}

// Len returns the number of buffered samples.
func (rec *WavRecorder) Len() int {
	return len(rec.buffer)
}

func (rec *WavRecorder) WriteTo(w io.Writer) (int64, error) {
	enc := wav.NewWriter(
		w, uint32(len(rec.buffer)), WAV_CHANNELS, SAMPLE_RATE, WAV_BITS,
	)

	if enc == nil {
		return 0, errors.New("wav: bad parameters for encoding")
	}

	if err := enc.WriteSamples(rec.buffer); err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}

	return int64(len(rec.buffer) * WAV_CHANNELS * WAV_BITS / 8), nil
}

func (rec *WavRecorder) Close() (rerr error) {
	file, err := os.Create(rec.filename)

	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wav: %w", err)
		}
	}()

	rec.logger.Info(
		"Writing audio",
		log.String("file", rec.filename),
		log.Int("samples", len(rec.buffer)),
	)

	_, err = rec.WriteTo(file)

	return err
}
