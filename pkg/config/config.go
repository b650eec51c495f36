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

// Package config holds the interpreter command line options.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
)

const (
	MAX_INSTRUCTIONS_PER_TICK = 1000
	DEFAULT_HOLD_FRAMES       = 6
)

var ErrUsage = errors.New("usage")

type Options struct {
	Input string

	Profile             string
	InstructionsPerTick int
	Truncate            bool
	Seed                int64

	Debug     bool
	Mute      bool
	Wav       string
	Statsview bool
	Hold      int

	Verbose bool
	Quiet   bool
	Version bool
	Help    bool
}

func RegisterFlags(flags *flag.FlagSet, opts *Options) {
	flags.StringVar(
		&opts.Profile, "profile", machine.ProfileModern.Name,
		"Quirk profile ("+strings.Join(machine.ProfileNames(), "|")+")",
	)
	flags.IntVar(
		&opts.InstructionsPerTick, "ipt", 0,
		"Instructions executed per 60Hz tick, 0 uses the profile value",
	)
	flags.BoolVar(
		&opts.Truncate, "truncate", false,
		"Truncate roms larger than program space instead of rejecting them",
	)
	flags.Int64Var(&opts.Seed, "seed", 0, "Seed for RND, 0 seeds from the clock")
	flags.BoolVar(&opts.Debug, "debug", false, "Runs the machine in a debug CLI")
	flags.BoolVar(&opts.Mute, "mute", false, "Disables the speaker tone")
	flags.StringVar(&opts.Wav, "wav", "", "Records the tone to a WAV file")
	flags.BoolVar(
		&opts.Statsview, "statsview", false,
		"Serves runtime statistics at http://"+"localhost:12600/debug/statsview",
	)
	flags.IntVar(
		&opts.Hold, "hold", DEFAULT_HOLD_FRAMES,
		"Frames a terminal key press counts as held",
	)
	flags.BoolVar(&opts.Verbose, "verbose", false, "Enables debug logging")
	flags.BoolVar(&opts.Quiet, "quiet", false, "Only logs errors")
	flags.BoolVar(&opts.Version, "version", false, "Prints the version")
	flags.BoolVar(&opts.Help, "help", false, "Displays command usage")
}

// PrintDefaults writes the flag descriptions to output.
func PrintDefaults(name string, output io.Writer) {
	var opts Options

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	RegisterFlags(flags, &opts)
	flags.PrintDefaults()
}

// Parse reads args (without the program name) into a validated Options.
func Parse(name string, args []string, output io.Writer) (Options, error) {
	var opts Options

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	RegisterFlags(flags, &opts)

	if err := flags.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %s", ErrUsage, err)
	}

	if opts.Help || opts.Version {
		return opts, nil
	}

	if flags.NArg() != 1 {
		return opts, fmt.Errorf("%w: expected exactly one rom file", ErrUsage)
	}

	opts.Input = flags.Arg(0)

	if err := opts.Validate(); err != nil {
		return opts, err
	}

	return opts, nil
}

func (opts *Options) Validate() error {
	if _, err := machine.LookupProfile(opts.Profile); err != nil {
		return err
	}

	if opts.InstructionsPerTick < 0 || opts.InstructionsPerTick > MAX_INSTRUCTIONS_PER_TICK {
		return fmt.Errorf(
			"instructions per tick must be between 0 and %d, have %d",
			MAX_INSTRUCTIONS_PER_TICK,
			opts.InstructionsPerTick,
		)
	}

	if opts.Hold < 1 {
		return fmt.Errorf("hold must be at least 1 frame, have %d", opts.Hold)
	}

	if opts.Verbose && opts.Quiet {
		return errors.New("verbose and quiet are mutually exclusive")
	}

	return nil
}

// MachineProfile returns the selected profile with the instruction rate
// override applied.
func (opts *Options) MachineProfile() (machine.Profile, error) {
	profile, err := machine.LookupProfile(opts.Profile)

	if err != nil {
		return profile, err
	}

	if opts.InstructionsPerTick > 0 {
		profile.InstructionsPerTick = opts.InstructionsPerTick
	}

	return profile, nil
}

func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
