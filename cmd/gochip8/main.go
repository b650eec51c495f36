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
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lassandro/gochip8/pkg/audio"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/display"
	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/statsview"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	rlog "github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var exename = "gochip8"
var shouldexit bool

const usage = "gochip8 [options] filename"

func init() {
	if exe, err := os.Executable(); err == nil {
		exename = filepath.Base(exe)
	}

	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", exename))
	log.SetOutput(os.Stderr)
}

func openTone(opts config.Options, logger *rlog.Logger) audio.Multi {
	var sinks audio.Multi

	if !opts.Mute {
		if spk, err := audio.NewSpeaker(logger); err == nil {
			sinks = append(sinks, spk)
		} else {
			logger.Warn("Sound disabled", rlog.Err(err))
		}
	}

	if opts.Wav != "" {
		sinks = append(sinks, audio.NewWavRecorder(opts.Wav, logger))
	}

	return sinks
}

func runTerminal(
	ctx context.Context,
	mc *machine.Machine,
	opts config.Options,
	tone audio.ToneSink,
) error {
	if err := checkTermSize(display.MIN_WIDTH, display.MIN_HEIGHT); err != nil {
		return err
	}

	term, err := display.Open()

	if err != nil {
		return err
	}

	defer term.Close()

	keypad := display.NewKeypad(opts.Hold)
	defer keypad.Stop()

	loop := host.Loop{
		Machine:  mc,
		Keypad:   keypad,
		Renderer: term,
		Tone:     tone,
		Logger:   mc.Logger(),
	}

	return loop.Run(ctx)
}

func gochip8() int {
	opts, err := config.Parse(exename, os.Args[1:], os.Stderr)

	if err != nil {
		if errors.Is(err, config.ErrUsage) {
			log.Println(usage)
		} else {
			log.Println(err)
		}
		return 1
	}

	if opts.Help {
		fmt.Println(usage)
		config.PrintDefaults(exename, os.Stdout)
		return 0
	}

	if opts.Version {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return 0
	}

	logger := config.CreateLogger(opts.Verbose, opts.Quiet)

	profile, err := opts.MachineProfile()

	if err != nil {
		log.Println(err)
		return 1
	}

	file, err := os.Open(opts.Input)

	if err != nil {
		log.Println(err)
		return 1
	}

	defer file.Close()

	mc := machine.New(profile, logger)
	mc.Truncate = opts.Truncate

	if opts.Seed != 0 {
		mc.Seed(opts.Seed)
	}

	size, err := mc.LoadBin(file)

	if err != nil {
		log.Println(err)
		return 1
	}

	logger.Info(
		"Rom loaded",
		rlog.String("file", opts.Input),
		rlog.Int("size", size),
		rlog.String("profile", profile.Name),
	)

	if opts.Statsview {
		statsview.Launch(os.Stderr)
	}

	tone := openTone(opts, logger)

	defer func() {
		if err := tone.Close(); err != nil {
			log.Println(err)
		}
	}()

	// The debugger owns SIGINT to break into the prompt.
	root := context.Background()
	if !opts.Debug {
		root = app.Context()
	}

	ctx, cancel := context.WithCancel(root)
	defer cancel()

	if opts.Debug {
		err = runDebugger(ctx, cancel, mc, file, opts, tone)
	} else {
		err = runTerminal(ctx, mc, opts, tone)
	}

	if err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(gochip8())
}
