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
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/lassandro/goch8/pkg/debugger"
	"github.com/lassandro/goch8/pkg/machine"
)

var helpvar bool
var debugvar bool
var cyclesvar int
var shouldexit bool

const usage = "goch8 [-debug] [-cycles #] filename"

// Frames per second of the driving loop; timers decay once per frame
const refreshRate = 60

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.IntVar(
		&cyclesvar, "cycles", 10,
		"Instructions executed per 60Hz frame",
	)
	flag.Parse()
}

func goch8() int {
	logger := log.NewWithConfig(log.DefaultConfig())

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		fmt.Println(usage)
		return 1
	}

	rom, err := os.ReadFile(args[0])

	if err != nil {
		logger.Error("Reading rom", log.Err(err))
		return 1
	}

	mc := machine.New()
	mc.Audio = bellBeeper{os.Stdout}

	if err := mc.Load(rom); err != nil {
		logger.Error("Loading rom", log.Err(err))
		return 1
	}

	var dbg *debugger.Debugger

	if debugvar {
		dbg = &debugger.Debugger{
			ROM:         rom,
			HandleBreak: handleBreak,
			HandleRead:  handleRead,
			HandleWrite: handleWrite,
		}
		mc.Debugger = dbg

		c := make(chan os.Signal, 1)
		defer close(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				fmt.Println()
				dbg.Break = true
			}
		}()
	}

	enterRawTerm()
	defer exitRawTerm()

	fmt.Print("\033[2J")

	if debugvar {
		debugREPL(dbg, mc)
	}

	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	for !shouldexit {
		<-ticker.C

		pollKeys(mc)

		for i := 0; i < cyclesvar && !shouldexit; i++ {
			if err := mc.StepInstruction(); err != nil {
				var unknown *machine.UnknownOpcodeError

				if errors.As(err, &unknown) {
					logger.Warn("Skipping unknown opcode",
						log.Hex("opcode", unknown.Opcode),
						log.Hex("address", unknown.Addr),
					)
					continue
				}

				exitRawTerm()
				logger.Error("Emulation halted", log.Err(err))
				return 1
			}
		}

		mc.TickTimers()
		render(mc)
	}

	return 0
}

func main() {
	os.Exit(goch8())
}
