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
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/retroenv/retrogolib/buildinfo"

	"github.com/lassandro/goch8/pkg/disasm"
	"github.com/lassandro/goch8/pkg/machine"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

var helpvar bool
var quietvar bool
var outvar string

const usage = "goch8-dasm [-q] [-o outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&quietvar, "q", false, "Suppresses the version banner")
	flag.StringVar(
		&outvar, "o", "",
		"Writes the listing to a file instead of stdout",
	)
	flag.Parse()
}

func goch8_dasm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	rom, err := os.ReadFile(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	if len(rom) > machine.MaxROMSize {
		log.Printf("%s does not fit in chip-8 program space", args[0])
		return 1
	}

	if !quietvar {
		fmt.Fprintf(
			os.Stderr, "goch8-dasm %s\n",
			buildinfo.Version(version, commit, date),
		)
	}

	var out io.Writer = os.Stdout

	if outvar != "" {
		file, err := os.Create(outvar)

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()
		out = file
	}

	if err := disasm.Disassemble(out, rom, machine.ProgramStart); err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(goch8_dasm())
}
