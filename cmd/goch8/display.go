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
	"fmt"
	"os"
	"strings"

	"github.com/lassandro/goch8/pkg/machine"
)

// bellBeeper emits the sound timer beep as a terminal BEL
type bellBeeper struct {
	out *os.File
}

func (b bellBeeper) Beep() {
	fmt.Fprint(b.out, "\a")
}

// render repaints the framebuffer when the machine signals a redraw. Two
// terminal cells per pixel keeps the aspect ratio close to square.
func render(mc *machine.Machine) {
	pixels, redraw := mc.Snapshot()

	if !redraw {
		return
	}

	var frame strings.Builder
	frame.WriteString("\033[H")

	for y := 0; y < machine.DisplayHeight; y++ {
		for x := 0; x < machine.DisplayWidth; x++ {
			if pixels[y*machine.DisplayWidth+x] {
				frame.WriteString("██")
			} else {
				frame.WriteString("  ")
			}
		}

		frame.WriteString("\n")
	}

	fmt.Print(frame.String())
}
