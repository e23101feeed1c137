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

import (
	"math/rand"
)

// Beeper receives the one-shot buzzer signal emitted on the tick where the
// sound timer drops from 1 to 0
type Beeper interface {
	Beep()
}

type MachineState struct {
	Registers [NumRegisters]uint8
	Index     uint16
	Program   uint16

	Stack    [StackDepth]uint16
	StackPtr uint8

	Delay uint8
	Sound uint8

	Keys [NumKeys]bool

	// Waiting is set while an FX0A instruction blocks execution; WaitReg
	// names the register that receives the next key press
	Waiting bool
	WaitReg uint8

	Display [DisplaySize]bool
	Redraw  bool

	Memory [MemorySize]uint8
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Audio    Beeper
	Rand     *rand.Rand
	State    MachineState
	Debugger MachineDebugger
}
