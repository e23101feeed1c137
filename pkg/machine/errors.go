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
	"errors"
	"fmt"
)

// Fatal conditions: stepping must not continue once one of these is
// returned. Unknown opcodes are reported through UnknownOpcodeError
// instead and leave the machine runnable.
var (
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
	ErrROMTooLarge    = errors.New("rom does not fit in memory")
	ErrInvalidKey     = errors.New("key index out of range")
)

// UnknownOpcodeError reports an opcode that matched no instruction
// pattern. The program counter has already moved past the offending word
// when this is returned, so callers may log it and keep stepping.
type UnknownOpcodeError struct {
	Opcode uint16
	Addr   uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %#04x at %#03x", e.Opcode, e.Addr)
}
