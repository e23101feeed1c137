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
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/lassandro/goch8/pkg/encoding"
)

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	for i := range mc.Memory {
		mc.Memory[i] = 0x00
	}

	for i := range mc.Stack {
		mc.Stack[i] = 0x0000
	}

	for i := range mc.Display {
		mc.Display[i] = false
	}

	for i := range mc.Keys {
		mc.Keys[i] = false
	}

	copy(mc.Memory[FontStart:], fontSet[:])

	mc.Index = 0x0000
	mc.Program = ProgramStart
	mc.StackPtr = 0
	mc.Delay = 0
	mc.Sound = 0
	mc.Waiting = false
	mc.WaitReg = 0

	// Force an initial blank-screen paint
	mc.Redraw = true
}

func New() *Machine {
	mc := &Machine{}
	mc.State.Reset()
	return mc
}

// Load copies a ROM image into memory at the program start address. No
// other machine state is touched, so Reset (or New) must run before Load.
func (mc *Machine) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf(
			"loading %d byte rom into %d bytes of program space: %w",
			len(rom), MaxROMSize, ErrROMTooLarge,
		)
	}

	copy(mc.State.Memory[ProgramStart:], rom)
	return nil
}

func (mc *Machine) LoadBin(reader io.Reader) error {
	rom, err := io.ReadAll(reader)

	if err != nil {
		return err
	}

	return mc.Load(rom)
}

// SetKey records a key-down or key-up event from the input source.
func (mc *Machine) SetKey(key int, down bool) error {
	if key < 0 || key >= NumKeys {
		return fmt.Errorf("key %d: %w", key, ErrInvalidKey)
	}

	mc.State.Keys[key] = down
	return nil
}

func (mc *Machine) Key(key int) (bool, error) {
	if key < 0 || key >= NumKeys {
		return false, fmt.Errorf("key %d: %w", key, ErrInvalidKey)
	}

	return mc.State.Keys[key], nil
}

// Snapshot copies out the framebuffer together with the redraw flag and
// clears the flag, which makes it the read the display sink is expected
// to perform once per frame.
func (mc *Machine) Snapshot() ([DisplaySize]bool, bool) {
	redraw := mc.State.Redraw
	mc.State.Redraw = false
	return mc.State.Display, redraw
}

func (mc *Machine) read(addr uint16) uint8 {
	addr &= AddressMask

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value uint8) {
	addr &= AddressMask

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) randByte() uint8 {
	if mc.Rand == nil {
		mc.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return uint8(mc.Rand.Intn(256))
}

// TickTimers applies one 60Hz decay tick to both countdown timers. The
// sound timer dropping from 1 to 0 emits the one-shot beep signal.
func (mc *Machine) TickTimers() {
	if mc.State.Delay > 0 {
		mc.State.Delay--
	}

	if mc.State.Sound > 0 {
		if mc.State.Sound == 1 && mc.Audio != nil {
			mc.Audio.Beep()
		}

		mc.State.Sound--
	}
}

// Step runs one fetch-decode-execute cycle followed by one timer tick.
// Driving loops that run several instructions per frame should call
// StepInstruction directly and TickTimers once per frame instead, so the
// timers keep their fixed decay rate.
func (mc *Machine) Step() error {
	err := mc.StepInstruction()
	mc.TickTimers()
	return err
}

// StepInstruction executes exactly one instruction, or polls the keypad
// when the machine is blocked on an FX0A wait.
func (mc *Machine) StepInstruction() error {
	if mc.State.Waiting {
		for key, down := range mc.State.Keys {
			if down {
				mc.State.Registers[mc.State.WaitReg] = uint8(key)
				mc.State.Waiting = false
				mc.State.Program += 2
				break
			}
		}

		if mc.Debugger != nil {
			mc.Debugger.Step(mc)
		}

		return nil
	}

	pc := mc.State.Program
	opcode := uint16(mc.read(pc))<<8 | uint16(mc.read(pc+1))

	x := encoding.RegX(opcode)
	y := encoding.RegY(opcode)

	mc.State.Program += 2

	var err error

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		// CLS  |0000    |0000   |1110   |0000   | Clear display
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case 0x00E0:
			for i := range mc.State.Display {
				mc.State.Display[i] = false
			}
			mc.State.Redraw = true

		// RET  |0000    |0000   |1110   |1110   | Return from subroutine
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case 0x00EE:
			if mc.State.StackPtr == 0 {
				return fmt.Errorf("return at %#03x: %w", pc, ErrStackUnderflow)
			}

			mc.State.StackPtr--
			mc.State.Program = mc.State.Stack[mc.State.StackPtr] + 2

		// SYS and anything else in group 0 is a machine-code trap on the
		// original COSMAC interpreter; report it but keep running
		default:
			err = &UnknownOpcodeError{Opcode: opcode, Addr: pc}
		}

	// JP   |0001    |nnn                       | Jump to address
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x1000:
		mc.State.Program = encoding.Addr(opcode)

	// CALL |0010    |nnn                       | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x2000:
		if mc.State.StackPtr == StackDepth {
			return fmt.Errorf("call at %#03x: %w", pc, ErrStackOverflow)
		}

		mc.State.Stack[mc.State.StackPtr] = pc
		mc.State.StackPtr++
		mc.State.Program = encoding.Addr(opcode)

	// SE   |0011    |x    |nn                  | Skip next if Vx == nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x3000:
		if mc.State.Registers[x] == encoding.Imm(opcode) {
			mc.State.Program += 2
		}

	// SNE  |0100    |x    |nn                  | Skip next if Vx != nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x4000:
		if mc.State.Registers[x] != encoding.Imm(opcode) {
			mc.State.Program += 2
		}

	// SE   |0101    |x    |y    |0000          | Skip next if Vx == Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x5000:
		if opcode&0x000F != 0 {
			err = &UnknownOpcodeError{Opcode: opcode, Addr: pc}
			break
		}

		if mc.State.Registers[x] == mc.State.Registers[y] {
			mc.State.Program += 2
		}

	// LD   |0110    |x    |nn                  | Vx = nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x6000:
		mc.State.Registers[x] = encoding.Imm(opcode)

	// ADD  |0111    |x    |nn                  | Vx += nn, no carry flag
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x7000:
		mc.State.Registers[x] += encoding.Imm(opcode)

	case 0x8000:
		err = mc.stepALU(opcode, pc, x, y)

	// SNE  |1001    |x    |y    |0000          | Skip next if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x9000:
		if opcode&0x000F != 0 {
			err = &UnknownOpcodeError{Opcode: opcode, Addr: pc}
			break
		}

		if mc.State.Registers[x] != mc.State.Registers[y] {
			mc.State.Program += 2
		}

	// LD   |1010    |nnn                       | I = nnn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0xA000:
		mc.State.Index = encoding.Addr(opcode)

	// JP   |1011    |nnn                       | Jump to V0 + nnn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0xB000:
		mc.State.Program = uint16(mc.State.Registers[0]) + encoding.Addr(opcode)

	// RND  |1100    |x    |nn                  | Vx = random byte AND nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0xC000:
		mc.State.Registers[x] = mc.randByte() & encoding.Imm(opcode)

	// DRW  |1101    |x    |y    |n             | Draw n-row sprite at Vx,Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0xD000:
		mc.drawSprite(x, y, encoding.Nibble(opcode))

	case 0xE000:
		switch opcode & 0x00FF {
		// SKP  |1110    |x    |1001   |1110    | Skip next if key Vx down
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case 0x9E:
			if mc.State.Keys[mc.State.Registers[x]&0x0F] {
				mc.State.Program += 2
			}

		// SKNP |1110    |x    |1010   |0001    | Skip next if key Vx up
		// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
		case 0xA1:
			if !mc.State.Keys[mc.State.Registers[x]&0x0F] {
				mc.State.Program += 2
			}

		default:
			err = &UnknownOpcodeError{Opcode: opcode, Addr: pc}
		}

	case 0xF000:
		err = mc.stepMisc(opcode, pc, x)

	default:
		err = &UnknownOpcodeError{Opcode: opcode, Addr: pc}
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return err
}

// stepALU dispatches the register-to-register arithmetic group on the low
// nibble. VF always receives the carry/borrow/shifted-out bit after the
// result is computed, so VF as a destination still ends up holding the
// flag.
func (mc *Machine) stepALU(opcode uint16, pc uint16, x, y uint8) error {
	vx := mc.State.Registers[x]
	vy := mc.State.Registers[y]

	switch opcode & 0x000F {
	// LD   |1000    |x    |y    |0000          | Vx = Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x0:
		mc.State.Registers[x] = vy

	// OR   |1000    |x    |y    |0001          | Vx |= Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x1:
		mc.State.Registers[x] = vx | vy

	// AND  |1000    |x    |y    |0010          | Vx &= Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x2:
		mc.State.Registers[x] = vx & vy

	// XOR  |1000    |x    |y    |0011          | Vx ^= Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x3:
		mc.State.Registers[x] = vx ^ vy

	// ADD  |1000    |x    |y    |0100          | Vx += Vy, VF = carry
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x4:
		mc.State.Registers[x] = vx + vy

		if uint16(vx)+uint16(vy) > 0xFF {
			mc.State.Registers[0xF] = 1
		} else {
			mc.State.Registers[0xF] = 0
		}

	// SUB  |1000    |x    |y    |0101          | Vx -= Vy, VF = no borrow
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x5:
		mc.State.Registers[x] = vx - vy

		if vy > vx {
			mc.State.Registers[0xF] = 0
		} else {
			mc.State.Registers[0xF] = 1
		}

	// SHR  |1000    |x    |y    |0110          | Vx >>= 1, VF = old bit 0
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x6:
		mc.State.Registers[x] = vx >> 1
		mc.State.Registers[0xF] = vx & 0x01

	// SUBN |1000    |x    |y    |0111          | Vx = Vy - Vx, VF = no borrow
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x7:
		mc.State.Registers[x] = vy - vx

		if vx > vy {
			mc.State.Registers[0xF] = 0
		} else {
			mc.State.Registers[0xF] = 1
		}

	// SHL  |1000    |x    |y    |1110          | Vx <<= 1, VF = old bit 7
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0xE:
		mc.State.Registers[x] = vx << 1
		mc.State.Registers[0xF] = vx >> 7

	default:
		return &UnknownOpcodeError{Opcode: opcode, Addr: pc}
	}

	return nil
}

func (mc *Machine) stepMisc(opcode uint16, pc uint16, x uint8) error {
	switch opcode & 0x00FF {
	// LD   |1111    |x    |0000   |0111        | Vx = delay timer
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x07:
		mc.State.Registers[x] = mc.State.Delay

	// LD   |1111    |x    |0000   |1010        | Block until key, Vx = key
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x0A:
		// Rewind so the program counter stays on this instruction for
		// the whole wait; StepInstruction advances it again once a key
		// arrives
		mc.State.Program = pc
		mc.State.Waiting = true
		mc.State.WaitReg = x

	// LD   |1111    |x    |0001   |0101        | Delay timer = Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x15:
		mc.State.Delay = mc.State.Registers[x]

	// LD   |1111    |x    |0001   |1000        | Sound timer = Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x18:
		mc.State.Sound = mc.State.Registers[x]

	// ADD  |1111    |x    |0001   |1110        | I += Vx, no flag change
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x1E:
		mc.State.Index += uint16(mc.State.Registers[x])

	// LD   |1111    |x    |0010   |1001        | I = font glyph for Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x29:
		mc.State.Index = FontStart +
			uint16(mc.State.Registers[x]&0x0F)*FontGlyphSize

	// LD   |1111    |x    |0011   |0011        | BCD of Vx at I, I+1, I+2
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x33:
		vx := mc.State.Registers[x]
		mc.write(mc.State.Index, vx/100)
		mc.write(mc.State.Index+1, (vx/10)%10)
		mc.write(mc.State.Index+2, vx%10)

	// LD   |1111    |x    |0101   |0101        | Store V0..Vx at I
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x55:
		for i := uint16(0); i <= uint16(x); i++ {
			mc.write(mc.State.Index+i, mc.State.Registers[i])
		}

	// LD   |1111    |x    |0110   |0101        | Load V0..Vx from I
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case 0x65:
		for i := uint16(0); i <= uint16(x); i++ {
			mc.State.Registers[i] = mc.read(mc.State.Index + i)
		}

	default:
		return &UnknownOpcodeError{Opcode: opcode, Addr: pc}
	}

	return nil
}

// drawSprite XORs an n-row sprite read from memory at I onto the display
// at (Vx, Vy), wrapping every pixel modulo the screen dimensions. VF
// reports whether any previously-on pixel was turned off.
func (mc *Machine) drawSprite(x, y, n uint8) {
	px := uint16(mc.State.Registers[x]) % DisplayWidth
	py := uint16(mc.State.Registers[y]) % DisplayHeight

	mc.State.Registers[0xF] = 0

	for row := uint16(0); row < uint16(n); row++ {
		bits := mc.read(mc.State.Index + row)

		for col := uint16(0); col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			cell := ((py+row)%DisplayHeight)*DisplayWidth +
				(px+col)%DisplayWidth

			if mc.State.Display[cell] {
				mc.State.Registers[0xF] = 1
			}

			mc.State.Display[cell] = !mc.State.Display[cell]
		}
	}

	mc.State.Redraw = true
}
