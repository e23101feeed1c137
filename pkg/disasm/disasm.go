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

// Package disasm turns CHIP-8 opcode words back into readable mnemonics
// using the retrogolib instruction tables.
package disasm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"

	"github.com/lassandro/goch8/pkg/encoding"
)

// Decode matches an opcode word against the instruction tables, keyed by
// the top nibble and resolved by mask/value comparison.
func Decode(op uint16) (chip8.Opcode, bool) {
	for _, candidate := range chip8.Opcodes[int(op>>12)] {
		if candidate.Info.Mask&op == candidate.Info.Value {
			return candidate, true
		}
	}

	return chip8.Opcode{}, false
}

// Format renders an opcode word as "MNEMONIC operands". Words that match
// no instruction come out as raw data words.
func Format(op uint16) string {
	opcode, ok := Decode(op)

	if !ok || opcode.Instruction == nil {
		return fmt.Sprintf(".dw $%04X", op)
	}

	name := strings.ToUpper(opcode.Instruction.Name)

	if params := formatParams(opcode.Instruction.Name, op); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}

	return name
}

// Disassemble writes a linear two-byte listing of rom, labelling each
// line with its load address starting at base.
func Disassemble(w io.Writer, rom []byte, base uint16) error {
	bw := bufio.NewWriter(w)

	for i := 0; i+1 < len(rom); i += 2 {
		op := uint16(rom[i])<<8 | uint16(rom[i+1])

		if _, err := fmt.Fprintf(
			bw, "$%03X: %02X %02X  %s\n",
			base+uint16(i), rom[i], rom[i+1], Format(op),
		); err != nil {
			return err
		}
	}

	if len(rom)%2 == 1 {
		last := rom[len(rom)-1]

		if _, err := fmt.Fprintf(
			bw, "$%03X: %02X     .db $%02X\n",
			base+uint16(len(rom)-1), last, last,
		); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func formatParams(name string, op uint16) string {
	x := encoding.RegX(op)
	y := encoding.RegY(op)

	switch name {
	case chip8.JpInst.Name:
		if op&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", encoding.Addr(op))
		}
		return fmt.Sprintf("$%03X", encoding.Addr(op))

	case chip8.CallInst.Name:
		return fmt.Sprintf("$%03X", encoding.Addr(op))

	case chip8.SeInst.Name, chip8.SneInst.Name:
		if op&0xF000 == 0x3000 || op&0xF000 == 0x4000 {
			return fmt.Sprintf("V%X, $%02X", x, encoding.Imm(op))
		}
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.LdInst.Name:
		return formatLoadParams(op, x, y)

	case chip8.AddInst.Name:
		switch op & 0xF000 {
		case 0x7000:
			return fmt.Sprintf("V%X, $%02X", x, encoding.Imm(op))
		case 0xF000:
			return fmt.Sprintf("I, V%X", x)
		}
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.OrInst.Name, chip8.AndInst.Name, chip8.XorInst.Name,
		chip8.SubInst.Name, chip8.SubnInst.Name:
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.ShrInst.Name, chip8.ShlInst.Name, chip8.SkpInst.Name, chip8.SknpInst.Name:
		return fmt.Sprintf("V%X", x)

	case chip8.RndInst.Name:
		return fmt.Sprintf("V%X, $%02X", x, encoding.Imm(op))

	case chip8.DrwInst.Name:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, encoding.Nibble(op))
	}

	return ""
}

// formatLoadParams covers the many LD aliases across groups 6, 8, A and F.
func formatLoadParams(op uint16, x, y uint8) string {
	switch op & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, encoding.Imm(op))
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", encoding.Addr(op))
	}

	switch op & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}

	return ""
}
