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

package debugger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/goch8/pkg/debugger"
	"github.com/lassandro/goch8/pkg/machine"
)

func TestBreakpoint(t *testing.T) {
	mc := machine.New()

	// Two no-op comparisons and a self-jump
	require.NoError(t, mc.Load([]byte{
		0x30, 0x01, // SE V0, $01 (not taken)
		0x30, 0x01, // SE V0, $01 (not taken)
		0x12, 0x04, // JP $204
	}))

	breaks := 0

	dbg := &debugger.Debugger{
		Breakpoints: []debugger.Breakpoint{
			{Addr: 0x0204},
		},
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			breaks++
		},
	}
	mc.Debugger = dbg

	require.NoError(t, mc.StepInstruction())
	assert.Equal(t, 0, breaks, "breakpoint fired before its address")

	require.NoError(t, mc.StepInstruction())
	assert.Equal(t, 1, breaks, "breakpoint did not fire at its address")
}

func TestBreakFlag(t *testing.T) {
	mc := machine.New()

	require.NoError(t, mc.Load([]byte{
		0x12, 0x00, // JP $200
	}))

	breaks := 0

	dbg := &debugger.Debugger{
		Break: true,
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			breaks++
		},
	}
	mc.Debugger = dbg

	for i := 0; i < 3; i++ {
		require.NoError(t, mc.StepInstruction())
	}

	assert.Equal(t, 3, breaks, "break flag should halt every step")
}

func TestWriteWatchpoint(t *testing.T) {
	mc := machine.New()

	require.NoError(t, mc.Load([]byte{
		0xA3, 0x00, // LD I, $300
		0xF1, 0x55, // LD [I], V1
	}))

	var writes []uint16

	dbg := &debugger.Debugger{
		Watchpoints: []debugger.Watchpoint{
			{Addr: 0x0300, Type: debugger.WriteWatch},
		},
		HandleWrite: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			writes = append(writes, addr)
		},
		HandleRead: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			t.Fatal("write watchpoint fired a read handler")
		},
	}
	mc.Debugger = dbg

	require.NoError(t, mc.StepInstruction())
	assert.Empty(t, writes)

	// FX55 stores V0 and V1, only the V0 byte lands on the watch address
	require.NoError(t, mc.StepInstruction())
	assert.Equal(t, []uint16{0x0300}, writes)
}

func TestReadWatchpoint(t *testing.T) {
	mc := machine.New()

	require.NoError(t, mc.Load([]byte{
		0xA3, 0x00, // LD I, $300
		0xF0, 0x65, // LD V0, [I]
	}))

	mc.State.Memory[0x0300] = 0xAB

	var reads []uint16

	dbg := &debugger.Debugger{
		Watchpoints: []debugger.Watchpoint{
			{Addr: 0x0300, Type: debugger.ReadWatch},
		},
		HandleRead: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			reads = append(reads, addr)
		},
		HandleWrite: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			t.Fatal("read watchpoint fired a write handler")
		},
	}
	mc.Debugger = dbg

	require.NoError(t, mc.StepInstruction())
	assert.Empty(t, reads)

	require.NoError(t, mc.StepInstruction())
	assert.Equal(t, []uint16{0x0300}, reads)
	assert.Equal(t, uint8(0xAB), mc.State.Registers[0])
}

func TestReadWriteWatchpoint(t *testing.T) {
	mc := machine.New()

	require.NoError(t, mc.Load([]byte{
		0xA3, 0x00, // LD I, $300
		0xF0, 0x65, // LD V0, [I]
		0xF0, 0x55, // LD [I], V0
	}))

	reads, writes := 0, 0

	dbg := &debugger.Debugger{
		Watchpoints: []debugger.Watchpoint{
			{Addr: 0x0300, Type: debugger.ReadWriteWatch},
		},
		HandleRead: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			reads++
		},
		HandleWrite: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			writes++
		},
	}
	mc.Debugger = dbg

	for i := 0; i < 3; i++ {
		require.NoError(t, mc.StepInstruction())
	}

	assert.Equal(t, 1, reads)
	assert.Equal(t, 1, writes)
}
