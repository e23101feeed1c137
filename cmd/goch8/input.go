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
	"os"

	"github.com/lassandro/goch8/pkg/machine"
)

// Host keyboard to CHIP-8 pad:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
var keyMap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Terminals report presses but never releases, so a pressed key is held
// down for a few frames and then released
const keyHoldFrames = 6

var keyframes [machine.NumKeys]int
var keyscratch [64]byte

func pollKeys(mc *machine.Machine) {
	if n, err := os.Stdin.Read(keyscratch[:]); err == nil {
		for _, b := range keyscratch[:n] {
			if b == 0x1B {
				shouldexit = true
				return
			}

			if key, ok := keyMap[b]; ok {
				keyframes[key] = keyHoldFrames
			}
		}
	}

	for key := range keyframes {
		down := keyframes[key] > 0

		if down {
			keyframes[key]--
		}

		if err := mc.SetKey(key, down); err != nil {
			panic(err)
		}
	}
}
