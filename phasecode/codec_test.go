// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package phasecode

import (
	"fmt"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestLabels(t *testing.T) {
	for label := 1; label <= 16; label++ {
		c := LabelChar(label)
		l, ok := LabelIndex(c)
		expect.True(t, ok)
		expect.EQ(t, l, label-1)
	}
	expect.EQ(t, LabelChar(10), byte('a'))
	_, ok := LabelIndex('0')
	expect.False(t, ok)

	side, slot, ok := Slot('3', 4)
	expect.True(t, ok)
	expect.EQ(t, side, 0)
	expect.EQ(t, slot, 2)
	side, slot, ok = Slot('5', 4)
	expect.True(t, ok)
	expect.EQ(t, side, 1)
	expect.EQ(t, slot, 0)
	_, _, ok = Slot('9', 4)
	expect.False(t, ok)
}

func TestDecodeHash(t *testing.T) {
	copies := [][]byte{[]byte("1234"), []byte("3412")}
	v, err := Decode(copies, 0, 0, 4)
	expect.NoError(t, err)
	expect.EQ(t, v, Vector{true, false, true, false})
	expect.EQ(t, Hash(v), Key(0xa))
	expect.EQ(t, Hash(v).Vector(4), v)

	// Parent 1 labels map onto the same slots.
	v, err = Decode([][]byte{[]byte("6"), []byte("8")}, 1, 0, 4)
	expect.NoError(t, err)
	expect.EQ(t, Hash(v), Key(0x5))

	_, err = Decode([][]byte{[]byte("1x")}, 0, 1, 4)
	expect.True(t, err != nil)
	_, err = Decode([][]byte{[]byte("1")}, 0, 3, 4)
	expect.True(t, err != nil)

	// Each parent only carries its own labels.
	_, err = Decode([][]byte{[]byte("1"), []byte("6")}, 0, 0, 4)
	expect.True(t, err != nil)
	_, err = Decode([][]byte{[]byte("3")}, 1, 0, 4)
	expect.True(t, err != nil)
	_, err = Decode([][]byte{[]byte("3")}, 0, 0, 2)
	expect.True(t, err != nil)
}

func TestSwap(t *testing.T) {
	const ploidy = 6
	for k := Key(0); k < 1<<ploidy; k++ {
		v := k.Vector(ploidy)
		for i := 0; i+1 < ploidy; i++ {
			swapped := k.Swap(i, i+1, ploidy)
			expect.EQ(t, swapped, Hash(v.Swap(i, i+1)))
			expect.EQ(t, swapped.Swap(i, i+1, ploidy), k)
			// Only the two swapped bits may differ.
			diff := swapped ^ k
			expect.True(t, diff == 0 || diff == Key(3)<<uint(ploidy-2-i))
		}
	}
}

func TestPack(t *testing.T) {
	expect.EQ(t, Pair(0x3, 0x1, 2), uint32(0xd))
	expect.EQ(t, Composite(0x1, 0x2, 0x3, 0x0, 2), uint64(0x6c))
	expect.EQ(t, Composite(0xffff, 0xffff, 0xffff, 0xffff, MaxPloidy), ^uint64(0))
}

func TestTranspositions(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			perm := make([]int, n)
			for i := range perm {
				perm[i] = i
			}
			seen := map[string]bool{fmt.Sprint(perm): true}
			swaps := Transpositions(n)
			expect.EQ(t, len(swaps), Factorial(n)-1)
			for _, s := range swaps {
				expect.EQ(t, s.J, s.I+1)
				perm[s.I], perm[s.J] = perm[s.J], perm[s.I]
				key := fmt.Sprint(perm)
				expect.False(t, seen[key])
				seen[key] = true
			}
			expect.EQ(t, len(seen), Factorial(n))
		})
	}
}
