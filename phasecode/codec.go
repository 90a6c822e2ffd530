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
)

// MaxPloidy is the largest ploidy whose composite key (four keys of ploidy
// bits each) fits in a uint64.
const MaxPloidy = 16

// Key is a bit-packed Vector. See the package comment for the bit layout.
type Key uint32

// Vector marks, for each haplotype slot of one parent, whether an individual
// carries that haplotype at a given marker.
type Vector []bool

// LabelChar returns the state-string character of the 1-based haplotype
// label: '1'..'9' and then 'a', 'b', ... for labels >= 10.
func LabelChar(label int) byte {
	if label < 10 {
		return byte('0' + label)
	}
	return byte('a' + label - 10)
}

// LabelIndex returns the 0-based global haplotype label of a state-string
// character, so that '1' maps to 0 and 'a' maps to 9.
func LabelIndex(c byte) (int, bool) {
	switch {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 9, true
	}
	return -1, false
}

// Slot returns the parent side (0 or 1) that owns the haplotype label c, and
// the label's slot within that parent's alphabet. Parent 0 owns labels 1..P,
// parent 1 owns labels P+1..2P.
func Slot(c byte, ploidy int) (side, slot int, ok bool) {
	l, ok := LabelIndex(c)
	if !ok || l >= 2*ploidy {
		return 0, 0, false
	}
	return l / ploidy, l % ploidy, true
}

// Decode builds the Vector of one parent side from that side's haplotype
// copies (one state string per copy) at the given marker offset.  Labels
// owned by the other parent are rejected.
func Decode(copies [][]byte, side, offset, ploidy int) (Vector, error) {
	v := make(Vector, ploidy)
	for _, states := range copies {
		if offset < 0 || offset >= len(states) {
			return nil, fmt.Errorf("phasecode.Decode: marker offset %d out of range [0,%d)", offset, len(states))
		}
		s, slot, ok := Slot(states[offset], ploidy)
		if !ok {
			return nil, fmt.Errorf("phasecode.Decode: invalid haplotype label %q for ploidy %d", states[offset], ploidy)
		}
		if s != side {
			return nil, fmt.Errorf("phasecode.Decode: haplotype label %q belongs to parent %d, not %d", states[offset], s+1, side+1)
		}
		v[slot] = true
	}
	return v, nil
}

// Hash packs v into a Key.
func Hash(v Vector) Key {
	var key Key
	for _, b := range v {
		key <<= 1
		if b {
			key |= 1
		}
	}
	return key
}

// Swap returns a copy of v with slots i and j exchanged.
func (v Vector) Swap(i, j int) Vector {
	w := make(Vector, len(v))
	copy(w, v)
	w[i], w[j] = w[j], w[i]
	return w
}

// Has reports whether slot is set in k.
func (k Key) Has(slot, ploidy int) bool {
	return k&(1<<uint(ploidy-1-slot)) != 0
}

// Swap exchanges slots i and j of k. It is equivalent to Hash(v.Swap(i, j))
// for the Vector v that k encodes, without unpacking.
func (k Key) Swap(i, j, ploidy int) Key {
	bi := uint(ploidy - 1 - i)
	bj := uint(ploidy - 1 - j)
	if (k>>bi)&1 == (k>>bj)&1 {
		return k
	}
	return k ^ (1<<bi | 1<<bj)
}

// Vector unpacks k.
func (k Key) Vector(ploidy int) Vector {
	v := make(Vector, ploidy)
	for s := range v {
		v[s] = k.Has(s, ploidy)
	}
	return v
}

// Pair concatenates two keys: a occupies the high ploidy bits.
func Pair(a, b Key, ploidy int) uint32 {
	return uint32(a)<<uint(ploidy) | uint32(b)
}

// Composite concatenates four keys into one memo key, a in the highest bits.
func Composite(a, b, c, d Key, ploidy int) uint64 {
	s := uint(ploidy)
	return ((uint64(a)<<s|uint64(b))<<s|uint64(c))<<s | uint64(d)
}
