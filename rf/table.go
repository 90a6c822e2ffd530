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

// Package rf estimates recombination frequencies between scaffolds from
// phased haplotype states.
//
// The founder haplotype labels assigned by independent phasing trials are
// arbitrary, so the engine compares two candidates under every relabelling of
// one parent's haplotypes and keeps the best agreement.  Agreement between
// two membership Keys is the number of haplotypes they share; the Table
// precomputes it for every pair of balanced keys and the Memo caches the
// four endpoint counts of every composite key seen so far.
package rf

import (
	"math/bits"

	"github.com/c-zhou/polymap/phasecode"
	"gonum.org/v1/gonum/stat/combin"
)

// Table maps a pair of Keys, each with exactly ploidy/2 bits set, to the size
// of the intersection of the haplotype sets they encode.  It is read-only
// after construction.
type Table struct {
	ploidy int
	keys   []phasecode.Key
	counts map[uint32]uint8
}

// NewTable enumerates all C(ploidy, ploidy/2) balanced keys and their
// pairwise intersections.
func NewTable(ploidy int) *Table {
	combs := combin.Combinations(ploidy, ploidy/2)
	t := &Table{
		ploidy: ploidy,
		keys:   make([]phasecode.Key, len(combs)),
		counts: make(map[uint32]uint8, len(combs)*len(combs)),
	}
	for i, comb := range combs {
		v := make(phasecode.Vector, ploidy)
		for _, slot := range comb {
			v[slot] = true
		}
		t.keys[i] = phasecode.Hash(v)
	}
	for _, a := range t.keys {
		for _, b := range t.keys {
			t.counts[phasecode.Pair(a, b, ploidy)] = uint8(bits.OnesCount32(uint32(a & b)))
		}
	}
	return t
}

// Ploidy returns the ploidy the table was built for.
func (t *Table) Ploidy() int { return t.ploidy }

// Keys returns the balanced keys in enumeration order.
func (t *Table) Keys() []phasecode.Key { return t.keys }

// Len returns the number of entries, C(ploidy, ploidy/2)^2.
func (t *Table) Len() int { return len(t.counts) }

// Count returns the number of haplotypes a and b share.  Keys outside the
// table, which arise when a phasing trial assigns the same founder haplotype
// twice, are counted directly.
func (t *Table) Count(a, b phasecode.Key) uint8 {
	if c, ok := t.counts[phasecode.Pair(a, b, t.ploidy)]; ok {
		return c
	}
	return uint8(bits.OnesCount32(uint32(a & b)))
}
