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

package rf

import (
	"strconv"

	"github.com/c-zhou/polymap/phasecode"
	"github.com/grailbio/base/errors"
)

// MaxPloidy is the largest ploidy NewEngine accepts.  Each candidate pairing
// walks P! relabellings per parent, which is already 3.6 million at P=10.
const MaxPloidy = 10

// Engine computes label-invariant RFs between candidates.  It is safe for
// concurrent use; the Table is shared read-only and the Memo is concurrent.
type Engine struct {
	ploidy int
	table  *Table
	memo   *Memo
	swaps  []phasecode.Transposition
}

// NewEngine creates an engine for the given (even) ploidy.
func NewEngine(ploidy int) (*Engine, error) {
	if ploidy < 2 || ploidy%2 != 0 || ploidy > MaxPloidy {
		return nil, errors.E(errors.Invalid, "ploidy must be even and in [2,"+strconv.Itoa(MaxPloidy)+"], got", strconv.Itoa(ploidy))
	}
	return &Engine{
		ploidy: ploidy,
		table:  NewTable(ploidy),
		memo:   NewMemo(),
		swaps:  phasecode.Transpositions(ploidy),
	}, nil
}

// Table returns the engine's intersection table.
func (e *Engine) Table() *Table { return e.table }

// MemoSize returns the approximate number of memoized composite keys.
func (e *Engine) MemoSize() int { return e.memo.ApproxSize() }

// counts returns the four endpoint intersection counts of one individual.
func (e *Engine) counts(is, ie, js, je phasecode.Key) [4]uint8 {
	key := phasecode.Composite(is, ie, js, je, e.ploidy)
	if v, ok := e.memo.Get(key); ok {
		return v
	}
	return e.memo.PutIfAbsent(key, [4]uint8{
		e.table.Count(is, js),
		e.table.Count(is, je),
		e.table.Count(ie, js),
		e.table.Count(ie, je),
	})
}

// sideCounts returns, for one parent side, the element-wise maximum over all
// relabellings of b's haplotypes of the summed intersection counts.
func (e *Engine) sideCounts(a, b *Phase, side int) [4]int {
	is, ie := a.Keys(side, StartEndpoint), a.Keys(side, EndEndpoint)
	js := append([]phasecode.Key(nil), b.Keys(side, StartEndpoint)...)
	je := append([]phasecode.Key(nil), b.Keys(side, EndEndpoint)...)

	var best [4]int
	for perm := 0; ; perm++ {
		var sum [4]int
		for n := range is {
			c := e.counts(is[n], ie[n], js[n], je[n])
			for k := range sum {
				sum[k] += int(c[k])
			}
		}
		for k := range best {
			if perm == 0 || sum[k] > best[k] {
				best[k] = sum[k]
			}
		}
		if perm == len(e.swaps) {
			break
		}
		t := e.swaps[perm]
		for n := range js {
			js[n] = js[n].Swap(t.I, t.J, e.ploidy)
			je[n] = je[n].Swap(t.I, t.J, e.ploidy)
		}
	}
	return best
}

// RF returns the recombination frequency of a and b in each orientation.
func (e *Engine) RF(a, b *Phase) ([NumOrientations]float64, error) {
	var rf [NumOrientations]float64
	if a.NumIndividuals() != b.NumIndividuals() {
		return rf, errors.E(errors.Invalid, "candidates phase", strconv.Itoa(a.NumIndividuals()), "and",
			strconv.Itoa(b.NumIndividuals()), "individuals")
	}
	if a.Ploidy() != e.ploidy || b.Ploidy() != e.ploidy {
		return rf, errors.E(errors.Invalid, "candidate ploidy does not match engine ploidy", strconv.Itoa(e.ploidy))
	}
	n := a.NumIndividuals()
	if n == 0 {
		return rf, errors.E(errors.Invalid, "candidates have no individuals")
	}
	c0 := e.sideCounts(a, b, 0)
	c1 := e.sideCounts(a, b, 1)
	total := float64(n * e.ploidy)
	for k := range rf {
		rf[k] = 1 - float64(c0[k]+c1[k])/total
	}
	return rf, nil
}

// PairRF computes the RF of every pairing of a candidate of scaffold i with a
// candidate of scaffold j, and reduces them to the per-orientation and
// overall minima.
func (e *Engine) PairRF(ci, cj []*Phase) (*PairResult, error) {
	if len(ci) == 0 || len(cj) == 0 {
		return nil, errors.E(errors.Invalid, "no candidates to pair")
	}
	r := newPairResult(len(ci) * len(cj))
	for a, pa := range ci {
		for b, pb := range cj {
			rf, err := e.RF(pa, pb)
			if err != nil {
				return nil, err
			}
			for k, v := range rf {
				r.set(k, a*len(cj)+b, v)
			}
		}
	}
	r.reduce()
	return r, nil
}
