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

package rf_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/c-zhou/polymap/phase"
	"github.com/c-zhou/polymap/phasecode"
	"github.com/c-zhou/polymap/rf"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// newStates builds phased states from per-individual haplotype strings, ploidy
// strings per individual.
func newStates(ploidy int, haps ...string) *phase.States {
	s := &phase.States{Ploidy: ploidy, NumMarkers: len(haps[0])}
	for i, h := range haps {
		if i%ploidy == 0 {
			s.Samples = append(s.Samples, "s"+string(rune('a'+i/ploidy)))
		}
		s.Haplotypes = append(s.Haplotypes, []byte(h))
	}
	return s
}

func newPhase(t *testing.T, s *phase.States, start, end int) *rf.Phase {
	p, err := rf.NewPhase(s, start, end)
	require.NoError(t, err)
	return p
}

func TestTable(t *testing.T) {
	for _, test := range []struct {
		ploidy, keys int
	}{{2, 2}, {4, 6}, {6, 20}, {8, 70}} {
		table := rf.NewTable(test.ploidy)
		expect.EQ(t, len(table.Keys()), test.keys)
		expect.EQ(t, table.Len(), test.keys*test.keys)
		for _, a := range table.Keys() {
			expect.EQ(t, table.Count(a, a), uint8(test.ploidy/2))
			for _, b := range table.Keys() {
				c := table.Count(a, b)
				expect.True(t, int(c) <= test.ploidy/2)
				expect.EQ(t, c, table.Count(b, a))
			}
		}
	}
	// Unbalanced keys are counted directly.
	table := rf.NewTable(4)
	expect.EQ(t, table.Count(0xe, 0x6), uint8(2))
	expect.EQ(t, table.Count(0x8, 0x7), uint8(0))
}

func TestMemo(t *testing.T) {
	m := rf.NewMemo()
	_, ok := m.Get(42)
	expect.False(t, ok)
	expect.EQ(t, m.PutIfAbsent(42, [4]uint8{1, 2, 3, 4}), [4]uint8{1, 2, 3, 4})
	expect.EQ(t, m.PutIfAbsent(42, [4]uint8{9, 9, 9, 9}), [4]uint8{1, 2, 3, 4})
	v, ok := m.Get(42)
	expect.True(t, ok)
	expect.EQ(t, v, [4]uint8{1, 2, 3, 4})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := uint64(0); k < 1000; k++ {
				got := m.PutIfAbsent(k<<20, [4]uint8{uint8(k), 0, 0, 0})
				if got != [4]uint8{uint8(k), 0, 0, 0} {
					t.Errorf("key %d: got %v", k, got)
				}
			}
		}()
	}
	wg.Wait()
	expect.EQ(t, m.ApproxSize(), 1001)
}

func TestRFRelabelling(t *testing.T) {
	e, err := rf.NewEngine(2)
	require.NoError(t, err)

	i := newPhase(t, newStates(2, "11", "33", "11", "33", "22", "44"), 0, 1)
	j := newPhase(t, newStates(2, "11", "33", "22", "33", "11", "44"), 0, 1)
	// i relabelled consistently: 1<->2, 3<->4.
	k := newPhase(t, newStates(2, "22", "44", "22", "44", "11", "33"), 0, 1)

	r, err := e.RF(i, j)
	assert.NoError(t, err)
	for o := range r {
		require.InDelta(t, 1.0/6, r[o], 1e-12)
	}
	r, err = e.RF(i, k)
	assert.NoError(t, err)
	expect.EQ(t, r, [4]float64{0, 0, 0, 0})

	res, err := e.PairRF([]*rf.Phase{j, k}, []*rf.Phase{i})
	assert.NoError(t, err)
	expect.EQ(t, res.Pairings(), 2)
	require.InDelta(t, 1.0/6, res.At(0, 0), 1e-12)
	expect.EQ(t, res.At(3, 1), 0.0)
	expect.EQ(t, res.RF, [4]float64{0, 0, 0, 0})
	expect.EQ(t, res.Min, 0.0)

	_, err = e.PairRF(nil, []*rf.Phase{i})
	expect.True(t, err != nil)

	short := newPhase(t, newStates(2, "11", "33"), 0, 1)
	_, err = e.RF(i, short)
	expect.True(t, err != nil)
}

// randomStates returns states for n individuals and m markers in which every
// individual carries ploidy/2 distinct haplotypes of each parent.
func randomStates(r *rand.Rand, ploidy, n, m int) *phase.States {
	var haps []string
	for i := 0; i < n; i++ {
		lines := make([][]byte, ploidy)
		for l := range lines {
			lines[l] = make([]byte, m)
		}
		for marker := 0; marker < m; marker++ {
			for side := 0; side < 2; side++ {
				perm := r.Perm(ploidy)
				for c := 0; c < ploidy/2; c++ {
					lines[side*ploidy/2+c][marker] = phasecode.LabelChar(side*ploidy + perm[c] + 1)
				}
			}
		}
		for _, l := range lines {
			haps = append(haps, string(l))
		}
	}
	return newStates(ploidy, haps...)
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for pos := 0; pos <= len(p); pos++ {
			q := append(append(append([]int(nil), p[:pos]...), n-1), p[pos:]...)
			out = append(out, q)
		}
	}
	return out
}

// bruteForceRF relabels b's haplotypes with every permutation, independently
// per parent, without keys, tables or memoization.
func bruteForceRF(a, b *phase.States, aEnds, bEnds [2]int) [4]float64 {
	ploidy := a.Ploidy
	n := a.NumIndividuals()
	var total [4]int
	for side := 0; side < 2; side++ {
		var best [4]int
		for pi, perm := range permutations(ploidy) {
			var sum [4]int
			for ind := 0; ind < n; ind++ {
				for ea := 0; ea < 2; ea++ {
					for eb := 0; eb < 2; eb++ {
						va, _ := phasecode.Decode(a.Copies(ind, side), side, aEnds[ea], ploidy)
						vb, _ := phasecode.Decode(b.Copies(ind, side), side, bEnds[eb], ploidy)
						for s := 0; s < ploidy; s++ {
							if vb[s] && va[perm[s]] {
								sum[ea*2+eb]++
							}
						}
					}
				}
			}
			for k := range best {
				if pi == 0 || sum[k] > best[k] {
					best[k] = sum[k]
				}
			}
		}
		for k := range total {
			total[k] += best[k]
		}
	}
	var out [4]float64
	for k := range out {
		out[k] = 1 - float64(total[k])/float64(n*ploidy)
	}
	return out
}

func TestRFMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, ploidy := range []int{2, 4, 6} {
		e, err := rf.NewEngine(ploidy)
		require.NoError(t, err)
		for iter := 0; iter < 5; iter++ {
			a := randomStates(r, ploidy, 12, 6)
			b := randomStates(r, ploidy, 12, 4)
			pa := newPhase(t, a, 0, 5)
			pb := newPhase(t, b, 3, 0)
			got, err := e.RF(pa, pb)
			require.NoError(t, err)
			want := bruteForceRF(a, b, [2]int{0, 5}, [2]int{3, 0})
			for k := range got {
				require.InDelta(t, want[k], got[k], 1e-12, "ploidy %d iter %d orientation %d", ploidy, iter, k)
				expect.True(t, got[k] >= 0 && got[k] <= 1)
			}

			// Swapping the scaffolds swaps the mixed orientations.
			rev, err := e.RF(pb, pa)
			require.NoError(t, err)
			expect.EQ(t, rev, [4]float64{got[0], got[2], got[1], got[3]})

			// Memoized results are stable.
			again, err := e.RF(pa, pb)
			require.NoError(t, err)
			expect.EQ(t, again, got)

			self, err := e.RF(pa, pa)
			require.NoError(t, err)
			expect.EQ(t, self[0], 0.0)
			expect.EQ(t, self[3], 0.0)
		}
		expect.True(t, e.MemoSize() > 0)
	}
}

func TestNewEngine(t *testing.T) {
	for _, ploidy := range []int{0, 3, 12, 16, 18} {
		_, err := rf.NewEngine(ploidy)
		expect.True(t, err != nil, "ploidy %d", ploidy)
	}
}

func TestNewPhaseOutOfRange(t *testing.T) {
	_, err := rf.NewPhase(newStates(2, "11", "33"), 0, 2)
	expect.True(t, err != nil)
	_, err = rf.NewPhase(newStates(2, "01", "33"), 0, 1)
	expect.True(t, err != nil)
	// Parent 1's label on a parent 0 copy.
	_, err = rf.NewPhase(newStates(2, "31", "33"), 0, 1)
	expect.True(t, errors.Is(errors.Invalid, err), "%v", err)
}
