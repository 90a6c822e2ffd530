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

// Transposition swaps the haplotype slots I and J (J == I+1).
type Transposition struct {
	I, J int
}

// Factorial returns n!.
func Factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}

// Transpositions returns the Steinhaus-Johnson-Trotter sequence for n
// elements: n!-1 adjacent transpositions which, applied one after another to
// the identity, visit every permutation of n elements exactly once.
func Transpositions(n int) []Transposition {
	perm := make([]int, n)
	// dir is indexed by element value; -1 is left, +1 is right.
	dir := make([]int, n)
	for i := range perm {
		perm[i] = i
		dir[i] = -1
	}
	out := make([]Transposition, 0, Factorial(n)-1)
	for {
		// Find the largest mobile element: one whose neighbour in its
		// direction exists and is smaller.
		mobile := -1
		for i, v := range perm {
			j := i + dir[v]
			if j < 0 || j >= n || perm[j] > v {
				continue
			}
			if mobile < 0 || v > perm[mobile] {
				mobile = i
			}
		}
		if mobile < 0 {
			return out
		}
		v := perm[mobile]
		j := mobile + dir[v]
		perm[mobile], perm[j] = perm[j], perm[mobile]
		out = append(out, Transposition{I: min(mobile, j), J: max(mobile, j)})
		for w := v + 1; w < n; w++ {
			dir[w] = -dir[w]
		}
	}
}
