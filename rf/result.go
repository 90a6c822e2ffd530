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
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// NumOrientations is the number of endpoint pairings between two scaffolds.
// Orientation k pairs endpoint k/2 of the first scaffold with endpoint k%2 of
// the second: start-start, start-end, end-start, end-end.
const NumOrientations = 4

// PairResult holds the RFs of every candidate pairing of two scaffolds.
type PairResult struct {
	// nRow is NumOrientations and nCol the number of candidate pairings.
	nRow, nCol int
	data       []float64 // row-major nRow*nCol array.

	// RF is the minimum of each orientation over all candidate pairings.
	RF [NumOrientations]float64
	// Min is the minimum over RF.
	Min float64
}

func newPairResult(pairings int) *PairResult {
	return &PairResult{
		nRow: NumOrientations,
		nCol: pairings,
		data: make([]float64, NumOrientations*pairings),
	}
}

// Pairings returns the number of candidate pairings.
func (r *PairResult) Pairings() int { return r.nCol }

// At returns the RF of orientation k for candidate pairing c.
func (r *PairResult) At(k, c int) float64 { return r.data[k*r.nCol+c] }

func (r *PairResult) set(k, c int, v float64) { r.data[k*r.nCol+c] = v }

// reduce fills RF and Min.
func (r *PairResult) reduce() {
	for k := 0; k < r.nRow; k++ {
		r.RF[k] = floats.Min(r.data[k*r.nCol : (k+1)*r.nCol])
	}
	r.Min = floats.Min(r.RF[:])
}

// String returns a string representation of the per-pairing matrix.
func (r *PairResult) String() string {
	lines := []string{"\n"}
	for k := 0; k < r.nRow; k++ {
		var parts []string
		for c := 0; c < r.nCol; c++ {
			parts = append(parts, strconv.FormatFloat(r.At(k, c), 'f', 3, 64))
		}
		lines = append(lines, fmt.Sprintf("%s\n", strings.Join(parts, " ")))
	}
	return strings.Join(lines, "")
}
