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

	"github.com/c-zhou/polymap/phase"
	"github.com/grailbio/base/errors"
)

// Distances returns, for each pair of adjacent markers of a scaffold, the
// fraction of haplotype lines whose label changes between them.  start and
// end are the offsets of the scaffold's physically first and last marker;
// the walk follows the scaffold's own orientation, so the result always runs
// from the physically first marker.
func Distances(states *phase.States, start, end int) ([]float64, error) {
	if start < 0 || start >= states.NumMarkers || end < 0 || end >= states.NumMarkers {
		return nil, errors.E(errors.Invalid, "scaffold ends", strconv.Itoa(start), strconv.Itoa(end),
			"outside", strconv.Itoa(states.NumMarkers), "phased markers")
	}
	step := 1
	if start > end {
		step = -1
	}
	n := len(states.Haplotypes)
	d := make([]float64, 0, (end-start)*step)
	for i := start; i != end; i += step {
		if n == 0 {
			d = append(d, 0)
			continue
		}
		changed := 0
		for _, h := range states.Haplotypes {
			if h[i] != h[i+step] {
				changed++
			}
		}
		d = append(d, float64(changed)/float64(n))
	}
	return d, nil
}
