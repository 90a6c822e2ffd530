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
	"github.com/c-zhou/polymap/phasecode"
	"github.com/grailbio/base/errors"
)

// Endpoints of a scaffold.
const (
	StartEndpoint = 0
	EndEndpoint   = 1
)

// Phase holds one candidate's membership keys at the two ends of its
// scaffold, for both parents and every non-founder individual.
type Phase struct {
	ploidy int
	n      int
	// keys[side][endpoint][individual]
	keys [2][2][]phasecode.Key
}

// NewPhase encodes the haplotype labels of states at marker offsets start
// and end (the scaffold's physically first and last marker).
func NewPhase(states *phase.States, start, end int) (*Phase, error) {
	if start < 0 || start >= states.NumMarkers || end < 0 || end >= states.NumMarkers {
		return nil, errors.E(errors.Invalid, "scaffold ends", strconv.Itoa(start), strconv.Itoa(end),
			"outside", strconv.Itoa(states.NumMarkers), "phased markers")
	}
	p := &Phase{ploidy: states.Ploidy, n: states.NumIndividuals()}
	offsets := [2]int{start, end}
	for side := 0; side < 2; side++ {
		for endpoint, offset := range offsets {
			keys := make([]phasecode.Key, p.n)
			for i := range keys {
				v, err := phasecode.Decode(states.Copies(i, side), side, offset, p.ploidy)
				if err != nil {
					return nil, errors.E(errors.Invalid, err, "individual", states.Samples[i])
				}
				keys[i] = phasecode.Hash(v)
			}
			p.keys[side][endpoint] = keys
		}
	}
	return p, nil
}

// NumIndividuals returns the number of non-founder individuals.
func (p *Phase) NumIndividuals() int { return p.n }

// Ploidy returns the ploidy of the phased population.
func (p *Phase) Ploidy() int { return p.ploidy }

// Keys returns the keys of every individual for one parent side at one
// endpoint.  The caller must not modify the slice.
func (p *Phase) Keys(side, endpoint int) []phasecode.Key { return p.keys[side][endpoint] }
