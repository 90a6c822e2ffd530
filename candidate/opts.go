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

package candidate

import (
	"fmt"
)

// Goodness-of-fit methods accepted by Opts.GoodnessOfFit.
const (
	Fraction = "fraction"
	ChiSq    = "chisq"
	GTest    = "gtest"
)

// Opts controls candidate selection.
type Opts struct {
	// BestN caps the number of candidates kept per scaffold.
	BestN int
	// SkewPhi is the haplotype-skew tolerance.  For the fraction test it bounds
	// the ratio of the most and least frequent label counts to their expected
	// value.  For chisq and gtest it is the p-value below which a trial is
	// rejected.
	SkewPhi float64
	// DropThres is the minimum number of trials that must pass the
	// goodness-of-fit test for a scaffold to be kept.
	DropThres int
	// GoodnessOfFit is one of Fraction, ChiSq, GTest.
	GoodnessOfFit string
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	BestN:         10,       // -nb
	SkewPhi:       2,        // -phi
	DropThres:     1,        // -nd
	GoodnessOfFit: Fraction, // -gof
}

// Validate checks opts for out-of-range values.
func (opts Opts) Validate() error {
	if opts.BestN <= 0 {
		return fmt.Errorf("candidate: best-n must be positive, got %d", opts.BestN)
	}
	if opts.DropThres < 0 {
		return fmt.Errorf("candidate: drop threshold must not be negative, got %d", opts.DropThres)
	}
	if !(opts.SkewPhi > 0) {
		return fmt.Errorf("candidate: skew phi must be positive, got %v", opts.SkewPhi)
	}
	switch opts.GoodnessOfFit {
	case Fraction, ChiSq, GTest:
	default:
		return fmt.Errorf("candidate: goodness-of-fit should be %s, %s or %s, got %q", Fraction, ChiSq, GTest, opts.GoodnessOfFit)
	}
	return nil
}
