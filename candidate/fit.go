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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fit is the outcome of a haplotype-frequency goodness-of-fit test.
type Fit struct {
	// MAF and MIF are the largest and smallest label counts relative to the
	// expected count.  Only set by the fraction test.
	MAF, MIF float64
	// Stat is the test statistic and P its p-value.  Only set by chisq and
	// gtest.
	Stat, P float64
	// Keep is false if the trial's haplotype frequencies are too skewed.
	Keep bool
}

func (f Fit) String() string {
	verdict := "keep"
	if !f.Keep {
		verdict = "drop"
	}
	if f.Stat != 0 || f.P != 0 {
		return fmt.Sprintf("[%s](stat,%.3f;p,%.3g)", verdict, f.Stat, f.P)
	}
	return fmt.Sprintf("[%s](maf,%.3f;mif,%.3f)", verdict, f.MAF, f.MIF)
}

// CheckFit tests whether the founder-haplotype label counts are consistent with
// every label being equally frequent.
func CheckFit(method string, counts []int, phi float64) (Fit, error) {
	observed := make([]float64, len(counts))
	for i, c := range counts {
		observed[i] = float64(c)
	}
	total := floats.Sum(observed)
	if len(observed) == 0 || total == 0 {
		return Fit{}, nil
	}
	e := total / float64(len(observed))
	expected := make([]float64, len(observed))
	for i := range expected {
		expected[i] = e
	}
	switch method {
	case Fraction:
		lo, hi := phi, 1/phi
		if lo > hi {
			lo, hi = hi, lo
		}
		f := Fit{MAF: floats.Max(observed) / e, MIF: floats.Min(observed) / e}
		f.Keep = f.MAF <= hi && f.MIF >= lo
		return f, nil
	case ChiSq:
		x := stat.ChiSquare(observed, expected)
		return pValueFit(x, len(observed), phi), nil
	case GTest:
		var g float64
		for i, o := range observed {
			if o > 0 {
				g += o * math.Log(o/expected[i])
			}
		}
		return pValueFit(2*g, len(observed), phi), nil
	}
	return Fit{}, fmt.Errorf("candidate: unknown goodness-of-fit method %q", method)
}

func pValueFit(x float64, k int, alpha float64) Fit {
	p := distuv.ChiSquared{K: float64(k - 1)}.Survival(x)
	return Fit{Stat: x, P: p, Keep: !(p < alpha)}
}
