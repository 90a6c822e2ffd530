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
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestFraction(t *testing.T) {
	f, err := CheckFit(Fraction, []int{5, 5, 5, 5}, 2)
	assert.NoError(t, err)
	expect.True(t, f.Keep)
	expect.EQ(t, f.MAF, 1.0)
	expect.EQ(t, f.MIF, 1.0)

	f, err = CheckFit(Fraction, []int{10, 1, 5, 4}, 2)
	assert.NoError(t, err)
	expect.False(t, f.Keep)
	expect.EQ(t, f.MAF, 2.0)
	expect.EQ(t, f.MIF, 0.2)

	// phi and 1/phi describe the same interval.
	for _, phi := range []float64{2, 0.5} {
		f, err = CheckFit(Fraction, []int{8, 4, 4, 4}, phi)
		assert.NoError(t, err)
		expect.True(t, f.Keep, "phi %v", phi)
	}

	// A label that never occurs is always rejected.
	f, err = CheckFit(Fraction, []int{0, 4, 4, 4}, 2)
	assert.NoError(t, err)
	expect.False(t, f.Keep)
	expect.EQ(t, f.MIF, 0.0)

	f, err = CheckFit(Fraction, []int{0, 0, 0, 0}, 2)
	assert.NoError(t, err)
	expect.False(t, f.Keep)
}

func TestPValueFits(t *testing.T) {
	for _, method := range []string{ChiSq, GTest} {
		f, err := CheckFit(method, []int{50, 50, 50, 50}, 0.05)
		assert.NoError(t, err)
		expect.True(t, f.Keep, method)
		expect.EQ(t, f.Stat, 0.0, method)
		expect.EQ(t, f.P, 1.0, method)

		f, err = CheckFit(method, []int{100, 0, 100, 0}, 0.05)
		assert.NoError(t, err)
		expect.False(t, f.Keep, method)
		expect.True(t, f.P < 1e-6, method)
	}
	_, err := CheckFit("bogus", []int{1, 1}, 0.05)
	expect.True(t, err != nil)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultOpts.Validate())
	opts := DefaultOpts
	opts.BestN = 0
	expect.True(t, opts.Validate() != nil)
	opts = DefaultOpts
	opts.GoodnessOfFit = "kstest"
	expect.True(t, opts.Validate() != nil)
}
