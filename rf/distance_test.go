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
	"math"
	"testing"

	"github.com/c-zhou/polymap/rf"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestDistances(t *testing.T) {
	s := newStates(2, "1112", "3334", "1111", "3333")
	d, err := rf.Distances(s, 0, 3)
	assert.NoError(t, err)
	expect.EQ(t, d, []float64{0, 0, 0.5})

	d, err = rf.Distances(s, 3, 0)
	assert.NoError(t, err)
	expect.EQ(t, d, []float64{0.5, 0, 0})

	d, err = rf.Distances(s, 2, 2)
	assert.NoError(t, err)
	expect.EQ(t, len(d), 0)

	_, err = rf.Distances(s, 0, 4)
	expect.True(t, err != nil)
}

func TestMapFunc(t *testing.T) {
	expect.EQ(t, rf.Kosambi(0), 0.0)
	expect.EQ(t, rf.Haldane(0), 0.0)
	require.InDelta(t, 0.101366, rf.Kosambi(0.1), 1e-6)
	require.InDelta(t, 0.111572, rf.Haldane(0.1), 1e-6)
	expect.True(t, math.IsInf(rf.Kosambi(0.5), 1))
	expect.True(t, math.IsInf(rf.Haldane(0.7), 1))

	f, err := rf.ParseMapFunc("Haldane")
	assert.NoError(t, err)
	expect.EQ(t, f(0.2), rf.Haldane(0.2))
	_, err = rf.ParseMapFunc("morgan")
	expect.True(t, err != nil)
}
