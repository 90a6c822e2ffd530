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
	"math"
	"strings"
)

// MapFunc converts a recombination fraction to a genetic distance in Morgans.
type MapFunc func(r float64) float64

// Kosambi is the Kosambi mapping function.  Fractions >= 0.5 map to +Inf.
func Kosambi(r float64) float64 {
	if r >= 0.5 {
		return math.Inf(1)
	}
	return 0.25 * math.Log((1+2*r)/(1-2*r))
}

// Haldane is the Haldane mapping function.  Fractions >= 0.5 map to +Inf.
func Haldane(r float64) float64 {
	if r >= 0.5 {
		return math.Inf(1)
	}
	return -0.5 * math.Log(1-2*r)
}

// ParseMapFunc returns the mapping function called name ("kosambi" or
// "haldane", case-insensitive).
func ParseMapFunc(name string) (MapFunc, error) {
	switch strings.ToLower(name) {
	case "kosambi":
		return Kosambi, nil
	case "haldane":
		return Haldane, nil
	}
	return nil, fmt.Errorf("rf: undefined genetic mapping function %q", name)
}
