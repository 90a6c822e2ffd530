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

// Package phasetest writes synthetic trial archives for tests.
package phasetest

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// Sample is one individual of a phased-state file.
type Sample struct {
	Name string
	// Haplotypes holds one state string per haplotype copy.
	Haplotypes []string
}

// Trial describes one synthetic trial archive.
type Trial struct {
	// Name is the archive name; it should start with the experiment id.
	Name         string
	ExperimentID string
	// Markers is written as the marker list.  If empty, the archive has no
	// marker list.
	Markers []string
	// LogLik is written as the first line of the phased-state file.
	LogLik float64
	// SolverLogLik, if non-empty, is written as the solver trace's final "log"
	// line.
	SolverLogLik string
	// NoStates omits the phased-state file.
	NoStates bool
	Founders []Sample
	Samples  []Sample
	// Zip writes a zip archive instead of a directory.
	Zip bool
}

func (t Trial) entries() map[string][]byte {
	e := map[string][]byte{}
	if len(t.Markers) > 0 {
		var b bytes.Buffer
		for i, m := range t.Markers {
			fmt.Fprintf(&b, "chr0\t%d\tA/T\t%s\n", i, m)
		}
		e["snp_"+t.ExperimentID+".txt"] = b.Bytes()
	}
	if !t.NoStates {
		var b bytes.Buffer
		fmt.Fprintf(&b, "%g\n", t.LogLik)
		nMarkers := 0
		if len(t.Samples) > 0 {
			nMarkers = len(t.Samples[0].Haplotypes[0])
		}
		fmt.Fprintf(&b, "%d\n", nMarkers)
		idx := 0
		for _, samples := range [][]Sample{t.Founders, t.Samples} {
			for _, s := range samples {
				for c, h := range s.Haplotypes {
					fmt.Fprintf(&b, "# %d %s:%d\t%s\n", idx, s.Name, c+1, h)
				}
				idx++
			}
		}
		e["phasedStates/"+t.ExperimentID+".txt"] = b.Bytes()
	}
	if t.SolverLogLik != "" {
		e["stderr_true"] = []byte("iteration 1\nlog probability = " + t.SolverLogLik + "\n")
	}
	return e
}

// Write creates the archive in dir and returns its path.
func Write(tb testing.TB, dir string, t Trial) string {
	path := filepath.Join(dir, t.Name)
	entries := t.entries()
	if !t.Zip {
		for name, data := range entries {
			p := filepath.Join(path, name)
			require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0755))
			require.NoError(tb, ioutil.WriteFile(p, data, 0644))
		}
		return path
	}
	f, err := os.Create(path)
	require.NoError(tb, err)
	w := zip.NewWriter(f)
	for name, data := range entries {
		out, err := w.Create(name)
		require.NoError(tb, err)
		_, err = out.Write(data)
		require.NoError(tb, err)
	}
	require.NoError(tb, w.Close())
	require.NoError(tb, f.Close())
	return path
}

// Haplotypes splits space-separated state strings, for compact literals.
func Haplotypes(s string) []string { return strings.Fields(s) }
