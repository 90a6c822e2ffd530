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

package phase

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// Trial is one phasing run restricted to a single scaffold.
type Trial struct {
	// Path is the trial archive.
	Path string
	// Scaffold is the scaffold this record covers.
	Scaffold string
	// Markers are the scaffold's marker ids in the order the trial phased them.
	Markers []string
	// Start and End are the offsets, in the trial's global marker numbering, of
	// the scaffold's physically first and last marker.  Start > End when the
	// trial phased the scaffold in descending physical order.
	Start, End int
}

// Name returns the archive's base name.
func (t *Trial) Name() string { return filepath.Base(t.Path) }

// Descending reports whether the scaffold runs backwards in the trial.
func (t *Trial) Descending() bool { return t.Start > t.End }

// Run is a maximal stretch of consecutive markers of one scaffold in a marker
// list.
type Run struct {
	Scaffold   string
	Markers    []string
	Start, End int
}

// ScaffoldOf strips the trailing "_<digits>" from a marker id.
func ScaffoldOf(marker string) string {
	i := len(marker)
	for i > 0 && marker[i-1] >= '0' && marker[i-1] <= '9' {
		i--
	}
	if i == len(marker) || i == 0 || marker[i-1] != '_' {
		return marker
	}
	return marker[:i-1]
}

// MarkerPosition returns the last run of digits in a marker id, which encodes
// the marker's physical position on its scaffold.
func MarkerPosition(marker string) (int, error) {
	end := len(marker)
	for end > 0 && (marker[end-1] < '0' || marker[end-1] > '9') {
		end--
	}
	start := end
	for start > 0 && marker[start-1] >= '0' && marker[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, errors.E(errors.Invalid, "marker", marker, "has no position")
	}
	return strconv.Atoi(marker[start:end])
}

// SplitRuns cuts a trial's marker list wherever the scaffold changes, and
// numbers each run's ends within the list.
func SplitRuns(markers []string) ([]Run, error) {
	var runs []Run
	for _, m := range markers {
		scaff := ScaffoldOf(m)
		if n := len(runs); n > 0 && runs[n-1].Scaffold == scaff {
			runs[n-1].Markers = append(runs[n-1].Markers, m)
			continue
		}
		runs = append(runs, Run{Scaffold: scaff, Markers: []string{m}})
	}
	offset := 0
	for i := range runs {
		r := &runs[i]
		descending := false
		if len(r.Markers) > 1 {
			s, err := MarkerPosition(r.Markers[0])
			if err != nil {
				return nil, err
			}
			e, err := MarkerPosition(r.Markers[1])
			if err != nil {
				return nil, err
			}
			descending = s > e
		}
		first, last := offset, offset+len(r.Markers)-1
		if descending {
			r.Start, r.End = last, first
		} else {
			r.Start, r.End = first, last
		}
		offset += len(r.Markers)
	}
	return runs, nil
}

// ReadMarkers reads the marker ids (column 4) of a marker list.
func ReadMarkers(r io.Reader) ([]string, error) {
	var (
		markers []string
		tokens  [4][]byte
	)
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := scanner.Bytes()
		n := getTokens(tokens[:], line, false)
		if n == 0 {
			continue
		}
		if n < len(tokens) {
			return nil, errors.E(errors.Invalid, "marker list line", strconv.Itoa(lineno), "has fewer than 4 columns")
		}
		markers = append(markers, string(tokens[3]))
	}
	return markers, scanner.Err()
}

// Index groups trials by scaffold.  It is safe for concurrent use.
type Index struct {
	// ExperimentID is the archive-name prefix and entry stem of the trials.
	ExperimentID string

	mu     sync.Mutex
	trials map[string][]*Trial
}

// NewIndex returns an empty index.
func NewIndex(exprID string) *Index {
	return &Index{ExperimentID: exprID, trials: make(map[string][]*Trial)}
}

// Add inserts t.
func (x *Index) Add(t *Trial) {
	x.mu.Lock()
	x.trials[t.Scaffold] = append(x.trials[t.Scaffold], t)
	x.mu.Unlock()
}

// Scaffolds lists the indexed scaffolds in lexical order.
func (x *Index) Scaffolds() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	names := make([]string, 0, len(x.trials))
	for s := range x.trials {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// Trials returns the trials of scaffold, ordered by archive name.
func (x *Index) Trials(scaffold string) []*Trial {
	x.mu.Lock()
	defer x.mu.Unlock()
	trials := append([]*Trial(nil), x.trials[scaffold]...)
	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Path < trials[j].Path })
	return trials
}

// IndexOpts controls BuildIndex.
type IndexOpts struct {
	// ExperimentID selects the trials to index.  If empty, it is guessed with
	// GuessExperimentID.
	ExperimentID string
	// Parallelism bounds the number of trial archives read concurrently.
	Parallelism int
}

// listTrials returns the base names in dir which start with prefix.
func listTrials(ctx context.Context, dir, prefix string) ([]string, error) {
	var names []string
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		name := filepath.Base(lister.Path())
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	if err := lister.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// GuessExperimentID returns the most common first dot-field among the entries
// of dir.
func GuessExperimentID(ctx context.Context, dir string) (string, error) {
	names, err := listTrials(ctx, dir, "")
	if err != nil {
		return "", err
	}
	counts := map[string]int{}
	best, bestCount := "", 0
	for _, name := range names {
		id := strings.SplitN(name, ".", 2)[0]
		counts[id]++
		if c := counts[id]; c > bestCount || (c == bestCount && id < best) {
			best, bestCount = id, c
		}
	}
	if best == "" {
		return "", errors.E(errors.NotExist, "no trial archives in", dir)
	}
	return best, nil
}

// BuildIndex scans dir for trial archives and indexes every scaffold run of
// every trial.  A trial without a readable marker list of its own is skipped
// with a warning.
func BuildIndex(ctx context.Context, dir string, opts IndexOpts) (*Index, error) {
	exprID := opts.ExperimentID
	if exprID == "" {
		var err error
		if exprID, err = GuessExperimentID(ctx, dir); err != nil {
			return nil, err
		}
		log.Error.Printf("no experiment id provided, guessed %q; set it explicitly if this is wrong", exprID)
	}
	names, err := listTrials(ctx, dir, exprID)
	if err != nil {
		return nil, err
	}
	index := NewIndex(exprID)
	if len(names) == 0 {
		return index, nil
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 || parallelism > len(names) {
		parallelism = len(names)
	}
	log.Printf("indexing %d trials under %s", len(names), dir)
	err = traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(names)) / parallelism
		endIdx := ((jobIdx + 1) * len(names)) / parallelism
		for _, name := range names[startIdx:endIdx] {
			path := filepath.Join(dir, name)
			runs, err := readRuns(ctx, path, exprID)
			if err != nil {
				if errors.Is(errors.NotExist, err) {
					log.Error.Printf("warning: skipping trial %s: %v", name, err)
					continue
				}
				return err
			}
			for _, r := range runs {
				index.Add(&Trial{
					Path:     path,
					Scaffold: r.Scaffold,
					Markers:  r.Markers,
					Start:    r.Start,
					End:      r.End,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// readRuns reads the marker list of the trial archive at path.
func readRuns(ctx context.Context, path, exprID string) ([]Run, error) {
	in, err := OpenEntry(ctx, path, exprID, MarkerList)
	if err != nil {
		return nil, err
	}
	markers, err := ReadMarkers(in)
	if e := in.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return nil, errors.E(err, path)
	}
	if len(markers) == 0 {
		return nil, errors.E(errors.NotExist, path, "has an empty marker list")
	}
	return SplitRuns(markers)
}
