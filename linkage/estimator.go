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

// Package linkage drives the estimation of pairwise scaffold linkage: it
// indexes the trials, selects candidates, computes the RF matrix in parallel
// and writes intra-scaffold map distances.
package linkage

import (
	"context"
	"runtime"
	"sort"

	"github.com/c-zhou/polymap/candidate"
	"github.com/c-zhou/polymap/phase"
	"github.com/c-zhou/polymap/rf"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// candidateRef locates a candidate within a Set.
type candidateRef struct {
	scaffold, candidate int
}

// forEachTrial reads the phased states of every distinct trial archive used
// by a candidate of set, and calls fn with them and the candidates that use
// the archive.  Archives are read concurrently; each is read once.
func forEachTrial(ctx context.Context, set *candidate.Set, opts Opts, exprID string,
	fn func(states *phase.States, refs []candidateRef) error) error {
	byPath := map[string][]candidateRef{}
	for i, s := range set.Scaffolds() {
		for c, cand := range set.Candidates(s) {
			byPath[cand.Trial.Path] = append(byPath[cand.Trial.Path], candidateRef{i, c})
		}
	}
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	parallelism := opts.Parallelism
	if parallelism > len(paths) {
		parallelism = len(paths)
	}
	return traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(paths)) / parallelism
		endIdx := ((jobIdx + 1) * len(paths)) / parallelism
		for _, path := range paths[startIdx:endIdx] {
			states, err := phase.ReadStates(ctx, path, exprID, opts.Ploidy, opts.Founders)
			if err != nil {
				return err
			}
			if err := fn(states, byPath[path]); err != nil {
				return errors.E(err, path)
			}
		}
		return nil
	})
}

// loadPhases encodes the scaffold ends of every candidate.
func loadPhases(ctx context.Context, set *candidate.Set, opts Opts, exprID string) ([][]*rf.Phase, error) {
	scaffolds := set.Scaffolds()
	phases := make([][]*rf.Phase, len(scaffolds))
	for i, s := range scaffolds {
		phases[i] = make([]*rf.Phase, len(set.Candidates(s)))
	}
	err := forEachTrial(ctx, set, opts, exprID, func(states *phase.States, refs []candidateRef) error {
		for _, ref := range refs {
			t := set.Candidates(scaffolds[ref.scaffold])[ref.candidate].Trial
			p, err := rf.NewPhase(states, t.Start, t.End)
			if err != nil {
				return errors.E(err, "scaffold", t.Scaffold)
			}
			// Each slot is written by exactly one archive's job.
			phases[ref.scaffold][ref.candidate] = p
		}
		return nil
	})
	return phases, err
}

// loadDistances computes the adjacent-marker distances of every candidate.
func loadDistances(ctx context.Context, set *candidate.Set, opts Opts, exprID string) ([][][]float64, error) {
	scaffolds := set.Scaffolds()
	dists := make([][][]float64, len(scaffolds))
	for i, s := range scaffolds {
		dists[i] = make([][]float64, len(set.Candidates(s)))
	}
	err := forEachTrial(ctx, set, opts, exprID, func(states *phase.States, refs []candidateRef) error {
		for _, ref := range refs {
			t := set.Candidates(scaffolds[ref.scaffold])[ref.candidate].Trial
			d, err := rf.Distances(states, t.Start, t.End)
			if err != nil {
				return errors.E(err, "scaffold", t.Scaffold)
			}
			dists[ref.scaffold][ref.candidate] = d
		}
		return nil
	})
	return dists, err
}

// Estimate runs the whole pipeline and writes <OutPrefix>.txt and
// <OutPrefix>.map.  No partial result is reported as success: any error
// aborts the run and is returned.
func Estimate(ctx context.Context, opts Opts) (err error) {
	if err = opts.Validate(); err != nil {
		return err
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	mapFunc, err := rf.ParseMapFunc(opts.MapFunc)
	if err != nil {
		return err
	}

	index, err := phase.BuildIndex(ctx, opts.InputDir, phase.IndexOpts{
		ExperimentID: opts.ExperimentID,
		Parallelism:  opts.Parallelism,
	})
	if err != nil {
		return err
	}
	set, err := candidate.Select(ctx, index, opts.Opts, opts.Ploidy, opts.Founders, opts.Parallelism)
	if err != nil {
		return err
	}
	engine, err := rf.NewEngine(opts.Ploidy)
	if err != nil {
		return err
	}
	log.Printf("loading phases of %d scaffolds", set.Len())
	phases, err := loadPhases(ctx, set, opts, index.ExperimentID)
	if err != nil {
		return err
	}

	suffix := ""
	if opts.Bgzip {
		suffix = ".gz"
	}
	out, err := createOutput(ctx, opts.OutPrefix+".txt"+suffix, opts.Bgzip, opts.Parallelism)
	if err != nil {
		return err
	}
	defer out.close(ctx, &err)
	mw, err := newMatrixWriter(out.w, set.Scaffolds())
	if err != nil {
		return err
	}
	only := map[string]bool{}
	for _, s := range opts.Only {
		only[s] = true
	}
	s := &scheduler{
		engine:      engine,
		scaffolds:   set.Scaffolds(),
		phases:      phases,
		only:        only,
		out:         mw,
		parallelism: opts.Parallelism,
	}
	n, err := s.run()
	if err != nil {
		return err
	}
	log.Printf("wrote %d scaffold pairs to %s.txt%s", n, opts.OutPrefix, suffix)

	dists, err := loadDistances(ctx, set, opts, index.ExperimentID)
	if err != nil {
		return err
	}
	mapOut, err := createOutput(ctx, opts.OutPrefix+".map"+suffix, opts.Bgzip, opts.Parallelism)
	if err != nil {
		return err
	}
	defer mapOut.close(ctx, &err)
	for i, scaffold := range set.Scaffolds() {
		cands := set.Candidates(scaffold)
		trials := make([]string, len(cands))
		for c, cand := range cands {
			trials[c] = cand.Trial.Name()
		}
		if err = writeMap(mapOut.w, scaffold, trials, dists[i], mapFunc); err != nil {
			return err
		}
	}
	return nil
}
