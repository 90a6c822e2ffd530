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

// Package candidate chooses, for each scaffold, the phasing trials credible
// enough to estimate linkage from: trials are ranked by log-likelihood and
// those whose haplotype frequencies are too skewed are rejected.
package candidate

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/c-zhou/polymap/phase"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// Candidate is a trial retained for one scaffold.
type Candidate struct {
	Trial *phase.Trial
	// LogLik is the trial's log-likelihood scaled by the fraction of the
	// trial's markers that lie on the scaffold.
	LogLik float64
	Fit    Fit
}

// Set maps scaffolds to their ranked candidates.  Scaffolds without
// candidates are not in the set.
type Set struct {
	scaffolds  []string
	candidates map[string][]*Candidate
}

// Scaffolds returns the retained scaffolds in lexical order.
func (s *Set) Scaffolds() []string { return s.scaffolds }

// Candidates returns the candidates of scaffold, best first.
func (s *Set) Candidates(scaffold string) []*Candidate { return s.candidates[scaffold] }

// Len returns the number of retained scaffolds.
func (s *Set) Len() int { return len(s.scaffolds) }

// trialStats holds the scaffold-independent facts about a trial.
type trialStats struct {
	logLik     float64
	numMarkers int
	counts     []int
}

// Selector reads trial statistics and selects candidates.
type Selector struct {
	opts     Opts
	exprID   string
	ploidy   int
	founders []string

	mu    sync.Mutex
	stats map[string]*trialStats // keyed by trial path; nil if unusable
}

// NewSelector creates a Selector for trials of the given experiment.
func NewSelector(opts Opts, exprID string, ploidy int, founders []string) *Selector {
	return &Selector{
		opts:     opts,
		exprID:   exprID,
		ploidy:   ploidy,
		founders: founders,
		stats:    map[string]*trialStats{},
	}
}

// readStats loads the log-likelihood and label counts of the trial at path.
// It returns nil if the phased-state file is missing.
func (s *Selector) readStats(ctx context.Context, path string) (*trialStats, error) {
	states, err := phase.ReadStates(ctx, path, s.exprID, s.ploidy, s.founders)
	if err != nil {
		if errors.Is(errors.NotExist, err) {
			log.Error.Printf("warning: %s exists, but its phased states do not: %v", path, err)
			return nil, nil
		}
		return nil, err
	}
	counts, err := states.CountLabels()
	if err != nil {
		return nil, errors.E(err, path)
	}
	ts := &trialStats{logLik: math.Inf(-1), numMarkers: states.NumMarkers, counts: counts}
	ll, ok, err := phase.ReadSolverLogLik(ctx, path, s.exprID)
	switch {
	case err != nil:
		return nil, err
	case ok:
		ts.logLik = ll
	case states.HasLogLik:
		ts.logLik = states.LogLik
	}
	return ts, nil
}

// loadStats reads the statistics of every distinct trial archive in index.
func (s *Selector) loadStats(ctx context.Context, index *phase.Index, parallelism int) error {
	seen := map[string]bool{}
	var paths []string
	for _, scaffold := range index.Scaffolds() {
		for _, t := range index.Trials(scaffold) {
			if !seen[t.Path] {
				seen[t.Path] = true
				paths = append(paths, t.Path)
			}
		}
	}
	sort.Strings(paths)
	if parallelism <= 0 || parallelism > len(paths) {
		parallelism = len(paths)
	}
	log.Printf("reading phased states of %d trials", len(paths))
	return traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(paths)) / parallelism
		endIdx := ((jobIdx + 1) * len(paths)) / parallelism
		for _, path := range paths[startIdx:endIdx] {
			ts, err := s.readStats(ctx, path)
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.stats[path] = ts
			s.mu.Unlock()
		}
		return nil
	})
}

// Select returns the candidates of one scaffold, or nil if the scaffold is
// dropped.  The trials' statistics must have been loaded.
func (s *Selector) Select(scaffold string, trials []*phase.Trial) []*Candidate {
	if len(trials) == 0 {
		return nil
	}
	if n := len(trials[0].Markers); n < 2 {
		log.Error.Printf("warning: %s #marker is less than 2, dropped", scaffold)
		return nil
	}
	var ranked []*Candidate
	for _, t := range trials {
		s.mu.Lock()
		ts := s.stats[t.Path]
		s.mu.Unlock()
		if ts == nil {
			continue
		}
		c := &Candidate{Trial: t, LogLik: math.Inf(-1)}
		if !math.IsInf(ts.logLik, -1) && ts.numMarkers > 0 {
			c.LogLik = ts.logLik * float64(len(t.Markers)) / float64(ts.numMarkers)
		}
		fit, err := CheckFit(s.opts.GoodnessOfFit, ts.counts, s.opts.SkewPhi)
		if err != nil {
			log.Panicf("%s: %v", t.Path, err) // Opts are validated up front.
		}
		c.Fit = fit
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].LogLik > ranked[j].LogLik })

	var (
		kept    []*Candidate
		dropped int
		report  strings.Builder
	)
	for _, c := range ranked {
		report.WriteString("\n" + c.Fit.String() + "\t" + c.Trial.Name())
		if !c.Fit.Keep {
			dropped++
			continue
		}
		if len(kept) < s.opts.BestN {
			kept = append(kept, c)
		}
	}
	log.Debug.Printf("%s:%s", scaffold, report.String())
	if len(ranked)-dropped < s.opts.DropThres || len(kept) == 0 {
		log.Error.Printf("scaffold %s dropped: %d of %d trials rejected", scaffold, dropped, len(ranked))
		return nil
	}
	log.Debug.Printf("%s: kept %d of %d trials, %d rejected", scaffold, len(kept), len(ranked), dropped)
	return kept
}

// Select ranks and filters the trials of every scaffold in index.
func Select(ctx context.Context, index *phase.Index, opts Opts, ploidy int, founders []string, parallelism int) (*Set, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := NewSelector(opts, index.ExperimentID, ploidy, founders)
	if err := s.loadStats(ctx, index, parallelism); err != nil {
		return nil, err
	}
	set := &Set{candidates: map[string][]*Candidate{}}
	for _, scaffold := range index.Scaffolds() {
		if c := s.Select(scaffold, index.Trials(scaffold)); len(c) > 0 {
			set.scaffolds = append(set.scaffolds, scaffold)
			set.candidates[scaffold] = c
		}
	}
	log.Printf("kept %d of %d scaffolds", set.Len(), len(index.Scaffolds()))
	return set, nil
}
