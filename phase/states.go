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
	"math"
	"strconv"

	"github.com/c-zhou/polymap/phasecode"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	pkgerrors "github.com/pkg/errors"
)

// maxLineLen bounds a phased-state line; one state character per marker.
const maxLineLen = 64 << 20

// States is the content of one trial's phased-state file, founders removed.
type States struct {
	// LogLik is the trial's log-likelihood from the first line of the file.
	// HasLogLik is false if that line is missing or does not parse.
	LogLik    float64
	HasLogLik bool
	// NumMarkers is the length of every state string.
	NumMarkers int
	// Samples lists the non-founder individuals in file order.
	Samples []string
	// Ploidy is the number of haplotype lines per individual.
	Ploidy int
	// Haplotypes holds Ploidy state strings per individual: the first
	// Ploidy/2 are inherited from parent 0, the rest from parent 1.
	Haplotypes [][]byte
}

// NumIndividuals returns the number of non-founder individuals.
func (s *States) NumIndividuals() int { return len(s.Samples) }

// Copies returns the haplotype state strings that individual inherited from
// the given parent side.
func (s *States) Copies(individual, side int) [][]byte {
	half := s.Ploidy / 2
	base := individual*s.Ploidy + side*half
	return s.Haplotypes[base : base+half]
}

// CountLabels counts the occurrences of each of the 2*Ploidy founder
// haplotype labels over all haplotype lines.
func (s *States) CountLabels() ([]int, error) {
	counts := make([]int, 2*s.Ploidy)
	for _, h := range s.Haplotypes {
		for _, c := range h {
			l, ok := phasecode.LabelIndex(c)
			if !ok || l >= len(counts) {
				return nil, errors.E(errors.Invalid, "haplotype label", strconv.QuoteRune(rune(c)), "out of range for ploidy", strconv.Itoa(s.Ploidy))
			}
			counts[l]++
		}
	}
	return counts, nil
}

// ParseStates reads a phased-state file.  The first line is the trial's
// log-likelihood, the second the number of markers; the remaining lines that
// start with '#' are haplotype lines of the form
//
//   # <index> <sample>[:<copy>] ... <states>
//
// split on whitespace and ':'.  Lines of the samples named in founders are
// skipped.  Each remaining sample must contribute exactly ploidy consecutive
// lines of NumMarkers state characters.
func ParseStates(r io.Reader, ploidy int, founders []string) (*States, error) {
	isFounder := make(map[string]bool, len(founders))
	for _, f := range founders {
		isFounder[f] = true
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)

	s := &States{Ploidy: ploidy, LogLik: math.Inf(-1)}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.E(errors.NotExist, "empty phased-state file")
	}
	if ll, err := strconv.ParseFloat(string(trimSpace(scanner.Bytes())), 64); err == nil {
		s.LogLik, s.HasLogLik = ll, true
	}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.E(errors.NotExist, "phased-state file has no marker count")
	}
	n, err := strconv.Atoi(string(trimSpace(scanner.Bytes())))
	if err != nil {
		return nil, errors.E(errors.Invalid, pkgerrors.Wrapf(err, "phased-state marker count %q", scanner.Text()))
	}
	s.NumMarkers = n

	var (
		tokens [3][]byte
		lines  int
	)
	for lineno := 3; scanner.Scan(); lineno++ {
		line := scanner.Bytes()
		if len(line) == 0 || line[0] != '#' {
			continue
		}
		if getTokens(tokens[:], line, true) < len(tokens) {
			return nil, errors.E(errors.Invalid, "phased-state line", strconv.Itoa(lineno), "has no sample column")
		}
		if isFounder[string(tokens[2])] {
			continue
		}
		states := lastToken(line, true)
		if len(states) != s.NumMarkers {
			return nil, errors.E(errors.Invalid, "phased-state line", strconv.Itoa(lineno), "has",
				strconv.Itoa(len(states)), "states, want", strconv.Itoa(s.NumMarkers))
		}
		if lines%ploidy == 0 {
			s.Samples = append(s.Samples, string(tokens[2]))
		}
		s.Haplotypes = append(s.Haplotypes, append([]byte(nil), states...))
		lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if lines%ploidy != 0 {
		return nil, errors.E(errors.Invalid, "phased-state file has", strconv.Itoa(lines),
			"haplotype lines, not a multiple of ploidy", strconv.Itoa(ploidy))
	}
	return s, nil
}

// ReadStates parses the phased-state entry of the trial archive at path.
func ReadStates(ctx context.Context, path, exprID string, ploidy int, founders []string) (*States, error) {
	in, err := OpenEntry(ctx, path, exprID, PhasedStates)
	if err != nil {
		return nil, err
	}
	s, err := ParseStates(in, ploidy, founders)
	if e := in.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return nil, errors.E(err, path)
	}
	log.Debug.Printf("%s: %d individuals, %d markers", path, s.NumIndividuals(), s.NumMarkers)
	return s, nil
}

// ReadSolverLogLik returns the log-likelihood reported on the last line of
// the solver trace that starts with "log" (the fourth token).  ok is false if
// the archive has no trace or the trace has no such line.
func ReadSolverLogLik(ctx context.Context, path, exprID string) (ll float64, ok bool, err error) {
	in, err := OpenEntry(ctx, path, exprID, SolverTrace)
	if err != nil {
		if errors.Is(errors.NotExist, err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	defer in.Close() // nolint: errcheck
	var (
		tokens [4][]byte
		last   []byte
	)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) >= 3 && string(line[:3]) == "log" {
			last = append(last[:0], line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, false, errors.E(err, path)
	}
	if last == nil {
		return 0, false, nil
	}
	if getTokens(tokens[:], last, false) < len(tokens) {
		return 0, false, errors.E(errors.Invalid, path, "solver trace line", strconv.Quote(string(last)), "has fewer than 4 tokens")
	}
	if ll, err = strconv.ParseFloat(string(tokens[3]), 64); err != nil {
		return 0, false, errors.E(errors.Invalid, pkgerrors.Wrapf(err, "%s: solver trace log-likelihood", path))
	}
	return ll, true, nil
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && isDelim(b[0], false) {
		b = b[1:]
	}
	for len(b) > 0 && isDelim(b[len(b)-1], false) {
		b = b[:len(b)-1]
	}
	return b
}
