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

package linkage

import (
	"fmt"

	"github.com/c-zhou/polymap/candidate"
	"github.com/c-zhou/polymap/rf"
)

// Opts controls Estimate.
type Opts struct {
	// InputDir holds the trial archives.
	InputDir string
	// OutPrefix names the outputs: <OutPrefix>.txt holds the RF matrix and
	// <OutPrefix>.map the intra-scaffold distances.
	OutPrefix string
	// ExperimentID is the archive-name prefix of the trials.  If empty, it is
	// guessed from InputDir.
	ExperimentID string
	// Founders names the parental samples in the phased-state files.
	Founders []string
	// Ploidy of the genome; must be even.
	Ploidy int
	// Parallelism bounds the number of concurrent workers.  If <= 0, it
	// defaults to runtime.NumCPU().
	Parallelism int
	// MapFunc converts fractions to map distances: "kosambi" or "haldane".
	MapFunc string
	// Only, if non-empty, restricts the RF matrix to pairs with at least one
	// listed scaffold.
	Only []string
	// Bgzip compresses both outputs with BGZF and appends ".gz" to their
	// names.
	Bgzip bool

	candidate.Opts
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Ploidy:  2,         // -p
	MapFunc: "kosambi", // -map
	Opts:    candidate.DefaultOpts,
}

// Validate checks opts for missing or out-of-range values.
func (opts Opts) Validate() error {
	if opts.InputDir == "" {
		return fmt.Errorf("linkage: input directory must be set")
	}
	if opts.OutPrefix == "" {
		return fmt.Errorf("linkage: output prefix must be set")
	}
	if opts.Ploidy < 2 || opts.Ploidy%2 != 0 || opts.Ploidy > rf.MaxPloidy {
		return fmt.Errorf("linkage: ploidy must be even and in [2,%d], got %d", rf.MaxPloidy, opts.Ploidy)
	}
	if _, err := rf.ParseMapFunc(opts.MapFunc); err != nil {
		return err
	}
	return opts.Opts.Validate()
}
