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

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/c-zhou/polymap/linkage"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	inputDir      string
	outPrefix     string
	experimentID  string
	founders      string
	ploidy        int
	bestN         int
	skewPhi       float64
	dropThres     int
	goodnessOfFit string
	parallelism   int
	mapFunc       = flag.String("map", linkage.DefaultOpts.MapFunc, "Genetic mapping function for the .map output: kosambi or haldane")
	only          = flag.String("only", "", "Comma-separated scaffolds; if set, only pairs involving one of them are computed")
	bgzip         = flag.Bool("bgzip", false, "BGZF-compress the outputs (adds a .gz suffix)")
)

func init() {
	stringFlag(&inputDir, "", "Directory holding the phasing trial archives", "i", "hap-file")
	stringFlag(&outPrefix, "", "Output path prefix; writes <prefix>.txt and <prefix>.map", "o", "prefix")
	stringFlag(&experimentID, "", "Experiment id, the common name prefix of the trial archives; guessed if empty", "ex", "experiment-id")
	stringFlag(&founders, "", "Colon-separated parent (founder) sample names; required", "f", "parent")
	intFlag(&ploidy, linkage.DefaultOpts.Ploidy, "Ploidy of the genome (even, at most 10)", "p", "ploidy")
	intFlag(&bestN, linkage.DefaultOpts.BestN, "Maximum number of candidate trials per scaffold", "nb", "best")
	flag.Float64Var(&skewPhi, "phi", linkage.DefaultOpts.SkewPhi, "Haplotype skew tolerance; the p-value cutoff for chisq and gtest")
	flag.Float64Var(&skewPhi, "skew-phi", linkage.DefaultOpts.SkewPhi, "Alias for -phi")
	intFlag(&dropThres, linkage.DefaultOpts.DropThres, "Drop a scaffold if fewer trials than this pass the goodness-of-fit test", "nd", "drop")
	stringFlag(&goodnessOfFit, linkage.DefaultOpts.GoodnessOfFit, "Goodness-of-fit test: fraction, chisq or gtest", "gof", "goodness-of-fit")
	intFlag(&parallelism, 0, "Number of worker goroutines; 0 = runtime.NumCPU()", "t", "threads")
}

// stringFlag registers a flag under a short and a long name.
func stringFlag(p *string, value, usage, short, long string) {
	flag.StringVar(p, short, value, usage)
	flag.StringVar(p, long, value, "Alias for -"+short)
}

func intFlag(p *int, value int, usage, short, long string) {
	flag.IntVar(p, short, value, usage)
	flag.IntVar(p, long, value, "Alias for -"+short)
}

func splitList(s, sep string) []string {
	var out []string
	for _, f := range strings.Split(s, sep) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func bioRFEstimateUsage() {
	fmt.Printf("Usage: %s [OPTIONS] -i dir -o prefix\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioRFEstimateUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		log.Fatalf("Unexpected positional arguments: '%s'", strings.Join(flag.Args(), " "))
	}
	opts := linkage.DefaultOpts
	opts.InputDir = inputDir
	opts.OutPrefix = outPrefix
	opts.ExperimentID = experimentID
	opts.Founders = splitList(founders, ":")
	opts.Ploidy = ploidy
	opts.Parallelism = parallelism
	opts.MapFunc = *mapFunc
	opts.Only = splitList(*only, ",")
	opts.Bgzip = *bgzip
	opts.BestN = bestN
	opts.SkewPhi = skewPhi
	opts.DropThres = dropThres
	opts.GoodnessOfFit = goodnessOfFit
	if len(opts.Founders) == 0 {
		flag.Usage()
		log.Fatalf("Please specify the parent samples (separated by a \":\")")
	}
	if err := opts.Validate(); err != nil {
		flag.Usage()
		log.Fatalf("%v", err)
	}
	ctx := vcontext.Background()
	if err := linkage.Estimate(ctx, opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
