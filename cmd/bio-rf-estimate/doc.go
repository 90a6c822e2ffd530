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

/*
bio-rf-estimate estimates the recombination frequency (RF) between every pair
of scaffolds of a polyploid genome from repeated, independent haplotype
phasing trials of an F1 population.

For each scaffold, the trials are ranked by log-likelihood and those whose
parental haplotype frequencies are too skewed are discarded; the best -nb
remain.  The RF of two scaffolds is then estimated from the haplotypes at
their ends, under every relabelling of the founder haplotypes, in all four
end-to-end orientations.

Outputs:

  <prefix>.txt  "##<scaffold>" header lines, then one line per scaffold pair:
                min rf0 rf1 rf2 rf3 scaffold_i scaffold_j
  <prefix>.map  one line per retained trial of a scaffold:
                *scaffold trial total_cM d1,d2,...

Sample usage:
bio-rf-estimate \
    -i phasing-runs/ \
    -o linkage \
    -ex tetraploid \
    -f P1:P2 \
    -p 4 \
    -t 16
*/
package main
