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
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/c-zhou/polymap/rf"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// output is a text output file, optionally BGZF-compressed.
type output struct {
	f    file.File
	bgzf *bgzf.Writer
	w    *tsv.Writer
}

func createOutput(ctx context.Context, path string, bgzip bool, parallelism int) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	o := &output{f: f}
	var w io.Writer = f.Writer(ctx)
	if bgzip {
		o.bgzf = bgzf.NewWriter(w, parallelism)
		w = o.bgzf
	}
	o.w = tsv.NewWriter(w)
	return o, nil
}

// close flushes and closes the output.  The first error is stored in *err.
func (o *output) close(ctx context.Context, err *error) {
	if e := o.w.Flush(); e != nil && *err == nil {
		*err = e
	}
	if o.bgzf != nil {
		if e := o.bgzf.Close(); e != nil && *err == nil {
			*err = e
		}
	}
	file.CloseAndReport(ctx, o.f, err)
}

// matrixWriter writes the RF matrix: a "##<scaffold>" header line per
// retained scaffold followed by one line per scaffold pair,
//
//   min rf0 rf1 rf2 rf3 scaffold_i scaffold_j
//
// It is safe for concurrent use.
type matrixWriter struct {
	mu sync.Mutex
	w  *tsv.Writer
}

func newMatrixWriter(w *tsv.Writer, scaffolds []string) (*matrixWriter, error) {
	for _, s := range scaffolds {
		w.WriteString("##" + s)
		if err := w.EndLine(); err != nil {
			return nil, err
		}
	}
	return &matrixWriter{w: w}, nil
}

func (m *matrixWriter) write(r *rf.PairResult, si, sj string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.w.WriteString(formatFloat(r.Min))
	for _, v := range r.RF {
		m.w.WriteString(formatFloat(v))
	}
	m.w.WriteString(si)
	m.w.WriteString(sj)
	return m.w.EndLine()
}

// writeMap writes one line per candidate of a scaffold,
//
//   *<scaffold> <trial> <total_cM> <d1,d2,...>
//
// with adjacent-marker distances converted to centiMorgans by mapFunc.
func writeMap(w *tsv.Writer, scaffold string, trials []string, dists [][]float64, mapFunc rf.MapFunc) error {
	for c, d := range dists {
		var (
			total float64
			cm    = make([]string, len(d))
		)
		for i, r := range d {
			v := 100 * mapFunc(r)
			total += v
			cm[i] = formatFloat(v)
		}
		w.WriteString("*" + scaffold)
		w.WriteString(trials[c])
		w.WriteString(formatFloat(total))
		w.WriteString(strings.Join(cm, ","))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}
