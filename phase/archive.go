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
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Entry names one of the companion files stored in a trial archive.
type Entry int

const (
	// MarkerList is the whitespace-delimited marker table, one marker per line
	// with the marker id in column 4.
	MarkerList Entry = iota
	// PhasedStates holds the phased haplotype state strings.
	PhasedStates
	// SolverTrace is the phaser's stderr, which carries the final
	// log-likelihood.
	SolverTrace
)

func (e Entry) String() string {
	switch e {
	case MarkerList:
		return "markers"
	case PhasedStates:
		return "phased-states"
	case SolverTrace:
		return "solver-trace"
	}
	return "unknown"
}

// entryName returns the path of e inside an archive of the given experiment.
func entryName(e Entry, exprID string) string {
	switch e {
	case MarkerList:
		return "snp_" + exprID + ".txt"
	case PhasedStates:
		return "phasedStates/" + exprID + ".txt"
	case SolverTrace:
		return "stderr_true"
	}
	panic(e)
}

// OpenEntry opens companion file e of the trial archive at path.  The archive
// is either a zip file or a directory holding the extracted entries (which may
// additionally be gzipped, with a .gz suffix).  A missing entry is reported as
// an errors.NotExist error.
func OpenEntry(ctx context.Context, path, exprID string, e Entry) (io.ReadCloser, error) {
	name := entryName(e, exprID)
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.E(errors.NotExist, err, "trial archive", path)
	}
	if info.IsDir() {
		return openDirEntry(ctx, path, name)
	}
	return openZipEntry(path, name)
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntry) Close() error {
	err := z.ReadCloser.Close()
	if e := z.archive.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

func openZipEntry(path, name string) (io.ReadCloser, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.E(err, "open trial archive", path)
	}
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			archive.Close() // nolint: errcheck
			return nil, errors.E(err, "open", name, "in", path)
		}
		return &zipEntry{ReadCloser: r, archive: archive}, nil
	}
	archive.Close() // nolint: errcheck
	return nil, errors.E(errors.NotExist, path, "has no entry", name)
}

type dirEntry struct {
	io.Reader
	ctx  context.Context
	in   file.File
	gzip *gzip.Reader
}

func (d *dirEntry) Close() error {
	var err error
	if d.gzip != nil {
		err = d.gzip.Close()
	}
	if e := d.in.Close(d.ctx); e != nil && err == nil {
		err = e
	}
	return err
}

func openDirEntry(ctx context.Context, dir, name string) (io.ReadCloser, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		gzPath := path + ".gz"
		if _, e := os.Stat(gzPath); e != nil {
			return nil, errors.E(errors.NotExist, dir, "has no entry", name)
		}
		path = gzPath
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	d := &dirEntry{Reader: in.Reader(ctx), ctx: ctx, in: in}
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if d.gzip, err = gzip.NewReader(d.Reader); err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, errors.E(err, "gunzip", path)
		}
		d.Reader = d.gzip
	}
	return d, nil
}
