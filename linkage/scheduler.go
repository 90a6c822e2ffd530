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
	"sync"
	"sync/atomic"

	"github.com/c-zhou/polymap/rf"
	"github.com/grailbio/base/errors"
	"v.io/x/lib/vlog"
)

// pairTask asks a worker for the RF of scaffolds i and j.
type pairTask struct {
	i, j int
}

// scheduler fans the scaffold pairs out to a fixed pool of workers.
type scheduler struct {
	engine      *rf.Engine
	scaffolds   []string
	phases      [][]*rf.Phase
	only        map[string]bool
	out         *matrixWriter
	parallelism int
}

// wanted reports whether the pair (i, j) passes the Only restriction.
func (s *scheduler) wanted(i, j int) bool {
	if len(s.only) == 0 {
		return true
	}
	return s.only[s.scaffolds[i]] || s.only[s.scaffolds[j]]
}

// run computes and writes every wanted pair i < j.  It stops at the first
// error: remaining tasks are drained without being computed.  It returns the
// number of pairs written.
func (s *scheduler) run() (int64, error) {
	var (
		wg      sync.WaitGroup
		err     errors.Once
		written int64
		tasks   = make(chan pairTask, s.parallelism*4)
	)
	vlog.Infof("creating %d RF workers", s.parallelism)
	for wi := 0; wi < s.parallelism; wi++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				if err.Err() != nil {
					continue
				}
				si, sj := s.scaffolds[t.i], s.scaffolds[t.j]
				r, e := s.engine.PairRF(s.phases[t.i], s.phases[t.j])
				if e != nil {
					err.Set(errors.E(e, "scaffolds", si, sj))
					continue
				}
				if e := s.out.write(r, si, sj); e != nil {
					err.Set(e)
					continue
				}
				if n := atomic.AddInt64(&written, 1); n%100000 == 0 {
					vlog.VI(1).Infof("%d scaffold pairs done, %d memoized keys", n, s.engine.MemoSize())
				}
			}
		}()
	}
	for i := range s.scaffolds {
		for j := i + 1; j < len(s.scaffolds); j++ {
			if s.wanted(i, j) {
				tasks <- pairTask{i, j}
			}
		}
	}
	close(tasks)
	wg.Wait()
	vlog.Infof("finished %d scaffold pairs, %d memoized keys: %v", written, s.engine.MemoSize(), err.Err())
	return written, err.Err()
}
