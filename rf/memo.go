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

package rf

import (
	"encoding/binary"
	"sync"

	"blainsmith.com/go/seahash"
)

const numMemoShards = 1024

type memoShard struct {
	mu     sync.Mutex
	counts map[uint64][4]uint8
}

// Memo is a sharded, thread-safe map from a composite key (the start and end
// keys of two candidates) to the four endpoint intersection counts.  Entries
// are never removed; a value once stored never changes.
type Memo struct {
	shards [numMemoShards]memoShard
}

// NewMemo returns an empty Memo.
func NewMemo() *Memo {
	m := &Memo{}
	for i := range m.shards {
		m.shards[i].counts = make(map[uint64][4]uint8)
	}
	return m
}

func (m *Memo) shard(key uint64) *memoShard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	h := seahash.Sum64(buf[:])
	return &m.shards[int(h%uint64(numMemoShards))]
}

// Get returns the counts stored under key.
func (m *Memo) Get(key uint64) ([4]uint8, bool) {
	shard := m.shard(key)
	shard.mu.Lock()
	v, ok := shard.counts[key]
	shard.mu.Unlock()
	return v, ok
}

// PutIfAbsent stores v under key unless the key is already present, and
// returns the value stored under key afterwards.
func (m *Memo) PutIfAbsent(key uint64, v [4]uint8) [4]uint8 {
	shard := m.shard(key)
	shard.mu.Lock()
	if old, ok := shard.counts[key]; ok {
		v = old
	} else {
		shard.counts[key] = v
	}
	shard.mu.Unlock()
	return v
}

// ApproxSize returns the approximate number of entries in the map.  It returns
// a correct number iff it is invoked when no other thread is accessing the map.
func (m *Memo) ApproxSize() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.counts)
		s.mu.Unlock()
	}
	return n
}
