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

// Package phasecode implements the compact encoding of phased haplotype
// states used by the recombination-frequency engine.
//
// An offspring of a ploidy-P cross carries P/2 haplotype copies from each
// parent. For one parent side and one marker, the copies an individual carries
// form a subset of the P haplotype slots of that parent; the subset is stored
// as a Vector (one bool per slot) or, packed, as a Key.
//
// Key layout, for ploidy P:
//
//   bit P-1 ... bit 0
//   slot 0  ... slot P-1
//
// i.e. the key is built as key = key<<1 | bit over slots 0..P-1. Only the low
// P bits are used. Pair and composite keys concatenate keys in the same
// direction, each occupying exactly P bits.
package phasecode
