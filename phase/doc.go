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

// Package phase indexes the trial archives of a repeated-phasing experiment
// by scaffold and reads their phased haplotype states.
//
// A trial archive is a zip file, or a directory holding the same entries,
// whose name starts with the experiment id.  Each trial carries its own marker
// list; a trial without one is not indexed.
package phase
