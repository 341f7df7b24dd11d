// Copyright 2023 The TBox Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ontology

import (
	"errors"

	"github.com/cayleygraph/quad"

	"github.com/tboxgraph/tbox/reasoner"
)

// ErrUniverseFull is returned when interning a new name would exceed the
// engine capacity fixed at creation.
var ErrUniverseFull = errors.New("ontology: entity universe is full")

// Namer interns RDF terms to dense entity ids. Ids are handed out in first
// seen order and are stable for the life of the store; the table is bounded
// by the engine capacity and rejects overflow instead of growing.
type Namer struct {
	capacity uint32
	byValue  map[quad.Value]reasoner.Entity
	byID     []quad.Value
}

// NewNamer creates an interning table for at most capacity names.
func NewNamer(capacity uint32) *Namer {
	return &Namer{
		capacity: capacity,
		byValue:  make(map[quad.Value]reasoner.Entity),
	}
}

// normalize maps the prefixed and full spellings of an IRI to one key.
func normalize(v quad.Value) quad.Value {
	if iri, ok := v.(quad.IRI); ok {
		return iri.Full()
	}
	return v
}

// Intern returns the id for v, assigning the next free one on first sight.
// Prefixed and full IRI spellings intern to the same id.
func (n *Namer) Intern(v quad.Value) (reasoner.Entity, error) {
	v = normalize(v)
	if id, ok := n.byValue[v]; ok {
		return id, nil
	}
	if uint32(len(n.byID)) >= n.capacity {
		return 0, ErrUniverseFull
	}
	id := reasoner.Entity(len(n.byID))
	n.byValue[v] = id
	n.byID = append(n.byID, v)
	return id, nil
}

// Lookup returns the id for v without assigning one.
func (n *Namer) Lookup(v quad.Value) (reasoner.Entity, bool) {
	id, ok := n.byValue[normalize(v)]
	return id, ok
}

// Value returns the term interned as id.
func (n *Namer) Value(id reasoner.Entity) (quad.Value, bool) {
	if int(id) >= len(n.byID) {
		return nil, false
	}
	return n.byID[id], true
}

// Len returns the number of interned names.
func (n *Namer) Len() int { return len(n.byID) }
