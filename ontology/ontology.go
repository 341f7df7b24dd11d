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

// Package ontology feeds RDF quad streams into a reasoner engine.
//
// The decoder recognizes the class-level (TBox) slice of RDFS/OWL:
//
//	(c rdfs:subClassOf d)                     -> subclass edge
//	(c owl:equivalentClass d)                 -> equivalence edge
//	(p rdf:type owl:SymmetricProperty)        -> Symmetric flag
//	(p rdf:type owl:FunctionalProperty)       -> Functional flag
//	(p rdf:type owl:TransitiveProperty)       -> Transitive flag
//	(p rdf:type owl:InverseFunctionalProperty)-> InverseFunctional flag
//	(p rdf:type owl:ReflexiveProperty)        -> Reflexive flag
//	(p rdf:type owl:IrreflexiveProperty)      -> Irreflexive flag
//
// Anything else (instance-level assertions, annotations, class expressions)
// is counted and skipped: instance data is the business of whatever store
// composes its facts with the subsumption answers from here.
package ontology

import (
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"

	"github.com/tboxgraph/tbox/reasoner"
	"github.com/tboxgraph/tbox/voc/owl"
)

// Store couples a reasoner engine with an interning table so axioms can be
// asserted and queried by RDF term instead of dense id.
type Store struct {
	eng     *reasoner.Engine
	names   *Namer
	skipped uint64
}

// NewStore creates a store over a fresh engine with the given capacity.
func NewStore(capacity uint32) (*Store, error) {
	eng, err := reasoner.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Store{eng: eng, names: NewNamer(capacity)}, nil
}

// Engine exposes the underlying reasoner.
func (s *Store) Engine() *reasoner.Engine { return s.eng }

// Namer exposes the interning table.
func (s *Store) Namer() *Namer { return s.names }

// Skipped returns how many quads the decoder did not recognize as TBox
// axioms.
func (s *Store) Skipped() uint64 { return s.skipped }

// Close releases the engine.
func (s *Store) Close() error { return s.eng.Close() }

// AddQuad decodes one quad into engine axioms.
func (s *Store) AddQuad(q quad.Quad) error {
	pred, ok := q.Predicate.(quad.IRI)
	if !ok {
		s.skipped++
		return nil
	}
	// voc constants are prefixed form; Full expands both sides so either
	// spelling in the input matches.
	switch pred.Full() {
	case quad.IRI(rdfs.SubClassOf).Full():
		child, parent, err := s.internPair(q.Subject, q.Object)
		if err != nil {
			return err
		}
		return s.eng.AddSubClassOf(child, parent)
	case quad.IRI(owl.EquivalentClass):
		a, b, err := s.internPair(q.Subject, q.Object)
		if err != nil {
			return err
		}
		return s.eng.AddEquivalentClass(a, b)
	case quad.IRI(rdf.Type).Full():
		obj, ok := q.Object.(quad.IRI)
		if !ok {
			s.skipped++
			return nil
		}
		var c reasoner.Characteristic
		switch obj.Full() {
		case quad.IRI(owl.SymmetricProperty):
			c = reasoner.Symmetric
		case quad.IRI(owl.FunctionalProperty):
			c = reasoner.Functional
		case quad.IRI(owl.TransitiveProperty):
			c = reasoner.Transitive
		case quad.IRI(owl.InverseFunctionalProperty):
			c = reasoner.InverseFunctional
		case quad.IRI(owl.ReflexiveProperty):
			c = reasoner.Reflexive
		case quad.IRI(owl.IrreflexiveProperty):
			c = reasoner.Irreflexive
		default:
			s.skipped++
			return nil
		}
		p, err := s.names.Intern(q.Subject)
		if err != nil {
			return err
		}
		return s.eng.SetCharacteristic(p, c)
	default:
		s.skipped++
		return nil
	}
}

func (s *Store) internPair(a, b quad.Value) (reasoner.Entity, reasoner.Entity, error) {
	ia, err := s.names.Intern(a)
	if err != nil {
		return 0, 0, err
	}
	ib, err := s.names.Intern(b)
	if err != nil {
		return 0, 0, err
	}
	return ia, ib, nil
}

// ReadFrom drains a quad stream into the store and returns the number of
// quads consumed.
func (s *Store) ReadFrom(qr quad.Reader) (int, error) {
	n := 0
	for {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := s.AddQuad(q); err != nil {
			return n, err
		}
		n++
	}
}

// IsSubClassOf answers subsumption by term. Terms the decoder never saw are
// outside the universe and subsume nothing; the query reports false.
func (s *Store) IsSubClassOf(a, b quad.Value) (bool, error) {
	ia, ok := s.names.Lookup(a)
	if !ok {
		return false, nil
	}
	ib, ok := s.names.Lookup(b)
	if !ok {
		return false, nil
	}
	return s.eng.IsSubClassOf(ia, ib)
}

// IsEquivalent answers class equivalence by term.
func (s *Store) IsEquivalent(a, b quad.Value) (bool, error) {
	ia, ok := s.names.Lookup(a)
	if !ok {
		return false, nil
	}
	ib, ok := s.names.Lookup(b)
	if !ok {
		return false, nil
	}
	return s.eng.IsEquivalent(ia, ib)
}

// HasCharacteristic answers a property flag by term.
func (s *Store) HasCharacteristic(p quad.Value, c reasoner.Characteristic) (bool, error) {
	ip, ok := s.names.Lookup(p)
	if !ok {
		return false, nil
	}
	return s.eng.HasCharacteristic(ip, c)
}
