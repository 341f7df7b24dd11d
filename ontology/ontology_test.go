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
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/stretchr/testify/require"

	"github.com/tboxgraph/tbox/reasoner"
	"github.com/tboxgraph/tbox/voc/owl"
)

const ex = "http://example.org/"

func iri(name string) quad.IRI { return quad.IRI(ex + name) }

func subClassOf(child, parent string) quad.Quad {
	return quad.Quad{Subject: iri(child), Predicate: quad.IRI(rdfs.SubClassOf), Object: iri(parent)}
}

func TestDecodeSubClassOf(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddQuad(subClassOf("Dog", "Mammal")))
	require.NoError(t, s.AddQuad(subClassOf("Mammal", "Animal")))
	_, err = s.Engine().Materialize()
	require.NoError(t, err)

	ok, err := s.IsSubClassOf(iri("Dog"), iri("Animal"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.IsSubClassOf(iri("Animal"), iri("Dog"))
	require.NoError(t, err)
	require.False(t, ok)
	require.EqualValues(t, 1, s.Engine().InferenceCount())
}

func TestDecodeEquivalentClass(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddQuad(quad.Quad{
		Subject:   iri("Human"),
		Predicate: quad.IRI(owl.EquivalentClass),
		Object:    iri("Person"),
	}))
	_, err = s.Engine().Materialize()
	require.NoError(t, err)

	ok, err := s.IsEquivalent(iri("Person"), iri("Human"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.IsSubClassOf(iri("Person"), iri("Human"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDecodeCharacteristics(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)
	defer s.Close()

	for name, obj := range map[string]string{
		"ancestorOf": owl.TransitiveProperty,
		"marriedTo":  owl.SymmetricProperty,
		"hasFather":  owl.FunctionalProperty,
	} {
		require.NoError(t, s.AddQuad(quad.Quad{
			Subject:   iri(name),
			Predicate: quad.IRI(rdf.Type),
			Object:    quad.IRI(obj),
		}))
	}

	// flags answer without materialization
	ok, err := s.HasCharacteristic(iri("ancestorOf"), reasoner.Transitive)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.HasCharacteristic(iri("marriedTo"), reasoner.Symmetric)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.HasCharacteristic(iri("marriedTo"), reasoner.Transitive)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = s.HasCharacteristic(iri("hasFather"), reasoner.Functional)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDecodeSkipsInstanceData(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddQuad(quad.Quad{
		Subject:   iri("alice"),
		Predicate: iri("worksAt"),
		Object:    iri("acme"),
	}))
	require.NoError(t, s.AddQuad(quad.Quad{
		Subject:   iri("alice"),
		Predicate: quad.IRI(rdf.Type),
		Object:    iri("Person"),
	}))
	require.EqualValues(t, 2, s.Skipped())
	require.Equal(t, 0, s.Namer().Len())
}

func TestUnknownTermsReportFalse(t *testing.T) {
	s, err := NewStore(16)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddQuad(subClassOf("Dog", "Mammal")))
	_, err = s.Engine().Materialize()
	require.NoError(t, err)

	ok, err := s.IsSubClassOf(iri("Cat"), iri("Mammal"))
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = s.IsEquivalent(iri("Cat"), iri("Cat"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUniverseFull(t *testing.T) {
	s, err := NewStore(2)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddQuad(subClassOf("Dog", "Mammal")))
	err = s.AddQuad(subClassOf("Cat", "Mammal"))
	require.ErrorIs(t, err, ErrUniverseFull)
}

func TestReadFromNQuads(t *testing.T) {
	data := `
<http://example.org/Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Mammal> .
<http://example.org/Mammal> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Animal> .
<http://example.org/Human> <http://www.w3.org/2002/07/owl#equivalentClass> <http://example.org/Person> .
<http://example.org/partOf> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#TransitiveProperty> .
<http://example.org/alice> <http://example.org/worksAt> <http://example.org/acme> .
`
	s, err := NewStore(32)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.ReadFrom(nquads.NewReader(strings.NewReader(data), true))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.EqualValues(t, 1, s.Skipped())

	_, err = s.Engine().MaterializeSparse()
	require.NoError(t, err)

	ok, err := s.IsSubClassOf(iri("Dog"), iri("Animal"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.IsEquivalent(iri("Human"), iri("Person"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.HasCharacteristic(iri("partOf"), reasoner.Transitive)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNamer(t *testing.T) {
	n := NewNamer(3)
	a, err := n.Intern(iri("A"))
	require.NoError(t, err)
	b, err := n.Intern(iri("B"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	again, err := n.Intern(iri("A"))
	require.NoError(t, err)
	require.Equal(t, a, again)
	require.Equal(t, 2, n.Len())

	v, ok := n.Value(a)
	require.True(t, ok)
	require.Equal(t, quad.Value(iri("A")), v)

	_, ok = n.Value(reasoner.Entity(5))
	require.False(t, ok)

	_, err = n.Intern(iri("C"))
	require.NoError(t, err)
	_, err = n.Intern(iri("D"))
	require.ErrorIs(t, err, ErrUniverseFull)
}
