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

package reasoner

import (
	"sync/atomic"

	"github.com/tboxgraph/tbox/reasoner/bitmat"
)

// Materialize recomputes both closure matrices from the full current axiom
// set and returns the number of derived facts: matrix-true pairs that are
// neither self-pairs nor directly asserted.
//
// The fixpoint is a Warshall-style sweep: for each pivot k, every row i with
// bit k set absorbs row k by word-wise OR, repeated until a full sweep
// changes nothing. A sweep extends every derivation chain by at least one
// hop, so capacity sweeps bound the loop regardless of input.
//
// Re-running with no new axioms is idempotent and returns the same count.
func (e *Engine) Materialize() (uint64, error) {
	return e.materialize(fixpointFull)
}

// MaterializeSparse is the dirty-row variant of Materialize. It keeps a
// worklist of rows that changed in the previous sweep and only propagates
// through pivots on that list, skipping pivot rows that carry nothing beyond
// their own diagonal bit. Most entities in a typical ontology have few
// superclasses, so this touches far fewer words.
//
// The output is bit-for-bit identical to Materialize for any axiom set; only
// the cost differs.
func (e *Engine) MaterializeSparse() (uint64, error) {
	return e.materialize(fixpointSparse)
}

func (e *Engine) materialize(fix fixpointFunc) (uint64, error) {
	if e.closed {
		return 0, ErrClosed
	}
	prev := e.state.load()
	if prev == Materializing || !e.state.cas(prev, Materializing) {
		return 0, ErrMaterializing
	}
	start := e.clock.Cycles()

	// Equivalence first: rebuild from asserted pairs, seed reflexivity, close.
	e.equiv.Reset()
	for key := range e.eqAsserted {
		a, b := unpackPair(key)
		e.equiv.Set(uint32(a), uint32(b))
		e.equiv.Set(uint32(b), uint32(a))
	}
	e.equiv.SetDiag()
	fix(e.equiv)

	// Subclass: rebuild from asserted edges, fold the materialized
	// equivalence relation in as mutual subsumption, seed reflexivity,
	// close. Folding before the fixpoint lets subsumption propagate
	// through equivalence links.
	e.sub.Reset()
	for key := range e.subAsserted {
		child, parent := unpackPair(key)
		e.sub.Set(uint32(child), uint32(parent))
	}
	for i := uint32(0); i < e.capacity; i++ {
		e.sub.Row(i).Or(e.equiv.Row(i))
	}
	e.sub.SetDiag()
	fix(e.sub)

	e.derived = e.countDerived()
	e.cycles = e.clock.Cycles() - start
	e.generation++
	e.state.store(Materialized)
	return e.derived, nil
}

type fixpointFunc func(m *bitmat.Matrix)

// countDerived counts closure bits that are neither on the diagonal nor
// directly asserted. Every asserted pair and every diagonal bit is present
// in the closure, so plain subtraction is exact. Pairs asserted through
// AddEquivalentClass count as asserted in both directions.
func (e *Engine) countDerived() uint64 {
	total := e.sub.Count()
	base := uint64(e.capacity) // diagonal
	for key := range e.subAsserted {
		a, b := unpackPair(key)
		if a != b {
			base++
		}
	}
	for key := range e.eqAsserted {
		a, b := unpackPair(key)
		if _, ok := e.subAsserted[packPair(a, b)]; !ok {
			base++
		}
		if _, ok := e.subAsserted[packPair(b, a)]; !ok {
			base++
		}
	}
	return total - base
}

// fixpointFull sweeps every pivot every pass.
func fixpointFull(m *bitmat.Matrix) {
	n := m.Size()
	for pass := uint32(0); pass < n; pass++ {
		changed := false
		for k := uint32(0); k < n; k++ {
			krow := m.Row(k)
			for i := uint32(0); i < n; i++ {
				if i == k || !m.Bit(i, k) {
					continue
				}
				if m.Row(i).Or(krow) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// fixpointSparse sweeps only dirty pivots. The worklist starts with every
// row carrying a non-diagonal bit; a row re-enters it whenever its content
// changes, so receivers that gained an edge to a pivot late still absorb
// that pivot's row on a later sweep.
func fixpointSparse(m *bitmat.Matrix) {
	n := m.Size()
	dirty := make([]bool, n)
	active := false
	for k := uint32(0); k < n; k++ {
		if m.Row(k).Count() > 1 {
			dirty[k] = true
			active = true
		}
	}
	for pass := uint32(0); active && pass < n; pass++ {
		next := make([]bool, n)
		active = false
		for k := uint32(0); k < n; k++ {
			if !dirty[k] {
				continue
			}
			krow := m.Row(k)
			for i := uint32(0); i < n; i++ {
				if i == k || !m.Bit(i, k) {
					continue
				}
				if m.Row(i).Or(krow) {
					next[i] = true
					active = true
				}
			}
		}
		dirty = next
	}
}

type atomicState struct {
	v int32
}

func (s *atomicState) load() State { return State(atomic.LoadInt32(&s.v)) }

func (s *atomicState) store(st State) { atomic.StoreInt32(&s.v, int32(st)) }

func (s *atomicState) cas(old, new State) bool {
	return atomic.CompareAndSwapInt32(&s.v, int32(old), int32(new))
}
