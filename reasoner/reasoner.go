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

// Package reasoner implements an ahead-of-time class-subsumption reasoner
// over a fixed universe of dense entity ids.
//
// The engine runs in two phases. During the build phase the caller asserts
// axioms: subclass edges, class-equivalence edges and per-property
// characteristic flags. Materialize (or MaterializeSparse) then computes the
// reflexive-transitive closure of the subclass relation and the
// reflexive-symmetric-transitive closure of the equivalence relation into two
// dense bit matrices, folding every equivalence pair into the subclass matrix
// as mutual subsumption. During the serve phase IsSubClassOf and IsEquivalent
// are single bit tests and may be called concurrently from any number of
// goroutines.
//
// Query results always reflect the last completed materialization. Axioms
// asserted afterwards are invisible until the next run; before the first run
// the matrices hold only the literal asserted edges, with no reflexive or
// transitive consequences. This is a deliberate build-then-serve split: the
// engine never traverses at query time.
package reasoner

import (
	"errors"
	"fmt"
	"time"

	"github.com/tboxgraph/tbox/reasoner/bitmat"
)

// Entity is a dense id in [0, capacity). The engine does not distinguish
// classes from properties; an id is whatever the axioms referencing it say
// it is.
type Entity uint32

// Characteristic is a property meta-flag. Characteristics are metadata about
// a property entity, not a materialized relation: the engine never computes
// closures over property instance data.
type Characteristic uint8

const (
	Symmetric Characteristic = 1 << iota
	Functional
	Transitive
	InverseFunctional
	Reflexive
	Irreflexive
)

var characteristicNames = map[Characteristic]string{
	Symmetric:         "symmetric",
	Functional:        "functional",
	Transitive:        "transitive",
	InverseFunctional: "inverseFunctional",
	Reflexive:         "reflexive",
	Irreflexive:       "irreflexive",
}

func (c Characteristic) String() string {
	if s, ok := characteristicNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Characteristic(%d)", uint8(c))
}

// ParseCharacteristic resolves a characteristic by its lower-camel name.
func ParseCharacteristic(s string) (Characteristic, bool) {
	for c, name := range characteristicNames {
		if s == name {
			return c, true
		}
	}
	return 0, false
}

// State describes where the engine is in its build/serve cycle.
type State int32

const (
	// Dirty means axioms were asserted since the last materialization (or
	// the engine was never materialized).
	Dirty State = iota
	// Materializing means a materialization run is in flight.
	Materializing
	// Materialized means the closure matrices match the axiom store.
	Materialized
)

func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Materializing:
		return "materializing"
	case Materialized:
		return "materialized"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

var (
	// ErrCapacity is returned by New when the requested universe cannot be
	// backed by dense matrices.
	ErrCapacity = errors.New("reasoner: capacity too large")
	// ErrClosed is returned by every operation on a closed engine.
	ErrClosed = errors.New("reasoner: engine is closed")
	// ErrMaterializing is returned when a materialization call overlaps
	// another one. Materialization is single-writer; the overlap is
	// detected, not serialized.
	ErrMaterializing = errors.New("reasoner: materialization already in progress")
)

// OutOfRangeError reports an entity id outside [0, capacity). Mutators
// reject it atomically: no partial state change is left behind.
type OutOfRangeError struct {
	Entity   Entity
	Capacity uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("reasoner: entity %d out of range [0, %d)", e.Entity, e.Capacity)
}

// Engine owns the axiom store and the closure matrices. All mutation must
// come from a single goroutine; once materialized, queries are lock-free
// reads and safe to issue concurrently.
type Engine struct {
	capacity uint32

	// axiom store, append-only and idempotent
	subAsserted map[uint64]struct{} // child<<32|parent
	eqAsserted  map[uint64]struct{} // lo<<32|hi, lo < hi
	chars       []Characteristic

	// materialized closures; until the first run they hold the literal
	// asserted edges instead
	sub   *bitmat.Matrix
	equiv *bitmat.Matrix

	state      atomicState
	generation uint64
	derived    uint64
	cycles     uint64
	clock      CycleTimer
	closed     bool
}

// New creates an engine over the universe [0, capacity). Both closure
// matrices are allocated up front (capacity² bits each) and never resized;
// a capacity the address space cannot hold is reported as an error rather
// than a panic.
func New(capacity uint32) (*Engine, error) {
	sub, err := bitmat.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	equiv, err := bitmat.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	e := &Engine{
		capacity:    capacity,
		subAsserted: make(map[uint64]struct{}),
		eqAsserted:  make(map[uint64]struct{}),
		chars:       make([]Characteristic, capacity),
		sub:         sub,
		equiv:       equiv,
		clock:       wallClock{},
	}
	e.state.store(Dirty)
	return e, nil
}

// Capacity returns the size of the entity universe.
func (e *Engine) Capacity() uint32 { return e.capacity }

// SetClock replaces the cost counter used by materialization. Swap it before
// the serve phase; the default counts monotonic nanoseconds.
func (e *Engine) SetClock(c CycleTimer) {
	if c != nil {
		e.clock = c
	}
}

func (e *Engine) check(id Entity) error {
	if uint32(id) >= e.capacity {
		return &OutOfRangeError{Entity: id, Capacity: e.capacity}
	}
	return nil
}

// AddSubClassOf asserts that child is directly a subclass of parent.
// Re-asserting an existing edge is a no-op success and does not mark the
// engine dirty.
func (e *Engine) AddSubClassOf(child, parent Entity) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.check(child); err != nil {
		return err
	}
	if err := e.check(parent); err != nil {
		return err
	}
	key := packPair(child, parent)
	if _, ok := e.subAsserted[key]; ok {
		return nil
	}
	e.subAsserted[key] = struct{}{}
	if e.generation == 0 {
		// never materialized: the matrix doubles as the asserted view
		e.sub.Set(uint32(child), uint32(parent))
	}
	e.state.store(Dirty)
	return nil
}

// AddEquivalentClass asserts that a and b denote the same class. The edge is
// unordered; asserting (a, b) and (b, a) is the same axiom.
func (e *Engine) AddEquivalentClass(a, b Entity) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.check(a); err != nil {
		return err
	}
	if err := e.check(b); err != nil {
		return err
	}
	if a == b {
		// reflexive equivalence carries no information
		return nil
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	key := packPair(lo, hi)
	if _, ok := e.eqAsserted[key]; ok {
		return nil
	}
	e.eqAsserted[key] = struct{}{}
	if e.generation == 0 {
		e.equiv.Set(uint32(a), uint32(b))
		e.equiv.Set(uint32(b), uint32(a))
	}
	e.state.store(Dirty)
	return nil
}

// SetCharacteristic flags property with c. Characteristics are pure metadata:
// they never touch the closure matrices and do not mark the engine dirty.
func (e *Engine) SetCharacteristic(property Entity, c Characteristic) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.check(property); err != nil {
		return err
	}
	e.chars[property] |= c
	return nil
}

// SetSymmetric flags property as symmetric.
func (e *Engine) SetSymmetric(property Entity) error {
	return e.SetCharacteristic(property, Symmetric)
}

// SetFunctional flags property as functional.
func (e *Engine) SetFunctional(property Entity) error {
	return e.SetCharacteristic(property, Functional)
}

// SetTransitive flags property as transitive.
func (e *Engine) SetTransitive(property Entity) error {
	return e.SetCharacteristic(property, Transitive)
}

// Close releases the matrices and the axiom store. Every call after Close
// fails with ErrClosed.
func (e *Engine) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	e.sub = nil
	e.equiv = nil
	e.subAsserted = nil
	e.eqAsserted = nil
	e.chars = nil
	return nil
}

func packPair(a, b Entity) uint64 {
	return uint64(a)<<32 | uint64(b)
}

func unpackPair(key uint64) (a, b Entity) {
	return Entity(key >> 32), Entity(key & 0xffffffff)
}

// CycleTimer samples a monotonically increasing cost counter. The engine
// records the difference between two samples as the cost of a
// materialization run. The default implementation counts nanoseconds;
// platforms with a cheap cycle register can plug their own.
type CycleTimer interface {
	Cycles() uint64
}

var epoch = time.Now()

type wallClock struct{}

func (wallClock) Cycles() uint64 { return uint64(time.Since(epoch)) }
