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

// IsSubClassOf reports whether a is subsumed by b under the last completed
// materialization. A single bit test: no allocation, no traversal, no
// mutation. Out-of-range ids fail with OutOfRangeError, never clamp.
func (e *Engine) IsSubClassOf(a, b Entity) (bool, error) {
	if e.closed {
		return false, ErrClosed
	}
	if err := e.check(a); err != nil {
		return false, err
	}
	if err := e.check(b); err != nil {
		return false, err
	}
	return e.sub.Bit(uint32(a), uint32(b)), nil
}

// IsEquivalent reports whether a and b denote the same class under the last
// completed materialization. Same contract as IsSubClassOf.
func (e *Engine) IsEquivalent(a, b Entity) (bool, error) {
	if e.closed {
		return false, ErrClosed
	}
	if err := e.check(a); err != nil {
		return false, err
	}
	if err := e.check(b); err != nil {
		return false, err
	}
	return e.equiv.Bit(uint32(a), uint32(b)), nil
}

// HasCharacteristic reports whether property carries flag c. A direct flag
// read, independent of materialization state.
func (e *Engine) HasCharacteristic(property Entity, c Characteristic) (bool, error) {
	if e.closed {
		return false, ErrClosed
	}
	if err := e.check(property); err != nil {
		return false, err
	}
	return e.chars[property]&c == c, nil
}

// InferenceCount returns the number of derived facts recorded by the most
// recent materialization: closure pairs that are neither self-pairs nor
// directly asserted. Zero until the first run completes.
func (e *Engine) InferenceCount() uint64 { return e.derived }

// MaterializationCycles returns the cost counter delta consumed by the most
// recent materialization call, in units of the engine's CycleTimer.
func (e *Engine) MaterializationCycles() uint64 { return e.cycles }

// Generation returns how many materializations have completed.
func (e *Engine) Generation() uint64 { return e.generation }

// State returns where the engine is in its build/serve cycle.
func (e *Engine) State() State { return e.state.load() }
