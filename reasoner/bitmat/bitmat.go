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

// Package bitmat implements a square bit matrix packed into uint64 words.
//
// A Matrix stores an n×n boolean relation as n rows of ceil(n/64) words in a
// single backing slice. Row-level operations (union, popcount) work word-wise,
// which is what makes fixpoint closure over the relation cheap: one pivot step
// touches ceil(n/64) words instead of n bits.
package bitmat

import (
	"fmt"
	"math/bits"
)

// WordBits is the number of matrix columns packed into one backing word.
const WordBits = 64

// MaxSize bounds the matrix side. A dense n×n relation costs n²/8 bytes;
// past a million rows that is 128 GiB per matrix and the representation
// stops making sense.
const MaxSize = 1 << 20

// Matrix is a fixed-size square bit matrix. The zero value is not usable;
// create one with New.
type Matrix struct {
	n      uint32
	stride int // words per row
	words  []uint64
}

// New allocates an n×n matrix with all bits clear. Sizes beyond MaxSize fail
// with an error instead of panicking inside make, so callers can surface
// capacity errors to their own callers.
func New(n uint32) (*Matrix, error) {
	if n > MaxSize {
		return nil, fmt.Errorf("bitmat: %d×%d matrix exceeds the %d row limit", n, n, MaxSize)
	}
	stride := (int(n) + WordBits - 1) / WordBits
	total := uint64(n) * uint64(stride)
	return &Matrix{
		n:      n,
		stride: stride,
		words:  make([]uint64, total),
	}, nil
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() uint32 { return m.n }

// Stride returns the number of words per row.
func (m *Matrix) Stride() int { return m.stride }

// Bit reports whether bit (i, j) is set. Bounds are the caller's problem;
// the reasoner validates entity ids before touching the matrix.
func (m *Matrix) Bit(i, j uint32) bool {
	w := m.words[int(i)*m.stride+int(j)/WordBits]
	return w&(1<<(j%WordBits)) != 0
}

// Set sets bit (i, j).
func (m *Matrix) Set(i, j uint32) {
	m.words[int(i)*m.stride+int(j)/WordBits] |= 1 << (j % WordBits)
}

// Row returns a view of row i. The slice aliases the matrix backing store.
func (m *Matrix) Row(i uint32) Row {
	off := int(i) * m.stride
	return Row(m.words[off : off+m.stride])
}

// Reset clears every bit.
func (m *Matrix) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// CopyFrom overwrites m with the contents of src. Both matrices must have
// been created with the same size.
func (m *Matrix) CopyFrom(src *Matrix) {
	if m.n != src.n {
		panic(fmt.Sprintf("bitmat: copy between %d×%d and %d×%d", m.n, m.n, src.n, src.n))
	}
	copy(m.words, src.words)
}

// SetDiag sets every diagonal bit (i, i).
func (m *Matrix) SetDiag() {
	for i := uint32(0); i < m.n; i++ {
		m.Set(i, i)
	}
}

// Count returns the total number of set bits.
func (m *Matrix) Count() uint64 {
	var c uint64
	for _, w := range m.words {
		c += uint64(bits.OnesCount64(w))
	}
	return c
}

// Row is one matrix row, a packed sequence of words.
type Row []uint64

// Bit reports whether column j is set.
func (r Row) Bit(j uint32) bool {
	return r[j/WordBits]&(1<<(j%WordBits)) != 0
}

// Set sets column j.
func (r Row) Set(j uint32) {
	r[j/WordBits] |= 1 << (j % WordBits)
}

// Or unions src into r word-wise and reports whether any bit changed.
func (r Row) Or(src Row) bool {
	changed := false
	for i, w := range src {
		if old := r[i]; old|w != old {
			r[i] = old | w
			changed = true
		}
	}
	return changed
}

// Count returns the number of set columns.
func (r Row) Count() int {
	c := 0
	for _, w := range r {
		c += bits.OnesCount64(w)
	}
	return c
}

// CountDiff returns the number of columns set in r but not in mask.
func (r Row) CountDiff(mask Row) int {
	c := 0
	for i, w := range r {
		c += bits.OnesCount64(w &^ mask[i])
	}
	return c
}
