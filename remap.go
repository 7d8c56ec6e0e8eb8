/*
Copyright © 2026 the GWCouple authors.
This file is part of GWCouple.

GWCouple is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GWCouple is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GWCouple.  If not, see <http://www.gnu.org/licenses/>.
*/

package gwcouple

import "github.com/ctessum/sparse"

// Operator is a fixed sparse linear weighting matrix with shape
// {targets, sources} that redistributes per-HRU values onto an independently
// defined target discretization (grid cells or stream reaches). Weights are
// non-negative and are applied as-is: no renormalization is performed, so the
// weighting convention (area-overlap fraction vs. absolute split) must match
// how the target simulator interprets the slot. An Operator is built once
// before the loop starts and must not be modified afterwards.
type Operator struct {
	m *sparse.SparseArray
}

// NewOperator creates an all-zero operator mapping source vectors of length
// cols to target vectors of length rows.
func NewOperator(rows, cols int) (*Operator, error) {
	if rows <= 0 || cols <= 0 {
		return nil, configErrorf("remap operator: invalid shape {%d, %d}", rows, cols)
	}
	return &Operator{m: sparse.ZerosSparse(rows, cols)}, nil
}

// Set assigns the weight connecting one source unit to one target unit.
func (o *Operator) Set(row, col int, w float64) error {
	if row < 0 || row >= o.m.Shape[0] || col < 0 || col >= o.m.Shape[1] {
		return boundsErrorf("remap operator: index {%d, %d} outside shape {%d, %d}",
			row, col, o.m.Shape[0], o.m.Shape[1])
	}
	if w < 0 {
		return configErrorf("remap operator: negative weight %g at {%d, %d}", w, row, col)
	}
	o.m.Set(w, row, col)
	return nil
}

// Get returns the weight connecting one source unit to one target unit.
func (o *Operator) Get(row, col int) float64 { return o.m.Get(row, col) }

// Rows returns the target-partition size.
func (o *Operator) Rows() int { return o.m.Shape[0] }

// Cols returns the source-partition size.
func (o *Operator) Cols() int { return o.m.Shape[1] }

// Apply computes the matrix-vector product dst = M·src. src must have length
// Cols and dst length Rows; dst is overwritten.
func (o *Operator) Apply(dst, src []float64) error {
	if len(src) != o.m.Shape[1] {
		return boundsErrorf("remap operator: source vector length %d does not match operator columns %d",
			len(src), o.m.Shape[1])
	}
	if len(dst) != o.m.Shape[0] {
		return boundsErrorf("remap operator: destination length %d does not match operator rows %d",
			len(dst), o.m.Shape[0])
	}
	for i := range dst {
		dst[i] = 0
	}
	for i1d, w := range o.m.Elements {
		idx := o.m.IndexNd(i1d)
		dst[idx[0]] += w * src[idx[1]]
	}
	return nil
}
