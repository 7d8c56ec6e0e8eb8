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

// Package weights builds the static remap operators the coupling loop
// applies: either loaded from a weight file prepared alongside the two
// models' discretizations, or derived from the fractional area overlap of
// two polygon layers.
package weights

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hydromodel/gwcouple"
)

// Load reads a remap operator with shape {rows, cols} from a three-column
// text weight file. Each non-blank line holds a zero-based target index, a
// zero-based source index, and a non-negative weight; '#' starts a comment.
// Out-of-range indices and negative weights are rejected.
func Load(path string, rows, cols int) (*gwcouple.Operator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weights: opening %s: %v", path, err)
	}
	defer f.Close()

	op, err := gwcouple.NewOperator(rows, cols)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		s := scanner.Text()
		if i := strings.Index(s, "#"); i >= 0 {
			s = s[:i]
		}
		fields := strings.Fields(s)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("weights: %s line %d: got %d columns, want 3", path, line, len(fields))
		}
		t, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("weights: %s line %d: target index: %v", path, line, err)
		}
		src, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("weights: %s line %d: source index: %v", path, line, err)
		}
		w, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("weights: %s line %d: weight: %v", path, line, err)
		}
		if err := op.Set(t, src, w); err != nil {
			return nil, fmt.Errorf("weights: %s line %d: %v", path, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("weights: reading %s: %v", path, err)
	}
	return op, nil
}

// LoadVector reads a one-column vector of length n from a text file, in the
// same comment-tolerant format as Load. It is used for per-HRU area vectors.
func LoadVector(path string, n int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weights: opening %s: %v", path, err)
	}
	defer f.Close()

	out := make([]float64, 0, n)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		s := scanner.Text()
		if i := strings.Index(s, "#"); i >= 0 {
			s = s[:i]
		}
		for _, field := range strings.Fields(s) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("weights: %s line %d: %v", path, line, err)
			}
			out = append(out, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("weights: reading %s: %v", path, err)
	}
	if len(out) != n {
		return nil, fmt.Errorf("weights: %s holds %d values, want %d", path, len(out), n)
	}
	return out, nil
}
