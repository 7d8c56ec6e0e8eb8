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

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// TargetRef names the groundwater-model array a coupled field is written
// into. Layer is a zero-based vertical layer index: slots backing a stacked
// multi-layer array are addressed as consecutive single-layer blocks, and
// only the addressed layer's block is written.
type TargetRef struct {
	Variable string
	Package  string
	Layer    int
}

// FieldDef declares one coupled field. Expr is an expression over the
// surface simulator's field names; a combined field is simply a sum, e.g.
// "sroff + dunnian_flow + hortonian_lakes + dprst_sroff". Units is the unit
// string every referenced field must declare — sub-fields with mismatched
// units cannot be summed and are rejected when the field is bound.
type FieldDef struct {
	Name   string
	Expr   string
	Units  string
	Target TargetRef

	// Record adds the field to the diagnostic series. RecordConverted
	// selects the post-conversion volumetric values instead of the raw
	// simulator units.
	Record          bool
	RecordConverted bool

	// Operator redistributes the converted field onto the target partition.
	Operator *Operator
}

// boundField is a FieldDef compiled against a concrete surface model.
type boundField struct {
	def  FieldDef
	expr *govaluate.EvaluableExpression
	vars []string

	raw       []float64 // evaluated expression, one value per HRU
	converted []float64 // after unit conversion
	remapped  []float64 // after remapping, one value per target unit
	slot      []float64 // the addressed layer's block of the target slot

	params map[string]interface{}
}

// bindField compiles def's expression, resolves every referenced field name
// against the surface model, and checks unit consistency across the
// referenced fields.
func bindField(def FieldDef, m SurfaceModel) (*boundField, error) {
	if def.Name == "" {
		return nil, configErrorf("field with empty name")
	}
	if def.Operator == nil {
		return nil, configErrorf("field %s: no remap operator", def.Name)
	}
	expr, err := govaluate.NewEvaluableExpression(def.Expr)
	if err != nil {
		return nil, configErrorf("field %s: parsing expression %q: %v", def.Name, def.Expr, err)
	}
	vars := removeDuplicates(expr.Vars())
	if len(vars) == 0 {
		return nil, configErrorf("field %s: expression %q references no simulator fields",
			def.Name, def.Expr)
	}
	for _, v := range vars {
		if _, err := m.Field(v); err != nil {
			return nil, configErrorf("field %s: simulator field %s: %v", def.Name, v, err)
		}
		u, err := m.FieldUnits(v)
		if err != nil {
			return nil, configErrorf("field %s: units of simulator field %s: %v", def.Name, v, err)
		}
		if u != def.Units {
			return nil, configErrorf("field %s declares units %q but simulator field %s has units %q",
				def.Name, def.Units, v, u)
		}
	}
	if def.Operator.Cols() != m.NHRU() {
		return nil, configErrorf("field %s: operator has %d columns but surface model has %d HRUs",
			def.Name, def.Operator.Cols(), m.NHRU())
	}
	return &boundField{
		def:       def,
		expr:      expr,
		vars:      vars,
		raw:       make([]float64, m.NHRU()),
		converted: make([]float64, m.NHRU()),
		remapped:  make([]float64, def.Operator.Rows()),
		params:    make(map[string]interface{}, len(vars)),
	}, nil
}

// evaluate computes the field's expression for every HRU from the surface
// model's current-step state, filling f.raw.
func (f *boundField) evaluate(m SurfaceModel) error {
	vecs := make([][]float64, len(f.vars))
	for i, v := range f.vars {
		vec, err := m.Field(v)
		if err != nil {
			return fmt.Errorf("field %s: reading simulator field %s: %v", f.def.Name, v, err)
		}
		if len(vec) != len(f.raw) {
			return boundsErrorf("field %s: simulator field %s has length %d, want %d",
				f.def.Name, v, len(vec), len(f.raw))
		}
		vecs[i] = vec
	}
	for i := range f.raw {
		for j, v := range f.vars {
			f.params[v] = vecs[j][i]
		}
		out, err := f.expr.Evaluate(f.params)
		if err != nil {
			return fmt.Errorf("field %s: evaluating %q for HRU %d: %v", f.def.Name, f.def.Expr, i, err)
		}
		val, ok := out.(float64)
		if !ok {
			return fmt.Errorf("field %s: expression %q evaluated to %T, want float64",
				f.def.Name, f.def.Expr, out)
		}
		f.raw[i] = val
	}
	return nil
}

// recorded returns the vector selected for diagnostic recording.
func (f *boundField) recorded() []float64 {
	if f.def.RecordConverted {
		return f.converted
	}
	return f.raw
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}
