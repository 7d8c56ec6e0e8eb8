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

import "github.com/ctessum/unit"

// Scales of common simulator units, expressed in meters.
var (
	// Inch is the length of one inch [m].
	Inch = unit.New(0.0254, unit.Meter)
	// Foot is the length of one foot [m].
	Foot = unit.New(0.3048, unit.Meter)
	// Meter is the length of one meter [m].
	Meter = unit.New(1, unit.Meter)
	// Acre is the area of one acre [m²].
	Acre = unit.New(4046.8564224, unit.Meter2)
	// SquareMeter is the area of one square meter [m²].
	SquareMeter = unit.New(1, unit.Meter2)
)

// Converter converts per-HRU depth fluxes to volumetric rates:
// volume[i] = depth[i] * factor * area[i]. It is stateless and is applied
// identically to every coupled field.
type Converter struct {
	factor float64
}

// NewConverter builds a Converter from the scale of one depth unit of the
// surface simulator (e.g. Inch) and the scale of one area unit of the HRU
// area vector (e.g. Acre). The two must combine dimensionally to a volume;
// the per-step time base of the depth flux carries through unchanged, so a
// depth in inches per day over areas in acres converts to cubic meters per
// day.
func NewConverter(depth, area *unit.Unit) (*Converter, error) {
	v := unit.Mul(depth, area)
	if !v.Dimensions().Matches(unit.Meter3) {
		return nil, configErrorf("unit converter: %v times %v is not a volume", depth, area)
	}
	return &Converter{factor: v.Value()}, nil
}

// Factor returns the scalar depth-times-area multiplier.
func (c *Converter) Factor() float64 { return c.factor }

// Convert fills dst with the volumetric rate corresponding to the given
// per-HRU depth flux and area vectors. All three slices must have the same
// length.
func (c *Converter) Convert(dst, depth, area []float64) error {
	if len(depth) != len(area) {
		return boundsErrorf("unit converter: depth vector length %d does not match area vector length %d",
			len(depth), len(area))
	}
	if len(dst) != len(depth) {
		return boundsErrorf("unit converter: destination length %d does not match depth vector length %d",
			len(dst), len(depth))
	}
	for i, d := range depth {
		dst[i] = d * c.factor * area[i]
	}
	return nil
}
