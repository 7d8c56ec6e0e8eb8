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

package weights

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	"github.com/hydromodel/gwcouple"
)

// FromOverlap derives a remap operator from two polygon layers: the weight
// connecting source s to target t is the fraction of source polygon s's area
// lying inside target polygon t. Weights represent fractional area overlap,
// so a source split across several targets contributes its value
// fractionally to each, and row sums are at most one (less where a source
// extends past the target layer). Both layers must share one map projection;
// no reprojection is performed here.
func FromOverlap(targets, sources []geom.Polygonal) (*gwcouple.Operator, error) {
	op, err := gwcouple.NewOperator(len(targets), len(sources))
	if err != nil {
		return nil, err
	}
	for j, s := range sources {
		sa := s.Area()
		if sa <= 0 {
			return nil, fmt.Errorf("weights: source polygon %d has area %g", j, sa)
		}
		sb := s.Bounds()
		for i, t := range targets {
			if !t.Bounds().Overlaps(sb) {
				continue
			}
			isect := s.Intersection(t)
			if isect == nil {
				continue
			}
			if a := isect.Area(); a > 0 {
				if err := op.Set(i, j, a/sa); err != nil {
					return nil, err
				}
			}
		}
	}
	return op, nil
}

// ReadPolygons loads every polygon from a shapefile, in record order.
func ReadPolygons(path string) ([]geom.Polygonal, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("weights: opening shapefile %s: %v", path, err)
	}
	defer d.Close()

	var polys []geom.Polygonal
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("weights: shapefile %s record %d is a %T, want a polygon",
				path, len(polys), g)
		}
		polys = append(polys, p)
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("weights: reading shapefile %s: %v", path, err)
	}
	return polys, nil
}
