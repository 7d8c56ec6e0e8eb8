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

// Package gwcouple one-way couples a land-surface hydrologic simulator to a
// groundwater flow engine through their in-memory APIs. Each step it advances
// the surface model, extracts named per-HRU flux fields, converts
// depth-per-unit-area fluxes to volumetric rates, redistributes them onto the
// groundwater model's discretizations (grid cells and stream reaches) with
// static sparse linear operators, writes the results into the groundwater
// model's exposed arrays, advances the groundwater model, and records
// selected diagnostics in memory for NetCDF export after the run.
//
// The coupling is strictly one-way: values flow from the surface model to the
// groundwater model within a step, with no iteration back to convergence.
// Neither simulator is implemented here; the package drives two
// already-initialized handles satisfying the SurfaceModel and
// GroundwaterModel interfaces.
package gwcouple
