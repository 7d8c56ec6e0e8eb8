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

import "time"

// SurfaceModel is the boundary to the land-surface hydrologic simulator.
// Implementations wrap an already-initialized simulator instance; the coupler
// never initializes one. The handle is stateful and not re-entrant: exactly
// one caller may drive it, and a failed step is not re-runnable.
type SurfaceModel interface {
	// Advance moves the simulator forward by one step.
	Advance() error

	// Calculate performs the process computation for the current step.
	Calculate() error

	// Output flushes the simulator's own optional output for the current
	// step. It must be a no-op when no output is configured.
	Output() error

	// Field returns the named per-HRU vector for the current step. The
	// returned slice is read-only to the caller and is only valid until the
	// next Advance call.
	Field(name string) ([]float64, error)

	// FieldUnits returns the unit string the simulator declares for the
	// named field, e.g. "inches".
	FieldUnits(name string) (string, error)

	// NHRU returns the number of hydrologic response units.
	NHRU() int

	// NSteps returns the total number of steps in the simulation horizon.
	NSteps() int

	// StepDuration returns the fixed length of one step.
	StepDuration() time.Duration

	// CurrentTime returns the simulated time of the current step.
	CurrentTime() time.Time

	// Finalize releases the simulator's resources.
	Finalize() error
}

// GroundwaterModel is the boundary to the groundwater flow engine.
// Simulated time is expressed in days since the engine's simulation start,
// matching the convention of groundwater-engine in-memory APIs.
type GroundwaterModel interface {
	// Slot returns a live mutable view of the named variable in the named
	// package. Writes into the returned slice are visible to the engine's
	// next Update call. The slice's lifetime is owned by the engine.
	Slot(variable, pkg string) ([]float64, error)

	// Update advances the engine by one step, solving with whatever values
	// were last written into its slots.
	Update() error

	// CurrentTime returns the engine's current simulated time in days.
	CurrentTime() float64

	// EndTime returns the end of the engine's simulation horizon in days.
	EndTime() float64

	// StepDuration returns the fixed length of one step.
	StepDuration() time.Duration

	// Finalize releases the engine's resources.
	Finalize() error
}
