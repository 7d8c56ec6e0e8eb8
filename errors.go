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

import "fmt"

// ConfigError is a fatal pre-run configuration problem: mismatched simulator
// horizons, operator shape mismatches, missing slots or fields. The coupling
// loop never starts after a ConfigError.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "gwcouple: " + e.msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// BoundsError indicates a shape or capacity violation: a vector whose length
// does not match its operator, or a diagnostic write beyond the pre-allocated
// step count. It always indicates a programming or configuration defect.
type BoundsError struct {
	msg string
}

func (e *BoundsError) Error() string { return "gwcouple: " + e.msg }

func boundsErrorf(format string, args ...interface{}) *BoundsError {
	return &BoundsError{msg: fmt.Sprintf(format, args...)}
}

// Phase identifies the part of the per-step protocol that failed.
type Phase string

// Per-step protocol phases, in execution order.
const (
	PhaseSurfaceAdvance    Phase = "surface advance"
	PhaseSurfaceCalculate  Phase = "surface calculate"
	PhaseSurfaceOutput     Phase = "surface output"
	PhaseExtract           Phase = "field extraction"
	PhaseConvert           Phase = "unit conversion"
	PhaseRemap             Phase = "spatial remap"
	PhaseSlotWrite         Phase = "slot write"
	PhaseGroundwaterUpdate Phase = "groundwater update"
	PhaseRecord            Phase = "diagnostic record"
)

// StepError reports a failure of one phase of the per-step protocol at a
// specific step. Steps are numbered from zero.
type StepError struct {
	Step  int
	Phase Phase
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("gwcouple: step %d: %s: %v", e.Step, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FinalizeError reports the outcome of finalizing both simulators. Both
// finalize calls are always attempted; either field may be nil if that side
// finalized cleanly.
type FinalizeError struct {
	Groundwater error
	Surface     error
}

func (e *FinalizeError) Error() string {
	switch {
	case e.Groundwater != nil && e.Surface != nil:
		return fmt.Sprintf("gwcouple: finalizing groundwater model: %v; finalizing surface model: %v",
			e.Groundwater, e.Surface)
	case e.Groundwater != nil:
		return fmt.Sprintf("gwcouple: finalizing groundwater model: %v", e.Groundwater)
	case e.Surface != nil:
		return fmt.Sprintf("gwcouple: finalizing surface model: %v", e.Surface)
	}
	return "gwcouple: finalize error"
}
