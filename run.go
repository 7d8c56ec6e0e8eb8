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
	"errors"
	"log"
)

// State is the lifecycle state of a Coupler.
type State int

// Coupler lifecycle states.
const (
	Uninitialized State = iota
	Ready
	Running
	Finalizing
	Terminated
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Finalizing:
		return "finalizing"
	case Terminated:
		return "terminated"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Config assembles everything a Coupler needs. Both simulator handles must
// already be initialized by their owners; the coupler exclusively owns them
// from Init until both are finalized.
type Config struct {
	Surface     SurfaceModel
	Groundwater GroundwaterModel

	// Area is the per-HRU area vector, in the area unit the Converter was
	// built with. Immutable for the run.
	Area []float64

	// Converter turns per-HRU depth fluxes into volumetric rates.
	Converter *Converter

	// Fields are the coupled fields, written into the groundwater model in
	// declaration order each step.
	Fields []FieldDef

	// Log, if non-nil, receives per-run progress lines. No logging happens
	// inside the per-step protocol.
	Log *log.Logger
}

// Coupler drives the one-way coupling of a surface model to a groundwater
// model. It is single-threaded: the per-step protocol is strictly sequential
// because the groundwater solve depends on the slot writes of the same step,
// and the next surface advance depends on the previous groundwater update.
type Coupler struct {
	cfg    Config
	state  State
	fields []*boundField
	rec    *Recorder
	nsteps int
}

// New creates a Coupler in the Uninitialized state.
func New(cfg Config) (*Coupler, error) {
	if cfg.Surface == nil {
		return nil, configErrorf("no surface model")
	}
	if cfg.Groundwater == nil {
		return nil, configErrorf("no groundwater model")
	}
	if cfg.Converter == nil {
		return nil, configErrorf("no unit converter")
	}
	if len(cfg.Fields) == 0 {
		return nil, configErrorf("no coupled fields")
	}
	return &Coupler{cfg: cfg}, nil
}

// State returns the coupler's lifecycle state.
func (c *Coupler) State() State { return c.state }

// Init performs the one-time pre-run consistency checks and moves the
// coupler to Ready: horizon and step-size agreement between the two
// simulators, operator shapes, slot resolution including layer addressing,
// field binding with unit validation, and diagnostic pre-allocation. Every
// failure here is a ConfigError, the loop never starts, and the coupler
// stays Uninitialized. None of these checks are repeated per step.
func (c *Coupler) Init() error {
	if c.state != Uninitialized {
		return configErrorf("Init called in state %v", c.state)
	}
	sf, gw := c.cfg.Surface, c.cfg.Groundwater

	nhru := sf.NHRU()
	if nhru <= 0 {
		return configErrorf("surface model reports %d HRUs", nhru)
	}
	c.nsteps = sf.NSteps()
	if c.nsteps <= 0 {
		return configErrorf("surface model reports %d steps", c.nsteps)
	}
	if len(c.cfg.Area) != nhru {
		return configErrorf("area vector has length %d but surface model has %d HRUs",
			len(c.cfg.Area), nhru)
	}

	// Calendar agreement: equal step sizes, and the groundwater horizon must
	// cover all N surface steps or the update calls beyond it are undefined.
	if sf.StepDuration() != gw.StepDuration() {
		return configErrorf("step size mismatch: surface %v, groundwater %v",
			sf.StepDuration(), gw.StepDuration())
	}
	stepDays := gw.StepDuration().Hours() / 24
	remaining := gw.EndTime() - gw.CurrentTime()
	need := float64(c.nsteps) * stepDays
	if remaining < need-1e-9 {
		return configErrorf("groundwater horizon too short: %g days remaining, %d steps of %g days needed",
			remaining, c.nsteps, stepDays)
	}

	seen := make(map[string]struct{}, len(c.cfg.Fields))
	c.fields = make([]*boundField, 0, len(c.cfg.Fields))
	for _, def := range c.cfg.Fields {
		if _, ok := seen[def.Name]; ok {
			return configErrorf("field %s declared twice", def.Name)
		}
		seen[def.Name] = struct{}{}

		f, err := bindField(def, sf)
		if err != nil {
			return err
		}
		slot, err := gw.Slot(def.Target.Variable, def.Target.Package)
		if err != nil {
			return configErrorf("field %s: slot %s/%s: %v",
				def.Name, def.Target.Package, def.Target.Variable, err)
		}
		ncells := def.Operator.Rows()
		lo := def.Target.Layer * ncells
		hi := lo + ncells
		if def.Target.Layer < 0 || hi > len(slot) {
			return configErrorf("field %s: layer %d of slot %s/%s (length %d) out of range for %d cells per layer",
				def.Name, def.Target.Layer, def.Target.Package, def.Target.Variable, len(slot), ncells)
		}
		f.slot = slot[lo:hi]
		c.fields = append(c.fields, f)
	}

	rec, err := NewRecorder(sf.CurrentTime(), c.nsteps, nhru)
	if err != nil {
		return err
	}
	for _, f := range c.fields {
		if !f.def.Record {
			continue
		}
		units := f.def.Units
		if f.def.RecordConverted {
			units = "m**3/d"
		}
		if err := rec.AddVariable(f.def.Name, units); err != nil {
			return err
		}
	}
	c.rec = rec
	c.state = Ready
	return nil
}

// Run executes the coupling loop for all N steps and finalizes both
// simulators. Both Finalize calls are attempted on every exit path,
// groundwater first; a step failure is reported with its step index and
// phase, and finalize failures are reported alongside it rather than being
// swallowed. On success the coupler is Terminated and Results becomes
// available.
func (c *Coupler) Run() error {
	if c.state != Ready {
		return configErrorf("Run called in state %v", c.state)
	}
	c.state = Running
	if c.cfg.Log != nil {
		c.cfg.Log.Printf("coupling %d fields over %d steps", len(c.fields), c.nsteps)
	}

	stepErr := c.loop()

	c.state = Finalizing
	finErr := c.finalize()

	if stepErr != nil || finErr != nil {
		c.state = Failed
		return errors.Join(stepErr, finErr)
	}
	c.state = Terminated
	c.rec.finish()
	if c.cfg.Log != nil {
		c.cfg.Log.Printf("coupling terminated after %d steps", c.nsteps)
	}
	return nil
}

// loop runs the strict eight-phase per-step protocol. The ordering is the
// physical contract of one-way coupling: the groundwater solve for step k
// must observe the surface fluxes of step k, already converted and remapped,
// and nothing else.
func (c *Coupler) loop() error {
	sf, gw := c.cfg.Surface, c.cfg.Groundwater
	for k := 0; k < c.nsteps; k++ {
		if err := sf.Advance(); err != nil {
			return &StepError{Step: k, Phase: PhaseSurfaceAdvance, Err: err}
		}
		if err := sf.Calculate(); err != nil {
			return &StepError{Step: k, Phase: PhaseSurfaceCalculate, Err: err}
		}
		if err := sf.Output(); err != nil {
			return &StepError{Step: k, Phase: PhaseSurfaceOutput, Err: err}
		}
		t := sf.CurrentTime()

		for _, f := range c.fields {
			if err := f.evaluate(sf); err != nil {
				return &StepError{Step: k, Phase: PhaseExtract, Err: err}
			}
			if err := c.cfg.Converter.Convert(f.converted, f.raw, c.cfg.Area); err != nil {
				return &StepError{Step: k, Phase: PhaseConvert, Err: err}
			}
			if err := f.def.Operator.Apply(f.remapped, f.converted); err != nil {
				return &StepError{Step: k, Phase: PhaseRemap, Err: err}
			}
			// The write lands in the live slot before the groundwater
			// update; layers other than the addressed one are left alone.
			copy(f.slot, f.remapped)
		}

		if err := gw.Update(); err != nil {
			return &StepError{Step: k, Phase: PhaseGroundwaterUpdate, Err: err}
		}

		for _, f := range c.fields {
			if !f.def.Record {
				continue
			}
			if err := c.rec.Record(k, t, f.def.Name, f.recorded()); err != nil {
				return &StepError{Step: k, Phase: PhaseRecord, Err: err}
			}
		}
	}
	return nil
}

// finalize attempts both finalize calls unconditionally, groundwater first,
// so neither side leaks resources when the other fails.
func (c *Coupler) finalize() error {
	gwErr := c.cfg.Groundwater.Finalize()
	sfErr := c.cfg.Surface.Finalize()
	if gwErr != nil || sfErr != nil {
		return &FinalizeError{Groundwater: gwErr, Surface: sfErr}
	}
	return nil
}

// Results returns the recorded diagnostic series. It fails unless the run
// reached Terminated.
func (c *Coupler) Results() (map[string]*Series, error) {
	if c.state != Terminated {
		return nil, configErrorf("results requested in state %v", c.state)
	}
	return c.rec.Results()
}

// NSteps returns the number of steps the loop will run (the surface model's
// horizon), valid after Init.
func (c *Coupler) NSteps() int { return c.nsteps }
