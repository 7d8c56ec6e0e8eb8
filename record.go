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
	"time"

	"github.com/ctessum/sparse"
)

// Recorder accumulates named per-HRU time series in memory during the
// coupling loop, decoupled from file output so no I/O happens inside the
// loop. All storage is pre-allocated for exactly nsteps steps before the
// loop starts; writing beyond that capacity is a BoundsError. Results are
// only available after the run reached Terminated.
type Recorder struct {
	start  time.Time
	nsteps int
	nhru   int

	vars  map[string]*sparse.DenseArray // shape {nsteps, nhru}
	units map[string]string
	order []string
	times []float64 // days since start

	done bool
}

// NewRecorder pre-allocates a recorder for runs of exactly nsteps steps over
// nhru hydrologic response units, with simulated time measured from start.
func NewRecorder(start time.Time, nsteps, nhru int) (*Recorder, error) {
	if nsteps <= 0 || nhru <= 0 {
		return nil, configErrorf("recorder: invalid capacity {%d steps, %d HRUs}", nsteps, nhru)
	}
	return &Recorder{
		start:  start,
		nsteps: nsteps,
		nhru:   nhru,
		vars:   make(map[string]*sparse.DenseArray),
		units:  make(map[string]string),
		times:  make([]float64, nsteps),
	}, nil
}

// AddVariable declares and pre-allocates one diagnostic variable. All
// variables must be declared before the first Record call for their names.
func (r *Recorder) AddVariable(name, units string) error {
	if name == "" {
		return configErrorf("recorder: empty variable name")
	}
	if _, ok := r.vars[name]; ok {
		return configErrorf("recorder: variable %s declared twice", name)
	}
	r.vars[name] = sparse.ZerosDense(r.nsteps, r.nhru)
	r.units[name] = units
	r.order = append(r.order, name)
	return nil
}

// Record stores one step's values for one variable, along with the step's
// simulated timestamp.
func (r *Recorder) Record(step int, t time.Time, name string, vals []float64) error {
	if step < 0 || step >= r.nsteps {
		return boundsErrorf("recorder: step %d outside pre-allocated capacity %d", step, r.nsteps)
	}
	if len(vals) != r.nhru {
		return boundsErrorf("recorder: %s: got %d values, want %d", name, len(vals), r.nhru)
	}
	d, ok := r.vars[name]
	if !ok {
		return configErrorf("recorder: undeclared variable %s", name)
	}
	copy(d.Elements[step*r.nhru:(step+1)*r.nhru], vals)
	r.times[step] = t.Sub(r.start).Hours() / 24
	return nil
}

// finish marks the run as terminated, making results available. Called by
// the coupler on the success path only.
func (r *Recorder) finish() { r.done = true }

// Series is the exported time series for one diagnostic variable.
type Series struct {
	Name  string
	Units string

	// Time holds one entry per step, in days since the run start.
	Time []float64

	// Values has shape {steps, HRUs}.
	Values *sparse.DenseArray
}

// Start returns the simulated time diagnostic timestamps are measured from.
func (r *Recorder) Start() time.Time { return r.start }

// Results returns the recorded series, keyed by variable name. It fails with
// a state error unless the run reached Terminated: diagnostics from a failed
// run are discarded.
func (r *Recorder) Results() (map[string]*Series, error) {
	if !r.done {
		return nil, fmt.Errorf("gwcouple: recorder: results requested before the run terminated")
	}
	out := make(map[string]*Series, len(r.order))
	for _, name := range r.order {
		out[name] = &Series{
			Name:   name,
			Units:  r.units[name],
			Time:   r.times,
			Values: r.vars[name],
		}
	}
	return out, nil
}
