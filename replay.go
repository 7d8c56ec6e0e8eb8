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
	"io"
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"gonum.org/v1/gonum/floats"
)

// ReplaySurface is a SurfaceModel backed by a NetCDF file of previously
// recorded surface-simulator output: every variable with dimensions
// {time, nhru} becomes a readable field. It lets a coupling be exercised
// offline, without the real simulator; Calculate and Output are no-ops
// because the process computation already happened when the file was
// written.
type ReplaySurface struct {
	f      *cdf.File
	closer io.Closer

	names  []string
	units  map[string]string
	cur    map[string][]float64
	nhru   int
	nsteps int

	start time.Time
	dt    time.Duration
	step  int // -1 before the first Advance
}

// OpenReplayFile opens a replay file from disk. The returned model owns the
// file handle and closes it on Finalize.
func OpenReplayFile(path string) (*ReplaySurface, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gwcouple: opening replay file: %v", err)
	}
	rs, err := NewReplaySurface(ff)
	if err != nil {
		ff.Close()
		return nil, err
	}
	rs.closer = ff
	return rs, nil
}

// NewReplaySurface creates a replay model from r, which must contain a
// "time" coordinate variable with a "days since" units attribute and at
// least one {time, nhru} field variable.
func NewReplaySurface(r cdf.ReaderWriterAt) (*ReplaySurface, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("gwcouple: opening replay data: %v", err)
	}
	rs := &ReplaySurface{
		f:     f,
		units: make(map[string]string),
		cur:   make(map[string][]float64),
		step:  -1,
	}
	for _, v := range f.Header.Variables() {
		dims := f.Header.Dimensions(v)
		if len(dims) != 2 || dims[0] != "time" || dims[1] != "nhru" {
			continue
		}
		lens := f.Header.Lengths(v)
		if rs.nsteps == 0 {
			rs.nsteps, rs.nhru = lens[0], lens[1]
		} else if lens[0] != rs.nsteps || lens[1] != rs.nhru {
			return nil, fmt.Errorf("gwcouple: replay variable %s has shape %v, want {%d, %d}",
				v, lens, rs.nsteps, rs.nhru)
		}
		rs.names = append(rs.names, v)
		rs.units[v] = attrString(f, v, "units")
		rs.cur[v] = make([]float64, lens[1])
	}
	if len(rs.names) == 0 {
		return nil, fmt.Errorf("gwcouple: replay data contains no {time, nhru} variables")
	}

	times, err := readVar64(f, "time")
	if err != nil {
		return nil, fmt.Errorf("gwcouple: replay time coordinate: %v", err)
	}
	if len(times) != rs.nsteps {
		return nil, fmt.Errorf("gwcouple: replay time coordinate has %d entries, want %d",
			len(times), rs.nsteps)
	}
	rs.start, err = parseTimeUnits(attrString(f, "time", "units"))
	if err != nil {
		return nil, err
	}
	if rs.nsteps > 1 {
		rs.dt = time.Duration((times[1] - times[0]) * 24 * float64(time.Hour))
	} else {
		rs.dt = 24 * time.Hour
	}
	return rs, nil
}

// Advance moves to the next recorded step, loading every field's row.
func (rs *ReplaySurface) Advance() error {
	if rs.step+1 >= rs.nsteps {
		return fmt.Errorf("gwcouple: replay advanced past its %d recorded steps", rs.nsteps)
	}
	rs.step++
	for _, v := range rs.names {
		r := rs.f.Reader(v, []int{rs.step, 0}, []int{rs.step + 1, 0})
		buf := r.Zero(rs.nhru)
		if _, err := r.Read(buf); err != nil {
			return fmt.Errorf("gwcouple: replay reading %s at step %d: %v", v, rs.step, err)
		}
		if err := copyVals(rs.cur[v], buf); err != nil {
			return fmt.Errorf("gwcouple: replay variable %s: %v", v, err)
		}
	}
	return nil
}

// Calculate is a no-op: replayed steps were computed when recorded.
func (rs *ReplaySurface) Calculate() error { return nil }

// Output is a no-op: a replay has no output of its own to flush.
func (rs *ReplaySurface) Output() error { return nil }

// Field returns the named vector for the current step.
func (rs *ReplaySurface) Field(name string) ([]float64, error) {
	v, ok := rs.cur[name]
	if !ok {
		return nil, fmt.Errorf("no replay variable %s", name)
	}
	return v, nil
}

// FieldUnits returns the units attribute recorded for the named variable.
func (rs *ReplaySurface) FieldUnits(name string) (string, error) {
	u, ok := rs.units[name]
	if !ok {
		return "", fmt.Errorf("no replay variable %s", name)
	}
	return u, nil
}

// NHRU returns the number of hydrologic response units.
func (rs *ReplaySurface) NHRU() int { return rs.nhru }

// NSteps returns the number of recorded steps.
func (rs *ReplaySurface) NSteps() int { return rs.nsteps }

// StepDuration returns the spacing of the recorded time coordinate.
func (rs *ReplaySurface) StepDuration() time.Duration { return rs.dt }

// CurrentTime returns the simulated time of the current step, or the
// series start before the first Advance.
func (rs *ReplaySurface) CurrentTime() time.Time {
	if rs.step < 0 {
		return rs.start
	}
	return rs.start.Add(time.Duration(rs.step+1) * rs.dt)
}

// Finalize closes the underlying file if this model owns one.
func (rs *ReplaySurface) Finalize() error {
	if rs.closer != nil {
		return rs.closer.Close()
	}
	return nil
}

// Accumulator is a GroundwaterModel that performs no solve: it allocates the
// slots it is told to advertise and accumulates whatever the coupling loop
// writes into them. It stands in for the real engine in dry runs and tests.
type Accumulator struct {
	slots   map[string][]float64
	totals  map[string][]float64
	dt      time.Duration
	current float64
	end     float64
	steps   int
	final   bool
}

// NewAccumulator creates an accumulator with the given step size whose
// horizon ends endDays after its start.
func NewAccumulator(dt time.Duration, endDays float64) *Accumulator {
	return &Accumulator{
		slots:  make(map[string][]float64),
		totals: make(map[string][]float64),
		dt:     dt,
		end:    endDays,
	}
}

// AddSlot advertises one named array of the given length.
func (a *Accumulator) AddSlot(variable, pkg string, n int) {
	k := slotKey(variable, pkg)
	a.slots[k] = make([]float64, n)
	a.totals[k] = make([]float64, n)
}

// Slot returns the live view of the named array.
func (a *Accumulator) Slot(variable, pkg string) ([]float64, error) {
	s, ok := a.slots[slotKey(variable, pkg)]
	if !ok {
		return nil, fmt.Errorf("no slot %s/%s", pkg, variable)
	}
	return s, nil
}

// Update accumulates the current slot contents and advances the clock.
func (a *Accumulator) Update() error {
	if a.final {
		return fmt.Errorf("update after finalize")
	}
	for k, s := range a.slots {
		floats.Add(a.totals[k], s)
	}
	a.steps++
	a.current += a.dt.Hours() / 24
	return nil
}

// Total returns the running per-cell sum of everything written to the named
// slot over all updates so far.
func (a *Accumulator) Total(variable, pkg string) ([]float64, error) {
	t, ok := a.totals[slotKey(variable, pkg)]
	if !ok {
		return nil, fmt.Errorf("no slot %s/%s", pkg, variable)
	}
	return t, nil
}

// Steps returns the number of completed updates.
func (a *Accumulator) Steps() int { return a.steps }

// CurrentTime returns the accumulator clock in days.
func (a *Accumulator) CurrentTime() float64 { return a.current }

// EndTime returns the end of the horizon in days.
func (a *Accumulator) EndTime() float64 { return a.end }

// StepDuration returns the fixed step size.
func (a *Accumulator) StepDuration() time.Duration { return a.dt }

// Finalize marks the accumulator finalized; finalizing twice is an error.
func (a *Accumulator) Finalize() error {
	if a.final {
		return fmt.Errorf("already finalized")
	}
	a.final = true
	return nil
}

func slotKey(variable, pkg string) string { return pkg + "/" + variable }

// attrString reads a string attribute, returning "" when absent.
func attrString(f *cdf.File, v, name string) string {
	a := f.Header.GetAttribute(v, name)
	if a == nil {
		return ""
	}
	if s, ok := a.(string); ok {
		return s
	}
	return fmt.Sprint(a)
}

// parseTimeUnits extracts the reference date from a "days since" units
// string.
func parseTimeUnits(units string) (time.Time, error) {
	s := strings.TrimPrefix(units, "days since ")
	if s == units {
		return time.Time{}, fmt.Errorf("gwcouple: time units %q are not of the form \"days since <date>\"", units)
	}
	t, err := time.Parse(timeUnitsFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("gwcouple: parsing time units %q: %v", units, err)
	}
	return t.UTC(), nil
}

// readVar64 reads an entire variable as float64.
func readVar64(f *cdf.File, v string) ([]float64, error) {
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	out, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %v", v, err)
	}
	return out, nil
}

func toFloat64(buf interface{}) ([]float64, error) {
	switch d := buf.(type) {
	case []float64:
		return d, nil
	case []float32:
		out := make([]float64, len(d))
		for i, v := range d {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported data type %T", buf)
}

func copyVals(dst []float64, buf interface{}) error {
	vals, err := toFloat64(buf)
	if err != nil {
		return err
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("got %d values, want %d", len(vals), len(dst))
	}
	copy(dst, vals)
	return nil
}
