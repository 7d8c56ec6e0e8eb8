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
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/cdf"
)

// timeUnitsFormat is the reference-date layout used in NetCDF "days since"
// time units.
const timeUnitsFormat = "2006-01-02 15:04:05"

// WriteNetCDF writes every recorded diagnostic series to dir, one
// NetCDF file per variable named <variable>.nc. Each file holds a "time"
// coordinate (days since the run start) and a {time, nhru} value array.
// Like Results, it is only valid after the run reached Terminated.
func (r *Recorder) WriteNetCDF(dir string) error {
	series, err := r.Results()
	if err != nil {
		return err
	}
	for _, name := range r.order {
		path := filepath.Join(dir, name+".nc")
		if err := writeSeriesFile(path, series[name], r.start); err != nil {
			return fmt.Errorf("gwcouple: writing %s: %v", path, err)
		}
	}
	return nil
}

// WriteNetCDF exports the run's diagnostics to dir, one NetCDF file per
// recorded variable. Only valid once the coupler is Terminated.
func (c *Coupler) WriteNetCDF(dir string) error {
	if c.state != Terminated {
		return configErrorf("NetCDF export requested in state %v", c.state)
	}
	return c.rec.WriteNetCDF(dir)
}

func writeSeriesFile(path string, s *Series, start time.Time) error {
	nsteps, nhru := s.Values.Shape[0], s.Values.Shape[1]

	h := cdf.NewHeader([]string{"time", "nhru"}, []int{nsteps, nhru})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "days since "+start.UTC().Format(timeUnitsFormat))
	h.AddVariable(s.Name, []string{"time", "nhru"}, []float64{0})
	h.AddAttribute(s.Name, "units", s.Units)
	h.AddAttribute(s.Name, "description", fmt.Sprintf("%s, one value per HRU per step", s.Name))
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("defining NetCDF header: %v", err)
	}

	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return err
	}

	w := f.Writer("time", []int{0}, []int{nsteps})
	if _, err := w.Write(s.Time); err != nil {
		return fmt.Errorf("writing time coordinate: %v", err)
	}
	w = f.Writer(s.Name, []int{0, 0}, []int{nsteps, nhru})
	if _, err := w.Write(s.Values.Elements); err != nil {
		return fmt.Errorf("writing values: %v", err)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("finalizing NetCDF file: %v", err)
	}
	return nil
}
