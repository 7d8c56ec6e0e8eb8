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
	"testing"
	"time"
)

var recorderStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRecorderRoundTrip(t *testing.T) {
	r, err := NewRecorder(recorderStart, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.AddVariable("recharge", "inches"); err != nil {
		t.Fatal(err)
	}
	rows := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	for k, row := range rows {
		ts := recorderStart.AddDate(0, 0, k+1)
		if err := r.Record(k, ts, "recharge", row); err != nil {
			t.Fatal(err)
		}
	}
	r.finish()

	results, err := r.Results()
	if err != nil {
		t.Fatal(err)
	}
	s := results["recharge"]
	if s == nil {
		t.Fatal("no recharge series")
	}
	if s.Units != "inches" {
		t.Errorf("units: got %q, want %q", s.Units, "inches")
	}
	if len(s.Time) != 3 {
		t.Fatalf("got %d time entries, want 3", len(s.Time))
	}
	for k, row := range rows {
		if s.Time[k] != float64(k+1) {
			t.Errorf("time[%d] = %g, want %d", k, s.Time[k], k+1)
		}
		for i, v := range row {
			if got := s.Values.Get(k, i); got != v {
				t.Errorf("values[%d][%d] = %g, want %g", k, i, got, v)
			}
		}
	}
}

func TestRecorderBounds(t *testing.T) {
	r, err := NewRecorder(recorderStart, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.AddVariable("v", ""); err != nil {
		t.Fatal(err)
	}
	var boundsErr *BoundsError
	if err := r.Record(3, recorderStart, "v", []float64{1, 2}); !errors.As(err, &boundsErr) {
		t.Errorf("write at capacity: expected a BoundsError, got %v", err)
	}
	if err := r.Record(-1, recorderStart, "v", []float64{1, 2}); !errors.As(err, &boundsErr) {
		t.Errorf("negative step: expected a BoundsError, got %v", err)
	}
	if err := r.Record(0, recorderStart, "v", []float64{1}); !errors.As(err, &boundsErr) {
		t.Errorf("short vector: expected a BoundsError, got %v", err)
	}
	if err := r.Record(0, recorderStart, "undeclared", []float64{1, 2}); err == nil {
		t.Error("writing an undeclared variable should fail")
	}
}

func TestRecorderStateGating(t *testing.T) {
	r, err := NewRecorder(recorderStart, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.AddVariable("v", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Results(); err == nil {
		t.Error("results before termination should fail")
	}
	if err := r.AddVariable("v", ""); err == nil {
		t.Error("declaring a variable twice should fail")
	}
	if _, err := NewRecorder(recorderStart, 0, 1); err == nil {
		t.Error("zero steps should be rejected")
	}
}
