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
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestReplaySurface(t *testing.T) {
	dir := writeTestSeries(t)
	rs, err := OpenReplayFile(filepath.Join(dir, "recharge.nc"))
	if err != nil {
		t.Fatal(err)
	}

	if rs.NHRU() != 2 || rs.NSteps() != 3 {
		t.Fatalf("replay shape: got {%d, %d}, want {3 steps, 2 HRUs}", rs.NSteps(), rs.NHRU())
	}
	if rs.StepDuration() != 24*time.Hour {
		t.Errorf("step duration: got %v, want 24h", rs.StepDuration())
	}
	if got := rs.CurrentTime(); !got.Equal(recorderStart) {
		t.Errorf("start time: got %v, want %v", got, recorderStart)
	}
	if u, err := rs.FieldUnits("recharge"); err != nil || u != "inches" {
		t.Errorf("units: got %q, %v", u, err)
	}

	want := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	for k, row := range want {
		if err := rs.Advance(); err != nil {
			t.Fatal(err)
		}
		v, err := rs.Field("recharge")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(v, row) {
			t.Errorf("step %d: got %v, want %v", k, v, row)
		}
	}
	if err := rs.Advance(); err == nil {
		t.Error("advancing past the recorded horizon should fail")
	}
	if err := rs.Finalize(); err != nil {
		t.Error(err)
	}
}

// TestReplayCoupling drives a full coupling from a recorded file into an
// accumulator, closing the loop between export and replay.
func TestReplayCoupling(t *testing.T) {
	dir := writeTestSeries(t)
	rs, err := OpenReplayFile(filepath.Join(dir, "recharge.nc"))
	if err != nil {
		t.Fatal(err)
	}

	gw := NewAccumulator(24*time.Hour, 5)
	gw.AddSlot("RECHARGE", "RCH-1", 2)

	c, err := New(Config{
		Surface:     rs,
		Groundwater: gw,
		Area:        []float64{1, 1},
		Converter:   unityConverter(t),
		Fields: []FieldDef{{
			Name:     "recharge",
			Expr:     "recharge",
			Units:    "inches",
			Target:   TargetRef{Variable: "RECHARGE", Package: "RCH-1"},
			Record:   true,
			Operator: identityOp(t, 2),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}

	if gw.Steps() != 3 {
		t.Errorf("accumulator steps: got %d, want 3", gw.Steps())
	}
	total, err := gw.Total("RECHARGE", "RCH-1")
	if err != nil {
		t.Fatal(err)
	}
	// Column sums of the recorded series.
	if want := []float64{9, 12}; !reflect.DeepEqual(total, want) {
		t.Errorf("accumulated totals: got %v, want %v", total, want)
	}
}

func TestAccumulatorFinalize(t *testing.T) {
	gw := NewAccumulator(24*time.Hour, 1)
	if err := gw.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Finalize(); err == nil {
		t.Error("double finalize should fail")
	}
	if err := gw.Update(); err == nil {
		t.Error("update after finalize should fail")
	}
}
