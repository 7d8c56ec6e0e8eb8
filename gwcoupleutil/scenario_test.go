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

package gwcoupleutil

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
)

// writeReplayNC writes a 3-step, 2-HRU recorded surface output file holding
// one variable named "recharge" in meters.
func writeReplayNC(t *testing.T, path string) {
	t.Helper()
	h := cdf.NewHeader([]string{"time", "nhru"}, []int{3, 2})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "days since 2000-01-01 00:00:00")
	h.AddVariable("recharge", []string{"time", "nhru"}, []float64{0})
	h.AddAttribute("recharge", "units", "meters")
	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	w := f.Writer("time", []int{0}, []int{3})
	if _, err := w.Write([]float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	w = f.Writer("recharge", []int{0, 0}, []int{3, 2})
	if _, err := w.Write([]float64{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
}

// writeScenarioDir lays out a complete runnable scenario in a temp directory
// and returns the scenario file path.
func writeScenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeReplayNC(t, filepath.Join(dir, "recharge.nc"))
	files := map[string]string{
		"area.txt": "1.0 2.0\n",
		"grid.wts": "0 0 1.0\n1 1 1.0\n",
		"scenario.toml": `ReplayFile = "recharge.nc"
OutputDir = "out"
DepthUnit = "meter"
AreaUnit = "m2"
AreaFile = "area.txt"
NHRU = 2

[Grid]
N = 2
WeightsFile = "grid.wts"

[[Fields]]
Name = "recharge"
Expr = "recharge"
Units = "meters"
Partition = "grid"
Variable = "RECHARGE"
Package = "RCH-1"
Record = true
`,
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "scenario.toml")
}

func TestLoadScenario(t *testing.T) {
	path := writeScenarioDir(t)
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if s.ReplayFile != filepath.Join(dir, "recharge.nc") {
		t.Errorf("ReplayFile = %q, want it resolved under %q", s.ReplayFile, dir)
	}
	if s.Grid.WeightsFile != filepath.Join(dir, "grid.wts") {
		t.Errorf("Grid.WeightsFile = %q, want it resolved under %q", s.Grid.WeightsFile, dir)
	}
	if s.NHRU != 2 || s.Grid.N != 2 {
		t.Errorf("NHRU = %d, Grid.N = %d, want 2 and 2", s.NHRU, s.Grid.N)
	}
	if len(s.Fields) != 1 || s.Fields[0].Name != "recharge" {
		t.Fatalf("fields = %+v, want one field named recharge", s.Fields)
	}
}

func TestLoadScenarioInvalid(t *testing.T) {
	tests := []struct {
		name, contents, wantErr string
	}{
		{"noReplay", "AreaFile = \"a\"\nNHRU = 2\n[[Fields]]\nPartition = \"grid\"\n", "ReplayFile"},
		{"noHRU", "ReplayFile = \"r\"\nAreaFile = \"a\"\n[[Fields]]\nPartition = \"grid\"\n", "NHRU"},
		{"noArea", "ReplayFile = \"r\"\nNHRU = 2\n[[Fields]]\nPartition = \"grid\"\n", "AreaFile"},
		{"noFields", "ReplayFile = \"r\"\nNHRU = 2\nAreaFile = \"a\"\n", "no fields"},
		{"badPartition", "ReplayFile = \"r\"\nNHRU = 2\nAreaFile = \"a\"\n[[Fields]]\nName = \"x\"\nPartition = \"basin\"\n", "partition"},
	}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "scenario.toml")
		if err := os.WriteFile(path, []byte(test.contents), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadScenario(path)
		if err == nil {
			t.Errorf("%s: want error, got nil", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.wantErr) {
			t.Errorf("%s: error %q does not mention %q", test.name, err, test.wantErr)
		}
	}
}

func TestScenarioConverter(t *testing.T) {
	s := &Scenario{DepthUnit: "inch", AreaUnit: "acre"}
	c, err := s.Converter()
	if err != nil {
		t.Fatal(err)
	}
	want := 0.0254 * 4046.8564224
	if got := c.Factor(); math.Abs(got-want) > 1e-9 {
		t.Errorf("inch-acre factor = %g, want %g", got, want)
	}
	s.DepthUnit = "furlong"
	if _, err := s.Converter(); err == nil {
		t.Error("unknown depth unit: want error, got nil")
	}
	s.DepthUnit, s.AreaUnit = "inch", "hectare"
	if _, err := s.Converter(); err == nil {
		t.Error("unknown area unit: want error, got nil")
	}
}

func TestScenarioOperatorExclusive(t *testing.T) {
	s := &Scenario{NHRU: 2}
	_, err := s.operator(PartitionConfig{N: 2, WeightsFile: "a", Shapefile: "b"}, "Grid")
	if err == nil || !strings.Contains(err.Error(), "both") {
		t.Errorf("want both-sources error, got %v", err)
	}
	_, err = s.operator(PartitionConfig{N: 2}, "Grid")
	if err == nil {
		t.Error("no source: want error, got nil")
	}
}

func TestScenarioAssembleRun(t *testing.T) {
	path := writeScenarioDir(t)
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	c, gw, err := s.Assemble(nil)
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
		t.Errorf("groundwater updates = %d, want 3", gw.Steps())
	}
	// Depth in meters times area in m**2: per-step volumes are {1, 4},
	// {3, 8}, {5, 12} m**3/d through the identity operator.
	total, err := gw.Total("RECHARGE", "RCH-1")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{9, 24}
	for i, w := range want {
		if math.Abs(total[i]-w) > 1e-12 {
			t.Errorf("total[%d] = %g, want %g", i, total[i], w)
		}
	}

	if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteNetCDF(s.OutputDir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(s.OutputDir, "recharge.nc")); err != nil {
		t.Errorf("expected exported diagnostics: %v", err)
	}
}

func TestScenarioSharedSlot(t *testing.T) {
	// Two fields target different layers of the same slot. The slot must be
	// sized for the deeper of the two no matter which is declared first.
	dir := t.TempDir()
	writeReplayNC(t, filepath.Join(dir, "recharge.nc"))
	files := map[string]string{
		"area.txt": "1.0 2.0\n",
		"grid.wts": "0 0 1.0\n1 1 1.0\n",
		"scenario.toml": `ReplayFile = "recharge.nc"
OutputDir = "out"
DepthUnit = "meter"
AreaUnit = "m2"
AreaFile = "area.txt"
NHRU = 2

[Grid]
N = 2
WeightsFile = "grid.wts"

[[Fields]]
Name = "recharge_deep"
Expr = "recharge"
Units = "meters"
Partition = "grid"
Variable = "RECHARGE"
Package = "RCH-1"
Layer = 1

[[Fields]]
Name = "recharge"
Expr = "recharge"
Units = "meters"
Partition = "grid"
Variable = "RECHARGE"
Package = "RCH-1"
Layer = 0
`,
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := LoadScenario(filepath.Join(dir, "scenario.toml"))
	if err != nil {
		t.Fatal(err)
	}
	c, gw, err := s.Assemble(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	total, err := gw.Total("RECHARGE", "RCH-1")
	if err != nil {
		t.Fatal(err)
	}
	// Both layers of the shared slot receive the same per-step volumes.
	want := []float64{9, 24, 9, 24}
	if len(total) != len(want) {
		t.Fatalf("slot length = %d, want %d", len(total), len(want))
	}
	for i, w := range want {
		if math.Abs(total[i]-w) > 1e-12 {
			t.Errorf("total[%d] = %g, want %g", i, total[i], w)
		}
	}
}
