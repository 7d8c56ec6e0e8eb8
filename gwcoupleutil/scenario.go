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

// Package gwcoupleutil holds the scenario-configuration and command-line
// plumbing for the gwcouple program. All configuration resolves into
// explicit structs handed to the coupler; nothing here relies on ambient
// process state.
package gwcoupleutil

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/unit"

	"github.com/hydromodel/gwcouple"
	"github.com/hydromodel/gwcouple/weights"
)

// PartitionConfig describes one target discretization of the groundwater
// model. The remap operator comes either from a weight file or from
// polygon-overlap against the HRU shapefile, not both.
type PartitionConfig struct {
	// N is the number of units in this partition (cells or reaches) in a
	// single layer.
	N int

	// WeightsFile is a three-column HRU-to-target weight file.
	WeightsFile string

	// Shapefile holds this partition's polygons, for overlap-derived
	// weights. Requires the scenario's HRUShapefile.
	Shapefile string
}

// FieldConfig declares one coupled field in a scenario file.
type FieldConfig struct {
	Name  string
	Expr  string
	Units string

	// Partition selects the remap target: "grid" or "streams".
	Partition string

	// Variable and Package name the groundwater slot; Layer is the
	// zero-based vertical layer written.
	Variable string
	Package  string
	Layer    int

	Record          bool
	RecordConverted bool
}

// Scenario is the on-disk description of a coupling run, decoded from TOML.
// Relative paths are resolved against the scenario file's directory.
type Scenario struct {
	// ReplayFile is the NetCDF file of recorded surface-simulator output
	// that drives the run.
	ReplayFile string

	// OutputDir receives one NetCDF file per recorded diagnostic variable.
	OutputDir string

	// DepthUnit is the surface simulator's depth-flux unit: "inch", "foot",
	// or "meter". AreaUnit is the HRU area unit: "acre" or "m2".
	DepthUnit string
	AreaUnit  string

	// AreaFile holds the per-HRU area vector, one value per HRU.
	AreaFile string

	// NHRU is the expected HRU count; the replay file must agree.
	NHRU int

	// HRUShapefile holds the HRU polygons for overlap-derived operators.
	HRUShapefile string

	Grid    PartitionConfig
	Streams PartitionConfig

	Fields []FieldConfig
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	var s Scenario
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("gwcoupleutil: reading scenario %s: %v", path, err)
	}
	dir := filepath.Dir(path)
	for _, p := range []*string{&s.ReplayFile, &s.OutputDir, &s.AreaFile, &s.HRUShapefile,
		&s.Grid.WeightsFile, &s.Grid.Shapefile, &s.Streams.WeightsFile, &s.Streams.Shapefile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, os.ExpandEnv(*p))
		}
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) check() error {
	if s.ReplayFile == "" {
		return fmt.Errorf("gwcoupleutil: scenario: no ReplayFile")
	}
	if s.NHRU <= 0 {
		return fmt.Errorf("gwcoupleutil: scenario: NHRU must be positive")
	}
	if s.AreaFile == "" {
		return fmt.Errorf("gwcoupleutil: scenario: no AreaFile")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("gwcoupleutil: scenario: no fields")
	}
	for _, f := range s.Fields {
		switch f.Partition {
		case "grid", "streams":
		default:
			return fmt.Errorf("gwcoupleutil: scenario: field %s: partition %q, want \"grid\" or \"streams\"",
				f.Name, f.Partition)
		}
	}
	return nil
}

// depthUnits maps scenario unit names to their scale in meters, and
// areaUnits to their scale in square meters.
var depthUnits = map[string]*unit.Unit{
	"inch":  gwcouple.Inch,
	"in":    gwcouple.Inch,
	"foot":  gwcouple.Foot,
	"ft":    gwcouple.Foot,
	"meter": gwcouple.Meter,
	"m":     gwcouple.Meter,
}

var areaUnits = map[string]*unit.Unit{
	"acre": gwcouple.Acre,
	"m2":   gwcouple.SquareMeter,
	"m**2": gwcouple.SquareMeter,
}

// Converter builds the scenario's unit converter.
func (s *Scenario) Converter() (*gwcouple.Converter, error) {
	d, ok := depthUnits[s.DepthUnit]
	if !ok {
		return nil, fmt.Errorf("gwcoupleutil: scenario: unknown depth unit %q", s.DepthUnit)
	}
	a, ok := areaUnits[s.AreaUnit]
	if !ok {
		return nil, fmt.Errorf("gwcoupleutil: scenario: unknown area unit %q", s.AreaUnit)
	}
	return gwcouple.NewConverter(d, a)
}

// operator builds the remap operator for one partition.
func (s *Scenario) operator(p PartitionConfig, name string) (*gwcouple.Operator, error) {
	switch {
	case p.WeightsFile != "" && p.Shapefile != "":
		return nil, fmt.Errorf("gwcoupleutil: scenario: %s: both WeightsFile and Shapefile given", name)
	case p.WeightsFile != "":
		return weights.Load(p.WeightsFile, p.N, s.NHRU)
	case p.Shapefile != "":
		if s.HRUShapefile == "" {
			return nil, fmt.Errorf("gwcoupleutil: scenario: %s: Shapefile given but no HRUShapefile", name)
		}
		hrus, err := weights.ReadPolygons(s.HRUShapefile)
		if err != nil {
			return nil, err
		}
		if len(hrus) != s.NHRU {
			return nil, fmt.Errorf("gwcoupleutil: scenario: HRU shapefile holds %d polygons, want %d",
				len(hrus), s.NHRU)
		}
		targets, err := weights.ReadPolygons(p.Shapefile)
		if err != nil {
			return nil, err
		}
		if len(targets) != p.N {
			return nil, fmt.Errorf("gwcoupleutil: scenario: %s shapefile holds %d polygons, want %d",
				name, len(targets), p.N)
		}
		return weights.FromOverlap(targets, hrus)
	}
	return nil, fmt.Errorf("gwcoupleutil: scenario: %s: no WeightsFile or Shapefile", name)
}

// Assemble builds a ready-to-Init coupler from the scenario: a replay
// surface model driven by the recorded simulator output, and an accumulator
// standing in for the groundwater engine. The returned coupler owns both.
func (s *Scenario) Assemble(logger *log.Logger) (*gwcouple.Coupler, *gwcouple.Accumulator, error) {
	surface, err := gwcouple.OpenReplayFile(s.ReplayFile)
	if err != nil {
		return nil, nil, err
	}
	if surface.NHRU() != s.NHRU {
		surface.Finalize()
		return nil, nil, fmt.Errorf("gwcoupleutil: replay file has %d HRUs, scenario declares %d",
			surface.NHRU(), s.NHRU)
	}

	area, err := weights.LoadVector(s.AreaFile, s.NHRU)
	if err != nil {
		surface.Finalize()
		return nil, nil, err
	}
	conv, err := s.Converter()
	if err != nil {
		surface.Finalize()
		return nil, nil, err
	}

	var gridOp, streamOp *gwcouple.Operator
	endDays := float64(surface.NSteps()) * surface.StepDuration().Hours() / 24
	gw := gwcouple.NewAccumulator(surface.StepDuration(), endDays)

	// Several fields may target different layers of the same slot, so the
	// slot is allocated once, sized for the deepest layer any of them names.
	var defs []gwcouple.FieldDef
	slotLen := make(map[string]int)
	ops := make([]*gwcouple.Operator, len(s.Fields))
	for i, f := range s.Fields {
		var op *gwcouple.Operator
		switch f.Partition {
		case "grid":
			if gridOp == nil {
				if gridOp, err = s.operator(s.Grid, "Grid"); err != nil {
					surface.Finalize()
					return nil, nil, err
				}
			}
			op = gridOp
		case "streams":
			if streamOp == nil {
				if streamOp, err = s.operator(s.Streams, "Streams"); err != nil {
					surface.Finalize()
					return nil, nil, err
				}
			}
			op = streamOp
		}
		ops[i] = op
		key := f.Package + "/" + f.Variable
		if n := (f.Layer + 1) * op.Rows(); n > slotLen[key] {
			slotLen[key] = n
		}
	}
	for i, f := range s.Fields {
		key := f.Package + "/" + f.Variable
		if n, ok := slotLen[key]; ok {
			gw.AddSlot(f.Variable, f.Package, n)
			delete(slotLen, key)
		}
		defs = append(defs, gwcouple.FieldDef{
			Name:            f.Name,
			Expr:            f.Expr,
			Units:           f.Units,
			Target:          gwcouple.TargetRef{Variable: f.Variable, Package: f.Package, Layer: f.Layer},
			Record:          f.Record,
			RecordConverted: f.RecordConverted,
			Operator:        ops[i],
		})
	}

	c, err := gwcouple.New(gwcouple.Config{
		Surface:     surface,
		Groundwater: gw,
		Area:        area,
		Converter:   conv,
		Fields:      defs,
		Log:         logger,
	})
	if err != nil {
		surface.Finalize()
		return nil, nil, err
	}
	return c, gw, nil
}
