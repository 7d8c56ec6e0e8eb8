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
	"fmt"
	"log"
	"os"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hydromodel/gwcouple"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gwcouple.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "scenario",
			usage: `
              scenario specifies the scenario file describing the coupling
              run: replay input, units, weight files, and coupled fields.`,
			shorthand:  "s",
			defaultVal: "scenario.toml",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir overrides the scenario's diagnostic output directory.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Verbose",
			usage: `
              Verbose enables progress logging around the coupling loop.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GWCOUPLE")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(validateCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gwcouple",
	Short: "One-way surface-water to groundwater coupling driver.",
	Long: `gwcouple drives a one-way coupling of recorded land-surface hydrologic
simulator output into a groundwater flow model's input arrays: per step it
converts per-HRU depth fluxes to volumetric rates, remaps them onto the
groundwater discretizations with static weight operators, and records
diagnostics for NetCDF export.

Configuration can be changed by using a scenario file (via the --scenario
flag), by using command-line arguments, or by setting environment variables
in the format 'GWCOUPLE_var' where 'var' is the name of the variable to be
set.`,
	DisableAutoGenTag: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gwcouple.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("gwcouple v%s\n", gwcouple.Version)
	},
	DisableAutoGenTag: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario without running it.",
	Long: `validate loads the scenario, builds the operators, and runs the
coupler's pre-run consistency checks: horizon and step-size agreement,
operator shapes, slot resolution, and field unit validation. Neither
simulator is advanced.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cast.ToStringE(Cfg.Get("scenario"))
		if err != nil {
			return err
		}
		s, err := LoadScenario(path)
		if err != nil {
			return err
		}
		c, _, err := s.Assemble(runLogger())
		if err != nil {
			return err
		}
		if err := c.Init(); err != nil {
			return err
		}
		cmd.Printf("scenario ok: %d steps\n", c.NSteps())
		return nil
	},
}

// runLogger returns the coupler's progress logger, or nil unless --verbose.
func runLogger() *log.Logger {
	if Cfg.GetBool("Verbose") {
		return log.New(os.Stderr, "gwcouple: ", log.LstdFlags)
	}
	return nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a replay coupling.",
	Long: `run executes the coupling loop against the scenario's recorded
surface-simulator output, accumulating what would be written into the
groundwater model, and exports the recorded diagnostics as one NetCDF file
per variable.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cast.ToStringE(Cfg.Get("scenario"))
		if err != nil {
			return err
		}
		s, err := LoadScenario(path)
		if err != nil {
			return err
		}
		if dir := Cfg.GetString("OutputDir"); dir != "" {
			s.OutputDir = dir
		}
		if s.OutputDir == "" {
			return fmt.Errorf("gwcoupleutil: no output directory configured")
		}

		c, _, err := s.Assemble(runLogger())
		if err != nil {
			return err
		}
		if err := c.Init(); err != nil {
			return err
		}
		if err := c.Run(); err != nil {
			return err
		}
		if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
			return fmt.Errorf("gwcoupleutil: creating output directory: %v", err)
		}
		return c.WriteNetCDF(s.OutputDir)
	},
}
