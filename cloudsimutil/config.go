/*
Copyright © 2019 the cloudsim authors.
This file is part of cloudsim.

cloudsim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cloudsim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cloudsim.  If not, see <http://www.gnu.org/licenses/>.
*/

package cloudsimutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cloudsim/science/microphys/nsw6"
	"github.com/spf13/cast"
)

// GridConfig holds the grid dimensions.
type GridConfig struct {
	Itot, Jtot, Ktot int
	Zsize            float64 // [m]
}

// CaseConfig selects the initial profiles.
type CaseConfig struct {
	Name      string
	InputFile string `toml:",omitempty"`
}

// ThermoConfig holds the settings of the thermodynamics.
type ThermoConfig struct {
	Pbot float64 // [Pa]
}

// MicroConfig holds the settings of the microphysics.
type MicroConfig struct {
	Nd            float64 // [m-3]
	CFLMax        float64
	Processes     []string
	Sedimentation string
}

// TimeConfig holds the time stepping settings [s].
type TimeConfig struct {
	EndTime, Dt, MaxDt float64
}

// StatsConfig holds the settings of the statistics output.
type StatsConfig struct {
	OutputFile      string
	Interval        float64 // [s]
	OutputVariables map[string]string
	Masks           []string
}

// Config holds the configuration of a simulation.
type Config struct {
	Grid   GridConfig
	Case   CaseConfig
	Thermo ThermoConfig
	Micro  MicroConfig
	Time   TimeConfig
	Stats  StatsConfig

	NumProcessors int
	LogFile       string `toml:",omitempty"`
	LogLevel      string
}

// LoadConfig reads a simulation configuration from cfg and checks it.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	outputVars, err := GetStringMapString("Stats.OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	outputFile, err := checkOutputFile(cfg.GetString("Stats.OutputFile"))
	if err != nil {
		return nil, err
	}
	c := Config{
		Grid: GridConfig{
			Itot:  cfg.GetInt("Grid.Itot"),
			Jtot:  cfg.GetInt("Grid.Jtot"),
			Ktot:  cfg.GetInt("Grid.Ktot"),
			Zsize: cfg.GetFloat64("Grid.Zsize"),
		},
		Case: CaseConfig{
			Name:      cfg.GetString("Case.Name"),
			InputFile: os.ExpandEnv(cfg.GetString("Case.InputFile")),
		},
		Thermo: ThermoConfig{Pbot: cfg.GetFloat64("Thermo.Pbot")},
		Micro: MicroConfig{
			Nd:            cfg.GetFloat64("Micro.Nd"),
			CFLMax:        cfg.GetFloat64("Micro.CFLMax"),
			Processes:     nonEmpty(cfg.GetStringSlice("Micro.Processes")),
			Sedimentation: cfg.GetString("Micro.Sedimentation"),
		},
		Time: TimeConfig{
			EndTime: cfg.GetFloat64("Time.EndTime"),
			Dt:      cfg.GetFloat64("Time.Dt"),
			MaxDt:   cfg.GetFloat64("Time.MaxDt"),
		},
		Stats: StatsConfig{
			OutputFile:      outputFile,
			Interval:        cfg.GetFloat64("Stats.Interval"),
			OutputVariables: checkOutputVars(outputVars),
			Masks:           nonEmpty(cfg.GetStringSlice("Stats.Masks")),
		},
		NumProcessors: cfg.GetInt("NumProcessors"),
		LogFile:       checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), outputFile),
		LogLevel:      cfg.GetString("LogLevel"),
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// check returns an error for settings the simulation can not run with.
func (c *Config) check() error {
	ints := []int{c.Grid.Itot, c.Grid.Jtot, c.Grid.Ktot}
	intNames := []string{"Grid.Itot", "Grid.Jtot", "Grid.Ktot"}
	for i, v := range ints {
		if v < 1 {
			return fmt.Errorf("cloudsim: %s=%d but should be >0", intNames[i], v)
		}
	}
	vars := []float64{c.Grid.Zsize, c.Thermo.Pbot, c.Micro.Nd, c.Micro.CFLMax, c.Time.Dt, c.Time.MaxDt, c.Stats.Interval}
	varNames := []string{"Grid.Zsize", "Thermo.Pbot", "Micro.Nd", "Micro.CFLMax", "Time.Dt", "Time.MaxDt", "Stats.Interval"}
	for i, v := range vars {
		if !(v > 0) {
			return fmt.Errorf("cloudsim: %s=%g but should be >0", varNames[i], v)
		}
	}
	if c.Time.EndTime < 0 {
		return fmt.Errorf("cloudsim: Time.EndTime=%g but should be >=0", c.Time.EndTime)
	}
	if _, err := nsw6.ParseProcessSet(c.Micro.Processes); err != nil {
		return err
	}
	if _, err := nsw6.SedimentationScheme(c.Micro.Sedimentation); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("cloudsim: LogLevel: %v", err)
	}
	return nil
}

// checkOutputVars removes end lines from the output variable
// expressions and expands environment variables in them.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile makes sure the directory of the output file exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`cloudsim: you need to specify an output file configuration variable (for example: Stats.OutputFile="stats.nc")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("cloudsim: the Stats.OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile returns "" if logFile is "-", meaning no log file, and
// a name next to the output file if logFile is not set.
func checkLogFile(logFile, outputFile string) string {
	switch logFile {
	case "-":
		return ""
	case "":
		return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// nonEmpty returns the non-empty strings in s.
func nonEmpty(s []string) []string {
	o := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			o = append(o, v)
		}
	}
	return o
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a JSON string if it was set
// from a command line flag or environment variable.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapString(v), nil
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("cloudsim: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("cloudsim: invalid type for %s: %#v", varName, i)
	}
}
