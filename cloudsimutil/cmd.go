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

// Package cloudsimutil contains the command-line interface and the run
// setup of cloudsim.
package cloudsimutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/cloudsim"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to cloudsim.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Grid.Itot",
			usage: `
              Grid.Itot is the number of grid cells in the x direction.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Jtot",
			usage: `
              Grid.Jtot is the number of grid cells in the y direction.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Ktot",
			usage: `
              Grid.Ktot is the number of vertical levels.`,
			defaultVal: 64,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Zsize",
			usage: `
              Grid.Zsize is the height of the domain [m]. Levels are
              evenly spaced.`,
			defaultVal: 3200.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Case.Name",
			usage: `
              Case.Name is the name of the built-in case providing the
              initial profiles. Options are "arm" (ARM shallow cumulus)
              and "rainshaft" (a layer of rain falling through dry air).`,
			defaultVal: "arm",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Case.InputFile",
			usage: `
              Case.InputFile is the path to a NetCDF file holding the
              initial profiles as variables "z", "thl", "qt" and
              optionally "qr", "qs" and "qg". If set, it is used instead
              of Case.Name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Thermo.Pbot",
			usage: `
              Thermo.Pbot is the surface pressure [Pa].`,
			defaultVal: 97000.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Micro.Nd",
			usage: `
              Micro.Nd is the cloud droplet number concentration [m-3].`,
			defaultVal: 50.e6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Micro.CFLMax",
			usage: `
              Micro.CFLMax is the largest Courant number of the falling
              hydrometeors that the time step may reach.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Micro.Processes",
			usage: `
              Micro.Processes are the microphysical processes to
              include. Options are "autoconversion", "collection" and
              "bergeron", which currently has no effect.`,
			defaultVal: []string{"autoconversion", "collection"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Micro.Sedimentation",
			usage: `
              Micro.Sedimentation is the sedimentation scheme. Options
              are "ss08" (Stevens and Seifert, 2008) and "upwind".`,
			defaultVal: "ss08",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Time.EndTime",
			usage: `
              Time.EndTime is the length of the simulation [s].`,
			defaultVal: 3600.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Time.Dt",
			usage: `
              Time.Dt is the first time step [s].`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Time.MaxDt",
			usage: `
              Time.MaxDt is the longest allowed time step [s].`,
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Stats.OutputFile",
			usage: `
              Stats.OutputFile is the path of the NetCDF statistics file
              to create, or to read when plotting. It can include
              environment variables.`,
			defaultVal: "cloudsim_stats.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Stats.Interval",
			usage: `
              Stats.Interval is the model time between statistics
              records [s].`,
			defaultVal: 60.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Stats.OutputVariables",
			usage: `
              Stats.OutputVariables specifies additional time series to
              write, as expressions of the surface precipitation rates
              "rr", "rs" and "rg". It should be in the format:
              '{"precip":"rr+rs+rg"}'.`,
			defaultVal: map[string]string{"precip": "rr+rs+rg"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Stats.Masks",
			usage: `
              Stats.Masks are the conditional statistics masks to
              request from the microphysics. The simulation stops
              before starting if one of them is not available.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumProcessors",
			usage: `
              NumProcessors is the number of goroutines to use for
              column calculations. If 0, all processors are used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If it
              is not specified, it is the statistics file name with the
              extension ".log". Set it to "-" to not write a log file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the lowest level of the log messages to write.
              Options are "debug", "info", "warning" and "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Plot.Variables",
			usage: `
              Plot.Variables are the time series to plot.`,
			defaultVal: []string{"precip"},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Plot.OutputFile",
			usage: `
              Plot.OutputFile is the path of the image to create. The
              format is chosen by the file extension, for example ".png",
              ".svg" or ".pdf".`,
			defaultVal: "cloudsim_stats.png",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "dump-config",
			usage: `
              dump-config writes the configuration of the simulation in
              TOML format instead of running it.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CLOUDSIM")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
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
	Root.AddCommand(plotCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cloudsim: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cloudsim",
	Short: "A cloud microphysics column model.",
	Long: `cloudsim simulates the formation, growth and fall of rain, snow and
graupel with a six-category bulk microphysics scheme.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CLOUDSIM_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores
(for example CLOUDSIM_GRID_KTOT).
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of cloudsim.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cloudsim v%s\n", cloudsim.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run runs a cloudsim simulation and writes horizontally averaged
statistics to a NetCDF file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		if Cfg.GetBool("dump-config") {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		}
		log, closeLog, err := NewLogger(cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}
		defer closeLog()
		return Run(cfg, log)
	},
	DisableAutoGenTag: true,
}

// plotCmd is a command that plots time series from a statistics file.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot statistics time series.",
	Long: `plot draws time series from a statistics file created by the run
command and saves the figure as an image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return PlotTimeSeries(
			os.ExpandEnv(Cfg.GetString("Stats.OutputFile")),
			os.ExpandEnv(Cfg.GetString("Plot.OutputFile")),
			nonEmpty(Cfg.GetStringSlice("Plot.Variables")),
		)
	},
	DisableAutoGenTag: true,
}
