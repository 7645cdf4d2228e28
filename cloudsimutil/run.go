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
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cloudsim"
	"github.com/spatialmodel/cloudsim/internal/hash"
	"github.com/spatialmodel/cloudsim/science/microphys/nsw6"
	"github.com/spatialmodel/cloudsim/science/thermo/moist"
	"github.com/spatialmodel/cloudsim/stats"
)

// logInterval is the number of iterations between progress messages.
const logInterval = 100

// NewLogger returns a logger writing to out and, if cfg.LogFile is set,
// to that file. The returned function closes the log file.
func NewLogger(out io.Writer, cfg *Config) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("cloudsim: LogLevel: %v", err)
	}
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	l.Level = level
	l.Out = out
	if cfg.LogFile == "" {
		return l, func() error { return nil }, nil
	}
	logfile, err := os.Create(cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cloudsim: problem creating log file: %v", err)
	}
	l.Out = io.MultiWriter(out, logfile)
	return l, logfile.Close, nil
}

// NewModel sets up a simulation from cfg without running it.
func NewModel(cfg *Config, log logrus.FieldLogger) (*cloudsim.Model, *stats.Writer, error) {
	g, err := cloudsim.NewGrid(cfg.Grid.Itot, cfg.Grid.Jtot, cfg.Grid.Ktot, cfg.Grid.Zsize)
	if err != nil {
		return nil, nil, err
	}
	f := cloudsim.NewFields(g)

	prof, err := LoadCase(cfg.Case, g.Z[g.Kstart:g.Kend])
	if err != nil {
		return nil, nil, err
	}
	th, err := moist.New(f, cfg.Thermo.Pbot, prof.Thl, prof.Qt)
	if err != nil {
		return nil, nil, err
	}
	th.NumProcessors = cfg.NumProcessors

	procs, err := nsw6.ParseProcessSet(cfg.Micro.Processes)
	if err != nil {
		return nil, nil, err
	}
	micro, err := nsw6.New(f, nsw6.Config{
		Nd:            cfg.Micro.Nd,
		CFLMax:        cfg.Micro.CFLMax,
		Processes:     procs,
		Sedimentation: cfg.Micro.Sedimentation,
		NumProcessors: cfg.NumProcessors,
		Log:           log,
	})
	if err != nil {
		return nil, nil, err
	}
	for name, p := range map[string][]float64{"qr": prof.Qr, "qs": prof.Qs, "qg": prof.Qg} {
		if err := setProfile(f, name, p); err != nil {
			return nil, nil, err
		}
	}

	s, err := stats.New(cfg.Stats.OutputFile, g, cfg.Stats.Interval, cfg.Stats.OutputVariables, log)
	if err != nil {
		return nil, nil, err
	}
	s.RunID = hash.RunID(*cfg)

	m := &cloudsim.Model{
		Grid:   g,
		Fields: f,
		Thermo: th,
		Micro:  micro,
		Stats:  s,
		Dt:     cfg.Time.Dt,
		InitFuncs: []cloudsim.DomainManipulator{
			cloudsim.CreateStats(),
			cloudsim.CheckMasks(cfg.Stats.Masks...),
			openStats(s),
			cloudsim.StopAtEndTime(cfg.Time.EndTime),
		},
		RunFuncs: []cloudsim.DomainManipulator{
			cloudsim.StatsBegin(),
			cloudsim.MicrophysicsExec(),
			cloudsim.MicrophysicsStats(),
			cloudsim.StatsEnd(),
			cloudsim.Integrate(),
			cloudsim.ClipNegative("qt", "qr", "qs", "qg"),
			cloudsim.AdvanceTime(),
			cloudsim.StopAtEndTime(cfg.Time.EndTime),
			cloudsim.AdaptTimestep(cfg.Time.MaxDt, cfg.Time.EndTime, nil),
			cloudsim.Log(log, logInterval),
		},
		CleanupFuncs: []cloudsim.DomainManipulator{
			func(*cloudsim.Model) error { return s.Close() },
		},
	}
	return m, s, nil
}

// openStats creates the statistics file once every variable has been
// registered.
func openStats(s *stats.Writer) cloudsim.DomainManipulator {
	return func(*cloudsim.Model) error {
		return s.Open()
	}
}

// setProfile sets the interior of prognostic field name to the profile
// p, if p is not nil.
func setProfile(f *cloudsim.Fields, name string, p []float64) error {
	if p == nil {
		return nil
	}
	a, err := f.Prognostic(name)
	if err != nil {
		return err
	}
	g := f.Grid
	if len(p) != g.Ktot {
		return fmt.Errorf("cloudsim: %s profile has %d levels but the grid has %d", name, len(p), g.Ktot)
	}
	for k := g.Kstart; k < g.Kend; k++ {
		for j := g.Jstart; j < g.Jend; j++ {
			for i := g.Istart; i < g.Iend; i++ {
				a.Elements[g.Index(i, j, k)] = p[k-g.Kstart]
			}
		}
	}
	return nil
}

// Run carries out the simulation specified by cfg.
func Run(cfg *Config, log logrus.FieldLogger) error {
	m, s, err := NewModel(cfg, log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"run_id":        s.RunID,
		"grid":          fmt.Sprintf("%dx%dx%d", cfg.Grid.Itot, cfg.Grid.Jtot, cfg.Grid.Ktot),
		"case":          caseName(cfg.Case),
		"processes":     cfg.Micro.Processes,
		"sedimentation": cfg.Micro.Sedimentation,
	}).Info("starting simulation")

	if err := m.Init(); err != nil {
		s.Close()
		return err
	}
	if err := m.Run(); err != nil {
		s.Close()
		return err
	}
	if err := m.Cleanup(); err != nil {
		return err
	}
	s.LogSummary(log)
	log.WithField("output", cfg.Stats.OutputFile).Info("simulation complete")
	return nil
}

func caseName(c CaseConfig) string {
	if c.InputFile != "" {
		return c.InputFile
	}
	return c.Name
}
