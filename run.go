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

package cloudsim

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// StatsWriter is a Stats that computes and writes its results only at
// selected times.
type StatsWriter interface {
	Stats

	// Begin starts a step at the given simulation time, enabling the
	// statistics if a record is due.
	Begin(time float64) error

	// End finishes the step, writing a record if one is due.
	End() error
}

// CreateStats registers the statistics of the microphysics scheme.
func CreateStats() DomainManipulator {
	return func(m *Model) error {
		return m.Micro.Create(m.Stats)
	}
}

// CheckMasks fails if the microphysics scheme can not provide one of the
// named statistics masks.
func CheckMasks(names ...string) DomainManipulator {
	return func(m *Model) error {
		for _, name := range names {
			if err := m.Micro.GetMask(m.Stats, name); err != nil {
				return err
			}
		}
		return nil
	}
}

// StatsBegin starts a statistics step if m.Stats is a StatsWriter.
func StatsBegin() DomainManipulator {
	return func(m *Model) error {
		if s, ok := m.Stats.(StatsWriter); ok {
			return s.Begin(m.Time)
		}
		return nil
	}
}

// StatsEnd finishes a statistics step if m.Stats is a StatsWriter.
func StatsEnd() DomainManipulator {
	return func(m *Model) error {
		if s, ok := m.Stats.(StatsWriter); ok {
			return s.End()
		}
		return nil
	}
}

// MicrophysicsExec adds the microphysical tendencies for the current step.
func MicrophysicsExec() DomainManipulator {
	return func(m *Model) error {
		return m.Micro.Exec(m.Thermo, m.Dt, m.Stats)
	}
}

// MicrophysicsStats reports the microphysics diagnostics when statistics
// are enabled.
func MicrophysicsStats() DomainManipulator {
	return func(m *Model) error {
		if !m.Stats.Enabled() {
			return nil
		}
		return m.Micro.ExecStats(m.Stats, m.Thermo, m.Dt)
	}
}

// Integrate advances every prognostic field over the interior of the
// domain with a forward Euler step and then zeroes the tendencies.
func Integrate() DomainManipulator {
	return func(m *Model) error {
		g := m.Grid
		for name, p := range m.Fields.AP {
			t, ok := m.Fields.AT[name]
			if !ok {
				return fmt.Errorf("cloudsim: no tendency for field %s", name)
			}
			a, at := p.Data.Elements, t.Data.Elements
			for k := g.Kstart; k < g.Kend; k++ {
				for j := g.Jstart; j < g.Jend; j++ {
					for i := g.Istart; i < g.Iend; i++ {
						ijk := g.Index(i, j, k)
						a[ijk] += m.Dt * at[ijk]
					}
				}
			}
		}
		m.Fields.ResetTendencies()
		return nil
	}
}

// ClipNegative sets negative interior values of the named prognostic
// fields to zero.
func ClipNegative(names ...string) DomainManipulator {
	return func(m *Model) error {
		g := m.Grid
		for _, name := range names {
			a, err := m.Fields.Prognostic(name)
			if err != nil {
				return err
			}
			for k := g.Kstart; k < g.Kend; k++ {
				for j := g.Jstart; j < g.Jend; j++ {
					for i := g.Istart; i < g.Iend; i++ {
						ijk := g.Index(i, j, k)
						if a.Elements[ijk] < 0 {
							a.Elements[ijk] = 0
						}
					}
				}
			}
		}
		return nil
	}
}

// AdvanceTime moves the simulation clock forward by one step.
func AdvanceTime() DomainManipulator {
	return func(m *Model) error {
		m.Time += m.Dt
		m.Iteration++
		return nil
	}
}

// AdaptTimestep sets the next time step to the smallest of maxDt, the
// microphysics time limit and the time remaining until endTime.
// If reduce is not nil, it is applied to the observed Courant number
// first, for example to take a maximum across subdomains.
func AdaptTimestep(maxDt, endTime float64, reduce func(float64) (float64, error)) DomainManipulator {
	return func(m *Model) error {
		if reduce != nil {
			if err := m.Micro.Stability().Reduce(reduce); err != nil {
				return err
			}
		}
		dt := math.Min(maxDt, m.Micro.TimeLimit(m.Dt))
		if remaining := endTime - m.Time; remaining > 0 && remaining < dt {
			dt = remaining
		}
		m.Dt = dt
		return nil
	}
}

// StopAtEndTime sets m.Done once the simulation time reaches endTime.
func StopAtEndTime(endTime float64) DomainManipulator {
	const tolerance = 1.e-9 // seconds
	return func(m *Model) error {
		if m.Time >= endTime-tolerance {
			m.Done = true
		}
		return nil
	}
}

// Log writes simulation status messages to l every n iterations and on
// the last iteration.
func Log(l logrus.FieldLogger, n int) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()
	if n < 1 {
		n = 1
	}
	return func(m *Model) error {
		if m.Iteration%n != 0 && !m.Done {
			return nil
		}
		l.WithFields(logrus.Fields{
			"iteration": m.Iteration,
			"time":      m.Time,
			"dt":        m.Dt,
			"cfl":       m.Micro.Stability().Value(),
			"walltime":  time.Since(startTime).Round(time.Millisecond).String(),
			"Δwalltime": time.Since(timeStepTime).Seconds(),
		}).Info("step")
		timeStepTime = time.Now()
		return nil
	}
}
