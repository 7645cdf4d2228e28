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

import "fmt"

// DomainManipulator is a function that changes the state of a Model.
type DomainManipulator func(m *Model) error

// Model holds the current state of a simulation.
type Model struct {
	Grid   *Grid
	Fields *Fields
	Thermo Thermo
	Micro  Microphysics
	Stats  Stats // may be nil when statistics are not needed

	Time      float64 // seconds since the start of the simulation
	Dt        float64 // current time step [s]
	Iteration int

	// Done is set to true when the simulation is finished.
	Done bool

	// InitFuncs are run once at the start of the simulation, RunFuncs
	// are run in order at every time step until Done is true, and
	// CleanupFuncs are run once at the end.
	InitFuncs, RunFuncs, CleanupFuncs []DomainManipulator
}

// Init initializes the simulation by running m.InitFuncs.
func (m *Model) Init() error {
	if m.Stats == nil {
		m.Stats = NopStats{}
	}
	for i, f := range m.InitFuncs {
		if err := f(m); err != nil {
			return fmt.Errorf("cloudsim: initialization function %d: %w", i, err)
		}
	}
	return nil
}

// Run carries out the simulation by running m.RunFuncs until m.Done is
// true.
func (m *Model) Run() error {
	if m.Stats == nil {
		m.Stats = NopStats{}
	}
	for !m.Done {
		for _, f := range m.RunFuncs {
			if err := f(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running m.CleanupFuncs.
func (m *Model) Cleanup() error {
	for _, f := range m.CleanupFuncs {
		if err := f(m); err != nil {
			return err
		}
	}
	return nil
}
