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

// Package cloudsim is a framework for running bulk cloud-microphysics
// parameterizations on a structured grid. It provides the grid and field
// storage, the interfaces that thermodynamics, statistics and microphysics
// modules implement, and a simple host time-integration loop.
package cloudsim

import (
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// Version gives the version number.
const Version = "0.3.0"

// Microphysics is an interface for bulk cloud-microphysics schemes.
type Microphysics interface {
	// Create registers the statistics that the scheme reports.
	Create(s Stats) error

	// Exec adds the microphysical tendencies for time step dt to the
	// tendency fields and updates the scheme's Courant number.
	Exec(th Thermo, dt float64, s Stats) error

	// ExecStats reports the scheme's diagnostics to s.
	ExecStats(s Stats, th Thermo, dt float64) error

	// TimeLimit returns the recommended bound on the next time step
	// given the current step dt.
	TimeLimit(dt float64) float64

	// Stability returns the controller holding the Courant number
	// observed during the last call to Exec.
	Stability() *CFLController

	// HasMask reports whether the scheme can provide the named
	// statistics mask.
	HasMask(name string) bool

	// GetMask computes the named statistics mask, or returns an error
	// if the scheme can not provide it.
	GetMask(s Stats, name string) error
}

// Thermo is an interface for the thermodynamics module that diagnoses
// temperature and condensate from the prognostic fields.
type Thermo interface {
	// ThermoField fills dst with the named diagnostic field. Valid
	// names may vary between implementations but include "ql" (liquid
	// water), "qi" (ice) and "T" (temperature).
	ThermoField(dst *sparse.DenseArray, name string) error

	// Pressure returns the reference pressure at full levels [Pa].
	Pressure() []float64

	// ExnerRef returns the reference exner function at full levels.
	ExnerRef() []float64

	// EsatLiq returns the saturation vapor pressure over liquid water
	// at temperature T [K].
	EsatLiq(T float64) float64

	// EsatIce returns the saturation vapor pressure over ice at
	// temperature T [K].
	EsatIce(T float64) float64
}

// Stats is an interface for statistics output.
type Stats interface {
	// Enabled reports whether statistics are being computed during
	// the current step.
	Enabled() bool

	// AddTimeSeries registers a scalar time series.
	AddTimeSeries(name, longName string, units unit.Dimensions) error

	// AddTendency registers a vertical profile of the horizontally
	// averaged tendency of field due to the process named budget.
	AddTendency(field, budget string, units unit.Dimensions) error

	// CalcStats2D computes the horizontal mean of the interior of data
	// plus offset and stores it in the named time series.
	CalcStats2D(name string, data []float64, offset float64) error

	// CalcTend stores the horizontal mean profile of the change in
	// tend since the last call for field.
	CalcTend(field, budget string, tend *sparse.DenseArray) error
}

// NopStats is a Stats that is never enabled.
type NopStats struct{}

// Enabled returns false.
func (NopStats) Enabled() bool { return false }

// AddTimeSeries does nothing.
func (NopStats) AddTimeSeries(string, string, unit.Dimensions) error { return nil }

// AddTendency does nothing.
func (NopStats) AddTendency(string, string, unit.Dimensions) error { return nil }

// CalcStats2D does nothing.
func (NopStats) CalcStats2D(string, []float64, float64) error { return nil }

// CalcTend does nothing.
func (NopStats) CalcTend(string, string, *sparse.DenseArray) error { return nil }
