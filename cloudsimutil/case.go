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
	"sort"

	"github.com/spatialmodel/cloudsim/stats"
)

// Profiles holds initial vertical profiles at the grid levels. Qr, Qs
// and Qg may be nil, meaning no precipitation.
type Profiles struct {
	Thl, Qt    []float64
	Qr, Qs, Qg []float64
}

// A Case returns the initial profiles at heights z [m].
type Case func(z []float64) (*Profiles, error)

// Cases are the built-in cases.
var Cases = map[string]Case{
	"arm":       ARM,
	"rainshaft": RainShaft,
}

// LoadCase returns the initial profiles of the case described by c.
// An input file takes precedence over a named case.
func LoadCase(c CaseConfig, z []float64) (*Profiles, error) {
	if c.InputFile != "" {
		return ReadCase(c.InputFile, z)
	}
	f, ok := Cases[c.Name]
	if !ok {
		return nil, fmt.Errorf("cloudsim: invalid case %q", c.Name)
	}
	return f(z)
}

// armSegment is one piece of the piecewise-linear ARM profile between
// heights bottom and top [m]. qt is in g kg-1.
type armSegment struct {
	bottom, top float64
	thl, dthl   float64
	qt, dqt     float64
}

// armSegments are the ARM shallow cumulus initial profiles
// (Brown et al., 2002). The qt change over 700-1300 m is the one
// distributed with the case, which is 0.1 g kg-1 larger than the
// difference between its end points.
var armSegments = []armSegment{
	{bottom: 0, top: 50, thl: 299.0, dthl: 301.5 - 299.0, qt: 15.20, dqt: 15.17 - 15.20},
	{bottom: 50, top: 350, thl: 301.5, dthl: 302.5 - 301.5, qt: 15.17, dqt: 14.98 - 15.17},
	{bottom: 350, top: 650, thl: 302.5, dthl: 303.53 - 302.5, qt: 14.98, dqt: 14.80 - 14.98},
	{bottom: 650, top: 700, thl: 303.53, dthl: 303.7 - 303.53, qt: 14.80, dqt: 14.70 - 14.80},
	{bottom: 700, top: 1300, thl: 303.7, dthl: 307.13 - 303.7, qt: 14.70, dqt: 13.50 - 14.80},
	{bottom: 1300, top: 2500, thl: 307.13, dthl: 314.0 - 307.13, qt: 13.50, dqt: 3.00 - 13.50},
	{bottom: 2500, top: 5500, thl: 314.0, dthl: 343.2 - 314.0, qt: 3.00, dqt: 0},
}

// ARM returns the ARM shallow cumulus profiles. Above 5500 m the
// profiles continue the gradient of the highest segment.
func ARM(z []float64) (*Profiles, error) {
	p := &Profiles{Thl: make([]float64, len(z)), Qt: make([]float64, len(z))}
	for k, zk := range z {
		s := armSegments[len(armSegments)-1]
		for _, ss := range armSegments {
			if zk <= ss.top {
				s = ss
				break
			}
		}
		frac := (zk - s.bottom) / (s.top - s.bottom)
		p.Thl[k] = s.thl + frac*s.dthl
		p.Qt[k] = (s.qt + frac*s.dqt) / 1000 // g kg-1 to kg kg-1
	}
	return p, nil
}

// Rain shaft settings.
const (
	rainShaftBottom = 1000. // m
	rainShaftTop    = 2000. // m
	rainShaftQr     = 1.e-3 // kg kg-1
	rainShaftThl    = 300.  // K
)

// RainShaft returns a dry, neutrally stratified column with a layer of
// rain between 1000 and 2000 m.
func RainShaft(z []float64) (*Profiles, error) {
	p := &Profiles{
		Thl: make([]float64, len(z)),
		Qt:  make([]float64, len(z)),
		Qr:  make([]float64, len(z)),
	}
	for k, zk := range z {
		p.Thl[k] = rainShaftThl
		p.Qt[k] = 0
		if zk >= rainShaftBottom && zk <= rainShaftTop {
			p.Qr[k] = rainShaftQr
		}
	}
	return p, nil
}

// ReadCase reads the profiles of variables z, thl and qt, and if
// present qr, qs and qg, from the NetCDF file at path and interpolates
// them linearly to heights z. Values outside the range of the file are
// held constant.
func ReadCase(path string, z []float64) (*Profiles, error) {
	zf, _, err := stats.ReadVariable(path, "z")
	if err != nil {
		return nil, fmt.Errorf("cloudsim: reading case: %v", err)
	}
	if !sort.Float64sAreSorted(zf) || len(zf) == 0 {
		return nil, fmt.Errorf("cloudsim: reading case: z in %s must be increasing", path)
	}
	read := func(name string, required bool) ([]float64, error) {
		v, _, err := stats.ReadVariable(path, name)
		if err != nil {
			if required {
				return nil, fmt.Errorf("cloudsim: reading case: %v", err)
			}
			return nil, nil
		}
		if len(v) != len(zf) {
			return nil, fmt.Errorf("cloudsim: reading case: %s has %d values but z has %d", name, len(v), len(zf))
		}
		return interpolate(zf, v, z), nil
	}
	p := new(Profiles)
	for _, v := range []struct {
		name     string
		dst      *[]float64
		required bool
	}{
		{"thl", &p.Thl, true},
		{"qt", &p.Qt, true},
		{"qr", &p.Qr, false},
		{"qs", &p.Qs, false},
		{"qg", &p.Qg, false},
	} {
		if *v.dst, err = read(v.name, v.required); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// interpolate returns the values v given at increasing heights zv,
// linearly interpolated to heights z.
func interpolate(zv, v, z []float64) []float64 {
	o := make([]float64, len(z))
	for k, zk := range z {
		i := sort.SearchFloat64s(zv, zk)
		switch {
		case i == 0:
			o[k] = v[0]
		case i == len(zv):
			o[k] = v[len(v)-1]
		default:
			frac := (zk - zv[i-1]) / (zv[i] - zv[i-1])
			o[k] = v[i-1] + frac*(v[i]-v[i-1])
		}
	}
	return o
}
