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

package nsw6

import "github.com/spatialmodel/cloudsim"

// phase is a water category that takes part in a transition. Vapor,
// cloud liquid and cloud ice are all carried by the total water field.
type phase int

const (
	vapor phase = iota
	cloud
	ice
	rain
	snow
	graupel
	numPhases
)

// transition moves mass from one phase to another at a given rate.
type transition struct {
	name     string
	process  Process
	from, to phase

	// latent is the latent heat released per unit mass converted [J/kg].
	latent float64

	rate func(r *rates) float64

	// heat, if not nil, replaces rate in the temperature tendency.
	heat func(r *rates) float64
}

// rainToGraupel is the rate at which rain freezes to graupel.
func rainToGraupel(r *rates) float64 {
	return r.gacr + r.iacrG + r.sacrG*r.tNeg + r.gfrz*r.tNeg
}

// network lists every transition of the scheme. A transition is applied
// only when its source phase is present.
var network = []transition{
	{name: "cloud to rain", process: Autoconversion, from: cloud, to: rain, latent: cloudsim.Lv,
		rate: func(r *rates) float64 { return r.raut }},
	{name: "ice to snow", process: Autoconversion, from: ice, to: snow, latent: cloudsim.Ls,
		rate: func(r *rates) float64 { return r.saut }},
	{name: "snow to graupel", process: Autoconversion, from: snow, to: graupel,
		rate: func(r *rates) float64 { return r.gaut }},

	{name: "cloud to rain", process: Collection, from: cloud, to: rain, latent: cloudsim.Lv,
		rate: func(r *rates) float64 { return r.racw + r.sacw*r.tPos }},
	{name: "rain to vapor", process: Collection, from: rain, to: vapor, latent: -cloudsim.Lv,
		rate: func(r *rates) float64 { return r.revp }},
	{name: "cloud to graupel", process: Collection, from: cloud, to: graupel, latent: cloudsim.Ls,
		rate: func(r *rates) float64 { return r.gacw }},
	{name: "cloud to snow", process: Collection, from: cloud, to: snow, latent: cloudsim.Ls,
		rate: func(r *rates) float64 { return r.sacw * r.tNeg }},
	{name: "ice to snow", process: Collection, from: ice, to: snow, latent: cloudsim.Ls,
		rate: func(r *rates) float64 { return r.raciS + r.saci }},
	{name: "ice to graupel", process: Collection, from: ice, to: graupel, latent: cloudsim.Ls,
		rate: func(r *rates) float64 { return r.raciG + r.gaci }},
	{name: "rain to graupel", process: Collection, from: rain, to: graupel, latent: cloudsim.Lf,
		rate: rainToGraupel},
	// The heating of rain freezing to snow uses the rain to graupel rate.
	{name: "rain to snow", process: Collection, from: rain, to: snow, latent: cloudsim.Lf,
		rate: func(r *rates) float64 { return r.sacrS*r.tNeg + r.iacrS },
		heat: rainToGraupel},
	{name: "snow to rain", process: Collection, from: snow, to: rain, latent: -cloudsim.Lf,
		rate: func(r *rates) float64 { return r.smlt * r.tPos }},
	{name: "snow to graupel", process: Collection, from: snow, to: graupel,
		rate: func(r *rates) float64 { return r.gacs + r.racs }},
	{name: "snow to vapor", process: Collection, from: snow, to: vapor, latent: -cloudsim.Ls,
		rate: func(r *rates) float64 { return r.sdep + r.ssub }},
	{name: "graupel to rain", process: Collection, from: graupel, to: rain, latent: -cloudsim.Lf,
		rate: func(r *rates) float64 { return r.gmlt * r.tPos }},
	{name: "graupel to vapor", process: Collection, from: graupel, to: vapor, latent: -cloudsim.Ls,
		rate: func(r *rates) float64 { return r.gdep + r.gsub }},
}

// transitionsFor returns the transitions of the processes in s.
func transitionsFor(s ProcessSet) []transition {
	var ts []transition
	for _, t := range network {
		if s.Has(t.process) {
			ts = append(ts, t)
		}
	}
	return ts
}

// tendencies are the flat tendency arrays the transitions add to.
type tendencies struct {
	phase [numPhases][]float64
	thl   []float64
}

// accumulate adds the contribution of every transition whose source is
// present at cell ijk.
func (t *tendencies) accumulate(ts []transition, ijk int, exner float64, present *[numPhases]bool, r *rates) {
	for i := range ts {
		tr := &ts[i]
		if !present[tr.from] {
			continue
		}
		p := tr.rate(r)
		t.phase[tr.from][ijk] -= p
		t.phase[tr.to][ijk] += p
		if tr.latent != 0 {
			if tr.heat != nil {
				p = tr.heat(r)
			}
			t.thl[ijk] += tr.latent / (cloudsim.Cp * exner) * p
		}
	}
}
