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

import (
	"math"
	"testing"

	"github.com/spatialmodel/cloudsim"
)

func TestRainAutoconversion(t *testing.T) {
	dd := dropletFactor(DefaultNd)
	if dd <= 0 {
		t.Fatalf("droplet factor %g should be positive", dd)
	}
	if v := rainAutoconversion(0, 1, DefaultNd, dd); v != 0 {
		t.Errorf("no cloud water: have %g, want 0", v)
	}
	prev := 0.
	for _, ql := range []float64{1.e-7, 1.e-6, 1.e-5, 1.e-4, 1.e-3, 1.e-2} {
		v := rainAutoconversion(ql, 1, DefaultNd, dd)
		if !(v > prev) {
			t.Errorf("ql=%g: rate %g not larger than %g", ql, v, prev)
		}
		prev = v
	}
	// More droplets of the same total mass are slower to form rain.
	if rainAutoconversion(1.e-3, 1, 1.e9, dropletFactor(1.e9)) >= rainAutoconversion(1.e-3, 1, 1.e7, dropletFactor(1.e7)) {
		t.Error("autoconversion should decrease with droplet number")
	}
}

func TestAutoconversionThresholds(t *testing.T) {
	var r rates
	r.T = 250
	c := state{qi: 0, qs: qsCrt / 2, rho: 1}
	r.autoconversion(&c, DefaultNd, dropletFactor(DefaultNd))
	if r.raut != 0 || r.saut != 0 || r.gaut != 0 {
		t.Errorf("below thresholds: %g %g %g", r.raut, r.saut, r.gaut)
	}
	c.qs = 2 * qsCrt
	c.qi = 1.e-4
	r.autoconversion(&c, DefaultNd, dropletFactor(DefaultNd))
	if !(r.saut > 0 && r.gaut > 0) {
		t.Errorf("above thresholds: %g %g", r.saut, r.gaut)
	}
	// The conversion efficiency is capped at freezing and above.
	warm := r
	warm.T = cloudsim.T0 + 10
	warm.autoconversion(&c, DefaultNd, dropletFactor(DefaultNd))
	if want := 1.e-3 * (c.qs - qsCrt); different(warm.gaut, want, 1.e-12) {
		t.Errorf("gaut: have %g, want %g", warm.gaut, want)
	}
}

func TestCollectionEmpty(t *testing.T) {
	// A state with only cloud liquid has no collection by falling
	// categories and no finite slopes.
	th := &testThermo{}
	c := state{ql: 1.e-3, qt: 1.e-2, rho: 1, exner: 1, p: 1.e5, thl: 280}
	var r rates
	r.T = c.temperature()
	r.tPos = step(r.T >= cloudsim.T0)
	r.tNeg = 1 - r.tPos
	f := newLevelFactors(1, 1)
	r.collection(&c, &f, th)
	for name, v := range map[string]float64{
		"racw": r.racw, "sacw": r.sacw, "gacw": r.gacw,
		"vTr": r.vTr, "vTs": r.vTs, "vTg": r.vTg,
		"racs": r.racs, "gacr": r.gacr, "gacs": r.gacs,
		"revp": r.revp, "gfrz": r.gfrz,
	} {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("%s: have %g, want 0", name, v)
		}
	}
}

func TestRainEvaporation(t *testing.T) {
	th := &testThermo{}
	f := newLevelFactors(1, 1)
	// Subsaturated air evaporates rain, saturated air does not.
	for _, tc := range []struct {
		qt   float64
		evap bool
	}{
		{qt: 1.e-3, evap: true},
		{qt: 5.e-2, evap: false},
	} {
		c := state{qr: 1.e-3, qt: tc.qt, rho: 1, exner: 1, p: 1.e5, thl: 290}
		r := rates{T: c.temperature()}
		r.tPos = step(r.T >= cloudsim.T0)
		r.tNeg = 1 - r.tPos
		r.collection(&c, &f, th)
		if tc.evap && !(r.revp > 0) {
			t.Errorf("qt=%g: rain should evaporate, revp=%g", tc.qt, r.revp)
		}
		if !tc.evap && r.revp != 0 {
			t.Errorf("qt=%g: rain should not evaporate, revp=%g", tc.qt, r.revp)
		}
	}
}

func TestStep(t *testing.T) {
	if step(true) != 1 || step(false) != 0 {
		t.Error("step")
	}
}
