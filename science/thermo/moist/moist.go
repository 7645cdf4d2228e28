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

// Package moist provides moist thermodynamics on an anelastic reference
// state. Liquid water potential temperature and total water are the
// prognostic variables, and cloud liquid, cloud ice and temperature are
// diagnosed with a saturation adjustment.
package moist

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/cloudsim"
)

// Condensate below TIce is all ice and above TWater all liquid, with a
// linear ramp in between [K].
const (
	TIce   = 250.16
	TWater = 273.16
)

const (
	maxIter = 100
	tol     = 1.e-5 // temperature tolerance of the saturation adjustment [K]
)

// EsatLiq returns the saturation vapor pressure [Pa] over liquid water at
// temperature T [K].
func EsatLiq(T float64) float64 {
	return 610.78 * math.Exp(17.2693882*(T-273.16)/(T-35.86))
}

// EsatIce returns the saturation vapor pressure [Pa] over ice at
// temperature T [K].
func EsatIce(T float64) float64 {
	return 610.78 * math.Exp(21.8745584*(T-273.16)/(T-7.66))
}

// LiquidFraction returns the fraction of condensate that is liquid at
// temperature T.
func LiquidFraction(T float64) float64 {
	return math.Max(0, math.Min(1, (T-TIce)/(TWater-TIce)))
}

// Thermo holds the reference state and diagnoses the condensate. It
// implements cloudsim.Thermo.
type Thermo struct {
	fields *cloudsim.Fields

	// Pbot is the surface pressure [Pa].
	Pbot float64

	// NumProcessors is the number of goroutines used to fill fields.
	// If < 1, GOMAXPROCS is used.
	NumProcessors int

	pref, exner, thvref []float64
}

var _ cloudsim.Thermo = &Thermo{}

// New registers the prognostic fields thl and qt with f, initializes them
// to the profiles thl0 [K] and qt0 [kg/kg], one value per interior level,
// and computes a hydrostatic reference state from the surface pressure
// pbot [Pa]. It also sets f.RhoRef.
func New(f *cloudsim.Fields, pbot float64, thl0, qt0 []float64) (*Thermo, error) {
	g := f.Grid
	if len(thl0) != g.Ktot || len(qt0) != g.Ktot {
		return nil, fmt.Errorf("moist: profiles have %d and %d levels but the grid has %d", len(thl0), len(qt0), g.Ktot)
	}
	if !(pbot > 0) {
		return nil, fmt.Errorf("moist: invalid surface pressure %g", pbot)
	}
	if err := f.InitPrognostic("thl", "Liquid water potential temperature", "K"); err != nil {
		return nil, fmt.Errorf("moist: %v", err)
	}
	if err := f.InitPrognostic("qt", "Total water specific humidity", "kg kg-1"); err != nil {
		return nil, fmt.Errorf("moist: %v", err)
	}
	thl, _ := f.Prognostic("thl")
	qt, _ := f.Prognostic("qt")
	for k := g.Kstart; k < g.Kend; k++ {
		for j := g.Jstart; j < g.Jend; j++ {
			for i := g.Istart; i < g.Iend; i++ {
				ijk := g.Index(i, j, k)
				thl.Elements[ijk] = thl0[k-g.Kstart]
				qt.Elements[ijk] = qt0[k-g.Kstart]
			}
		}
	}
	t := &Thermo{fields: f, Pbot: pbot}
	if err := t.baseState(thl0, qt0); err != nil {
		return nil, err
	}
	return t, nil
}

// baseState integrates the hydrostatic equation for the exner function
// upward from the surface.
func (t *Thermo) baseState(thl0, qt0 []float64) error {
	g := t.fields.Grid
	t.pref = make([]float64, g.Kcells)
	t.exner = make([]float64, g.Kcells)
	t.thvref = make([]float64, g.Kcells)
	rho := t.fields.RhoRef

	exh := cloudsim.Exner(t.Pbot)
	for k := g.Kstart; k < g.Kend; k++ {
		kk := k - g.Kstart
		thv0 := thl0[kk] * (1 - (1-cloudsim.Rv/cloudsim.Rd)*qt0[kk])
		ex := exh - cloudsim.Grav/cloudsim.Cp*(g.Z[k]-g.Zh[k])/thv0
		p := cloudsim.P0 * math.Pow(ex, cloudsim.Cp/cloudsim.Rd)
		ql, qi, T, err := Adjust(thl0[kk], qt0[kk], p, ex)
		if err != nil {
			return fmt.Errorf("moist: reference state at level %d: %v", kk, err)
		}
		thv := T / ex * (1 - (1-cloudsim.Rv/cloudsim.Rd)*qt0[kk] - cloudsim.Rv/cloudsim.Rd*(ql+qi))
		t.thvref[k] = thv
		t.exner[k] = ex
		t.pref[k] = p
		rho[k] = p / (cloudsim.Rd * ex * thv)
		exh -= cloudsim.Grav / cloudsim.Cp * g.Dz[k] / thv
		if exh <= 0 {
			return fmt.Errorf("moist: domain top at %g m is above the top of the atmosphere", g.Zh[k+1])
		}
	}
	for _, k := range [][2]int{{g.Kstart - 1, g.Kstart}, {g.Kend, g.Kend - 1}} {
		t.pref[k[0]] = t.pref[k[1]]
		t.exner[k[0]] = t.exner[k[1]]
		t.thvref[k[0]] = t.thvref[k[1]]
		rho[k[0]] = rho[k[1]]
	}
	return nil
}

// qsat returns the saturation specific humidity at temperature T and
// pressure p, weighting liquid and ice by the liquid fraction.
func qsat(p, T float64) float64 {
	a := LiquidFraction(T)
	return a*cloudsim.Qsat(p, EsatLiq(T)) + (1-a)*cloudsim.Qsat(p, EsatIce(T))
}

// Adjust returns the cloud liquid ql, cloud ice qi [kg/kg] and temperature
// T [K] in equilibrium with liquid water potential temperature thl [K] and
// total water qt [kg/kg] at pressure p [Pa] and exner function ex.
func Adjust(thl, qt, p, ex float64) (ql, qi, T float64, err error) {
	tl := ex * thl
	if qt <= qsat(p, tl) {
		return 0, 0, tl, nil
	}
	T = tl
	for n := 0; n < maxIter; n++ {
		qs := qsat(p, T)
		a := LiquidFraction(T)
		L := a*cloudsim.Lv + (1-a)*cloudsim.Ls
		f := T - tl - L/cloudsim.Cp*(qt-qs)
		df := 1 + L*L*qs/(cloudsim.Rv*cloudsim.Cp*T*T)
		dT := f / df
		T -= dT
		if math.Abs(dT) < tol {
			qc := math.Max(0, qt-qsat(p, T))
			a = LiquidFraction(T)
			return a * qc, (1 - a) * qc, T, nil
		}
	}
	return 0, 0, 0, fmt.Errorf("moist: saturation adjustment did not converge for thl=%g, qt=%g, p=%g", thl, qt, p)
}

// ThermoField fills dst with the named diagnostic field: "ql" (cloud
// liquid), "qi" (cloud ice), "qc" (total condensate), "T" (temperature)
// or "thv" (virtual potential temperature).
func (t *Thermo) ThermoField(dst *sparse.DenseArray, name string) error {
	var get func(thl, qt, ql, qi, T, ex float64) float64
	switch name {
	case "ql":
		get = func(_, _, ql, _, _, _ float64) float64 { return ql }
	case "qi":
		get = func(_, _, _, qi, _, _ float64) float64 { return qi }
	case "qc":
		get = func(_, _, ql, qi, _, _ float64) float64 { return ql + qi }
	case "T":
		get = func(_, _, _, _, T, _ float64) float64 { return T }
	case "thv":
		get = func(_, qt, ql, qi, T, ex float64) float64 {
			return T / ex * (1 - (1-cloudsim.Rv/cloudsim.Rd)*qt - cloudsim.Rv/cloudsim.Rd*(ql+qi))
		}
	default:
		return fmt.Errorf("moist: invalid thermo field %s", name)
	}
	thl, err := t.fields.Prognostic("thl")
	if err != nil {
		return fmt.Errorf("moist: %v", err)
	}
	qt, err := t.fields.Prognostic("qt")
	if err != nil {
		return fmt.Errorf("moist: %v", err)
	}

	g := t.fields.Grid
	nprocs := t.NumProcessors
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	var (
		mu       sync.Mutex
		firstErr error
	)
	g.Columns(nprocs, func(_, i, j int) {
		for k := g.Kstart; k < g.Kend; k++ {
			ijk := g.Index(i, j, k)
			ql, qi, T, err := Adjust(thl.Elements[ijk], qt.Elements[ijk], t.pref[k], t.exner[k])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			dst.Elements[ijk] = get(thl.Elements[ijk], qt.Elements[ijk], ql, qi, T, t.exner[k])
		}
	})
	return firstErr
}

// Pressure returns the reference pressure [Pa] at full levels.
func (t *Thermo) Pressure() []float64 { return t.pref }

// ExnerRef returns the reference exner function at full levels.
func (t *Thermo) ExnerRef() []float64 { return t.exner }

// ThvRef returns the reference virtual potential temperature [K].
func (t *Thermo) ThvRef() []float64 { return t.thvref }

// EsatLiq implements cloudsim.Thermo.
func (t *Thermo) EsatLiq(T float64) float64 { return EsatLiq(T) }

// EsatIce implements cloudsim.Thermo.
func (t *Thermo) EsatIce(T float64) float64 { return EsatIce(T) }
