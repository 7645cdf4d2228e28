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

	"github.com/spatialmodel/cloudsim"
)

var (
	gamma1 = math.Gamma(1)
	gamma2 = math.Gamma(2)
	gamma3 = math.Gamma(3)
)

// saturation gives the saturation vapor pressures used by the vapor
// diffusion rates.
type saturation interface {
	EsatLiq(T float64) float64
	EsatIce(T float64) float64
}

// state holds the inputs of the process rates at one grid cell.
type state struct {
	qr, qs, qg float64 // falling categories [kg/kg]
	qt, thl    float64 // total water [kg/kg] and liquid water potential temperature [K]
	ql, qi     float64 // cloud liquid and cloud ice [kg/kg]
	rho, exner float64
	p          float64 // pressure [Pa]
}

// temperature diagnoses the absolute temperature from the already
// adjusted condensate.
func (c *state) temperature() float64 {
	return c.exner*c.thl + cloudsim.Lv/cloudsim.Cp*c.ql + cloudsim.Ls/cloudsim.Cp*c.qi
}

// levelFactors are the parts of the collection rates that only depend on
// height.
type levelFactors struct {
	rho0rhoSqrt float64 // sqrt(ρ_surface/ρ)

	iacr, raci, racw, sacw, saci, gacw, gaci float64
}

func newLevelFactors(rho0, rho float64) levelFactors {
	r := math.Sqrt(rho0 / rho)
	sr, ss, sg := &species[Rain], &species[Snow], &species[Graupel]
	return levelFactors{
		rho0rhoSqrt: r,
		iacr:        pi2 * eri * n0r * sr.C * rhoW * math.Gamma(6+sr.D) / (24 * mi) * r,
		raci:        pi * eri * n0r * sr.C * math.Gamma(3+sr.D) / 4 * r,
		racw:        pi * erw * n0r * sr.C * math.Gamma(3+sr.D) / 4 * r,
		sacw:        pi * esw * n0s * ss.C * math.Gamma(3+ss.D) / 4 * r,
		saci:        pi * n0s * ss.C * math.Gamma(3+ss.D) / 4 * r, // E_si depends on temperature
		gacw:        pi * egw * n0g * sg.C * math.Gamma(3+sg.D) / 4 * r,
		gaci:        pi * egi * n0g * sg.C * math.Gamma(3+sg.D) / 4 * r,
	}
}

// rates holds the conversion rates at one grid cell [kg/kg/s].
type rates struct {
	T          float64 // temperature [K]
	tPos, tNeg float64 // 1 when T is at or above (below) freezing, otherwise 0

	vTr, vTs, vTg float64 // terminal velocities [m/s]

	// Autoconversion.
	raut, saut, gaut float64

	// Collection of suspended condensate.
	iacrS, iacrG, raciS, raciG float64
	racw, sacw, saci, gacw     float64
	gaci                       float64

	// Collection between falling categories.
	racs, sacrS, sacrG, gacr, gacs float64

	// Vapor diffusion.
	revp, sdep, ssub, gdep, gsub float64

	// Melting and freezing.
	smlt, gmlt, gfrz float64
}

// dropletFactor returns the droplet dispersion term of the rain
// autoconversion for droplet number nd [m-3].
func dropletFactor(nd float64) float64 {
	return 0.146 - 5.964e-2*math.Log(nd/2.e9)
}

// rainAutoconversion returns the conversion rate of cloud liquid ql to
// rain in air of density rho, with droplet number nd and dispersion
// term dd.
func rainAutoconversion(ql, rho, nd, dd float64) float64 {
	return 16.7 / rho * (rho * ql) * (rho * ql) / (5 + 3.6e-5*nd/(dd*rho*ql))
}

// autoconversion computes the conversion of cloud liquid to rain, cloud
// ice to snow and snow to graupel.
func (r *rates) autoconversion(c *state, nd, dd float64) {
	beta1 := math.Min(1.e-3, 1.e-3*math.Exp(gammaSaut*(r.T-cloudsim.T0)))
	beta2 := math.Min(1.e-3, 1.e-3*math.Exp(gammaGaut*(r.T-cloudsim.T0)))

	r.raut = rainAutoconversion(c.ql, c.rho, nd, dd)
	r.saut = math.Max(beta1*(c.qi-qiCrt), 0)
	r.gaut = math.Max(beta2*(c.qs-qsCrt), 0)
}

// step returns 1 if b is true and 0 otherwise.
func step(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// collectionSum is the sum of the three gamma-function terms in the
// collection rate of a category with mass exponent b and slope lx by
// a category with slope ly.
func collectionSum(b, lx, ly float64) float64 {
	return math.Gamma(b+3)*gamma1/(math.Pow(lx, b+3)*ly) +
		2*math.Gamma(b+2)*gamma2/(math.Pow(lx, b+2)*ly*ly) +
		math.Gamma(b+1)*gamma3/(math.Pow(lx, b+1)*ly*ly*ly)
}

// collection computes the collection, vapor diffusion, melting and
// freezing rates. It also sets the terminal velocities.
//
// The slopes of the snow and graupel distributions are computed with the
// rain intercept parameter, and the collection of snow by graupel uses the
// rain slope in place of the snow slope.
func (r *rates) collection(c *state, f *levelFactors, sat saturation) {
	sr, ss, sg := &species[Rain], &species[Snow], &species[Graupel]
	T := r.T
	dT := T - cloudsim.T0

	lr := sr.lambda(n0r, c.rho, c.qr)
	ls := ss.lambda(n0r, c.rho, c.qs)
	lg := sg.lambda(n0r, c.rho, c.qg)

	r.vTr = sr.TerminalVelocity(lr, f.rho0rhoSqrt)
	r.vTs = ss.TerminalVelocity(ls, f.rho0rhoSqrt)
	r.vTg = sg.TerminalVelocity(lg, f.rho0rhoSqrt)

	iacr := f.iacr / math.Pow(lr, 6+sr.D) * c.qi
	delta1 := step(c.qr >= qLarge)
	r.iacrS = (1 - delta1) * iacr
	r.iacrG = delta1 * iacr

	raci := f.raci / math.Pow(lr, 3+sr.D) * c.qi
	r.raciS = (1 - delta1) * raci
	r.raciG = delta1 * raci

	r.racw = f.racw / math.Pow(lr, 3+sr.D) * c.ql
	r.sacw = f.sacw / math.Pow(ls, 3+ss.D) * c.ql

	esi := math.Exp(gammaSacr * dT)
	r.saci = f.saci * esi / math.Pow(ls, 3+ss.D) * c.qi
	r.gacw = f.gacw / math.Pow(lg, 3+sg.D) * c.ql
	r.gaci = f.gaci / math.Pow(lg, 3+sg.D) * c.qi

	delta2 := 1 - step(c.qr >= qLarge || c.qs >= qLarge)
	r.racs = (1 - delta2) * pi * ss.A * math.Abs(r.vTr-r.vTs) * esr * n0s * n0r / (4 * c.rho) *
		collectionSum(ss.B, ls, lr)
	sacr := pi * sr.A * math.Abs(r.vTs-r.vTr) * esr * n0r * n0s / (4 * c.rho) *
		collectionSum(sr.B, lr, ls)
	r.sacrG = (1 - delta2) * sacr
	r.sacrS = delta2 * sacr

	egs := math.Min(1, math.Exp(gammaGacs*dT))
	r.gacr = pi * sr.A * math.Abs(r.vTg-r.vTr) * egr * n0g * n0r / (4 * c.rho) *
		collectionSum(sr.B, lr, lg)
	r.gacs = pi * ss.A * math.Abs(r.vTg-r.vTs) * egs * n0g * n0s / (4 * c.rho) *
		collectionSum(ss.B, lr, lg)

	esLiq, esIce := sat.EsatLiq(T), sat.EsatIce(T)
	gw := 1 / (cloudsim.Lv/(ka*T)*(cloudsim.Lv/(cloudsim.Rv*T)-1) + cloudsim.Rv*T/(kd*esLiq))
	gi := 1 / (cloudsim.Ls/(ka*T)*(cloudsim.Ls/(cloudsim.Rv*T)-1) + cloudsim.Rv*T/(kd*esIce))

	qv := c.qt - c.ql - c.qi
	sw := qv / cloudsim.Qsat(c.p, esLiq)
	si := qv / cloudsim.Qsat(c.p, esIce)
	delta3 := step(si-1 <= 0)

	r.revp = -2 * pi * n0r * (math.Min(sw, 1) - 1) * gw / c.rho * sr.ventilation(lr, f.rho0rhoSqrt)
	sdepSsub := 2 * pi * n0s * (si - 1) * gi / c.rho * ss.ventilation(ls, f.rho0rhoSqrt)
	gdepGsub := 2 * pi * n0g * (si - 1) * gi / c.rho * sg.ventilation(lg, f.rho0rhoSqrt)
	r.sdep = (delta3 - 1) * sdepSsub
	r.gdep = (delta3 - 1) * gdepGsub
	r.ssub = delta3 * sdepSsub
	r.gsub = delta3 * gdepGsub

	r.smlt = 2*pi*ka*dT*n0s/(c.rho*cloudsim.Lf)*ss.ventilation(ls, f.rho0rhoSqrt) +
		cl*dT/cloudsim.Lf*(r.sacw+sacr)
	r.gmlt = 2*pi*ka*dT*n0g/(c.rho*cloudsim.Lf)*sg.ventilation(lg, f.rho0rhoSqrt) +
		cl*dT/cloudsim.Lf*(r.gacw+r.gacr)

	r.gfrz = 20 * pi2 * bPrime * n0r * rhoW / c.rho * (math.Exp(aPrime*(cloudsim.T0-T)) - 1) /
		math.Pow(lr, 7)
}
