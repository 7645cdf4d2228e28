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
	"fmt"
	"math"
)

// Category is a falling hydrometeor category.
type Category int

// The falling categories.
const (
	Rain Category = iota
	Snow
	Graupel
)

// Categories lists every falling category in the order they are
// sedimented.
var Categories = []Category{Rain, Snow, Graupel}

func (c Category) String() string {
	switch c {
	case Rain:
		return "rain"
	case Snow:
		return "snow"
	case Graupel:
		return "graupel"
	default:
		panic(fmt.Errorf("nsw6: invalid category %d", int(c)))
	}
}

// Field returns the name of the prognostic mixing ratio of c.
func (c Category) Field() string {
	return [...]string{"qr", "qs", "qg"}[c]
}

// SurfaceName returns the name of the surface precipitation rate of c.
func (c Category) SurfaceName() string {
	return [...]string{"rr", "rs", "rg"}[c]
}

// Species holds the size-distribution parameters of one falling category.
// Particles follow an exponential size distribution N0 exp(-λD) with mass
// m = A D^B and fall speed v = C D^D.
type Species struct {
	Category Category
	N0       float64 // intercept parameter [m-4]
	A, B     float64 // mass-diameter relation
	C, D     float64 // velocity-diameter relation
	QMin     float64 // smallest mixing ratio treated as present [kg/kg]
	F1, F2   float64 // ventilation coefficients

	gammaB1   float64 // Γ(B+1)
	gammaBD1  float64 // Γ(B+D+1)/Γ(B+1)
	ventExp   float64 // (5+D)/2
	gammaVent float64 // Γ((5+D)/2)
}

func newSpecies(c Category, n0, rho, vc, vd, qmin, f1, f2 float64) Species {
	s := Species{
		Category: c,
		N0:       n0,
		A:        pi * rho / 6,
		B:        3,
		C:        vc,
		D:        vd,
		QMin:     qmin,
		F1:       f1,
		F2:       f2,
	}
	s.gammaB1 = math.Gamma(s.B + 1)
	s.gammaBD1 = math.Gamma(s.B+s.D+1) / s.gammaB1
	s.ventExp = 0.5 * (5 + s.D)
	s.gammaVent = math.Gamma(s.ventExp)
	return s
}

var species = [...]Species{
	Rain:    newSpecies(Rain, n0r, rhoW, 130., 0.5, qrMin, 0.78, 0.27),
	Snow:    newSpecies(Snow, n0s, rhoS, 4.84, 0.25, qsMin, 0.65, 0.39),
	Graupel: newSpecies(Graupel, n0g, rhoG, 82.5, 0.25, qgMin, 0.78, 0.27),
}

// Params returns the parameters of category c.
func Params(c Category) Species {
	return species[c]
}

// Present reports whether mixing ratio q is above the species threshold.
func (s Species) Present(q float64) bool {
	return q > s.QMin
}

// Lambda returns the slope of the size distribution [m-1] for mixing
// ratio q [kg/kg] in air of density rho [kg/m³].
func (s Species) Lambda(rho, q float64) float64 {
	return s.lambda(s.N0, rho, q)
}

// lambda uses intercept n0 in place of the species' own. The slope of an
// empty distribution is infinite.
func (s Species) lambda(n0, rho, q float64) float64 {
	if q <= 0 {
		return math.Inf(1)
	}
	return math.Pow(s.A*n0*s.gammaB1/(rho*q), 1/(s.B+1))
}

// TerminalVelocity returns the mass-weighted fall speed [m/s] for a size
// distribution with slope lambda. rho0rhoSqrt is sqrt(ρ_surface/ρ).
func (s Species) TerminalVelocity(lambda, rho0rhoSqrt float64) float64 {
	return s.C * rho0rhoSqrt * s.gammaBD1 * math.Pow(lambda, -s.D)
}

// ventilation returns the ventilated vapor-diffusion integral over a size
// distribution with slope lambda.
func (s Species) ventilation(lambda, rho0rhoSqrt float64) float64 {
	return s.F1*gamma2/(lambda*lambda) +
		s.F2*math.Sqrt(s.C*rho0rhoSqrt/nu)*s.gammaVent/math.Pow(lambda, s.ventExp)
}

// FallSpeed returns the terminal velocity [m/s] for mixing ratio q at a
// level with density rho, given the surface density rho0. It is zero when
// the category is not present.
func (s Species) FallSpeed(rho0, rho, q float64) float64 {
	if !s.Present(q) {
		return 0
	}
	return s.TerminalVelocity(s.Lambda(rho, q), math.Sqrt(rho0/rho))
}
