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

import "math"

// Physical constants shared by the thermodynamics and microphysics
// packages.
const (
	Grav = 9.81    // gravitational acceleration [m/s²]
	Rd   = 287.04  // gas constant for dry air [J/kg/K]
	Rv   = 461.5   // gas constant for water vapor [J/kg/K]
	Cp   = 1005.   // specific heat of dry air at constant pressure [J/kg/K]
	Lv   = 2.501e6 // latent heat of vaporization [J/kg]
	Lf   = 3.337e5 // latent heat of fusion [J/kg]
	Ls   = Lv + Lf // latent heat of sublimation [J/kg]
	T0   = 273.15  // freezing temperature [K]
	P0   = 1.e5    // reference pressure for the exner function [Pa]
	Ep   = Rd / Rv // ratio of gas constants [-]
)

// Exner returns the exner function (p/p0)^(Rd/cp) at pressure p [Pa].
func Exner(p float64) float64 {
	return math.Pow(p/P0, Rd/Cp)
}

// Qsat returns the saturation specific humidity [kg/kg] at pressure p [Pa]
// given the saturation vapor pressure es [Pa].
func Qsat(p, es float64) float64 {
	return Ep * es / (p - (1-Ep)*es)
}
