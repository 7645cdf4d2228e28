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

import "math"

// Presence thresholds [kg/kg].
const (
	qlMin = 1.e-7
	qiMin = 1.e-7
	qrMin = 1.e-12
	qsMin = 1.e-12
	qgMin = 1.e-12
)

const (
	pi  = math.Pi
	pi2 = math.Pi * math.Pi

	rhoW = 1.e3 // density of water [kg/m³]
	rhoS = 1.e2 // density of snow [kg/m³]
	rhoG = 4.e2 // density of graupel [kg/m³]

	n0r = 8.e6 // intercept parameter of rain [m-4]
	n0s = 3.e6 // intercept parameter of snow [m-4]
	n0g = 4.e6 // intercept parameter of graupel [m-4]

	cl = 4218. // specific heat of liquid water [J/kg/K]

	// Collection efficiencies.
	eri = 1.
	erw = 1.
	esw = 1.
	egw = 1.
	egi = 0.1
	esr = 1.
	egr = 1.

	ka = 2.43e-2  // thermal diffusion coefficient of air
	kd = 2.26e-5  // diffusion coefficient of water vapor in air
	mi = 4.19e-13 // mass of one cloud ice particle [kg]
	nu = 1.5e-5   // kinematic viscosity of air [m²/s]

	gammaSacr = 0.025
	gammaSaut = 0.025
	gammaGacs = 0.09
	gammaGaut = 0.09

	// Heterogeneous freezing of rain.
	aPrime = 0.66
	bPrime = 100.

	// Autoconversion thresholds of ice and snow [kg/kg].
	qiCrt = 0.
	qsCrt = 6.e-4

	// Mixing ratio above which rain or snow switch the collection
	// products from snow to graupel [kg/kg].
	qLarge = 1.e-4
)

// Defaults for Config.
const (
	DefaultNd     = 50.e6 // cloud droplet number [m-3]
	DefaultCFLMax = 2.
)
