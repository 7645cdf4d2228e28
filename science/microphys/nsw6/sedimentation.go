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

	"github.com/ctessum/atmos/advect"
	"github.com/spatialmodel/cloudsim"
)

// Buffers are the scratch arrays used by a sedimentation scheme. Each is
// a flat 3D array on the grid. Columns only touch their own cells, so one
// set of buffers can be shared by concurrent columns.
type Buffers struct {
	W     []float64 // fall speed [m/s]
	C     []float64 // Courant number
	Slope []float64 // limited slope of the mixing ratio
	Flux  []float64 // mass flux through the bottom of each cell [kg/m²/s]
}

// Column describes the inputs and outputs of sedimenting one category
// over one time step.
type Column struct {
	Grid    *cloudsim.Grid
	Rho     []float64 // reference density at full levels [kg/m³]
	Species Species
	Q       []float64 // mixing ratio [kg/kg]
	Qt      []float64 // tendency of Q [kg/kg/s]
	Bot     []float64 // surface precipitation rate [kg/m²/s]
	Dt      float64
	Buffers
}

// Scheme sediments column (i, j) of c, adding to c.Qt and setting c.Bot.
// It returns the largest Courant number found in the column, taking both
// the cell fall speeds and the scheme's own interface values into account.
type Scheme func(c *Column, i, j int) float64

// SedimentationScheme returns the sedimentation scheme with the given
// name. Valid options are "ss08", the multi-cell flux-limited scheme of
// Stevens and Seifert (2008), and "upwind", a first-order donor-cell
// scheme.
func SedimentationScheme(name string) (Scheme, error) {
	switch name {
	case "ss08":
		return ss08, nil
	case "upwind":
		return upwind, nil
	default:
		return nil, fmt.Errorf("nsw6: invalid sedimentation option %s", name)
	}
}

// Sediment runs scheme over every interior column of c using nprocs
// goroutines and returns the largest Courant number.
func Sediment(scheme Scheme, c *Column, nprocs int) float64 {
	if nprocs < 1 {
		nprocs = 1
	}
	cmax := make([]float64, nprocs)
	c.Grid.Columns(nprocs, func(p, i, j int) {
		cmax[p] = math.Max(cmax[p], scheme(c, i, j))
	})
	var m float64
	for _, v := range cmax {
		m = math.Max(m, v)
	}
	return m
}

// minmod returns the argument with the smallest magnitude if a and b have
// the same sign and zero otherwise.
func minmod(a, b float64) float64 {
	s := math.Copysign(1, a)
	return s * math.Max(0, math.Min(math.Abs(a), s*b))
}

// fallSpeeds sets c.W in column ij, including the ghost cells: the ghost
// below the domain copies the lowest level and the one above is zero. It
// returns the largest cell Courant number w Δt/Δz in the column.
func (c *Column) fallSpeeds(ij int) float64 {
	g := c.Grid
	kk := g.Ijcells
	rho0 := c.Rho[g.Kstart]
	var cmax float64
	for k := g.Kstart; k < g.Kend; k++ {
		ijk := ij + k*kk
		c.W[ijk] = c.Species.FallSpeed(rho0, c.Rho[k], c.Q[ijk])
		cmax = math.Max(cmax, c.W[ijk]*c.Dt*g.Dzi[k])
	}
	c.W[ij+(g.Kstart-1)*kk] = c.W[ij+g.Kstart*kk]
	c.W[ij+g.Kend*kk] = 0
	return cmax
}

// limit clips the mass ftot [kg/m²] leaving cell ijk at level k over one
// step so that no more leaves than is present plus what enters from
// above, and stores the resulting flux.
func (c *Column) limit(ftot float64, ijk, k int) {
	g := c.Grid
	ftot = math.Min(ftot, c.Rho[k]*g.Dz[k]*c.Q[ijk]-c.Flux[ijk+g.Ijcells]*c.Dt)
	c.Flux[ijk] = -ftot / c.Dt
}

// divergence adds the flux divergence to the tendency and stores the
// surface rate.
func (c *Column) divergence(ij int) {
	g := c.Grid
	kk := g.Ijcells
	for k := g.Kstart; k < g.Kend; k++ {
		ijk := ij + k*kk
		c.Qt[ijk] += -(c.Flux[ijk+kk] - c.Flux[ijk]) / c.Rho[k] * g.Dzi[k]
	}
	c.Bot[ij] = -c.Flux[ij+g.Kstart*kk]
}

func ss08(c *Column, i, j int) float64 {
	g := c.Grid
	kk := g.Ijcells
	ij := i + j*g.Icells
	q, w, cn, slope := c.Q, c.W, c.C, c.Slope

	cmax := c.fallSpeeds(ij)
	for k := g.Kstart; k < g.Kend; k++ {
		ijk := ij + k*kk
		cn[ijk] = 0.25 * (w[ijk-kk] + 2*w[ijk] + w[ijk+kk]) * g.Dzi[k] * c.Dt
		cmax = math.Max(cmax, cn[ijk])
		slope[ijk] = minmod(q[ijk]-q[ijk-kk], q[ijk+kk]-q[ijk])
	}

	c.Flux[ij+g.Kend*kk] = 0
	for k := g.Kend - 1; k >= g.Kstart; k-- {
		ijk := ij + k*kk

		// Walk up from the donor cell until its Courant number is used up.
		kc := k
		var ftot, dzz float64 // mass [kg/m²] and distance covered [m]
		cc := math.Min(1, cn[ijk])
		for cc > 0 && kc < g.Kend {
			ijkc := ij + kc*kk
			ftot += c.Rho[kc] * (q[ijkc] + 0.5*slope[ijkc]*(1-cc)) * cc * g.Dz[kc]
			dzz += g.Dz[kc]
			kc++
			cc = math.Min(1, cn[ijk]-dzz*g.Dzi[kc])
		}
		c.limit(ftot, ijk, k)
	}
	c.divergence(ij)
	return cmax
}

func upwind(c *Column, i, j int) float64 {
	g := c.Grid
	kk := g.Ijcells
	ij := i + j*g.Icells
	q, w := c.Q, c.W

	cmax := c.fallSpeeds(ij)
	c.Flux[ij+g.Kend*kk] = 0
	for k := g.Kend - 1; k >= g.Kstart; k-- {
		ijk := ij + k*kk
		wh := -0.5 * (w[ijk-kk] + w[ijk]) // vertical velocity at the bottom of the cell
		c.C[ijk] = -wh * g.Dzi[k] * c.Dt
		cmax = math.Max(cmax, c.C[ijk])
		f := c.Rho[k] * advect.UpwindFlux(wh, q[ijk-kk], q[ijk], 1)
		c.limit(-f*c.Dt, ijk, k)
	}
	c.divergence(ij)
	return cmax
}
