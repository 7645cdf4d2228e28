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
	"math/rand"
	"testing"

	"github.com/spatialmodel/cloudsim"
)

func TestMinmod(t *testing.T) {
	for _, tc := range []struct{ a, b, want float64 }{
		{1, 2, 1},
		{3, 2, 2},
		{-1, -2, -1},
		{-3, -0.5, -0.5},
		{1, -1, 0},
		{-1, 1, 0},
		{0, 1, 0},
	} {
		if v := minmod(tc.a, tc.b); v != tc.want {
			t.Errorf("minmod(%g, %g): have %g, want %g", tc.a, tc.b, v, tc.want)
		}
	}
}

func TestSedimentationScheme(t *testing.T) {
	for _, name := range []string{"ss08", "upwind"} {
		if _, err := SedimentationScheme(name); err != nil {
			t.Error(err)
		}
	}
	if _, err := SedimentationScheme("xxx"); err == nil {
		t.Error("should be an error")
	}
}

// testColumn returns a column of random rain over 4 × 3 columns of 30
// stretched levels, with density decreasing with height.
func testColumn(t *testing.T, dt float64) *Column {
	z := make([]float64, 30)
	zh := 0.
	for k := range z {
		dz := 50 + 10*float64(k)
		z[k] = zh + dz/2
		zh += dz
	}
	g, err := cloudsim.NewGridZ(4, 3, z)
	if err != nil {
		t.Fatal(err)
	}
	rho := make([]float64, g.Kcells)
	for k := range rho {
		rho[k] = 1.2 * math.Exp(-g.Z[k]/8000)
	}
	r := rand.New(rand.NewSource(1))
	q := g.NewArray().Elements
	for k := g.Kstart; k < g.Kend; k++ {
		for j := g.Jstart; j < g.Jend; j++ {
			for i := g.Istart; i < g.Iend; i++ {
				if r.Float64() < 0.2 {
					continue // leave gaps
				}
				q[g.Index(i, j, k)] = 2.e-3 * r.Float64()
			}
		}
	}
	return &Column{
		Grid:    g,
		Rho:     rho,
		Species: Params(Rain),
		Q:       q,
		Qt:      g.NewArray().Elements,
		Bot:     g.NewSlice(),
		Dt:      dt,
		Buffers: Buffers{
			W:     g.NewArray().Elements,
			C:     g.NewArray().Elements,
			Slope: g.NewArray().Elements,
			Flux:  g.NewArray().Elements,
		},
	}
}

func TestSediment(t *testing.T) {
	for _, name := range []string{"ss08", "upwind"} {
		// The long step moves rain through several levels at once.
		for _, dt := range []float64{1, 30} {
			scheme, err := SedimentationScheme(name)
			if err != nil {
				t.Fatal(err)
			}
			c := testColumn(t, dt)
			g := c.Grid
			cmax := Sediment(scheme, c, 3)
			if dt > 1 && cmax <= 1 {
				t.Errorf("%s dt=%g: Courant number %g should exceed 1", name, dt, cmax)
			}
			for j := g.Jstart; j < g.Jend; j++ {
				for i := g.Istart; i < g.Iend; i++ {
					var net, scale float64
					for k := g.Kstart; k < g.Kend; k++ {
						ijk := g.Index(i, j, k)
						m := c.Rho[k] * g.Dz[k]
						net += m * c.Qt[ijk]
						scale += m * c.Q[ijk]
						if qn := c.Q[ijk] + dt*c.Qt[ijk]; qn < -1.e-15 {
							t.Errorf("%s dt=%g (%d,%d,%d): negative mixing ratio %g", name, dt, i, j, k, qn)
						}
					}
					bot := c.Bot[g.Index(i, j, 0)]
					if bot < 0 {
						t.Errorf("%s dt=%g (%d,%d): negative surface rate %g", name, dt, i, j, bot)
					}
					if math.Abs(net+bot)*dt > 1.e-13*scale {
						t.Errorf("%s dt=%g (%d,%d): mass not conserved, %g + %g", name, dt, i, j, net, bot)
					}
				}
			}
		}
	}
}

// Both schemes agree on the surface rate for a uniform column at small
// Courant numbers, where it approaches ρ q w at the lowest level.
func TestSedimentUniform(t *testing.T) {
	for _, name := range []string{"ss08", "upwind"} {
		scheme, _ := SedimentationScheme(name)
		c := testColumn(t, 0.1)
		g := c.Grid
		for k := g.Kstart; k < g.Kend; k++ {
			for j := g.Jstart; j < g.Jend; j++ {
				for i := g.Istart; i < g.Iend; i++ {
					c.Q[g.Index(i, j, k)] = 1.e-3
				}
			}
		}
		Sediment(scheme, c, 1)
		ij := g.Index(g.Istart, g.Jstart, 0)
		k := g.Kstart
		want := c.Rho[k] * 1.e-3 * c.Species.FallSpeed(c.Rho[k], c.Rho[k], 1.e-3)
		if different(c.Bot[ij], want, 1.e-2) {
			t.Errorf("%s: have %g, want %g", name, c.Bot[ij], want)
		}
	}
}

// shaftColumn returns a single column of ktot 100 m levels at unit
// density with rain of mixing ratio qr at the given interior levels. The
// time step is set so that the rain falls courant levels per step.
func shaftColumn(t *testing.T, ktot int, levels []int, qr, courant float64) *Column {
	const dz = 100.
	g, err := cloudsim.NewGrid(1, 1, ktot, dz*float64(ktot))
	if err != nil {
		t.Fatal(err)
	}
	rho := make([]float64, g.Kcells)
	for k := range rho {
		rho[k] = 1
	}
	q := g.NewArray().Elements
	for _, k := range levels {
		q[g.Index(g.Istart, g.Jstart, g.Kstart+k)] = qr
	}
	w := Params(Rain).FallSpeed(1, 1, qr)
	return &Column{
		Grid:    g,
		Rho:     rho,
		Species: Params(Rain),
		Q:       q,
		Qt:      g.NewArray().Elements,
		Bot:     g.NewSlice(),
		Dt:      courant * dz / w,
		Buffers: Buffers{
			W:     g.NewArray().Elements,
			C:     g.NewArray().Elements,
			Slope: g.NewArray().Elements,
			Flux:  g.NewArray().Elements,
		},
	}
}

// An isolated rainy cell has half its Courant number at the surrounding
// interfaces, but the returned value is that of the cell itself.
func TestSedimentIsolatedCourant(t *testing.T) {
	for _, name := range []string{"ss08", "upwind"} {
		scheme, _ := SedimentationScheme(name)
		c := shaftColumn(t, 12, []int{5}, 1.e-3, 0.8)
		if cmax := Sediment(scheme, c, 1); different(cmax, 0.8, 1.e-12) {
			t.Errorf("%s: have %g, want 0.8", name, cmax)
		}
	}
}

// Three rainy levels falling 2.5 levels per step. The interpolated
// Courant numbers are 1.875, 2.5 and 1.875 from the bottom up. The top
// level empties, the middle one passes itself and the top one, and the
// bottom one passes itself and 0.875 of the middle one, so the centre of
// mass falls 4.875/3 levels.
func TestSedimentMultiLevel(t *testing.T) {
	const qr = 1.e-3
	c := shaftColumn(t, 12, []int{6, 7, 8}, qr, 2.5)
	g := c.Grid
	Sediment(ss08, c, 1)

	var mz0, mz1, m0, m1 float64
	for k := g.Kstart; k < g.Kend; k++ {
		ijk := g.Index(g.Istart, g.Jstart, k)
		qn := c.Q[ijk] + c.Dt*c.Qt[ijk]
		if qn < -1.e-18 {
			t.Errorf("negative mixing ratio %g at level %d", qn, k-g.Kstart)
		}
		mz0 += c.Q[ijk] * g.Z[k]
		mz1 += qn * g.Z[k]
		m0 += c.Q[ijk]
		m1 += qn
	}
	if different(m1, m0, 1.e-12) {
		t.Errorf("mass not conserved: %g != %g", m1, m0)
	}
	if bot := c.Bot[g.Index(g.Istart, g.Jstart, 0)]; bot != 0 {
		t.Errorf("rain reached the surface: %g", bot)
	}
	shift := mz0/m0 - mz1/m1
	if want := 4.875 / 3 * 100; different(shift, want, 1.e-10) {
		t.Errorf("centre of mass shift: have %g m, want %g m", shift, want)
	}
	// The level just below the shaft receives what the bottom level
	// passed on.
	below := g.Index(g.Istart, g.Jstart, g.Kstart+5)
	if qn := c.Q[below] + c.Dt*c.Qt[below]; different(qn, 1.875*qr, 1.e-10) {
		t.Errorf("level below the shaft: have %g, want %g", qn, 1.875*qr)
	}
}
