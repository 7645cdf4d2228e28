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

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/sparse"
)

// Grid holds the index space of a structured 3D domain with one layer of
// ghost cells on every side. Arrays on the grid are flat and addressed as
// i + j*Icells + k*Ijcells.
type Grid struct {
	Itot, Jtot, Ktot       int // number of interior cells
	Igc, Jgc, Kgc          int // number of ghost cells
	Icells, Jcells, Kcells int // number of cells including ghost cells
	Ijcells, Ncells        int

	// Interior bounds; starts are inclusive and ends exclusive.
	Istart, Iend int
	Jstart, Jend int
	Kstart, Kend int

	Zsize float64   // domain height [m]
	Z     []float64 // full level heights [m], length Kcells
	Zh    []float64 // half level heights [m], length Kcells+1
	Dz    []float64 // full level thickness [m], length Kcells
	Dzi   []float64 // inverse of Dz [1/m]
}

// NewGrid returns a grid with itot × jtot × ktot interior cells and
// uniform vertical spacing over a domain of height zsize.
func NewGrid(itot, jtot, ktot int, zsize float64) (*Grid, error) {
	if ktot < 1 {
		return nil, fmt.Errorf("cloudsim: invalid number of vertical levels %d", ktot)
	}
	if zsize <= 0 {
		return nil, fmt.Errorf("cloudsim: invalid domain height %g", zsize)
	}
	dz := zsize / float64(ktot)
	z := make([]float64, ktot)
	for k := range z {
		z[k] = (float64(k) + 0.5) * dz
	}
	return NewGridZ(itot, jtot, z)
}

// NewGridZ returns a grid with itot × jtot interior columns whose
// interior full levels are located at heights z, which must be positive
// and strictly increasing. Half levels are placed midway between full
// levels, with the lowest half level at the surface.
func NewGridZ(itot, jtot int, z []float64) (*Grid, error) {
	if itot < 1 || jtot < 1 || len(z) < 1 {
		return nil, fmt.Errorf("cloudsim: invalid grid dimensions %d × %d × %d", itot, jtot, len(z))
	}
	g := &Grid{
		Itot: itot, Jtot: jtot, Ktot: len(z),
		Igc: 1, Jgc: 1, Kgc: 1,
	}
	g.Icells = g.Itot + 2*g.Igc
	g.Jcells = g.Jtot + 2*g.Jgc
	g.Kcells = g.Ktot + 2*g.Kgc
	g.Ijcells = g.Icells * g.Jcells
	g.Ncells = g.Ijcells * g.Kcells
	g.Istart, g.Iend = g.Igc, g.Igc+g.Itot
	g.Jstart, g.Jend = g.Jgc, g.Jgc+g.Jtot
	g.Kstart, g.Kend = g.Kgc, g.Kgc+g.Ktot

	g.Z = make([]float64, g.Kcells)
	g.Zh = make([]float64, g.Kcells+1)
	g.Dz = make([]float64, g.Kcells)
	g.Dzi = make([]float64, g.Kcells)

	for k, zz := range z {
		if zz <= 0 || (k > 0 && zz <= z[k-1]) {
			return nil, fmt.Errorf("cloudsim: full level heights must be positive and increasing; level %d is %g", k, zz)
		}
		g.Z[g.Kstart+k] = zz
	}
	g.Zh[g.Kstart] = 0
	for k := g.Kstart + 1; k < g.Kend; k++ {
		g.Zh[k] = 0.5 * (g.Z[k-1] + g.Z[k])
	}
	g.Zh[g.Kend] = 2*g.Z[g.Kend-1] - g.Zh[g.Kend-1]
	g.Zsize = g.Zh[g.Kend]

	for k := g.Kstart; k < g.Kend; k++ {
		g.Dz[k] = g.Zh[k+1] - g.Zh[k]
		if g.Dz[k] <= 0 || g.Z[k] >= g.Zh[k+1] {
			return nil, fmt.Errorf("cloudsim: level %d at %g m is not centered in its layer", k-g.Kstart, g.Z[k])
		}
	}
	// Ghost levels mirror their interior neighbors.
	g.Dz[g.Kstart-1] = g.Dz[g.Kstart]
	g.Dz[g.Kend] = g.Dz[g.Kend-1]
	g.Z[g.Kstart-1] = -g.Z[g.Kstart]
	g.Z[g.Kend] = 2*g.Zh[g.Kend] - g.Z[g.Kend-1]
	g.Zh[g.Kstart-1] = -g.Dz[g.Kstart-1]
	g.Zh[g.Kend+1] = g.Zh[g.Kend] + g.Dz[g.Kend]
	for k := range g.Dz {
		g.Dzi[k] = 1 / g.Dz[k]
	}
	return g, nil
}

// Index returns the flat array index of cell (i, j, k).
func (g *Grid) Index(i, j, k int) int {
	return i + j*g.Icells + k*g.Ijcells
}

// NewArray returns a zeroed 3D array covering the grid, including
// ghost cells. The array is shaped (Kcells, Jcells, Icells) so that its
// flat index matches Index.
func (g *Grid) NewArray() *sparse.DenseArray {
	return sparse.ZerosDense(g.Kcells, g.Jcells, g.Icells)
}

// NewSlice returns a zeroed horizontal 2D buffer covering the grid,
// including ghost cells, addressed as i + j*Icells.
func (g *Grid) NewSlice() []float64 {
	return make([]float64, g.Ijcells)
}

// Interior2D returns the interior values of a horizontal slice.
func (g *Grid) Interior2D(slice []float64) []float64 {
	out := make([]float64, 0, g.Itot*g.Jtot)
	for j := g.Jstart; j < g.Jend; j++ {
		for i := g.Istart; i < g.Iend; i++ {
			out = append(out, slice[i+j*g.Icells])
		}
	}
	return out
}

// Columns concurrently calls f for every interior column (i, j). The
// columns are divided among nprocs goroutines; worker is the index of the
// goroutine running the call, so f can keep per-worker state without
// locking. If nprocs < 1, GOMAXPROCS is used.
func (g *Grid) Columns(nprocs int, f func(worker, i, j int)) {
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	ncol := g.Itot * g.Jtot
	if nprocs > ncol {
		nprocs = ncol
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < ncol; ii += nprocs {
				f(pp, g.Istart+ii%g.Itot, g.Jstart+ii/g.Itot)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
}
