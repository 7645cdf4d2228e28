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
	"sync"
	"testing"

	"github.com/gonum/floats"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(3, 2, 4, 400)
	if err != nil {
		t.Fatal(err)
	}
	if g.Icells != 5 || g.Jcells != 4 || g.Kcells != 6 || g.Ncells != 120 {
		t.Errorf("cells: %d × %d × %d = %d", g.Icells, g.Jcells, g.Kcells, g.Ncells)
	}
	if g.Istart != 1 || g.Iend != 4 || g.Kstart != 1 || g.Kend != 5 {
		t.Errorf("bounds: i [%d, %d), k [%d, %d)", g.Istart, g.Iend, g.Kstart, g.Kend)
	}
	wantZ := []float64{-50, 50, 150, 250, 350, 450}
	wantZh := []float64{-100, 0, 100, 200, 300, 400, 500}
	if !floats.EqualApprox(g.Z, wantZ, 1.e-12) {
		t.Errorf("z = %v, want %v", g.Z, wantZ)
	}
	if !floats.EqualApprox(g.Zh, wantZh, 1.e-12) {
		t.Errorf("zh = %v, want %v", g.Zh, wantZh)
	}
	for k, dzi := range g.Dzi {
		if different(dzi, 0.01, 1.e-12) {
			t.Errorf("dzi[%d] = %g", k, dzi)
		}
	}
	if g.Zsize != 400 {
		t.Errorf("zsize = %g", g.Zsize)
	}
	if i := g.Index(2, 1, 3); i != 2+1*5+3*20 {
		t.Errorf("index %d", i)
	}
	a := g.NewArray()
	if len(a.Elements) != g.Ncells {
		t.Errorf("array length %d", len(a.Elements))
	}
	a.Set(7, 3, 1, 2)
	if a.Elements[g.Index(2, 1, 3)] != 7 {
		t.Error("array index does not match grid index")
	}
}

func TestNewGridErrors(t *testing.T) {
	if _, err := NewGrid(1, 1, 0, 100); err == nil {
		t.Error("no levels should be an error")
	}
	if _, err := NewGrid(1, 1, 10, -100); err == nil {
		t.Error("negative height should be an error")
	}
	if _, err := NewGrid(0, 1, 10, 100); err == nil {
		t.Error("no columns should be an error")
	}
	if _, err := NewGridZ(1, 1, []float64{10, 5}); err == nil {
		t.Error("decreasing heights should be an error")
	}
	if _, err := NewGridZ(1, 1, []float64{0, 100}); err == nil {
		t.Error("a level at the surface should be an error")
	}
}

func TestNewGridZ(t *testing.T) {
	g, err := NewGridZ(1, 1, []float64{10, 30, 60, 100})
	if err != nil {
		t.Fatal(err)
	}
	wantDz := []float64{20, 20, 25, 35, 40, 40}
	if !floats.EqualApprox(g.Dz, wantDz, 1.e-12) {
		t.Errorf("dz = %v, want %v", g.Dz, wantDz)
	}
	if different(g.Zsize, 120, 1.e-12) {
		t.Errorf("zsize = %g", g.Zsize)
	}
	if s := floats.Sum(g.Dz[g.Kstart:g.Kend]); different(s, g.Zsize, 1.e-12) {
		t.Errorf("layers add up to %g, not %g", s, g.Zsize)
	}
}

func TestInterior2D(t *testing.T) {
	g, err := NewGrid(2, 2, 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	s := g.NewSlice()
	for i := range s {
		s[i] = -1
	}
	s[g.Index(1, 1, 0)] = 1
	s[g.Index(2, 1, 0)] = 2
	s[g.Index(1, 2, 0)] = 3
	s[g.Index(2, 2, 0)] = 4
	have := g.Interior2D(s)
	want := []float64{1, 2, 3, 4}
	if !floats.Equal(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestColumns(t *testing.T) {
	g, err := NewGrid(5, 3, 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	for _, nprocs := range []int{0, 1, 4, 100} {
		var mu sync.Mutex
		visits := make(map[[2]int]int)
		g.Columns(nprocs, func(worker, i, j int) {
			if worker < 0 || (nprocs > 0 && worker >= nprocs) {
				t.Errorf("worker %d", worker)
			}
			mu.Lock()
			visits[[2]int{i, j}]++
			mu.Unlock()
		})
		if len(visits) != g.Itot*g.Jtot {
			t.Errorf("nprocs=%d: %d columns visited", nprocs, len(visits))
		}
		for c, n := range visits {
			if n != 1 || c[0] < g.Istart || c[0] >= g.Iend || c[1] < g.Jstart || c[1] >= g.Jend {
				t.Errorf("nprocs=%d: column %v visited %d times", nprocs, c, n)
			}
		}
	}
}
