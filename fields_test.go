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

import "testing"

func TestFields(t *testing.T) {
	g, err := NewGrid(2, 2, 3, 300)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFields(g)
	for _, rho := range f.RhoRef {
		if rho != 1 {
			t.Fatalf("default density %g", rho)
		}
	}
	if err := f.InitPrognostic("qr", "Rain water", "kg kg-1"); err != nil {
		t.Fatal(err)
	}
	if err := f.InitPrognostic("qr", "Rain water", "kg kg-1"); err == nil {
		t.Error("duplicate field should be an error")
	}
	if err := f.InitPrognostic("qs", "Snow", "kg kg-1"); err != nil {
		t.Fatal(err)
	}
	if names := f.Names(); len(names) != 2 || names[0] != "qr" || names[1] != "qs" {
		t.Errorf("names %v", names)
	}
	if at := f.AT["qr"]; at.Name != "qrt" || at.Units != "kg kg-1 s-1" {
		t.Errorf("tendency %s [%s]", at.Name, at.Units)
	}
	if _, err := f.Prognostic("qg"); err == nil {
		t.Error("missing field should be an error")
	}
	if _, err := f.Tendency("qg"); err == nil {
		t.Error("missing tendency should be an error")
	}

	qrt, err := f.Tendency("qr")
	if err != nil {
		t.Fatal(err)
	}
	qrt.Elements[g.Index(1, 1, 1)] = 3
	f.ResetTendencies()
	if qrt.Sum() != 0 {
		t.Error("tendencies were not reset")
	}
	if len(f.NewSlice()) != g.Ijcells {
		t.Error("wrong slice length")
	}
}

func TestScratch(t *testing.T) {
	g, err := NewGrid(2, 1, 2, 200)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFields(g)
	a := f.Scratch()
	a.Elements[3] = 5
	f.Release(a)
	b := f.Scratch()
	if b != a {
		t.Error("released array was not reused")
	}
	if b.Sum() != 0 {
		t.Error("reused array was not zeroed")
	}
	c := f.Scratch()
	if c == b {
		t.Error("an array in use was handed out twice")
	}
	f.Release(b, c)
}
