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

package hash

import (
	"math"
	"testing"
)

type settings struct {
	Name  string
	Value float64
	Vars  map[string]string
	Next  *settings
}

func TestHash(t *testing.T) {
	a := settings{Name: "a", Value: 1, Vars: map[string]string{"x": "1", "y": "2", "z": "3"}, Next: &settings{Name: "b"}}
	b := settings{Name: "a", Value: 1, Vars: map[string]string{"z": "3", "y": "2", "x": "1"}, Next: &settings{Name: "b"}}
	if Hash(a) != Hash(b) {
		t.Errorf("equal values have different hashes: %s != %s", Hash(a), Hash(b))
	}
	b.Next.Name = "c"
	if Hash(a) == Hash(b) {
		t.Error("different values have the same hash")
	}
	if len(Hash(a)) != 32 {
		t.Errorf("hash length: %d", len(Hash(a)))
	}
	if RunID(a) != Hash(a)[0:12] {
		t.Errorf("run id %s", RunID(a))
	}
	// NaN values are allowed.
	n := settings{Value: math.NaN()}
	if Hash(n) != Hash(settings{Value: math.NaN()}) {
		t.Error("NaN hash is not stable")
	}
}
