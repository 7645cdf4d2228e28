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
	"sort"
	"sync"

	"github.com/ctessum/sparse"
)

// Field is a named 3D array on the grid.
type Field struct {
	Name     string
	LongName string
	Units    string
	Data     *sparse.DenseArray
}

// Fields holds the named prognostic arrays of a simulation, the
// tendency array that accompanies each of them, the reference density
// profile and a pool of scratch arrays.
type Fields struct {
	Grid *Grid

	// AP holds the prognostic fields and AT the matching tendencies.
	AP map[string]*Field
	AT map[string]*Field

	// RhoRef is the reference density at full levels [kg/m³],
	// length Grid.Kcells.
	RhoRef []float64

	mu      sync.Mutex
	scratch []*sparse.DenseArray
}

// NewFields returns an empty field collection on grid g. The reference
// density defaults to 1 kg/m³ until a thermodynamics module sets it.
func NewFields(g *Grid) *Fields {
	f := &Fields{
		Grid:   g,
		AP:     make(map[string]*Field),
		AT:     make(map[string]*Field),
		RhoRef: make([]float64, g.Kcells),
	}
	for k := range f.RhoRef {
		f.RhoRef[k] = 1
	}
	return f
}

// InitPrognostic adds a prognostic field and its tendency.
func (f *Fields) InitPrognostic(name, longName, units string) error {
	if _, ok := f.AP[name]; ok {
		return fmt.Errorf("cloudsim: prognostic field %s already exists", name)
	}
	f.AP[name] = &Field{Name: name, LongName: longName, Units: units, Data: f.Grid.NewArray()}
	f.AT[name] = &Field{Name: name + "t", LongName: "Tendency of " + longName, Units: units + " s-1", Data: f.Grid.NewArray()}
	return nil
}

// Prognostic returns the data of the named prognostic field.
func (f *Fields) Prognostic(name string) (*sparse.DenseArray, error) {
	fld, ok := f.AP[name]
	if !ok {
		return nil, fmt.Errorf("cloudsim: no prognostic field named %s", name)
	}
	return fld.Data, nil
}

// Tendency returns the tendency array of the named prognostic field.
func (f *Fields) Tendency(name string) (*sparse.DenseArray, error) {
	fld, ok := f.AT[name]
	if !ok {
		return nil, fmt.Errorf("cloudsim: no tendency field named %s", name)
	}
	return fld.Data, nil
}

// Names returns the sorted names of the prognostic fields.
func (f *Fields) Names() []string {
	names := make([]string, 0, len(f.AP))
	for n := range f.AP {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Scratch returns a zeroed 3D array from the scratch pool. It should be
// given back with Release when it is no longer needed.
func (f *Fields) Scratch() *sparse.DenseArray {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.scratch); n > 0 {
		a := f.scratch[n-1]
		f.scratch = f.scratch[:n-1]
		for i := range a.Elements {
			a.Elements[i] = 0
		}
		return a
	}
	return f.Grid.NewArray()
}

// Release returns scratch arrays to the pool.
func (f *Fields) Release(a ...*sparse.DenseArray) {
	f.mu.Lock()
	f.scratch = append(f.scratch, a...)
	f.mu.Unlock()
}

// NewSlice returns a zeroed horizontal buffer on the grid.
func (f *Fields) NewSlice() []float64 {
	return f.Grid.NewSlice()
}

// ResetTendencies sets every tendency array to zero.
func (f *Fields) ResetTendencies() {
	for _, t := range f.AT {
		for i := range t.Data.Elements {
			t.Data.Elements[i] = 0
		}
	}
}
