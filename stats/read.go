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

package stats

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// ReadVariable returns the values of the named variable in the NetCDF
// file at path, along with the lengths of its dimensions. For record
// variables the first length is the number of records in the file.
func ReadVariable(path, name string) ([]float64, []int, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stats: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, nil, fmt.Errorf("stats: reading %s: %v", path, err)
	}
	lengths := f.Header.Lengths(name)
	if lengths == nil {
		return nil, nil, fmt.Errorf("stats: no variable %s in %s", name, path)
	}
	dims := append([]int(nil), lengths...)
	var begin, end []int
	if f.Header.IsRecordVariable(name) {
		fi, err := ff.Stat()
		if err != nil {
			return nil, nil, fmt.Errorf("stats: %v", err)
		}
		dims[0] = int(f.Header.NumRecs(fi.Size()))
		begin = make([]int, len(dims))
		end = make([]int, len(dims))
		for i, d := range dims {
			end[i] = d - 1
		}
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	if n == 0 {
		return nil, dims, nil
	}
	r := f.Reader(name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, nil, fmt.Errorf("stats: reading %s: %v", name, err)
	}
	switch v := buf.(type) {
	case []float64:
		return v, dims, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, dims, nil
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, dims, nil
	default:
		return nil, nil, fmt.Errorf("stats: variable %s has unsupported type %T", name, buf)
	}
}
