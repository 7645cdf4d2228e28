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
	"strings"
)

// Process is a group of microphysical conversions that can be switched
// on or off.
type Process int

// The microphysical processes.
const (
	// Autoconversion converts cloud liquid to rain, cloud ice to snow
	// and snow to graupel.
	Autoconversion Process = iota

	// Collection covers accretion and collection between categories,
	// vapor deposition and sublimation, evaporation of rain, melting and
	// heterogeneous freezing.
	Collection

	// Bergeron is the growth of ice at the expense of cloud liquid.
	// It is not implemented: enabling it has no effect.
	Bergeron

	numProcesses
)

var processNames = [...]string{
	Autoconversion: "autoconversion",
	Collection:     "collection",
	Bergeron:       "bergeron",
}

func (p Process) String() string {
	if p < 0 || p >= numProcesses {
		return fmt.Sprintf("Process(%d)", int(p))
	}
	return processNames[p]
}

// Implemented reports whether p changes the model state when enabled.
func (p Process) Implemented() bool {
	return p == Autoconversion || p == Collection
}

// ParseProcess returns the process with the given name.
func ParseProcess(name string) (Process, error) {
	for p, n := range processNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Process(p), nil
		}
	}
	return 0, fmt.Errorf("nsw6: invalid process option %s", name)
}

// ProcessSet is a set of enabled processes.
type ProcessSet uint

// NewProcessSet returns a set holding ps.
func NewProcessSet(ps ...Process) ProcessSet {
	var s ProcessSet
	for _, p := range ps {
		s |= 1 << uint(p)
	}
	return s
}

// DefaultProcesses are the processes enabled unless configured otherwise.
var DefaultProcesses = NewProcessSet(Autoconversion, Collection)

// ParseProcessSet returns the set of processes with the given names.
func ParseProcessSet(names []string) (ProcessSet, error) {
	var s ProcessSet
	for _, n := range names {
		p, err := ParseProcess(n)
		if err != nil {
			return 0, err
		}
		s |= NewProcessSet(p)
	}
	return s, nil
}

// Has reports whether p is in the set.
func (s ProcessSet) Has(p Process) bool {
	return s&(1<<uint(p)) != 0
}

// Processes returns the processes in the set.
func (s ProcessSet) Processes() []Process {
	var ps []Process
	for p := Process(0); p < numProcesses; p++ {
		if s.Has(p) {
			ps = append(ps, p)
		}
	}
	return ps
}

func (s ProcessSet) String() string {
	ps := s.Processes()
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ",")
}
