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
	"math"
	"sync"
)

// cflFloor keeps TimeLimit finite when nothing is moving.
const cflFloor = 1.e-5

// CFLController keeps the largest Courant number observed during a
// single step and converts it into a bound on the next time step.
// It holds no memory across steps: Reset must be called at the start
// of each step.
type CFLController struct {
	// Max is the largest Courant number allowed.
	Max float64

	mu  sync.Mutex
	cfl float64
}

// NewCFLController returns a controller allowing Courant numbers up
// to max.
func NewCFLController(max float64) (*CFLController, error) {
	if !(max > 0) {
		return nil, fmt.Errorf("cloudsim: maximum CFL number must be positive, got %g", max)
	}
	return &CFLController{Max: max}, nil
}

// Reset forgets all observations.
func (c *CFLController) Reset() {
	c.mu.Lock()
	c.cfl = 0
	c.mu.Unlock()
}

// Observe records Courant number v. It is safe for concurrent use.
func (c *CFLController) Observe(v float64) {
	c.mu.Lock()
	if v > c.cfl {
		c.cfl = v
	}
	c.mu.Unlock()
}

// Value returns the largest Courant number observed since the last Reset.
func (c *CFLController) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfl
}

// Merge observes the value held by o, combining the Courant numbers of
// two controllers.
func (c *CFLController) Merge(o *CFLController) {
	c.Observe(o.Value())
}

// Reduce replaces the observed value with op(value). Hosts running
// several subdomains use it to apply a global maximum so that every
// subdomain derives the same time step.
func (c *CFLController) Reduce(op func(float64) (float64, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := op(c.cfl)
	if err != nil {
		return fmt.Errorf("cloudsim: reducing CFL number: %v", err)
	}
	c.cfl = v
	return nil
}

// TimeLimit returns the recommended bound on the next time step given
// the current step dt. The bound is inversely proportional to the
// observed Courant number.
func (c *CFLController) TimeLimit(dt float64) float64 {
	return dt * (c.Max / math.Max(c.Value(), cflFloor))
}
