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
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
)

// decay is a Microphysics that removes field q at a constant rate and
// reports a constant Courant number.
type decay struct {
	f       *Fields
	cfl     *CFLController
	rate    float64
	courant float64

	created, stats int
}

func (d *decay) Create(s Stats) error {
	d.created++
	return s.AddTimeSeries("r", "Decay rate", unit.Herz)
}

func (d *decay) Exec(th Thermo, dt float64, s Stats) error {
	d.cfl.Reset()
	qt, err := d.f.Tendency("q")
	if err != nil {
		return err
	}
	g := d.f.Grid
	for k := g.Kstart; k < g.Kend; k++ {
		for j := g.Jstart; j < g.Jend; j++ {
			for i := g.Istart; i < g.Iend; i++ {
				qt.Elements[g.Index(i, j, k)] -= d.rate
			}
		}
	}
	d.cfl.Observe(d.courant)
	return nil
}

func (d *decay) ExecStats(s Stats, th Thermo, dt float64) error {
	d.stats++
	return s.CalcStats2D("r", d.f.NewSlice(), d.rate)
}

func (d *decay) TimeLimit(dt float64) float64 { return d.cfl.TimeLimit(dt) }
func (d *decay) Stability() *CFLController    { return d.cfl }
func (d *decay) HasMask(string) bool          { return false }
func (d *decay) GetMask(s Stats, name string) error {
	return fmt.Errorf("no mask %s", name)
}

// countStats is a StatsWriter that is enabled at every step.
type countStats struct {
	NopStats
	enabled    bool
	begin, end int
	last2D     float64
}

func (s *countStats) Begin(time float64) error { s.begin++; s.enabled = true; return nil }
func (s *countStats) End() error               { s.end++; s.enabled = false; return nil }
func (s *countStats) Enabled() bool            { return s.enabled }
func (s *countStats) CalcStats2D(name string, data []float64, offset float64) error {
	s.last2D = offset
	return nil
}

func newDecayModel(t *testing.T) (*Model, *decay, *countStats) {
	g, err := NewGrid(2, 1, 2, 200)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFields(g)
	if err := f.InitPrognostic("q", "Tracer", "kg kg-1"); err != nil {
		t.Fatal(err)
	}
	q, _ := f.Prognostic("q")
	for i := range q.Elements {
		q.Elements[i] = 1
	}
	cfl, err := NewCFLController(1)
	if err != nil {
		t.Fatal(err)
	}
	d := &decay{f: f, cfl: cfl, rate: 0.1, courant: 0.5}
	s := new(countStats)
	return &Model{Grid: g, Fields: f, Micro: d, Stats: s, Dt: 1}, d, s
}

func TestModelRun(t *testing.T) {
	m, d, s := newDecayModel(t)
	const endTime = 20.
	var dts []float64
	m.InitFuncs = []DomainManipulator{CreateStats(), CheckMasks()}
	m.RunFuncs = []DomainManipulator{
		func(m *Model) error { dts = append(dts, m.Dt); return nil },
		StatsBegin(),
		MicrophysicsExec(),
		MicrophysicsStats(),
		StatsEnd(),
		Integrate(),
		ClipNegative("q"),
		AdvanceTime(),
		StopAtEndTime(endTime),
		AdaptTimestep(4, endTime, nil),
	}
	if err := m.Init(); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if err := m.Cleanup(); err != nil {
		t.Fatal(err)
	}

	wantDts := []float64{1, 2, 4, 4, 4, 4, 1}
	if len(dts) != len(wantDts) {
		t.Fatalf("time steps %v, want %v", dts, wantDts)
	}
	for i := range dts {
		if different(dts[i], wantDts[i], 1.e-12) {
			t.Errorf("time steps %v, want %v", dts, wantDts)
			break
		}
	}
	if different(m.Time, endTime, 1.e-12) || m.Iteration != 7 {
		t.Errorf("time %g, iteration %d", m.Time, m.Iteration)
	}
	if d.created != 1 || d.stats != 7 || s.begin != 7 || s.end != 7 {
		t.Errorf("created %d, stats %d, begin %d, end %d", d.created, d.stats, s.begin, s.end)
	}
	if s.last2D != d.rate {
		t.Errorf("statistics offset %g", s.last2D)
	}

	g := m.Grid
	q, _ := m.Fields.Prognostic("q")
	for k := 0; k < g.Kcells; k++ {
		for j := 0; j < g.Jcells; j++ {
			for i := 0; i < g.Icells; i++ {
				v := q.Elements[g.Index(i, j, k)]
				interior := i >= g.Istart && i < g.Iend && j >= g.Jstart && j < g.Jend && k >= g.Kstart && k < g.Kend
				if interior && v != 0 {
					t.Errorf("interior q(%d,%d,%d) = %g, want 0 after clipping", i, j, k, v)
				}
				if !interior && v != 1 {
					t.Errorf("ghost q(%d,%d,%d) = %g, want 1", i, j, k, v)
				}
			}
		}
	}
}

func TestIntegrate(t *testing.T) {
	m, _, _ := newDecayModel(t)
	m.Dt = 2
	if err := MicrophysicsExec()(m); err != nil {
		t.Fatal(err)
	}
	if err := Integrate()(m); err != nil {
		t.Fatal(err)
	}
	g := m.Grid
	q, _ := m.Fields.Prognostic("q")
	if v := q.Elements[g.Index(1, 1, 1)]; different(v, 0.8, 1.e-12) {
		t.Errorf("q = %g, want 0.8", v)
	}
	qt, _ := m.Fields.Tendency("q")
	if qt.Sum() != 0 {
		t.Error("tendencies should be zero after integration")
	}

	m.Fields.AP["orphan"] = &Field{Name: "orphan", Data: sparse.ZerosDense(1)}
	if err := Integrate()(m); err == nil {
		t.Error("a field without a tendency should be an error")
	}
	if err := ClipNegative("missing")(m); err == nil {
		t.Error("clipping a missing field should be an error")
	}
}

func TestCheckMasks(t *testing.T) {
	m, _, _ := newDecayModel(t)
	m.InitFuncs = []DomainManipulator{CheckMasks("ql")}
	if err := m.Init(); err == nil || !strings.Contains(err.Error(), "no mask ql") {
		t.Errorf("want mask error, have %v", err)
	}
}

func TestAdaptTimestepReduce(t *testing.T) {
	m, _, _ := newDecayModel(t)
	if err := MicrophysicsExec()(m); err != nil {
		t.Fatal(err)
	}
	global := func(v float64) (float64, error) { return 2 * v, nil }
	if err := AdaptTimestep(100, 1000, global)(m); err != nil {
		t.Fatal(err)
	}
	// The reduced Courant number equals the maximum.
	if m.Dt != 1 {
		t.Errorf("dt = %g, want 1", m.Dt)
	}
	failing := func(float64) (float64, error) { return 0, fmt.Errorf("timeout") }
	if err := AdaptTimestep(100, 1000, failing)(m); err == nil {
		t.Error("a failing reduction should be an error")
	}
}

func TestLog(t *testing.T) {
	m, _, _ := newDecayModel(t)
	buf := bytes.NewBuffer(nil)
	l := logrus.New()
	l.Out = buf
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	f := Log(l, 2)
	for i := 0; i < 4; i++ {
		m.Iteration = i
		if err := f(m); err != nil {
			t.Fatal(err)
		}
	}
	if n := strings.Count(buf.String(), "msg=step"); n != 2 {
		t.Errorf("%d messages:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "iteration=2") {
		t.Errorf("missing iteration field:\n%s", buf.String())
	}
}
