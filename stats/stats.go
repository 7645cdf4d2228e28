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

// Package stats writes horizontally averaged time series and tendency
// profiles to a NetCDF file, one record per statistics time.
package stats

import (
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	gostats "github.com/GaryBoone/GoStats/stats"
	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/gonum/floats"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cloudsim"
)

// timeTolerance is the slack [s] when comparing the model time with the
// next statistics time.
const timeTolerance = 1.e-6

// variable is one output variable.
type variable struct {
	name, longName string
	units          unit.Dimensions
	unitsKnown     bool
	profile        bool // (time, z) if true, otherwise (time)

	value   []float64 // the current record
	summary gostats.Stats
}

// Writer collects statistics and writes them to a NetCDF file. It
// implements cloudsim.Stats.
type Writer struct {
	grid     *cloudsim.Grid
	path     string
	interval float64
	log      logrus.FieldLogger

	exprSrc map[string]string
	exprs   map[string]*govaluate.EvaluableExpression

	// RunID is written as a global attribute if set before Open.
	RunID string

	mu       sync.Mutex
	vars     map[string]*variable
	names    []string             // in order of registration
	prevTend map[string][]float64 // last tendency profile of each field

	ff       *os.File
	f        *cdf.File
	record   int
	enabled  bool
	time     float64
	nextTime float64
}

var _ cloudsim.Stats = &Writer{}

// New returns a writer that will create the file at path, writing one
// record every interval seconds of model time. exprs holds derived time
// series: each key is the name of a series and each value a govaluate
// expression in terms of other time series.
func New(path string, g *cloudsim.Grid, interval float64, exprs map[string]string, log logrus.FieldLogger) (*Writer, error) {
	if !(interval > 0) {
		return nil, fmt.Errorf("stats: invalid interval %g", interval)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &Writer{
		grid:     g,
		path:     path,
		interval: interval,
		log:      log,
		exprSrc:  exprs,
		exprs:    make(map[string]*govaluate.EvaluableExpression),
		vars:     make(map[string]*variable),
		prevTend: make(map[string][]float64),
	}
	for name, src := range exprs {
		e, err := govaluate.NewEvaluableExpression(src)
		if err != nil {
			return nil, fmt.Errorf("stats: output variable %s: %v", name, err)
		}
		w.exprs[name] = e
	}
	return w, nil
}

func (w *Writer) add(v *variable) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f != nil {
		return fmt.Errorf("stats: can not add variable %s after the output file is open", v.name)
	}
	if _, ok := w.vars[v.name]; ok {
		return fmt.Errorf("stats: variable %s already exists", v.name)
	}
	if v.profile {
		v.value = make([]float64, w.grid.Ktot)
	} else {
		v.value = make([]float64, 1)
	}
	w.vars[v.name] = v
	w.names = append(w.names, v.name)
	return nil
}

// AddTimeSeries registers a scalar time series.
func (w *Writer) AddTimeSeries(name, longName string, units unit.Dimensions) error {
	return w.add(&variable{name: name, longName: longName, units: units, unitsKnown: true})
}

// TendencyName returns the name of the output variable holding the
// tendency of field due to budget.
func TendencyName(field, budget string) string {
	return field + "t_" + budget
}

// AddTendency registers the tendency profile of field due to budget.
func (w *Writer) AddTendency(field, budget string, units unit.Dimensions) error {
	return w.add(&variable{
		name:       TendencyName(field, budget),
		longName:   fmt.Sprintf("Tendency of %s due to %s", field, budget),
		units:      units,
		unitsKnown: true,
		profile:    true,
	})
}

// derivedUnits returns the units shared by every variable in e, or false
// if they differ.
func (w *Writer) derivedUnits(e *govaluate.EvaluableExpression) (unit.Dimensions, bool) {
	var ref *unit.Unit
	for _, name := range e.Vars() {
		v := w.vars[name]
		if ref == nil {
			ref = unit.New(0, v.units)
			continue
		}
		if err := ref.Check(v.units); err != nil {
			return nil, false
		}
	}
	if ref == nil {
		return unit.Dimless, true
	}
	return ref.Dimensions(), true
}

// Open checks the derived variables and creates the output file. No
// variables can be added afterwards.
func (w *Writer) Open() error {
	exprNames := make([]string, 0, len(w.exprs))
	for name := range w.exprs {
		exprNames = append(exprNames, name)
	}
	sort.Strings(exprNames)
	for _, name := range exprNames {
		e := w.exprs[name]
		for _, v := range e.Vars() {
			vv, ok := w.vars[v]
			if !ok || vv.profile {
				return fmt.Errorf("stats: undefined time series %s in output variable %s", v, name)
			}
		}
		u, ok := w.derivedUnits(e)
		if !ok {
			w.log.WithField("variable", name).Warn("stats: output variable combines different units")
		}
		if err := w.add(&variable{name: name, longName: w.exprSrc[name], units: u, unitsKnown: ok}); err != nil {
			return err
		}
	}

	g := w.grid
	h := cdf.NewHeader([]string{"time", "z"}, []int{0, g.Ktot})
	h.AddAttribute("", "title", "cloudsim statistics")
	h.AddAttribute("", "cloudsim_version", cloudsim.Version)
	if w.RunID != "" {
		h.AddAttribute("", "run_id", w.RunID)
	}
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "s")
	h.AddVariable("z", []string{"z"}, []float64{0})
	h.AddAttribute("z", "units", "m")
	for _, name := range w.names {
		v := w.vars[name]
		dims := []string{"time"}
		if v.profile {
			dims = []string{"time", "z"}
		}
		h.AddVariable(name, dims, []float64{0})
		h.AddAttribute(name, "long_name", v.longName)
		if v.unitsKnown {
			h.AddAttribute(name, "units", v.units.String())
		}
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("stats: creating header: %v", errs[0])
	}

	ff, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("stats: %v", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("stats: creating NetCDF file: %v", err)
	}
	z := make([]float64, g.Ktot)
	copy(z, g.Z[g.Kstart:g.Kend])
	if _, err := f.Writer("z", []int{0}, []int{len(z)}).Write(z); err != nil {
		ff.Close()
		return fmt.Errorf("stats: writing z: %v", err)
	}
	w.mu.Lock()
	w.ff, w.f = ff, f
	w.mu.Unlock()
	return nil
}

// Begin starts a new model step at time. Statistics are enabled for the
// step if time has reached the next statistics time.
func (w *Writer) Begin(time float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return fmt.Errorf("stats: output file is not open")
	}
	w.time = time
	w.enabled = time >= w.nextTime-timeTolerance
	if w.enabled {
		for _, v := range w.vars {
			for i := range v.value {
				v.value[i] = 0
			}
		}
		for k := range w.prevTend {
			delete(w.prevTend, k)
		}
	}
	return nil
}

// Enabled reports whether statistics are computed during this step.
func (w *Writer) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// NextTime returns the model time of the next record.
func (w *Writer) NextTime() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextTime
}

func (w *Writer) variable(name string, profile bool) (*variable, error) {
	v, ok := w.vars[name]
	if !ok || v.profile != profile {
		return nil, fmt.Errorf("stats: undefined variable %s", name)
	}
	return v, nil
}

// CalcStats2D sets the named time series to the mean of the interior of
// the horizontal slice data plus offset.
func (w *Writer) CalcStats2D(name string, data []float64, offset float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, err := w.variable(name, false)
	if err != nil {
		return err
	}
	v.value[0] = gostats.StatsMean(w.grid.Interior2D(data)) + offset
	return nil
}

// Mean returns the horizontal mean profile of the interior of a.
func Mean(g *cloudsim.Grid, a *sparse.DenseArray) []float64 {
	out := make([]float64, g.Ktot)
	level := make([]float64, 0, g.Itot*g.Jtot)
	for k := g.Kstart; k < g.Kend; k++ {
		level = level[:0]
		for j := g.Jstart; j < g.Jend; j++ {
			for i := g.Istart; i < g.Iend; i++ {
				level = append(level, a.Elements[g.Index(i, j, k)])
			}
		}
		out[k-g.Kstart] = gostats.StatsMean(level)
	}
	return out
}

// CalcTend sets the tendency profile of field due to budget to the change
// in the horizontal mean of tend since the last call for field during
// this step.
func (w *Writer) CalcTend(field, budget string, tend *sparse.DenseArray) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, err := w.variable(TendencyName(field, budget), true)
	if err != nil {
		return err
	}
	mean := Mean(w.grid, tend)
	copy(v.value, mean)
	if prev, ok := w.prevTend[field]; ok {
		floats.Sub(v.value, prev)
	}
	w.prevTend[field] = mean
	return nil
}

// End finishes the step, evaluating the derived variables and writing a
// record if statistics were enabled.
func (w *Writer) End() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled {
		return nil
	}
	w.enabled = false

	params := make(map[string]interface{}, len(w.vars))
	for name, v := range w.vars {
		if !v.profile {
			params[name] = v.value[0]
		}
	}
	for name, e := range w.exprs {
		r, err := e.Evaluate(params)
		if err != nil {
			return fmt.Errorf("stats: evaluating %s: %v", name, err)
		}
		val, ok := r.(float64)
		if !ok {
			return fmt.Errorf("stats: output variable %s is %T, not a number", name, r)
		}
		w.vars[name].value[0] = val
	}

	rec := w.record
	if _, err := w.f.Writer("time", []int{rec}, nil).Write([]float64{w.time}); err != nil {
		return fmt.Errorf("stats: writing time: %v", err)
	}
	for _, name := range w.names {
		v := w.vars[name]
		begin := []int{rec}
		if v.profile {
			begin = []int{rec, 0}
		}
		if _, err := w.f.Writer(name, begin, nil).Write(v.value); err != nil {
			return fmt.Errorf("stats: writing %s: %v", name, err)
		}
		if v.profile {
			v.summary.Update(floats.Max(v.value))
		} else {
			v.summary.Update(v.value[0])
		}
	}
	if err := cdf.UpdateNumRecs(w.ff); err != nil {
		return fmt.Errorf("stats: %v", err)
	}
	w.record++
	for w.nextTime <= w.time+timeTolerance {
		w.nextTime += w.interval
	}
	return nil
}

// Records returns the number of records written.
func (w *Writer) Records() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ff == nil {
		return nil
	}
	if err := cdf.UpdateNumRecs(w.ff); err != nil {
		w.ff.Close()
		return fmt.Errorf("stats: %v", err)
	}
	err := w.ff.Close()
	w.ff, w.f = nil, nil
	return err
}

// Summary holds the statistics of one variable over every record. For
// profiles they are statistics of the largest value in each record.
type Summary struct {
	Name      string
	Units     string
	Count     int
	Mean, Max float64
}

// Summary returns the summary of every variable in order of
// registration.
func (w *Writer) Summary() []Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := make([]Summary, 0, len(w.names))
	for _, name := range w.names {
		v := w.vars[name]
		sum := Summary{Name: name, Count: v.summary.Count(), Mean: math.NaN(), Max: math.NaN()}
		if v.unitsKnown {
			sum.Units = v.units.String()
		}
		if sum.Count > 0 {
			sum.Mean, sum.Max = v.summary.Mean(), v.summary.Max()
		}
		s = append(s, sum)
	}
	return s
}

// LogSummary writes the summary to l.
func (w *Writer) LogSummary(l logrus.FieldLogger) {
	for _, s := range w.Summary() {
		l.WithFields(logrus.Fields{
			"variable": s.Name,
			"units":    s.Units,
			"records":  s.Count,
			"mean":     s.Mean,
			"max":      s.Max,
		}).Info("statistics")
	}
}
