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

// Package nsw6 implements the six-category single-moment bulk
// microphysics scheme of Tomita (2008). Water is carried as vapor, cloud
// liquid and cloud ice, which together make up total water, and as rain,
// snow and graupel, which are prognostic and fall under gravity.
//
// Tomita, H. (2008). New microphysical schemes with five and six
// categories by diagnostic generation of cloud ice. Journal of the
// Meteorological Society of Japan, 86A, 121-142.
package nsw6

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cloudsim"
)

// ErrMaskUnsupported is the error underlying every GetMask failure.
var ErrMaskUnsupported = errors.New("nsw6: mask not supported")

// MaskError is returned when a statistics mask is requested that the
// scheme can not provide.
type MaskError struct {
	Name string
}

func (e *MaskError) Error() string {
	return fmt.Sprintf("NSW6 microphysics scheme can not provide mask: %q", e.Name)
}

// Unwrap returns ErrMaskUnsupported.
func (e *MaskError) Unwrap() error { return ErrMaskUnsupported }

// IsMaskUnsupported reports whether err was returned by GetMask.
func IsMaskUnsupported(err error) bool {
	return errors.Is(err, ErrMaskUnsupported)
}

// budget is the name under which the tendencies are reported.
const budget = "micro"

var (
	precipUnits  = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2, unit.TimeDim: -1}
	thlTendUnits = unit.Dimensions{unit.TemperatureDim: 1, unit.TimeDim: -1}
	qTendUnits   = unit.Dimensions{unit.TimeDim: -1}
)

// Config holds the settings of the scheme.
type Config struct {
	// Nd is the cloud droplet number concentration [m-3].
	Nd float64

	// CFLMax is the largest sedimentation Courant number the time step
	// limit allows.
	CFLMax float64

	// Processes are the enabled processes.
	Processes ProcessSet

	// Sedimentation is the name of the sedimentation scheme.
	Sedimentation string

	// NumProcessors is the number of goroutines to use. If < 1,
	// GOMAXPROCS is used.
	NumProcessors int

	// Log receives warnings. If nil, the standard logger is used.
	Log logrus.FieldLogger
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Nd:            DefaultNd,
		CFLMax:        DefaultCFLMax,
		Processes:     DefaultProcesses,
		Sedimentation: "ss08",
	}
}

// Microphysics is the NSW6 scheme. It implements cloudsim.Microphysics.
type Microphysics struct {
	fields *cloudsim.Fields
	cfg    Config
	dd     float64 // droplet dispersion term of the rain autoconversion

	transitions []transition
	sediment    Scheme
	stability   *cloudsim.CFLController

	// Surface precipitation rates [kg/m²/s], one slice per category.
	bot [3][]float64
}

var _ cloudsim.Microphysics = &Microphysics{}

// New returns a scheme working on fields, registering the prognostic
// rain, snow and graupel fields.
func New(f *cloudsim.Fields, cfg Config) (*Microphysics, error) {
	if !(cfg.Nd > 0) {
		return nil, fmt.Errorf("nsw6: cloud droplet number must be positive, got %g", cfg.Nd)
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	stability, err := cloudsim.NewCFLController(cfg.CFLMax)
	if err != nil {
		return nil, fmt.Errorf("nsw6: %v", err)
	}
	scheme, err := SedimentationScheme(cfg.Sedimentation)
	if err != nil {
		return nil, err
	}
	m := &Microphysics{
		fields:      f,
		cfg:         cfg,
		dd:          dropletFactor(cfg.Nd),
		transitions: transitionsFor(cfg.Processes),
		sediment:    scheme,
		stability:   stability,
	}
	for _, p := range cfg.Processes.Processes() {
		if !p.Implemented() {
			cfg.Log.WithField("process", p.String()).Warn("nsw6: process is not implemented and has no effect")
		}
	}
	longNames := [...]string{"Rain water specific humidity", "Snow specific humidity", "Graupel specific humidity"}
	for _, c := range Categories {
		if err := f.InitPrognostic(c.Field(), longNames[c], "kg kg-1"); err != nil {
			return nil, fmt.Errorf("nsw6: %v", err)
		}
		m.bot[c] = f.NewSlice()
	}
	return m, nil
}

// Create registers the surface precipitation time series and the
// tendency budgets.
func (m *Microphysics) Create(s cloudsim.Stats) error {
	for _, c := range Categories {
		if err := s.AddTimeSeries(c.SurfaceName(), "Mean surface "+c.String()+" rate", precipUnits); err != nil {
			return fmt.Errorf("nsw6: %v", err)
		}
	}
	if err := s.AddTendency("thl", budget, thlTendUnits); err != nil {
		return fmt.Errorf("nsw6: %v", err)
	}
	for _, name := range []string{"qt", "qr", "qs", "qg"} {
		if err := s.AddTendency(name, budget, qTendUnits); err != nil {
			return fmt.Errorf("nsw6: %v", err)
		}
	}
	return nil
}

// fieldData returns the flat data of the named prognostic field and its
// tendency.
func (m *Microphysics) fieldData(name string) (a, at []float64, err error) {
	p, err := m.fields.Prognostic(name)
	if err != nil {
		return nil, nil, fmt.Errorf("nsw6: %v", err)
	}
	t, err := m.fields.Tendency(name)
	if err != nil {
		return nil, nil, fmt.Errorf("nsw6: %v", err)
	}
	return p.Elements, t.Elements, nil
}

// Exec adds the tendencies of the enabled processes and of sedimentation
// for time step dt and records the largest Courant number.
func (m *Microphysics) Exec(th cloudsim.Thermo, dt float64, s cloudsim.Stats) error {
	m.stability.Reset()

	ql, qi := m.fields.Scratch(), m.fields.Scratch()
	defer m.fields.Release(ql, qi)
	if err := th.ThermoField(ql, "ql"); err != nil {
		return fmt.Errorf("nsw6: %v", err)
	}
	if err := th.ThermoField(qi, "qi"); err != nil {
		return fmt.Errorf("nsw6: %v", err)
	}

	var in [5][]float64
	var tend tendencies
	for i, name := range []string{"qr", "qs", "qg", "qt", "thl"} {
		a, at, err := m.fieldData(name)
		if err != nil {
			return err
		}
		in[i] = a
		switch name {
		case "qr":
			tend.phase[rain] = at
		case "qs":
			tend.phase[snow] = at
		case "qg":
			tend.phase[graupel] = at
		case "qt":
			tend.phase[vapor], tend.phase[cloud], tend.phase[ice] = at, at, at
		case "thl":
			tend.thl = at
		}
	}

	m.processRates(th, dt, in, ql.Elements, qi.Elements, &tend)
	m.sedimentation(dt, in[:3], tend.phase[rain:graupel+1])

	if cfl := m.stability.Value(); cfl > m.cfg.CFLMax {
		m.cfg.Log.WithFields(logrus.Fields{"cfl": cfl, "max": m.cfg.CFLMax}).Warn("nsw6: Courant number above maximum")
	}

	if s.Enabled() {
		for _, name := range []string{"thl", "qt", "qr", "qs", "qg"} {
			at, err := m.fields.Tendency(name)
			if err != nil {
				return fmt.Errorf("nsw6: %v", err)
			}
			if err := s.CalcTend(name, budget, at); err != nil {
				return fmt.Errorf("nsw6: %v", err)
			}
		}
	}
	return nil
}

// processRates runs the Process-Rate Engine over every interior cell.
// in holds qr, qs, qg, qt and thl.
func (m *Microphysics) processRates(th cloudsim.Thermo, dt float64, in [5][]float64, ql, qi []float64, tend *tendencies) {
	g := m.fields.Grid
	rho := m.fields.RhoRef
	p, exner := th.Pressure(), th.ExnerRef()
	procs := m.cfg.Processes

	factors := make([]levelFactors, g.Kcells)
	for k := g.Kstart; k < g.Kend; k++ {
		factors[k] = newLevelFactors(rho[g.Kstart], rho[k])
	}

	nprocs := numProcs(m.cfg.NumProcessors)
	cfl := make([]float64, nprocs)
	g.Columns(nprocs, func(pp, i, j int) {
		var c state
		var r rates
		var present [numPhases]bool
		for k := g.Kstart; k < g.Kend; k++ {
			ijk := g.Index(i, j, k)
			c = state{
				qr: in[0][ijk], qs: in[1][ijk], qg: in[2][ijk],
				qt: in[3][ijk], thl: in[4][ijk],
				ql: ql[ijk], qi: qi[ijk],
				rho: rho[k], exner: exner[k], p: p[k],
			}
			present[cloud] = c.ql > qlMin
			present[ice] = c.qi > qiMin
			present[rain] = species[Rain].Present(c.qr)
			present[snow] = species[Snow].Present(c.qs)
			present[graupel] = species[Graupel].Present(c.qg)
			if !(present[cloud] || present[ice] || present[rain] || present[snow] || present[graupel]) {
				continue
			}

			r = rates{T: c.temperature()}
			r.tPos = step(r.T >= cloudsim.T0)
			r.tNeg = 1 - r.tPos
			if procs.Has(Autoconversion) {
				r.autoconversion(&c, m.cfg.Nd, m.dd)
			}
			if procs.Has(Collection) {
				r.collection(&c, &factors[k], th)
				for n, v := range [...]float64{r.vTr, r.vTs, r.vTg} {
					if present[rain+phase(n)] {
						cfl[pp] = math.Max(cfl[pp], v*dt*g.Dzi[k])
					}
				}
			}
			tend.accumulate(m.transitions, ijk, exner[k], &present, &r)
		}
	})
	for _, v := range cfl {
		m.stability.Observe(v)
	}
}

// sedimentation sediments rain, snow and graupel in turn, sharing one set
// of scratch buffers.
func (m *Microphysics) sedimentation(dt float64, q, qt [][]float64) {
	var tmp [4]*sparse.DenseArray
	for i := range tmp {
		tmp[i] = m.fields.Scratch()
	}
	defer m.fields.Release(tmp[0], tmp[1], tmp[2], tmp[3])

	nprocs := numProcs(m.cfg.NumProcessors)
	for _, c := range Categories {
		col := &Column{
			Grid:    m.fields.Grid,
			Rho:     m.fields.RhoRef,
			Species: species[c],
			Q:       q[c],
			Qt:      qt[c],
			Bot:     m.bot[c],
			Dt:      dt,
			Buffers: Buffers{W: tmp[0].Elements, C: tmp[1].Elements, Slope: tmp[2].Elements, Flux: tmp[3].Elements},
		}
		m.stability.Observe(Sediment(m.sediment, col, nprocs))
	}
}

// ExecStats reports the horizontally averaged surface precipitation rate
// of every falling category.
func (m *Microphysics) ExecStats(s cloudsim.Stats, th cloudsim.Thermo, dt float64) error {
	const noOffset = 0.
	for _, c := range Categories {
		if err := s.CalcStats2D(c.SurfaceName(), m.bot[c], noOffset); err != nil {
			return fmt.Errorf("nsw6: %v", err)
		}
	}
	return nil
}

// SurfaceRate returns the surface precipitation rate of category c
// [kg/m²/s] computed during the last call to Exec, as a horizontal slice
// on the grid.
func (m *Microphysics) SurfaceRate(c Category) []float64 {
	return m.bot[c]
}

// TimeLimit returns the recommended bound on the next time step.
func (m *Microphysics) TimeLimit(dt float64) float64 {
	return m.stability.TimeLimit(dt)
}

// Stability returns the controller holding the Courant number observed
// during the last call to Exec.
func (m *Microphysics) Stability() *cloudsim.CFLController {
	return m.stability
}

// HasMask returns false: the scheme provides no masks.
func (m *Microphysics) HasMask(name string) bool {
	return false
}

// GetMask always returns a *MaskError.
func (m *Microphysics) GetMask(s cloudsim.Stats, name string) error {
	return &MaskError{Name: name}
}

func numProcs(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
