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

package cloudsimutil

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/cloudsim/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Figure size.
const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 3.5 * vg.Inch
)

// PlotTimeSeries draws the named time series in the statistics file
// statsFile and saves the figure to out. The image format is chosen
// by the extension of out, for example ".png", ".svg" or ".pdf".
func PlotTimeSeries(statsFile, out string, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("cloudsim: no variables to plot")
	}
	time, _, err := stats.ReadVariable(statsFile, "time")
	if err != nil {
		return err
	}
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = strings.Join(names, ", ")
	p.X.Label.Text = "Time (s)"
	p.Legend.Top = true

	for i, name := range names {
		v, dims, err := stats.ReadVariable(statsFile, name)
		if err != nil {
			return err
		}
		if len(dims) != 1 {
			return fmt.Errorf("cloudsim: %s is not a time series", name)
		}
		xy := make(plotter.XYs, len(v))
		for j := range v {
			xy[j].X, xy[j].Y = time[j], v[j]
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("cloudsim: plotting %s: %v", name, err)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i)
		p.Add(l)
		p.Legend.Add(name, l)
	}
	if err := p.Save(plotWidth, plotHeight, out); err != nil {
		return fmt.Errorf("cloudsim: saving plot: %v", err)
	}
	return nil
}
