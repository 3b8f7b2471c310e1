package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot records each metric as an (epoch, value) series and renders
// one learning-curve PNG per metric on Flush.
type Plot struct {
	dir    string
	series map[string]plotter.XYs
}

// NewPlot creates a Reporter saving per-metric learning curves under
// dir
func NewPlot(dir string) *Plot {
	return &Plot{
		dir:    dir,
		series: make(map[string]plotter.XYs),
	}
}

// Record implements the Reporter interface
func (p *Plot) Record(epoch int, metrics map[string]float64) {
	for name, value := range metrics {
		point := plotter.XY{X: float64(epoch), Y: value}

		series := p.series[name]
		if n := len(series); n > 0 && series[n-1].X == point.X {
			series[n-1] = point
			continue
		}
		p.series[name] = append(series, point)
	}
}

// Flush implements the Reporter interface, rendering one PNG per
// recorded metric.
func (p *Plot) Flush() error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("flush: could not create plot directory: %v", err)
	}

	names := make([]string, 0, len(p.series))
	for name := range p.series {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		curve := plot.New()
		curve.Title.Text = name
		curve.X.Label.Text = "Epoch"
		curve.Y.Label.Text = name

		line, err := plotter.NewLine(p.series[name])
		if err != nil {
			return fmt.Errorf("flush: could not plot %v: %v", name, err)
		}
		line.Color = plotutil.Color(i)
		curve.Add(line)

		filename := filepath.Join(p.dir, name+".png")
		if err := curve.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
			return fmt.Errorf("flush: could not save %v: %v", name, err)
		}
	}
	return nil
}
