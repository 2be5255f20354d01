// Package chart computes SVG geometry for the dashboard's time-series charts.
package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// Kind distinguishes the two chart renderings
type Kind string

const (
	KindLine        Kind = "line"
	KindStackedArea Kind = "stacked_area"
)

const (
	marginLeft   = 56.0
	marginRight  = 16.0
	marginTop    = 16.0
	marginBottom = 40.0
	maxXTicks    = 6
	yTickCount   = 5
)

// Tick is one axis label at a position in SVG coordinates
type Tick struct {
	Pos   float64
	Label string
}

// Marker is one data point drawn on a line
type Marker struct {
	X, Y  float64
	Title string
}

// Path is the drawn shape of one series
type Path struct {
	Phenotype types.Phenotype
	Color     string
	// Points is an SVG points attribute: "x1,y1 x2,y2 ..."
	Points  string
	Closed  bool
	Markers []Marker
}

// Figure is a chart ready to be drawn as SVG
type Figure struct {
	Kind   Kind
	Width  float64
	Height float64
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	XTicks []Tick
	YTicks []Tick
	Paths  []Path
	Empty  bool
}

// Line lays out one polyline per series
func Line(series []model.Series, width, height float64) *Figure {
	fig := newFigure(KindLine, series, width, height)
	if fig.Empty {
		return fig
	}

	var maxY int64
	for _, s := range series {
		for _, p := range s.Points {
			maxY = max(maxY, p.Count)
		}
	}
	scale := fig.yScale(maxY)
	xs := fig.xPositions(series[0].Points)

	for _, s := range series {
		coords := make([]string, 0, len(s.Points))
		markers := make([]Marker, 0, len(s.Points))
		for i, p := range s.Points {
			y := scale(float64(p.Count))
			coords = append(coords, point(xs[i], y))
			markers = append(markers, Marker{
				X:     xs[i],
				Y:     y,
				Title: s.Phenotype.String() + " " + p.Week.Format(model.DateLayout) + ": " + strconv.FormatInt(p.Count, 10),
			})
		}
		fig.Paths = append(fig.Paths, Path{
			Phenotype: s.Phenotype,
			Color:     s.Color,
			Points:    strings.Join(coords, " "),
			Markers:   markers,
		})
	}
	return fig
}

// StackedArea lays out one closed polygon per series, each stacked on the
// cumulative sum of the series before it
func StackedArea(series []model.Series, width, height float64) *Figure {
	fig := newFigure(KindStackedArea, series, width, height)
	if fig.Empty {
		return fig
	}

	n := len(series[0].Points)
	cumulative := make([][]int64, len(series)+1)
	cumulative[0] = make([]int64, n)
	var maxY int64
	for i, s := range series {
		cumulative[i+1] = make([]int64, n)
		for j := 0; j < n; j++ {
			cumulative[i+1][j] = cumulative[i][j] + s.Points[j].Count
			maxY = max(maxY, cumulative[i+1][j])
		}
	}
	scale := fig.yScale(maxY)
	xs := fig.xPositions(series[0].Points)

	for i, s := range series {
		coords := make([]string, 0, 2*n)
		for j := 0; j < n; j++ {
			coords = append(coords, point(xs[j], scale(float64(cumulative[i+1][j]))))
		}
		for j := n - 1; j >= 0; j-- {
			coords = append(coords, point(xs[j], scale(float64(cumulative[i][j]))))
		}
		fig.Paths = append(fig.Paths, Path{
			Phenotype: s.Phenotype,
			Color:     s.Color,
			Points:    strings.Join(coords, " "),
			Closed:    true,
		})
	}
	return fig
}

func newFigure(kind Kind, series []model.Series, width, height float64) *Figure {
	fig := &Figure{
		Kind:   kind,
		Width:  width,
		Height: height,
		Left:   marginLeft,
		Right:  width - marginRight,
		Top:    marginTop,
		Bottom: height - marginBottom,
	}
	if len(series) == 0 || len(series[0].Points) == 0 {
		fig.Empty = true
	}
	return fig
}

// yScale sets the Y ticks and returns the count to SVG y mapping
func (f *Figure) yScale(maxY int64) func(float64) float64 {
	step := niceStep(float64(maxY) / float64(yTickCount-1))
	top := step * float64(yTickCount-1)
	for top < float64(maxY) {
		top += step
	}

	scale := func(v float64) float64 {
		return f.Bottom - v/top*(f.Bottom-f.Top)
	}
	for v := 0.0; v <= top+step/2; v += step {
		f.YTicks = append(f.YTicks, Tick{Pos: scale(v), Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return scale
}

// xPositions maps weeks onto the plot width proportionally to time and sets the X ticks
func (f *Figure) xPositions(points []model.Point) []float64 {
	xs := make([]float64, len(points))
	first := points[0].Week
	span := points[len(points)-1].Week.Sub(first)

	for i, p := range points {
		if span <= 0 {
			xs[i] = (f.Left + f.Right) / 2
			continue
		}
		xs[i] = f.Left + float64(p.Week.Sub(first))/float64(span)*(f.Right-f.Left)
	}

	stride := int(math.Ceil(float64(len(points)) / maxXTicks))
	for i := 0; i < len(points); i += stride {
		f.XTicks = append(f.XTicks, Tick{Pos: xs[i], Label: points[i].Week.Format(model.DateLayout)})
	}
	last := len(points) - 1
	if last%stride != 0 && xs[last]-f.XTicks[len(f.XTicks)-1].Pos > (f.Right-f.Left)/maxXTicks/2 {
		f.XTicks = append(f.XTicks, Tick{Pos: xs[last], Label: points[last].Week.Format(model.DateLayout)})
	}
	return xs
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten, at least 1
func niceStep(raw float64) float64 {
	if raw <= 1 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

func point(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64)
}
