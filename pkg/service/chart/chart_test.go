package chart_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
	"github.com/secmon-lab/phenodash/pkg/service/chart"
)

func series(counts map[types.Phenotype][]int64) []model.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var result []model.Series
	for _, p := range types.AllPhenotypes() {
		values, ok := counts[p]
		if !ok {
			continue
		}
		s := model.Series{Phenotype: p, Color: "#000000"}
		for i, v := range values {
			s.Points = append(s.Points, model.Point{Week: start.AddDate(0, 0, 7*i), Count: v})
		}
		result = append(result, s)
	}
	return result
}

func TestLine(t *testing.T) {
	fig := chart.Line(series(map[types.Phenotype][]int64{
		types.PhenotypeMRSA: {5, 3, 8},
		types.PhenotypeWild: {10, 8, 12},
	}), 600, 300)

	gt.False(t, fig.Empty)
	gt.Equal(t, fig.Kind, chart.KindLine)
	gt.Equal(t, len(fig.Paths), 2)
	gt.Equal(t, len(fig.Paths[0].Markers), 3)
	gt.False(t, fig.Paths[0].Closed)
	gt.Equal(t, len(strings.Fields(fig.Paths[0].Points)), 3)

	// first point at the left edge, last at the right edge
	gt.Equal(t, fig.Paths[0].Markers[0].X, fig.Left)
	gt.Equal(t, fig.Paths[0].Markers[2].X, fig.Right)

	// higher counts are drawn higher
	gt.True(t, fig.Paths[1].Markers[2].Y < fig.Paths[0].Markers[2].Y)

	// Y axis starts at zero and covers the maximum
	gt.Equal(t, fig.YTicks[0].Label, "0")
	gt.True(t, fig.YTicks[len(fig.YTicks)-1].Pos <= fig.Paths[1].Markers[2].Y)
	gt.Equal(t, fig.XTicks[0].Label, "2024-01-01")
}

func TestStackedArea(t *testing.T) {
	fig := chart.StackedArea(series(map[types.Phenotype][]int64{
		types.PhenotypeMRSA: {5, 3},
		types.PhenotypeVRSA: {1, 0},
		types.PhenotypeWild: {10, 8},
	}), 600, 300)

	gt.Equal(t, fig.Kind, chart.KindStackedArea)
	gt.Equal(t, len(fig.Paths), 3)
	for _, p := range fig.Paths {
		gt.True(t, p.Closed)
		// forward edge plus backward baseline
		gt.Equal(t, len(strings.Fields(p.Points)), 4)
	}

	// the first layer sits on the X axis
	first := strings.Fields(fig.Paths[0].Points)
	gt.True(t, strings.HasSuffix(first[3], ","+strconv.FormatFloat(fig.Bottom, 'f', 1, 64)))
}

func TestEmptyFigure(t *testing.T) {
	t.Run("no series", func(t *testing.T) {
		fig := chart.Line(nil, 600, 300)
		gt.True(t, fig.Empty)
		gt.Equal(t, len(fig.Paths), 0)
	})

	t.Run("no points", func(t *testing.T) {
		fig := chart.StackedArea([]model.Series{{Phenotype: types.PhenotypeMRSA}}, 600, 300)
		gt.True(t, fig.Empty)
	})
}

func TestSingleWeekIsCentered(t *testing.T) {
	fig := chart.Line(series(map[types.Phenotype][]int64{types.PhenotypeMRSA: {0}}), 600, 300)
	gt.False(t, fig.Empty)
	gt.Equal(t, fig.Paths[0].Markers[0].X, (fig.Left+fig.Right)/2)
	// all-zero data still yields a usable axis
	gt.True(t, len(fig.YTicks) >= 2)
}
