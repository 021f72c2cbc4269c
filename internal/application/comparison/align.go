package comparison

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// AlignedPoint is one charted value with normalized coordinates.  X and Y
// are in [0, 1]; Y is inverted so larger values sit higher on screen.
type AlignedPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
}

// AlignedSeries is one subject's series mapped onto the shared date axis.
// Points exist only for dates the subject actually has data for; gaps are
// simply skipped by the path.
type AlignedSeries struct {
	SubjectKey string         `json:"subject_key"`
	Points     []AlignedPoint `json:"points"`
	Path       string         `json:"path"`
}

// AlignedChart is the multi-series chart model: a union date axis shared by
// all subjects plus the global value bounds used for scaling.
type AlignedChart struct {
	Dates  []time.Time     `json:"dates"`
	Series []AlignedSeries `json:"series"`
	Min    float64         `json:"min"`
	Max    float64         `json:"max"`
}

// AlignSeries merges per-subject series onto one shared axis.  The axis is
// the sorted union of every date that appears in any series, so subjects
// with sparse data still line up at the right positions.  Scaling uses the
// global minimum and maximum across all series; when every value is equal
// the range is forced to 1 so division stays defined and the line renders
// flat.  Series without points are dropped.
func AlignSeries(series []analytics.Series) *AlignedChart {
	chart := &AlignedChart{}

	type dateKey = int64
	union := make(map[dateKey]time.Time)
	for _, s := range series {
		for _, p := range s.Points {
			union[p.PeriodStart.UnixNano()] = p.PeriodStart
		}
	}
	if len(union) == 0 {
		return chart
	}

	chart.Dates = make([]time.Time, 0, len(union))
	for _, d := range union {
		chart.Dates = append(chart.Dates, d)
	}
	sort.Slice(chart.Dates, func(i, j int) bool { return chart.Dates[i].Before(chart.Dates[j]) })

	index := make(map[dateKey]int, len(chart.Dates))
	for i, d := range chart.Dates {
		index[d.UnixNano()] = i
	}

	first := true
	for _, s := range series {
		for _, p := range s.Points {
			if first {
				chart.Min, chart.Max = p.ImpactScore, p.ImpactScore
				first = false
				continue
			}
			if p.ImpactScore < chart.Min {
				chart.Min = p.ImpactScore
			}
			if p.ImpactScore > chart.Max {
				chart.Max = p.ImpactScore
			}
		}
	}

	valueRange := chart.Max - chart.Min
	if valueRange == 0 {
		valueRange = 1
	}
	axisMax := len(chart.Dates) - 1

	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}

		// The backend does not promise point order; sort a copy so the
		// path always walks left to right.
		points := make([]analytics.SeriesPoint, len(s.Points))
		copy(points, s.Points)
		sort.Slice(points, func(i, j int) bool { return points[i].PeriodStart.Before(points[j].PeriodStart) })

		aligned := AlignedSeries{SubjectKey: s.SubjectKey}
		var path strings.Builder
		for i, p := range points {
			idx := index[p.PeriodStart.UnixNano()]
			x := 0.0
			if axisMax > 0 {
				x = float64(idx) / float64(axisMax)
			}
			y := 1 - (p.ImpactScore-chart.Min)/valueRange

			aligned.Points = append(aligned.Points, AlignedPoint{
				Date:  p.PeriodStart,
				Value: p.ImpactScore,
				X:     x,
				Y:     y,
			})

			if i == 0 {
				fmt.Fprintf(&path, "M%.4f,%.4f", x, y)
			} else {
				fmt.Fprintf(&path, " L%.4f,%.4f", x, y)
			}
		}
		aligned.Path = path.String()
		chart.Series = append(chart.Series, aligned)
	}

	return chart
}
