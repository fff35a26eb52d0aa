package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNotEnoughData is returned when a balance series has fewer than two days.
var ErrNotEnoughData = errors.New("balance chart needs at least two days")

// RenderBalanceChart writes the daily balance series as a PNG, with a dashed
// zero line marking the overdraft boundary.
func RenderBalanceChart(w io.Writer, title string, daily []metrics.DailyBalance) error {
	if len(daily) < 2 {
		return ErrNotEnoughData
	}

	xs := make([]time.Time, len(daily))
	ys := make([]float64, len(daily))
	zero := make([]float64, len(daily))
	lo, hi := 0.0, 0.0
	for i, d := range daily {
		xs[i] = d.Date
		ys[i] = d.Balance
		lo = min(lo, d.Balance)
		hi = max(hi, d.Balance)
	}
	if hi == lo {
		hi = lo + 100
	}
	pad := (hi - lo) * 0.05

	graph := chart.Chart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1000,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("£%.0f", vf)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 77, G: 184, B: 255, A: 255},
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Overdraft boundary",
				XValues: xs,
				YValues: zero,
				Style: chart.Style{
					StrokeColor:     drawing.ColorRed,
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("RenderBalanceChart: %w", err)
	}
	return nil
}
