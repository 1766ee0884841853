package analysis

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderChart draws the histogram with its normalized CDF overlaid and
// writes the chart as PNG.
func RenderChart(title string, hist, cdf []float64, w io.Writer) error {
	if len(hist) == 0 {
		return fmt.Errorf("no histogram data to render")
	}

	xvalues := make([]float64, len(hist))
	for i := range xvalues {
		xvalues[i] = float64(i)
	}

	histSeries := chart.ContinuousSeries{
		Name: "histogram",
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			FillColor:   chart.ColorAlternateBlue,
		},
		XValues: xvalues,
		YValues: hist,
	}

	peak := hist[0]
	for _, v := range hist[1:] {
		if v > peak {
			peak = v
		}
	}

	cdfSeries := chart.ContinuousSeries{
		Name: "cdf (normalized)",
		Style: chart.Style{
			StrokeColor: chart.ColorRed,
		},
		XValues: xvalues,
		YValues: NormalizeCDF(cdf, hist),
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name: "pixel intensity",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: float64(len(hist) - 1),
			},
		},
		YAxis: chart.YAxis{
			Name: "number of pixels",
		},
		Series: []chart.Series{
			histSeries,
			cdfSeries,
		},
	}
	// Both series top out at the histogram peak, the normalized CDF by
	// construction. A flat histogram still needs a nonzero span.
	if peak <= 0 {
		peak = 1
	}
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0.0, Max: peak}
	graph.Elements = []chart.Renderable{
		chart.LegendThin(&graph),
	}

	return graph.Render(chart.PNG, w)
}
