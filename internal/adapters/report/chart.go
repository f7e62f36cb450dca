package report

import (
	"bytes"
	"strconv"
	"time"

	"github.com/okian/rally/internal/domain/analytics"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette colors the rank-history chart.
type Palette struct {
	Background drawing.Color
	Line       drawing.Color
	Dot        drawing.Color
	Text       drawing.Color
}

// DefaultPalette is a light theme.
var DefaultPalette = Palette{
	Background: drawing.ColorWhite,
	Line:       drawing.ColorFromHex("1f6feb"),
	Dot:        drawing.ColorFromHex("d29922"),
	Text:       drawing.ColorFromHex("24292f"),
}

// RankHistoryChart produces a PNG line chart of a player's position per
// day. The Y axis is descending so position 1 is on top; players is the
// size of the universe and sets the bottom of the axis.
func RankHistoryChart(player string, history []analytics.HistoryPoint, players int, palette Palette) ([]byte, error) {
	if len(history) == 0 {
		return renderNoDataPlaceholder(palette, "No ranking history for "+player)
	}

	xValues := make([]time.Time, len(history))
	yValues := make([]float64, len(history))
	for i, p := range history {
		xValues[i] = p.Date
		yValues[i] = float64(p.Position)
	}

	bottom := players
	for _, p := range history {
		bottom = max(bottom, p.Position)
	}
	bottom = max(bottom, 2)
	ticks := make([]chart.Tick, 0, bottom)
	for pos := 1; pos <= bottom; pos++ {
		ticks = append(ticks, chart.Tick{Value: float64(pos), Label: strconv.Itoa(pos)})
	}

	// Pad the time axis so a single day still has a non-zero range.
	first, last := history[0].Date, history[len(history)-1].Date
	xRange := &chart.ContinuousRange{
		Min: chart.TimeToFloat64(first.Add(-12 * time.Hour)),
		Max: chart.TimeToFloat64(last.Add(12 * time.Hour)),
	}

	graph := chart.Chart{
		Title:  player,
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(dateLayout),
			Range:          xRange,
			Style:          chart.Style{FontColor: palette.Text},
		},
		YAxis: chart.YAxis{
			Name:  "Position",
			Ticks: ticks,
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Descending: true},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Position",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: palette.Line,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    palette.Dot,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws msg on a blank canvas. go-chart refuses to
// render without a visible series, so an invisible two-point line is
// plotted under hidden axes.
func renderNoDataPlaceholder(palette Palette, msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis:      chart.XAxis{Style: chart.Hidden()},
		YAxis:      chart.YAxis{Style: chart.Hidden()},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
				r.SetFont(defaults.Font)
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
