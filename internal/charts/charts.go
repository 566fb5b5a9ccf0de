// Package charts renders dashboard views as PNG images with go-chart.
//
// Year series are drawn as line charts and ranked views as bar charts. A
// view go-chart cannot draw, such as an empty or single-point series or an
// all-zero ranking, is served as a blank image of the same size.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"startupdash/pkg/contracts/domain"
)

// Default image size in pixels.
const (
	DefaultWidth  = 1000
	DefaultHeight = 500
)

var titles = map[domain.ViewName]string{
	domain.ViewFundingByYear:   "Total Funding Over the Years",
	domain.ViewTopSectors:      "Top 10 Funded Sectors",
	domain.ViewTopCountries:    "Top Countries by Total Funding",
	domain.ViewRoundActivity:   "Most Active Funding Rounds",
	domain.ViewTopCities:       "Top 10 Funded Indian Cities",
	domain.ViewTopCompanies:    "Top 10 Funded Companies",
	domain.ViewFoundingTrend:   "Startups Founded Per Year",
	domain.ViewStagePopularity: "Funding Stage Popularity",
}

// Title returns the heading of a view.
func Title(view domain.ViewName) string {
	return titles[view]
}

// Result describes a rendered image.
type Result struct {
	// Blank is set when the fallback image was written; Cause says why.
	Blank bool
	Cause error
}

// Renderer draws views at a fixed size.
type Renderer struct {
	width  int
	height int
}

// NewRenderer returns a renderer; non-positive sizes use the defaults.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Render writes the PNG of one view of d to w.
func (r *Renderer) Render(w io.Writer, view domain.ViewName, d domain.Dashboard) (Result, error) {
	if _, ok := titles[view]; !ok {
		return Result{}, fmt.Errorf("unknown view %q", view)
	}

	var buf bytes.Buffer
	cause := r.draw(&buf, view, d)
	if cause != nil {
		buf.Reset()
		if err := r.blank(&buf); err != nil {
			return Result{}, fmt.Errorf("encode blank chart: %w", err)
		}
	}

	if _, err := buf.WriteTo(w); err != nil {
		return Result{}, fmt.Errorf("write chart: %w", err)
	}
	return Result{Blank: cause != nil, Cause: cause}, nil
}

func (r *Renderer) draw(w io.Writer, view domain.ViewName, d domain.Dashboard) (err error) {
	// go-chart panics on some degenerate ranges instead of returning an error.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("chart panic: %v", p)
		}
	}()

	title := titles[view]
	switch view {
	case domain.ViewFundingByYear:
		xs, ys := make([]float64, len(d.FundingByYear)), make([]float64, len(d.FundingByYear))
		for i, p := range d.FundingByYear {
			xs[i], ys[i] = float64(p.Year), p.Value.InexactFloat64()
		}
		return r.line(w, title, "Total Funding (USD)", xs, ys)
	case domain.ViewFoundingTrend:
		xs, ys := make([]float64, len(d.FoundingTrend)), make([]float64, len(d.FoundingTrend))
		for i, p := range d.FoundingTrend {
			xs[i], ys[i] = float64(p.Year), float64(p.Count)
		}
		return r.line(w, title, "Number of Startups", xs, ys)
	case domain.ViewTopCompanies:
		bars := make([]chart.Value, len(d.TopCompanies))
		for i, c := range d.TopCompanies {
			bars[i] = chart.Value{Label: c.Name, Value: c.FundingTotalUSD.InexactFloat64()}
		}
		return r.bar(w, title, bars)
	default:
		v, _ := d.View(view)
		return r.bar(w, title, keyedBars(v.([]domain.KeyedValue)))
	}
}

func keyedBars(kv []domain.KeyedValue) []chart.Value {
	bars := make([]chart.Value, len(kv))
	for i, e := range kv {
		bars[i] = chart.Value{Label: e.Label(), Value: e.Value.InexactFloat64()}
	}
	return bars
}

func (r *Renderer) line(w io.Writer, title, yName string, xs, ys []float64) error {
	if len(xs) < 2 {
		return fmt.Errorf("line chart needs at least two points, got %d", len(xs))
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{Name: yName},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

func (r *Renderer) bar(w io.Writer, title string, bars []chart.Value) error {
	if len(bars) == 0 {
		return fmt.Errorf("bar chart has no bars")
	}

	barWidth := (r.width - 120) / (len(bars) * 3 / 2)
	barWidth = max(10, min(barWidth, 80))

	bc := chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func (r *Renderer) blank(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	white := drawing.ColorWhite
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: white.R, G: white.G, B: white.B, A: white.A}}, image.Point{}, draw.Src)
	return png.Encode(w, img)
}
