// Package chart draws the accuracy figure: the rank distribution of correct
// predictions next to cumulative top-K accuracy, saved as one PNG.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/store"
)

const (
	DistributionTitle = "Distribution of Ranks for Correct Disease Predictions"
	AccuracyTitle     = "Cumulative Accuracy by Top-K"
	EmptyPlaceholder  = "no correct predictions"
)

// maxContiguousRanks bounds the rank axis: up to this rank every position
// gets a slot, so gaps between observed ranks stay visible. Beyond it only
// observed ranks are drawn.
const maxContiguousRanks = 25

var (
	steelBlue  = drawing.Color{R: 70, G: 130, B: 180, A: 179}
	darkGreen  = drawing.Color{R: 0, G: 100, B: 0, A: 179}
	axisBlack  = drawing.Color{R: 40, G: 40, B: 40, A: 255}
	background = drawing.ColorWhite
)

// panel padding around the bar canvas; go-chart shrinks the canvas further
// to fit the y-axis ticks on the right.
var padding = gochart.Box{Top: 60, Left: 50, Right: 20, Bottom: 45}

// Options sizes a single panel; the figure is two panels wide.
type Options struct {
	PanelWidth  int
	PanelHeight int
}

func DefaultOptions() Options {
	return Options{PanelWidth: 750, PanelHeight: 500}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PanelWidth <= 0 {
		o.PanelWidth = d.PanelWidth
	}
	if o.PanelHeight <= 0 {
		o.PanelHeight = d.PanelHeight
	}
	return o
}

type bar struct {
	label   string
	value   float64
	caption []string
}

type panel struct {
	title  string
	xLabel string
	yLabel string
	fill   drawing.Color
	bars   []bar
	max    float64
	ticks  []float64
	format func(float64) string
}

// RenderFile writes the figure to path, creating parent directories.
func RenderFile(path string, dist []metrics.RankCount, topK []metrics.TopK, opts Options) error {
	if err := store.EnsureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", path, err)
	}
	if err := Render(f, dist, topK, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart %s: %w", path, err)
	}
	return nil
}

// Render encodes the two-panel figure as PNG. An empty distribution yields a
// placeholder panel on the left; accuracy is always drawn.
func Render(w io.Writer, dist []metrics.RankCount, topK []metrics.TopK, opts Options) error {
	opts = opts.withDefaults()
	ttf, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load chart font: %w", err)
	}

	var left, right image.Image
	if len(dist) == 0 {
		left = placeholder(opts.PanelWidth, opts.PanelHeight, DistributionTitle, EmptyPlaceholder)
	} else {
		left, err = renderPanel(ttf, distributionPanel(dist), opts.PanelWidth, opts.PanelHeight)
		if err != nil {
			return fmt.Errorf("render rank distribution: %w", err)
		}
	}
	if len(topK) == 0 {
		right = placeholder(opts.PanelWidth, opts.PanelHeight, AccuracyTitle, "no rank thresholds")
	} else {
		right, err = renderPanel(ttf, accuracyPanel(topK), opts.PanelWidth, opts.PanelHeight)
		if err != nil {
			return fmt.Errorf("render top-k accuracy: %w", err)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, 2*opts.PanelWidth, opts.PanelHeight))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, opts.PanelWidth, opts.PanelHeight), left, left.Bounds().Min, draw.Over)
	draw.Draw(out, image.Rect(opts.PanelWidth, 0, 2*opts.PanelWidth, opts.PanelHeight), right, right.Bounds().Min, draw.Over)
	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

// distributionPanel lays ranks out on a numeric axis, with zero-height slots
// for ranks nobody hit, while the highest rank stays within maxContiguousRanks.
func distributionPanel(dist []metrics.RankCount) panel {
	maxCount, maxRank := 0, 0
	counts := make(map[int]int, len(dist))
	for _, rc := range dist {
		counts[rc.Rank] = rc.Count
		maxCount = max(maxCount, rc.Count)
		maxRank = max(maxRank, rc.Rank)
	}
	var bars []bar
	if maxRank <= maxContiguousRanks {
		bars = make([]bar, 0, maxRank)
		for rank := 1; rank <= maxRank; rank++ {
			bars = append(bars, rankBar(rank, counts[rank]))
		}
	} else {
		bars = make([]bar, 0, len(dist))
		for _, rc := range dist {
			bars = append(bars, rankBar(rc.Rank, rc.Count))
		}
	}
	step := niceStep(float64(maxCount))
	top := math.Ceil(float64(maxCount)*1.15/step) * step
	return panel{
		title:  DistributionTitle,
		xLabel: "Rank",
		yLabel: "Count",
		fill:   steelBlue,
		bars:   bars,
		max:    top,
		ticks:  tickRange(top, step),
		format: func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}
}

func rankBar(rank, count int) bar {
	b := bar{label: strconv.Itoa(rank), value: float64(count)}
	if count > 0 {
		b.caption = []string{strconv.Itoa(count)}
	}
	return b
}

func accuracyPanel(topK []metrics.TopK) panel {
	bars := make([]bar, 0, len(topK))
	for _, tk := range topK {
		bars = append(bars, bar{
			label: fmt.Sprintf("Top-%d", tk.K),
			value: tk.Percent,
			caption: []string{
				fmt.Sprintf("%.1f%%", tk.Percent),
				fmt.Sprintf("(%d/%d)", tk.Count, tk.Total),
			},
		})
	}
	return panel{
		title:  AccuracyTitle,
		xLabel: "Rank Threshold",
		yLabel: "Accuracy (%)",
		fill:   darkGreen,
		bars:   bars,
		max:    120,
		ticks:  tickRange(100, 20),
		format: func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
	}
}

func renderPanel(ttf *truetype.Font, p panel, width, height int) (image.Image, error) {
	barWidth, barSpacing := barGeometry(width, len(p.bars))
	ticks := make([]gochart.Tick, 0, len(p.ticks))
	for _, v := range p.ticks {
		ticks = append(ticks, gochart.Tick{Value: v, Label: p.format(v)})
	}
	values := make([]gochart.Value, 0, len(p.bars))
	for _, b := range p.bars {
		values = append(values, gochart.Value{
			Value: b.value,
			Label: b.label,
			Style: gochart.Style{FillColor: p.fill, StrokeColor: p.fill, StrokeWidth: 1},
		})
	}

	bc := gochart.BarChart{
		Title:      p.title,
		TitleStyle: gochart.Style{FontSize: 14, FontColor: axisBlack},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Font:       ttf,
		Background: gochart.Style{FillColor: background, Padding: padding},
		XAxis:      gochart.Style{FontSize: 10, FontColor: axisBlack},
		YAxis: gochart.YAxis{
			Style: gochart.Style{FontSize: 10, FontColor: axisBlack},
			Range: &gochart.ContinuousRange{Min: 0, Max: p.max},
			Ticks: ticks,
		},
		Bars: values,
		Elements: []gochart.Renderable{
			captions(ttf, p.bars, p.max, barWidth, barSpacing),
			axisNames(ttf, p.xLabel, p.yLabel, width, height),
		},
	}

	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// barGeometry splits the panel width into one slot per bar, 60% bar and 40%
// gap. The estimate leaves room for the y-axis so go-chart never rescales.
func barGeometry(width, n int) (barWidth, spacing int) {
	usable := width - padding.Left - padding.Right - 60
	slot := max(usable/max(n, 1), 2)
	barWidth = max(int(float64(slot)*0.6), 1)
	return barWidth, slot - barWidth
}

// barLayout mirrors go-chart's bar placement inside canvas, including its
// shrink-to-fit fallback when the bars overflow.
func barLayout(canvas gochart.Box, n, barWidth, spacing int) (width, gap int) {
	width, gap = barWidth, spacing
	if n*(width+gap) > canvas.Width() {
		gap = 0
		if rest := canvas.Width() - n*barWidth; rest > 0 {
			gap = int(math.Ceil(float64(rest) / float64(n)))
		}
	}
	if n*(width+gap) > canvas.Width() {
		width = 0
		if rest := canvas.Width() - n*gap; rest > 0 {
			width = int(math.Ceil(float64(rest) / float64(n)))
		}
	}
	return width, gap
}

// captions writes the value labels above each bar.
func captions(ttf *truetype.Font, bars []bar, top float64, barWidth, spacing int) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, _ gochart.Style) {
		width, gap := barLayout(canvas, len(bars), barWidth, spacing)
		for i, b := range bars {
			left := canvas.Left + gap + i*(width+gap)
			y := yFor(canvas, b.value, top) - 6
			for j := len(b.caption) - 1; j >= 0; j-- {
				centeredText(r, ttf, 10, b.caption[j], left+width/2, y)
				y -= 14
			}
		}
	}
}

func axisNames(ttf *truetype.Font, xLabel, yLabel string, width, height int) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, _ gochart.Style) {
		centeredText(r, ttf, 11, xLabel, canvas.Left+canvas.Width()/2, height-8)
		r.SetFontSize(11)
		r.SetTextRotation(gochart.DegreesToRadians(270))
		r.Text(yLabel, 20, canvas.Top+canvas.Height()/2+r.MeasureText(yLabel).Width()/2)
		r.ClearTextRotation()
	}
}

// placeholder draws a blank panel with a centred note using a bitmap font.
func placeholder(width, height int, title, note string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawCentered(img, title, width/2, 30)
	drawCentered(img, note, width/2, height/2)
	return img
}

func drawCentered(img *image.RGBA, text string, x, y int) {
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13}
	tw := dr.MeasureString(text).Ceil()
	dr.Dot = fixed.Point26_6{X: fixed.I(x - tw/2), Y: fixed.I(y)}
	dr.DrawString(text)
}

func yFor(canvas gochart.Box, v, top float64) int {
	if top <= 0 {
		return canvas.Bottom
	}
	return canvas.Bottom - int(math.Ceil(v/top*float64(canvas.Height())))
}

func centeredText(r gochart.Renderer, ttf *truetype.Font, size float64, text string, x, y int) {
	r.SetFont(ttf)
	r.SetFontSize(size)
	r.SetFontColor(axisBlack)
	tb := r.MeasureText(text)
	r.Text(text, x-tb.Width()/2, y)
}

// niceStep picks a 1/2/5 step giving roughly five ticks up to max.
func niceStep(max float64) float64 {
	if max <= 0 {
		return 1
	}
	raw := max / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * mag; step >= raw {
			return math.Max(step, 1)
		}
	}
	return math.Max(10*mag, 1)
}

func tickRange(max, step float64) []float64 {
	ticks := make([]float64, 0, int(max/step)+1)
	for v := 0.0; v <= max+step/1e6; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}
