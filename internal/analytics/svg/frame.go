package svg

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"
)

var (
	errNoSeries    = errors.New("svg: at least one series required")
	errNoLabels    = errors.New("svg: labels required")
	errTooSmall    = errors.New("svg: viewport too small")
	errSeriesShape = errors.New("svg: series length must match labels")
)

// frame holds the geometry shared by every chart kind.
type frame struct {
	width, height int
	padding       float64
	chartW        float64
	chartH        float64
	minVal        float64
	maxVal        float64
	ticks         int
	axisColor     string
	gridColor     string
}

func newFrame(width, height int, labels []string, series []Series, opts Opts) (*frame, error) {
	if len(series) == 0 {
		return nil, errNoSeries
	}
	if len(labels) == 0 {
		return nil, errNoLabels
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return nil, fmt.Errorf("%w: %q has %d values for %d labels", errSeriesShape, s.Label, len(s.Values), len(labels))
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := &frame{
		width:     width,
		height:    height,
		padding:   opts.Padding,
		ticks:     opts.TickCount,
		axisColor: fallback(opts.AxisColor, "#475569"),
		gridColor: fallback(opts.GridColor, "#cbd5f5"),
	}
	if f.padding <= 0 {
		f.padding = DefaultPadding
	}
	if f.ticks <= 0 {
		f.ticks = DefaultTicks
	}
	f.chartW = float64(width) - 2*f.padding
	f.chartH = float64(height) - 2*f.padding
	if f.chartW <= 0 || f.chartH <= 0 {
		return nil, errTooSmall
	}

	// The zero line is always inside the plotted range.
	for _, s := range series {
		for _, v := range s.Values {
			f.minVal = math.Min(f.minVal, v)
			f.maxVal = math.Max(f.maxVal, v)
		}
	}
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	return f, nil
}

func (f *frame) bottom() float64 { return f.padding + f.chartH }

// y maps a value to its vertical coordinate.
func (f *frame) y(v float64) float64 {
	return f.bottom() - (v-f.minVal)*f.chartH/(f.maxVal-f.minVal)
}

func (f *frame) open(b *strings.Builder, kind string, opts Opts) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Gráfico")))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(opts.Description))
}

func (f *frame) grid(b *strings.Builder) {
	for i := 0; i <= f.ticks; i++ {
		ratio := float64(i) / float64(f.ticks)
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		y := f.y(value)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`,
			f.padding, y, f.padding+f.chartW, y, f.gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`,
			f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}
	zero := f.y(0)
	fmt.Fprintf(b, `<g stroke="%s" aria-label="Ejes">`, f.axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.padding, f.padding, f.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, zero, f.padding+f.chartW, zero)
	b.WriteString(`</g>`)
}

func (f *frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`,
		x, f.bottom()+14, f.axisColor, template.HTMLEscapeString(text))
}

func (f *frame) legend(b *strings.Builder, series []Series) {
	y := math.Max(f.padding-12, 12)
	x := f.padding
	for i, s := range series {
		fmt.Fprintf(b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, x, y-8, seriesColor(s, i))
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`,
			x+14, y, f.axisColor, template.HTMLEscapeString(s.Label))
		x += 14 + 7*float64(len([]rune(s.Label))) + 16
	}
}

func seriesColor(s Series, i int) string {
	return fallback(s.Color, palette[i%len(palette)])
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
