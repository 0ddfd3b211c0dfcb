// Package svg renders small, dependency free SVG charts for reports.
package svg

// Series is one named sequence of values plotted against shared labels.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// Opts customises a chart.
type Opts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
}

// Defaults for report charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 28.0
	DefaultTicks   = 6
)

var palette = []string{"#2563eb", "#f97316", "#16a34a", "#9333ea", "#dc2626"}
