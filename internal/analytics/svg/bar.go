package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart with one bar per series in each group.
func Bars(width, height int, labels []string, series []Series, opts Opts) (template.HTML, error) {
	f, err := newFrame(width, height, labels, series, opts)
	if err != nil {
		return "", err
	}
	groupW := f.chartW / float64(len(labels))
	// One slot of spacing on each side of the group.
	barW := groupW / float64(len(series)+1)
	zero := f.y(0)

	var b strings.Builder
	f.open(&b, "bar", opts)
	f.grid(&b)
	for i, l := range labels {
		left := f.padding + float64(i)*groupW + barW/2
		for j, s := range series {
			top := f.y(s.Values[i])
			y, h := math.Min(top, zero), math.Abs(zero-top)
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %s"></rect>`,
				left+float64(j)*barW, y, barW, h, seriesColor(s, j),
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(l))
		}
		f.label(&b, f.padding+float64(i)*groupW+groupW/2, l)
	}
	f.legend(&b, series)
	b.WriteString(`</svg>`)
	return template.HTML(b.String()), nil
}
