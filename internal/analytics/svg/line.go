package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders one polyline per series over shared x labels.
func Line(width, height int, labels []string, series []Series, opts Opts) (template.HTML, error) {
	f, err := newFrame(width, height, labels, series, opts)
	if err != nil {
		return "", err
	}
	x := func(i int) float64 {
		if len(labels) == 1 {
			return f.padding + f.chartW/2
		}
		return f.padding + float64(i)*f.chartW/float64(len(labels)-1)
	}

	var b strings.Builder
	f.open(&b, "line", opts)
	f.grid(&b)
	for i, s := range series {
		color := seriesColor(s, i)
		var path strings.Builder
		for j, v := range s.Values {
			cmd := "L"
			if j == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, x(j), f.y(v))
		}
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round" aria-label="%s"></path>`,
			strings.TrimSpace(path.String()), color, template.HTMLEscapeString(s.Label))
		if opts.ShowDots {
			for j, v := range s.Values {
				fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"></circle>`, x(j), f.y(v), color)
			}
		}
	}
	for i, l := range labels {
		f.label(&b, x(i), l)
	}
	if len(series) > 1 {
		f.legend(&b, series)
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String()), nil
}
