// Package viz renders recorded loop runs as terminal charts.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"regloop/internal/trace"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// RenderRun draws the standard panels for one recording: setpoint
// against process variable, loop output, and tracking error.
func RenderRun(s *trace.Series, name string) string {
	if s.Len() == 0 {
		return WarnStyle.Render("nothing recorded")
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("run: %s (%d cycles)", name, s.Len())))
	b.WriteString("\n")

	tracking := asciigraph.PlotMany(
		[][]float64{s.Setpoint, s.Process},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("setpoint / process variable"),
	)
	b.WriteString(GraphStyle.Render(tracking))
	b.WriteString("\n")

	output := asciigraph.Plot(s.Output,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("manipulated variable"),
	)
	b.WriteString(GraphStyle.Render(output))
	b.WriteString("\n")

	errPlot := asciigraph.Plot(s.Err,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("tracking error"),
	)
	b.WriteString(GraphStyle.Render(errPlot))
	b.WriteString("\n")

	return b.String()
}
