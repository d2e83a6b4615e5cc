// Package tui shows a control loop running live in the terminal.
package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"regloop/internal/law"
	"regloop/internal/loop"
	"regloop/internal/plant"
	"regloop/internal/sim"
	"regloop/internal/viz"
)

const (
	graphWidth  = 70
	graphHeight = 12
	historyLen  = 300
)

type TickMsg time.Time

// Model owns the controller, plant and driver exclusively: all stepping
// happens inside Update, which keeps the loop single-threaded.
type Model struct {
	driver *sim.Driver
	ctl    *loop.Controller
	proc   plant.Plant

	dt            float64
	fps           int
	stepsPerFrame int

	running   bool
	showHelp  bool
	paramKeys []string
	selected  int
}

// NewModel wires the loop to the plant and prepares real-time pacing:
// each frame advances simulated time by one frame interval.
func NewModel(p plant.Plant, c *loop.Controller, d *sim.Driver, dt float64, fps int) Model {
	d.Start(nil)

	steps := int(1.0 / (float64(fps) * dt))
	if steps < 1 {
		steps = 1
	}

	var keys []string
	if t, ok := c.Law().(law.Tunable); ok {
		for k := range t.GetParams() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	return Model{
		driver:        d,
		ctl:           c,
		proc:          p,
		dt:            dt,
		fps:           fps,
		stepsPerFrame: steps,
		running:       true,
		paramKeys:     keys,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.driver.Step(m.dt)
			}
		}
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "h":
			m.showHelp = !m.showHelp
		case "+", "=":
			m.ctl.SetSetpoint(m.ctl.Setpoint() + 0.1)
		case "-":
			m.ctl.SetSetpoint(m.ctl.Setpoint() - 0.1)
		case "r":
			m.ctl.Reset(m.ctl.Now())
			m.ctl.ClearRecording()
			m.proc.Reset()
		case "left":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + len(m.paramKeys) - 1) % len(m.paramKeys)
			}
		case "right":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "down":
			m.adjustParam(msg.String() == "up")
		}
	}
	return m, nil
}

func (m *Model) adjustParam(up bool) {
	t, ok := m.ctl.Law().(law.Tunable)
	if !ok || len(m.paramKeys) == 0 {
		return
	}
	name := m.paramKeys[m.selected]
	v := t.GetParams()[name]
	delta := math.Abs(v) * 0.1
	if delta == 0 {
		delta = 0.1
	}
	if !up {
		delta = -delta
	}
	t.SetParam(name, v+delta)
}

func (m Model) View() string {
	var b strings.Builder

	status := "running"
	if !m.running {
		status = "paused"
	}
	b.WriteString(viz.HeaderStyle.Render(
		fmt.Sprintf("regloop live · %s · %s", m.ctl.Name(), status)))
	b.WriteString("\n")

	b.WriteString(m.statsView())
	b.WriteString("\n")
	b.WriteString(m.graphView())

	if len(m.paramKeys) > 0 {
		b.WriteString("\n")
		b.WriteString(m.paramsView())
	}

	if m.showHelp {
		b.WriteString(viz.HelpStyle.Render(
			"space pause · +/- setpoint · arrows tune law · r reset · q quit"))
	} else {
		b.WriteString(viz.HelpStyle.Render("h for help"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) statsView() string {
	stats := m.ctl.Stats()
	out := m.ctl.Output()
	outStr := "undefined"
	if !math.IsNaN(out) {
		outStr = fmt.Sprintf("%.4f", out)
	}

	rows := []struct{ label, value string }{
		{"time", fmt.Sprintf("%.3f s", m.ctl.Now())},
		{"setpoint", fmt.Sprintf("%.4f", m.ctl.Setpoint())},
		{"process", fmt.Sprintf("%.4f", m.ctl.Process())},
		{"output", outStr},
		{"error", fmt.Sprintf("%.4f", m.ctl.Error())},
		{"cycles", fmt.Sprintf("%d ok / %d missed", stats.Updates, stats.Missed)},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(viz.LabelStyle.Render(r.label))
		b.WriteString(viz.ValueStyle.Render(r.value))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) graphView() string {
	s := m.ctl.Series()
	n := s.Len()
	if n < 2 {
		return viz.CaptionStyle.Render("waiting for samples...")
	}
	start := n - historyLen
	if start < 0 {
		start = 0
	}

	graph := asciigraph.PlotMany(
		[][]float64{s.Setpoint[start:], s.Process[start:]},
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption("setpoint / process variable"),
	)

	var b strings.Builder
	b.WriteString(viz.GraphStyle.Render(graph))
	b.WriteString("\n")
	b.WriteString(viz.CaptionStyle.Render("output "))
	b.WriteString(viz.Sparkline(s.Output[start:], graphWidth))
	return b.String()
}

func (m Model) paramsView() string {
	t, ok := m.ctl.Law().(law.Tunable)
	if !ok {
		return ""
	}
	params := t.GetParams()
	parts := make([]string, 0, len(m.paramKeys))
	for i, k := range m.paramKeys {
		entry := fmt.Sprintf("%s=%.3f", k, params[k])
		if i == m.selected {
			entry = viz.ValueStyle.Bold(true).Render("[" + entry + "]")
		} else {
			entry = viz.CaptionStyle.Render(entry)
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, "  ")
}
