package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ecodyn/vedata/internal/ncfile"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateList state = iota
	stateDetail
)

type model struct {
	state  state
	cursor int

	path    string
	dataset *ncfile.Dataset
	vars    []string

	width  int
	height int
}

// NewBrowser returns a browser over an opened dataset. The path is
// only used for display.
func NewBrowser(path string, d *ncfile.Dataset) *model {
	names := make([]string, 0, len(d.Variables()))
	for _, v := range d.Variables() {
		names = append(names, v.Name)
	}
	return &model{
		path:    path,
		dataset: d,
		vars:    names,
		width:   80,
		height:  24,
	}
}

// Run starts the browser and blocks until the user quits.
func Run(path string, d *ncfile.Dataset) error {
	p := tea.NewProgram(NewBrowser(path, d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateList:
		return m.listKey(msg)
	case stateDetail:
		return m.detailKey(msg)
	}
	return m, nil
}

func (m model) listKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.vars)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.vars) > 0 {
			m.state = stateDetail
		}
	}
	return m, nil
}

func (m model) detailKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "escape", "backspace":
		m.state = stateList
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.vars)-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m model) View() string {
	switch m.state {
	case stateList:
		return m.viewList()
	case stateDetail:
		return m.viewDetail()
	}
	return ""
}

func (m model) viewList() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("v e d a t a") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")
	b.WriteString("      " + dim.Render(m.path) + "\n\n")

	for i, name := range m.vars {
		v, _ := m.dataset.Variable(name)
		desc := fmt.Sprintf("(%s)", strings.Join(v.Dims, ", "))
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-24s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-24s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter inspect   q quit") + "\n")

	return b.String()
}

func (m model) viewDetail() string {
	name := m.vars[m.cursor]
	v, err := m.dataset.Variable(name)
	if err != nil {
		return dim.Render(err.Error())
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(name))
	if v.Units != "" {
		b.WriteString("  " + magenta.Render(v.Units))
	}
	b.WriteString("\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 40)) + "\n\n")

	if v.Description != "" {
		b.WriteString("      " + dim.Render(v.Description) + "\n\n")
	}

	for _, d := range v.Dims {
		b.WriteString("        " + white.Render(fmt.Sprintf("%-16s", d)) + dim.Render(fmt.Sprintf("%d", m.dataset.DimLength(d))) + "\n")
	}
	b.WriteString("\n")

	min, max, mean, valid := summarise(v.Data.Elements)
	b.WriteString("        " + dim.Render(fmt.Sprintf("%-8s", "min")) + white.Render(fmt.Sprintf("%12.4g", min)) + "\n")
	b.WriteString("        " + dim.Render(fmt.Sprintf("%-8s", "mean")) + white.Render(fmt.Sprintf("%12.4g", mean)) + "\n")
	b.WriteString("        " + dim.Render(fmt.Sprintf("%-8s", "max")) + white.Render(fmt.Sprintf("%12.4g", max)) + "\n")
	b.WriteString("\n")
	b.WriteString("      " + histogram(v.Data.Elements, min, max) + "\n")
	if valid < len(v.Data.Elements) {
		b.WriteString("\n      " + yellow.Render(fmt.Sprintf("%d of %d values are NaN", len(v.Data.Elements)-valid, len(v.Data.Elements))) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ next variable   esc back   q quit") + "\n")

	return b.String()
}

func summarise(data []float64) (min, max, mean float64, valid int) {
	min, max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
		sum += v
		valid++
	}
	if valid == 0 {
		return math.NaN(), math.NaN(), math.NaN(), 0
	}
	return min, max, sum / float64(valid), valid
}

// histogram renders value counts over ten bins as a unicode bar row.
func histogram(data []float64, min, max float64) string {
	const bins = 10
	if math.IsNaN(min) || max <= min {
		return dimmer.Render(strings.Repeat("▁", bins))
	}
	counts := make([]int, bins)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		i := int(float64(bins) * (v - min) / (max - min))
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	blocks := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, c := range counts {
		idx := 0
		if peak > 0 {
			idx = c * (len(blocks) - 1) / peak
		}
		b.WriteRune(blocks[idx])
	}
	return green.Render(b.String())
}
