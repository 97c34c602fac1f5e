// Package tui is a terminal adapter for the explorer: range sliders,
// multi-select lists, a color selector and the summary panel.
//
// The model runs inside the bubbletea event loop, which already processes
// one message at a time, so it calls the Explorer directly.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/service"
)

// sliderSteps is the number of steps across a quantitative range
const sliderSteps = 20

// colorChoices are cycled by the color key; "" is the default color
var colorChoices = []string{
	"",
	models.AttrType,
	models.AttrRace,
	models.AttrGender,
	models.AttrLocationCategory,
	models.AttrFatalities,
	models.AttrTotalVictims,
	models.AttrAgeOfShooter,
}

// Model is the bubbletea model of the terminal explorer
type Model struct {
	explorer *service.Explorer
	state    service.State
	last     models.Frame

	cursor int         // selected filter
	option map[int]int // option cursor per nominal filter
	color  int         // index into colorChoices
	err    error

	width int
}

// New returns a model over explorer. initial is the frame returned when the
// explorer was built.
func New(explorer *service.Explorer, initial models.Frame) Model {
	return Model{
		explorer: explorer,
		state:    explorer.State(),
		last:     initial,
		option:   make(map[int]int),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.state.Filters)-1 {
				m.cursor++
			}
		case "left", "h":
			m.adjust(-1, false)
		case "right", "l":
			m.adjust(1, false)
		case "H":
			m.adjust(-1, true)
		case "L":
			m.adjust(1, true)
		case " ", "enter":
			m.toggle()
		case "c":
			m.cycleColor()
		case "+", "=":
			m.zoom(2)
		case "-":
			m.zoom(0.5)
		case "r":
			m.apply(m.explorer.ResetFilters(), nil)
			m.option = make(map[int]int)
		}
	}
	return m, nil
}

// apply records the outcome of one entry point call
func (m *Model) apply(f models.Frame, err error) {
	m.err = err
	if err != nil {
		return
	}
	m.last = f
	m.state = m.explorer.State()
}

func (m *Model) current() (service.FilterState, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Filters) {
		return service.FilterState{}, false
	}
	return m.state.Filters[m.cursor], true
}

// adjust moves a slider handle by one step, or the option cursor of a list.
// upper selects the high handle.
func (m *Model) adjust(dir int, upper bool) {
	fs, ok := m.current()
	if !ok {
		return
	}

	if fs.Kind == models.Nominal {
		n := len(fs.Options)
		m.option[m.cursor] = (m.option[m.cursor] + dir + n) % n
		return
	}
	if fs.Range == nil || !fs.Range.Valid {
		return
	}

	step := (fs.Range.Max - fs.Range.Min) / sliderSteps
	if step == 0 {
		step = 1
	}
	low, high := fs.Low, fs.High
	if upper {
		high += float64(dir) * step
		if high < low {
			high = low
		}
	} else {
		low += float64(dir) * step
		if low > high {
			low = high
		}
	}
	m.apply(m.explorer.UpdateQuantitativeFilter(fs.Attribute, low, high))
}

// toggle flips the option under the cursor of a nominal list
func (m *Model) toggle() {
	fs, ok := m.current()
	if !ok || fs.Kind != models.Nominal {
		return
	}
	value := fs.Options[m.option[m.cursor]]
	if value == models.AllOption {
		m.apply(m.explorer.UpdateNominalFilter(fs.Attribute, []string{models.AllOption}))
		return
	}
	m.apply(m.explorer.ToggleNominalOption(fs.Attribute, value))
}

func (m *Model) cycleColor() {
	m.color = (m.color + 1) % len(colorChoices)
	m.apply(m.explorer.SelectColorAttribute(colorChoices[m.color]))
}

func (m *Model) zoom(factor float64) {
	t := m.state.Transform
	t.K *= factor
	m.apply(m.explorer.ApplyTransform(t), nil)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#bd0026"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4682b4"))

	labelStyle = lipgloss.NewStyle().
			Width(34)

	selectedStyle = lipgloss.NewStyle().
			Underline(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Incident map") + "\n\n")

	for i, fs := range m.state.Filters {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + labelStyle.Render(fs.Label) + m.renderFilter(i, fs) + "\n")
	}

	b.WriteString("\n" + panelStyle.Render(m.renderSummary()) + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(mutedStyle.Render("↑/↓ filter  ←/→ low or option  H/L high  space toggle  c color  +/- zoom  r reset  q quit") + "\n")
	return b.String()
}

func (m Model) renderFilter(i int, fs service.FilterState) string {
	if fs.Kind == models.Quantitative {
		if fs.Range == nil || !fs.Range.Valid {
			return mutedStyle.Render("no data")
		}
		high := formatBound(fs.High)
		if fs.OpenHigh {
			high += "+"
		}
		return fmt.Sprintf("[%s .. %s]  %s", formatBound(fs.Low), high,
			mutedStyle.Render(fmt.Sprintf("of %s..%s", formatBound(fs.Range.Min), formatBound(fs.Range.Max))))
	}

	selected := make(map[string]bool, len(fs.Selected))
	for _, v := range fs.Selected {
		selected[v] = true
	}
	parts := make([]string, 0, len(fs.Options))
	for j, opt := range fs.Options {
		box := "[ ]"
		if selected[opt] {
			box = "[x]"
		}
		item := box + " " + opt
		if i == m.cursor && j == m.option[i] {
			item = selectedStyle.Render(item)
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, " ")
}

func (m Model) renderSummary() string {
	s := m.state.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "Incidents: %d of %d (%.1f%%)\n", s.Count, s.TotalCount, s.CountPercent)
	for _, a := range s.Attributes {
		pct := "n/a"
		if a.Defined {
			pct = fmt.Sprintf("%.1f%%", a.Percent)
		}
		fmt.Fprintf(&b, "%-14s %8s  %s of total", a.Attribute, formatBound(a.Sum), pct)
		if a.Missing > 0 {
			fmt.Fprintf(&b, "  (%d missing)", a.Missing)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Median age: %s\n", formatBound(s.MedianAge))

	color := m.state.ColorBy
	if color == "" {
		color = "none"
	}
	fmt.Fprintf(&b, "Color: %s  Zoom: %.1fx  Markers: +%d ~%d -%d (gen %d)",
		color, m.state.Transform.K,
		len(m.last.Diff.Create), len(m.last.Diff.Update), len(m.last.Diff.Remove), m.last.Generation)

	if len(m.state.Legend) > 0 {
		b.WriteString("\n")
		for _, e := range m.state.Legend {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("●")
			b.WriteString(swatch + " " + e.Label + "  ")
		}
	}
	return b.String()
}

func formatBound(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
