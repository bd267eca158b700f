package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/solver"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// BackendPickerModel is the bubbletea model behind solve --pick.
type BackendPickerModel struct {
	Backends []solver.Backend
	Cursor   int
	Selected *solver.Backend
}

// NewBackendPickerModel starts with the cursor on current.
func NewBackendPickerModel(current solver.Backend) BackendPickerModel {
	m := BackendPickerModel{Backends: solver.Backends}
	for i, b := range m.Backends {
		if b == current {
			m.Cursor = i
		}
	}
	return m
}

func (m BackendPickerModel) Init() tea.Cmd {
	return nil
}

func (m BackendPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Backends)-1 {
			m.Cursor++
		}
	case "home", "g":
		m.Cursor = 0
	case "end", "G":
		m.Cursor = len(m.Backends) - 1
	case "enter":
		b := m.Backends[m.Cursor]
		m.Selected = &b
		return m, tea.Quit
	}
	return m, nil
}

func (m BackendPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Solver Backend"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, backend := range m.Backends {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-12s %-7s %s", cursor, backend, backend.Regime(), listDimStyle.Render(backend.Description()))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("global solvers certify the optimum; ipopt finds a local one"))
	b.WriteString("\n")
	return b.String()
}

// pickBackend runs the picker on the terminal. Quitting without a choice is
// a config error so nothing is solved.
func pickBackend(current string) (string, error) {
	b, _ := solver.ParseBackend(current)
	final, err := tea.NewProgram(NewBackendPickerModel(b), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("backend picker: %w", err)
	}
	m := final.(BackendPickerModel)
	if m.Selected == nil {
		return "", errors.New(errors.ErrCodeInvalidConfig, "no backend selected")
	}
	return string(*m.Selected), nil
}
