package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/scriptc/pipeline"
)

const (
	headerHeight = 2
	footerHeight = 2
)

type stepModel struct {
	file      string
	query     string
	snapshots []pipeline.Snapshot
	matches   []int
	viewport  viewport.Model
	search    textinput.Model
	index     int
	match     int
	searching bool
}

func newStepModel(file string, snapshots []pipeline.Snapshot) *stepModel {
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.Width = 40

	m := &stepModel{
		file:      file,
		snapshots: snapshots,
		viewport:  viewport.New(80, 20),
		search:    search,
	}
	m.render()
	return m
}

func (m *stepModel) Init() tea.Cmd {
	return nil
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.render()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "right", "l", "tab":
			m.show(m.index + 1)
			return m, nil
		case "left", "h", "shift+tab":
			m.show(m.index - 1)
			return m, nil
		case "home", "g":
			m.show(0)
			return m, nil
		case "end", "G":
			m.show(len(m.snapshots) - 1)
			return m, nil
		case "/":
			m.searching = true
			m.search.SetValue("")
			return m, m.search.Focus()
		case "n":
			m.nextMatch(1)
			return m, nil
		case "N":
			m.nextMatch(-1)
			return m, nil
		case "esc":
			m.query = ""
			m.render()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *stepModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.query = m.search.Value()
		m.searching = false
		m.search.Blur()
		m.match = 0
		m.render()
		return m, nil
	case "esc", "ctrl+c":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// show switches to snapshot i, keeping the search query.
func (m *stepModel) show(i int) {
	if i < 0 || i >= len(m.snapshots) || i == m.index {
		return
	}
	m.index = i
	m.match = 0
	m.render()
}

func (m *stepModel) nextMatch(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.match = (m.match + delta + len(m.matches)) % len(m.matches)
	m.viewport.SetYOffset(m.matches[m.match])
}

func (m *stepModel) render() {
	lines := strings.Split(strings.TrimSuffix(m.snapshots[m.index].Text, "\n"), "\n")
	m.matches = m.matches[:0]
	for i, line := range lines {
		if m.query != "" && strings.Contains(line, m.query) {
			m.matches = append(m.matches, i)
			lines[i] = matchStyle.Render(line)
			continue
		}
		if style, ok := lineStyle(line); ok {
			lines[i] = style.Render(line)
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if len(m.matches) > 0 {
		m.viewport.SetYOffset(m.matches[m.match])
	} else {
		m.viewport.GotoTop()
	}
}

func (m *stepModel) View() string {
	s := m.snapshots[m.index]
	var b strings.Builder

	b.WriteString(titleStyle.Render("scriptc-opt"))
	b.WriteString(" ")
	b.WriteString(m.file)
	b.WriteString(fmt.Sprintf("  [%d/%d] %s", m.index+1, len(m.snapshots), labelStyle.Render(s.Stage)))
	if s.SSA {
		b.WriteString(" " + phiStyle.Render("ssa"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	switch {
	case m.searching:
		b.WriteString(m.search.View())
	case m.query != "" && len(m.matches) == 0:
		b.WriteString(errorStyle.Render(fmt.Sprintf("no match for %q", m.query)))
		b.WriteString(" ")
		b.WriteString(helpStyle.Render("esc clear • q quit"))
	case m.query != "":
		b.WriteString(fmt.Sprintf("match %d/%d ", m.match+1, len(m.matches)))
		b.WriteString(helpStyle.Render("n/N next/prev match • ←/→ stage • esc clear • q quit"))
	default:
		b.WriteString(helpStyle.Render("←/→ stage • ↑/↓ scroll • / search • q quit"))
	}
	return b.String()
}
