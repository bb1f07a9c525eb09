// Package review provides the interactive staging review: stepping through
// pending files, viewing diffs against existing project files, and deciding
// per file whether it stays staged.
package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lucasreid/stencil/internal/sandbox"
)

// Decision is the reviewer's choice for one staged file.
type Decision int

const (
	Keep Decision = iota
	Drop
	ShowDiff
	Cancel
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// File pairs a staged file with its conflict, if any.
type File struct {
	Pending  sandbox.PendingFile
	Conflict *sandbox.FileConflict
}

// ReviewFile prompts for a decision on one staged file. Selecting ShowDiff
// displays the diff (inline for short ones, paged otherwise) and re-prompts,
// so the diff can be consulted more than once.
func ReviewFile(f File) (Decision, error) {
	for {
		model := newMenuModel(f)
		final, err := tea.NewProgram(model).Run()
		if err != nil {
			return Cancel, fmt.Errorf("review menu: %w", err)
		}
		m := final.(menuModel)
		if m.selected == nil {
			return Cancel, nil
		}
		if *m.selected != ShowDiff {
			return *m.selected, nil
		}
		if err := showDiff(f); err != nil {
			return Cancel, err
		}
	}
}

func showDiff(f File) error {
	var text string
	if f.Conflict != nil {
		text = f.Conflict.Diff()
	} else {
		// New file: show full content as additions.
		var b strings.Builder
		fmt.Fprintf(&b, "+++ b/%s\n", f.Pending.RelPath)
		for _, line := range strings.Split(strings.TrimRight(f.Pending.Content, "\n"), "\n") {
			b.WriteString("+" + line + "\n")
		}
		text = b.String()
	}

	if strings.Count(text, "\n") <= 20 {
		fmt.Println(text)
		return nil
	}

	model := newPagerModel(f.Pending.RelPath, text)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("diff pager: %w", err)
	}
	return nil
}

type menuModel struct {
	file     File
	choices  []string
	cursor   int
	selected *Decision
}

func newMenuModel(f File) menuModel {
	return menuModel{
		file: f,
		choices: []string{
			"Show diff and decide",
			"Keep staged",
			"Drop from staging",
			"Cancel review",
		},
	}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			d := decisionFor(m.cursor)
			m.selected = &d
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder

	if m.file.Conflict != nil {
		b.WriteString(headerStyle.Render("! conflicts with existing file: ") + titleStyle.Render(m.file.Pending.RelPath) + "\n")
	} else {
		b.WriteString(titleStyle.Render("staged: "+m.file.Pending.RelPath) + "\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("    %d bytes", len(m.file.Pending.Content))) + "\n\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Cancel") + "\n\n")

	for i, choice := range m.choices {
		if m.cursor == i {
			b.WriteString("    " + selectedStyle.Render("> "+choice) + "\n")
		} else {
			b.WriteString("      " + choice + "\n")
		}
	}
	return b.String()
}

func decisionFor(cursor int) Decision {
	switch cursor {
	case 0:
		return ShowDiff
	case 1:
		return Keep
	case 2:
		return Drop
	default:
		return Cancel
	}
}

type pagerModel struct {
	path     string
	content  string
	viewport viewport.Model
	ready    bool
}

func newPagerModel(path, content string) pagerModel {
	return pagerModel{path: path, content: content}
}

func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.viewport.ScrollUp(1)
		case "down", "j":
			m.viewport.ScrollDown(1)
		case "pgup", "b":
			m.viewport.PageUp()
		case "pgdown", "f", "space":
			m.viewport.PageDown()
		}
	case tea.WindowSizeMsg:
		margin := 5 // header + footer
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-margin)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - margin
		}
	}
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder

	// Measure rendered widths, not byte counts: diff content can carry
	// multibyte runes and the frame must stay aligned around them.
	title := fmt.Sprintf("─ %s ", m.path)
	b.WriteString(borderStyle.Render(fmt.Sprintf("┌%s%s┐\n", title, pad("─", m.viewport.Width-lipgloss.Width(title)+4))))
	for _, line := range strings.Split(m.viewport.View(), "\n") {
		b.WriteString(borderStyle.Render("│") + " " + line)
		b.WriteString(pad(" ", m.viewport.Width-lipgloss.Width(line)-1) + borderStyle.Render("│") + "\n")
	}
	footer := " [↑/↓] Scroll    [q] Back "
	b.WriteString(borderStyle.Render(fmt.Sprintf("└%s%s┘\n", pad("─", m.viewport.Width-lipgloss.Width(footer)+4), footer)))
	return b.String()
}

func pad(s string, n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(s, n)
}
