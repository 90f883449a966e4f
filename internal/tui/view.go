package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// View renders the current screen.
func (m Model) View() string {
	var b strings.Builder

	switch m.screen {
	case movePickerScreen:
		b.WriteString(breadcrumbStyle.Render("Move to: " + breadcrumbLine(m.picker)))
		b.WriteString("\n\n")
		b.WriteString(m.list.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter descend · backspace up · s select here · esc cancel"))

	case nameInputScreen, pathInputScreen:
		b.WriteString(breadcrumbStyle.Render(breadcrumbLine(m.session.Nav())))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter confirm · esc cancel"))

	case confirmDeleteScreen:
		name := ""
		if m.deleteTarget.folder != nil {
			name = fmt.Sprintf("folder %q and everything in it", m.deleteTarget.folder.Name)
		} else if m.deleteTarget.document != nil {
			name = fmt.Sprintf("document %q", m.deleteTarget.document.Name)
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %s?", name)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("y confirm · n cancel"))

	default:
		b.WriteString(breadcrumbStyle.Render(breadcrumbLine(m.session.Nav())))
		b.WriteString("\n\n")
		b.WriteString(m.list.View())
		b.WriteString("\n")
		if m.status != "" {
			style := statusStyle
			if m.statErr {
				style = errorStyle
			}
			b.WriteString(style.Render(m.status))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("enter open · esc back · n new · r rename · m move · u upload · d delete · g root · ctrl+r refresh · q quit"))
	}

	return docStyle.Render(b.String())
}

// Run starts the bubbletea program and blocks until exit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
