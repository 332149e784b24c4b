package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const boardHelp = "j/k: move  enter: open  n: new profile  c: new category  e: edit  d: delete  m: move  [/]: reorder  s: settings  i/x: import/export  q: quit"

func (m *Model) View() string {
	width, height := m.width, m.height
	if width < 20 {
		width = 20
	}
	if height < 6 {
		height = 6
	}

	header := m.renderHeader(width)
	footer := m.renderFooter(width)
	bodyH := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	switch {
	case m.board.Empty:
		body = m.renderEmpty(width, bodyH)
	case m.board.Detail != nil && width >= 60:
		leftW := width * 2 / 5
		rightW := width - leftW - 1
		left := normalizePane(m.renderRows(leftW, bodyH), leftW, bodyH)
		right := normalizePane(renderDetail(m.st, m.board.Detail, rightW, m.focusDetail, m.detailCursor), rightW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	case m.board.Detail != nil && m.focusDetail:
		body = normalizePane(renderDetail(m.st, m.board.Detail, width, true, m.detailCursor), width, bodyH)
	default:
		body = normalizePane(m.renderRows(width, bodyH), width, bodyH)
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	var overlay string
	switch {
	case m.input != nil:
		overlay = m.renderInput(modalWidth(width))
	case m.modal != nil:
		overlay = m.modal.view(modalWidth(width))
	}
	if overlay != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay,
			lipgloss.WithWhitespaceChars(" "))
	}
	return screen
}

func (m *Model) renderHeader(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render(m.board.Title)
	lines := []string{fitLine(title+"  "+styleMuted().Render(m.board.Summary), width)}

	if len(m.board.Legend) > 0 {
		var parts []string
		for _, e := range m.board.Legend {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Accent)).Render("●")
			parts = append(parts, fmt.Sprintf("%s %s (%d)", dot, e.Name, e.Count))
		}
		lines = append(lines, fitLine(strings.Join(parts, "  "), width))
	}
	if m.board.ShowTip {
		tip := lipgloss.NewStyle().Background(colorTipBg).Foreground(colorSurfaceFg).Width(width).
			Render("💡 " + m.st.Strings().Tip + "  (h: hide)")
		lines = append(lines, tip)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter(width int) string {
	var lines []string
	if m.flash != "" {
		bg := colorFlashOkBg
		if m.flashErr {
			bg = colorFlashErrBg
		}
		lines = append(lines, lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("255")).
			Width(width).Render(" "+m.flash))
	}
	help := boardHelp
	if m.focusDetail {
		help = "j/k: move  enter: edit  a: add task  d: remove task  esc: back  q: quit"
	}
	lines = append(lines, styleMuted().Render(fitLine(help, width)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderEmpty(width, height int) string {
	str := m.st.Strings()
	content := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(str.EmptyTitle),
		styleMuted().Render(str.EmptySubtitle),
		"",
		"n: " + str.AddFirstProfile,
	}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderRows draws the section headers and cards, scrolled so the cursor
// stays visible.
func (m *Model) renderRows(width, height int) string {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}

	expanded := ""
	if m.board.Detail != nil {
		expanded = m.board.Detail.Card.Profile.ID
	}
	str := m.st.Strings()

	var lines []string
	for i := m.offset; i < len(m.rows) && len(lines) < height; i++ {
		r := m.rows[i]
		sec := m.board.Sections[r.section]
		var ln string
		if r.kind == rowSection {
			ln = accentStyle(sec.Category.ColorKey).Bold(true).Render(
				fmt.Sprintf("%s %s", sec.Category.Icon, sec.Category.Name)) +
				styleMuted().Render(fmt.Sprintf("  %d", sec.Count()))
		} else {
			c := sec.Cards[r.card]
			name := c.Profile.Name
			if strings.TrimSpace(name) == "" {
				name = str.NewProfile
			}
			marker := "  "
			if c.Profile.ID == expanded {
				marker = "▸ "
			}
			ln = "  " + marker + accentStyle(sec.Category.ColorKey).Render(fmt.Sprintf("#%d", c.Number)) + " " + name
		}
		if i == m.cursor && !m.focusDetail {
			ln = styleSelected().Render(fitLine(ln, width))
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderInput(width int) string {
	in := m.input
	bodyW := modalBodyWidth(width)
	var content, help string
	if in.multiline {
		content = in.ta.View()
		help = "ctrl+s: save   esc: cancel"
	} else {
		content = renderInputLine(bodyW, in.ti.View())
		help = "enter: save   esc: cancel"
	}
	return renderModalBox(width, in.title, content+"\n\n"+styleMuted().Width(bodyW).Render(help))
}
