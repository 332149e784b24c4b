package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"persona-board/internal/model"
	"persona-board/internal/state"
	"persona-board/internal/view"
)

type targetKind int

const (
	targetName targetKind = iota
	targetField
	targetTask
	targetAddTask
)

// detailTarget is one editable line of the open profile.
type detailTarget struct {
	kind  targetKind
	row   int
	field model.FieldConfig
	task  int
}

func detailTargets(d *view.Detail) []detailTarget {
	if d == nil {
		return nil
	}
	out := []detailTarget{{kind: targetName, row: -1}}
	for i, r := range d.Rows {
		if r.Field.BuiltInKey != model.BuiltInTasks {
			out = append(out, detailTarget{kind: targetField, row: i, field: r.Field})
			continue
		}
		for ti := range r.Tasks {
			out = append(out, detailTarget{kind: targetTask, row: i, field: r.Field, task: ti})
		}
		out = append(out, detailTarget{kind: targetAddTask, row: i, field: r.Field})
	}
	return out
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	d := m.board.Detail
	if d == nil {
		m.focusDetail = false
		return nil
	}
	ctx := m.ctx
	p := d.Card.Profile
	targets := detailTargets(d)
	if m.detailCursor >= len(targets) {
		m.detailCursor = len(targets) - 1
	}
	t := targets[m.detailCursor]

	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc", "tab", "h", "left":
		m.focusDetail = false
	case "up", "k":
		if m.detailCursor > 0 {
			m.detailCursor--
		}
	case "down", "j":
		if m.detailCursor < len(targets)-1 {
			m.detailCursor++
		}
	case "a":
		return m.addTask(p.ID)
	case "d", "delete":
		if t.kind == targetTask {
			_, err := m.w.EditTask(ctx, p.ID, t.task, "")
			m.refresh()
			return m.fail(err)
		}
	case "enter", "e":
		switch t.kind {
		case targetName:
			m.startInput("Name", p.Name, false, func(v string) error {
				p.Name = v
				_, err := m.w.UpdateProfile(ctx, p)
				return err
			})
		case targetField:
			f := t.field
			label := m.st.Strings().FieldLabel(f)
			multiline := f.BuiltInKey == model.BuiltInDescription
			m.startInput(label, model.FieldValue(p, f), multiline, func(v string) error {
				_, err := m.w.SetField(ctx, p.ID, f, v)
				return err
			})
		case targetTask:
			idx := t.task
			m.startInput(m.st.Strings().FieldLabel(t.field), p.Tasks[idx], false, func(v string) error {
				_, err := m.w.EditTask(ctx, p.ID, idx, v)
				return err
			})
		case targetAddTask:
			return m.addTask(p.ID)
		}
	}
	return nil
}

// addTask appends a placeholder task and opens it for editing.
func (m *Model) addTask(profileID string) tea.Cmd {
	p, err := m.w.AddTask(m.ctx, profileID)
	m.refresh()
	if err != nil {
		return m.fail(err)
	}
	idx := len(p.Tasks) - 1
	for i, t := range detailTargets(m.board.Detail) {
		if t.kind == targetTask && t.task == idx {
			m.detailCursor = i
		}
	}
	m.focusDetail = true
	m.startInput(m.st.Strings().FieldTasks, p.Tasks[idx], false, func(v string) error {
		_, err := m.w.EditTask(m.ctx, profileID, idx, v)
		return err
	})
	return nil
}

func renderDetail(st *state.State, d *view.Detail, width int, focused bool, cursor int) string {
	str := st.Strings()
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	accent := accentStyle(d.Category.ColorKey)
	muted := styleMuted()

	targets := detailTargets(d)
	selected := func(i int) bool { return focused && i == cursor }
	mark := func(i int, s string) string {
		if selected(i) {
			return styleSelected().Render("› " + s)
		}
		return "  " + s
	}

	var lines []string
	name := d.Card.Profile.Name
	if strings.TrimSpace(name) == "" {
		name = str.NewProfile
	}
	lines = append(lines, mark(0, accent.Bold(true).Render(fmt.Sprintf("#%d %s", d.Card.Number, name))))
	lines = append(lines, "  "+muted.Render(d.Category.Icon+" "+d.Category.Name), "")

	for ti, t := range targets {
		if t.kind == targetName {
			continue
		}
		r := d.Rows[t.row]
		switch t.kind {
		case targetField:
			lines = append(lines, "  "+muted.Bold(true).Render(r.Label))
			value := r.Value
			switch {
			case strings.TrimSpace(value) == "":
				value = muted.Render("—")
			case r.Field.BuiltInKey == model.BuiltInDescription:
				value = renderMarkdown(value, inner-2)
			case r.Field.BuiltInKey == model.BuiltInQuote:
				value = lipgloss.NewStyle().Italic(true).Render("“" + value + "”")
			}
			for i, ln := range strings.Split(value, "\n") {
				if i == 0 {
					lines = append(lines, mark(ti, ln))
				} else {
					lines = append(lines, "  "+ln)
				}
			}
			lines = append(lines, "")
		case targetTask:
			if t.task == 0 {
				lines = append(lines, "  "+muted.Bold(true).Render(r.Label))
			}
			lines = append(lines, mark(ti, "☐ "+r.Tasks[t.task]))
		case targetAddTask:
			if len(r.Tasks) == 0 {
				lines = append(lines, "  "+muted.Bold(true).Render(r.Label))
			}
			lines = append(lines, mark(ti, muted.Render("+ "+str.NewTask)), "")
		}
	}

	body := strings.Join(lines, "\n")
	return borderStyle(d.Category.ColorKey).Width(width - 2).Render(body)
}
