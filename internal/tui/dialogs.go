package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"persona-board/internal/clipboard"
	"persona-board/internal/dialog"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/view"
)

// modal is an open dialog session rendered over the board.
type modal interface {
	session() *dialog.Session
	init(m *Model) tea.Cmd
	update(m *Model, msg tea.KeyMsg) tea.Cmd
	view(width int) string
}

func newModal(m *Model, s *dialog.Session) modal {
	switch s.Request.Kind {
	case dialog.KindCategoryForm:
		return newCategoryFormModal(m, s)
	case dialog.KindDeleteConfirm:
		return &confirmModal{s: s, focus: confirmFocusCancel}
	case dialog.KindCategoryPicker:
		return newPickerModal(s)
	case dialog.KindSettings:
		return newSettingsModal(m, s)
	case dialog.KindImport:
		return newImportModal(m, s)
	case dialog.KindExport:
		return &exportModal{s: s}
	}
	return nil
}

// reply answers the session and drops the modal. Errors surface as a flash.
func (m *Model) reply(s *dialog.Session, msg dialog.Message) tea.Cmd {
	m.modal = nil
	return m.fail(s.Reply(msg))
}

func (m *Model) dismiss(s *dialog.Session) tea.Cmd {
	m.modal = nil
	return m.fail(s.Dismiss())
}

func newTextInput(width int, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Width = width
	ti.SetValue(value)
	ti.CursorEnd()
	return ti
}

func buttonStyles() (base, active lipgloss.Style) {
	base = lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	active = base.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	return base, active
}

// --- category form ---

const (
	formFocusName = iota
	formFocusIcon
	formFocusColor
	formFocusCount
)

type categoryFormModal struct {
	s      *dialog.Session
	name   textinput.Model
	icon   textinput.Model
	colors []model.ColorKey
	color  int
	focus  int
}

func newCategoryFormModal(m *Model, s *dialog.Session) *categoryFormModal {
	w := modalBodyWidth(modalWidth(m.width)) - 2
	f := &categoryFormModal{s: s, colors: s.Request.ColorKeys}
	if len(f.colors) == 0 {
		f.colors = model.ColorKeys
	}
	name, icon := "", "📁"
	if c := s.Request.Category; c != nil {
		name, icon = c.Name, c.Icon
		for i, k := range f.colors {
			if k == c.ColorKey {
				f.color = i
			}
		}
	}
	f.name = newTextInput(w, name)
	f.icon = newTextInput(w, icon)
	f.name.Focus()
	return f
}

func (f *categoryFormModal) session() *dialog.Session { return f.s }
func (f *categoryFormModal) init(*Model) tea.Cmd      { return textinput.Blink }

func (f *categoryFormModal) setFocus(i int) {
	f.focus = (i + formFocusCount) % formFocusCount
	f.name.Blur()
	f.icon.Blur()
	switch f.focus {
	case formFocusName:
		f.name.Focus()
	case formFocusIcon:
		f.icon.Focus()
	}
}

func (f *categoryFormModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.dismiss(f.s)
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil
	case "enter":
		out := dialog.Message{
			Type:  dialog.TypeAddCategory,
			Name:  f.name.Value(),
			Icon:  f.icon.Value(),
			Color: string(f.colors[f.color]),
		}
		if c := f.s.Request.Category; c != nil {
			out.Type = dialog.TypeUpdateCategory
			out.ID = c.ID
		}
		return m.reply(f.s, out)
	}
	if f.focus == formFocusColor {
		switch msg.String() {
		case "left", "h":
			f.color = (f.color + len(f.colors) - 1) % len(f.colors)
		case "right", "l", " ":
			f.color = (f.color + 1) % len(f.colors)
		}
		return nil
	}
	var cmd tea.Cmd
	if f.focus == formFocusName {
		f.name, cmd = f.name.Update(msg)
	} else {
		f.icon, cmd = f.icon.Update(msg)
	}
	return cmd
}

func (f *categoryFormModal) view(width int) string {
	bodyW := modalBodyWidth(width)
	label := func(i int, s string) string {
		if f.focus == i {
			return lipgloss.NewStyle().Bold(true).Render(s)
		}
		return styleMuted().Render(s)
	}
	var swatches []string
	for i, k := range f.colors {
		dot := accentStyle(k).Render("●")
		if i == f.color {
			dot = accentStyle(k).Bold(true).Render("[" + string(k) + "]")
		}
		swatches = append(swatches, dot)
	}
	content := strings.Join([]string{
		label(formFocusName, "Name"),
		renderInputLine(bodyW, f.name.View()),
		"",
		label(formFocusIcon, "Icon"),
		renderInputLine(bodyW, f.icon.View()),
		"",
		label(formFocusColor, "Color"),
		strings.Join(swatches, " "),
		"",
		styleMuted().Width(bodyW).Render("tab: focus   ←/→: color   enter: save   esc: cancel"),
	}, "\n")
	return renderModalBox(width, f.s.Request.Title, content)
}

// --- delete confirmation ---

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type confirmModal struct {
	s     *dialog.Session
	focus confirmModalFocus
}

func (c *confirmModal) session() *dialog.Session { return c.s }
func (c *confirmModal) init(*Model) tea.Cmd      { return nil }

func (c *confirmModal) confirm(m *Model) tea.Cmd {
	req := c.s.Request
	return m.reply(c.s, dialog.Message{Type: dialog.TypeConfirmDelete, DeleteType: req.DeleteType, ID: req.TargetID})
}

func (c *confirmModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y":
		return c.confirm(m)
	case "n", "esc", "ctrl+g":
		return m.reply(c.s, dialog.Message{Type: dialog.TypeCancelDelete})
	case "tab", "shift+tab", "left", "right":
		if c.focus == confirmFocusConfirm {
			c.focus = confirmFocusCancel
		} else {
			c.focus = confirmFocusConfirm
		}
	case "enter":
		if c.focus == confirmFocusConfirm {
			return c.confirm(m)
		}
		return m.reply(c.s, dialog.Message{Type: dialog.TypeCancelDelete})
	}
	return nil
}

func (c *confirmModal) view(width int) string {
	base, active := buttonStyles()
	yes, no := base.Render("Delete"), base.Render("Cancel")
	if c.focus == confirmFocusConfirm {
		yes = active.Render("Delete")
	} else {
		no = active.Render("Cancel")
	}
	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(c.s.Request.Message),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, sep, no),
		"",
		styleMuted().Width(bodyW).Render("y: delete   tab: focus   enter: select   esc: cancel"),
	}, "\n")
	return renderModalBox(width, c.s.Request.Title, content)
}

// --- category picker ---

type pickerModal struct {
	s       *dialog.Session
	choices []model.Category
	cursor  int
}

func newPickerModal(s *dialog.Session) *pickerModal {
	p := &pickerModal{s: s}
	p.choices = append(p.choices, view.UncategorizedCategory(s.Request.Strings))
	p.choices = append(p.choices, s.Request.Categories...)
	for i, c := range p.choices {
		if c.ID == s.Request.CurrentCategoryID {
			p.cursor = i
		}
	}
	return p
}

func (p *pickerModal) session() *dialog.Session { return p.s }
func (p *pickerModal) init(*Model) tea.Cmd      { return nil }

func (p *pickerModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		return m.dismiss(p.s)
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.choices)-1 {
			p.cursor++
		}
	case "enter":
		return m.reply(p.s, dialog.Message{
			Type:       dialog.TypeUpdateProfileCategory,
			ProfileID:  p.s.Request.ProfileID,
			CategoryID: p.choices[p.cursor].ID,
		})
	}
	return nil
}

func (p *pickerModal) view(width int) string {
	bodyW := modalBodyWidth(width)
	var lines []string
	for i, c := range p.choices {
		ln := c.Icon + " " + c.Name
		if c.ID == p.s.Request.CurrentCategoryID {
			ln += " ✓"
		}
		if i == p.cursor {
			lines = append(lines, styleSelected().Width(bodyW).Render(ln))
		} else {
			lines = append(lines, accentStyle(c.ColorKey).Render(ln))
		}
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render("enter: move   esc: cancel"))
	title := p.s.Request.Title
	if title == "" {
		title = "Category"
	}
	return renderModalBox(width, title, strings.Join(lines, "\n"))
}

// --- settings ---

type settingsModal struct {
	s        *dialog.Session
	settings model.WidgetSettings
	language model.Language
	cursor   int
	rename   *textinput.Model
	renameID string
	err      string
}

func newSettingsModal(m *Model, s *dialog.Session) *settingsModal {
	sm := &settingsModal{s: s, language: s.Request.Language}
	if s.Request.Settings != nil {
		sm.settings = s.Request.Settings.Clone()
	}
	return sm
}

func (sm *settingsModal) session() *dialog.Session { return sm.s }
func (sm *settingsModal) init(*Model) tea.Cmd      { return nil }

func (sm *settingsModal) fields() []model.FieldConfig {
	return view.SortedFields(sm.settings)
}

func (sm *settingsModal) startRename(m *Model, f model.FieldConfig) {
	ti := newTextInput(modalBodyWidth(modalWidth(m.width))-2, f.Label)
	ti.Focus()
	sm.rename = &ti
	sm.renameID = f.ID
}

func (sm *settingsModal) selectField(id string) {
	for i, f := range sm.fields() {
		if f.ID == id {
			sm.cursor = i
		}
	}
}

func (sm *settingsModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	if sm.rename != nil {
		switch msg.String() {
		case "esc":
			sm.rename = nil
		case "enter":
			ws, err := mutate.RenameField(sm.settings, sm.renameID, strings.TrimSpace(sm.rename.Value()))
			sm.setErr(err)
			sm.settings = ws
			sm.rename = nil
		default:
			var cmd tea.Cmd
			*sm.rename, cmd = sm.rename.Update(msg)
			return cmd
		}
		return nil
	}

	fields := sm.fields()
	var cur *model.FieldConfig
	if sm.cursor < len(fields) {
		cur = &fields[sm.cursor]
	}
	switch msg.String() {
	case "esc":
		return m.reply(sm.s, dialog.Message{Type: dialog.TypeCancelSettings})
	case "enter", "ctrl+s":
		ws := sm.settings.Clone()
		return m.reply(sm.s, dialog.Message{Type: dialog.TypeUpdateSettings, Settings: &ws, Language: sm.language})
	case "up", "k":
		if sm.cursor > 0 {
			sm.cursor--
		}
	case "down", "j":
		if sm.cursor < len(fields)-1 {
			sm.cursor++
		}
	case " ", "v":
		if cur != nil {
			ws, err := mutate.ToggleField(sm.settings, cur.ID)
			sm.settings = ws
			sm.setErr(err)
		}
	case "K", "J":
		if cur != nil {
			dir := mutate.Up
			if msg.String() == "J" {
				dir = mutate.Down
			}
			ws, _, err := mutate.MoveField(sm.settings, cur.ID, dir)
			sm.settings = ws
			sm.setErr(err)
			sm.selectField(cur.ID)
		}
	case "a":
		ws, f := mutate.AddField(sm.settings, "", time.Now())
		sm.settings = ws
		sm.selectField(f.ID)
		sm.startRename(m, f)
	case "r", "e":
		if cur != nil && !cur.IsBuiltIn {
			sm.startRename(m, *cur)
		}
	case "d":
		if cur != nil {
			ws, err := mutate.DeleteField(sm.settings, cur.ID)
			sm.settings = ws
			sm.setErr(err)
			if n := len(sm.fields()); sm.cursor >= n && n > 0 {
				sm.cursor = n - 1
			}
		}
	case "L":
		if sm.language == model.LanguageNL {
			sm.language = model.LanguageEN
		} else {
			sm.language = model.LanguageNL
		}
	}
	return nil
}

func (sm *settingsModal) setErr(err error) {
	sm.err = ""
	if err != nil {
		sm.err = err.Error()
	}
}

func (sm *settingsModal) view(width int) string {
	bodyW := modalBodyWidth(width)
	str := sm.s.Request.Strings
	var lines []string
	for i, f := range sm.fields() {
		box := "[ ]"
		if f.IsVisible {
			box = "[x]"
		}
		label := str.FieldLabel(f)
		if label == "" {
			label = styleMuted().Render("(unnamed)")
		}
		if f.IsBuiltIn {
			label += styleMuted().Render("  built-in")
		}
		ln := box + " " + label
		if sm.rename != nil && f.ID == sm.renameID {
			ln = box + " " + renderInputLine(bodyW-4, sm.rename.View())
		}
		if i == sm.cursor && sm.rename == nil {
			ln = styleSelected().Render(ln)
		}
		lines = append(lines, ln)
	}
	lines = append(lines, "", "Language: "+strings.ToUpper(string(sm.language)))
	if sm.err != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorFlashErrBg).Render(sm.err))
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render(
		"space: show/hide   K/J: move   a: add   r: rename   d: delete   L: language   enter: save   esc: cancel"))
	title := sm.s.Request.Title
	if title == "" {
		title = "Settings"
	}
	return renderModalBox(width, title, strings.Join(lines, "\n"))
}

// --- import ---

type importModal struct {
	s  *dialog.Session
	ta textarea.Model
}

func newImportModal(m *Model, s *dialog.Session) *importModal {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Placeholder = `{"profiles": {...}}`
	ta.SetWidth(modalBodyWidth(modalWidth(m.width)))
	ta.SetHeight(10)
	ta.Focus()
	return &importModal{s: s, ta: ta}
}

func (im *importModal) session() *dialog.Session { return im.s }
func (im *importModal) init(*Model) tea.Cmd      { return textarea.Blink }

func (im *importModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.dismiss(im.s)
	case "ctrl+s":
		return m.reply(im.s, dialog.Message{Type: dialog.TypeImportData, Data: im.ta.Value()})
	}
	var cmd tea.Cmd
	im.ta, cmd = im.ta.Update(msg)
	return cmd
}

func (im *importModal) view(width int) string {
	bodyW := modalBodyWidth(width)
	content := im.ta.View() + "\n\n" + styleMuted().Width(bodyW).Render("paste JSON   ctrl+s: import   esc: cancel")
	title := im.s.Request.Title
	if title == "" {
		title = "Import"
	}
	return renderModalBox(width, title, content)
}

// --- export ---

// exportModal runs the readiness handshake, copies the payload it receives
// and reports the outcome. When nothing could be copied the payload is shown
// until the user closes the dialog.
type exportModal struct {
	s       *dialog.Session
	payload string
	manual  bool
}

func (ex *exportModal) session() *dialog.Session { return ex.s }

func (ex *exportModal) init(m *Model) tea.Cmd {
	if err := ex.s.Reply(dialog.Message{Type: dialog.TypeUIReady}); err != nil {
		m.modal = nil
		return m.fail(err)
	}
	return waitOutbound(ex.s)
}

func (ex *exportModal) receive(m *Model, o dialog.Outbound) tea.Cmd {
	if o.Type != dialog.TypeExportPayload {
		return m.reply(ex.s, dialog.Message{Type: dialog.TypeExportError})
	}
	if m.copy(o.Data) == clipboard.MethodManual {
		ex.payload = o.Data
		ex.manual = true
		return nil
	}
	return m.reply(ex.s, dialog.Message{Type: dialog.TypeExportComplete})
}

func (ex *exportModal) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	if !ex.manual {
		if msg.String() == "esc" {
			return m.reply(ex.s, dialog.Message{Type: dialog.TypeExportError})
		}
		return nil
	}
	switch msg.String() {
	case "esc", "enter", "q":
		return m.reply(ex.s, dialog.Message{Type: dialog.TypeExportComplete})
	}
	return nil
}

func (ex *exportModal) view(width int) string {
	bodyW := modalBodyWidth(width)
	str := ex.s.Request.Strings
	title := ex.s.Request.Title
	if title == "" {
		title = "Export"
	}
	if !ex.manual {
		return renderModalBox(width, title, str.ExportStarted)
	}
	payload := ex.payload
	lines := strings.Split(payload, "\n")
	if len(lines) > 12 {
		payload = strings.Join(lines[:12], "\n") + "\n…"
	}
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(str.ExportManualHint),
		"",
		payload,
		"",
		styleMuted().Width(bodyW).Render("enter/esc: close"),
	}, "\n")
	return renderModalBox(width, title, content)
}
