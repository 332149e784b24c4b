package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"persona-board/internal/clipboard"
	"persona-board/internal/dialog"
	"persona-board/internal/logging"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
	"persona-board/internal/view"
	"persona-board/internal/widget"
)

type rowKind int

const (
	rowSection rowKind = iota
	rowCard
)

// boardRow is one selectable line of the board: a section header or a card.
type boardRow struct {
	kind    rowKind
	section int
	card    int
}

// inputState is an inline text editor (title, profile name, field values).
type inputState struct {
	title     string
	multiline bool
	ti        textinput.Model
	ta        textarea.Model
	commit    func(value string) error
}

// Model is the board. It is used through a pointer so the widget's
// notifications, which arrive synchronously during Update, land on it.
type Model struct {
	ctx    context.Context
	st     *state.State
	host   *dialog.Host
	w      *widget.Widget
	log    *logging.Logger
	remote <-chan struct{}
	copy   func(string) clipboard.Method

	width  int
	height int

	board  view.Board
	rows   []boardRow
	cursor int
	offset int

	focusDetail  bool
	detailCursor int

	modal modal
	input *inputState

	flash    string
	flashErr bool
	flashSeq int
}

func newModel(ctx context.Context, st *state.State, host *dialog.Host, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	m := &Model{ctx: ctx, st: st, host: host, log: log, remote: opts.Remote, width: 100, height: 30}
	m.copy = clipboard.Default().Copy
	m.w = widget.New(st, host, widget.Options{
		Logger:   log,
		Metrics:  opts.Metrics,
		Notifier: widget.NotifierFunc(m.notify),
	})
	m.refresh()
	return m
}

// attach makes the model the host's dialog frontend; send delivers messages
// to the running program.
func (m *Model) attach(send func(tea.Msg)) {
	m.host.SetFrontend(frontend{send: send})
}

func (m *Model) notify(msg string, isError bool) {
	m.flash = msg
	m.flashErr = isError
	m.flashSeq++
}

func (m *Model) fail(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.notify(err.Error(), true)
	return m.clearFlashLater()
}

func (m *Model) clearFlashLater() tea.Cmd {
	seq := m.flashSeq
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg { return clearFlashMsg{seq: seq} })
}

// refresh rebuilds the board and keeps the cursor on the same profile or
// section when it still exists.
func (m *Model) refresh() {
	var keepID string
	var keepKind rowKind
	r, had := m.currentRow()
	if had {
		keepKind = r.kind
		if r.kind == rowCard {
			keepID = m.board.Sections[r.section].Cards[r.card].Profile.ID
		} else {
			keepID = m.board.Sections[r.section].Category.ID
		}
	}

	m.board = view.FromState(m.st)
	m.rows = m.rows[:0]
	for si, sec := range m.board.Sections {
		m.rows = append(m.rows, boardRow{kind: rowSection, section: si})
		for ci := range sec.Cards {
			m.rows = append(m.rows, boardRow{kind: rowCard, section: si, card: ci})
		}
	}

	if had {
		for i, r := range m.rows {
			if r.kind != keepKind {
				continue
			}
			if r.kind == rowCard && m.board.Sections[r.section].Cards[r.card].Profile.ID == keepID ||
				r.kind == rowSection && m.board.Sections[r.section].Category.ID == keepID {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
	if m.board.Detail == nil {
		m.focusDetail = false
		m.detailCursor = 0
	} else if n := len(detailTargets(m.board.Detail)); m.detailCursor >= n {
		m.detailCursor = n - 1
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentRow() (boardRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return boardRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) selectProfile(id string) {
	for i, r := range m.rows {
		if r.kind == rowCard && m.board.Sections[r.section].Cards[r.card].Profile.ID == id {
			m.cursor = i
			return
		}
	}
}

// rowCategoryID is the category a new profile added at the cursor goes to.
func (m *Model) rowCategoryID() string {
	r, ok := m.currentRow()
	if !ok {
		return model.UncategorizedID
	}
	sec := m.board.Sections[r.section]
	if sec.Uncategorized {
		return model.UncategorizedID
	}
	return sec.Category.ID
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitInbox(m.host), waitRemote(m.remote))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case dialogMsg:
		md := newModal(m, msg.s)
		if md == nil {
			_ = msg.s.Dismiss()
			return m, nil
		}
		m.modal = md
		m.input = nil
		return m, md.init(m)

	case inboundMsg:
		before := m.flashSeq
		if err := m.w.HandleMessage(m.ctx, msg.in); err != nil {
			m.log.Warn("dialog message failed", "type", msg.in.Message.Type, "err", err)
		}
		if m.modal != nil && m.modal.session().Closed() {
			m.modal = nil
		}
		m.refresh()
		cmds := []tea.Cmd{waitInbox(m.host)}
		if m.flashSeq != before {
			cmds = append(cmds, m.clearFlashLater())
		}
		return m, tea.Batch(cmds...)

	case outboundMsg:
		if ex, ok := m.modal.(*exportModal); ok && ex.s == msg.s {
			return m, ex.receive(m, msg.o)
		}
		return m, nil

	case remoteMsg:
		if len(m.st.Doc().Pending()) == 0 {
			if err := m.st.Doc().Reload(m.ctx); err != nil {
				m.log.Warn("reload failed", "err", err)
			}
			m.refresh()
		}
		return m, waitRemote(m.remote)

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.input != nil:
			return m, m.updateInput(msg)
		case m.modal != nil:
			return m, m.modal.update(m, msg)
		case m.focusDetail:
			return m, m.updateDetail(msg)
		default:
			return m, m.updateBoard(msg)
		}
	}

	if m.input != nil {
		return m, m.forwardInput(msg)
	}
	return m, nil
}

func (m *Model) updateBoard(msg tea.KeyMsg) tea.Cmd {
	ctx := m.ctx
	r, hasRow := m.currentRow()
	var card *view.Card
	var sec view.Section
	if hasRow {
		sec = m.board.Sections[r.section]
		if r.kind == rowCard {
			card = &sec.Cards[r.card]
		}
	}
	realSection := hasRow && r.kind == rowSection && !sec.Uncategorized

	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.rows) - 1
		m.clampCursor()
	case "enter", " ":
		if card == nil {
			return nil
		}
		var err error
		if m.board.Detail != nil && m.board.Detail.Card.Profile.ID == card.Profile.ID {
			err = m.w.Collapse(ctx)
		} else {
			err = m.w.Expand(ctx, card.Profile.ID)
		}
		m.refresh()
		return m.fail(err)
	case "esc":
		if m.board.Detail != nil {
			err := m.w.Collapse(ctx)
			m.refresh()
			return m.fail(err)
		}
	case "tab", "l", "right":
		if m.board.Detail != nil {
			m.focusDetail = true
		}
	case "n":
		p, err := m.w.AddProfile(ctx, m.rowCategoryID())
		m.refresh()
		if err == nil {
			m.selectProfile(p.ID)
		}
		return m.fail(err)
	case "N":
		p, err := m.w.AddProfile(ctx, model.UncategorizedID)
		m.refresh()
		if err == nil {
			m.selectProfile(p.ID)
		}
		return m.fail(err)
	case "c":
		_, err := m.w.OpenCategoryForm(ctx, "")
		return m.fail(err)
	case "e":
		switch {
		case card != nil:
			p := card.Profile
			m.startInput("Name", p.Name, false, func(v string) error {
				p.Name = v
				_, err := m.w.UpdateProfile(ctx, p)
				return err
			})
		case realSection:
			_, err := m.w.OpenCategoryForm(ctx, sec.Category.ID)
			return m.fail(err)
		}
	case "d":
		switch {
		case card != nil:
			_, err := m.w.OpenDeleteProfile(ctx, card.Profile.ID)
			return m.fail(err)
		case realSection:
			_, err := m.w.OpenDeleteCategory(ctx, sec.Category.ID)
			return m.fail(err)
		}
	case "m":
		if card != nil {
			_, err := m.w.OpenCategoryPicker(ctx, card.Profile.ID)
			return m.fail(err)
		}
	case "[", "]":
		if realSection {
			dir := mutate.Up
			if msg.String() == "]" {
				dir = mutate.Down
			}
			_, err := m.w.MoveCategory(ctx, sec.Category.ID, dir)
			m.refresh()
			return m.fail(err)
		}
	case "s":
		m.w.OpenSettings(ctx)
	case "i":
		m.w.OpenImport(ctx)
	case "x":
		m.w.OpenExport(ctx)
	case "t":
		m.startInput("Title", m.st.Title.Get(), false, func(v string) error {
			_, err := m.w.SetTitle(ctx, v)
			return err
		})
	case "h":
		if m.board.ShowTip {
			err := m.w.HideTip(ctx)
			m.refresh()
			return m.fail(err)
		}
	case "r":
		err := m.st.Doc().Reload(ctx)
		m.refresh()
		return m.fail(err)
	}
	return nil
}

func (m *Model) startInput(title, value string, multiline bool, commit func(string) error) {
	in := &inputState{title: title, multiline: multiline, commit: commit}
	if multiline {
		in.ta = textarea.New()
		in.ta.ShowLineNumbers = false
		in.ta.CharLimit = 0
		in.ta.SetWidth(modalBodyWidth(modalWidth(m.width)))
		in.ta.SetHeight(8)
		in.ta.SetValue(value)
		in.ta.Focus()
	} else {
		in.ti = textinput.New()
		in.ti.Prompt = ""
		in.ti.CharLimit = 0
		in.ti.Width = modalBodyWidth(modalWidth(m.width)) - 2
		in.ti.SetValue(value)
		in.ti.CursorEnd()
		in.ti.Focus()
	}
	m.input = in
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	in := m.input
	switch msg.String() {
	case "esc":
		m.input = nil
		return nil
	case "ctrl+s":
		return m.commitInput()
	case "enter":
		if !in.multiline {
			return m.commitInput()
		}
	}
	return m.forwardInput(msg)
}

func (m *Model) forwardInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.input.multiline {
		m.input.ta, cmd = m.input.ta.Update(msg)
	} else {
		m.input.ti, cmd = m.input.ti.Update(msg)
	}
	return cmd
}

func (m *Model) commitInput() tea.Cmd {
	in := m.input
	value := in.ti.Value()
	if in.multiline {
		value = in.ta.Value()
	}
	m.input = nil
	err := in.commit(value)
	m.refresh()
	return m.fail(err)
}
