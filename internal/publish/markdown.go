package publish

import (
	"bytes"
	"fmt"
	"strings"

	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
	"persona-board/internal/view"
)

// RenderProfileMarkdown renders one profile card with its visible fields in
// display order, the way the expanded detail panel shows it.
func RenderProfileMarkdown(st *state.State, profileID string) (string, error) {
	in := view.Snapshot(st)
	in.ExpandedID = strings.TrimSpace(profileID)
	d := view.Build(in).Detail
	if d == nil {
		return "", mutate.NotFoundError{Kind: "profile", ID: in.ExpandedID}
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	name := strings.TrimSpace(d.Card.Profile.Name)
	if name == "" {
		name = in.Strings.NewProfile
	}
	writeLn(fmt.Sprintf("# #%d %s", d.Card.Number, name))
	writeLn("")
	writeLn(fmt.Sprintf("%s %s", d.Category.Icon, d.Category.Name))
	writeLn("")

	for _, r := range d.Rows {
		writeLn("## " + r.Label)
		writeLn("")
		if r.Field.BuiltInKey == model.BuiltInTasks {
			for _, t := range r.Tasks {
				writeLn("- [ ] " + t)
			}
			if len(r.Tasks) == 0 {
				writeLn("_—_")
			}
			writeLn("")
			continue
		}
		v := strings.TrimSpace(r.Value)
		switch {
		case v == "":
			writeLn("_—_")
		case r.Field.BuiltInKey == model.BuiltInQuote:
			for _, ln := range strings.Split(v, "\n") {
				writeLn("> " + ln)
			}
		default:
			writeLn(v)
		}
		writeLn("")
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// RenderBoardIndex renders the board title, the legend and one linked list per
// section. link maps a profile id to the page it is published at.
func RenderBoardIndex(st *state.State, link func(profileID string) string) string {
	b := view.FromState(st)

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}
	writeLn("# " + strings.TrimSpace(b.Title))
	writeLn("")
	writeLn(b.Summary)
	writeLn("")
	for _, sec := range b.Sections {
		writeLn(fmt.Sprintf("## %s %s (%d)", sec.Category.Icon, sec.Category.Name, sec.Count()))
		writeLn("")
		for _, c := range sec.Cards {
			name := strings.TrimSpace(c.Profile.Name)
			if name == "" {
				name = st.Strings().NewProfile
			}
			writeLn(fmt.Sprintf("- [#%d %s](%s)", c.Number, name, link(c.Profile.ID)))
		}
		writeLn("")
	}
	return strings.TrimRight(buf.String(), "\n") + "\n"
}
