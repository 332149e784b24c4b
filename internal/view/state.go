package view

import "persona-board/internal/state"

// Snapshot reads the current contents of st into an Input.
func Snapshot(st *state.State) Input {
	return Input{
		Title:      st.Title.Get(),
		Profiles:   st.Profiles.Values(),
		Categories: st.Categories.Get(),
		Settings:   st.Settings(),
		ExpandedID: st.ExpandedID.Get(),
		ShowTip:    st.ShowTip.Get(),
		Strings:    st.Strings(),
	}
}

// FromState builds the board for the current contents of st.
func FromState(st *state.State) Board {
	return Build(Snapshot(st))
}
