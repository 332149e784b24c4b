package mutate

import (
	"strings"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

// SetTitle stores a new widget title. A blank title restores the localized default.
func SetTitle(st *state.State, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = st.Strings().DefaultTitle
	}
	st.Title.Set(title)
	return title
}

func SetShowTip(st *state.State, show bool) bool {
	if st.ShowTip.Get() == show {
		return false
	}
	st.ShowTip.Set(show)
	return true
}

func SetLanguage(st *state.State, lang model.Language) bool {
	if !lang.Valid() || st.Language.Get() == lang {
		return false
	}
	st.Language.Set(lang)
	return true
}
