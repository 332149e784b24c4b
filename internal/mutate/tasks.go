package mutate

import (
	"fmt"
	"strings"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

type TaskIndexError struct {
	ProfileID string
	Index     int
	Len       int
}

func (e TaskIndexError) Error() string {
	return fmt.Sprintf("profile %s has no task %d (has %d)", e.ProfileID, e.Index+1, e.Len)
}

// AddTask appends text (or the localized placeholder when blank) to the
// profile's task list.
func AddTask(st *state.State, profileID, text string) (model.Profile, error) {
	p, err := GetProfile(st, profileID)
	if err != nil {
		return model.Profile{}, err
	}
	if strings.TrimSpace(text) == "" {
		text = st.Strings().NewTask
	}
	p.Tasks = append(p.Tasks, text)
	st.Profiles.Set(p.ID, p)
	return p, nil
}

// EditTask replaces the task at index. Text that is blank after trimming
// removes the task instead.
func EditTask(st *state.State, profileID string, index int, text string) (model.Profile, error) {
	p, err := GetProfile(st, profileID)
	if err != nil {
		return model.Profile{}, err
	}
	if index < 0 || index >= len(p.Tasks) {
		return model.Profile{}, TaskIndexError{ProfileID: p.ID, Index: index, Len: len(p.Tasks)}
	}
	if strings.TrimSpace(text) == "" {
		p.Tasks = append(p.Tasks[:index], p.Tasks[index+1:]...)
	} else {
		p.Tasks[index] = text
	}
	st.Profiles.Set(p.ID, p)
	return p, nil
}

func RemoveTask(st *state.State, profileID string, index int) (model.Profile, error) {
	return EditTask(st, profileID, index, "")
}
