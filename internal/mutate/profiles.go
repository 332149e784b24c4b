package mutate

import (
	"strings"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

type ProfileResult struct {
	Profile model.Profile
	Changed bool
}

// AddProfile creates a profile with localized defaults in categoryID and
// opens it in the detail panel.
func AddProfile(st *state.State, categoryID string) model.Profile {
	id := state.ProfileID(state.NextProfileNumber(st.Profiles))
	p := model.Profile{
		ID:         id,
		Name:       st.Strings().NewProfile,
		CategoryID: strings.TrimSpace(categoryID),
		Tasks:      []string{},
	}
	st.Profiles.Set(id, p)
	st.ExpandedID.Set(id)
	return p
}

func GetProfile(st *state.State, id string) (model.Profile, error) {
	id = strings.TrimSpace(id)
	p, ok := st.Profiles.Get(id)
	if !ok {
		return model.Profile{}, NotFoundError{Kind: "profile", ID: id}
	}
	return p.Normalized(), nil
}

// UpdateProfile overwrites the full record at p.ID. There is no field merge:
// whichever full write lands last wins.
func UpdateProfile(st *state.State, p model.Profile) (model.Profile, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return model.Profile{}, NotFoundError{Kind: "profile", ID: p.ID}
	}
	p = p.Normalized()
	st.Profiles.Set(p.ID, p)
	return p, nil
}

// DeleteProfile removes the profile and clears expandedId when it pointed at it.
func DeleteProfile(st *state.State, id string) (model.Profile, error) {
	p, err := GetProfile(st, id)
	if err != nil {
		return model.Profile{}, err
	}
	st.Profiles.Delete(p.ID)
	if st.ExpandedID.Get() == p.ID {
		st.ExpandedID.Set("")
	}
	return p, nil
}

// SetProfileCategory moves one profile to categoryID ("" for uncategorized).
func SetProfileCategory(st *state.State, profileID, categoryID string) (ProfileResult, error) {
	p, err := GetProfile(st, profileID)
	if err != nil {
		return ProfileResult{}, err
	}
	categoryID = strings.TrimSpace(categoryID)
	if categoryID != model.UncategorizedID {
		if _, ok := st.Category(categoryID); !ok {
			return ProfileResult{}, NotFoundError{Kind: "category", ID: categoryID}
		}
	}
	if p.CategoryID == categoryID {
		return ProfileResult{Profile: p}, nil
	}
	p.CategoryID = categoryID
	st.Profiles.Set(p.ID, p)
	return ProfileResult{Profile: p, Changed: true}, nil
}

// SetProfileField writes one field value through the field-value accessor.
func SetProfileField(st *state.State, profileID string, field model.FieldConfig, value string) (model.Profile, error) {
	p, err := GetProfile(st, profileID)
	if err != nil {
		return model.Profile{}, err
	}
	p = model.SetFieldValue(p, field, value)
	st.Profiles.Set(p.ID, p.Normalized())
	return p.Normalized(), nil
}

// Expand opens the detail panel for id.
func Expand(st *state.State, id string) error {
	p, err := GetProfile(st, id)
	if err != nil {
		return err
	}
	st.ExpandedID.Set(p.ID)
	return nil
}

func Collapse(st *state.State) {
	if st.ExpandedID.Get() != "" {
		st.ExpandedID.Set("")
	}
}
