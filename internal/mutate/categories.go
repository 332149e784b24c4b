package mutate

import (
	"strings"

	"persona-board/internal/model"
	"persona-board/internal/state"
	"persona-board/internal/view"
)

type CategoryInput struct {
	Name  string
	Icon  string
	Color string
}

func (in CategoryInput) normalize() (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrEmptyName
	}
	in.Icon = strings.TrimSpace(in.Icon)
	if in.Icon == "" {
		in.Icon = model.DefaultCategoryIcon
	}
	return in, nil
}

// AddCategory appends a category. Its order is the current list length.
func AddCategory(st *state.State, in CategoryInput) (model.Category, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Category{}, err
	}
	cats := st.Categories.Get()
	c := model.Category{
		ID:       state.NewCategoryID(),
		Name:     in.Name,
		Icon:     in.Icon,
		ColorKey: model.ParseColorKey(in.Color),
		Order:    len(cats),
	}
	st.Categories.Set(append(cats, c))
	return c, nil
}

// UpdateCategory replaces name, icon and color of a category; order is kept.
func UpdateCategory(st *state.State, id string, in CategoryInput) (model.Category, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Category{}, err
	}
	id = strings.TrimSpace(id)
	cats := st.Categories.Get()
	for i := range cats {
		if cats[i].ID != id {
			continue
		}
		cats[i].Name = in.Name
		cats[i].Icon = in.Icon
		cats[i].ColorKey = model.ParseColorKey(in.Color)
		st.Categories.Set(cats)
		return cats[i], nil
	}
	return model.Category{}, NotFoundError{Kind: "category", ID: id}
}

type DeleteCategoryResult struct {
	Category model.Category
	// Moved lists the profiles that were moved to uncategorized, by id.
	Moved []string
}

// DeleteCategory moves every member profile to uncategorized and only then
// removes the category from the list, so no read observes a profile pointing
// at a missing category.
func DeleteCategory(st *state.State, id string) (DeleteCategoryResult, error) {
	id = strings.TrimSpace(id)
	cat, ok := st.Category(id)
	if !ok {
		return DeleteCategoryResult{}, NotFoundError{Kind: "category", ID: id}
	}

	var moved []string
	for _, e := range st.Profiles.Entries() {
		if e.Value.CategoryID != id {
			continue
		}
		p := e.Value
		p.CategoryID = model.UncategorizedID
		st.Profiles.Set(e.Key, p)
		moved = append(moved, e.Key)
	}

	cats := st.Categories.Get()
	kept := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	st.Categories.Set(kept)
	return DeleteCategoryResult{Category: cat, Moved: moved}, nil
}

type Direction int

const (
	Up Direction = iota
	Down
)

func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return Up, false
}

// MoveCategory swaps the order value of a category with its neighbor in
// display order. Moving the first category up or the last one down is a no-op.
func MoveCategory(st *state.State, id string, dir Direction) (bool, error) {
	id = strings.TrimSpace(id)
	cats := st.Categories.Get()
	sorted := view.SortedCategories(cats)
	idx := -1
	for i, c := range sorted {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, NotFoundError{Kind: "category", ID: id}
	}
	other := neighbor(idx, len(sorted), dir)
	if other < 0 {
		return false, nil
	}

	a, b := sorted[idx], sorted[other]
	for i := range cats {
		switch cats[i].ID {
		case a.ID:
			cats[i].Order = b.Order
		case b.ID:
			cats[i].Order = a.Order
		}
	}
	st.Categories.Set(cats)
	return true, nil
}

// neighbor returns the index adjacent to idx in dir, or -1 at a boundary.
func neighbor(idx, n int, dir Direction) int {
	switch dir {
	case Up:
		if idx > 0 {
			return idx - 1
		}
	case Down:
		if idx < n-1 {
			return idx + 1
		}
	}
	return -1
}
