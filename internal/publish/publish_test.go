package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
)

func seed(t *testing.T) (*state.State, model.Profile) {
	t.Helper()
	st := state.NewMemory(model.LanguageEN)
	st.Title.Set("Launch team")
	cat, err := mutate.AddCategory(st, mutate.CategoryInput{Name: "Buyers", Icon: "🛒", Color: "teal"})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	p := mutate.AddProfile(st, cat.ID)
	p.Name = "Sam"
	p.Quote = "Ship it"
	p.Description = "Likes **bold** plans."
	p.Tasks = []string{"Book venue"}
	if _, err := mutate.UpdateProfile(st, p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	return st, p
}

func TestRenderProfileMarkdown(t *testing.T) {
	t.Parallel()
	st, p := seed(t)

	md, err := RenderProfileMarkdown(st, p.ID)
	if err != nil {
		t.Fatalf("RenderProfileMarkdown: %v", err)
	}
	for _, want := range []string{"# #1 Sam", "🛒 Buyers", "> Ship it", "Likes **bold** plans.", "- [ ] Book venue"} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}
}

func TestRenderProfileMarkdown_NotFound(t *testing.T) {
	t.Parallel()
	st := state.NewMemory(model.LanguageEN)
	if _, err := RenderProfileMarkdown(st, "profile-9"); !mutate.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestWrite_HTMLAndOverwrite(t *testing.T) {
	t.Parallel()
	st, p := seed(t)
	dir := t.TempDir()

	res, err := Write(st, dir, Options{HTML: true})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("written = %v", res.Written)
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(index), "(profiles/"+p.ID+".html)") {
		t.Fatalf("index does not link the html page:\n%s", index)
	}
	page, err := os.ReadFile(filepath.Join(dir, "profiles", p.ID+".html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "<strong>bold</strong>") {
		t.Fatalf("markdown not rendered:\n%s", page)
	}

	if _, err := Write(st, dir, Options{}); err == nil {
		t.Fatalf("expected existing files to be refused without Overwrite")
	}
	if _, err := Write(st, dir, Options{Overwrite: true}); err != nil {
		t.Fatalf("Write overwrite: %v", err)
	}
}
