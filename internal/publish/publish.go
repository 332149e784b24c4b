// Package publish writes derived Markdown (and optionally HTML) pages for a
// board. The pages are a snapshot for sharing; the store stays canonical.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"persona-board/internal/state"
)

type Options struct {
	Overwrite bool
	// HTML also writes an .html page next to every .md page.
	HTML bool
}

type Result struct {
	Written []string `json:"written"`
}

// Write publishes index.md and profiles/<id>.md under toDir.
func Write(st *state.State, toDir string, opt Options) (Result, error) {
	if st == nil {
		return Result{}, errors.New("missing state")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return Result{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	profilesDir := filepath.Join(toDir, "profiles")
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		return Result{}, err
	}

	ext := ".md"
	if opt.HTML {
		ext = ".html"
	}
	lang := string(st.Language.Get())
	var res Result
	write := func(path, title, md string) error {
		if err := writeFile(path, []byte(md), opt.Overwrite); err != nil {
			return err
		}
		res.Written = append(res.Written, path)
		if !opt.HTML {
			return nil
		}
		page, err := RenderHTML(title, lang, md)
		if err != nil {
			return err
		}
		htmlPath := strings.TrimSuffix(path, ".md") + ".html"
		if err := writeFile(htmlPath, page, opt.Overwrite); err != nil {
			return err
		}
		res.Written = append(res.Written, htmlPath)
		return nil
	}

	index := RenderBoardIndex(st, func(id string) string { return "profiles/" + id + ext })
	if err := write(filepath.Join(toDir, "index.md"), st.Title.Get(), index); err != nil {
		return Result{}, err
	}
	for _, id := range st.Profiles.Keys() {
		md, err := RenderProfileMarkdown(st, id)
		if err != nil {
			return Result{}, err
		}
		if err := write(filepath.Join(profilesDir, id+".md"), id, md); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
