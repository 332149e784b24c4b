package clipboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCopy_PrefersSystem(t *testing.T) {
	var got string
	c := Copier{System: func(s string) error { got = s; return nil }}
	if m := c.Copy("a\r\nb"); m != MethodSystem {
		t.Fatalf("expected system, got %s", m)
	}
	if got != "a\nb" {
		t.Fatalf("expected normalized newlines, got %q", got)
	}
}

func TestCopy_FallsBackToOSC52OnTerminal(t *testing.T) {
	var buf bytes.Buffer
	c := Copier{
		System:     func(string) error { return errors.New("no xclip") },
		Terminal:   &buf,
		IsTerminal: func() bool { return true },
		Term:       "xterm-256color",
	}
	if m := c.Copy("payload"); m != MethodOSC52 {
		t.Fatalf("expected osc52, got %s", m)
	}
	if !strings.Contains(buf.String(), "]52;c;") {
		t.Fatalf("expected an OSC 52 sequence, got %q", buf.String())
	}
}

func TestCopy_ManualWhenNothingWorks(t *testing.T) {
	var buf bytes.Buffer
	c := Copier{
		System:     func(string) error { return errors.New("no xclip") },
		Terminal:   &buf,
		IsTerminal: func() bool { return false },
	}
	if m := c.Copy("payload"); m != MethodManual {
		t.Fatalf("expected manual, got %s", m)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written to a non-terminal")
	}
	if m := (Copier{}).Copy("x"); m != MethodManual {
		t.Fatalf("empty chain should be manual, got %s", m)
	}
}
