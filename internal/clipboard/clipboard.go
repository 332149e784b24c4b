// Package clipboard copies export payloads, degrading from the system
// clipboard to an OSC 52 terminal escape and finally to manual copy.
package clipboard

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

type Method string

const (
	MethodSystem Method = "system"
	MethodOSC52  Method = "osc52"
	// MethodManual means nothing was copied; the caller shows the text for
	// manual selection.
	MethodManual Method = "manual"
)

var errUnsupported = errors.New("no system clipboard available")

// Copier holds the stages of the fallback chain. A nil stage is skipped.
type Copier struct {
	System     func(string) error
	Terminal   io.Writer
	IsTerminal func() bool
	// Term is the value of $TERM, used to wrap OSC 52 for tmux and screen.
	Term string
}

// Default returns the chain for the current process: atotto/clipboard, then
// OSC 52 on stderr when stderr is a terminal.
func Default() Copier {
	return Copier{
		System: func(s string) error {
			if clipboard.Unsupported {
				return errUnsupported
			}
			return clipboard.WriteAll(s)
		},
		Terminal:   os.Stderr,
		IsTerminal: func() bool { return term.IsTerminal(int(os.Stderr.Fd())) },
		Term:       os.Getenv("TERM"),
	}
}

// Copy runs the chain and reports the stage that succeeded. It never fails:
// when every stage is unavailable the result is MethodManual.
func (c Copier) Copy(text string) Method {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if c.System != nil {
		if err := c.System(text); err == nil {
			return MethodSystem
		}
	}
	if c.Terminal != nil && c.IsTerminal != nil && c.IsTerminal() {
		seq := osc52.New(text)
		switch {
		case strings.HasPrefix(c.Term, "screen"):
			seq = seq.Screen()
		case os.Getenv("TMUX") != "":
			seq = seq.Tmux()
		}
		if _, err := seq.WriteTo(c.Terminal); err == nil {
			return MethodOSC52
		}
	}
	return MethodManual
}
