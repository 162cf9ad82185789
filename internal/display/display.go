// Package display renders attribution results. A Sink is the single place the
// live session writes to: it either shows a line of text or hides it.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Style names accepted by New, matching config.Display.Style.
const (
	StyleAuto  = "auto"
	StylePlain = "plain"
	StyleJSON  = "json"
)

// Sink is a status display. Implementations are safe for concurrent use.
// After Close, Show and Hide are no-ops; Close itself is idempotent.
type Sink interface {
	Show(text string)
	Hide()
	Close() error
}

// New returns the sink for a configured style.
func New(style string, w io.Writer) (Sink, error) {
	switch style {
	case StyleAuto, "":
		return NewTerminalSink(w, IsTerminal(w)), nil
	case StylePlain:
		return NewTerminalSink(w, false), nil
	case StyleJSON:
		return NewJSONSink(w), nil
	default:
		return nil, fmt.Errorf("unknown display style %q", style)
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
