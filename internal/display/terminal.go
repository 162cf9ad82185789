package display

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const clearLine = "\r\033[K"

// TerminalSink renders a single status line. On a terminal the line is
// redrawn in place and styled; otherwise each shown text is written on its
// own line and hiding writes nothing.
type TerminalSink struct {
	mu      sync.Mutex
	w       io.Writer
	tty     bool
	style   lipgloss.Style
	visible string
	closed  bool
}

// NewTerminalSink creates a sink writing to w. tty selects in-place redraw.
func NewTerminalSink(w io.Writer, tty bool) *TerminalSink {
	renderer := lipgloss.NewRenderer(w)
	return &TerminalSink{
		w:     w,
		tty:   tty,
		style: renderer.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFFF"}),
	}
}

func (s *TerminalSink) Show(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || text == s.visible {
		return
	}
	s.visible = text
	if s.tty {
		_, _ = io.WriteString(s.w, clearLine+s.style.Render(text))
		return
	}
	_, _ = io.WriteString(s.w, text+"\n")
}

func (s *TerminalSink) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.hideLocked()
}

func (s *TerminalSink) hideLocked() {
	if s.visible == "" {
		return
	}
	s.visible = ""
	if s.tty {
		_, _ = io.WriteString(s.w, clearLine)
	}
}

// Close clears the line. Later calls do nothing.
func (s *TerminalSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.hideLocked()
	s.closed = true
	return nil
}
