package display

import (
	"encoding/json"
	"io"
	"sync"
)

// Instruction actions.
const (
	ActionShow = "show"
	ActionHide = "hide"
)

// Instruction is one display command.
type Instruction struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
}

// JSONSink writes one JSON object per instruction, for editor integrations
// reading the process output.
type JSONSink struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closed bool
}

// NewJSONSink creates a sink encoding instructions to w.
func NewJSONSink(w io.Writer) *JSONSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONSink{enc: enc}
}

func (s *JSONSink) Show(text string) {
	s.emit(Instruction{Action: ActionShow, Text: text})
}

func (s *JSONSink) Hide() {
	s.emit(Instruction{Action: ActionHide})
}

func (s *JSONSink) emit(in Instruction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	_ = s.enc.Encode(in)
}

// Close emits a final hide. Later calls do nothing.
func (s *JSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.enc.Encode(Instruction{Action: ActionHide})
}
