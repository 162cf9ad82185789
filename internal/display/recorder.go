package display

import "sync"

// Recorder keeps every instruction in memory. Used by tests and dry runs.
type Recorder struct {
	mu           sync.Mutex
	instructions []Instruction
	closeCount   int
	notify       chan Instruction
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan Instruction, 256)}
}

func (r *Recorder) Show(text string) {
	r.record(Instruction{Action: ActionShow, Text: text})
}

func (r *Recorder) Hide() {
	r.record(Instruction{Action: ActionHide})
}

func (r *Recorder) record(in Instruction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closeCount > 0 {
		return
	}
	r.instructions = append(r.instructions, in)
	select {
	case r.notify <- in:
	default:
	}
}

// Close marks the recorder closed. Instructions after Close are dropped.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeCount++
	return nil
}

// Instructions returns a copy of the recorded instructions.
func (r *Recorder) Instructions() []Instruction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Instruction(nil), r.instructions...)
}

// Closed reports whether Close has been called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeCount > 0
}

// Notify delivers each instruction as it is recorded. The channel is
// buffered; instructions beyond the buffer are still recorded but not sent.
func (r *Recorder) Notify() <-chan Instruction {
	return r.notify
}
