package focus

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"

	"expertfinder/internal/paths"
	"expertfinder/internal/slogutil"
)

// ErrAlreadySubscribed is returned when a single-consumer source is subscribed twice.
var ErrAlreadySubscribed = errors.New("focus source already has a subscriber")

// LineSource reads newline-delimited paths, one focus change per line. It is
// meant for editor integrations that pipe the active document path into the
// process. A blank line, or a path outside the working directory, means no
// document is active.
type LineSource struct {
	workingDir string
	reader     io.Reader
	logger     *slog.Logger

	mu         sync.Mutex
	subscribed bool
	stopped    bool
	handler    Handler
	done       chan struct{}
	err        error
}

// NewLineSource creates a source reading paths from r, resolved against workingDir.
func NewLineSource(workingDir string, r io.Reader, logger *slog.Logger) *LineSource {
	return &LineSource{
		workingDir: workingDir,
		reader:     r,
		logger:     slogutil.OrDiscard(logger),
		done:       make(chan struct{}),
	}
}

// Subscribe starts reading. Only one subscriber is supported.
func (s *LineSource) Subscribe(handler Handler) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribed {
		return nil, ErrAlreadySubscribed
	}
	s.subscribed = true
	s.handler = handler

	go s.read()
	return &lineSubscription{source: s}, nil
}

// Done is closed when the reader is exhausted.
func (s *LineSource) Done() <-chan struct{} {
	return s.done
}

// Err returns the read error that ended the source, if any (nil on EOF).
func (s *LineSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *LineSource) read() {
	defer close(s.done)

	scanner := bufio.NewScanner(s.reader)
	for scanner.Scan() {
		if !s.deliver(s.resolve(scanner.Text())) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.logger.Warn("Focus input failed", "error", err)
	}
}

func (s *LineSource) resolve(line string) *Target {
	rel, ok := paths.Resolve(s.workingDir, line)
	if !ok {
		if line != "" {
			s.logger.Debug("Focus path outside working directory", "path", line)
		}
		return nil
	}
	return &Target{WorkingDir: s.workingDir, FilePath: rel}
}

// deliver calls the handler unless unsubscribed. The lock is held across the
// call so Unsubscribe cannot return while a delivery is in progress.
func (s *LineSource) deliver(target *Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	s.handler(target)
	return true
}

type lineSubscription struct {
	source *LineSource
	once   sync.Once
}

func (l *lineSubscription) Unsubscribe() {
	l.once.Do(func() {
		l.source.mu.Lock()
		l.source.stopped = true
		l.source.mu.Unlock()

		if c, ok := l.source.reader.(io.Closer); ok {
			_ = c.Close()
		}
	})
}
