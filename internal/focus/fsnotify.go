package focus

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"expertfinder/internal/paths"
	"expertfinder/internal/slogutil"
)

// WriteSourceConfig configures a WriteSource.
type WriteSourceConfig struct {
	Debounce       time.Duration
	IgnorePatterns []string
}

// WriteSource treats the most recently written file under the repository as
// the focused document. Bursts of writes (editors often save through temp
// files) are debounced to a single focus change. Removing or renaming the
// focused file reports no active document.
type WriteSource struct {
	root   string
	config WriteSourceConfig
	logger *slog.Logger

	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	mu         sync.Mutex
	subscribed bool
	stopped    bool
	handler    Handler
	current    string
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWriteSource creates a source watching every non-ignored directory under root.
func NewWriteSource(root string, config WriteSourceConfig, logger *slog.Logger) *WriteSource {
	if config.Debounce <= 0 {
		config.Debounce = 300 * time.Millisecond
	}
	// Event paths are resolved, so the root must be too.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &WriteSource{
		root:      root,
		config:    config,
		logger:    slogutil.OrDiscard(logger),
		debouncer: NewDebouncer(config.Debounce),
		done:      make(chan struct{}),
	}
}

// Subscribe starts watching. Only one subscriber is supported.
func (s *WriteSource) Subscribe(handler Handler) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribed {
		return nil, ErrAlreadySubscribed
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher
	if err := s.addTree(s.root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	s.subscribed = true
	s.handler = handler

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("Watching for focus changes", "root", s.root, "debounce", s.config.Debounce)
	return &writeSubscription{source: s}, nil
}

// addTree registers root and its non-ignored subdirectories with the watcher.
func (s *WriteSource) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(s.root, path); relErr == nil && rel != "." && IsIgnored(s.config.IgnorePatterns, rel) {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			s.logger.Debug("Cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (s *WriteSource) loop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("File watcher error", "error", err)
		}
	}
}

func (s *WriteSource) handle(event fsnotify.Event) {
	rel, ok := paths.Resolve(s.root, event.Name)
	if !ok || IsIgnored(s.config.IgnorePatterns, rel) {
		return
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if event.Op&fsnotify.Create != 0 {
				_ = s.addTree(event.Name)
			}
			return
		}
		target := &Target{WorkingDir: s.root, FilePath: rel}
		s.debouncer.Trigger(func() { s.deliver(target) })

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		s.mu.Lock()
		focused := s.current == rel
		s.mu.Unlock()
		if focused {
			s.debouncer.Trigger(func() { s.deliver(nil) })
		}
	}
}

// deliver calls the handler unless unsubscribed. Every settled write is
// delivered, even to the file already in focus, so a file whose lookup failed
// is queried again on its next save. Clearing focus is delivered only once.
func (s *WriteSource) deliver(target *Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if target == nil {
		if s.current == "" {
			return
		}
		s.current = ""
	} else {
		s.current = target.FilePath
	}
	s.handler(target)
}

type writeSubscription struct {
	source *WriteSource
	once   sync.Once
}

func (w *writeSubscription) Unsubscribe() {
	w.once.Do(func() {
		s := w.source
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.debouncer.Cancel()
		close(s.done)
		_ = s.watcher.Close()
		s.wg.Wait()
	})
}
