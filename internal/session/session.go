// Package session implements the live attribution session: it follows focus
// changes, asks an oracle who owns the focused file, and keeps a display
// sink showing the ranked answer for whatever is focused right now.
//
// Oracle calls run concurrently and may complete out of order. Every request
// carries a token; only the completion whose token is still current may
// publish, so a slow answer for a file the user has left is never shown.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"expertfinder/internal/attribution"
	"expertfinder/internal/display"
	"expertfinder/internal/errors"
	"expertfinder/internal/focus"
	"expertfinder/internal/slogutil"
	"expertfinder/internal/telemetry"
)

// DefaultPrefix is the text placed before the ranked authors.
const DefaultPrefix = "experts: "

// Oracle scores the authors of a file. Implementations must honour ctx.
type Oracle interface {
	Score(ctx context.Context, workingDir, filePath string) (attribution.ScoreMap, error)
}

// State is the session's position in its lifecycle.
type State int

const (
	Idle State = iota
	Requesting
	Published
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Published:
		return "published"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Token identifies one scoring request. Seq orders requests within a
// session; ID makes a token unique across sessions in logs.
type Token struct {
	Seq uint64
	ID  uuid.UUID
}

// IsZero reports whether t is the "no request" token.
func (t Token) IsZero() bool {
	return t.Seq == 0
}

// Options configures a Session.
type Options struct {
	// TopK bounds the ranking; 1 shows the single top expert. Zero means 1.
	TopK    int
	Prefix  string
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Session is a live attribution session. Create it with New and release it
// with Dispose.
type Session struct {
	oracle  Oracle
	sink    display.Sink
	topK    int
	prefix  string
	logger  *slog.Logger
	metrics *telemetry.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	current  Token
	seq      uint64
	disposed bool
	sub      focus.Subscription

	inflight sync.WaitGroup
}

// New subscribes a session to source. The session owns sink from here on:
// it is closed by Dispose, or immediately if New fails.
func New(source focus.Source, oracle Oracle, sink display.Sink, opts Options) (*Session, error) {
	if opts.TopK == 0 {
		opts.TopK = 1
	}
	if opts.TopK < 0 {
		_ = sink.Close()
		return nil, fmt.Errorf("topK must be at least 1, got %d", opts.TopK)
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		oracle:  oracle,
		sink:    sink,
		topK:    opts.TopK,
		prefix:  opts.Prefix,
		logger:  slogutil.OrDiscard(opts.Logger),
		metrics: opts.Metrics,
		ctx:     ctx,
		cancel:  cancel,
	}

	sub, err := source.Subscribe(s.OnFocusChanged)
	if err != nil {
		cancel()
		_ = sink.Close()
		return nil, fmt.Errorf("failed to subscribe to focus changes: %w", err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return s, nil
}

// OnFocusChanged handles a focus change. A nil target hides the display.
// It never blocks on the oracle.
func (s *Session) OnFocusChanged(target *focus.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.metrics.FocusChanged(target != nil)

	if target == nil {
		s.current = Token{}
		s.state = Idle
		s.hideLocked()
		return
	}

	s.seq++
	token := Token{Seq: s.seq, ID: uuid.New()}
	s.current = token
	s.state = Requesting

	s.logger.Debug("Requesting attribution",
		"file", target.FilePath,
		"seq", token.Seq,
		"request", token.ID)

	s.inflight.Add(1)
	go s.request(token, *target)
}

func (s *Session) request(token Token, target focus.Target) {
	defer s.inflight.Done()

	s.metrics.OracleRequested()
	start := time.Now()
	scores, err := s.oracle.Score(s.ctx, target.WorkingDir, target.FilePath)

	code := ""
	if err != nil {
		code = string(errors.CodeOf(err))
	}
	s.metrics.OracleCompleted(time.Since(start), code)

	s.onScoringComplete(token, target, scores, err)
}

// onScoringComplete publishes a result if token is still current.
func (s *Session) onScoringComplete(token Token, target focus.Target, scores attribution.ScoreMap, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	if token != s.current {
		s.logger.Debug("Discarding stale attribution",
			"file", target.FilePath,
			"seq", token.Seq,
			"current", s.current.Seq)
		s.metrics.StaleDiscarded()
		return
	}

	if err != nil {
		if errors.IsOracleError(err) {
			s.logger.Debug("No attribution", "file", target.FilePath, "code", errors.CodeOf(err), "error", err)
		} else {
			s.logger.Warn("Attribution failed", "file", target.FilePath, "error", err)
		}
		s.state = Idle
		s.hideLocked()
		return
	}

	text := attribution.Format(s.prefix, attribution.Rank(scores, s.topK))
	if text == "" {
		s.state = Idle
		s.hideLocked()
		return
	}

	s.sink.Show(text)
	s.state = Published
	s.metrics.Published()
}

func (s *Session) hideLocked() {
	s.sink.Hide()
	s.metrics.Hidden()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the token of the request whose result may still publish,
// or the zero token when there is none.
func (s *Session) Current() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dispose unsubscribes from the focus source, cancels in-flight requests,
// hides and closes the sink. Safe to call more than once.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.state = Idle
	s.current = Token{}
	sub := s.sub
	s.mu.Unlock()

	// Sources hold their own lock while calling OnFocusChanged, so
	// Unsubscribe must run without the session lock.
	s.cancel()
	if sub != nil {
		sub.Unsubscribe()
	}

	s.sink.Hide()
	s.metrics.Hidden()
	if err := s.sink.Close(); err != nil {
		s.logger.Warn("Failed to close display", "error", err)
	}
}

// Wait blocks until every oracle call started by the session has returned.
func (s *Session) Wait() {
	s.inflight.Wait()
}
