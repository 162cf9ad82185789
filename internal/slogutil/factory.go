package slogutil

import (
	"io"
	"log/slog"

	"expertfinder/internal/config"
	"expertfinder/internal/paths"
)

// LoggerFactory builds loggers from configuration.
// Level precedence: CLI override > config > info.
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory. cfg may be nil.
func NewLoggerFactory(repoRoot string, cfg *config.Config) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
	}
}

// WithLevel overrides the configured level, typically from -v/-q flags.
func (f *LoggerFactory) WithLevel(level slog.Level) *LoggerFactory {
	f.cliLevel = &level
	return f
}

// Level returns the effective log level.
func (f *LoggerFactory) Level() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// CLILogger creates a logger writing to w (usually stderr).
func (f *LoggerFactory) CLILogger(w io.Writer) *slog.Logger {
	return NewLogger(w, f.config.Logging.Format, f.Level())
}

// WatchLogger creates the logger of the long-running watch command: it writes
// to w and, when a repository is known, to a rotating file
// (logging.file or <repoRoot>/.expertfinder/logs/watch.log).
// A file that cannot be opened degrades to w only.
func (f *LoggerFactory) WatchLogger(w io.Writer) *slog.Logger {
	console := f.CLILogger(w)

	logPath := f.config.Logging.File
	if logPath == "" {
		if f.repoRoot == "" {
			return console
		}
		if _, err := paths.EnsureLogsDir(f.repoRoot); err != nil {
			console.Warn("Log directory unavailable", "error", err)
			return console
		}
		logPath = paths.GetWatchLogPath(f.repoRoot)
	}

	fileLogger, closer, err := NewFileLogger(logPath, f.config.Logging.Format, f.Level(),
		f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	if err != nil {
		console.Warn("Log file unavailable", "path", logPath, "error", err)
		return console
	}
	f.closers = append(f.closers, closer)

	return slog.New(NewTeeHandler(console.Handler(), fileLogger.Handler()))
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
