package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"expertfinder/internal/config"
	"expertfinder/internal/display"
	"expertfinder/internal/errors"
	"expertfinder/internal/focus"
	"expertfinder/internal/ownership"
	"expertfinder/internal/session"
	"expertfinder/internal/telemetry"
	"expertfinder/internal/version"
)

var (
	watchSource      string
	watchStyle       string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the experts of the focused file, live",
	Long: `Follow focus changes and keep a status line showing the experts of the
file in focus.

Focus comes from one of two sources:
  stdin     one path per line (relative to the repository root or absolute);
            an empty line means no file is focused
  fsnotify  the most recently written file in the repository

Examples:
  my-editor-plugin | expertfinder watch
  expertfinder watch --source fsnotify
  expertfinder watch --style json --metrics-addr localhost:9464`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSource, "source", "", "Focus source: stdin or fsnotify (default: from config)")
	watchCmd.Flags().StringVar(&watchStyle, "style", "", "Display style: auto, plain or json (default: from config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, factory, err := loadSettings()
	if err != nil {
		return err
	}
	defer factory.Close()
	logger := factory.WatchLogger(os.Stderr)

	if watchSource != "" {
		cfg.Focus.Source = watchSource
	}
	if watchStyle != "" {
		cfg.Display.Style = watchStyle
	}
	if watchMetricsAddr != "" {
		cfg.Metrics.Addr = watchMetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid watch options", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oracle, err := ownership.NewGitOracleFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	sink, err := display.New(cfg.Display.Style, cmd.OutOrStdout())
	if err != nil {
		return errors.New(errors.ConfigInvalid, "invalid display style", err)
	}

	source, inputDone := newFocusSource(cfg, logger)

	s, server, err := startWatchSession(cfg, source, oracle, sink, logger)
	if err != nil {
		return err
	}

	logger.Info("Watching",
		"repo", cfg.RepoRoot,
		"source", cfg.Focus.Source,
		"strategy", oracle.Strategy(),
		"topK", cfg.TopK(),
		"version", version.Current().Short())

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case <-inputDone:
		logger.Info("Focus input closed")
	}

	s.Dispose()
	s.Wait()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}
	return nil
}

// startWatchSession subscribes a session to the source. The metrics server
// only starts once the session exists, so a failed start leaves nothing
// listening.
func startWatchSession(cfg *config.Config, source focus.Source, oracle session.Oracle, sink display.Sink, logger *slog.Logger) (*session.Session, *http.Server, error) {
	metrics := telemetry.NewMetrics()
	s, err := session.New(source, oracle, sink, session.Options{
		TopK:    cfg.TopK(),
		Prefix:  cfg.Display.Prefix,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, nil, err
	}

	var server *http.Server
	if cfg.Metrics.Addr != "" {
		server = startMetricsServer(cfg.Metrics.Addr, metrics, logger)
	}
	return s, server, nil
}

// newFocusSource builds the configured source. The returned channel is closed
// when the source can produce no more focus changes; it is nil for sources
// that run until stopped.
func newFocusSource(cfg *config.Config, logger *slog.Logger) (focus.Source, <-chan struct{}) {
	if cfg.Focus.Source == config.FocusSourceFsnotify {
		return focus.NewWriteSource(cfg.RepoRoot, focus.WriteSourceConfig{
			Debounce:       time.Duration(cfg.Focus.DebounceMs) * time.Millisecond,
			IgnorePatterns: cfg.Focus.IgnorePatterns,
		}, logger), nil
	}

	lines := focus.NewLineSource(cfg.RepoRoot, os.Stdin, logger)
	return lines, lines.Done()
}

func startMetricsServer(addr string, metrics *telemetry.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", "url", metricsURL(addr))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}

func metricsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return fmt.Sprintf("http://%s/metrics", addr)
}
