// Package focus provides focus-change sources: producers of "the user is now
// looking at this file" signals for the live attribution session.
package focus

import (
	"path/filepath"
	"strings"
)

// Target identifies the document currently being attributed.
type Target struct {
	WorkingDir string
	FilePath   string // relative to WorkingDir, forward slashes
}

// Handler receives focus changes. A nil target means no document is active.
type Handler func(target *Target)

// Subscription is the handle returned by Subscribe. Unsubscribe stops
// delivery; once it returns the handler is not called again. Calling it more
// than once is a no-op.
type Subscription interface {
	Unsubscribe()
}

// Source emits focus changes in arrival order.
type Source interface {
	Subscribe(handler Handler) (Subscription, error)
}

// IsIgnored reports whether a repo-relative path matches any pattern.
// Patterns match either the base name ("*.log") or, with a "dir/**" form,
// everything beneath dir.
func IsIgnored(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/**") {
			prefix := strings.TrimSuffix(pattern, "/**")
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(rel)); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
