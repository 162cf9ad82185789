// Package version reports how the running expertfinder binary was built.
//
// Release builds stamp the variables below with ldflags:
//
//	go build -ldflags "-X expertfinder/internal/version.Version=0.3.0 \
//	  -X expertfinder/internal/version.Commit=$(git rev-parse HEAD)" ./cmd/expertfinder
//
// Anything left unstamped is filled from the VCS metadata the Go toolchain
// embeds in module builds.
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// defaultVersion is the version of an unstamped source build.
const defaultVersion = "0.3.0"

var (
	Version   = defaultVersion
	Commit    = ""
	BuildDate = ""
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"goVersion"`
}

// Current returns the build metadata of this binary.
func Current() Build {
	base := Build{
		Version:   Version,
		Commit:    Commit,
		Date:      BuildDate,
		GoVersion: runtime.Version(),
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return base
	}
	return fromBuildInfo(info, base)
}

// fromBuildInfo fills fields that ldflags left empty from embedded vcs.* settings.
func fromBuildInfo(info *debug.BuildInfo, base Build) Build {
	if info.GoVersion != "" {
		base.GoVersion = info.GoVersion
	}

	stamped := base.Commit != ""
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if !stamped {
				base.Commit = s.Value
			}
		case "vcs.time":
			if base.Date == "" {
				base.Date = s.Value
			}
		case "vcs.modified":
			// A stamped commit describes a release tree, whatever the local checkout says.
			if !stamped {
				base.Modified = s.Value == "true"
			}
		}
	}

	// `go install module@vX.Y.Z` records the tag as the main module version.
	if v := info.Main.Version; v != "" && v != "(devel)" && base.Version == defaultVersion {
		base.Version = strings.TrimPrefix(v, "v")
	}
	return base
}

// Short is the one-line form used by --version and log lines:
// "0.3.0 (abc1234, modified)".
func (b Build) Short() string {
	var details []string
	if b.Commit != "" {
		commit := b.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		details = append(details, commit)
	}
	if b.Modified {
		details = append(details, "modified")
	}
	if len(details) == 0 {
		return b.Version
	}
	return b.Version + " (" + strings.Join(details, ", ") + ")"
}
