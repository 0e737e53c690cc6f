// Package version carries build information stamped in with -ldflags:
//
//	-X github.com/shopcheck-io/shopcheck/internal/version.Version=v1.2.0
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release tag, or "dev" for local builds
	Version = "dev"

	// Commit is the short git SHA
	Commit = ""

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info is the structured form printed by `shopcheck version --json`
type Info struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Playwright string `json:"playwright"`
}

// GetInfo returns the current build info. A missing commit is read from the
// VCS stamp the go tool embeds.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && info.Commit == "" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		}
		for _, dep := range bi.Deps {
			if dep.Path == "github.com/playwright-community/playwright-go" {
				info.Playwright = dep.Version
			}
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	return info
}

// String returns "v1.2.0 (abc1234)"
func String() string {
	i := GetInfo()
	return fmt.Sprintf("%s (%s)", i.Version, i.Commit)
}

// Full returns every detail on one line
func Full() string {
	i := GetInfo()
	s := fmt.Sprintf("%s (%s) built %s with %s", i.Version, i.Commit, i.BuildDate, i.GoVersion)
	if i.Playwright != "" {
		s += ", playwright-go " + i.Playwright
	}
	return s
}
