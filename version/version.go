// Package version exposes build version information, set at build time
// via -ldflags or read from the embedded VCS metadata.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Set at build time with -ldflags "-X .../version.Version=v1.2.3".
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info holds resolved build metadata.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	Dirty     bool      `json:"dirty"`
}

// Get resolves version information, preferring the ldflags values and
// falling back to VCS metadata embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if build, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = build.GoVersion
		for _, setting := range build.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
					if len(info.GitCommit) > 7 {
						info.GitCommit = info.GitCommit[:7]
					}
				}
			case "vcs.modified":
				info.Dirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildDate.IsZero() {
					if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
						info.BuildDate = t
					}
				}
			}
		}
	}

	return info
}

// Short returns a compact version string like "v1.2.3-abc1234".
func Short() string {
	info := Get()
	switch {
	case info.GitCommit == "":
		return info.Version
	case info.Dirty:
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	default:
		return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	}
}
