// Package version reports which build of treewarden is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X .../version.Commit=... -X .../version.BuildTime=...".
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info describes the running build.
type Info struct {
	Commit    string
	BuildTime string
	Modified  bool // built from a dirty tree
}

// Current returns the build info. Values missing from ldflags are taken from
// the VCS stamp the Go toolchain embeds.
func Current() Info {
	info := Info{Commit: Commit, BuildTime: BuildTime}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fillFromSettings(info, bi.Settings)
}

func fillFromSettings(info Info, settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit returns the first seven characters of the commit hash.
func (i Info) ShortCommit() string {
	c := i.Commit
	if len(c) > 7 {
		c = c[:7]
	}
	if i.Modified {
		c += "-dirty"
	}
	return c
}

// String returns the version line shown by --version (commit based, no semver).
func String() string {
	info := Current()
	return fmt.Sprintf("treewarden dev (commit: %s, built: %s)", info.ShortCommit(), info.BuildTime)
}

// UserAgent identifies treewarden to Overpass and the OSM API.
func UserAgent() string {
	return "TreeWarden/" + Current().ShortCommit()
}
