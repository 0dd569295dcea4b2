// Package version supplies the installed application version to the controller.
package version

import (
	"errors"
	"fmt"
	"runtime/debug"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"

	"ratereminder/core"
	"ratereminder/engine"
)

// Static reports a fixed version, such as a release version stamped with -ldflags.
type Static string

// InstalledVersion returns the normalized four-part form of the static value.
func (s Static) InstalledVersion() (string, error) {
	return core.NormalizeVersion(string(s))
}

// BuildInfo reads the main module version embedded by the Go toolchain.
type BuildInfo struct {
	// Fallback is used when the binary carries no release version: "go run",
	// pseudo-versions of untagged commits and "+dirty" builds of modified checkouts.
	Fallback string

	read func() (*debug.BuildInfo, bool)
}

// FromBuildInfo returns a provider backed by runtime/debug.ReadBuildInfo.
func FromBuildInfo(fallback string) *BuildInfo {
	return &BuildInfo{Fallback: fallback, read: debug.ReadBuildInfo}
}

func (b *BuildInfo) InstalledVersion() (string, error) {
	read := b.read
	if read == nil {
		read = debug.ReadBuildInfo
	}
	if info, ok := read(); ok {
		if v := info.Main.Version; isRelease(v) {
			if normalized, err := core.NormalizeVersion(v); err == nil {
				return normalized, nil
			}
		}
	}
	if b.Fallback == "" {
		return "", errors.New("no module version in build info")
	}
	v, err := core.NormalizeVersion(b.Fallback)
	if err != nil {
		return "", fmt.Errorf("fallback version: %w", err)
	}
	return v, nil
}

// isRelease reports whether v names a tagged, unmodified module version.
func isRelease(v string) bool {
	if v == "" || v == "(devel)" {
		return false
	}
	return !module.IsPseudoVersion(v) && semver.Build(v) != "+dirty"
}

var (
	_ engine.VersionProvider = Static("")
	_ engine.VersionProvider = (*BuildInfo)(nil)
)
