package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// FormatVersion renders a package version as Major.Minor.Build.Revision.
func FormatVersion(major, minor, build, revision uint16) string {
	return fmt.Sprintf("%d.%d.%d.%d", major, minor, build, revision)
}

// NormalizeVersion converts a dotted or semver-style version into the four-component
// form stored alongside the reminder state. Pre-release and build metadata are dropped.
//
//	"1.2.3.4"     -> "1.2.3.4"
//	"v1.2.3"      -> "1.2.3.0"
//	"1.2"         -> "1.2.0.0"
//	"v1.4.0-rc.1" -> "1.4.0.0"
func NormalizeVersion(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New("empty version")
	}
	if parts := strings.Split(strings.TrimPrefix(s, "v"), "."); len(parts) == 4 {
		var nums [4]uint16
		for i, p := range parts {
			n, err := strconv.ParseUint(p, 10, 16)
			if err != nil {
				return "", fmt.Errorf("invalid version %q: %w", raw, err)
			}
			nums[i] = uint16(n)
		}
		return FormatVersion(nums[0], nums[1], nums[2], nums[3]), nil
	}

	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid version %q", raw)
	}
	canonical := strings.TrimSuffix(semver.Canonical(v), semver.Prerelease(v))
	parts := strings.Split(strings.TrimPrefix(canonical, "v"), ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid version %q", raw)
	}
	return strings.Join(parts, ".") + ".0", nil
}
