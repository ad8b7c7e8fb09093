package catalog

import (
	"strings"

	"golang.org/x/mod/semver"
)

// canonicalVersion accepts "1.2.0" or "v1.2.0". Invalid versions sort lowest.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// newerVersion reports whether a is strictly newer than b.
func newerVersion(a, b string) bool {
	ca, cb := canonicalVersion(a), canonicalVersion(b)
	if ca == "" {
		return false
	}
	if cb == "" {
		return true
	}
	return semver.Compare(ca, cb) > 0
}
