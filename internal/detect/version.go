package detect

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+){0,2}`)

// extractVersion returns the first numeric X[.Y[.Z]] run in s.
func extractVersion(s string) string {
	return versionPattern.FindString(s)
}

// canonical turns "12.8" or "5.15.167.4" into a comparable "v12.8.0" / "v5.15.167".
// It returns "" when s holds no version.
func canonical(s string) string {
	v := extractVersion(s)
	if v == "" {
		return ""
	}
	for strings.Count(v, ".") < 2 {
		v += ".0"
	}
	return semver.Canonical("v" + stripLeadingZeros(v))
}

// atLeast reports whether have >= want. Unparseable versions never satisfy.
func atLeast(have, want string) bool {
	h, m := canonical(have), canonical(want)
	if h == "" || m == "" {
		return false
	}
	return semver.Compare(h, m) >= 0
}

// ValidVersion reports whether s can be used as a minimum version threshold.
func ValidVersion(s string) bool {
	return canonical(s) != ""
}

// stripLeadingZeros rewrites "05.015" as "5.15"; semver rejects leading zeros.
func stripLeadingZeros(v string) string {
	parts := strings.Split(v, ".")
	for i, p := range parts {
		p = strings.TrimLeft(p, "0")
		if p == "" {
			p = "0"
		}
		parts[i] = p
	}
	return strings.Join(parts, ".")
}

// equalFold compares strings case-insensitively ignoring surrounding space.
func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// firstLine returns the first non-empty line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// collapseSpace squeezes runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
