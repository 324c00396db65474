package utils

import "strings"

// CompareVersions compares dotted versions component by component and
// returns -1, 0 or 1. Numeric components are compared as numbers, so
// "1.10" > "1.9". Missing components count as zero ("1.0" == "1.0.0").
// A leading "v" is ignored. A non-numeric component sorts below a numeric
// one; two non-numeric components compare lexically.
func CompareVersions(a, b string) int {
	aParts := splitVersion(a)
	bParts := splitVersion(b)

	n := len(aParts)
	if len(bParts) > n {
		n = len(bParts)
	}

	for i := 0; i < n; i++ {
		if c := compareComponent(partAt(aParts, i), partAt(bParts, i)); c != 0 {
			return c
		}
	}
	return 0
}

// IsNewerVersion returns true if remote > local.
func IsNewerVersion(remote, local string) bool {
	return CompareVersions(remote, local) > 0
}

// MaxVersion returns the greater of a and b; an empty string always loses.
func MaxVersion(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case CompareVersions(b, a) > 0:
		return b
	default:
		return a
	}
}

// IsVersionLike reports whether v starts with a digit once an optional "v"
// prefix is removed.
func IsVersionLike(v string) bool {
	v = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(v), "v"), "V")
	return v != "" && v[0] >= '0' && v[0] <= '9'
}

func splitVersion(v string) []string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	if v == "" {
		return nil
	}
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-' || r == '+' || r == '_'
	})
}

func partAt(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return "0"
}

func compareComponent(a, b string) int {
	aNum, bNum := isDigits(a), isDigits(b)

	switch {
	case aNum && bNum:
		return compareNumeric(a, b)
	case aNum:
		return 1
	case bNum:
		return -1
	default:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
}

// compareNumeric compares two digit strings of any length.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) > len(b) {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
