package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

func ParseSecureURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("insecure URL rejected: %s", raw)
	}
	return parsed, nil
}

// AddQueryArg sets key=value on raw, keeping the other query params.
func AddQueryArg(raw, key, value string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// JoinURL appends name to base with exactly one slash between them.
func JoinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}

// Basename returns the last element of a slash separated slug.
func Basename(slug string) string {
	return path.Base(slug)
}
