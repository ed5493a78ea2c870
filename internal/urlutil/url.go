// Package urlutil joins base URLs, words, and extensions into scan targets
// and classifies the results (depth, host-scope, directory-ness).
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// SlashExtension is the sentinel extension meaning "append a trailing
// slash to the word" rather than ".ext".
const SlashExtension = "/"

// Normalize returns url with exactly one trailing slash.
//
// Normalize(Normalize(u)) == Normalize(u) for all u.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("urlutil: parse %q: %w", raw, err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Depth returns the number of non-empty path segments; a bare host counts
// as depth 1.
func Depth(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	segs := splitSegments(u.Path)
	return len(segs) + 1
}

func splitSegments(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Join builds base/word[.ext] (or base/word/ when ext is SlashExtension).
func Join(base, word, ext string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("urlutil: parse base %q: %w", base, err)
	}

	trimmedBase := strings.TrimRight(u.Path, "/")

	var newPath string
	switch {
	case ext == SlashExtension:
		newPath = trimmedBase + "/" + word + "/"
	case ext == "":
		newPath = trimmedBase + "/" + word
	default:
		newPath = trimmedBase + "/" + word + "." + strings.TrimPrefix(ext, ".")
	}

	joined := *u
	joined.Path = newPath
	joined.RawQuery = ""
	joined.Fragment = ""
	return joined.String(), nil
}

// SameHost reports whether candidate shares target's host (scheme
// differences are ignored, matching the host-scope guard in §4.4 step 2).
func SameHost(target, candidate string) bool {
	tu, err := url.Parse(target)
	if err != nil {
		return false
	}
	cu, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return tu.Hostname() == cu.Hostname()
}

// PathLength returns the byte length of a URL's path, excluding a
// trailing slash — used by the wildcard dynamic-offset calculation.
func PathLength(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	return len(strings.TrimRight(u.Path, "/"))
}

// IsRedirectToDirectory reports whether location is requested with an
// added trailing slash, i.e. "http://h/a" -> "http://h/a/".
func IsRedirectToDirectory(requested, location string) bool {
	normalizedReq := strings.TrimRight(requested, "/") + "/"
	normalizedLoc := strings.TrimRight(location, "/") + "/"
	return normalizedReq == normalizedLoc && requested != location
}
