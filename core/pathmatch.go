package core

import "strings"

// IsExcluded reports whether path matches one of the excluded-path patterns
// and may therefore bypass authentication. A pattern ending in '*' matches
// any path sharing its prefix; any other pattern matches exactly. Trailing
// slashes are insignificant on both sides, so "/a/" and "/a" are equivalent.
// An empty path or an empty pattern list means authentication stays required.
func IsExcluded(path string, patterns []string) bool {
	if path == "" || len(patterns) == 0 {
		return false
	}

	path = strings.TrimSuffix(path, "/")
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(pattern, "/")
		if strings.HasSuffix(pattern, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(pattern, "*")) {
				return true
			}
		} else if path == pattern {
			return true
		}
	}
	return false
}
