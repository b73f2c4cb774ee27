package agg

import (
	"strings"
)

// CountChanges turns repository-relative touched paths into per-module change counts
// relative to the scan scope. Paths outside the scope or rejected by keep are dropped.
func CountChanges(touched []string, scope string, keep func(string) bool) map[string]int {
	prefix := ""
	if scope != "" {
		prefix = strings.TrimSuffix(scope, "/") + "/"
	}

	counts := make(map[string]int)
	for _, p := range touched {
		p = unquotePath(strings.TrimSpace(p))
		if p == "" || !strings.HasPrefix(p, prefix) {
			continue
		}
		rel := strings.TrimPrefix(p, prefix)
		if keep != nil && !keep(rel) {
			continue
		}
		counts[rel]++
	}
	return counts
}

// unquotePath strips the C-style quotes git puts around unusual path names.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		return p[1 : len(p)-1]
	}
	return p
}
