// Package stacktrace trims goroutine dumps down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// stack that belongs to an internal package.
func InternalPaths(stack []byte) []string {
	var paths []string

	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)

		_, rel, ok := strings.Cut(line, "/internal/")
		if !ok {
			continue
		}

		idx := strings.Index(rel, ".go:")
		if idx == -1 {
			continue
		}

		loc := rel
		if end := strings.IndexByte(rel[idx:], ' '); end != -1 {
			loc = rel[:idx+end]
		}

		paths = append(paths, "internal/"+loc)
	}

	return paths
}
