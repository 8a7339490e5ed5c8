// Package pathutil maps logical paths (namespaced identifiers such as
// `\Acme\Blog\ShowController`) onto file-system paths using a single rule
// that pairs a logical base with a file-system base.
package pathutil

import "strings"

// Transform converts source into a file-system path under fsBase when source
// is logicalBase itself or lies beneath it.
//
// The boolean reports whether the mapping applies. When it is false the
// returned path is empty and carries no meaning; an applicable mapping may
// still legitimately produce fsBase or an empty string.
//
// Rules, in order:
//   - source equal to logicalBase maps to fsBase verbatim
//   - otherwise source must start with logicalBase followed by logicalSep
//     (the bare root, a base equal to logicalSep, is used as-is)
//   - the remaining suffix has every logicalSep replaced by fsSep and is
//     joined to fsBase with exactly one fsSep
//
// Empty separators are not valid input: only the exact match applies.
func Transform(source, logicalBase, logicalSep, fsBase, fsSep string) (string, bool) {
	if source == logicalBase {
		return fsBase, true
	}

	if logicalSep == "" || fsSep == "" {
		return "", false
	}

	suffix, ok := logicalSuffix(source, logicalBase, logicalSep)
	if !ok {
		return "", false
	}

	return dirPrefix(fsBase, fsSep) + strings.ReplaceAll(suffix, logicalSep, fsSep), true
}

// logicalSuffix strips the separator-terminated logicalBase from source
func logicalSuffix(source, logicalBase, logicalSep string) (string, bool) {
	prefix := logicalBase
	if prefix != logicalSep {
		prefix += logicalSep
	}
	return strings.CutPrefix(source, prefix)
}

// dirPrefix trims every trailing fsSep from fsBase and appends exactly one
func dirPrefix(fsBase, fsSep string) string {
	for strings.HasSuffix(fsBase, fsSep) {
		fsBase = strings.TrimSuffix(fsBase, fsSep)
	}
	return fsBase + fsSep
}
