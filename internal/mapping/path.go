package mapping

import "strings"

// DefaultKeep lists module specifiers that must never be rewritten even when
// they look like snake_case paths (runtime built-ins).
var DefaultKeep = []string{"child_process", "fs", "path", "os"}

// PathTransform rewrites relative import paths from snake_case to kebab-case.
// Non-relative specifiers (bare package names, absolute paths) and members of
// the keep set pass through untouched.
type PathTransform struct {
	keep map[string]struct{}
}

// NewPathTransform builds a PathTransform with the given keep set. A nil or
// empty keep slice means every relative path is eligible.
func NewPathTransform(keep []string) PathTransform {
	set := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	return PathTransform{keep: set}
}

// Apply transforms a single import path. Pure and idempotent.
func (p PathTransform) Apply(path string) string {
	// Only relative specifiers ("./x", "../x") denote project files.
	if !strings.HasPrefix(path, ".") {
		return path
	}
	// Keep-set membership is checked verbatim, never as a substring.
	if _, keep := p.keep[path]; keep {
		return path
	}
	return Kebab(path)
}
