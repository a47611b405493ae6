// Package rule implements the guarded rewrite rule set: an ordered list of
// context matchers applied over raw file text. Each matcher recognizes one
// syntactic context in which a quoted identifier is known to denote a tool
// name or an import path, and substitutes only there.
package rule

import "idshift/internal/mapping"

// Result is the outcome of rewriting one artifact's text.
type Result struct {
	Content      string
	Replacements int
	Changed      bool
}

// Set applies its matchers in a fixed order; each matcher scans the current,
// possibly already-modified content. Because every replacement value is
// outside the mapping's key set, running the whole set twice is a no-op.
type Set struct {
	matchers []Matcher
}

// NewSourceSet builds the rule set for source modules: import paths and
// tool-definition name fields.
func NewSourceSet(tbl *mapping.Table, paths mapping.PathTransform) *Set {
	return &Set{matchers: []Matcher{
		NewImportMatcher(paths),
		NewToolDefinitionMatcher(tbl),
	}}
}

// NewTestSet builds the rule set for test modules: everything the source set
// rewrites, plus inline test-data tool: fields and assertion literals.
func NewTestSet(tbl *mapping.Table, paths mapping.PathTransform) *Set {
	return &Set{matchers: []Matcher{
		NewImportMatcher(paths),
		NewToolDefinitionMatcher(tbl),
		NewStructuredFieldMatcher(tbl),
		NewAssertionMatcher(tbl),
	}}
}

// Rewrite applies the rule set to one file's full text. Content is returned
// unchanged (Changed=false) when no rule fired, so callers can skip the
// write-back entirely.
func (s *Set) Rewrite(content string) Result {
	out := content
	total := 0
	for _, m := range s.matchers {
		var n int
		out, n = m.Apply(out)
		total += n
	}
	return Result{Content: out, Replacements: total, Changed: out != content}
}
