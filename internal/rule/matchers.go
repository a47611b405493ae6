package rule

import (
	"regexp"
	"sort"
	"strings"

	"idshift/internal/mapping"
)

// Matcher rewrites occurrences of mapped identifiers within one syntactic
// context. A matcher must only fire on whole tokens: the identifier slot is
// always bounded by quotes or a word boundary in the compiled pattern, so a
// non-delimited substring (read_file inside read_file_helper) never matches.
type Matcher interface {
	Name() string
	Apply(content string) (string, int)
}

// keyAlternation builds the identifier slot for a context pattern: an
// alternation of every mapping key, longest first, each quoted for regexp.
// Returns "" for an empty table; matchers treat that as "never fires".
func keyAlternation(tbl *mapping.Table) string {
	keys := tbl.Keys()
	if len(keys) == 0 {
		return ""
	}
	quoted := make([]string, len(keys))
	copy(quoted, keys)
	sort.Slice(quoted, func(i, j int) bool {
		if len(quoted[i]) != len(quoted[j]) {
			return len(quoted[i]) > len(quoted[j])
		}
		return quoted[i] < quoted[j]
	})
	for i, k := range quoted {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(quoted, "|")
}

// ImportMatcher rewrites the path inside import/from statements:
// `from './list_directory'` → `from './list-directory'`. The path itself is
// transformed by mapping.PathTransform, so only relative, non-kept specifiers
// change.
type ImportMatcher struct {
	re    *regexp.Regexp
	paths mapping.PathTransform
}

// NewImportMatcher builds the import-context matcher.
func NewImportMatcher(paths mapping.PathTransform) *ImportMatcher {
	return &ImportMatcher{
		re:    regexp.MustCompile(`((?:import|from)\s+)(['"])([^'"]+)(['"])`),
		paths: paths,
	}
}

// Name identifies the context for reporting.
func (m *ImportMatcher) Name() string { return "import" }

// Apply rewrites every import path in content, returning the new content and
// the number of paths changed.
func (m *ImportMatcher) Apply(content string) (string, int) {
	count := 0
	out := m.re.ReplaceAllStringFunc(content, func(stmt string) string {
		sub := m.re.FindStringSubmatch(stmt)
		prefix, open, path, closing := sub[1], sub[2], sub[3], sub[4]
		if open != closing {
			return stmt
		}
		transformed := m.paths.Apply(path)
		if transformed == path {
			return stmt
		}
		count++
		return prefix + open + transformed + closing
	})
	return out, count
}

// ToolDefinitionMatcher rewrites quoted identifiers immediately preceded by a
// `name:` field marker. A bare quoted identifier elsewhere (prose, fixtures)
// is out of context and never touched.
type ToolDefinitionMatcher struct {
	re  *regexp.Regexp
	tbl *mapping.Table
}

// NewToolDefinitionMatcher builds the tool-definition-context matcher.
func NewToolDefinitionMatcher(tbl *mapping.Table) *ToolDefinitionMatcher {
	m := &ToolDefinitionMatcher{tbl: tbl}
	if alt := keyAlternation(tbl); alt != "" {
		m.re = regexp.MustCompile(`(name:\s*)(['"])(` + alt + `)(['"])`)
	}
	return m
}

// Name identifies the context for reporting.
func (m *ToolDefinitionMatcher) Name() string { return "tool-definition" }

// Apply rewrites mapped identifiers in name: fields.
func (m *ToolDefinitionMatcher) Apply(content string) (string, int) {
	return replaceQuotedSlot(m.re, m.tbl, content)
}

// StructuredFieldMatcher rewrites `tool:` field literals in inline test data.
type StructuredFieldMatcher struct {
	re  *regexp.Regexp
	tbl *mapping.Table
}

// NewStructuredFieldMatcher builds the structured-field-context matcher.
func NewStructuredFieldMatcher(tbl *mapping.Table) *StructuredFieldMatcher {
	m := &StructuredFieldMatcher{tbl: tbl}
	if alt := keyAlternation(tbl); alt != "" {
		m.re = regexp.MustCompile(`(tool:\s*)(['"])(` + alt + `)(['"])`)
	}
	return m
}

// Name identifies the context for reporting.
func (m *StructuredFieldMatcher) Name() string { return "structured-field" }

// Apply rewrites mapped identifiers in tool: fields.
func (m *StructuredFieldMatcher) Apply(content string) (string, int) {
	return replaceQuotedSlot(m.re, m.tbl, content)
}

// replaceQuotedSlot handles the shared `<prefix><quote><ident><quote>` shape:
// group 1 is the context prefix, 2/4 the quotes, 3 the identifier slot.
func replaceQuotedSlot(re *regexp.Regexp, tbl *mapping.Table, content string) (string, int) {
	if re == nil {
		return content, 0
	}
	count := 0
	out := re.ReplaceAllStringFunc(content, func(match string) string {
		sub := re.FindStringSubmatch(match)
		if sub[2] != sub[4] {
			return match
		}
		renamed, ok := tbl.Lookup(sub[3])
		if !ok {
			return match
		}
		count++
		return sub[1] + sub[2] + renamed + sub[4]
	})
	return out, count
}

// AssertionMatcher rewrites quoted identifiers inside test assertions and a
// narrow set of known test phrasings. Each phrasing is its own guarded
// pattern; there is deliberately no blanket "replace any quoted occurrence"
// fallback, which would corrupt unrelated fixture strings.
type AssertionMatcher struct {
	call   *regexp.Regexp // .toBe('x') / .toEqual / .toContain / .toInclude
	phrase *regexp.Regexp // should have name: x
	times  *regexp.Regexp // 'x 3 times'
	tbl    *mapping.Table
}

// NewAssertionMatcher builds the assertion-context matcher.
func NewAssertionMatcher(tbl *mapping.Table) *AssertionMatcher {
	m := &AssertionMatcher{tbl: tbl}
	alt := keyAlternation(tbl)
	if alt == "" {
		return m
	}
	m.call = regexp.MustCompile(`(\.to(?:Be|Equal|Contain|Include)\()(['"])(` + alt + `)(['"])(\))`)
	m.phrase = regexp.MustCompile(`(should have name:\s+)(` + alt + `)\b`)
	m.times = regexp.MustCompile(`(['"])(` + alt + `)(\s+\d+\s+times)(['"])`)
	return m
}

// Name identifies the context for reporting.
func (m *AssertionMatcher) Name() string { return "assertion" }

// Apply rewrites mapped identifiers in assertion contexts.
func (m *AssertionMatcher) Apply(content string) (string, int) {
	if m.call == nil {
		return content, 0
	}
	total := 0

	out := m.call.ReplaceAllStringFunc(content, func(match string) string {
		sub := m.call.FindStringSubmatch(match)
		if sub[2] != sub[4] {
			return match
		}
		renamed, ok := m.tbl.Lookup(sub[3])
		if !ok {
			return match
		}
		total++
		return sub[1] + sub[2] + renamed + sub[4] + sub[5]
	})

	out = m.phrase.ReplaceAllStringFunc(out, func(match string) string {
		sub := m.phrase.FindStringSubmatch(match)
		renamed, ok := m.tbl.Lookup(sub[2])
		if !ok {
			return match
		}
		total++
		return sub[1] + renamed
	})

	out = m.times.ReplaceAllStringFunc(out, func(match string) string {
		sub := m.times.FindStringSubmatch(match)
		if sub[1] != sub[4] {
			return match
		}
		renamed, ok := m.tbl.Lookup(sub[2])
		if !ok {
			return match
		}
		total++
		return sub[1] + renamed + sub[3] + sub[4]
	})

	return out, total
}
