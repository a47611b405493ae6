package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// Pascal converts a snake_case identifier to PascalCase:
// "get_codebase_map" → "GetCodebaseMap". Already-capitalized runs are kept.
func Pascal(ident string) string {
	parts := strings.Split(ident, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(titleCaser.String(part))
	}
	return b.String()
}

// Kebab converts a snake_case path segment to kebab-case. Idempotent: the
// output contains no underscores, so a second pass is a no-op.
func Kebab(segment string) string {
	return strings.ReplaceAll(segment, "_", "-")
}
