// Package dataset rewrites tool identifiers inside parsed JSON evaluation
// documents. It walks the value tree (maps, slices, scalars) with a small
// table of recognized field names instead of hardcoding nesting depth, so a
// differently-nested document keeps working.
package dataset

import "idshift/internal/mapping"

type fieldKind int

const (
	scalarField fieldKind = iota
	listField
)

// fields maps recognized key names to how their values are replaced.
// Unknown keys and non-string values always pass through unchanged.
var fields = map[string]fieldKind{
	"tool":            scalarField,
	"expectedTool":    scalarField,
	"forbiddenTools":  listField,
	"acceptableTools": listField,
}

// Rewrite replaces mapped identifiers in the value tree and returns the tree
// together with the number of replacements. The tree's shape is never
// altered: keys, list order, and list length stay exactly as parsed.
func Rewrite(v any, tbl *mapping.Table) (any, int) {
	switch node := v.(type) {
	case []any:
		changes := 0
		for i, elem := range node {
			rewritten, n := Rewrite(elem, tbl)
			node[i] = rewritten
			changes += n
		}
		return node, changes
	case map[string]any:
		changes := 0
		for key, val := range node {
			kind, known := fields[key]
			switch {
			case known && kind == scalarField:
				if s, ok := val.(string); ok {
					if renamed, mapped := tbl.Lookup(s); mapped {
						node[key] = renamed
						changes++
					}
					continue
				}
			case known && kind == listField:
				if list, ok := val.([]any); ok {
					changes += rewriteList(list, tbl)
					continue
				}
			}
			// Recognized keys with unexpected value types fall through to
			// plain recursion, same as unknown keys.
			rewritten, n := Rewrite(val, tbl)
			node[key] = rewritten
			changes += n
		}
		return node, changes
	default:
		return v, 0
	}
}

// rewriteList replaces string elements present in the table, element-wise and
// in place. Entries outside the table keep their position untouched.
func rewriteList(list []any, tbl *mapping.Table) int {
	changes := 0
	for i, elem := range list {
		s, ok := elem.(string)
		if !ok {
			continue
		}
		if renamed, mapped := tbl.Lookup(s); mapped {
			list[i] = renamed
			changes++
		}
	}
	return changes
}
