package mapping

import (
	"fmt"
	"sort"
)

// Table is an immutable old→new identifier mapping. Keys and values are
// disjoint: no identifier maps to itself, and no replacement is itself a key,
// so re-applying a migration can never chain renames.
type Table struct {
	entries map[string]string
	keys    []string
}

// New builds a Table from explicit old→new pairs.
func New(entries map[string]string) (*Table, error) {
	t := &Table{
		entries: make(map[string]string, len(entries)),
		keys:    make([]string, 0, len(entries)),
	}
	for old, renamed := range entries {
		if old == "" {
			return nil, fmt.Errorf("mapping: empty identifier")
		}
		if renamed == "" {
			return nil, fmt.Errorf("mapping: %q has empty replacement", old)
		}
		if old == renamed {
			return nil, fmt.Errorf("mapping: %q maps to itself", old)
		}
		t.entries[old] = renamed
		t.keys = append(t.keys, old)
	}
	for old, renamed := range t.entries {
		if _, clash := t.entries[renamed]; clash {
			return nil, fmt.Errorf("mapping: replacement %q for %q is itself mapped", renamed, old)
		}
	}
	sort.Strings(t.keys)
	return t, nil
}

// Derived builds a Table whose replacements are PascalCase derivations of the
// given snake_case identifiers. Overrides win over derivation.
func Derived(idents []string, overrides map[string]string) (*Table, error) {
	entries := make(map[string]string, len(idents)+len(overrides))
	for _, ident := range idents {
		entries[ident] = Pascal(ident)
	}
	for old, renamed := range overrides {
		entries[old] = renamed
	}
	return New(entries)
}

// defaultRenames are the tool identifiers migrated when the manifest carries
// no [tools] section.
var defaultRenames = []string{
	"read_file",
	"write_file",
	"edit_file",
	"delete_file",
	"list_directory",
	"glob",
	"grep",
	"get_codebase_map",
	"search_code",
	"inspect_symbol",
	"get_imports_exports",
	"find_references",
	"build_dependency_graph",
	"detect_project_type",
	"extract_conventions",
	"get_project_overview",
	"bash",
	"bash_output",
	"kill_bash",
	"run_command",
	"todo_write",
}

// Default returns the built-in tool identifier table.
func Default() *Table {
	t, err := Derived(defaultRenames, nil)
	if err != nil {
		panic("mapping: default table invalid: " + err.Error())
	}
	return t
}

// Lookup returns the replacement for old, if old is mapped.
func (t *Table) Lookup(old string) (string, bool) {
	renamed, ok := t.entries[old]
	return renamed, ok
}

// Keys returns the mapped identifiers in sorted order. The slice is shared;
// callers must not mutate it.
func (t *Table) Keys() []string {
	return t.keys
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}
