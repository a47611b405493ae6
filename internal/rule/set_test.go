package rule

import (
	"testing"

	"idshift/internal/mapping"
)

const testModule = `import { defineTool } from './tool_defs/base_tool';
import { spawn } from 'child_process';

export const listDirectory = defineTool({
  name: 'list_directory',
  description: 'list_directory lists entries under a path',
});
`

func newSets(t *testing.T) (*Set, *Set) {
	t.Helper()
	tbl := mapping.Default()
	paths := mapping.NewPathTransform(mapping.DefaultKeep)
	return NewSourceSet(tbl, paths), NewTestSet(tbl, paths)
}

func TestSourceSetRewrite(t *testing.T) {
	src, _ := newSets(t)
	res := src.Rewrite(testModule)
	if !res.Changed {
		t.Fatal("expected content to change")
	}
	want := `import { defineTool } from './tool-defs/base-tool';
import { spawn } from 'child_process';

export const listDirectory = defineTool({
  name: 'ListDirectory',
  description: 'list_directory lists entries under a path',
});
`
	if res.Content != want {
		t.Fatalf("unexpected rewrite:\n%s", res.Content)
	}
	if res.Replacements != 2 {
		t.Fatalf("expected 2 replacements, got %d", res.Replacements)
	}
}

func TestTestSetRewrite(t *testing.T) {
	_, test := newSets(t)
	in := `import { listDirectory } from '../src/tools/list_directory';

it('should have name: list_directory', () => {
  expect(listDirectory.name).toBe('list_directory');
});

const cases = [{ tool: 'todo_write', args: {} }];
`
	res := test.Rewrite(in)
	want := `import { listDirectory } from '../src/tools/list-directory';

it('should have name: ListDirectory', () => {
  expect(listDirectory.name).toBe('ListDirectory');
});

const cases = [{ tool: 'TodoWrite', args: {} }];
`
	if res.Content != want {
		t.Fatalf("unexpected rewrite:\n%s", res.Content)
	}
	if res.Replacements != 4 {
		t.Fatalf("expected 4 replacements, got %d", res.Replacements)
	}
}

func TestRewriteIdempotent(t *testing.T) {
	src, test := newSets(t)
	for _, s := range []*Set{src, test} {
		first := s.Rewrite(testModule)
		second := s.Rewrite(first.Content)
		if second.Changed {
			t.Fatalf("second pass changed content:\n%s", second.Content)
		}
		if second.Replacements != 0 {
			t.Fatalf("second pass counted %d replacements", second.Replacements)
		}
	}
}

func TestRewriteNoMatchesUnchanged(t *testing.T) {
	src, _ := newSets(t)
	in := "const helper = makeHelper('read_file_helper');\n"
	res := src.Rewrite(in)
	if res.Changed || res.Replacements != 0 {
		t.Fatalf("expected no-op, got %q (%d replacements)", res.Content, res.Replacements)
	}
}

func TestEmptyTableNeverFires(t *testing.T) {
	tbl, err := mapping.New(nil)
	if err != nil {
		t.Fatalf("empty table: %v", err)
	}
	s := NewTestSet(tbl, mapping.NewPathTransform(nil))
	in := `name: '' , tool: "" , expect(x).toBe('')`
	res := s.Rewrite(in)
	if res.Changed {
		t.Fatalf("empty table rewrote content: %q", res.Content)
	}
}
