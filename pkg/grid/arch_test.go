package grid_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// forbiddenStdlib lists standard packages that would give the pipeline I/O
// or a process-wide dependency.
var forbiddenStdlib = map[string]bool{
	"database/sql":  true,
	"net/http":      true,
	"os":            true,
	"os/exec":       true,
	"io/fs":         true,
	"path/filepath": true,
}

// gridImports parses the non-test files of pkg/grid and returns their
// imports keyed by file name.
func gridImports(t *testing.T) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()

	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read grid directory: %v", err)
	}

	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		path := filepath.Join(".", entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[entry.Name()] = append(out[entry.Name()], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestGridImportsOnly verifies pkg/grid only imports the standard library
// and golang.org/x/text.
func TestGridImportsOnly(t *testing.T) {
	for file, imports := range gridImports(t) {
		for _, importPath := range imports {
			if !strings.Contains(importPath, ".") {
				if forbiddenStdlib[importPath] {
					t.Errorf("%s imports %s (the pipeline performs no I/O)", file, importPath)
				}
				continue
			}
			if !strings.HasPrefix(importPath, "golang.org/x/text/") {
				t.Errorf("%s imports forbidden package: %s", file, importPath)
			}
		}
	}
}

// TestGridDoesNotImportInternal verifies pkg/grid doesn't import any internal packages.
func TestGridDoesNotImportInternal(t *testing.T) {
	for file, imports := range gridImports(t) {
		for _, importPath := range imports {
			if strings.Contains(importPath, "/internal/") {
				t.Errorf("%s imports internal package: %s (grid must not import internal packages)", file, importPath)
			}
		}
	}
}
