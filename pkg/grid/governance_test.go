//go:build governance

package grid_test

import (
	"go/types"
	"slices"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/leapgrid"

// =============================================================================
// LAYERING TEST - Sources feed the pipeline, presenters read its views
// =============================================================================

// forbiddenImports maps a package to module packages it must not import.
var forbiddenImports = map[string][]string{
	"pkg/grid":         {"internal/"},
	"internal/source":  {"internal/render", "internal/tui", "internal/ui", "internal/cli"},
	"internal/rowexpr": {"internal/source", "internal/render", "internal/tui", "internal/ui", "internal/cli"},
	"internal/render":  {"internal/source", "internal/rowexpr", "internal/tui", "internal/ui", "internal/cli"},
	"internal/window":  {"internal/"},
	"internal/tui":     {"internal/source", "internal/rowexpr", "internal/ui", "internal/cli"},
	"internal/ui":      {"internal/source", "internal/rowexpr", "internal/tui", "internal/cli"},
}

// TestGovernance_Layering verifies presenters never load data and sources
// never present it.
func TestGovernance_Layering(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	base := modulePath + "/"
	for _, p := range pkgs {
		rel := strings.TrimPrefix(p.PkgPath, base)
		for owner, forbidden := range forbiddenImports {
			if rel != owner && !strings.HasPrefix(rel, owner+"/") {
				continue
			}
			for imp := range p.Imports {
				impRel, ok := strings.CutPrefix(imp, base)
				if !ok {
					continue
				}
				for _, f := range forbidden {
					if strings.HasPrefix(impRel, f) && !strings.HasPrefix(impRel, owner) {
						t.Errorf("LAYERING VIOLATION: '%s' imports '%s'.\n"+
							"   Fix: pass rows or grid.View across the boundary instead.",
							rel, impRel)
					}
				}
			}
		}
	}
}

// =============================================================================
// COHESION TEST - Exported pipeline API must have a consumer
// =============================================================================

// TestGovernance_GridCohesion reports exported pkg/grid identifiers that no
// other package in the module uses. pkg/grid is a library, so unused
// exports are listed for review rather than failed.
func TestGovernance_GridCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	defs := make(map[types.Object]string)
	var gridPkg *packages.Package
	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/grid" {
			gridPkg = p
			scope := p.Types.Scope()
			for _, name := range scope.Names() {
				if obj := scope.Lookup(name); obj.Exported() {
					defs[obj] = name
				}
			}
			break
		}
	}
	if gridPkg == nil {
		t.Fatal("Could not find pkg/grid")
	}

	used := make(map[string]bool)
	for _, p := range pkgs {
		if p.PkgPath == gridPkg.PkgPath || p.TypesInfo == nil {
			continue
		}
		for _, obj := range p.TypesInfo.Uses {
			if name, ok := defs[obj]; ok {
				used[name] = true
			}
		}
	}

	var unused []string
	for _, name := range defs {
		if !used[name] && !isLibraryOnly(name) {
			unused = append(unused, name)
		}
	}
	slices.Sort(unused)
	for _, name := range unused {
		t.Logf("grid.%s has no consumer in the module", name)
	}
}

// isLibraryOnly returns true for identifiers offered to library users that
// the bundled front ends do not need.
func isLibraryOnly(name string) bool {
	allowlist := map[string]bool{
		"WithSearchCallback":     true, // server-driven search
		"WithPageChangeCallback": true, // server-driven paging
		"WithScheduler":          true, // deterministic timers in tests
		"NewDebouncer":           true,
		"Debouncer":              true,
		"AfterFunc":              true,
		"Filter":                 true,
		"Sort":                   true,
		"Paginate":               true,
		"Page":                   true,
		"PageState":              true,
		"DefaultCompare":         true,
		"DefaultDebounce":        true,
		"Comparator":             true,
	}
	return allowlist[name]
}
