// Package analyzer extracts route facts from controller source without
// executing it. It walks a project tree, locates metadata registration
// calls, and derives verb, literal path, parameter models and return
// types from the declared handler methods. Its output is reconciled
// against the runtime collector by the manifest builder.
package analyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

const metadataImportPath = "github.com/celsowm/adorn-api-sub006/metadata"

// Analysis is the full static projection of a project: the
// registration-call facts (what the collector would record at runtime)
// and the independently derived route matches.
type Analysis struct {
	Controllers []manifest.ControllerDefinition
	Matches     []manifest.RouteMatch
}

// Analyzer walks a project root and produces an Analysis.
type Analyzer struct {
	root string

	mu   sync.Mutex
	fset *token.FileSet
}

// New creates an analyzer rooted at the given directory.
func New(root string) *Analyzer {
	return &Analyzer{root: root, fset: token.NewFileSet()}
}

// Analyze parses every package under the root and extracts controller
// and route facts. Packages are parsed concurrently; output ordering
// is deterministic (sorted by directory, then source position).
func (a *Analyzer) Analyze() (*Analysis, error) {
	dirs, err := a.packageDirs()
	if err != nil {
		return nil, err
	}

	results := make([]*packageFacts, len(dirs))
	var g errgroup.Group
	for i, dir := range dirs {
		g.Go(func() error {
			facts, err := a.analyzeDir(dir)
			if err != nil {
				return err
			}
			results[i] = facts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Analysis{}
	for _, facts := range results {
		if facts == nil {
			continue
		}
		out.Controllers = append(out.Controllers, facts.controllers...)
		out.Matches = append(out.Matches, facts.matches...)
	}
	return out, nil
}

// packageDirs lists directories containing non-test Go files.
func (a *Analyzer) packageDirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if shouldSkipDir(d.Name()) && path != a.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func shouldSkipDir(name string) bool {
	return name == "vendor" || name == "testdata" || name == "node_modules" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// packageFacts is the per-package analysis output.
type packageFacts struct {
	controllers []manifest.ControllerDefinition
	matches     []manifest.RouteMatch
}

// analyzeDir parses one directory and extracts facts from every
// package found in it.
func (a *Analyzer) analyzeDir(dir string) (*packageFacts, error) {
	a.mu.Lock()
	pkgs, err := parser.ParseDir(a.fset, dir, func(info fs.FileInfo) bool {
		name := info.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, parser.ParseComments)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	facts := &packageFacts{}
	pkgNames := make([]string, 0, len(pkgs))
	for name := range pkgs {
		pkgNames = append(pkgNames, name)
	}
	sort.Strings(pkgNames)

	for _, name := range pkgNames {
		pkg := pkgs[name]
		pa := newPackageAnalyzer(a, pkg)
		if err := pa.run(facts); err != nil {
			return nil, err
		}
	}
	return facts, nil
}

// packageAnalyzer holds per-package state: parsed files in stable
// order, the string-constant table and the metadata import aliases.
type packageAnalyzer struct {
	analyzer  *Analyzer
	files     []*ast.File
	constants map[string]string
	aliases   map[*ast.File]map[string]struct{}
}

func newPackageAnalyzer(a *Analyzer, pkg *ast.Package) *packageAnalyzer {
	paths := make([]string, 0, len(pkg.Files))
	for path := range pkg.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pa := &packageAnalyzer{
		analyzer:  a,
		constants: make(map[string]string),
		aliases:   make(map[*ast.File]map[string]struct{}),
	}
	for _, path := range paths {
		file := pkg.Files[path]
		pa.files = append(pa.files, file)
		pa.aliases[file] = importAliases(file, metadataImportPath)
	}
	for _, file := range pa.files {
		pa.collectConstants(file)
	}
	return pa
}

func (pa *packageAnalyzer) run(facts *packageFacts) error {
	var all []*registrationCall
	for _, file := range pa.files {
		if len(pa.aliases[file]) == 0 {
			continue
		}
		calls, err := pa.registrationCalls(file)
		if err != nil {
			return err
		}
		all = append(all, calls...)
	}

	// Controller declarations first so routes can attach regardless of
	// which file they appear in.
	declared := make(map[string]*manifest.ControllerDefinition)
	var order []string
	for _, call := range all {
		decl := call.controllerDecl
		if decl == nil {
			continue
		}
		if existing, ok := declared[decl.Name]; ok {
			existing.Tags = append(existing.Tags, decl.Tags...)
			if decl.BasePath != "/" {
				existing.BasePath = decl.BasePath
			}
			continue
		}
		declared[decl.Name] = decl
		order = append(order, decl.Name)
	}

	for _, call := range all {
		if call.controllerDecl != nil {
			continue
		}
		match, meta, err := pa.resolveRoute(call)
		if err != nil {
			return err
		}
		ctrl, ok := declared[match.Controller]
		if !ok {
			return errorf(call.file, call.line, match.Controller, match.Method,
				"route registered for undeclared controller; DeclareController is missing")
		}
		ctrl.Methods = append(ctrl.Methods, *meta)
		facts.matches = append(facts.matches, *match)
	}

	for _, name := range order {
		facts.controllers = append(facts.controllers, *declared[name])
	}
	return nil
}

// collectConstants records package-level string constants so route
// paths declared through constants resolve during extraction.
func (pa *packageAnalyzer) collectConstants(file *ast.File) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}
		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range valueSpec.Names {
				if i >= len(valueSpec.Values) {
					continue
				}
				if lit, ok := valueSpec.Values[i].(*ast.BasicLit); ok && lit.Kind == token.STRING {
					pa.constants[name.Name] = strings.Trim(lit.Value, `"`)
				}
			}
		}
	}
}

// importAliases returns the local names under which an import path is
// visible in a file.
func importAliases(file *ast.File, importPath string) map[string]struct{} {
	aliases := make(map[string]struct{})
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		if path != importPath {
			continue
		}
		if imp.Name != nil && imp.Name.Name != "" && imp.Name.Name != "_" && imp.Name.Name != "." {
			aliases[imp.Name.Name] = struct{}{}
			continue
		}
		aliases[filepath.Base(importPath)] = struct{}{}
	}
	return aliases
}

func (pa *packageAnalyzer) position(pos token.Pos) (string, int) {
	p := pa.analyzer.fset.Position(pos)
	return p.Filename, p.Line
}
