// Package gen is the type-directed generation engine: it maps IDL
// types and identifiers to Go, renders constant literals, and emits
// the struct codecs, service clients, server dispatchers, and remote
// invoker units that speak the Twine binary wire protocol.
package gen

import (
	"path"
	"strings"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
	"github.com/twinekit/twinegen/internal/util"
	"github.com/twinekit/twinegen/logger"
)

// DefaultRuntimeImport is the companion wire-protocol runtime the
// generated code calls into.
const DefaultRuntimeImport = "github.com/twinekit/twine-go/twine"

// Options is the per-run configuration. Nothing else affects generated
// semantics.
type Options struct {
	// PackageName overrides the program's namespace as the Go package
	// identity of the generated code.
	PackageName string

	// PackagePrefix is prepended to the import path of every included
	// program.
	PackagePrefix string

	// RuntimeImport overrides DefaultRuntimeImport.
	RuntimeImport string
}

// Output is one generated unit. Path is relative to the output root;
// buffers are built once and written once by the caller.
type Output struct {
	Path       string
	Content    string
	Executable bool
}

// Generator holds the state of one generation run over one program.
// Generation is single-threaded and single-pass; the name allocator is
// the only mutable state.
type Generator struct {
	program *idl.Program
	opts    Options
	names   NameAllocator

	pkg string // Go package name of generated units
	dir string // package directory relative to the output root
}

// New prepares a generator for program.
func New(program *idl.Program, opts Options) *Generator {
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}
	module := program.Namespace
	if module == "" {
		module = program.Name
	}
	if opts.PackageName != "" {
		module = opts.PackageName
	}
	pkg := module
	if dot := strings.LastIndexByte(module, '.'); dot >= 0 {
		pkg = module[dot+1:]
	}
	return &Generator{
		program: program,
		opts:    opts,
		pkg:     pkg,
		dir:     strings.ReplaceAll(module, ".", "/"),
	}
}

// Generate runs one pass over the program and returns every output
// unit: the type declarations, the constants, one unit per service,
// and one remote-invoker main package per service. A generation error
// aborts the whole run; there is no partial output for a broken
// declaration.
func (g *Generator) Generate() ([]Output, error) {
	outputs := make([]Output, 0, 2+2*len(g.program.Services))

	types, err := g.generateTypes()
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, Output{Path: path.Join(g.dir, "types.go"), Content: types})

	consts, err := g.generateConstants()
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, Output{Path: path.Join(g.dir, "constants.go"), Content: consts})

	for _, svc := range g.program.Services {
		unit, err := g.generateService(svc)
		if err != nil {
			return nil, errors.Wrapf(err, "service %s", svc.Name)
		}
		base := util.ToSnakeCase(svc.Name)
		outputs = append(outputs, Output{Path: path.Join(g.dir, base+".go"), Content: unit})

		remote, err := g.generateRemote(svc)
		if err != nil {
			return nil, errors.Wrapf(err, "service %s remote", svc.Name)
		}
		outputs = append(outputs, Output{
			Path:       path.Join(g.dir, base+"-remote", base+"-remote.go"),
			Content:    remote,
			Executable: true,
		})
	}

	logger.Debugw("program generated",
		"program", g.program.Name,
		"package", g.pkg,
		"units", len(outputs))
	return outputs, nil
}

// generateTypes emits the type-declarations unit: typedefs, enums,
// structs, and exceptions, in declaration order.
func (g *Generator) generateTypes() (string, error) {
	w := &writer{}
	g.fileHeader(w)
	w.p("var GoUnusedProtection__ int")
	w.nl()

	for _, td := range g.program.Typedefs {
		if err := g.generateTypedef(w, td); err != nil {
			return "", errors.Wrapf(err, "typedef %s", td.Alias)
		}
	}
	for _, e := range g.program.Enums {
		g.generateEnum(w, e)
	}
	for _, s := range g.program.Structs {
		if err := g.generateStruct(w, s, false); err != nil {
			return "", errors.Wrapf(err, "struct %s", s.Name)
		}
	}
	for _, x := range g.program.Exceptions {
		if err := g.generateStruct(w, x, false); err != nil {
			return "", errors.Wrapf(err, "exception %s", x.Name)
		}
	}
	return w.String(), nil
}

// fileHeader emits the banner, package clause, imports, and the
// unused-import guards every generated unit carries.
func (g *Generator) fileHeader(w *writer) {
	w.p("// Code generated by twinegen. DO NOT EDIT.")
	w.nl()
	w.p("package %s", g.pkg)
	w.nl()
	w.p("import (")
	w.p("\t\"fmt\"")
	w.p("\t\"math\"")
	w.nl()
	w.p("\t\"%s\"", g.opts.RuntimeImport)
	for _, inc := range g.program.Includes {
		w.p("\t\"%s\"", g.opts.PackagePrefix+strings.ReplaceAll(inc, ".", "/"))
	}
	w.p(")")
	w.nl()
	w.p("// guards against unused imports from naive import construction")
	w.p("var _ = math.MinInt32")
	w.p("var _ = twine.TypeStop")
	w.p("var _ = fmt.Printf")
	for _, inc := range g.program.Includes {
		alias := inc
		if dot := strings.LastIndexByte(inc, '.'); dot >= 0 {
			alias = inc[dot+1:]
		}
		w.p("var _ = %s.GoUnusedProtection__", alias)
	}
	w.nl()
}

// generateTypedef emits a type alias. Self-referential aliases (the
// alias maps to the same name as the aliased type) are skipped.
func (g *Generator) generateTypedef(w *writer, td *idl.Typedef) error {
	alias := Publicize(td.Alias)
	base, err := goType(td.Type)
	if err != nil {
		return err
	}
	if alias == base {
		return nil
	}
	g.docComment(w, td.Doc)
	w.p("type %s %s", alias, base)
	w.nl()
	return nil
}

// docComment emits the declaration's IDL doc string as a Go comment.
func (g *Generator) docComment(w *writer, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		w.p("// %s", line)
	}
}

// fieldsDocComment emits a doc string plus a subheader listing the
// record's fields or the function's parameters.
func (g *Generator) fieldsDocComment(w *writer, doc, subheader string, fields []*idl.Field) {
	if doc == "" && len(fields) == 0 {
		return
	}
	g.docComment(w, doc)
	if len(fields) == 0 {
		return
	}
	if doc != "" {
		w.p("//")
	}
	w.p("// %s:", subheader)
	for _, f := range fields {
		if f.Doc != "" {
			w.p("//  - %s: %s", Publicize(SafeName(f.Name)), strings.TrimRight(f.Doc, "\n"))
		} else {
			w.p("//  - %s", Publicize(SafeName(f.Name)))
		}
	}
}
