// Package goserver generates a net/http server skeleton in Go.
package goserver

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/spec"
)

const ID = "go-server"

// Plugin specific options.
const (
	OptModuleName  = "moduleName"
	OptPackageName = "packageName"
)

//go:embed templates/*.tpl
var embedded embed.FS

var defaults = codegen.Defaults{
	BaseName:        "swagger-go",
	ArtifactVersion: "1.0.0",
	SourceFolder:    "api",
	ModelTemplate:   "model.tpl",
	APITemplate:     "api.tpl",
}

var (
	BuildDescriptor = codegen.SupportingFile{Template: "go.mod.tpl", Name: "go.mod"}
	EntryPoint      = codegen.SupportingFile{Template: "main.tpl", Name: "main.go"}
)

var keywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough",
	"for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range",
	"return", "select", "struct", "switch", "type", "var",
	// predeclared identifiers that would shadow builtins in generated code
	"any", "error", "string", "bool", "byte", "rune", "int", "int32", "int64", "float32", "float64",
	"nil", "true", "false", "len", "cap", "new", "make", "append",
}

// Language returns the Go type map and naming rules.
func Language() codegen.Language {
	reserved := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		reserved[k] = true
	}
	return codegen.Language{
		TypeMap: map[string]string{
			"integer":          "int32",
			"integer/int32":    "int32",
			"integer/int64":    "int64",
			"number":           "float64",
			"number/float":     "float32",
			"number/double":    "float64",
			"string":           "string",
			"string/byte":      "[]byte",
			"string/binary":    "[]byte",
			"string/date-time": "time.Time",
			"boolean":          "bool",
			"object":           "map[string]any",
		},
		ImportMapping: map[string]string{
			"time.Time": "time",
		},
		Primitives: map[string]bool{
			"int32": true, "int64": true, "float32": true, "float64": true,
			"string": true, "[]byte": true, "bool": true, "map[string]any": true,
		},
		ContainerFormat: "[]%s",
		MapFormat:       "map[string]%s",
		NullToken:       "nil",
		Naming: codegen.Naming{
			ReservedWords:  reserved,
			ReservedSuffix: "_",
			ClassPrefix:    "Model",
			FieldCase:      codegen.CasePascal,
			ParamCase:      codegen.CaseCamel,
			APISuffix:      "API",
		},
	}
}

type Plugin struct {
	templates fs.FS
}

func New() *Plugin {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return &Plugin{templates: sub}
}

func (p *Plugin) ID() string          { return ID }
func (p *Plugin) Description() string { return "Go net/http server with one interface per API group" }
func (p *Plugin) Templates() []fs.FS  { return []fs.FS{p.templates} }

func (p *Plugin) ProcessOptions(opts codegen.Options) (codegen.Settings, error) {
	s, err := codegen.ResolveCommon(ID, opts, defaults, Language())
	if err != nil {
		return codegen.Settings{}, err
	}
	fail := func(option, reason string) (codegen.Settings, error) {
		return codegen.Settings{}, &codegen.ConfigError{Generator: ID, Option: option, Reason: reason}
	}
	if s.SourceFolder == "" || s.SourceFolder == "." {
		return fail(codegen.OptSourceFolder, "generated Go code needs its own package directory")
	}
	module, err := opts.String(OptModuleName, s.BaseName)
	if err != nil {
		return fail(OptModuleName, err.Error())
	}
	pkg, err := opts.String(OptPackageName, packageName(path.Base(s.SourceFolder)))
	if err != nil {
		return fail(OptPackageName, err.Error())
	}
	if pkg == "" || !isIdentifier(pkg) || Language().Naming.ReservedWords[pkg] {
		return fail(OptPackageName, fmt.Sprintf("%q is not a usable Go package name", pkg))
	}

	s.AdditionalProperties[OptModuleName] = module
	s.AdditionalProperties[OptPackageName] = pkg
	s.AdditionalProperties["apiImportPath"] = module + "/" + s.SourceFolder

	if s.IncludeBuildDescriptor {
		s.SupportingFiles = append(s.SupportingFiles, BuildDescriptor)
	}
	if !s.InterfaceOnly {
		s.SupportingFiles = append(s.SupportingFiles, EntryPoint)
	}
	s.SupportingFiles = append(s.SupportingFiles, Router(s))
	return s, nil
}

// Router is the file tying every API group together.
func Router(s codegen.Settings) codegen.SupportingFile {
	return codegen.SupportingFile{Template: "router.tpl", Folder: s.SourceFolder, Name: "router.go"}
}

func (p *Plugin) Preprocess(doc *spec.Document, _ codegen.Settings) error {
	if doc.Schemas == nil {
		doc.Schemas = map[string]*spec.SchemaNode{}
	}
	return nil
}

func (p *Plugin) ModelPath(m *codegen.Model, s codegen.Settings) string {
	return path.Join(s.SourceFolder, "model_"+codegen.Snake(m.Name)+".go")
}

func (p *Plugin) APIPath(g *codegen.OperationGroup, s codegen.Settings) string {
	return path.Join(s.SourceFolder, "api_"+codegen.Snake(g.Name)+".go")
}

// PostProcess runs goimports over generated Go files.
func (p *Plugin) PostProcess(file string, content []byte) ([]byte, error) {
	if !strings.HasSuffix(file, ".go") {
		return content, nil
	}
	out, err := imports.Process(path.Base(file), content, &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, fmt.Errorf("goimports %s: %w", file, err)
	}
	return out, nil
}

// packageName lower-cases dir and drops everything but letters and digits.
func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
