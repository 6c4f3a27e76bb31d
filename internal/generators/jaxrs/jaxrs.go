// Package jaxrs generates a JAX-RS spec server (or client interfaces).
package jaxrs

import (
	"embed"
	"io/fs"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/generators/java"
	"github.com/mark3labs/swagger2code/internal/spec"
)

const ID = "jaxrs-spec"

//go:embed templates/*.tpl
var embedded embed.FS

var defaults = codegen.Defaults{
	BaseName:        "swagger-jaxrs",
	GroupID:         "io.swagger",
	ArtifactVersion: "1.0.0",
	SourceFolder:    "src/gen/java",
	APIPackage:      "io.swagger.api",
	ModelPackage:    "io.swagger.model",
	ModelTemplate:   "model.tpl",
	APITemplate:     "api.tpl",
}

// BuildDescriptor is the pom.xml entry.
var BuildDescriptor = codegen.SupportingFile{Template: "pom.tpl", Name: "pom.xml"}

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

func (p *Plugin) ID() string { return ID }

func (p *Plugin) Description() string {
	return "Java JAX-RS spec server; interfaceOnly emits client interfaces"
}

func (p *Plugin) Templates() []fs.FS { return []fs.FS{p.templates, java.Templates()} }

// EntryPoint is the RestApplication.java entry for s.
func EntryPoint(s codegen.Settings) codegen.SupportingFile {
	return codegen.SupportingFile{
		Template: "RestApplication.tpl",
		Folder:   s.PackagePath(s.APIPackage),
		Name:     "RestApplication.java",
	}
}

func (p *Plugin) ProcessOptions(opts codegen.Options) (codegen.Settings, error) {
	s, err := codegen.ResolveCommon(ID, opts, defaults, java.Language())
	if err != nil {
		return codegen.Settings{}, err
	}
	if s.IncludeBuildDescriptor {
		s.SupportingFiles = append(s.SupportingFiles, BuildDescriptor)
	}
	if !s.InterfaceOnly {
		s.SupportingFiles = append(s.SupportingFiles, EntryPoint(s))
	}
	return s, nil
}

func (p *Plugin) Preprocess(doc *spec.Document, _ codegen.Settings) error {
	java.EnsureComponents(doc)
	return nil
}

func (p *Plugin) ModelPath(m *codegen.Model, s codegen.Settings) string {
	return java.ModelPath(m, s)
}

func (p *Plugin) APIPath(g *codegen.OperationGroup, s codegen.Settings) string {
	return java.APIPath(g, s)
}
