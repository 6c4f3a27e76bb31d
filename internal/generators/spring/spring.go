// Package spring generates a Spring Boot server.
package spring

import (
	"embed"
	"io/fs"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/generators/java"
	"github.com/mark3labs/swagger2code/internal/spec"
)

const ID = "spring"

// OptBasePackage is the package of the Spring Boot application class.
const OptBasePackage = "basePackage"

//go:embed templates/*.tpl
var embedded embed.FS

var defaults = codegen.Defaults{
	BaseName:        "swagger-spring",
	GroupID:         "io.swagger",
	ArtifactVersion: "1.0.0",
	SourceFolder:    "src/main/java",
	APIPackage:      "io.swagger.api",
	ModelPackage:    "io.swagger.model",
	ModelTemplate:   "model.tpl",
	APITemplate:     "api.tpl",
}

var BuildDescriptor = codegen.SupportingFile{Template: "pom.tpl", Name: "pom.xml"}

var Properties = codegen.SupportingFile{
	Template: "application.properties.tpl",
	Folder:   "src/main/resources",
	Name:     "application.properties",
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
func (p *Plugin) Description() string { return "Java Spring Boot server; interfaceOnly emits API interfaces" }
func (p *Plugin) Templates() []fs.FS  { return []fs.FS{p.templates, java.Templates()} }

// EntryPoint is the Spring Boot application class for s.
func EntryPoint(s codegen.Settings, basePackage string) codegen.SupportingFile {
	return codegen.SupportingFile{
		Template: "Swagger2SpringBoot.tpl",
		Folder:   s.PackagePath(basePackage),
		Name:     "Swagger2SpringBoot.java",
	}
}

func (p *Plugin) ProcessOptions(opts codegen.Options) (codegen.Settings, error) {
	s, err := codegen.ResolveCommon(ID, opts, defaults, java.Language())
	if err != nil {
		return codegen.Settings{}, err
	}
	if opts.IsBlank(OptBasePackage) {
		return codegen.Settings{}, &codegen.ConfigError{Generator: ID, Option: OptBasePackage, Reason: "must not be empty"}
	}
	base, err := opts.String(OptBasePackage, "io.swagger")
	if err != nil {
		return codegen.Settings{}, &codegen.ConfigError{Generator: ID, Option: OptBasePackage, Reason: err.Error()}
	}
	s.AdditionalProperties[OptBasePackage] = base

	if s.IncludeBuildDescriptor {
		s.SupportingFiles = append(s.SupportingFiles, BuildDescriptor)
	}
	if !s.InterfaceOnly {
		s.SupportingFiles = append(s.SupportingFiles, EntryPoint(s, base), Properties)
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
