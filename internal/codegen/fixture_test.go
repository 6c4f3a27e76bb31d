package codegen

import (
	"io/fs"

	"github.com/mark3labs/swagger2code/internal/spec"
)

func testLanguage() Language {
	return Language{
		TypeMap: map[string]string{
			"integer":       "Integer",
			"integer/int64": "Long",
			"number":        "BigDecimal",
			"number/float":  "Float",
			"string":        "String",
			"string/date":   "LocalDate",
			"boolean":       "Boolean",
			"object":        "Object",
		},
		ImportMapping: map[string]string{
			"Long":       "java.lang.Long",
			"BigDecimal": "java.math.BigDecimal",
			"LocalDate":  "java.time.LocalDate",
			"List":       "java.util.List",
			"Map":        "java.util.Map",
			"Schema":     "io.swagger.v3.oas.annotations.media.Schema",
		},
		Primitives:        map[string]bool{"Integer": true, "String": true, "Boolean": true, "Float": true, "Object": true},
		ContainerFormat:   "List<%s>",
		ContainerImport:   "List",
		MapFormat:         "Map<String, %s>",
		MapImport:         "Map",
		NullToken:         "null",
		VoidType:          "void",
		WideIntegerSuffix: "L",
		AnnotationImports: []string{"Schema"},
		Naming: Naming{
			ReservedWords:       map[string]bool{"class": true, "default": true, "public": true},
			ReservedPrefix:      "_",
			ClassPrefix:         "Model",
			GetterPrefix:        "get",
			SetterPrefix:        "set",
			BooleanGetterPrefix: "is",
			ReservedAccessors:   map[string]bool{"getClass": true},
			AccessorPrefix:      "Property",
			FieldCase:           CaseCamel,
			ParamCase:           CaseCamel,
			APISuffix:           "Api",
		},
	}
}

func testSettings() Settings {
	return Settings{Generator: "test", BaseName: "test", Language: testLanguage()}
}

// testPlugin derives settings with ResolveCommon and a two-file list.
type testPlugin struct {
	preprocessed int
}

var (
	testDescriptor = SupportingFile{Template: "build.tpl", Name: "build.txt"}
	testEntryPoint = SupportingFile{Template: "main.tpl", Folder: "src", Name: "Main.txt"}
)

func (p *testPlugin) ID() string          { return "test" }
func (p *testPlugin) Description() string { return "test plugin" }
func (p *testPlugin) Templates() []fs.FS  { return nil }
func (p *testPlugin) ProcessOptions(opts Options) (Settings, error) {
	s, err := ResolveCommon("test", opts, Defaults{BaseName: "swagger-test", SourceFolder: "src"}, testLanguage())
	if err != nil {
		return Settings{}, err
	}
	if s.IncludeBuildDescriptor {
		s.SupportingFiles = append(s.SupportingFiles, testDescriptor)
	}
	if !s.InterfaceOnly {
		s.SupportingFiles = append(s.SupportingFiles, testEntryPoint)
	}
	return s, nil
}

func (p *testPlugin) Preprocess(doc *spec.Document, _ Settings) error {
	p.preprocessed++
	if doc.Schemas == nil {
		doc.Schemas = map[string]*spec.SchemaNode{}
	}
	return nil
}

func (p *testPlugin) ModelPath(m *Model, s Settings) string       { return s.SourceFolder + "/" + m.ClassName + ".txt" }
func (p *testPlugin) APIPath(g *OperationGroup, s Settings) string { return s.SourceFolder + "/" + g.ClassName + ".txt" }
