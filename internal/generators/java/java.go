// Package java holds what the Java generators share: the type map, naming
// rules and the model template.
package java

import (
	"embed"
	"io/fs"
	"path"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/spec"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Templates returns the shared Java template layer.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// SchemaAnnotation is the marker annotation every Java model imports.
const SchemaAnnotation = "Schema"

var keywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char", "class", "const",
	"continue", "default", "do", "double", "else", "enum", "extends", "final", "finally", "float",
	"for", "goto", "if", "implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "package", "private", "protected", "public", "return", "short", "static", "strictfp",
	"super", "switch", "synchronized", "this", "throw", "throws", "transient", "try", "void",
	"volatile", "while", "true", "false", "null",
	// names that clash with generated locals
	"localvarpath", "localvarheaders", "object", "list", "file",
}

// Language returns the Java type map and naming rules.
func Language() codegen.Language {
	reserved := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		reserved[k] = true
	}
	return codegen.Language{
		TypeMap: map[string]string{
			"integer":          "Integer",
			"integer/int32":    "Integer",
			"integer/int64":    "Long",
			"number":           "BigDecimal",
			"number/float":     "Float",
			"number/double":    "Double",
			"string":           "String",
			"string/byte":      "byte[]",
			"string/binary":    "File",
			"string/date":      "LocalDate",
			"string/date-time": "OffsetDateTime",
			"string/uuid":      "UUID",
			"boolean":          "Boolean",
			"object":           "Object",
		},
		ImportMapping: map[string]string{
			"BigDecimal":     "java.math.BigDecimal",
			"File":           "java.io.File",
			"LocalDate":      "java.time.LocalDate",
			"OffsetDateTime": "java.time.OffsetDateTime",
			"UUID":           "java.util.UUID",
			"List":           "java.util.List",
			"Map":            "java.util.Map",
			SchemaAnnotation: "io.swagger.v3.oas.annotations.media.Schema",
		},
		Primitives: map[string]bool{
			"Integer": true, "Float": true, "Double": true, "String": true,
			"Boolean": true, "Object": true, "byte[]": true,
		},
		ContainerFormat:   "List<%s>",
		ContainerImport:   "List",
		MapFormat:         "Map<String, %s>",
		MapImport:         "Map",
		NullToken:         "null",
		VoidType:          "void",
		WideIntegerSuffix: "L",
		AnnotationImports: []string{SchemaAnnotation},
		Naming: codegen.Naming{
			ReservedWords:       reserved,
			ReservedPrefix:      "_",
			ClassPrefix:         "Model",
			GetterPrefix:        "get",
			SetterPrefix:        "set",
			BooleanGetterPrefix: "is",
			ReservedAccessors:   map[string]bool{"getClass": true},
			AccessorPrefix:      "Property",
			FieldCase:           codegen.CaseCamel,
			ParamCase:           codegen.CaseCamel,
			APISuffix:           "Api",
		},
	}
}

// ModelPath places a model class under the model package.
func ModelPath(m *codegen.Model, s codegen.Settings) string {
	return path.Join(s.PackagePath(s.ModelPackage), m.ClassName+".java")
}

// APIPath places an API class under the api package.
func APIPath(g *codegen.OperationGroup, s codegen.Settings) string {
	return path.Join(s.PackagePath(s.APIPackage), g.ClassName+".java")
}

// EnsureComponents gives documents without a components container an empty
// one, so templates can always range over the models.
func EnsureComponents(doc *spec.Document) {
	if doc.Schemas == nil {
		doc.Schemas = map[string]*spec.SchemaNode{}
	}
}
