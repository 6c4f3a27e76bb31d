package goserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2code/internal/codegen"
	"github.com/mark3labs/swagger2code/internal/spec"
	"github.com/mark3labs/swagger2code/internal/templates"
)

func TestProcessOptions(t *testing.T) {
	t.Parallel()
	s, err := New().ProcessOptions(codegen.Options{})
	require.NoError(t, err)
	assert.Equal(t, "swagger-go-server", s.ArtifactID)
	assert.Equal(t, []codegen.SupportingFile{BuildDescriptor, EntryPoint, Router(s)}, s.SupportingFiles)
	assert.Equal(t, "api", s.AdditionalProperties[OptPackageName])
	assert.Equal(t, "swagger-go/api", s.AdditionalProperties["apiImportPath"])

	s, err = New().ProcessOptions(codegen.Options{
		codegen.OptInterfaceOnly:          true,
		codegen.OptIncludeBuildDescriptor: false,
		codegen.OptSourceFolder:           "internal/petstore-api",
		OptModuleName:                     "example.com/pets",
	})
	require.NoError(t, err)
	assert.Equal(t, []codegen.SupportingFile{Router(s)}, s.SupportingFiles)
	assert.Equal(t, "petstoreapi", s.AdditionalProperties[OptPackageName])
	assert.Equal(t, "example.com/pets/internal/petstore-api", s.AdditionalProperties["apiImportPath"])
}

func TestProcessOptions_Errors(t *testing.T) {
	t.Parallel()
	for _, opts := range []codegen.Options{
		{codegen.OptSourceFolder: "."},
		{OptPackageName: "type"},
		{OptPackageName: "9lives"},
	} {
		_, err := New().ProcessOptions(opts)
		assert.ErrorIs(t, err, codegen.ErrConfig, "%v", opts)
	}
}

func TestPaths(t *testing.T) {
	t.Parallel()
	s, err := New().ProcessOptions(codegen.Options{})
	require.NoError(t, err)
	p := New()
	assert.Equal(t, "api/model_order_item.go", p.ModelPath(&codegen.Model{Name: "OrderItem"}, s))
	assert.Equal(t, "api/api_pets.go", p.APIPath(&codegen.OperationGroup{Name: "pets"}, s))
}

func TestRenderAndFormat(t *testing.T) {
	t.Parallel()
	p := New()
	s, err := p.ProcessOptions(codegen.Options{})
	require.NoError(t, err)
	doc := &spec.Document{}
	require.NoError(t, p.Preprocess(doc, s))

	node := spec.Object(
		spec.Prop("type", spec.String().WithDescription("kind of pet")),
		spec.Prop("id", spec.Integer("int64")),
		spec.Prop("born", spec.StringFormat("date-time")),
		spec.Prop("tags", spec.ArrayOf(spec.String())),
	).WithRequired("id")
	m, err := codegen.NewModelBuilder(doc, s).FromSchema("pet", node)
	require.NoError(t, err)
	assert.Equal(t, "Type_", m.Properties[0].FieldName)
	assert.Equal(t, []string{"time"}, m.QualifiedImports)

	op, err := codegen.NewOperationBuilder(s).FromOperation("/pets/{id}", spec.GET, &spec.OperationNode{
		Method:      spec.GET,
		OperationID: "getPet",
		Summary:     "Returns one pet",
		Parameters:  []*spec.ParameterNode{{Name: "id", In: "path", Schema: spec.Integer("int64")}},
	})
	require.NoError(t, err)
	groups := codegen.GroupOperations([]*codegen.Operation{op}, s)

	r, err := templates.New(p.Templates())
	require.NoError(t, err)
	base := map[string]any{"settings": s, "props": s.AdditionalProperties}
	with := func(k string, v any) map[string]any {
		out := map[string]any{k: v}
		for key, val := range base {
			out[key] = val
		}
		return out
	}

	model, err := r.Render(s.ModelTemplate, with("model", m))
	require.NoError(t, err)
	formatted, err := p.PostProcess(p.ModelPath(m, s), []byte(model))
	require.NoError(t, err, model)
	out := string(formatted)
	assert.Contains(t, out, "package api")
	assert.Contains(t, out, "\t\"time\"\n")
	assert.Contains(t, out, "type Pet struct {")
	assert.Contains(t, out, "\t// kind of pet\n\tType_ *string    `json:\"type,omitempty\"`")
	assert.Contains(t, out, "Id    int64      `json:\"id\"`")
	assert.Contains(t, out, "Born  *time.Time `json:\"born,omitempty\"`")
	assert.Contains(t, out, "Tags  []string   `json:\"tags,omitempty\"`")

	api, err := r.Render(s.APITemplate, with("group", groups[0]))
	require.NoError(t, err)
	formatted, err = p.PostProcess(p.APIPath(groups[0], s), []byte(api))
	require.NoError(t, err, api)
	out = string(formatted)
	assert.Contains(t, out, "type PetsAPI interface {")
	assert.Contains(t, out, "// GetPet Returns one pet")
	assert.Contains(t, out, `mux.HandleFunc("GET /pets/{id}", svc.GetPet)`)

	for _, sf := range s.SupportingFiles {
		text, err := r.Render(sf.Template, with("groups", groups))
		require.NoError(t, err, sf.Template)
		formatted, err := p.PostProcess(sf.Path(), []byte(text))
		require.NoError(t, err, text)
		if strings.HasSuffix(sf.Name, ".go") {
			assert.Contains(t, string(formatted), "// Code generated by swagger2code. DO NOT EDIT.")
		}
	}

	same, err := p.PostProcess("go.mod", []byte("module x\n"))
	require.NoError(t, err)
	assert.Equal(t, "module x\n", string(same))
}

func TestLanguage_WideIntegerIsBuiltin(t *testing.T) {
	t.Parallel()
	s, err := New().ProcessOptions(codegen.Options{})
	require.NoError(t, err)

	td, err := codegen.ResolveType(spec.Integer("int64"), s)
	require.NoError(t, err)
	assert.Equal(t, "int64", td.DataType)
	assert.True(t, td.IsWideInteger)
	assert.True(t, s.Language.Primitives[td.DataType])
	assert.Empty(t, td.Imports)
}
